package crabrolls

// DepositKind tags which variant a Deposit carries. Represented as a
// tag-plus-union-body struct rather than an interface hierarchy, per
// the "tagged union over inheritance" design note.
type DepositKind int

const (
	DepositNone DepositKind = iota
	DepositEther
	DepositERC20
	DepositERC721
	DepositERC1155
)

func (k DepositKind) String() string {
	switch k {
	case DepositNone:
		return "none"
	case DepositEther:
		return "ether"
	case DepositERC20:
		return "erc20"
	case DepositERC721:
		return "erc721"
	case DepositERC1155:
		return "erc1155"
	default:
		return "unknown"
	}
}

// IDAmount is one entry of an ERC-1155 ids/amounts sequence. A single
// ERC-1155 deposit collapses to a one-element sequence.
type IDAmount struct {
	ID     Uint
	Amount Uint
}

// Deposit is the tagged union of asset deposits synthesized by the
// portal decoder. Only the fields relevant to Kind are populated.
type Deposit struct {
	Kind Kind

	Sender Address
	Token  Address // zero for Ether

	Amount Uint // Ether, ERC20

	ID Uint // ERC721

	IDsAmounts []IDAmount // ERC1155
}

// Kind is an alias kept for readability at call sites (Deposit.Kind).
type Kind = DepositKind

// NewEtherDeposit builds an Ether deposit variant.
func NewEtherDeposit(sender Address, amount Uint) Deposit {
	return Deposit{Kind: DepositEther, Sender: sender, Amount: amount}
}

// NewERC20Deposit builds an ERC-20 deposit variant. sender is the
// 20-byte address that follows the success flag and the token address
// in the portal payload.
func NewERC20Deposit(sender, token Address, amount Uint) Deposit {
	return Deposit{Kind: DepositERC20, Sender: sender, Token: token, Amount: amount}
}

// NewERC721Deposit builds an ERC-721 deposit variant.
func NewERC721Deposit(sender, token Address, id Uint) Deposit {
	return Deposit{Kind: DepositERC721, Sender: sender, Token: token, ID: id}
}

// NewERC1155Deposit builds an ERC-1155 deposit variant. A single
// deposit passes a one-element idsAmounts slice.
func NewERC1155Deposit(sender, token Address, idsAmounts []IDAmount) Deposit {
	return Deposit{Kind: DepositERC1155, Sender: sender, Token: token, IDsAmounts: idsAmounts}
}

// AsEther returns the Ether fields and whether Kind == DepositEther.
func (d Deposit) AsEther() (sender Address, amount Uint, ok bool) {
	if d.Kind != DepositEther {
		return Address{}, Uint{}, false
	}
	return d.Sender, d.Amount, true
}

// AsERC20 returns the ERC-20 fields and whether Kind == DepositERC20.
func (d Deposit) AsERC20() (sender, token Address, amount Uint, ok bool) {
	if d.Kind != DepositERC20 {
		return Address{}, Address{}, Uint{}, false
	}
	return d.Sender, d.Token, d.Amount, true
}

// AsERC721 returns the ERC-721 fields and whether Kind == DepositERC721.
func (d Deposit) AsERC721() (sender, token Address, id Uint, ok bool) {
	if d.Kind != DepositERC721 {
		return Address{}, Address{}, Uint{}, false
	}
	return d.Sender, d.Token, d.ID, true
}

// AsERC1155 returns the ERC-1155 fields and whether Kind == DepositERC1155.
func (d Deposit) AsERC1155() (sender, token Address, idsAmounts []IDAmount, ok bool) {
	if d.Kind != DepositERC1155 {
		return Address{}, Address{}, nil, false
	}
	return d.Sender, d.Token, d.IDsAmounts, true
}
