package wallet

import (
	"math/big"

	crabrolls "github.com/crabrolls-cartesi/crabrolls"
	"github.com/crabrolls-cartesi/crabrolls/abi/erc1155"
	"github.com/crabrolls-cartesi/crabrolls/abi/erc20"
	"github.com/crabrolls-cartesi/crabrolls/abi/erc721"
	"github.com/crabrolls-cartesi/crabrolls/abi/ether"
)

type erc721Entry struct {
	owner   crabrolls.Address
	removed bool
}

// Delta stages every ledger mutation made during one Advance/Inspect
// callback. Reads observe staged writes (read-your-writes); the
// Supervisor calls ApplyDelta on Accept and simply discards the Delta
// on Reject, giving I3/I4/P4 for free without the Ledger itself
// knowing about cycle lifecycle.
type Delta struct {
	base *Ledger

	ether   map[crabrolls.Address]crabrolls.Uint
	erc20   map[erc20Key]crabrolls.Uint
	erc721  map[erc721Key]erc721Entry
	erc1155 map[erc1155Key]crabrolls.Uint
}

// NewDelta stages a fresh, empty delta over base.
func (l *Ledger) NewDelta() *Delta {
	return &Delta{
		base:    l,
		ether:   make(map[crabrolls.Address]crabrolls.Uint),
		erc20:   make(map[erc20Key]crabrolls.Uint),
		erc721:  make(map[erc721Key]erc721Entry),
		erc1155: make(map[erc1155Key]crabrolls.Uint),
	}
}

// ApplyDelta commits every staged mutation atomically, in the order
// the cycle executed them, deleting entries whose balance returns to
// zero (erc721: whose ownership was withdrawn) rather than leaving a
// zero-valued key behind.
func (l *Ledger) ApplyDelta(d *Delta) error {
	if d.base != l {
		return &LedgerError{Kind: Overflow, Msg: "delta is not bound to this ledger"}
	}
	mergeDeltaInto(l, d)
	return nil
}

// mergeDeltaInto applies d's staged overlay onto l, unconditionally —
// shared by ApplyDelta (which checks ownership first) and Delta's own
// read-view helpers (which merge onto a throwaway snapshot copy).
func mergeDeltaInto(l *Ledger, d *Delta) {
	for addr, bal := range d.ether {
		if bal.IsZero() {
			delete(l.ether, addr)
		} else {
			l.ether[addr] = bal
		}
	}
	for key, bal := range d.erc20 {
		if bal.IsZero() {
			delete(l.erc20, key)
		} else {
			l.erc20[key] = bal
		}
	}
	for key, entry := range d.erc721 {
		if entry.removed {
			delete(l.erc721, key)
		} else {
			l.erc721[key] = entry.owner
		}
	}
	for key, bal := range d.erc1155 {
		if bal.IsZero() {
			delete(l.erc1155, key)
		} else {
			l.erc1155[key] = bal
		}
	}
}

// merged returns a throwaway Ledger reflecting base with this delta's
// overlay applied, used only to answer derived-view queries
// (EtherAddresses, …) with read-your-writes semantics.
func (d *Delta) merged() *Ledger {
	snap := d.base.Snapshot()
	mergeDeltaInto(snap, d)
	return snap
}

// EtherAddresses, ERC20Addresses, ERC721Addresses and ERC1155Addresses
// mirror the Ledger derived views but observe this delta's staged
// writes, per the Environment's read-your-writes contract.
func (d *Delta) EtherAddresses() []crabrolls.Address   { return d.merged().EtherAddresses() }
func (d *Delta) ERC20Addresses() []crabrolls.Address   { return d.merged().ERC20Addresses() }
func (d *Delta) ERC721Addresses() []crabrolls.Address  { return d.merged().ERC721Addresses() }
func (d *Delta) ERC1155Addresses() []crabrolls.Address { return d.merged().ERC1155Addresses() }

// ---- reads (read-your-writes) ----

func (d *Delta) EtherBalance(addr crabrolls.Address) crabrolls.Uint {
	if v, ok := d.ether[addr]; ok {
		return v
	}
	return d.base.EtherBalance(addr)
}

func (d *Delta) ERC20Balance(wallet, token crabrolls.Address) crabrolls.Uint {
	if v, ok := d.erc20[erc20Key{wallet, token}]; ok {
		return v
	}
	return d.base.ERC20Balance(wallet, token)
}

func (d *Delta) ERC721Owner(token crabrolls.Address, id crabrolls.Uint) (crabrolls.Address, bool) {
	key := erc721Key{token, id.Bytes32()}
	if entry, ok := d.erc721[key]; ok {
		if entry.removed {
			return crabrolls.Address{}, false
		}
		return entry.owner, true
	}
	return d.base.ERC721Owner(token, id)
}

func (d *Delta) ERC1155Balance(wallet, token crabrolls.Address, id crabrolls.Uint) crabrolls.Uint {
	if v, ok := d.erc1155[erc1155Key{wallet, token, id.Bytes32()}]; ok {
		return v
	}
	return d.base.ERC1155Balance(wallet, token, id)
}

// ---- Ether ----

func (d *Delta) EtherDeposit(to crabrolls.Address, amt crabrolls.Uint) error {
	sum, err := d.EtherBalance(to).Add(amt)
	if err != nil {
		return &LedgerError{Kind: Overflow, Msg: "ether deposit overflow"}
	}
	d.ether[to] = sum
	return nil
}

func (d *Delta) EtherTransfer(src, dst crabrolls.Address, amt crabrolls.Uint) error {
	if src == dst {
		return nil
	}
	srcBal := d.EtherBalance(src)
	if srcBal.Cmp(amt) < 0 {
		return &LedgerError{Kind: InsufficientBalance, Msg: "ether transfer: insufficient balance"}
	}
	newSrc, _ := srcBal.Sub(amt)
	newDst, err := d.EtherBalance(dst).Add(amt)
	if err != nil {
		return &LedgerError{Kind: Overflow, Msg: "ether transfer overflow"}
	}
	d.ether[src] = newSrc
	d.ether[dst] = newDst
	return nil
}

func (d *Delta) EtherWithdraw(src crabrolls.Address, amt crabrolls.Uint, dappAddress *crabrolls.Address) (Voucher, error) {
	if dappAddress == nil {
		return Voucher{}, &LedgerError{Kind: MissingDAppAddress, Msg: "ether withdraw: dapp address unknown"}
	}
	srcBal := d.EtherBalance(src)
	if srcBal.Cmp(amt) < 0 {
		return Voucher{}, &LedgerError{Kind: InsufficientBalance, Msg: "ether withdraw: insufficient balance"}
	}
	newSrc, _ := srcBal.Sub(amt)
	d.ether[src] = newSrc

	payload, err := ether.WithdrawVoucher(dappAddress.Common(), amt.Big())
	if err != nil {
		return Voucher{}, err
	}
	return Voucher{Destination: *dappAddress, Payload: payload}, nil
}

// ---- ERC-20 ----

func (d *Delta) ERC20Deposit(to, token crabrolls.Address, amt crabrolls.Uint) error {
	sum, err := d.ERC20Balance(to, token).Add(amt)
	if err != nil {
		return &LedgerError{Kind: Overflow, Msg: "erc20 deposit overflow"}
	}
	d.erc20[erc20Key{to, token}] = sum
	return nil
}

func (d *Delta) ERC20Transfer(src, dst, token crabrolls.Address, amt crabrolls.Uint) error {
	if src == dst {
		return nil
	}
	srcBal := d.ERC20Balance(src, token)
	if srcBal.Cmp(amt) < 0 {
		return &LedgerError{Kind: InsufficientBalance, Msg: "erc20 transfer: insufficient balance"}
	}
	newSrc, _ := srcBal.Sub(amt)
	newDst, err := d.ERC20Balance(dst, token).Add(amt)
	if err != nil {
		return &LedgerError{Kind: Overflow, Msg: "erc20 transfer overflow"}
	}
	d.erc20[erc20Key{src, token}] = newSrc
	d.erc20[erc20Key{dst, token}] = newDst
	return nil
}

func (d *Delta) ERC20Withdraw(src, token crabrolls.Address, amt crabrolls.Uint, dappAddress *crabrolls.Address) (Voucher, error) {
	if dappAddress == nil {
		return Voucher{}, &LedgerError{Kind: MissingDAppAddress, Msg: "erc20 withdraw: dapp address unknown"}
	}
	srcBal := d.ERC20Balance(src, token)
	if srcBal.Cmp(amt) < 0 {
		return Voucher{}, &LedgerError{Kind: InsufficientBalance, Msg: "erc20 withdraw: insufficient balance"}
	}
	newSrc, _ := srcBal.Sub(amt)
	d.erc20[erc20Key{src, token}] = newSrc

	payload, err := erc20.WithdrawVoucher(src.Common(), amt.Big())
	if err != nil {
		return Voucher{}, err
	}
	return Voucher{Destination: token, Payload: payload}, nil
}

// ---- ERC-721 ----

func (d *Delta) ERC721Deposit(to, token crabrolls.Address, id crabrolls.Uint) {
	d.erc721[erc721Key{token, id.Bytes32()}] = erc721Entry{owner: to}
}

func (d *Delta) ERC721Transfer(src, dst, token crabrolls.Address, id crabrolls.Uint) error {
	owner, ok := d.ERC721Owner(token, id)
	if !ok || owner != src {
		return &LedgerError{Kind: NotOwner, Msg: "erc721 transfer: src is not the current owner"}
	}
	d.erc721[erc721Key{token, id.Bytes32()}] = erc721Entry{owner: dst}
	return nil
}

func (d *Delta) ERC721Withdraw(src, token crabrolls.Address, id crabrolls.Uint, dappAddress *crabrolls.Address) (Voucher, error) {
	owner, ok := d.ERC721Owner(token, id)
	if !ok || owner != src {
		return Voucher{}, &LedgerError{Kind: NotOwner, Msg: "erc721 withdraw: src is not the current owner"}
	}
	if dappAddress == nil {
		return Voucher{}, &LedgerError{Kind: MissingDAppAddress, Msg: "erc721 withdraw: dapp address unknown"}
	}
	d.erc721[erc721Key{token, id.Bytes32()}] = erc721Entry{removed: true}

	payload, err := erc721.WithdrawVoucher(dappAddress.Common(), src.Common(), id.Big())
	if err != nil {
		return Voucher{}, err
	}
	return Voucher{Destination: token, Payload: payload}, nil
}

// ---- ERC-1155 ----

func (d *Delta) ERC1155Deposit(to, token crabrolls.Address, id, amt crabrolls.Uint) error {
	sum, err := d.ERC1155Balance(to, token, id).Add(amt)
	if err != nil {
		return &LedgerError{Kind: Overflow, Msg: "erc1155 deposit overflow"}
	}
	d.erc1155[erc1155Key{to, token, id.Bytes32()}] = sum
	return nil
}

// ERC1155Transfer moves a list of (id, amount) balances from src to dst,
// all-or-nothing: if any leg has insufficient balance, no leg is
// applied.
func (d *Delta) ERC1155Transfer(src, dst, token crabrolls.Address, idsAmounts []crabrolls.IDAmount) error {
	if src == dst {
		return nil
	}
	for _, ia := range idsAmounts {
		if d.ERC1155Balance(src, token, ia.ID).Cmp(ia.Amount) < 0 {
			return &LedgerError{Kind: InsufficientBalance, Msg: "erc1155 transfer: insufficient balance"}
		}
	}
	for _, ia := range idsAmounts {
		srcBal, _ := d.ERC1155Balance(src, token, ia.ID).Sub(ia.Amount)
		dstBal, err := d.ERC1155Balance(dst, token, ia.ID).Add(ia.Amount)
		if err != nil {
			return &LedgerError{Kind: Overflow, Msg: "erc1155 transfer overflow"}
		}
		d.erc1155[erc1155Key{src, token, ia.ID.Bytes32()}] = srcBal
		d.erc1155[erc1155Key{dst, token, ia.ID.Bytes32()}] = dstBal
	}
	return nil
}

// ERC1155Withdraw debits every (id, amount) leg and builds a withdrawal
// voucher: safeTransferFrom when idsAmounts has exactly one entry,
// safeBatchTransferFrom otherwise.
func (d *Delta) ERC1155Withdraw(src, token crabrolls.Address, idsAmounts []crabrolls.IDAmount, data []byte, dappAddress *crabrolls.Address) (Voucher, error) {
	if dappAddress == nil {
		return Voucher{}, &LedgerError{Kind: MissingDAppAddress, Msg: "erc1155 withdraw: dapp address unknown"}
	}
	for _, ia := range idsAmounts {
		if d.ERC1155Balance(src, token, ia.ID).Cmp(ia.Amount) < 0 {
			return Voucher{}, &LedgerError{Kind: InsufficientBalance, Msg: "erc1155 withdraw: insufficient balance"}
		}
	}
	ids := make([]*big.Int, len(idsAmounts))
	amounts := make([]*big.Int, len(idsAmounts))
	for i, ia := range idsAmounts {
		newBal, _ := d.ERC1155Balance(src, token, ia.ID).Sub(ia.Amount)
		d.erc1155[erc1155Key{src, token, ia.ID.Bytes32()}] = newBal
		ids[i] = ia.ID.Big()
		amounts[i] = ia.Amount.Big()
	}

	payload, err := erc1155.WithdrawVoucher(dappAddress.Common(), src.Common(), ids, amounts, data)
	if err != nil {
		return Voucher{}, err
	}
	return Voucher{Destination: token, Payload: payload}, nil
}
