package crabrolls

// Environment is the opaque handle passed to every application
// callback. Every mutating operation is staged in the cycle's Delta;
// reads observe staged writes. During Inspect, mutating operations
// fail with ContextError{Kind: ReadOnlyContext}. Once the callback that
// received an Environment returns, every further output (Send*) or
// mutating (transfer, withdraw) call on it fails with
// ContextError{Kind: ReentrantEnvironment}. The read accessors
// (Metadata, DAppAddress, balances, owners, *Addresses) do not check
// this and keep returning values.
type Environment interface {
	// Metadata returns the Advance input's metadata. Zero-valued during
	// Inspect (inspect inputs carry no such metadata).
	Metadata() Metadata

	// DAppAddress returns the dapp's own address, learned from a
	// DAppAddressRelay input, or ok=false if none has been received yet.
	DAppAddress() (addr Address, ok bool)

	SendNotice(payload []byte) (index int, err error)
	SendReport(payload []byte) (index int, err error)
	SendVoucher(destination Address, payload []byte) (index int, err error)

	EtherBalance(addr Address) Uint
	EtherTransfer(src, dst Address, amt Uint) error
	EtherWithdraw(src Address, amt Uint) (voucherIndex int, err error)

	ERC20Balance(wallet, token Address) Uint
	ERC20Transfer(src, dst, token Address, amt Uint) error
	ERC20Withdraw(src, token Address, amt Uint) (voucherIndex int, err error)

	ERC721Owner(token Address, id Uint) (owner Address, ok bool)
	ERC721Transfer(src, dst, token Address, id Uint) error
	ERC721Withdraw(src, token Address, id Uint) (voucherIndex int, err error)

	ERC1155Balance(wallet, token Address, id Uint) Uint
	ERC1155Transfer(src, dst, token Address, idsAmounts []IDAmount) error
	ERC1155Withdraw(src, token Address, idsAmounts []IDAmount, data []byte) (voucherIndex int, err error)

	EtherAddresses() []Address
	ERC20Addresses() []Address
	ERC721Addresses() []Address
	ERC1155Addresses() []Address
}
