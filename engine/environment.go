// Package engine wires an Application to a Decoder and Ledger and
// drives the Idle -> Finishing -> Handling -> Flushing cycle described
// by the host rollup protocol. Core runs that cycle transport-free
// (used directly by the mock runtime); Supervisor adds the HTTP
// polling loop against a real host.
package engine

import (
	crabrolls "github.com/crabrolls-cartesi/crabrolls"
	"github.com/crabrolls-cartesi/crabrolls/wallet"
)

// bufferedVoucher is one staged voucher output.
type bufferedVoucher struct {
	Destination crabrolls.Address
	Payload     []byte
}

// environment is the concrete, one-shot Environment a Core hands to a
// single callback invocation.
type environment struct {
	metadata    crabrolls.Metadata
	delta       *wallet.Delta
	dappAddress *crabrolls.Address
	readOnly    bool
	sealed      bool

	notices  [][]byte
	reports  [][]byte
	vouchers []bufferedVoucher
}

func newEnvironment(metadata crabrolls.Metadata, delta *wallet.Delta, dappAddress *crabrolls.Address, readOnly bool) *environment {
	return &environment{metadata: metadata, delta: delta, dappAddress: dappAddress, readOnly: readOnly}
}

// seal is called the instant the callback returns; every further
// output or mutating call on this Environment then fails. Read
// accessors are not checked.
func (e *environment) seal() { e.sealed = true }

func (e *environment) checkUsable() error {
	if e.sealed {
		return &crabrolls.ContextError{Kind: crabrolls.ReentrantEnvironment}
	}
	return nil
}

func (e *environment) checkMutable() error {
	if err := e.checkUsable(); err != nil {
		return err
	}
	if e.readOnly {
		return &crabrolls.ContextError{Kind: crabrolls.ReadOnlyContext}
	}
	return nil
}

func (e *environment) Metadata() crabrolls.Metadata { return e.metadata }

func (e *environment) DAppAddress() (crabrolls.Address, bool) {
	if e.dappAddress == nil {
		return crabrolls.Address{}, false
	}
	return *e.dappAddress, true
}

// SendNotice is only available during Advance: Inspect cycles collect
// reports alone.
func (e *environment) SendNotice(payload []byte) (int, error) {
	if err := e.checkMutable(); err != nil {
		return 0, err
	}
	idx := len(e.notices)
	e.notices = append(e.notices, append([]byte(nil), payload...))
	return idx, nil
}

func (e *environment) SendReport(payload []byte) (int, error) {
	if err := e.checkUsable(); err != nil {
		return 0, err
	}
	idx := len(e.reports)
	e.reports = append(e.reports, append([]byte(nil), payload...))
	return idx, nil
}

// SendVoucher is only available during Advance: Inspect cycles collect
// reports alone.
func (e *environment) SendVoucher(destination crabrolls.Address, payload []byte) (int, error) {
	if err := e.checkMutable(); err != nil {
		return 0, err
	}
	idx := len(e.vouchers)
	e.vouchers = append(e.vouchers, bufferedVoucher{Destination: destination, Payload: append([]byte(nil), payload...)})
	return idx, nil
}

func (e *environment) bufferVoucher(v wallet.Voucher) (int, error) {
	return e.SendVoucher(v.Destination, v.Payload)
}

func (e *environment) EtherBalance(addr crabrolls.Address) crabrolls.Uint { return e.delta.EtherBalance(addr) }

func (e *environment) EtherTransfer(src, dst crabrolls.Address, amt crabrolls.Uint) error {
	if err := e.checkMutable(); err != nil {
		return err
	}
	return e.delta.EtherTransfer(src, dst, amt)
}

func (e *environment) EtherWithdraw(src crabrolls.Address, amt crabrolls.Uint) (int, error) {
	if err := e.checkMutable(); err != nil {
		return 0, err
	}
	voucher, err := e.delta.EtherWithdraw(src, amt, e.dappAddress)
	if err != nil {
		return 0, err
	}
	return e.bufferVoucher(voucher)
}

func (e *environment) ERC20Balance(wallet, token crabrolls.Address) crabrolls.Uint {
	return e.delta.ERC20Balance(wallet, token)
}

func (e *environment) ERC20Transfer(src, dst, token crabrolls.Address, amt crabrolls.Uint) error {
	if err := e.checkMutable(); err != nil {
		return err
	}
	return e.delta.ERC20Transfer(src, dst, token, amt)
}

func (e *environment) ERC20Withdraw(src, token crabrolls.Address, amt crabrolls.Uint) (int, error) {
	if err := e.checkMutable(); err != nil {
		return 0, err
	}
	voucher, err := e.delta.ERC20Withdraw(src, token, amt, e.dappAddress)
	if err != nil {
		return 0, err
	}
	return e.bufferVoucher(voucher)
}

func (e *environment) ERC721Owner(token crabrolls.Address, id crabrolls.Uint) (crabrolls.Address, bool) {
	return e.delta.ERC721Owner(token, id)
}

func (e *environment) ERC721Transfer(src, dst, token crabrolls.Address, id crabrolls.Uint) error {
	if err := e.checkMutable(); err != nil {
		return err
	}
	return e.delta.ERC721Transfer(src, dst, token, id)
}

func (e *environment) ERC721Withdraw(src, token crabrolls.Address, id crabrolls.Uint) (int, error) {
	if err := e.checkMutable(); err != nil {
		return 0, err
	}
	voucher, err := e.delta.ERC721Withdraw(src, token, id, e.dappAddress)
	if err != nil {
		return 0, err
	}
	return e.bufferVoucher(voucher)
}

func (e *environment) ERC1155Balance(wallet, token crabrolls.Address, id crabrolls.Uint) crabrolls.Uint {
	return e.delta.ERC1155Balance(wallet, token, id)
}

func (e *environment) ERC1155Transfer(src, dst, token crabrolls.Address, idsAmounts []crabrolls.IDAmount) error {
	if err := e.checkMutable(); err != nil {
		return err
	}
	return e.delta.ERC1155Transfer(src, dst, token, idsAmounts)
}

func (e *environment) ERC1155Withdraw(src, token crabrolls.Address, idsAmounts []crabrolls.IDAmount, data []byte) (int, error) {
	if err := e.checkMutable(); err != nil {
		return 0, err
	}
	voucher, err := e.delta.ERC1155Withdraw(src, token, idsAmounts, data, e.dappAddress)
	if err != nil {
		return 0, err
	}
	return e.bufferVoucher(voucher)
}

func (e *environment) EtherAddresses() []crabrolls.Address   { return e.delta.EtherAddresses() }
func (e *environment) ERC20Addresses() []crabrolls.Address   { return e.delta.ERC20Addresses() }
func (e *environment) ERC721Addresses() []crabrolls.Address  { return e.delta.ERC721Addresses() }
func (e *environment) ERC1155Addresses() []crabrolls.Address { return e.delta.ERC1155Addresses() }
