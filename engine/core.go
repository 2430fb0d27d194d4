package engine

import (
	"fmt"

	crabrolls "github.com/crabrolls-cartesi/crabrolls"
	"github.com/crabrolls-cartesi/crabrolls/portal"
	"github.com/crabrolls-cartesi/crabrolls/wallet"
)

// Voucher is one emitted withdrawal/call instruction.
type Voucher struct {
	Destination crabrolls.Address
	Payload     []byte
}

// CycleResult is the outcome of one Advance or Inspect cycle, in the
// transport-independent shape spec §4.G describes for the mock
// runtime and that Supervisor.Run forwards to the host protocol.
type CycleResult struct {
	Status   crabrolls.FinishStatus
	Notices  [][]byte
	Reports  [][]byte
	Vouchers []Voucher

	// IsRelay is true when this Advance cycle was a DAppAddressRelay
	// input: it always resolves to Accept with no outputs and no
	// ledger changes, but callers may want to know it happened.
	IsRelay      bool
	RelayAddress crabrolls.Address
}

// Core wires one Application against one Decoder and Ledger and runs
// the cycle transport-free: classification, callback invocation,
// delta commit/discard. Supervisor wraps a Core with the host HTTP
// polling loop; the mock runtime wraps one directly.
type Core struct {
	app         crabrolls.Application
	decoder     *portal.Decoder
	ledger      *wallet.Ledger
	dappAddress *crabrolls.Address
}

// NewCore builds a Core. ledger is typically freshly created via
// wallet.NewLedger, but may be pre-seeded for tests.
func NewCore(app crabrolls.Application, decoder *portal.Decoder, ledger *wallet.Ledger) *Core {
	return &Core{app: app, decoder: decoder, ledger: ledger}
}

// Ledger exposes the live ledger, e.g. for snapshotting between
// cycles in tests.
func (c *Core) Ledger() *wallet.Ledger { return c.ledger }

// DAppAddress returns the address learned from the last
// DAppAddressRelay input, if any.
func (c *Core) DAppAddress() (crabrolls.Address, bool) {
	if c.dappAddress == nil {
		return crabrolls.Address{}, false
	}
	return *c.dappAddress, true
}

// SetDAppAddress seeds the dapp's own address without routing a
// DAppAddressRelay input through the decoder.
func (c *Core) SetDAppAddress(addr crabrolls.Address) { c.dappAddress = &addr }

// Advance runs one Advance cycle: msg_sender classification, portal
// decode (possibly mutating a fresh delta), the Application's Advance
// callback, and commit or discard of the resulting delta and buffered
// outputs. The returned error is reserved for conditions the protocol
// itself cannot recover from (a malformed decoder invariant); ordinary
// application failures surface as CycleResult{Status: StatusReject}.
func (c *Core) Advance(metadata crabrolls.Metadata, payload []byte) (CycleResult, error) {
	delta := c.ledger.NewDelta()
	classification, err := c.decoder.Classify(delta, metadata.MsgSender, payload)
	if err != nil {
		return CycleResult{Status: crabrolls.StatusReject, Reports: [][]byte{[]byte(err.Error())}}, nil
	}

	if classification.IsRelay {
		addr := classification.RelayAddress
		c.dappAddress = &addr
		return CycleResult{Status: crabrolls.StatusAccept, IsRelay: true, RelayAddress: addr}, nil
	}

	if !classification.InvokeApplication {
		if err := c.ledger.ApplyDelta(delta); err != nil {
			return CycleResult{}, fmt.Errorf("engine: applying dispensed deposit delta: %w", err)
		}
		return CycleResult{Status: crabrolls.StatusAccept}, nil
	}

	env := newEnvironment(metadata, delta, c.dappAddress, false)
	status, appErr := invoke(func() (crabrolls.FinishStatus, error) {
		return c.app.Advance(env, metadata, classification.Deposit, classification.Payload)
	})
	env.seal()

	return c.resolve(delta, env, status, appErr)
}

// Inspect runs one Inspect cycle. Inspect never mutates the ledger:
// environment.checkMutable rejects every write attempt during the
// callback, so there is nothing to discard on Reject.
func (c *Core) Inspect(payload []byte) (CycleResult, error) {
	delta := c.ledger.NewDelta()
	env := newEnvironment(crabrolls.Metadata{}, delta, c.dappAddress, true)
	status, appErr := invoke(func() (crabrolls.FinishStatus, error) {
		return c.app.Inspect(env, payload)
	})
	env.seal()

	if appErr != nil || status == crabrolls.StatusReject {
		return rejectResult(appErr), nil
	}

	return CycleResult{
		Status:   crabrolls.StatusAccept,
		Notices:  env.notices,
		Reports:  env.reports,
		Vouchers: toVouchers(env.vouchers),
	}, nil
}

func (c *Core) resolve(delta *wallet.Delta, env *environment, status crabrolls.FinishStatus, appErr error) (CycleResult, error) {
	if appErr != nil || status == crabrolls.StatusReject {
		return rejectResult(appErr), nil
	}

	if err := c.ledger.ApplyDelta(delta); err != nil {
		return CycleResult{}, fmt.Errorf("engine: applying ledger delta on accept: %w", err)
	}

	return CycleResult{
		Status:   crabrolls.StatusAccept,
		Notices:  env.notices,
		Reports:  env.reports,
		Vouchers: toVouchers(env.vouchers),
	}, nil
}

func rejectResult(appErr error) CycleResult {
	if appErr == nil {
		return CycleResult{Status: crabrolls.StatusReject}
	}
	return CycleResult{Status: crabrolls.StatusReject, Reports: [][]byte{[]byte(appErr.Error())}}
}

// invoke runs an application callback, converting a panic or an
// invalid finish status into a Reject-with-error outcome, per spec
// §4.F item 5.
func invoke(call func() (crabrolls.FinishStatus, error)) (status crabrolls.FinishStatus, err error) {
	defer func() {
		if r := recover(); r != nil {
			status = crabrolls.StatusReject
			err = &crabrolls.ApplicationError{Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	status, err = call()
	if err != nil {
		return crabrolls.StatusReject, &crabrolls.ApplicationError{Err: err}
	}
	if !status.Valid() {
		return crabrolls.StatusReject, fmt.Errorf("engine: application returned invalid finish status %q", status)
	}
	return status, nil
}

func toVouchers(in []bufferedVoucher) []Voucher {
	out := make([]Voucher, len(in))
	for i, v := range in {
		out[i] = Voucher{Destination: v.Destination, Payload: v.Payload}
	}
	return out
}
