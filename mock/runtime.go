// Package mock provides a deterministic in-process substitute for the
// host rollup HTTP endpoint, used by offline tests. Runtime drives the
// same engine.Core a real Supervisor uses — identical Decoder, Ledger,
// and Environment — so a passing mock test is evidence the real wire
// protocol would behave the same way. Server is a separate host double:
// a real httptest.Server speaking the wire protocol, queuing inputs and
// recording outputs, for tests that drive an engine.Supervisor (with
// its own Core) end to end.
package mock

import (
	"fmt"

	crabrolls "github.com/crabrolls-cartesi/crabrolls"
	"github.com/crabrolls-cartesi/crabrolls/addressbook"
	"github.com/crabrolls-cartesi/crabrolls/engine"
	"github.com/crabrolls-cartesi/crabrolls/portal"
	"github.com/crabrolls-cartesi/crabrolls/wallet"
)

// CycleResult is the outcome of one SendAdvance/SendInspect call,
// spec §4.G's {status, notices, reports, vouchers,
// ledger_snapshot_after} tuple.
type CycleResult struct {
	Status              crabrolls.FinishStatus
	Notices             [][]byte
	Reports             [][]byte
	Vouchers            []engine.Voucher
	LedgerSnapshotAfter *wallet.Ledger
}

// Runtime wires one Application against a fresh Decoder and Ledger via
// engine.Core, and synthesizes Metadata the way a real host would
// (monotonically increasing block number/timestamp/input index).
type Runtime struct {
	core *engine.Core

	nextBlockNumber    uint64
	nextBlockTimestamp uint64
	nextInputIndex     uint64
	nextEpochIndex     uint64
}

// NewRuntime builds a Runtime with the given address book selector
// and the default portal handler configuration (Handle(true) for
// every asset portal). handlerConfigs may be nil.
func NewRuntime(app crabrolls.Application, selector addressbook.ChainSelector, handlerConfigs map[addressbook.PortalKind]portal.HandlerConfig) (*Runtime, error) {
	book, err := addressbook.NewBook(selector)
	if err != nil {
		return nil, fmt.Errorf("mock: building address book: %w", err)
	}
	decoder := portal.NewDecoder(book, handlerConfigs)
	core := engine.NewCore(app, decoder, wallet.NewLedger())

	return &Runtime{
		core:               core,
		nextBlockNumber:    1,
		nextBlockTimestamp: 1,
	}, nil
}

// Ledger exposes the runtime's live ledger for assertions between cycles.
func (rt *Runtime) Ledger() *wallet.Ledger { return rt.core.Ledger() }

// SetDAppAddress seeds the dapp's own address without routing a
// DAppAddressRelay input through the decoder, for tests that don't
// care to exercise the relay path itself.
func (rt *Runtime) SetDAppAddress(addr crabrolls.Address) { rt.core.SetDAppAddress(addr) }

// SendAdvance drives one Advance cycle.
func (rt *Runtime) SendAdvance(msgSender crabrolls.Address, payload []byte) (CycleResult, error) {
	metadata := crabrolls.Metadata{
		MsgSender:      msgSender,
		BlockNumber:    rt.nextBlockNumber,
		BlockTimestamp: rt.nextBlockTimestamp,
		InputIndex:     rt.nextInputIndex,
		EpochIndex:     rt.nextEpochIndex,
		PrevRandao:     crabrolls.ZeroUint(),
	}
	rt.nextBlockNumber++
	rt.nextBlockTimestamp++
	rt.nextInputIndex++

	result, err := rt.core.Advance(metadata, payload)
	if err != nil {
		return CycleResult{}, err
	}
	return rt.toCycleResult(result), nil
}

// SendInspect drives one Inspect cycle.
func (rt *Runtime) SendInspect(payload []byte) (CycleResult, error) {
	result, err := rt.core.Inspect(payload)
	if err != nil {
		return CycleResult{}, err
	}
	return rt.toCycleResult(result), nil
}

func (rt *Runtime) toCycleResult(result engine.CycleResult) CycleResult {
	return CycleResult{
		Status:              result.Status,
		Notices:             result.Notices,
		Reports:             result.Reports,
		Vouchers:            result.Vouchers,
		LedgerSnapshotAfter: rt.core.Ledger().Snapshot(),
	}
}
