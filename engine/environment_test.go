package engine

import (
	"testing"

	crabrolls "github.com/crabrolls-cartesi/crabrolls"
	"github.com/crabrolls-cartesi/crabrolls/wallet"
)

func TestReadOnlyEnvironmentRejectsMutation(t *testing.T) {
	ledger := wallet.NewLedger()
	delta := ledger.NewDelta()
	env := newEnvironment(crabrolls.Metadata{}, delta, nil, true)

	alice := crabrolls.Address{1}
	bob := crabrolls.Address{2}
	err := env.EtherTransfer(alice, bob, crabrolls.NewUintFromUint64(1))
	if err == nil {
		t.Fatal("expected an error mutating a read-only (Inspect) environment")
	}
	ctxErr, ok := err.(*crabrolls.ContextError)
	if !ok {
		t.Fatalf("expected *crabrolls.ContextError, got %T", err)
	}
	if ctxErr.Kind != crabrolls.ReadOnlyContext {
		t.Fatalf("expected ReadOnlyContext, got %v", ctxErr.Kind)
	}
}

func TestReadOnlyEnvironmentRejectsNoticeAndVoucher(t *testing.T) {
	ledger := wallet.NewLedger()
	delta := ledger.NewDelta()
	env := newEnvironment(crabrolls.Metadata{}, delta, nil, true)

	if _, err := env.SendNotice([]byte("x")); err == nil {
		t.Fatal("expected an error calling SendNotice during Inspect")
	} else if ctxErr, ok := err.(*crabrolls.ContextError); !ok || ctxErr.Kind != crabrolls.ReadOnlyContext {
		t.Fatalf("expected ContextError{ReadOnlyContext}, got %v", err)
	}

	if _, err := env.SendVoucher(crabrolls.Address{9}, []byte("x")); err == nil {
		t.Fatal("expected an error calling SendVoucher during Inspect")
	} else if ctxErr, ok := err.(*crabrolls.ContextError); !ok || ctxErr.Kind != crabrolls.ReadOnlyContext {
		t.Fatalf("expected ContextError{ReadOnlyContext}, got %v", err)
	}

	if _, err := env.SendReport([]byte("x")); err != nil {
		t.Fatalf("expected SendReport to remain available during Inspect, got %v", err)
	}
}

func TestSealedEnvironmentRejectsOutputsAndMutations(t *testing.T) {
	ledger := wallet.NewLedger()
	delta := ledger.NewDelta()
	env := newEnvironment(crabrolls.Metadata{}, delta, nil, false)
	env.seal()

	if _, err := env.SendNotice([]byte("x")); err == nil {
		t.Fatal("expected an error calling SendNotice on a sealed environment")
	}

	alice := crabrolls.Address{1}
	bob := crabrolls.Address{2}
	err := env.EtherTransfer(alice, bob, crabrolls.NewUintFromUint64(1))
	if err == nil {
		t.Fatal("expected an error calling EtherTransfer on a sealed environment")
	}
	ctxErr, ok := err.(*crabrolls.ContextError)
	if !ok {
		t.Fatalf("expected *crabrolls.ContextError, got %T", err)
	}
	if ctxErr.Kind != crabrolls.ReentrantEnvironment {
		t.Fatalf("expected ReentrantEnvironment, got %v", ctxErr.Kind)
	}
}

func TestSendNoticeReportVoucherIndicesIncrement(t *testing.T) {
	ledger := wallet.NewLedger()
	delta := ledger.NewDelta()
	env := newEnvironment(crabrolls.Metadata{}, delta, nil, false)

	idx0, err := env.SendNotice([]byte("a"))
	if err != nil || idx0 != 0 {
		t.Fatalf("first SendNotice: idx=%d err=%v", idx0, err)
	}
	idx1, err := env.SendNotice([]byte("b"))
	if err != nil || idx1 != 1 {
		t.Fatalf("second SendNotice: idx=%d err=%v", idx1, err)
	}

	rIdx, err := env.SendReport([]byte("r"))
	if err != nil || rIdx != 0 {
		t.Fatalf("SendReport: idx=%d err=%v", rIdx, err)
	}

	dest := crabrolls.Address{9}
	vIdx, err := env.SendVoucher(dest, []byte("v"))
	if err != nil || vIdx != 0 {
		t.Fatalf("SendVoucher: idx=%d err=%v", vIdx, err)
	}
}

func TestEtherWithdrawRequiresDAppAddress(t *testing.T) {
	ledger := wallet.NewLedger()
	delta := ledger.NewDelta()
	env := newEnvironment(crabrolls.Metadata{}, delta, nil, false)

	alice := crabrolls.Address{1}
	if err := delta.EtherDeposit(alice, crabrolls.NewUintFromUint64(10)); err != nil {
		t.Fatalf("EtherDeposit: %v", err)
	}

	_, err := env.EtherWithdraw(alice, crabrolls.NewUintFromUint64(5))
	if err == nil {
		t.Fatal("expected an error withdrawing before the dapp address is known")
	}
	ledgerErr, ok := err.(*wallet.LedgerError)
	if !ok {
		t.Fatalf("expected *wallet.LedgerError, got %T", err)
	}
	if ledgerErr.Kind != wallet.MissingDAppAddress {
		t.Fatalf("expected MissingDAppAddress, got %v", ledgerErr.Kind)
	}
}
