package wallet_test

import (
	"testing"

	crabrolls "github.com/crabrolls-cartesi/crabrolls"
	"github.com/crabrolls-cartesi/crabrolls/wallet"
)

func addr(b byte) crabrolls.Address {
	var a crabrolls.Address
	a[19] = b
	return a
}

func TestEtherDepositTransferConservation(t *testing.T) {
	ledger := wallet.NewLedger()
	delta := ledger.NewDelta()

	alice, bob := addr(1), addr(2)
	amount := crabrolls.NewUintFromUint64(100)

	if err := delta.EtherDeposit(alice, amount); err != nil {
		t.Fatalf("EtherDeposit: %v", err)
	}
	if err := delta.EtherTransfer(alice, bob, crabrolls.NewUintFromUint64(40)); err != nil {
		t.Fatalf("EtherTransfer: %v", err)
	}

	total, err := delta.EtherBalance(alice).Add(delta.EtherBalance(bob))
	if err != nil {
		t.Fatalf("summing balances: %v", err)
	}
	if total.Cmp(amount) != 0 {
		t.Errorf("conservation violated: total %s, want %s", total, amount)
	}
	if delta.EtherBalance(alice).Cmp(crabrolls.NewUintFromUint64(60)) != 0 {
		t.Errorf("alice balance: got %s, want 60", delta.EtherBalance(alice))
	}
	if delta.EtherBalance(bob).Cmp(crabrolls.NewUintFromUint64(40)) != 0 {
		t.Errorf("bob balance: got %s, want 40", delta.EtherBalance(bob))
	}
}

func TestEtherTransferInsufficientBalance(t *testing.T) {
	ledger := wallet.NewLedger()
	delta := ledger.NewDelta()
	alice, bob := addr(1), addr(2)

	err := delta.EtherTransfer(alice, bob, crabrolls.NewUintFromUint64(1))
	if err == nil {
		t.Fatal("expected an error transferring from a zero balance")
	}
	var ledgerErr *wallet.LedgerError
	if le, ok := err.(*wallet.LedgerError); ok {
		ledgerErr = le
	} else {
		t.Fatalf("expected *wallet.LedgerError, got %T", err)
	}
	if ledgerErr.Kind != wallet.InsufficientBalance {
		t.Fatalf("expected InsufficientBalance, got %v", ledgerErr.Kind)
	}
}

func TestBalancesNeverNegative(t *testing.T) {
	ledger := wallet.NewLedger()
	delta := ledger.NewDelta()
	alice, bob, token := addr(1), addr(2), addr(3)

	_ = delta.EtherTransfer(alice, bob, crabrolls.NewUintFromUint64(1))
	_ = delta.ERC20Transfer(alice, bob, token, crabrolls.NewUintFromUint64(1))
	_ = delta.ERC721Transfer(alice, bob, token, crabrolls.NewUintFromUint64(1))
	_ = delta.ERC1155Transfer(alice, bob, token, []crabrolls.IDAmount{{ID: crabrolls.NewUintFromUint64(1), Amount: crabrolls.NewUintFromUint64(1)}})

	if delta.EtherBalance(alice).Cmp(crabrolls.ZeroUint()) < 0 {
		t.Error("ether balance went negative")
	}
	if delta.ERC20Balance(alice, token).Cmp(crabrolls.ZeroUint()) < 0 {
		t.Error("erc20 balance went negative")
	}
	if delta.ERC1155Balance(alice, token, crabrolls.NewUintFromUint64(1)).Cmp(crabrolls.ZeroUint()) < 0 {
		t.Error("erc1155 balance went negative")
	}
}

func TestERC721UniqueOwnership(t *testing.T) {
	ledger := wallet.NewLedger()
	delta := ledger.NewDelta()
	alice, bob, token := addr(1), addr(2), addr(9)
	id := crabrolls.NewUintFromUint64(1)

	delta.ERC721Deposit(alice, token, id)
	owner, ok := delta.ERC721Owner(token, id)
	if !ok || owner != alice {
		t.Fatalf("owner after deposit: got (%v, %v), want (%v, true)", owner, ok, alice)
	}

	if err := delta.ERC721Transfer(alice, bob, token, id); err != nil {
		t.Fatalf("ERC721Transfer: %v", err)
	}
	owner, ok = delta.ERC721Owner(token, id)
	if !ok || owner != bob {
		t.Fatalf("owner after transfer: got (%v, %v), want (%v, true)", owner, ok, bob)
	}

	// Only bob, the current owner, can move it again — alice cannot.
	if err := delta.ERC721Transfer(alice, bob, token, id); err == nil {
		t.Fatal("expected NotOwner transferring an id the sender no longer owns")
	}
}

func TestERC721WithdrawRemovesOwnership(t *testing.T) {
	ledger := wallet.NewLedger()
	delta := ledger.NewDelta()
	alice, token := addr(1), addr(9)
	id := crabrolls.NewUintFromUint64(5)
	dapp := addr(77)

	delta.ERC721Deposit(alice, token, id)
	if _, err := delta.ERC721Withdraw(alice, token, id, &dapp); err != nil {
		t.Fatalf("ERC721Withdraw: %v", err)
	}
	if _, ok := delta.ERC721Owner(token, id); ok {
		t.Error("expected no owner after withdraw")
	}
}

func TestERC1155BatchTransferAllOrNothing(t *testing.T) {
	ledger := wallet.NewLedger()
	delta := ledger.NewDelta()
	alice, bob, token := addr(1), addr(2), addr(9)
	id1, id2 := crabrolls.NewUintFromUint64(1), crabrolls.NewUintFromUint64(2)

	if err := delta.ERC1155Deposit(alice, token, id1, crabrolls.NewUintFromUint64(10)); err != nil {
		t.Fatalf("ERC1155Deposit id1: %v", err)
	}
	// id2 is never deposited: alice has zero of it.

	err := delta.ERC1155Transfer(alice, bob, token, []crabrolls.IDAmount{
		{ID: id1, Amount: crabrolls.NewUintFromUint64(5)},
		{ID: id2, Amount: crabrolls.NewUintFromUint64(1)},
	})
	if err == nil {
		t.Fatal("expected an error when one leg of a batch transfer is short")
	}

	// Neither leg should have moved.
	if delta.ERC1155Balance(alice, token, id1).Cmp(crabrolls.NewUintFromUint64(10)) != 0 {
		t.Error("id1 leg partially applied despite all-or-nothing semantics")
	}
	if !delta.ERC1155Balance(bob, token, id1).IsZero() {
		t.Error("bob received id1 despite the batch transfer failing")
	}
}

func TestApplyDeltaCommitsAndDiscardMirrorsReject(t *testing.T) {
	ledger := wallet.NewLedger()
	alice := addr(1)

	accepted := ledger.NewDelta()
	if err := accepted.EtherDeposit(alice, crabrolls.NewUintFromUint64(10)); err != nil {
		t.Fatalf("EtherDeposit: %v", err)
	}
	if err := ledger.ApplyDelta(accepted); err != nil {
		t.Fatalf("ApplyDelta: %v", err)
	}
	if ledger.EtherBalance(alice).Cmp(crabrolls.NewUintFromUint64(10)) != 0 {
		t.Fatalf("balance after commit: got %s, want 10", ledger.EtherBalance(alice))
	}

	// A rejected delta is simply never applied — the ledger is untouched.
	rejected := ledger.NewDelta()
	if err := rejected.EtherDeposit(alice, crabrolls.NewUintFromUint64(1000)); err != nil {
		t.Fatalf("EtherDeposit: %v", err)
	}
	if ledger.EtherBalance(alice).Cmp(crabrolls.NewUintFromUint64(10)) != 0 {
		t.Fatalf("ledger mutated before ApplyDelta: got %s", ledger.EtherBalance(alice))
	}
}

func TestApplyDeltaRejectsForeignDelta(t *testing.T) {
	ledgerA := wallet.NewLedger()
	ledgerB := wallet.NewLedger()
	delta := ledgerA.NewDelta()

	if err := ledgerB.ApplyDelta(delta); err == nil {
		t.Fatal("expected an error applying a delta to a ledger that did not create it")
	}
}

func TestReadYourWrites(t *testing.T) {
	ledger := wallet.NewLedger()
	delta := ledger.NewDelta()
	alice, token := addr(1), addr(9)

	if err := delta.ERC20Deposit(alice, token, crabrolls.NewUintFromUint64(50)); err != nil {
		t.Fatalf("ERC20Deposit: %v", err)
	}
	if delta.ERC20Balance(alice, token).Cmp(crabrolls.NewUintFromUint64(50)) != 0 {
		t.Fatal("expected the staged deposit to be visible within the same delta")
	}

	addrs := delta.ERC20Addresses()
	found := false
	for _, a := range addrs {
		if a == alice {
			found = true
		}
	}
	if !found {
		t.Fatal("expected ERC20Addresses to reflect a staged, uncommitted deposit")
	}
}
