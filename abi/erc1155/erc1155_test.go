package erc1155_test

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/crabrolls-cartesi/crabrolls/abi"
	"github.com/crabrolls-cartesi/crabrolls/abi/erc1155"
)

func TestDepositPayloadSingleRoundTrip(t *testing.T) {
	token := common.HexToAddress("0x1000000000000000000000000000000000000a")
	sender := common.HexToAddress("0x2000000000000000000000000000000000000b")
	id, amount := big.NewInt(9), big.NewInt(3)
	extra := []byte("single deposit note")

	payload, err := erc1155.DepositPayloadSingle(token, sender, id, amount, extra)
	if err != nil {
		t.Fatalf("DepositPayloadSingle: %v", err)
	}

	gotToken, gotSender, gotID, gotAmount, gotExtra, err := erc1155.DecodeDepositPayloadSingle(payload)
	if err != nil {
		t.Fatalf("DecodeDepositPayloadSingle: %v", err)
	}
	if gotToken != token || gotSender != sender {
		t.Errorf("token/sender mismatch: got %v/%v, want %v/%v", gotToken, gotSender, token, sender)
	}
	if gotID.Cmp(id) != 0 || gotAmount.Cmp(amount) != 0 {
		t.Errorf("id/amount mismatch: got %v/%v, want %v/%v", gotID, gotAmount, id, amount)
	}
	if !bytes.Equal(gotExtra, extra) {
		t.Errorf("extra: got %q, want %q", gotExtra, extra)
	}
}

func TestDepositPayloadBatchRoundTrip(t *testing.T) {
	token := common.HexToAddress("0x1000000000000000000000000000000000000a")
	sender := common.HexToAddress("0x2000000000000000000000000000000000000b")
	ids := []*big.Int{big.NewInt(1), big.NewInt(2), big.NewInt(3)}
	amounts := []*big.Int{big.NewInt(10), big.NewInt(20), big.NewInt(30)}
	baseLayer := []byte("cartesi-reserved framing")
	execLayer := []byte("application tail payload")

	payload, err := erc1155.DepositPayloadBatch(token, sender, ids, amounts, baseLayer, execLayer)
	if err != nil {
		t.Fatalf("DepositPayloadBatch: %v", err)
	}

	gotToken, gotSender, gotIDs, gotAmounts, gotBase, gotExec, err := erc1155.DecodeDepositPayloadBatch(payload)
	if err != nil {
		t.Fatalf("DecodeDepositPayloadBatch: %v", err)
	}
	if gotToken != token || gotSender != sender {
		t.Errorf("token/sender mismatch")
	}
	if len(gotIDs) != len(ids) || len(gotAmounts) != len(amounts) {
		t.Fatalf("length mismatch: ids %d/%d amounts %d/%d", len(gotIDs), len(ids), len(gotAmounts), len(amounts))
	}
	for i := range ids {
		if gotIDs[i].Cmp(ids[i]) != 0 {
			t.Errorf("ids[%d]: got %v, want %v", i, gotIDs[i], ids[i])
		}
		if gotAmounts[i].Cmp(amounts[i]) != 0 {
			t.Errorf("amounts[%d]: got %v, want %v", i, gotAmounts[i], amounts[i])
		}
	}
	if !bytes.Equal(gotBase, baseLayer) {
		t.Errorf("baseLayer: got %q, want %q", gotBase, baseLayer)
	}
	if !bytes.Equal(gotExec, execLayer) {
		t.Errorf("execLayer: got %q, want %q", gotExec, execLayer)
	}
}

func TestDepositPayloadBatchShapeMismatch(t *testing.T) {
	token := common.HexToAddress("0x1000000000000000000000000000000000000a")
	sender := common.HexToAddress("0x2000000000000000000000000000000000000b")
	_, err := erc1155.DepositPayloadBatch(token, sender, []*big.Int{big.NewInt(1)}, nil, nil, nil)
	if err == nil {
		t.Fatal("expected an error for mismatched ids/amounts lengths")
	}
	var codecErr *abi.CodecError
	if ce, ok := err.(*abi.CodecError); ok {
		codecErr = ce
	} else {
		t.Fatalf("expected *abi.CodecError, got %T", err)
	}
	if codecErr.Kind != abi.ShapeMismatch {
		t.Fatalf("expected ShapeMismatch, got %v", codecErr.Kind)
	}
}

func TestWithdrawVoucherPicksSingleVsBatch(t *testing.T) {
	dapp := common.HexToAddress("0x3000000000000000000000000000000000000c")
	recipient := common.HexToAddress("0x4000000000000000000000000000000000000d")

	single, err := erc1155.WithdrawVoucher(dapp, recipient, []*big.Int{big.NewInt(1)}, []*big.Int{big.NewInt(1)}, nil)
	if err != nil {
		t.Fatalf("WithdrawVoucher (single): %v", err)
	}
	wantSingleSel := abi.SelectorFromSignature(erc1155.WithdrawSingleSignature)
	if !bytes.Equal(single[:4], wantSingleSel[:]) {
		t.Errorf("single-element list: got selector %x, want %x", single[:4], wantSingleSel)
	}

	batch, err := erc1155.WithdrawVoucher(dapp, recipient, []*big.Int{big.NewInt(1), big.NewInt(2)}, []*big.Int{big.NewInt(1), big.NewInt(2)}, nil)
	if err != nil {
		t.Fatalf("WithdrawVoucher (batch): %v", err)
	}
	wantBatchSel := abi.SelectorFromSignature(erc1155.WithdrawBatchSignature)
	if !bytes.Equal(batch[:4], wantBatchSel[:]) {
		t.Errorf("multi-element list: got selector %x, want %x", batch[:4], wantBatchSel)
	}
}
