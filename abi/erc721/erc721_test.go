package erc721_test

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/crabrolls-cartesi/crabrolls/abi/erc721"
)

func TestDepositPayloadRoundTrip(t *testing.T) {
	token := common.HexToAddress("0x1000000000000000000000000000000000000a")
	sender := common.HexToAddress("0x2000000000000000000000000000000000000b")
	id := big.NewInt(7)
	extra := []byte("nft note")

	payload, err := erc721.DepositPayload(token, sender, id, extra)
	if err != nil {
		t.Fatalf("DepositPayload: %v", err)
	}

	gotToken, gotSender, gotID, gotExtra, err := erc721.DecodeDepositPayload(payload)
	if err != nil {
		t.Fatalf("DecodeDepositPayload: %v", err)
	}
	if gotToken != token {
		t.Errorf("token: got %v, want %v", gotToken, token)
	}
	if gotSender != sender {
		t.Errorf("sender: got %v, want %v", gotSender, sender)
	}
	if gotID.Cmp(id) != 0 {
		t.Errorf("id: got %v, want %v", gotID, id)
	}
	if !bytes.Equal(gotExtra, extra) {
		t.Errorf("extra: got %q, want %q", gotExtra, extra)
	}
}

func TestWithdrawVoucherBuildsCallBody(t *testing.T) {
	dapp := common.HexToAddress("0x3000000000000000000000000000000000000c")
	recipient := common.HexToAddress("0x4000000000000000000000000000000000000d")
	out, err := erc721.WithdrawVoucher(dapp, recipient, big.NewInt(1))
	if err != nil {
		t.Fatalf("WithdrawVoucher: %v", err)
	}
	if len(out) < 4 {
		t.Fatalf("withdraw call body too short: %d bytes", len(out))
	}
}
