package abi_test

import (
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/crabrolls-cartesi/crabrolls/abi"
)

// Known-good selectors, computed independently (first 4 bytes of
// Keccak-256 over the canonical signature), used as a fixed oracle
// against accidental changes to selector derivation.
func TestSelectorFromSignatureKnownValues(t *testing.T) {
	cases := []struct {
		signature string
		want      string
	}{
		{"transfer(address,uint256)", "a9059cbb"},
		{"safeTransferFrom(address,address,uint256)", "42842e0e"},
		{"safeTransferFrom(address,address,uint256,uint256,bytes)", "f242432a"},
		{"safeBatchTransferFrom(address,address,uint256[],uint256[],bytes)", "2eb2c2d6"},
	}

	for _, tc := range cases {
		t.Run(tc.signature, func(t *testing.T) {
			sel := abi.SelectorFromSignature(tc.signature)
			got := hex.EncodeToString(sel[:])
			if got != tc.want {
				t.Errorf("selector for %q: got %s, want %s", tc.signature, got, tc.want)
			}
		})
	}
}

func TestCanonicalSignature(t *testing.T) {
	addr, _ := abi.NewType("address")
	uint256, _ := abi.NewType("uint256")
	got := abi.CanonicalSignature("transfer", []abi.ParamType{addr, uint256})
	want := "transfer(address,uint256)"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestFunctionCallFromSignatureSelectorPrefix(t *testing.T) {
	uint256, _ := abi.NewType("uint256")
	addr, _ := abi.NewType("address")
	out, err := abi.FunctionCallFromSignature("transfer(address,uint256)", []abi.ParamType{addr, uint256}, []any{
		common.HexToAddress("0x5555555555555555555555555555555555555c"), big.NewInt(42),
	})
	if err != nil {
		t.Fatalf("FunctionCallFromSignature: %v", err)
	}
	if len(out) < 4 {
		t.Fatalf("output too short: %d bytes", len(out))
	}
	wantSel := abi.SelectorFromSignature("transfer(address,uint256)")
	for i := 0; i < 4; i++ {
		if out[i] != wantSel[i] {
			t.Fatalf("selector mismatch at byte %d", i)
		}
	}
}

func TestFunctionCallUnknownMethod(t *testing.T) {
	const abiJSON = `[{"type":"function","name":"foo","inputs":[],"outputs":[]}]`
	_, err := abi.FunctionCall(abiJSON, "bar", nil)
	if err == nil {
		t.Fatal("expected an error for an unknown method name")
	}
	var codecErr *abi.CodecError
	if ce, ok := err.(*abi.CodecError); ok {
		codecErr = ce
	} else {
		t.Fatalf("expected *CodecError, got %T", err)
	}
	if codecErr.Kind != abi.SelectorNotFound {
		t.Fatalf("expected SelectorNotFound, got %v", codecErr.Kind)
	}
}
