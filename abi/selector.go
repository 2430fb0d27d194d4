package abi

import (
	"fmt"
	"strings"

	gethabi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/crypto"
)

// Selector is a 4-byte function selector.
type Selector [4]byte

// SelectorFromSignature computes the selector as the first 4 bytes of
// Keccak-256 over the canonical signature string, e.g.
// "transfer(address,uint256)". The ABI table is never embedded; every
// selector derives from the signature at call time.
func SelectorFromSignature(signature string) Selector {
	var s Selector
	copy(s[:], crypto.Keccak256([]byte(signature))[:4])
	return s
}

// CanonicalSignature builds "name(type1,type2,...)" from a function
// name and its parameter types.
func CanonicalSignature(name string, types []ParamType) string {
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = t.String()
	}
	return name + "(" + strings.Join(parts, ",") + ")"
}

// FunctionCall selects a function by name out of a parsed JSON ABI,
// computes its selector, and appends the standard-ABI encoding of args.
func FunctionCall(abiJSON string, name string, args []any) ([]byte, error) {
	parsed, err := gethabi.JSON(strings.NewReader(abiJSON))
	if err != nil {
		return nil, &CodecError{Kind: Malformed, Msg: "invalid ABI JSON", Err: err}
	}
	method, ok := parsed.Methods[name]
	if !ok {
		return nil, &CodecError{Kind: SelectorNotFound, Msg: fmt.Sprintf("no method named %q in ABI", name)}
	}
	data, err := method.Inputs.Pack(args...)
	if err != nil {
		return nil, &CodecError{Kind: Malformed, Msg: fmt.Sprintf("packing args for %q", name), Err: err}
	}
	out := make([]byte, 0, len(method.ID)+len(data))
	out = append(out, method.ID...)
	out = append(out, data...)
	return out, nil
}

// FunctionCallFromSignature builds a call by explicit canonical
// signature rather than an ABI JSON lookup, used by the asset voucher
// helpers which know their target functions' signatures statically.
func FunctionCallFromSignature(signature string, types []ParamType, args []any) ([]byte, error) {
	sel := SelectorFromSignature(signature)
	encoded, err := EncodeABI(types, args)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, 4+len(encoded))
	out = append(out, sel[:]...)
	out = append(out, encoded...)
	return out, nil
}
