// Package abi implements the ABI codec CrabRolls needs to talk to
// portals and to build withdrawal vouchers: standard Ethereum ABI
// encode/decode (delegated to go-ethereum's accounts/abi), the
// non-standard tight "packed" encoding portals use for their deposit
// prefixes, and function-selector computation for vouchers.
//
// All operations return errors; none panic on untrusted input.
package abi

import (
	"fmt"

	gethabi "github.com/ethereum/go-ethereum/accounts/abi"
)

// ParamType is a single ABI parameter type (address, uint256, bytes,
// tuple, ...).
type ParamType = gethabi.Type

// NewType parses a Solidity type string such as "uint256", "address",
// "bytes", or "uint256[]" into a ParamType.
func NewType(solType string) (ParamType, error) {
	t, err := gethabi.NewType(solType, "", nil)
	if err != nil {
		return ParamType{}, &CodecError{Kind: Malformed, Msg: fmt.Sprintf("unknown type %q", solType), Err: err}
	}
	return t, nil
}

// MustNewType is NewType but panics on error; intended for package-level
// var initialization of well-known, constant type strings only — never
// call it on untrusted input.
func MustNewType(solType string) ParamType {
	t, err := NewType(solType)
	if err != nil {
		panic(err)
	}
	return t
}

func arguments(types []ParamType) gethabi.Arguments {
	args := make(gethabi.Arguments, len(types))
	for i, t := range types {
		args[i] = gethabi.Argument{Type: t}
	}
	return args
}

// EncodeABI standard-ABI-encodes a tuple of values against the given
// parameter types: 32-byte head/tail layout, dynamic offsets, and
// right-padding, per the Ethereum ABI specification.
func EncodeABI(types []ParamType, values []any) ([]byte, error) {
	if len(types) != len(values) {
		return nil, &CodecError{Kind: ShapeMismatch, Msg: fmt.Sprintf("%d types vs %d values", len(types), len(values))}
	}
	out, err := arguments(types).Pack(values...)
	if err != nil {
		return nil, &CodecError{Kind: Malformed, Msg: "encode_abi", Err: err}
	}
	return out, nil
}

// DecodeABI is the inverse of EncodeABI. It fails with
// CodecError{Kind: Malformed} on wrong length or invalid offsets.
func DecodeABI(types []ParamType, data []byte) ([]any, error) {
	vals, err := arguments(types).UnpackValues(data)
	if err != nil {
		return nil, &CodecError{Kind: Malformed, Msg: "decode_abi", Err: err}
	}
	return vals, nil
}
