package abi

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// PackedKind tags a PackedToken's representation. Portals use a
// non-standard tight packing distinct from standard ABI encoding:
// address = 20 raw bytes, uint256 = fixed 32 bytes big-endian, bool = 1
// byte, bytes = raw with no length prefix.
type PackedKind int

const (
	PackedAddress PackedKind = iota
	PackedUint256
	PackedBool
	PackedBytes
)

// PackedToken is a tag-plus-union-body value for the packed encoding.
// Only the field matching Kind is meaningful.
type PackedToken struct {
	Kind    PackedKind
	Address common.Address
	Uint    *big.Int
	Bool    bool
	Bytes   []byte
}

// NewPackedAddress builds an address packed token.
func NewPackedAddress(a common.Address) PackedToken {
	return PackedToken{Kind: PackedAddress, Address: a}
}

// NewPackedUint256 builds a uint256 packed token.
func NewPackedUint256(v *big.Int) PackedToken {
	return PackedToken{Kind: PackedUint256, Uint: v}
}

// NewPackedBool builds a bool packed token.
func NewPackedBool(b bool) PackedToken {
	return PackedToken{Kind: PackedBool, Bool: b}
}

// NewPackedBytes builds a raw, unprefixed bytes packed token. Only
// valid as the last token in a Pack call.
func NewPackedBytes(b []byte) PackedToken {
	return PackedToken{Kind: PackedBytes, Bytes: b}
}

// SizeOfPackedToken returns the packed byte width of a single token.
func SizeOfPackedToken(t PackedToken) (int, error) {
	switch t.Kind {
	case PackedAddress:
		return 20, nil
	case PackedUint256:
		return 32, nil
	case PackedBool:
		return 1, nil
	case PackedBytes:
		return len(t.Bytes), nil
	default:
		return 0, &CodecError{Kind: Malformed, Msg: fmt.Sprintf("unknown packed kind %d", t.Kind)}
	}
}

// SizeOfPackedTokens returns the total packed byte width of a sequence
// of tokens.
func SizeOfPackedTokens(ts []PackedToken) (int, error) {
	total := 0
	for _, t := range ts {
		n, err := SizeOfPackedToken(t)
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

// Pack tightly concatenates tokens with no padding between them beyond
// each token's own fixed width (address=20, uint256=32, bool=1) and no
// length prefix for raw bytes.
func Pack(tokens []PackedToken) ([]byte, error) {
	size, err := SizeOfPackedTokens(tokens)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, size)
	for _, t := range tokens {
		switch t.Kind {
		case PackedAddress:
			out = append(out, t.Address.Bytes()...)
		case PackedUint256:
			if t.Uint == nil {
				return nil, &CodecError{Kind: Malformed, Msg: "nil uint256 token"}
			}
			if t.Uint.Sign() < 0 || t.Uint.BitLen() > 256 {
				return nil, &CodecError{Kind: Malformed, Msg: "uint256 out of range"}
			}
			var buf [32]byte
			t.Uint.FillBytes(buf[:])
			out = append(out, buf[:]...)
		case PackedBool:
			if t.Bool {
				out = append(out, 1)
			} else {
				out = append(out, 0)
			}
		case PackedBytes:
			out = append(out, t.Bytes...)
		default:
			return nil, &CodecError{Kind: Malformed, Msg: fmt.Sprintf("unknown packed kind %d", t.Kind)}
		}
	}
	return out, nil
}

// Unpack consumes a fixed-width prefix of data matching paramTypes (in
// order) and returns the decoded tokens plus whatever bytes remain
// after the prefix. paramTypes must not contain PackedBytes except as
// the final entry, in which case it consumes the remainder of data.
// This is how the portal decoder peels a packed prefix before handing
// the tail to the application or to DecodeABI.
func Unpack(paramTypes []PackedKind, data []byte) ([]PackedToken, []byte, error) {
	tokens := make([]PackedToken, 0, len(paramTypes))
	offset := 0
	for i, kind := range paramTypes {
		switch kind {
		case PackedAddress:
			if offset+20 > len(data) {
				return nil, nil, &CodecError{Kind: Malformed, Msg: "truncated address in packed prefix"}
			}
			tokens = append(tokens, NewPackedAddress(common.BytesToAddress(data[offset:offset+20])))
			offset += 20
		case PackedUint256:
			if offset+32 > len(data) {
				return nil, nil, &CodecError{Kind: Malformed, Msg: "truncated uint256 in packed prefix"}
			}
			tokens = append(tokens, NewPackedUint256(new(big.Int).SetBytes(data[offset:offset+32])))
			offset += 32
		case PackedBool:
			if offset+1 > len(data) {
				return nil, nil, &CodecError{Kind: Malformed, Msg: "truncated bool in packed prefix"}
			}
			tokens = append(tokens, NewPackedBool(data[offset] != 0))
			offset += 1
		case PackedBytes:
			if i != len(paramTypes)-1 {
				return nil, nil, &CodecError{Kind: Malformed, Msg: "PackedBytes only valid as the final param type"}
			}
			tokens = append(tokens, NewPackedBytes(data[offset:]))
			offset = len(data)
		default:
			return nil, nil, &CodecError{Kind: Malformed, Msg: fmt.Sprintf("unknown packed kind %d", kind)}
		}
	}
	return tokens, data[offset:], nil
}
