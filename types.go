package crabrolls

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Address is a 20-byte opaque identifier, compared byte-wise.
type Address [20]byte

// AddressFromHex parses a 0x-prefixed (or bare) hex address.
func AddressFromHex(s string) (Address, error) {
	s = strings.TrimPrefix(s, "0x")
	s = strings.TrimPrefix(s, "0X")
	b, err := hex.DecodeString(s)
	if err != nil {
		return Address{}, fmt.Errorf("crabrolls: invalid address hex %q: %w", s, err)
	}
	return AddressFromBytes(b)
}

// AddressFromBytes builds an Address from an exactly-20-byte slice.
func AddressFromBytes(b []byte) (Address, error) {
	if len(b) != 20 {
		return Address{}, fmt.Errorf("crabrolls: address must be 20 bytes, got %d", len(b))
	}
	var a Address
	copy(a[:], b)
	return a, nil
}

// AddressFromCommon converts a go-ethereum common.Address.
func AddressFromCommon(a common.Address) Address {
	var out Address
	copy(out[:], a.Bytes())
	return out
}

// Common converts to a go-ethereum common.Address, for handing values
// straight to the accounts/abi package.
func (a Address) Common() common.Address {
	return common.BytesToAddress(a[:])
}

// Bytes returns a copy of the underlying 20 bytes.
func (a Address) Bytes() []byte {
	b := make([]byte, 20)
	copy(b, a[:])
	return b
}

// Hex renders the address as a 0x-prefixed lowercase hex string.
func (a Address) Hex() string {
	return "0x" + hex.EncodeToString(a[:])
}

func (a Address) String() string { return a.Hex() }

// IsZero reports whether the address is the all-zero address.
func (a Address) IsZero() bool { return a == Address{} }

// maxUint256 is the representational cap: 2^256 - 1.
var maxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// Uint is an arbitrary-precision unsigned integer capped at 256 bits.
// Arithmetic errors on overflow rather than wrapping, except where a
// method name says it saturates.
type Uint struct {
	v *big.Int
}

// ErrUintOverflow is returned when a Uint operation would exceed 2^256-1
// or go negative.
var ErrUintOverflow = fmt.Errorf("crabrolls: uint256 overflow")

// ZeroUint is the zero value.
func ZeroUint() Uint { return Uint{v: big.NewInt(0)} }

// NewUintFromUint64 builds a Uint from a uint64.
func NewUintFromUint64(v uint64) Uint {
	return Uint{v: new(big.Int).SetUint64(v)}
}

// NewUintFromBig builds a Uint from a *big.Int, validating the 256-bit
// cap and non-negativity.
func NewUintFromBig(v *big.Int) (Uint, error) {
	if v.Sign() < 0 {
		return Uint{}, fmt.Errorf("%w: negative value", ErrUintOverflow)
	}
	if v.Cmp(maxUint256) > 0 {
		return Uint{}, fmt.Errorf("%w: exceeds 2^256-1", ErrUintOverflow)
	}
	return Uint{v: new(big.Int).Set(v)}, nil
}

// NewUintFromBytes interprets b as a big-endian unsigned integer.
func NewUintFromBytes(b []byte) (Uint, error) {
	return NewUintFromBig(new(big.Int).SetBytes(b))
}

// Big returns a copy of the underlying *big.Int.
func (u Uint) Big() *big.Int {
	if u.v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(u.v)
}

// IsZero reports whether the value is zero.
func (u Uint) IsZero() bool { return u.v == nil || u.v.Sign() == 0 }

// Cmp compares two Uint values the way big.Int.Cmp does.
func (u Uint) Cmp(o Uint) int { return u.Big().Cmp(o.Big()) }

// Add returns u+o, erroring if the result would overflow 2^256-1.
func (u Uint) Add(o Uint) (Uint, error) {
	return NewUintFromBig(new(big.Int).Add(u.Big(), o.Big()))
}

// Sub returns u-o, erroring if the result would be negative.
func (u Uint) Sub(o Uint) (Uint, error) {
	return NewUintFromBig(new(big.Int).Sub(u.Big(), o.Big()))
}

// Bytes32 renders u as a big-endian, left-zero-padded 32-byte array —
// the portal/voucher packed encoding of a uint256.
func (u Uint) Bytes32() [32]byte {
	var out [32]byte
	b := u.Big().Bytes()
	copy(out[32-len(b):], b)
	return out
}

func (u Uint) String() string { return u.Big().String() }
