// Package ether builds EtherPortal deposit payloads and withdrawEther
// vouchers: the two wire-format responsibilities of the Ether asset
// helper described in the codec component.
package ether

import (
	"math/big"

	"github.com/crabrolls-cartesi/crabrolls/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Signature of the dapp-self-originating withdrawal call.
const WithdrawSignature = "withdrawEther(address,uint256)"

// DepositPayload builds the EtherPortal wire payload:
// address sender (20) || uint256 amount (32) || bytes extra.
func DepositPayload(sender common.Address, amount *big.Int, extra []byte) ([]byte, error) {
	prefix, err := abi.Pack([]abi.PackedToken{
		abi.NewPackedAddress(sender),
		abi.NewPackedUint256(amount),
	})
	if err != nil {
		return nil, err
	}
	return append(prefix, extra...), nil
}

// DecodeDepositPayload peels the EtherPortal prefix off payload and
// returns (sender, amount, extra).
func DecodeDepositPayload(payload []byte) (sender common.Address, amount *big.Int, extra []byte, err error) {
	tokens, rest, err := abi.Unpack([]abi.PackedKind{abi.PackedAddress, abi.PackedUint256}, payload)
	if err != nil {
		return common.Address{}, nil, nil, err
	}
	return tokens[0].Address, tokens[1].Uint, rest, nil
}

var withdrawTypes = []abi.ParamType{
	abi.MustNewType("address"),
	abi.MustNewType("uint256"),
}

// WithdrawVoucher builds the withdrawEther(address,uint256) call body;
// the destination is the dapp's own address.
func WithdrawVoucher(dappAddress common.Address, amount *big.Int) ([]byte, error) {
	return abi.FunctionCallFromSignature(WithdrawSignature, withdrawTypes, []any{dappAddress, amount})
}
