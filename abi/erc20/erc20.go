// Package erc20 builds ERC20Portal deposit payloads and ERC-20
// transfer() withdrawal vouchers.
package erc20

import (
	"math/big"

	"github.com/crabrolls-cartesi/crabrolls/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Signature of the withdrawal call, sent to the token contract itself.
const WithdrawSignature = "transfer(address,uint256)"

// DepositPayload builds the ERC20Portal wire payload:
// bool success (1) || address token (20) || address sender (20) ||
// uint256 amount (32) || bytes extra.
func DepositPayload(success bool, token, sender common.Address, amount *big.Int, extra []byte) ([]byte, error) {
	prefix, err := abi.Pack([]abi.PackedToken{
		abi.NewPackedBool(success),
		abi.NewPackedAddress(token),
		abi.NewPackedAddress(sender),
		abi.NewPackedUint256(amount),
	})
	if err != nil {
		return nil, err
	}
	return append(prefix, extra...), nil
}

// DecodeDepositPayload peels the ERC20Portal prefix off payload and
// returns (success, token, sender, amount, extra).
func DecodeDepositPayload(payload []byte) (success bool, token, sender common.Address, amount *big.Int, extra []byte, err error) {
	tokens, rest, err := abi.Unpack([]abi.PackedKind{
		abi.PackedBool, abi.PackedAddress, abi.PackedAddress, abi.PackedUint256,
	}, payload)
	if err != nil {
		return false, common.Address{}, common.Address{}, nil, nil, err
	}
	return tokens[0].Bool, tokens[1].Address, tokens[2].Address, tokens[3].Uint, rest, nil
}

var withdrawTypes = []abi.ParamType{
	abi.MustNewType("address"),
	abi.MustNewType("uint256"),
}

// WithdrawVoucher builds the transfer(address,uint256) call body; the
// destination is the token contract.
func WithdrawVoucher(recipient common.Address, amount *big.Int) ([]byte, error) {
	return abi.FunctionCallFromSignature(WithdrawSignature, withdrawTypes, []any{recipient, amount})
}
