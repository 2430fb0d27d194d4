// Package erc721 builds ERC721Portal deposit payloads and
// safeTransferFrom() withdrawal vouchers.
package erc721

import (
	"math/big"

	"github.com/crabrolls-cartesi/crabrolls/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Signature of the withdrawal call, sent to the token contract.
const WithdrawSignature = "safeTransferFrom(address,address,uint256)"

// DepositPayload builds the ERC721Portal wire payload:
// address token (20) || address sender (20) || uint256 id (32) || bytes extra.
func DepositPayload(token, sender common.Address, id *big.Int, extra []byte) ([]byte, error) {
	prefix, err := abi.Pack([]abi.PackedToken{
		abi.NewPackedAddress(token),
		abi.NewPackedAddress(sender),
		abi.NewPackedUint256(id),
	})
	if err != nil {
		return nil, err
	}
	return append(prefix, extra...), nil
}

// DecodeDepositPayload peels the ERC721Portal prefix off payload and
// returns (token, sender, id, extra).
func DecodeDepositPayload(payload []byte) (token, sender common.Address, id *big.Int, extra []byte, err error) {
	tokens, rest, err := abi.Unpack([]abi.PackedKind{
		abi.PackedAddress, abi.PackedAddress, abi.PackedUint256,
	}, payload)
	if err != nil {
		return common.Address{}, common.Address{}, nil, nil, err
	}
	return tokens[0].Address, tokens[1].Address, tokens[2].Uint, rest, nil
}

var withdrawTypes = []abi.ParamType{
	abi.MustNewType("address"),
	abi.MustNewType("address"),
	abi.MustNewType("uint256"),
}

// WithdrawVoucher builds the safeTransferFrom(address,address,uint256)
// call body; the destination is the token contract.
func WithdrawVoucher(dapp, recipient common.Address, id *big.Int) ([]byte, error) {
	return abi.FunctionCallFromSignature(WithdrawSignature, withdrawTypes, []any{dapp, recipient, id})
}
