// Package erc1155 builds ERC1155SinglePortal / ERC1155BatchPortal
// deposit payloads and safeTransferFrom/safeBatchTransferFrom
// withdrawal vouchers.
package erc1155

import (
	"math/big"

	"github.com/crabrolls-cartesi/crabrolls/abi"
	"github.com/ethereum/go-ethereum/common"
)

const (
	WithdrawSingleSignature = "safeTransferFrom(address,address,uint256,uint256,bytes)"
	WithdrawBatchSignature  = "safeBatchTransferFrom(address,address,uint256[],uint256[],bytes)"
)

// DepositPayloadSingle builds the ERC1155SinglePortal wire payload:
// address token (20) || address sender (20) || uint256 id (32) ||
// uint256 amount (32) || bytes extra.
func DepositPayloadSingle(token, sender common.Address, id, amount *big.Int, extra []byte) ([]byte, error) {
	prefix, err := abi.Pack([]abi.PackedToken{
		abi.NewPackedAddress(token),
		abi.NewPackedAddress(sender),
		abi.NewPackedUint256(id),
		abi.NewPackedUint256(amount),
	})
	if err != nil {
		return nil, err
	}
	return append(prefix, extra...), nil
}

// DecodeDepositPayloadSingle peels the ERC1155SinglePortal prefix off
// payload and returns (token, sender, id, amount, extra).
func DecodeDepositPayloadSingle(payload []byte) (token, sender common.Address, id, amount *big.Int, extra []byte, err error) {
	tokens, rest, err := abi.Unpack([]abi.PackedKind{
		abi.PackedAddress, abi.PackedAddress, abi.PackedUint256, abi.PackedUint256,
	}, payload)
	if err != nil {
		return common.Address{}, common.Address{}, nil, nil, nil, err
	}
	return tokens[0].Address, tokens[1].Address, tokens[2].Uint, tokens[3].Uint, rest, nil
}

var batchTailTypes = []abi.ParamType{
	abi.MustNewType("uint256[]"),
	abi.MustNewType("uint256[]"),
	abi.MustNewType("bytes"),
	abi.MustNewType("bytes"),
}

// DepositPayloadBatch builds the ERC1155BatchPortal wire payload:
// address token (20) || address sender (20) || abi-encoded
// (uint256[] ids, uint256[] amounts, bytes baseLayer, bytes execLayer).
// ids and amounts must have equal length.
func DepositPayloadBatch(token, sender common.Address, ids, amounts []*big.Int, baseLayer, execLayer []byte) ([]byte, error) {
	if len(ids) != len(amounts) {
		return nil, &abi.CodecError{Kind: abi.ShapeMismatch, Msg: "erc1155 batch: ids/amounts length mismatch"}
	}
	prefix, err := abi.Pack([]abi.PackedToken{
		abi.NewPackedAddress(token),
		abi.NewPackedAddress(sender),
	})
	if err != nil {
		return nil, err
	}
	tail, err := abi.EncodeABI(batchTailTypes, []any{toBigIntSlice(ids), toBigIntSlice(amounts), baseLayer, execLayer})
	if err != nil {
		return nil, err
	}
	return append(prefix, tail...), nil
}

// DecodeDepositPayloadBatch peels the ERC1155BatchPortal prefix off
// payload and returns (token, sender, ids, amounts, baseLayer,
// execLayer). Fails with CodecError{Kind: ShapeMismatch} if ids and
// amounts decode to different lengths.
func DecodeDepositPayloadBatch(payload []byte) (token, sender common.Address, ids, amounts []*big.Int, baseLayer, execLayer []byte, err error) {
	tokens, rest, err := abi.Unpack([]abi.PackedKind{abi.PackedAddress, abi.PackedAddress}, payload)
	if err != nil {
		return common.Address{}, common.Address{}, nil, nil, nil, nil, err
	}
	decoded, err := abi.DecodeABI(batchTailTypes, rest)
	if err != nil {
		return common.Address{}, common.Address{}, nil, nil, nil, nil, err
	}
	idsBig, ok1 := decoded[0].([]*big.Int)
	amountsBig, ok2 := decoded[1].([]*big.Int)
	baseLayerBytes, ok3 := decoded[2].([]byte)
	execLayerBytes, ok4 := decoded[3].([]byte)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return common.Address{}, common.Address{}, nil, nil, nil, nil, &abi.CodecError{Kind: abi.Malformed, Msg: "erc1155 batch: unexpected decoded types"}
	}
	if len(idsBig) != len(amountsBig) {
		return common.Address{}, common.Address{}, nil, nil, nil, nil, &abi.CodecError{Kind: abi.ShapeMismatch, Msg: "erc1155 batch: ids/amounts length mismatch"}
	}
	return tokens[0].Address, tokens[1].Address, idsBig, amountsBig, baseLayerBytes, execLayerBytes, nil
}

func toBigIntSlice(in []*big.Int) []*big.Int {
	out := make([]*big.Int, len(in))
	copy(out, in)
	return out
}

var withdrawSingleTypes = []abi.ParamType{
	abi.MustNewType("address"),
	abi.MustNewType("address"),
	abi.MustNewType("uint256"),
	abi.MustNewType("uint256"),
	abi.MustNewType("bytes"),
}

var withdrawBatchTypes = []abi.ParamType{
	abi.MustNewType("address"),
	abi.MustNewType("address"),
	abi.MustNewType("uint256[]"),
	abi.MustNewType("uint256[]"),
	abi.MustNewType("bytes"),
}

// WithdrawVoucherSingle builds the
// safeTransferFrom(address,address,uint256,uint256,bytes) call body.
func WithdrawVoucherSingle(dapp, recipient common.Address, id, amount *big.Int, data []byte) ([]byte, error) {
	return abi.FunctionCallFromSignature(WithdrawSingleSignature, withdrawSingleTypes, []any{dapp, recipient, id, amount, data})
}

// WithdrawVoucherBatch builds the
// safeBatchTransferFrom(address,address,uint256[],uint256[],bytes) call
// body.
func WithdrawVoucherBatch(dapp, recipient common.Address, ids, amounts []*big.Int, data []byte) ([]byte, error) {
	if len(ids) != len(amounts) {
		return nil, &abi.CodecError{Kind: abi.ShapeMismatch, Msg: "erc1155 batch withdraw: ids/amounts length mismatch"}
	}
	return abi.FunctionCallFromSignature(WithdrawBatchSignature, withdrawBatchTypes, []any{dapp, recipient, ids, amounts, data})
}

// WithdrawVoucher picks the single or batch call based on list length,
// per spec: a one-element list uses safeTransferFrom, otherwise
// safeBatchTransferFrom.
func WithdrawVoucher(dapp, recipient common.Address, ids, amounts []*big.Int, data []byte) ([]byte, error) {
	if len(ids) != len(amounts) {
		return nil, &abi.CodecError{Kind: abi.ShapeMismatch, Msg: "erc1155 withdraw: ids/amounts length mismatch"}
	}
	if len(ids) == 1 {
		return WithdrawVoucherSingle(dapp, recipient, ids[0], amounts[0], data)
	}
	return WithdrawVoucherBatch(dapp, recipient, ids, amounts, data)
}
