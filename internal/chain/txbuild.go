package chain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// TransferSpec captures a state-changing transaction to be built and signed.
// Data is empty for native sends and carries transfer() calldata for tokens.
type TransferSpec struct {
	From     common.Address
	To       common.Address
	ValueWei *big.Int
	Data     []byte
}

// BuildTransferTx fetches the nonce and fee suggestions, estimates gas, and
// prepares an unsigned EIP-1559 transaction ready for signing.
func (c *Client) BuildTransferTx(ctx context.Context, chainName string, transfer TransferSpec) (*types.Transaction, error) {
	config, err := c.GetChainConfig(chainName)
	if err != nil {
		return nil, err
	}

	nonce, err := c.GetNonce(ctx, chainName, transfer.From)
	if err != nil {
		return nil, err
	}

	tip, err := c.SuggestGasTipCap(ctx, chainName)
	if err != nil {
		return nil, err
	}
	fee, err := c.SuggestGasPrice(ctx, chainName)
	if err != nil {
		return nil, err
	}

	call := ethereum.CallMsg{
		From:      transfer.From,
		To:        &transfer.To,
		GasFeeCap: fee,
		GasTipCap: tip,
		Value:     transfer.ValueWei,
		Data:      transfer.Data,
	}
	gasLimit, err := c.EstimateGas(ctx, chainName, call)
	if err != nil {
		return nil, err
	}

	return types.NewTx(&types.DynamicFeeTx{
		ChainID:   config.ChainID,
		Nonce:     nonce,
		GasTipCap: tip,
		GasFeeCap: fee,
		Gas:       gasLimit,
		To:        &transfer.To,
		Value:     transfer.ValueWei,
		Data:      transfer.Data,
	}), nil
}
