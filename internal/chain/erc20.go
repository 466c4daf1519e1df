package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
)

// ERC-20 ABI function selectors used by the agent. Only three entry points
// are needed: decimals() and balanceOf(address) for reads, and
// transfer(address,uint256) for token sends.
var (
	balanceOfSelector = common.Hex2Bytes("70a08231")
	decimalsSelector  = common.Hex2Bytes("313ce567")
	transferSelector  = common.Hex2Bytes("a9059cbb")
)

// EncodeBalanceOf builds calldata for balanceOf(holder).
func EncodeBalanceOf(holder common.Address) []byte {
	data := make([]byte, 36)
	copy(data[:4], balanceOfSelector)
	copy(data[4:], common.LeftPadBytes(holder.Bytes(), 32))
	return data
}

// EncodeTransfer builds calldata for transfer(to, amount).
func EncodeTransfer(to common.Address, amount *big.Int) []byte {
	data := make([]byte, 68)
	copy(data[:4], transferSelector)
	copy(data[4:36], common.LeftPadBytes(to.Bytes(), 32))
	copy(data[36:], common.LeftPadBytes(amount.Bytes(), 32))
	return data
}

// GetTokenDecimals reads a token contract's declared decimals.
// Falls back to 18 if the contract returns nothing, matching the common case.
func (c *Client) GetTokenDecimals(ctx context.Context, chainName string, token common.Address) (uint8, error) {
	msg := ethereum.CallMsg{
		To:   &token,
		Data: decimalsSelector,
	}

	result, err := c.CallContract(ctx, chainName, msg)
	if err != nil {
		return 18, err
	}

	if len(result) == 0 {
		return 18, nil
	}

	return uint8(new(big.Int).SetBytes(result).Uint64()), nil
}

// GetTokenBalance returns the raw balance of an ERC-20 token for a holder.
func (c *Client) GetTokenBalance(ctx context.Context, chainName string, token, holder common.Address) (*big.Int, error) {
	msg := ethereum.CallMsg{
		To:   &token,
		Data: EncodeBalanceOf(holder),
	}

	result, err := c.CallContract(ctx, chainName, msg)
	if err != nil {
		return nil, fmt.Errorf("failed to get token balance: %w", err)
	}

	return new(big.Int).SetBytes(result), nil
}
