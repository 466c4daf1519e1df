package wallet

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/aishop-labs/mantle-agent/internal/chain"
)

// Balance is a raw on-chain amount plus the decimals needed to display it.
type Balance struct {
	Raw      *big.Int
	Decimals uint8
}

// Format renders the balance as a decimal string.
func (b Balance) Format() string {
	return chain.FormatUnits(b.Raw, b.Decimals)
}

// Session binds one private key to read and write operations against one
// configured chain. It lives for a single flow invocation and persists
// nothing; errors surface to the caller without retries.
type Session struct {
	key       *ecdsa.PrivateKey
	address   common.Address
	chainName string
	client    *chain.Client
}

// NewSession constructs a session from hex key material. The address is
// derived once here.
func NewSession(privateKeyHex, chainName string, client *chain.Client) (*Session, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}

	return &Session{
		key:       key,
		address:   crypto.PubkeyToAddress(key.PublicKey),
		chainName: chainName,
		client:    client,
	}, nil
}

// Address returns the session's derived address.
func (s *Session) Address() common.Address {
	return s.address
}

// NativeBalance fetches the session address's native balance.
func (s *Session) NativeBalance(ctx context.Context) (*Balance, error) {
	raw, err := s.client.GetBalance(ctx, s.chainName, s.address)
	if err != nil {
		return nil, fmt.Errorf("fetch native balance: %w", err)
	}
	return &Balance{Raw: raw, Decimals: 18}, nil
}

// TokenBalance fetches the session address's balance for a token contract.
// Two sequential reads: the contract's decimals, then balanceOf.
func (s *Session) TokenBalance(ctx context.Context, token common.Address) (*Balance, error) {
	decimals, err := s.client.GetTokenDecimals(ctx, s.chainName, token)
	if err != nil {
		return nil, fmt.Errorf("fetch token decimals: %w", err)
	}
	raw, err := s.client.GetTokenBalance(ctx, s.chainName, token, s.address)
	if err != nil {
		return nil, fmt.Errorf("fetch token balance: %w", err)
	}
	return &Balance{Raw: raw, Decimals: decimals}, nil
}

// SendNative builds, signs, and broadcasts one native value transfer and
// returns the hash immediately after broadcast.
func (s *Session) SendNative(ctx context.Context, to common.Address, amountWei *big.Int) (common.Hash, error) {
	return s.send(ctx, chain.TransferSpec{
		From:     s.address,
		To:       to,
		ValueWei: amountWei,
	})
}

// SendToken builds, signs, and broadcasts one ERC-20 transfer() call and
// returns the hash immediately after broadcast.
func (s *Session) SendToken(ctx context.Context, token, to common.Address, amount *big.Int) (common.Hash, error) {
	return s.send(ctx, chain.TransferSpec{
		From:     s.address,
		To:       token,
		ValueWei: big.NewInt(0),
		Data:     chain.EncodeTransfer(to, amount),
	})
}

func (s *Session) send(ctx context.Context, spec chain.TransferSpec) (common.Hash, error) {
	unsigned, err := s.client.BuildTransferTx(ctx, s.chainName, spec)
	if err != nil {
		return common.Hash{}, fmt.Errorf("build tx: %w", err)
	}

	config, err := s.client.GetChainConfig(s.chainName)
	if err != nil {
		return common.Hash{}, err
	}

	signer := types.LatestSignerForChainID(config.ChainID)
	signed, err := types.SignTx(unsigned, signer, s.key)
	if err != nil {
		return common.Hash{}, fmt.Errorf("sign tx: %w", err)
	}

	if err := s.client.SendTransaction(ctx, s.chainName, signed); err != nil {
		return common.Hash{}, fmt.Errorf("broadcast tx: %w", err)
	}

	return signed.Hash(), nil
}

// AwaitConfirmation blocks until the transaction reaches the requested
// confirmation depth. Callers bound the wait with the context.
func (s *Session) AwaitConfirmation(ctx context.Context, txHash common.Hash, minConfirmations uint64) (*types.Receipt, error) {
	return s.client.WaitConfirmed(ctx, s.chainName, txHash, minConfirmations)
}
