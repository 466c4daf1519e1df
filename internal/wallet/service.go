package wallet

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/viper"

	"github.com/aishop-labs/mantle-agent/internal/chain"
)

// Service ties the chain client to one configured chain and hands out
// sessions and read-only balance queries. Flows depend on this rather than
// on the raw client.
type Service struct {
	client    *chain.Client
	chainName string
}

// NewService creates a service for the given chain. An optional rpcOverride
// (the EVM_RPC_URL setting) is tried before the chain's default endpoints.
func NewService(client *chain.Client, chainName, rpcOverride string) *Service {
	if rpcOverride != "" {
		client.SetRPCOverride(chainName, rpcOverride)
	}
	return &Service{client: client, chainName: chainName}
}

// Session constructs a signing session from hex key material.
func (svc *Service) Session(privateKeyHex string) (*Session, error) {
	return NewSession(privateKeyHex, svc.chainName, svc.client)
}

// ProcessSession returns the agent's own wallet session, built from the
// EVM_PRIVATE_KEY setting. Per-user wallets bypass this entirely.
func (svc *Service) ProcessSession() (*Session, error) {
	key := viper.GetString("EVM_PRIVATE_KEY")
	if key == "" {
		return nil, fmt.Errorf("EVM_PRIVATE_KEY is not configured")
	}
	return svc.Session(key)
}

// NativeBalanceOf fetches the native balance of an arbitrary address.
func (svc *Service) NativeBalanceOf(ctx context.Context, address common.Address) (*Balance, error) {
	raw, err := svc.client.GetBalance(ctx, svc.chainName, address)
	if err != nil {
		return nil, fmt.Errorf("fetch native balance: %w", err)
	}
	return &Balance{Raw: raw, Decimals: 18}, nil
}

// TokenBalanceOf fetches a token balance of an arbitrary address.
func (svc *Service) TokenBalanceOf(ctx context.Context, token, holder common.Address) (*Balance, error) {
	decimals, err := svc.client.GetTokenDecimals(ctx, svc.chainName, token)
	if err != nil {
		return nil, fmt.Errorf("fetch token decimals: %w", err)
	}
	raw, err := svc.client.GetTokenBalance(ctx, svc.chainName, token, holder)
	if err != nil {
		return nil, fmt.Errorf("fetch token balance: %w", err)
	}
	return &Balance{Raw: raw, Decimals: decimals}, nil
}

// Config returns the chain configuration the service operates on.
func (svc *Service) Config() (*chain.ChainConfig, error) {
	return svc.client.GetChainConfig(svc.chainName)
}
