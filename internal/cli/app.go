package cli

import (
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/viper"

	"github.com/aishop-labs/mantle-agent/internal/actions"
	"github.com/aishop-labs/mantle-agent/internal/chain"
	"github.com/aishop-labs/mantle-agent/internal/kv"
	"github.com/aishop-labs/mantle-agent/internal/llm"
	"github.com/aishop-labs/mantle-agent/internal/memory"
	"github.com/aishop-labs/mantle-agent/internal/token"
	"github.com/aishop-labs/mantle-agent/internal/wallet"
)

// app bundles the wired runtime with everything that needs closing.
type app struct {
	runtime  *actions.Runtime
	wallets  *wallet.Store
	memories *memory.Store
	service  *wallet.Service
	kvStore  *kv.SQLiteStore
	client   *chain.Client
}

func newApp() (*app, error) {
	dir := dataDir()
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	kvStore, err := kv.OpenSQLite(dir)
	if err != nil {
		return nil, err
	}

	memories, err := memory.Open(dir)
	if err != nil {
		_ = kvStore.Close()
		return nil, err
	}

	contract := viper.GetString("aishop_contract")
	if !common.IsHexAddress(contract) {
		_ = kvStore.Close()
		_ = memories.Close()
		return nil, fmt.Errorf("invalid aishop_contract address: %s", contract)
	}

	client := chain.NewClient()
	service := wallet.NewService(client, viper.GetString("chain"), viper.GetString("EVM_RPC_URL"))
	wallets := wallet.NewStore(kvStore)
	registry := token.Default(common.HexToAddress(contract))

	opts := []actions.Option{}
	if provider := newFallbackProvider(); provider != nil {
		opts = append(opts, actions.WithFallback(provider))
	}

	return &app{
		runtime:  actions.NewRuntime(actions.NewChainService(service), wallets, memories, registry, opts...),
		wallets:  wallets,
		memories: memories,
		service:  service,
		kvStore:  kvStore,
		client:   client,
	}, nil
}

// newFallbackProvider returns a conversational provider if an API key is
// configured, Anthropic first. A nil provider just means canned fallback
// replies.
func newFallbackProvider() llm.Provider {
	if key := viper.GetString(llm.EnvVarForProvider(llm.ProviderAnthropic)); key != "" {
		if p, err := llm.NewAnthropicProvider(key, ""); err == nil {
			return p
		}
	}
	if key := viper.GetString(llm.EnvVarForProvider(llm.ProviderOpenAI)); key != "" {
		if p, err := llm.NewOpenAIProvider(key, ""); err == nil {
			return p
		}
	}
	return nil
}

func (a *app) Close() {
	if a.memories != nil {
		_ = a.memories.Close()
	}
	if a.kvStore != nil {
		_ = a.kvStore.Close()
	}
	if a.client != nil {
		a.client.Close()
	}
}
