package chain

import (
	"fmt"
	"math/big"
)

// ChainConfig holds configuration for an EVM chain.
// Invariant: ChainID and ChainIDInt must always represent the same value.
// ChainIDInt exists for YAML serialization (big.Int doesn't serialize cleanly).
// ChainID is used at runtime for RPC calls and transaction signing.
type ChainConfig struct {
	Name           string   `yaml:"name"`
	ChainID        *big.Int `yaml:"-"`        // Runtime use (signing, RPC validation)
	ChainIDInt     int64    `yaml:"chain_id"` // YAML serialization
	RPCURLs        []string `yaml:"rpc_urls"`
	ExplorerURL    string   `yaml:"explorer_url"`
	NativeCurrency string   `yaml:"native_currency"`
	IsTestnet      bool     `yaml:"is_testnet"`
}

// DefaultChain is the chain the agent operates on unless configured otherwise.
const DefaultChain = "mantle-sepolia"

// DefaultChains returns the default chain configurations
func DefaultChains() map[string]*ChainConfig {
	return map[string]*ChainConfig{
		"mantle": {
			Name:           "Mantle Mainnet",
			ChainID:        big.NewInt(5000),
			ChainIDInt:     5000,
			RPCURLs:        []string{"https://rpc.mantle.xyz", "https://mantle-rpc.publicnode.com"},
			ExplorerURL:    "https://mantlescan.xyz",
			NativeCurrency: "MNT",
			IsTestnet:      false,
		},
		"mantle-sepolia": {
			Name:           "Mantle Sepolia Testnet",
			ChainID:        big.NewInt(5003),
			ChainIDInt:     5003,
			RPCURLs:        []string{"https://rpc.sepolia.mantle.xyz", "https://mantle-sepolia.drpc.org"},
			ExplorerURL:    "https://sepolia.mantlescan.xyz",
			NativeCurrency: "MNT",
			IsTestnet:      true,
		},
	}
}

// AddressURL returns the explorer link for an address.
func (c *ChainConfig) AddressURL(address string) string {
	return fmt.Sprintf("%s/address/%s", c.ExplorerURL, address)
}

// TxURL returns the explorer link for a transaction hash.
func (c *ChainConfig) TxURL(txHash string) string {
	return fmt.Sprintf("%s/tx/%s", c.ExplorerURL, txHash)
}
