package wallet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aishop-labs/mantle-agent/internal/chain"
)

// Hardhat's well-known first dev account.
const (
	devKey     = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	devAddress = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
)

func TestNewSession(t *testing.T) {
	client := chain.NewClient()
	defer client.Close()

	t.Run("derives the address from the key", func(t *testing.T) {
		session, err := NewSession(devKey, chain.DefaultChain, client)
		require.NoError(t, err)
		assert.Equal(t, devAddress, session.Address().Hex())
	})

	t.Run("accepts a 0x prefix", func(t *testing.T) {
		session, err := NewSession("0x"+devKey, chain.DefaultChain, client)
		require.NoError(t, err)
		assert.Equal(t, devAddress, session.Address().Hex())
	})

	t.Run("rejects malformed key material", func(t *testing.T) {
		_, err := NewSession("not-a-key", chain.DefaultChain, client)
		assert.Error(t, err)
	})
}

func TestBalanceFormat(t *testing.T) {
	b := Balance{Raw: nil, Decimals: 18}
	assert.Equal(t, "0", b.Format())
}
