package token

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var aishopAddr = common.HexToAddress("0x5aF9d0d69FbbDcdCcde99d171D089965AeC1A8a8")

func TestDefaultRegistry(t *testing.T) {
	reg := Default(aishopAddr)

	t.Run("native currency comes first", func(t *testing.T) {
		all := reg.All()
		require.NotEmpty(t, all)
		assert.Equal(t, "MNT", all[0].Symbol)
		assert.True(t, all[0].IsNative())
	})

	t.Run("contract tokens follow in definition order", func(t *testing.T) {
		tokens := reg.ContractTokens()
		require.Len(t, tokens, 1)
		assert.Equal(t, "AISHOP", tokens[0].Symbol)
		assert.Equal(t, aishopAddr, tokens[0].Contract)
	})

	t.Run("lookup is case-insensitive", func(t *testing.T) {
		d, ok := reg.Lookup("aishop")
		require.True(t, ok)
		assert.Equal(t, "AISHOP", d.Symbol)

		_, ok = reg.Lookup("USDC")
		assert.False(t, ok)
	})
}

func TestNewRegistryValidation(t *testing.T) {
	native := Descriptor{Symbol: "MNT", Name: "Mantle", Decimals: 18, Kind: KindNative}

	t.Run("rejects empty registry", func(t *testing.T) {
		_, err := NewRegistry()
		assert.Error(t, err)
	})

	t.Run("rejects non-native first token", func(t *testing.T) {
		_, err := NewRegistry(Descriptor{
			Symbol: "AISHOP", Decimals: 18, Kind: KindContractBacked, Contract: aishopAddr,
		})
		assert.Error(t, err)
	})

	t.Run("rejects contract-backed token without contract", func(t *testing.T) {
		_, err := NewRegistry(native, Descriptor{
			Symbol: "AISHOP", Decimals: 18, Kind: KindContractBacked,
		})
		assert.Error(t, err)
	})

	t.Run("rejects native token with contract", func(t *testing.T) {
		bad := native
		bad.Contract = aishopAddr
		_, err := NewRegistry(bad)
		assert.Error(t, err)
	})

	t.Run("rejects duplicate symbols", func(t *testing.T) {
		_, err := NewRegistry(native,
			Descriptor{Symbol: "AISHOP", Decimals: 18, Kind: KindContractBacked, Contract: aishopAddr},
			Descriptor{Symbol: "aishop", Decimals: 18, Kind: KindContractBacked, Contract: aishopAddr},
		)
		assert.Error(t, err)
	})

	t.Run("accepts a well-formed registry", func(t *testing.T) {
		reg, err := NewRegistry(native,
			Descriptor{Symbol: "AISHOP", Decimals: 18, Kind: KindContractBacked, Contract: aishopAddr},
		)
		require.NoError(t, err)
		assert.Equal(t, "MNT", reg.Native().Symbol)
	})
}
