package token

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Kind classifies how a token's balance and transfer semantics are implemented.
type Kind string

const (
	// KindNative is the chain's base unit of value, moved without a contract.
	KindNative Kind = "native"
	// KindContractBacked is an ERC-20 style token backed by a contract.
	KindContractBacked Kind = "contract"
)

// Descriptor describes one token the agent knows about.
// Invariant: Contract is set iff Kind is KindContractBacked.
type Descriptor struct {
	Symbol   string
	Name     string
	Decimals uint8
	Kind     Kind
	Contract common.Address
}

// IsNative reports whether the token is the chain's native currency.
func (d Descriptor) IsNative() bool {
	return d.Kind == KindNative
}

// Registry is an ordered, immutable set of token descriptors. Order matters:
// balance reports list tokens in definition order, native currency first.
type Registry struct {
	tokens   []Descriptor
	bySymbol map[string]Descriptor
}

// NewRegistry validates the descriptors and builds a registry.
// The native token must come first so report ordering falls out of the slice.
func NewRegistry(tokens ...Descriptor) (*Registry, error) {
	if len(tokens) == 0 {
		return nil, fmt.Errorf("registry needs at least one token")
	}
	if !tokens[0].IsNative() {
		return nil, fmt.Errorf("first registry token must be the native currency, got %s", tokens[0].Symbol)
	}

	bySymbol := make(map[string]Descriptor, len(tokens))
	for _, t := range tokens {
		switch t.Kind {
		case KindNative:
			if t.Contract != (common.Address{}) {
				return nil, fmt.Errorf("native token %s must not have a contract address", t.Symbol)
			}
		case KindContractBacked:
			if t.Contract == (common.Address{}) {
				return nil, fmt.Errorf("contract-backed token %s is missing its contract address", t.Symbol)
			}
		default:
			return nil, fmt.Errorf("token %s has unknown kind %q", t.Symbol, t.Kind)
		}

		key := strings.ToUpper(t.Symbol)
		if _, dup := bySymbol[key]; dup {
			return nil, fmt.Errorf("duplicate token symbol %s", t.Symbol)
		}
		bySymbol[key] = t
	}

	return &Registry{tokens: tokens, bySymbol: bySymbol}, nil
}

// Default returns the registry the agent ships with: MNT as the native
// currency plus the AISHOP shop token on Mantle Sepolia.
func Default(aishopContract common.Address) *Registry {
	reg, err := NewRegistry(
		Descriptor{
			Symbol:   "MNT",
			Name:     "Mantle",
			Decimals: 18,
			Kind:     KindNative,
		},
		Descriptor{
			Symbol:   "AISHOP",
			Name:     "AIShop Token",
			Decimals: 18,
			Kind:     KindContractBacked,
			Contract: aishopContract,
		},
	)
	if err != nil {
		// Static input, cannot fail
		panic(err)
	}
	return reg
}

// Lookup returns the descriptor for a symbol, case-insensitively.
func (r *Registry) Lookup(symbol string) (Descriptor, bool) {
	d, ok := r.bySymbol[strings.ToUpper(symbol)]
	return d, ok
}

// Native returns the native currency descriptor.
func (r *Registry) Native() Descriptor {
	return r.tokens[0]
}

// ContractTokens returns the contract-backed tokens in definition order.
func (r *Registry) ContractTokens() []Descriptor {
	out := make([]Descriptor, 0, len(r.tokens)-1)
	for _, t := range r.tokens {
		if !t.IsNative() {
			out = append(out, t)
		}
	}
	return out
}

// All returns every descriptor in definition order.
func (r *Registry) All() []Descriptor {
	out := make([]Descriptor, len(r.tokens))
	copy(out, r.tokens)
	return out
}
