package actions

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/aishop-labs/mantle-agent/internal/chain"
	"github.com/aishop-labs/mantle-agent/internal/llm"
	"github.com/aishop-labs/mantle-agent/internal/memory"
	"github.com/aishop-labs/mantle-agent/internal/token"
	"github.com/aishop-labs/mantle-agent/internal/wallet"
)

// Request is one inbound free-text message with its caller identity.
type Request struct {
	UserID  string
	AgentID string
	RoomID  string
	Text    string
}

// Reply is the outcome of processing a request: the user-facing text plus the
// action that produced it and its structured payload, if any.
type Reply struct {
	Text    string
	Action  string
	Payload any
}

// Session is the per-invocation signing handle flows operate through.
// *wallet.Session satisfies it; tests substitute fakes.
type Session interface {
	Address() common.Address
	NativeBalance(ctx context.Context) (*wallet.Balance, error)
	TokenBalance(ctx context.Context, tokenContract common.Address) (*wallet.Balance, error)
	SendNative(ctx context.Context, to common.Address, amountWei *big.Int) (common.Hash, error)
	SendToken(ctx context.Context, tokenContract, to common.Address, amount *big.Int) (common.Hash, error)
	AwaitConfirmation(ctx context.Context, txHash common.Hash, minConfirmations uint64) (*types.Receipt, error)
}

// ChainService is the chain capability flows depend on.
type ChainService interface {
	Session(privateKeyHex string) (Session, error)
	NativeBalanceOf(ctx context.Context, address common.Address) (*wallet.Balance, error)
	TokenBalanceOf(ctx context.Context, tokenContract, holder common.Address) (*wallet.Balance, error)
	Config() (*chain.ChainConfig, error)
}

// NewChainService adapts a wallet.Service to the ChainService interface.
func NewChainService(svc *wallet.Service) ChainService {
	return chainAdapter{svc: svc}
}

type chainAdapter struct {
	svc *wallet.Service
}

func (a chainAdapter) Session(privateKeyHex string) (Session, error) {
	return a.svc.Session(privateKeyHex)
}

func (a chainAdapter) NativeBalanceOf(ctx context.Context, address common.Address) (*wallet.Balance, error) {
	return a.svc.NativeBalanceOf(ctx, address)
}

func (a chainAdapter) TokenBalanceOf(ctx context.Context, tokenContract, holder common.Address) (*wallet.Balance, error) {
	return a.svc.TokenBalanceOf(ctx, tokenContract, holder)
}

func (a chainAdapter) Config() (*chain.ChainConfig, error) {
	return a.svc.Config()
}

// Action pairs a pure intent predicate with its handler. Actions are
// evaluated in registration order against one inbound message; the first
// match executes.
type Action struct {
	Name   string
	Match  func(text string) bool
	Handle func(ctx context.Context, req *Request) (*Reply, error)
}

// Runtime dispatches inbound messages to actions and converts every
// flow-level error into a user-facing reply. Nothing propagates to a crash.
type Runtime struct {
	chain    ChainService
	wallets  *wallet.Store
	memories *memory.Store
	registry *token.Registry
	fallback llm.Provider
	actions  []Action
}

// Option configures the runtime.
type Option func(*Runtime)

// WithFallback sets the conversational provider used when no action matches.
func WithFallback(p llm.Provider) Option {
	return func(rt *Runtime) {
		rt.fallback = p
	}
}

// NewRuntime wires the flows in their fixed dispatch order: provisioning,
// token transfer, native transfer, balance. Token transfer is registered
// ahead of native so "enviar 5 AISHOP" routes by its symbol mention.
func NewRuntime(chainSvc ChainService, wallets *wallet.Store, memories *memory.Store, registry *token.Registry, opts ...Option) *Runtime {
	rt := &Runtime{
		chain:    chainSvc,
		wallets:  wallets,
		memories: memories,
		registry: registry,
	}
	for _, opt := range opts {
		opt(rt)
	}

	rt.actions = []Action{
		rt.createWalletAction(),
	}
	for _, t := range registry.ContractTokens() {
		rt.actions = append(rt.actions, rt.transferAction(t))
	}
	rt.actions = append(rt.actions,
		rt.transferAction(registry.Native()),
		rt.balanceAction(),
	)

	return rt
}

// Process runs one request to completion and always produces a reply.
func (rt *Runtime) Process(ctx context.Context, req *Request) *Reply {
	if req == nil || strings.TrimSpace(req.UserID) == "" {
		return rt.failureReply("", ErrIdentityMissing)
	}

	for _, action := range rt.actions {
		if !action.Match(req.Text) {
			continue
		}
		reply, err := action.Handle(ctx, req)
		if err != nil {
			return rt.failureReply(action.Name, err)
		}
		return reply
	}

	return rt.fallbackReply(ctx, req)
}

// failureReply converts a flow error into a natural-language explanation
// with a suggested remedial action where one exists.
func (rt *Runtime) failureReply(action string, err error) *Reply {
	var insufficient *InsufficientFundsError

	switch {
	case errors.Is(err, ErrIdentityMissing):
		return &Reply{
			Action: action,
			Text:   "I can't tell who you are, so I can't act on this. Please retry from an identified session.",
		}
	case errors.Is(err, wallet.ErrNoWallet):
		return &Reply{
			Action: action,
			Text:   "You don't have a wallet yet. Say \"create wallet\" (or \"crear wallet\") and I'll set one up for you first.",
		}
	case errors.Is(err, wallet.ErrWalletExists):
		return &Reply{
			Action: action,
			Text:   "You already have a wallet, so I didn't create another one. Ask for your balance to see it.",
		}
	case errors.Is(err, ErrIntentUnparseable):
		return &Reply{
			Action: action,
			Text:   fmt.Sprintf("I couldn't work out what to send where (%v). Try something like: \"enviar 0.5 MNT a 0x1111111111111111111111111111111111111111\".", err),
		}
	case errors.As(err, &insufficient):
		return &Reply{
			Action: action,
			Text: fmt.Sprintf("You don't have enough %s for that: you hold %s %s and asked to send %s %s. Nothing was sent.",
				insufficient.Symbol, insufficient.Held, insufficient.Symbol, insufficient.Requested, insufficient.Symbol),
		}
	default:
		return &Reply{
			Action: action,
			Text:   fmt.Sprintf("Something went wrong talking to the network (%v). Nothing further happened; please try again.", err),
		}
	}
}

// fallbackReply handles messages no action claims: a conversational LLM
// answer when a provider is configured, a canned capability summary otherwise.
func (rt *Runtime) fallbackReply(ctx context.Context, req *Request) *Reply {
	if rt.fallback != nil {
		resp, err := rt.fallback.Chat(ctx, &llm.ChatRequest{
			SystemPrompt: FallbackSystemPrompt,
			Messages:     []llm.Message{{Role: "user", Content: req.Text}},
		})
		if err == nil && resp.Content != "" {
			return &Reply{Text: resp.Content}
		}
	}

	return &Reply{Text: "I can create a wallet for you (\"crear wallet\"), check balances (\"ver mi balance\"), " +
		"and send MNT or AISHOP (\"enviar 0.5 MNT a 0x...\")."}
}

// FallbackSystemPrompt frames the small-talk fallback for off-topic messages.
const FallbackSystemPrompt = `You are a shop assistant agent on the Mantle Sepolia testnet. You can create
custodial wallets for users, report MNT and AISHOP balances, and send MNT or
AISHOP transfers when asked in plain language (Spanish or English).

The message you are answering did not match any of those operations. Answer
briefly and helpfully, and remind the user what you can do on-chain. Never
invent balances, addresses, or transaction results.`
