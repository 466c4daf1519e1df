package actions

import (
	"context"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aishop-labs/mantle-agent/internal/chain"
	"github.com/aishop-labs/mantle-agent/internal/kv"
	"github.com/aishop-labs/mantle-agent/internal/memory"
	"github.com/aishop-labs/mantle-agent/internal/token"
	"github.com/aishop-labs/mantle-agent/internal/wallet"
)

var (
	aishopContract = common.HexToAddress("0x5aF9d0d69FbbDcdCcde99d171D089965AeC1A8a8")
	destination    = common.HexToAddress("0x1111111111111111111111111111111111111111")
)

func mnt(amount string) *big.Int {
	units, err := chain.ParseUnits(amount, 18)
	if err != nil {
		panic(err)
	}
	return units
}

type nativeSend struct {
	to     common.Address
	amount *big.Int
}

type tokenSend struct {
	token  common.Address
	to     common.Address
	amount *big.Int
}

// fakeSession implements Session without touching a network.
type fakeSession struct {
	address    common.Address
	native     *big.Int
	tokens     map[common.Address]*big.Int
	sentNative []nativeSend
	sentToken  []tokenSend
}

func (f *fakeSession) Address() common.Address { return f.address }

func (f *fakeSession) NativeBalance(context.Context) (*wallet.Balance, error) {
	return &wallet.Balance{Raw: f.native, Decimals: 18}, nil
}

func (f *fakeSession) TokenBalance(_ context.Context, tokenContract common.Address) (*wallet.Balance, error) {
	raw, ok := f.tokens[tokenContract]
	if !ok {
		raw = big.NewInt(0)
	}
	return &wallet.Balance{Raw: raw, Decimals: 18}, nil
}

func (f *fakeSession) SendNative(_ context.Context, to common.Address, amountWei *big.Int) (common.Hash, error) {
	f.sentNative = append(f.sentNative, nativeSend{to: to, amount: amountWei})
	return common.HexToHash("0xaaaa000000000000000000000000000000000000000000000000000000000001"), nil
}

func (f *fakeSession) SendToken(_ context.Context, tokenContract, to common.Address, amount *big.Int) (common.Hash, error) {
	f.sentToken = append(f.sentToken, tokenSend{token: tokenContract, to: to, amount: amount})
	return common.HexToHash("0xbbbb000000000000000000000000000000000000000000000000000000000002"), nil
}

func (f *fakeSession) AwaitConfirmation(context.Context, common.Hash, uint64) (*types.Receipt, error) {
	return &types.Receipt{Status: types.ReceiptStatusSuccessful, BlockNumber: big.NewInt(42)}, nil
}

// fakeChain implements ChainService over in-memory balances.
type fakeChain struct {
	session   *fakeSession
	nativeOf  map[common.Address]*big.Int
	nativeErr error
	tokenErr  error
}

func (f *fakeChain) Session(string) (Session, error) {
	return f.session, nil
}

func (f *fakeChain) NativeBalanceOf(_ context.Context, address common.Address) (*wallet.Balance, error) {
	if f.nativeErr != nil {
		return nil, f.nativeErr
	}
	raw, ok := f.nativeOf[address]
	if !ok {
		raw = big.NewInt(0)
	}
	return &wallet.Balance{Raw: raw, Decimals: 18}, nil
}

func (f *fakeChain) TokenBalanceOf(_ context.Context, tokenContract, holder common.Address) (*wallet.Balance, error) {
	if f.tokenErr != nil {
		return nil, f.tokenErr
	}
	return &wallet.Balance{Raw: big.NewInt(0), Decimals: 18}, nil
}

func (f *fakeChain) Config() (*chain.ChainConfig, error) {
	return chain.DefaultChains()[chain.DefaultChain], nil
}

type fixture struct {
	runtime  *Runtime
	chain    *fakeChain
	wallets  *wallet.Store
	memories *memory.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	memories, err := memory.OpenDSN(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = memories.Close() })

	fc := &fakeChain{
		session:  &fakeSession{tokens: map[common.Address]*big.Int{}},
		nativeOf: map[common.Address]*big.Int{},
	}
	wallets := wallet.NewStore(kv.NewMemoryStore())
	registry := token.Default(aishopContract)

	return &fixture{
		runtime:  NewRuntime(fc, wallets, memories, registry),
		chain:    fc,
		wallets:  wallets,
		memories: memories,
	}
}

func (f *fixture) request(userID, text string) *Request {
	return &Request{UserID: userID, AgentID: "aishop-agent", RoomID: "room-1", Text: text}
}

func (f *fixture) actionsFor(t *testing.T, userID string) []string {
	t.Helper()
	records, err := f.memories.ListByUser(userID, 50)
	require.NoError(t, err)
	tags := make([]string, len(records))
	for i, r := range records {
		tags[i] = r.Action
	}
	return tags
}

func TestProcessRequiresIdentity(t *testing.T) {
	f := newFixture(t)

	reply := f.runtime.Process(context.Background(), &Request{Text: "crear wallet"})
	assert.Contains(t, reply.Text, "can't tell who you are")

	reply = f.runtime.Process(context.Background(), nil)
	assert.Contains(t, reply.Text, "can't tell who you are")
}

func TestProvisioningFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	reply := f.runtime.Process(ctx, f.request("alice", "crear wallet"))
	assert.Equal(t, ActionCreateWallet, reply.Action)
	assert.Regexp(t, `0x[0-9a-fA-F]{40}`, reply.Text)
	assert.Contains(t, reply.Text, "sepolia.mantlescan.xyz/address/")

	record, err := f.wallets.Get(ctx, "alice")
	require.NoError(t, err)

	t.Run("idempotent second request", func(t *testing.T) {
		again := f.runtime.Process(ctx, f.request("alice", "create wallet"))
		assert.Contains(t, again.Text, "already have")
		assert.Contains(t, again.Text, record.Address)

		// Exactly one wallet and one creation memory
		assert.Equal(t, []string{ActionCreateWallet}, f.actionsFor(t, "alice"))
	})

	t.Run("fresh wallet reports zero balance", func(t *testing.T) {
		balance := f.runtime.Process(ctx, f.request("alice", "ver mi balance"))
		assert.Equal(t, ActionCheckBalance, balance.Action)
		assert.Contains(t, balance.Text, "MNT: 0.000000")
	})
}

func TestBalanceFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("no wallet and no explicit address prompts provisioning", func(t *testing.T) {
		reply := f.runtime.Process(ctx, f.request("nobody", "ver mi balance"))
		assert.Contains(t, reply.Text, "don't have a wallet yet")
	})

	t.Run("explicit address needs no wallet", func(t *testing.T) {
		f.chain.nativeOf[destination] = mnt("1.5")

		reply := f.runtime.Process(ctx, f.request("nobody", "balance de 0x1111111111111111111111111111111111111111"))
		assert.Contains(t, reply.Text, destination.Hex())
		assert.Contains(t, reply.Text, "MNT: 1.500000")
	})

	t.Run("native line precedes token lines in registry order", func(t *testing.T) {
		reply := f.runtime.Process(ctx, f.request("nobody", "balance de 0x1111111111111111111111111111111111111111"))
		mntIdx := strings.Index(reply.Text, "MNT:")
		aishopIdx := strings.Index(reply.Text, "AISHOP:")
		require.GreaterOrEqual(t, mntIdx, 0)
		require.GreaterOrEqual(t, aishopIdx, 0)
		assert.Less(t, mntIdx, aishopIdx)
	})

	t.Run("token fetch failure degrades only that line", func(t *testing.T) {
		f.chain.tokenErr = assert.AnError

		reply := f.runtime.Process(ctx, f.request("nobody", "balance de 0x1111111111111111111111111111111111111111"))
		assert.Contains(t, reply.Text, "MNT: 1.500000")
		assert.Contains(t, reply.Text, "AISHOP: unavailable")

		f.chain.tokenErr = nil
	})

	t.Run("native fetch failure aborts the flow", func(t *testing.T) {
		f.chain.nativeErr = assert.AnError

		reply := f.runtime.Process(ctx, f.request("nobody", "balance de 0x1111111111111111111111111111111111111111"))
		assert.Contains(t, reply.Text, "Something went wrong")
		assert.NotContains(t, reply.Text, "AISHOP")

		f.chain.nativeErr = nil
	})
}

func TestNativeTransferFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.wallets.Create(ctx, "alice")
	require.NoError(t, err)

	t.Run("no wallet is terminal", func(t *testing.T) {
		reply := f.runtime.Process(ctx, f.request("mallory", "enviar 0.5 MNT a 0x1111111111111111111111111111111111111111"))
		assert.Contains(t, reply.Text, "don't have a wallet yet")
		assert.Empty(t, f.chain.session.sentNative)
	})

	t.Run("unparseable intent asks for clarification", func(t *testing.T) {
		reply := f.runtime.Process(ctx, f.request("alice", "enviar MNT a mi amigo"))
		assert.Contains(t, reply.Text, "enviar 0.5 MNT a 0x1111111111111111111111111111111111111111")
		assert.Empty(t, f.chain.session.sentNative)
	})

	t.Run("insufficient funds never reaches broadcast", func(t *testing.T) {
		f.chain.session.native = mnt("0.1")

		reply := f.runtime.Process(ctx, f.request("alice", "enviar 0.5 MNT a 0x1111111111111111111111111111111111111111"))
		assert.Contains(t, reply.Text, "0.100000")
		assert.Contains(t, reply.Text, "0.5")
		assert.Empty(t, f.chain.session.sentNative)
		assert.NotContains(t, f.actionsFor(t, "alice"), "SEND_MNT")
	})

	t.Run("successful transfer", func(t *testing.T) {
		f.chain.session.native = mnt("1")

		reply := f.runtime.Process(ctx, f.request("alice", "enviar 0.5 MNT a 0x1111111111111111111111111111111111111111"))
		assert.Equal(t, "SEND_MNT", reply.Action)
		assert.Contains(t, reply.Text, "sepolia.mantlescan.xyz/tx/")
		assert.Contains(t, reply.Text, "block 42")

		require.Len(t, f.chain.session.sentNative, 1)
		sent := f.chain.session.sentNative[0]
		assert.Equal(t, destination, sent.to)
		assert.Equal(t, 0, mnt("0.5").Cmp(sent.amount))

		assert.Contains(t, f.actionsFor(t, "alice"), "SEND_MNT")
	})
}

func TestTokenTransferFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.wallets.Create(ctx, "alice")
	require.NoError(t, err)

	t.Run("routes by symbol mention ahead of native transfer", func(t *testing.T) {
		f.chain.session.tokens[aishopContract] = mnt("5")

		reply := f.runtime.Process(ctx, f.request("alice", "enviar 2 AISHOP a 0x1111111111111111111111111111111111111111"))
		assert.Equal(t, "SEND_AISHOP", reply.Action)

		require.Len(t, f.chain.session.sentToken, 1)
		sent := f.chain.session.sentToken[0]
		assert.Equal(t, aishopContract, sent.token)
		assert.Equal(t, destination, sent.to)
		assert.Equal(t, 0, mnt("2").Cmp(sent.amount))
		assert.Empty(t, f.chain.session.sentNative)
	})

	t.Run("insufficient token balance states both figures", func(t *testing.T) {
		f.chain.session.tokens[aishopContract] = mnt("1")

		reply := f.runtime.Process(ctx, f.request("alice", "send 3 AISHOP to 0x1111111111111111111111111111111111111111"))
		assert.Contains(t, reply.Text, "1.000000")
		assert.Contains(t, reply.Text, "3")
		require.Len(t, f.chain.session.sentToken, 1) // unchanged from previous subtest
	})
}

func TestFallbackWithoutProvider(t *testing.T) {
	f := newFixture(t)

	reply := f.runtime.Process(context.Background(), f.request("alice", "hola, que puedes hacer?"))
	assert.Contains(t, reply.Text, "crear wallet")
	assert.Contains(t, reply.Text, "enviar 0.5 MNT")
}
