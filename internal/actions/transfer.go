package actions

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/aishop-labs/mantle-agent/internal/chain"
	"github.com/aishop-labs/mantle-agent/internal/token"
	"github.com/aishop-labs/mantle-agent/internal/wallet"
)

// confirmationDepth is how many blocks a transfer waits for before reporting
// success.
const confirmationDepth = 1

// confirmationTimeout bounds the confirmation wait; the broadcast itself
// cannot be aborted once sent.
const confirmationTimeout = 2 * time.Minute

type transferPayload struct {
	Hash        string `json:"hash"`
	From        string `json:"from"`
	To          string `json:"to"`
	Amount      string `json:"amount"`
	Symbol      string `json:"symbol"`
	BlockNumber uint64 `json:"block_number"`
	Status      uint64 `json:"status"`
}

// transferAction handles transfers of one token, native or contract-backed.
// Both variants share the same shape: authorize the caller, parse the intent
// in one pass, preflight the balance, broadcast once, wait for one
// confirmation, persist, reply.
func (rt *Runtime) transferAction(t token.Descriptor) Action {
	actionTag := "SEND_" + t.Symbol

	return Action{
		Name: actionTag,
		Match: func(text string) bool {
			return WantsTransfer(text, t.Symbol)
		},
		Handle: func(ctx context.Context, req *Request) (*Reply, error) {
			config, err := rt.chain.Config()
			if err != nil {
				return nil, err
			}

			record, err := rt.wallets.Get(ctx, req.UserID)
			if err != nil {
				return nil, err
			}

			to, amount, err := parseTransferIntent(req.Text, t.Symbol)
			if err != nil {
				return nil, err
			}
			units, err := chain.ParseUnits(amount, t.Decimals)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrIntentUnparseable, err)
			}

			session, err := rt.chain.Session(record.PrivateKey)
			if err != nil {
				return nil, err
			}

			// Preflight is advisory: it reads a fresh balance but holds no
			// lock, so a concurrent spend between here and broadcast wins.
			held, err := rt.fetchHeld(ctx, session, t)
			if err != nil {
				return nil, err
			}
			if held.Raw.Cmp(units) < 0 {
				return nil, &InsufficientFundsError{
					Symbol:    t.Symbol,
					Held:      held.Format(),
					Requested: amount,
				}
			}

			hash, err := rt.broadcast(ctx, session, t, to, units)
			if err != nil {
				return nil, err
			}

			confirmCtx, cancel := context.WithTimeout(ctx, confirmationTimeout)
			defer cancel()
			receipt, err := session.AwaitConfirmation(confirmCtx, hash, confirmationDepth)
			if err != nil {
				return nil, fmt.Errorf("transfer %s broadcast but not confirmed: %w", hash.Hex(), err)
			}

			payload := transferPayload{
				Hash:        hash.Hex(),
				From:        session.Address().Hex(),
				To:          to.Hex(),
				Amount:      amount,
				Symbol:      t.Symbol,
				BlockNumber: receipt.BlockNumber.Uint64(),
				Status:      receipt.Status,
			}
			_, _ = rt.memories.Append(req.UserID, req.AgentID, req.RoomID, req.Text, actionTag, payload)

			return &Reply{
				Action:  actionTag,
				Payload: payload,
				Text: fmt.Sprintf("Sent %s %s to %s.\nTransaction: %s\nIncluded in block %d.\n%s",
					amount, t.Symbol, to.Hex(), hash.Hex(), payload.BlockNumber, config.TxURL(hash.Hex())),
			}, nil
		},
	}
}

func (rt *Runtime) fetchHeld(ctx context.Context, session Session, t token.Descriptor) (*wallet.Balance, error) {
	if t.IsNative() {
		return session.NativeBalance(ctx)
	}
	return session.TokenBalance(ctx, t.Contract)
}

func (rt *Runtime) broadcast(ctx context.Context, session Session, t token.Descriptor, to common.Address, units *big.Int) (common.Hash, error) {
	if t.IsNative() {
		return session.SendNative(ctx, to, units)
	}
	return session.SendToken(ctx, t.Contract, to, units)
}
