package actions

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// ActionCheckBalance tags balance-report interactions in the memory log.
const ActionCheckBalance = "CHECK_BALANCE"

// balanceUnavailable is the displayed value when one token's fetch fails.
const balanceUnavailable = "unavailable"

// balanceAction reports native and token balances for a target address: a
// literal address in the message if present, otherwise the caller's own
// wallet. Report ordering is fixed: native currency first, then each
// contract-backed token in registry definition order.
func (rt *Runtime) balanceAction() Action {
	return Action{
		Name:  ActionCheckBalance,
		Match: WantsBalance,
		Handle: func(ctx context.Context, req *Request) (*Reply, error) {
			config, err := rt.chain.Config()
			if err != nil {
				return nil, err
			}

			// A literal address in the text wins; the caller doesn't need a
			// wallet to look someone else up.
			target, explicit := ExtractAddress(req.Text)
			if !explicit {
				record, err := rt.wallets.Get(ctx, req.UserID)
				if err != nil {
					return nil, err
				}
				target = common.HexToAddress(record.Address)
			}

			// Native-balance failure aborts the flow; per-token failures
			// degrade just that line.
			native, err := rt.chain.NativeBalanceOf(ctx, target)
			if err != nil {
				return nil, err
			}

			nativeSymbol := rt.registry.Native().Symbol
			balances := map[string]string{nativeSymbol: native.Format()}
			lines := []string{
				fmt.Sprintf("Balances for %s on %s:", target.Hex(), config.Name),
				fmt.Sprintf("  %s: %s", nativeSymbol, native.Format()),
			}

			for _, t := range rt.registry.ContractTokens() {
				value := balanceUnavailable
				if bal, err := rt.chain.TokenBalanceOf(ctx, t.Contract, target); err == nil {
					value = bal.Format()
				}
				balances[t.Symbol] = value
				lines = append(lines, fmt.Sprintf("  %s: %s", t.Symbol, value))
			}

			lines = append(lines, config.AddressURL(target.Hex()))

			_, _ = rt.memories.Append(req.UserID, req.AgentID, req.RoomID, req.Text, ActionCheckBalance, balances)

			return &Reply{
				Action:  ActionCheckBalance,
				Payload: balances,
				Text:    strings.Join(lines, "\n"),
			}, nil
		},
	}
}
