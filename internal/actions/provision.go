package actions

import (
	"context"
	"errors"
	"fmt"

	"github.com/aishop-labs/mantle-agent/internal/wallet"
)

// ActionCreateWallet tags provisioning interactions in the memory log.
const ActionCreateWallet = "CREATE_WALLET"

type provisionPayload struct {
	Address string `json:"address"`
}

// createWalletAction provisions a custodial wallet for the caller.
// Idempotent: an existing wallet is reported back without creating anything,
// and without a new memory record.
func (rt *Runtime) createWalletAction() Action {
	return Action{
		Name:  ActionCreateWallet,
		Match: WantsWalletCreation,
		Handle: func(ctx context.Context, req *Request) (*Reply, error) {
			config, err := rt.chain.Config()
			if err != nil {
				return nil, err
			}

			existing, err := rt.wallets.Get(ctx, req.UserID)
			if err == nil {
				return &Reply{
					Action:  ActionCreateWallet,
					Payload: provisionPayload{Address: existing.Address},
					Text: fmt.Sprintf("You already have a wallet:\n%s\n%s",
						existing.Address, config.AddressURL(existing.Address)),
				}, nil
			}
			if !errors.Is(err, wallet.ErrNoWallet) {
				return nil, err
			}

			record, err := rt.wallets.Create(ctx, req.UserID)
			if err != nil {
				return nil, err
			}

			// The memory write comes after the wallet exists; if it fails the
			// user still gets their address.
			payload := provisionPayload{Address: record.Address}
			_, _ = rt.memories.Append(req.UserID, req.AgentID, req.RoomID, req.Text, ActionCreateWallet, payload)

			return &Reply{
				Action:  ActionCreateWallet,
				Payload: payload,
				Text: fmt.Sprintf("Your new wallet is ready:\n%s\n%s",
					record.Address, config.AddressURL(record.Address)),
			}, nil
		},
	}
}
