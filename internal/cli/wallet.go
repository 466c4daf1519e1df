package cli

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Inspect and manage custodial wallets",
	Long:  `Create and look up the per-user custodial wallets the agent manages.`,
}

var walletCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Provision a wallet for a user",
	RunE:  runWalletCreate,
}

var walletShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show a user's wallet address",
	RunE:  runWalletShow,
}

var walletResolveCmd = &cobra.Command{
	Use:   "resolve <address>",
	Short: "Find which user owns an address",
	Args:  cobra.ExactArgs(1),
	RunE:  runWalletResolve,
}

var walletAgentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Show the agent's own process wallet",
	Long:  `Shows the address and native balance of the wallet configured via EVM_PRIVATE_KEY.`,
	RunE:  runWalletAgent,
}

func init() {
	rootCmd.AddCommand(walletCmd)
	walletCmd.AddCommand(walletCreateCmd)
	walletCmd.AddCommand(walletShowCmd)
	walletCmd.AddCommand(walletResolveCmd)
	walletCmd.AddCommand(walletAgentCmd)
}

func runWalletCreate(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	userID := viper.GetString("user")
	record, err := a.wallets.Create(cmd.Context(), userID)
	if err != nil {
		return fmt.Errorf("failed to create wallet for %s: %w", userID, err)
	}

	config, err := a.service.Config()
	if err != nil {
		return err
	}

	fmt.Printf("Created wallet for %s:\n%s\n%s\n", userID, record.Address, config.AddressURL(record.Address))
	return nil
}

func runWalletShow(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	userID := viper.GetString("user")
	record, err := a.wallets.Get(cmd.Context(), userID)
	if err != nil {
		return fmt.Errorf("no wallet for %s: %w", userID, err)
	}

	fmt.Printf("%s\n", record.Address)
	return nil
}

func runWalletAgent(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	session, err := a.service.ProcessSession()
	if err != nil {
		return err
	}

	config, err := a.service.Config()
	if err != nil {
		return err
	}

	address := session.Address()
	fmt.Printf("%s\n%s\n", address.Hex(), config.AddressURL(address.Hex()))

	balance, err := session.NativeBalance(cmd.Context())
	if err != nil {
		return fmt.Errorf("fetch balance: %w", err)
	}
	fmt.Printf("%s %s\n", balance.Format(), config.NativeCurrency)
	return nil
}

func runWalletResolve(cmd *cobra.Command, args []string) error {
	if !common.IsHexAddress(args[0]) {
		return fmt.Errorf("invalid address: %s", args[0])
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	userID, ok, err := a.wallets.ResolveUserByAddress(context.Background(), args[0])
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no user owns %s", args[0])
	}

	fmt.Printf("%s\n", userID)
	return nil
}
