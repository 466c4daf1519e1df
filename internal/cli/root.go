package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "mantle-agent",
		Short: "Chat agent with custodial wallets on Mantle Sepolia",
		Long: `mantle-agent is a terminal chat agent for the AIShop on Mantle Sepolia.

It provisions a custodial wallet per user, reports MNT and AISHOP balances,
and submits transfers, all driven by plain-language messages in Spanish or
English.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !term.IsTerminal(int(os.Stdin.Fd())) {
				return fmt.Errorf("the chat REPL needs an interactive terminal; use the wallet subcommands for scripting")
			}
			return RunREPL()
		},
	}
)

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.mantle-agent/config.yaml)")
	rootCmd.PersistentFlags().String("chain", "mantle-sepolia", "Chain to operate on")
	rootCmd.PersistentFlags().String("user", "local", "User identity for this session")
	_ = viper.BindPFlag("chain", rootCmd.PersistentFlags().Lookup("chain"))
	_ = viper.BindPFlag("user", rootCmd.PersistentFlags().Lookup("user"))
}

func dataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".mantle-agent"
	}
	return filepath.Join(home, ".mantle-agent")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		configDir := dataDir()
		if err := os.MkdirAll(configDir, 0700); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not create config directory: %v\n", err)
		}

		viper.AddConfigPath(configDir)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetDefault("aishop_contract", defaultAISHOPContract)
	viper.AutomaticEnv()

	// Silently ignore missing config file - it's optional
	_ = viper.ReadInConfig()
}

// defaultAISHOPContract is the AIShop token deployment on Mantle Sepolia.
const defaultAISHOPContract = "0x5aF9d0d69FbbDcdCcde99d171D089965AeC1A8a8"
