package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/aishop-labs/mantle-agent/internal/cli"
)

func main() {
	// Optional .env for EVM_PRIVATE_KEY / EVM_RPC_URL / API keys
	_ = godotenv.Load()

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
