// Package main implements the vault CLI: a local store of saved deal
// analyses with an HTTP API, scheduled backups and a reference valuation
// engine.
package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	// configPath is the YAML config file; CONFIG_PATH overrides the default.
	configPath string
	// outputJSON switches command output from tables to JSON.
	outputJSON bool
	version    = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "vault",
	Short: "Save, browse and value deal analyses",
	Long: `vault keeps named deal analyses (deal structure, financing and valuation
results) in a local store.

Examples:
  # Value a deal and save it
  vault save --name "Acme" --form deal.json --ltm-ebitda 12000000 --growth 4

  # Browse saved analyses
  vault list
  vault show 3f1c2e4a-8b9d-4c6e-a1f2-0d3e4b5c6a7f

  # Serve the local HTTP API
  vault serve`,
	Version:      version,
	SilenceUsage: true,
}

func init() {
	// A missing .env file is fine.
	_ = godotenv.Load()

	defaultConfig := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultConfig = v
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultConfig, "path to config file")
}
