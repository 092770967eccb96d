// Package cli implements the trustscore command-line client.
package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	server  string
)

// defaultServer is used when no flag, env var or project config names one.
const defaultServer = "http://localhost:8080"

// Execute runs the CLI
func Execute(version string) error {
	return newRootCmd(version).Execute()
}

func newRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "trustscore",
		Short: "Contract trust scores for Ethereum transactions",
		Long: `trustscore asks a trustscore server how much to trust the destination
contract of a transaction, based on its popularity, age, verification status
and your own history with it.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: trustscore.toml)")
	rootCmd.PersistentFlags().StringVar(&server, "server", "", "server URL (default from config)")

	// Add subcommands
	rootCmd.AddCommand(createScoreCmd())
	rootCmd.AddCommand(createChainsCmd())
	rootCmd.AddCommand(createConfigCmd())

	return rootCmd
}

// getServer returns the server URL from flag, env or config file
func getServer() string {
	// 1. Command line flag
	if server != "" {
		return server
	}

	// 2. Environment variable
	if env := os.Getenv("TRUSTSCORE_SERVER"); env != "" {
		return env
	}

	// 3. Project config file (TOML)
	if config := loadProjectConfigSilent(); config != nil && config.Server != "" {
		return config.Server
	}

	return defaultServer
}

// getChain returns the chain from flag, project config or mainnet.
func getChain(flag string) string {
	if flag != "" {
		return flag
	}
	if config := loadProjectConfigSilent(); config != nil && config.Chain != "" {
		return config.Chain
	}
	return "eip155:1"
}
