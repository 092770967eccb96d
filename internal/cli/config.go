package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
)

// projectConfigFile is the default project config file name
const projectConfigFile = "trustscore.toml"

// ProjectConfig is the project-level TOML configuration
type ProjectConfig struct {
	Server string `toml:"server"`
	Chain  string `toml:"chain,omitempty"`
	// From is the default sender for `trustscore score`.
	From string `toml:"from,omitempty"`
}

func createConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration commands",
	}

	cmd.AddCommand(createConfigInitCmd())
	cmd.AddCommand(createConfigShowCmd())

	return cmd
}

func createConfigInitCmd() *cobra.Command {
	var serverURL string
	var chain string
	var from string
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create config file",
		Long: `Create a trustscore.toml configuration file in the current directory.

EXAMPLES:
  # Create config with default server
  trustscore config init

  # Create config for a specific server and chain
  trustscore config init --server https://trust.example.com --chain eip155:137

  # Overwrite existing config
  trustscore config init --force
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := cfgFile
			if path == "" {
				path = projectConfigFile
			}
			return runConfigInit(cmd.OutOrStdout(), path, ProjectConfig{Server: serverURL, Chain: chain, From: from}, force)
		},
	}

	cmd.Flags().StringVar(&serverURL, "server", defaultServer, "server URL")
	cmd.Flags().StringVar(&chain, "chain", "eip155:1", "default CAIP-2 chain")
	cmd.Flags().StringVar(&from, "from", "", "default sender address")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing config")

	return cmd
}

func createConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display current config",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd.OutOrStdout())
		},
	}
}

func runConfigInit(w io.Writer, path string, cfg ProjectConfig, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("config file already exists at %s (use --force to overwrite)", path)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	defer f.Close()

	fmt.Fprintln(f, "# trustscore project configuration")
	fmt.Fprintln(f)
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	fmt.Fprintf(w, "Created %s\n", path)
	fmt.Fprintf(w, "  Server: %s\n", cfg.Server)
	fmt.Fprintf(w, "  Chain:  %s\n", cfg.Chain)
	return nil
}

func runConfigShow(w io.Writer) error {
	fmt.Fprintln(w, "Configuration sources (in order of precedence):")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "1. Command line flags")
	fmt.Fprintln(w, "   --server, --chain, --from, --config")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "2. Environment variables")
	if env := os.Getenv("TRUSTSCORE_SERVER"); env != "" {
		fmt.Fprintf(w, "   TRUSTSCORE_SERVER=%s\n", env)
	} else {
		fmt.Fprintln(w, "   TRUSTSCORE_SERVER=(not set)")
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "3. Project config (%s)\n", projectConfigFile)
	config, path, err := loadProjectConfig()
	switch {
	case errors.Is(err, os.ErrNotExist):
		fmt.Fprintln(w, "   (not found)")
	case err != nil:
		fmt.Fprintf(w, "   Error: %v\n", err)
	default:
		fmt.Fprintf(w, "   Loaded from: %s\n", path)
		if config.Server != "" {
			fmt.Fprintf(w, "   server: %s\n", config.Server)
		}
		if config.Chain != "" {
			fmt.Fprintf(w, "   chain: %s\n", config.Chain)
		}
		if config.From != "" {
			fmt.Fprintf(w, "   from: %s\n", config.From)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Effective configuration:")
	fmt.Fprintf(w, "   Server: %s\n", getServer())
	fmt.Fprintf(w, "   Chain:  %s\n", getChain(""))
	return nil
}

// loadProjectConfig loads the --config file or trustscore.toml.
// Returns the config, the path it was loaded from, and an error.
func loadProjectConfig() (*ProjectConfig, string, error) {
	path := cfgFile
	if path == "" {
		path = projectConfigFile
	}
	if _, err := os.Stat(path); err != nil {
		return nil, path, err
	}
	config, err := loadProjectConfigFromPath(path)
	if err != nil {
		return nil, path, err
	}
	return config, path, nil
}

// loadProjectConfigFromPath loads a project config from a specific path
func loadProjectConfigFromPath(path string) (*ProjectConfig, error) {
	var config ProjectConfig
	if _, err := toml.DecodeFile(path, &config); err != nil {
		return nil, fmt.Errorf("parsing TOML: %w", err)
	}
	return &config, nil
}

// loadProjectConfigSilent loads the project config without returning errors for missing files.
// Returns nil if the file doesn't exist; parse failures are reported on stderr.
func loadProjectConfigSilent() *ProjectConfig {
	config, _, err := loadProjectConfig()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		fmt.Fprintf(os.Stderr, "Warning: failed to load project config: %v\n", err)
		return nil
	}
	return config
}
