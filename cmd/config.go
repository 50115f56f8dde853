package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or create the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the current settings to the config file",
	Long: `Write the effective configuration (defaults, file, .env and environment merged)
to --config. API tokens are written too; keep the file private.`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration with secrets masked",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

func init() {
	configInitCmd.Flags().BoolVarP(&configForce, "force", "f", false, "overwrite an existing file")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(configPath); err == nil && !configForce {
		fmt.Fprintf(os.Stderr, "%s already exists. Re-run with --force to overwrite.\n", configPath)
		return nil
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat config: %w", err)
	}
	if err := cfg.Save(configPath); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Wrote %s\n", configPath)
	return nil
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return "****"
	}
	return s[:4] + "…" + s[len(s)-4:]
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	shown := *cfg
	shown.Clash.Token = mask(shown.Clash.Token)
	shown.RoyaleAPI.Token = mask(shown.RoyaleAPI.Token)
	shown.Coach.AnthropicKey = mask(shown.Coach.AnthropicKey)

	out, err := toml.Marshal(shown)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	fmt.Fprintf(os.Stdout, "# %s\n%s", configPath, out)
	return nil
}
