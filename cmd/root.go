package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/pable/go-cr-metrics/internal/config"
	"github.com/pable/go-cr-metrics/internal/logger"
)

var (
	dbPath     string
	configPath string
	logLevel   string

	// cfg and log are set by the root command before any subcommand runs.
	cfg *config.Config
	log zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "crmetrics",
	Short: "Clash Royale personal metrics tool",
	Long: `Fetch your Clash Royale battle log and turn it into win rates, tilt alerts,
deck ratings, event and trophy history, Grand Challenge tracking and coaching tips.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadRuntime,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", filepath.Join(config.Dir(), "crmetrics.db"), "path to SQLite database")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath(), "path to TOML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error); overrides config")

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(deckCmd)
	rootCmd.AddCommand(battleCmd)
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(progressCmd)
	rootCmd.AddCommand(digestCmd)
	rootCmd.AddCommand(optimizeCmd)
	rootCmd.AddCommand(gcCmd)
	rootCmd.AddCommand(metaCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(goalsCmd)
	rootCmd.AddCommand(coachCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(sqlCmd)
	rootCmd.AddCommand(dropCmd)
	rootCmd.AddCommand(shellCmd)
}

func loadRuntime(cmd *cobra.Command, _ []string) error {
	c, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if logLevel != "" {
		c.Log.Level = logLevel
	}
	cfg = c
	log = logger.New(cfg.Log.Level)
	return nil
}
