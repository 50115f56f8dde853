package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-cr-metrics/internal/analysis"
	"github.com/pable/go-cr-metrics/internal/report"
)

var (
	metaLimit     int
	metaThreshold float64
	metaAll       bool
)

var metaCmd = &cobra.Command{
	Use:   "meta",
	Short: "Meta trends, top-player benchmarks, matchup videos and Merge Tactics tiers",
}

var metaPulseCmd = &cobra.Command{
	Use:   "pulse",
	Short: "Show popular decks above a usage threshold",
	Args:  cobra.NoArgs,
	RunE:  runMetaPulse,
}

var metaQuartilesCmd = &cobra.Command{
	Use:   "quartiles",
	Short: "Average win rate of top players by rank quartile",
	Args:  cobra.NoArgs,
	RunE:  runMetaQuartiles,
}

var metaVideosCmd = &cobra.Command{
	Use:   "videos <deck-a> <deck-b>",
	Short: "Find matchup videos from trusted channels",
	Long: `Search Invidious for "<deck-a> vs <deck-b> Clash Royale" and keep videos from
the channels listed in invidious.channels (use --all to keep every result).`,
	Args: cobra.ExactArgs(2),
	RunE: runMetaVideos,
}

var metaTiersCmd = &cobra.Command{
	Use:   "tiers",
	Short: "Merge Tactics card tier list by win rate per turn",
	Args:  cobra.NoArgs,
	RunE:  runMetaTiers,
}

func init() {
	metaCmd.PersistentFlags().IntVar(&metaLimit, "limit", 20, "results to request")
	metaPulseCmd.Flags().Float64Var(&metaThreshold, "threshold", 0, "minimum usage share (default from config)")
	metaVideosCmd.Flags().BoolVar(&metaAll, "all", false, "do not filter by channel")

	metaCmd.AddCommand(metaPulseCmd, metaQuartilesCmd, metaVideosCmd, metaTiersCmd)
}

func runMetaPulse(cmd *cobra.Command, args []string) error {
	client, err := royaleClient()
	if err != nil {
		return err
	}
	decks, err := client.TopDecks(cmd.Context(), metaLimit)
	if err != nil {
		return fmt.Errorf("fetch top decks: %w", err)
	}
	threshold := metaThreshold
	if threshold <= 0 {
		threshold = cfg.Analysis.MetaThreshold
	}
	hot := analysis.MetaPulse(decks, threshold)
	if len(hot) == 0 {
		fmt.Fprintf(os.Stdout, "No deck above %.1f%% usage.\n", threshold*100)
		return nil
	}
	report.PrintTopDecks(os.Stdout, hot)
	return nil
}

func runMetaQuartiles(cmd *cobra.Command, args []string) error {
	client, err := royaleClient()
	if err != nil {
		return err
	}
	players, err := client.TopPlayers(cmd.Context(), metaLimit)
	if err != nil {
		return fmt.Errorf("fetch top players: %w", err)
	}
	report.PrintQuartiles(os.Stdout, analysis.QuartileBenchmarks(players))
	return nil
}

func runMetaVideos(cmd *cobra.Command, args []string) error {
	channels := cfg.Invidious.Channels
	if metaAll {
		channels = nil
	}
	videos, err := invidiousClient().MatchupVideos(cmd.Context(), args[0], args[1], metaLimit, channels)
	if err != nil {
		return fmt.Errorf("search videos: %w", err)
	}
	report.PrintVideos(os.Stdout, videos)
	return nil
}

func runMetaTiers(cmd *cobra.Command, args []string) error {
	client, err := royaleClient()
	if err != nil {
		return err
	}
	stats, err := client.MergeLeaderboard(cmd.Context(), metaLimit)
	if err != nil {
		return fmt.Errorf("fetch merge leaderboard: %w", err)
	}
	report.PrintTiers(os.Stdout, analysis.CardTierList(stats))
	return nil
}
