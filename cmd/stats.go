package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pable/go-cr-metrics/internal/aggregator"
	"github.com/pable/go-cr-metrics/internal/analysis"
	"github.com/pable/go-cr-metrics/internal/report"
)

var (
	statsOffline bool
	statsLimit   int
)

var statsCmd = &cobra.Command{
	Use:   "stats [tag]",
	Short: "Show win rate, tilt status and recent battles",
	Long: `Show the player's profile, ranked win rate and tilt status over the latest
battle log, then an aggregate over every cached battle: per-mode and per-deck
records and the opponent cards you lose to most.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStats,
}

func init() {
	statsCmd.Flags().BoolVar(&statsOffline, "offline", false, "use cached battles only")
	statsCmd.Flags().IntVar(&statsLimit, "limit", 10, "battles to list")
}

func runStats(cmd *cobra.Command, args []string) error {
	tag, err := playerTag(args)
	if err != nil {
		return err
	}
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := cmd.Context()
	battles, err := recentBattles(ctx, db, tag, statsOffline, 25)
	if err != nil {
		return err
	}

	if !statsOffline {
		client, err := clashClient()
		if err != nil {
			return err
		}
		p, err := client.Player(ctx, tag)
		if err != nil {
			return fmt.Errorf("fetch player: %w", err)
		}
		report.PrintPlayerHeader(os.Stdout, *p, analysis.ComputeWinRate(battles))
	} else {
		fmt.Fprintf(os.Stdout, "\n#%s  |  Win rate: %.0f%% (cached)\n\n", tag, analysis.ComputeWinRate(battles)*100)
	}

	if analysis.DetectTilt(battles, cfg.Analysis.TiltLimit, cfg.TiltWindow()) {
		cAlert.Fprintf(os.Stdout, "TILT: %d ranked losses within %s. Take a break.\n\n",
			cfg.Analysis.TiltLimit, cfg.TiltWindow())
	}

	shown := battles
	if statsLimit > 0 && len(shown) > statsLimit {
		shown = shown[:statsLimit]
	}
	report.PrintBattleTable(os.Stdout, shown, time.Now())

	all, err := db.ListBattles(ctx, tag, 0)
	if err != nil {
		return fmt.Errorf("read cached battles: %w", err)
	}
	if len(all) > 0 {
		fmt.Fprintf(os.Stdout, "\n=== All cached battles ===\n")
		report.PrintSummary(os.Stdout, aggregator.Aggregate(all))
	}
	return nil
}
