package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/pable/go-cr-metrics/internal/analysis"
	"github.com/pable/go-cr-metrics/internal/model"
	"github.com/pable/go-cr-metrics/internal/report"
)

var digestCmd = &cobra.Command{
	Use:   "digest [tag]",
	Short: "Record today's progress and print the daily digest",
	Long: `Fetch the player profile and battle log, record today's trophies and league
step, and compare them with the previous recorded day. Run it once a day (for
example from cron) to build the progress history.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDigest,
}

func runDigest(cmd *cobra.Command, args []string) error {
	tag, err := playerTag(args)
	if err != nil {
		return err
	}
	client, err := clashClient()
	if err != nil {
		return err
	}
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	var (
		player  *model.Player
		battles []model.BattleRecord
	)
	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error {
		p, err := client.Player(ctx, tag)
		if err != nil {
			return fmt.Errorf("fetch player: %w", err)
		}
		player = p
		return nil
	})
	g.Go(func() error {
		b, err := fetchBattles(ctx, client, db, tag)
		battles = b
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	d, ok := newTracker(db).DailyDigest(cmd.Context(), *player, battles)
	if !ok {
		return fmt.Errorf("progress could not be recorded, see warnings above")
	}
	report.PrintDigest(os.Stdout, d)

	if analysis.DetectTilt(battles, cfg.Analysis.TiltLimit, cfg.TiltWindow()) {
		cAlert.Fprintln(os.Stdout, "\n  Tilt detected in your latest ranked games.")
	}
	return nil
}
