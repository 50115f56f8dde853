package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-cr-metrics/internal/analysis"
	"github.com/pable/go-cr-metrics/internal/report"
)

var goalsOffline bool

var goalsCmd = &cobra.Command{
	Use:   "goals [tag]",
	Short: "Show trophy badges reached and the ones still ahead",
	Long: `Compare the current trophy count against the goals in player.goals.

Configure goals in config.toml:
  [player.goals]
  "Arena 15" = 7500
  "Legendary" = 9000

With --offline the latest entry of the progress history is used instead of the
live trophy count.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGoals,
}

func init() {
	goalsCmd.Flags().BoolVar(&goalsOffline, "offline", false, "use the progress history instead of the API")
}

func runGoals(cmd *cobra.Command, args []string) error {
	if len(cfg.Player.Goals) == 0 {
		fmt.Fprintln(os.Stdout, "No goals configured. Add a [player.goals] table to your config.")
		return nil
	}

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	var history []int
	for _, e := range newTracker(db).LoadProgress(cmd.Context()) {
		history = append(history, e.Trophies)
	}

	if !goalsOffline {
		tag, err := playerTag(args)
		if err != nil {
			return err
		}
		client, err := clashClient()
		if err != nil {
			return err
		}
		p, err := client.Player(cmd.Context(), tag)
		if err != nil {
			return fmt.Errorf("fetch player: %w", err)
		}
		history = append(history, p.Trophies)
	}
	if len(history) == 0 {
		return fmt.Errorf("no trophy history: run 'crmetrics digest' or drop --offline")
	}

	trophies := history[len(history)-1]
	achieved := analysis.CheckBadges(history, cfg.Player.Goals)
	remaining := analysis.RemainingGoals(cfg.Player.Goals, trophies)
	report.PrintGoals(os.Stdout, trophies, achieved, remaining)
	return nil
}
