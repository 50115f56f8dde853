package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/pable/go-cr-metrics/internal/analysis"
	"github.com/pable/go-cr-metrics/internal/charts"
	"github.com/pable/go-cr-metrics/internal/eventlog"
	"github.com/pable/go-cr-metrics/internal/model"
	"github.com/pable/go-cr-metrics/internal/report"
)

var (
	battleWindow  int
	battleSeconds float64
	battleHTML    string
)

var battleCmd = &cobra.Command{
	Use:   "battle",
	Short: "Analyze a recorded card-play event log",
}

var battleAnalyzeCmd = &cobra.Command{
	Use:   "analyze <events.jsonl>",
	Short: "Check cycle coverage, aggression and elixir trades of one battle",
	Long: `Read a play-event log (JSON array or one JSON object per line, each with
time, side, card and elixir) and report:
  - whether every window of your last N plays contained anti-air, a spell and a win condition
  - your elixir spent over the opponent's in the opening seconds
  - the elixir difference after every play`,
	Args: cobra.ExactArgs(1),
	RunE: runBattleAnalyze,
}

var battleFollowCmd = &cobra.Command{
	Use:   "follow <events.jsonl>",
	Short: "Follow an event log as it is written and print live elixir trades",
	Args:  cobra.ExactArgs(1),
	RunE:  runBattleFollow,
}

func init() {
	battleCmd.PersistentFlags().IntVar(&battleWindow, "window", 0, "cycle window in plays (default from config)")
	battleCmd.PersistentFlags().Float64Var(&battleSeconds, "seconds", 0, "aggro window in seconds (default from config)")
	battleAnalyzeCmd.Flags().StringVar(&battleHTML, "html", "", "also write the elixir timeline chart to this file")

	battleCmd.AddCommand(battleAnalyzeCmd)
	battleCmd.AddCommand(battleFollowCmd)
}

func battleParams() (int, float64) {
	window, seconds := battleWindow, battleSeconds
	if window <= 0 {
		window = cfg.Analysis.CycleWindow
	}
	if seconds <= 0 {
		seconds = cfg.Analysis.AggroSeconds
	}
	return window, seconds
}

func runBattleAnalyze(cmd *cobra.Command, args []string) error {
	events, err := eventlog.ReadFile(args[0])
	if err != nil {
		return err
	}
	roles, err := loadRoles()
	if err != nil {
		return err
	}
	window, seconds := battleParams()

	timeline := analysis.ElixirDiffTimeline(events)
	report.PrintBattleAnalysis(os.Stdout,
		roles.AnalyzeCycle(events, window),
		analysis.AggroMeter(events, seconds),
		timeline)

	if battleHTML != "" {
		return writeHTML(battleHTML, func(f *os.File) error {
			return charts.ElixirTimeline(f, timeline, charts.DefaultConfig())
		})
	}
	return nil
}

func runBattleFollow(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	_, seconds := battleParams()
	var events []model.PlayEvent
	cMuted.Fprintf(os.Stderr, "following %s (Ctrl-C to stop)\n", args[0])

	err := eventlog.NewFollower(args[0], log).Follow(ctx, func(e model.PlayEvent) {
		events = append(events, e)
		tl := analysis.ElixirDiffTimeline(events)
		last := tl[len(tl)-1]

		line := fmt.Sprintf("%6.1fs  %-8s %-18s diff %+5.2f", e.Time, e.Side, e.Card, last.Diff)
		switch {
		case last.Diff <= -3:
			cAlert.Fprintln(os.Stdout, line+"  (down on elixir)")
		case last.Diff >= 3:
			cGood.Fprintln(os.Stdout, line)
		default:
			fmt.Fprintln(os.Stdout, line)
		}
		if e.Time <= seconds {
			return
		}
		// Report the opening aggression once, on the first play past the window.
		if len(events) > 1 && events[len(events)-2].Time <= seconds {
			fmt.Fprintf(os.Stdout, "        opening aggro ratio: %.2f\n", analysis.AggroMeter(events, seconds))
		}
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
