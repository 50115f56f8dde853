package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pable/go-cr-metrics/internal/analysis"
	"github.com/pable/go-cr-metrics/internal/charts"
	"github.com/pable/go-cr-metrics/internal/report"
)

var (
	eventsDays    int
	eventsOffline bool
	eventsSaved   bool
	eventsHTML    string
)

var eventsCmd = &cobra.Command{
	Use:   "events [tag]",
	Short: "Show win/loss records for special events and challenges",
	Long: `Aggregate non-ladder battles by event, store the snapshot, and show the
per-day event win rate over the last --days days. With --saved, print the
last stored snapshot without fetching.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEvents,
}

func init() {
	eventsCmd.Flags().IntVar(&eventsDays, "days", 0, "daily win rate window (default from config)")
	eventsCmd.Flags().BoolVar(&eventsOffline, "offline", false, "use every cached battle instead of the live log")
	eventsCmd.Flags().BoolVar(&eventsSaved, "saved", false, "show the stored snapshot only")
	eventsCmd.Flags().StringVar(&eventsHTML, "html", "", "also write the daily win rate chart to this file")
}

func runEvents(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()
	ctx := cmd.Context()
	t := newTracker(db)

	if eventsSaved {
		stats := t.LoadEventStats(ctx)
		if len(stats) == 0 {
			fmt.Fprintln(os.Stdout, "No event stats stored yet. Run 'crmetrics events' to collect them.")
			return nil
		}
		report.PrintEventStats(os.Stdout, stats)
		return nil
	}

	tag, err := playerTag(args)
	if err != nil {
		return err
	}
	battles, err := recentBattles(ctx, db, tag, eventsOffline, 0)
	if err != nil {
		return err
	}

	stats := t.CollectEventStats(ctx, battles)
	if len(stats) == 0 {
		fmt.Fprintln(os.Stdout, "No event battles found.")
		return nil
	}
	report.PrintEventStats(os.Stdout, stats)

	days := eventsDays
	if days <= 0 {
		days = cfg.Analysis.EventDays
	}
	daily := analysis.DailyEventWR(battles, days, time.Now())
	fmt.Fprintf(os.Stdout, "\n--- Event win rate, last %d days ---\n\n", days)
	report.PrintDailyWR(os.Stdout, daily)

	if eventsHTML != "" {
		return writeHTML(eventsHTML, func(f *os.File) error {
			return charts.DailyWinRate(f, daily, charts.DefaultConfig())
		})
	}
	return nil
}
