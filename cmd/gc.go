package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pable/go-cr-metrics/internal/report"
	"github.com/pable/go-cr-metrics/internal/tracker"
)

var (
	gcDeck  string
	gcWin   bool
	gcLoss  bool
	gcElo   int
	gcLimit int
)

var gcCmd = &cobra.Command{
	Use:   "gc",
	Short: "Track Grand Challenge runs",
	Long: `Track Grand Challenge runs by hand: start a run with the deck you enter with,
record each match, and summarize wins and average opponent rating.

Examples:
  crmetrics gc start --cards "Hog Rider,Musketeer,..."
  crmetrics gc record 01J3A9... --win --elo 6800
  crmetrics gc summary 01J3A9...`,
}

var gcStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a new run and print its id",
	Args:  cobra.NoArgs,
	RunE:  runGCStart,
}

var gcRecordCmd = &cobra.Command{
	Use:   "record <run-id>",
	Short: "Record one match of a run",
	Args:  cobra.ExactArgs(1),
	RunE:  runGCRecord,
}

var gcSummaryCmd = &cobra.Command{
	Use:   "summary <run-id>",
	Short: "Summarize one run",
	Args:  cobra.ExactArgs(1),
	RunE:  runGCSummary,
}

var gcListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every run",
	Args:  cobra.NoArgs,
	RunE:  runGCList,
}

var gcDecksCmd = &cobra.Command{
	Use:   "decks",
	Short: "Show popular Grand Challenge decks (RoyaleAPI)",
	Args:  cobra.NoArgs,
	RunE:  runGCDecks,
}

func init() {
	gcStartCmd.Flags().StringVar(&gcDeck, "cards", "", "comma-separated deck (required)")
	_ = gcStartCmd.MarkFlagRequired("cards")

	gcRecordCmd.Flags().BoolVar(&gcWin, "win", false, "the match was won")
	gcRecordCmd.Flags().BoolVar(&gcLoss, "loss", false, "the match was lost")
	gcRecordCmd.Flags().IntVar(&gcElo, "elo", 0, "opponent rating")
	gcRecordCmd.MarkFlagsMutuallyExclusive("win", "loss")
	gcRecordCmd.MarkFlagsOneRequired("win", "loss")

	gcDecksCmd.Flags().IntVar(&gcLimit, "limit", 10, "decks to show")

	gcCmd.AddCommand(gcStartCmd, gcRecordCmd, gcSummaryCmd, gcListCmd, gcDecksCmd)
}

func withTracker(fn func(t *tracker.Tracker) error) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(newTracker(db))
}

func runGCStart(cmd *cobra.Command, args []string) error {
	deck := splitCards(gcDeck)
	return withTracker(func(t *tracker.Tracker) error {
		id, err := t.StartRun(cmd.Context(), deck)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Started run %s\n", id)
		return nil
	})
}

func runGCRecord(cmd *cobra.Command, args []string) error {
	return withTracker(func(t *tracker.Tracker) error {
		if err := t.RecordMatch(cmd.Context(), args[0], gcWin, gcElo); err != nil {
			if errors.Is(err, tracker.ErrRunNotFound) {
				return fmt.Errorf("no run %q: see 'crmetrics gc list'", args[0])
			}
			return err
		}
		s, err := t.SummarizeRun(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		report.PrintGCSummary(os.Stdout, args[0], s)
		return nil
	})
}

func runGCSummary(cmd *cobra.Command, args []string) error {
	return withTracker(func(t *tracker.Tracker) error {
		s, err := t.SummarizeRun(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		report.PrintGCSummary(os.Stdout, args[0], s)
		return nil
	})
}

func runGCList(cmd *cobra.Command, args []string) error {
	return withTracker(func(t *tracker.Tracker) error {
		runs := t.Runs(cmd.Context())
		if len(runs) == 0 {
			fmt.Fprintln(os.Stdout, "No runs yet. Start one with 'crmetrics gc start'.")
			return nil
		}
		report.PrintRuns(os.Stdout, runs, time.Now())
		return nil
	})
}

func runGCDecks(cmd *cobra.Command, args []string) error {
	client, err := royaleClient()
	if err != nil {
		return err
	}
	decks, err := client.GCDecks(cmd.Context(), gcLimit)
	if err != nil {
		return fmt.Errorf("fetch GC decks: %w", err)
	}
	report.PrintTopDecks(os.Stdout, decks)
	return nil
}
