package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-cr-metrics/internal/charts"
	"github.com/pable/go-cr-metrics/internal/report"
)

var (
	progressHTML  string
	progressForce bool
)

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Show or reset the daily trophy history",
	Long: `Show the daily trophy, league and win-rate history recorded by 'crmetrics digest'.

Subcommands:
  reset   clear the history`,
	Args: cobra.NoArgs,
	RunE: runProgress,
}

var progressResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete the stored progress history",
	Args:  cobra.NoArgs,
	RunE:  runProgressReset,
}

func init() {
	progressCmd.Flags().StringVar(&progressHTML, "html", "", "also write the trophy chart to this file")
	progressResetCmd.Flags().BoolVarP(&progressForce, "force", "f", false, "skip confirmation prompt")
	progressCmd.AddCommand(progressResetCmd)
}

func runProgress(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	entries := newTracker(db).LoadProgress(cmd.Context())
	if len(entries) == 0 {
		fmt.Fprintln(os.Stdout, "No progress recorded yet. Run 'crmetrics digest' daily to build it.")
		return nil
	}
	report.PrintProgress(os.Stdout, entries)

	if progressHTML != "" {
		return writeHTML(progressHTML, func(f *os.File) error {
			return charts.Progress(f, entries, charts.DefaultConfig())
		})
	}
	return nil
}

func runProgressReset(cmd *cobra.Command, args []string) error {
	if !progressForce {
		fmt.Fprintln(os.Stderr, "This will delete the whole progress history.")
		fmt.Fprintln(os.Stderr, "Re-run with --force to confirm.")
		return nil
	}
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	newTracker(db).ResetProgress(cmd.Context())
	fmt.Fprintln(os.Stdout, "Progress history cleared.")
	return nil
}
