package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-cr-metrics/internal/storage"
)

var dropForce bool

// dropCmd deletes the metrics database file.
var dropCmd = &cobra.Command{
	Use:   "drop",
	Short: "Delete the metrics database",
	Long: `Permanently delete the SQLite metrics database: the battle cache, progress
history, event stats, Grand Challenge runs and watch state.

Without --force only the contents that would be lost are listed. Run
'crmetrics export <file>' first to keep a copy.`,
	Args: cobra.NoArgs,
	RunE: runDrop,
}

func init() {
	dropCmd.Flags().BoolVarP(&dropForce, "force", "f", false, "skip confirmation prompt")
}

func runDrop(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(dbPath); errors.Is(err, os.ErrNotExist) {
		fmt.Fprintln(os.Stdout, "Database does not exist, nothing to drop.")
		return nil
	}
	if !dropForce {
		fmt.Fprintf(os.Stderr, "This will permanently delete: %s\n", dbPath)
		if err := describeDB(cmd.Context(), os.Stderr, dbPath); err != nil {
			log.Warn().Err(err).Msg("read database contents")
		}
		fmt.Fprintf(os.Stderr, "Re-run with --force to confirm.\n")
		return nil
	}
	if err := os.Remove(dbPath); err != nil {
		return fmt.Errorf("remove database: %w", err)
	}
	fmt.Fprintf(os.Stdout, "Deleted: %s\n", dbPath)
	return nil
}

// describeDB lists how much of each collection the database at path holds.
func describeDB(ctx context.Context, w io.Writer, path string) error {
	db, err := storage.Open(path)
	if err != nil {
		return err
	}
	defer db.Close()

	snap, err := db.LoadSnapshot(ctx)
	if err != nil {
		return err
	}
	tags, err := db.ListTags(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "  %d cached battles for %d players\n", len(snap.Battles), len(tags))
	fmt.Fprintf(w, "  %d progress days\n", len(snap.Progress))
	fmt.Fprintf(w, "  %d event stats\n", len(snap.EventStats))
	fmt.Fprintf(w, "  %d Grand Challenge runs\n", len(snap.Runs))
	return nil
}
