package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pable/go-cr-metrics/internal/report"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all players with cached battles",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	tags, err := db.ListTags(cmd.Context())
	if err != nil {
		return fmt.Errorf("list tags: %w", err)
	}
	if len(tags) == 0 {
		fmt.Fprintln(os.Stdout, "No battles cached yet. Run 'crmetrics fetch <tag>' to add some.")
		return nil
	}
	report.PrintTags(os.Stdout, tags, time.Now())
	return nil
}
