package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [tag]",
	Short: "Download a player's battle log into the local cache",
	Long: `Fetch the most recent battles (the API keeps about 25) and store them in the
local database. Battles already cached are skipped, so running fetch regularly
builds a history longer than the API window.

Examples:
  crmetrics fetch '#2PP'
  crmetrics fetch            # uses player.tag from the config`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFetch,
}

func runFetch(cmd *cobra.Command, args []string) error {
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

	ctx := cmd.Context()
	battles, err := client.BattleLog(ctx, tag)
	if err != nil {
		return fmt.Errorf("fetch battle log: %w", err)
	}
	added, err := db.InsertBattles(ctx, tag, battles)
	if err != nil {
		return fmt.Errorf("cache battles: %w", err)
	}
	cached, err := db.ListBattles(ctx, tag, 0)
	if err != nil {
		return fmt.Errorf("count cached battles: %w", err)
	}
	fmt.Fprintf(os.Stdout, "#%s: %d battles fetched, %d new, %d cached in total\n",
		tag, len(battles), added, len(cached))
	return nil
}
