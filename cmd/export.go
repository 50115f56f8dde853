package cmd

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Write a compressed backup of the database",
	Long: `Write every stored collection (battle cache, progress, event stats, Grand
Challenge runs and watch state) to a zstd-compressed JSON archive.

Restore it on another machine with 'crmetrics import <file>'.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

var importForce bool

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Restore the database from a backup written by export",
	Long: `Replace the stored collections with the contents of an archive written by
'crmetrics export'. Battles already in the cache are kept; everything else is
overwritten.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().BoolVarP(&importForce, "force", "f", false, "skip confirmation prompt")
}

func runExport(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	f, err := os.Create(args[0])
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}
	snap, err := db.Export(cmd.Context(), f)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("close archive: %w", cerr)
	}
	if err != nil {
		os.Remove(args[0])
		return err
	}

	size := "?"
	if fi, err := os.Stat(args[0]); err == nil {
		size = humanize.Bytes(uint64(fi.Size()))
	}
	fmt.Fprintf(os.Stdout, "Exported %d battles, %d progress days, %d events, %d runs to %s (%s)\n",
		len(snap.Battles), len(snap.Progress), len(snap.EventStats), len(snap.Runs), args[0], size)
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	if !importForce {
		fmt.Fprintf(os.Stderr, "This will overwrite progress, event stats, runs and watch state in: %s\n", dbPath)
		fmt.Fprintf(os.Stderr, "Re-run with --force to confirm.\n")
		return nil
	}
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	snap, err := db.Import(cmd.Context(), f)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Imported %d battles, %d progress days, %d events, %d runs (exported %s)\n",
		len(snap.Battles), len(snap.Progress), len(snap.EventStats), len(snap.Runs),
		humanize.Time(snap.ExportedAt))
	return nil
}
