package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pable/go-cr-metrics/internal/storage"
	"github.com/pable/go-cr-metrics/internal/tracker"
)

var (
	watchEvery      time.Duration
	watchSimilarity float64
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Alert on new pro videos and deck changes",
	Long: `Check channels for new uploads and players for deck changes. Without --every
each check runs once; with it the check repeats until Ctrl-C.`,
}

var watchVideoCmd = &cobra.Command{
	Use:   "video [channel-id...]",
	Short: "Report new uploads (defaults to invidious.channels)",
	RunE:  runWatchVideo,
}

var watchDeckCmd = &cobra.Command{
	Use:   "deck [tag...]",
	Short: "Report when a player switches deck (defaults to player.tag)",
	RunE:  runWatchDeck,
}

func init() {
	watchCmd.PersistentFlags().DurationVar(&watchEvery, "every", 0, "repeat the check at this interval")
	watchDeckCmd.Flags().Float64Var(&watchSimilarity, "similarity", 0, "overlap below which a deck counts as changed (default from config)")
	watchCmd.AddCommand(watchVideoCmd, watchDeckCmd)
}

// repeat runs check once, or every watchEvery until interrupted.
func repeat(cmd *cobra.Command, check func(ctx context.Context, db *storage.DB, t *tracker.Tracker) error) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()
	t := newTracker(db)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	if err := check(ctx, db, t); err != nil || watchEvery <= 0 {
		return err
	}
	ticker := time.NewTicker(watchEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := check(ctx, db, t); err != nil && !errors.Is(err, context.Canceled) {
				log.Warn().Err(err).Msg("watch check failed")
			}
		}
	}
}

func runWatchVideo(cmd *cobra.Command, args []string) error {
	channels := args
	if len(channels) == 0 {
		channels = cfg.Invidious.Channels
	}
	if len(channels) == 0 {
		return errors.New("no channels: pass ids or set invidious.channels")
	}
	client := invidiousClient()

	return repeat(cmd, func(ctx context.Context, db *storage.DB, t *tracker.Tracker) error {
		for _, ch := range channels {
			latest, ok, err := client.LatestVideo(ctx, ch)
			if err != nil {
				log.Warn().Err(err).Str("channel", ch).Msg("latest video")
				continue
			}
			if !ok {
				continue
			}
			if v, isNew := t.CheckNewVideo(ctx, latest); isNew {
				cGood.Fprintf(os.Stdout, "New video: %s\n", v.Title)
				fmt.Fprintf(os.Stdout, "  %s\n", v.URL)
			}
		}
		return nil
	})
}

func runWatchDeck(cmd *cobra.Command, args []string) error {
	tags := args
	if len(tags) == 0 {
		tag, err := playerTag(nil)
		if err != nil {
			return err
		}
		tags = []string{tag}
	}
	similarity := watchSimilarity
	if similarity <= 0 {
		similarity = cfg.Analysis.DeckSimilarity
	}
	client, err := clashClient()
	if err != nil {
		return err
	}

	return repeat(cmd, func(ctx context.Context, db *storage.DB, t *tracker.Tracker) error {
		for _, raw := range tags {
			tag, _ := playerTag([]string{raw})
			battles, err := fetchBattles(ctx, client, db, tag)
			if err != nil {
				log.Warn().Err(err).Str("tag", tag).Msg("battle log")
				continue
			}
			if deck, changed := t.CheckDeckChange(ctx, tag, battles, similarity); changed {
				cWarn.Fprintf(os.Stdout, "#%s is playing a new deck:\n", tag)
				fmt.Fprintf(os.Stdout, "  %s\n", strings.Join(deck, ", "))
			}
		}
		return nil
	})
}
