package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"github.com/pable/go-cr-metrics/internal/analysis"
	"github.com/pable/go-cr-metrics/internal/clash"
	"github.com/pable/go-cr-metrics/internal/invidious"
	"github.com/pable/go-cr-metrics/internal/model"
	"github.com/pable/go-cr-metrics/internal/royaleapi"
	"github.com/pable/go-cr-metrics/internal/storage"
	"github.com/pable/go-cr-metrics/internal/tracker"
)

var (
	cAlert = color.New(color.FgRed, color.Bold)
	cGood  = color.New(color.FgGreen, color.Bold)
	cWarn  = color.New(color.FgYellow)
	cMuted = color.New(color.Faint)
)

// openDB opens the metrics database, creating its directory when needed.
func openDB() (*storage.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := storage.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	return db, nil
}

func newTracker(db *storage.DB) *tracker.Tracker {
	return tracker.New(db, log)
}

func clashClient() (*clash.Client, error) {
	token, err := cfg.RequireClashToken()
	if err != nil {
		return nil, err
	}
	opts := []clash.Option{clash.WithLogger(log)}
	if cfg.Clash.BaseURL != "" {
		opts = append(opts, clash.WithBaseURL(cfg.Clash.BaseURL))
	}
	return clash.NewClient(token, opts...), nil
}

func royaleClient() (*royaleapi.Client, error) {
	token, err := cfg.RequireRoyaleAPIToken()
	if err != nil {
		return nil, err
	}
	return royaleapi.NewClient(token, cfg.RoyaleAPI.BaseURL), nil
}

func invidiousClient() *invidious.Client {
	return invidious.NewClient(cfg.Invidious.BaseURL)
}

// playerTag returns the tag given as the first argument, or the configured
// default player.
func playerTag(args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return clash.NormalizeTag(args[0]), nil
	}
	if cfg.Player.Tag != "" {
		return clash.NormalizeTag(cfg.Player.Tag), nil
	}
	return "", fmt.Errorf("no player tag: pass one or set player.tag in %s", configPath)
}

func loadRoles() (analysis.Roles, error) {
	if cfg.Analysis.RolesFile == "" {
		return analysis.DefaultRoles(), nil
	}
	roles, err := analysis.LoadRoles(cfg.Analysis.RolesFile)
	if err != nil {
		return analysis.Roles{}, fmt.Errorf("load roles: %w", err)
	}
	return roles, nil
}

// splitCards parses a comma-separated card list.
func splitCards(s string) []string {
	var out []string
	for _, c := range strings.Split(s, ",") {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}

// fetchBattles downloads the battle log for tag and caches it. Cache
// failures are logged, not returned.
func fetchBattles(ctx context.Context, client *clash.Client, db *storage.DB, tag string) ([]model.BattleRecord, error) {
	battles, err := client.BattleLog(ctx, tag)
	if err != nil {
		return nil, fmt.Errorf("fetch battle log: %w", err)
	}
	if db != nil {
		if n, err := db.InsertBattles(ctx, tag, battles); err != nil {
			log.Warn().Err(err).Str("tag", tag).Msg("cache battles")
		} else if n > 0 {
			log.Debug().Int("new", n).Str("tag", tag).Msg("cached battles")
		}
	}
	return battles, nil
}

// recentBattles returns the live battle log, or the cached one when offline
// is set.
func recentBattles(ctx context.Context, db *storage.DB, tag string, offline bool, limit int) ([]model.BattleRecord, error) {
	if offline {
		battles, err := db.ListBattles(ctx, tag, limit)
		if err != nil {
			return nil, fmt.Errorf("read cached battles: %w", err)
		}
		if len(battles) == 0 {
			return nil, fmt.Errorf("no cached battles for #%s: run 'crmetrics fetch' first", tag)
		}
		return battles, nil
	}
	client, err := clashClient()
	if err != nil {
		return nil, err
	}
	return fetchBattles(ctx, client, db, tag)
}

// cardCatalog fetches the card list used for elixir lookups.
func cardCatalog(ctx context.Context) ([]model.CardCatalogEntry, error) {
	client, err := clashClient()
	if err != nil {
		return nil, err
	}
	cards, err := client.Cards(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch card catalog: %w", err)
	}
	return cards, nil
}

// writeHTML renders a chart into path. A partial file is removed when
// rendering or closing fails.
func writeHTML(path string, render func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chart file: %w", err)
	}
	err = render(f)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("close chart file: %w", cerr)
	}
	if err != nil {
		os.Remove(path)
		return err
	}
	fmt.Fprintf(os.Stdout, "Chart written to %s\n", path)
	return nil
}
