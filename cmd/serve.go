package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pable/go-cr-metrics/internal/logger"
	"github.com/pable/go-cr-metrics/internal/server"
)

var (
	serveAddr    string
	serveJSONLog bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local dashboard",
	Long: `Serve a JSON API and chart pages over the local database.

Endpoints:
  GET  /api/players/{tag}/summary   win rate, tilt, deck and cache summary
  GET  /api/players/{tag}/events    event stats and daily win rate (?days=N)
  GET  /api/progress                daily trophy history
  POST /api/battle/analyze          cycle coverage, aggro and elixir timeline
  GET  /charts/progress             trophy chart
  GET  /charts/events/{tag}         daily event win-rate chart
  POST /charts/timeline             elixir timeline chart

Without a Clash Royale token the player endpoints answer from the battle cache.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
	serveCmd.Flags().BoolVar(&serveJSONLog, "json-log", false, "log requests as JSON lines")
}

func runServe(cmd *cobra.Command, args []string) error {
	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}
	l := log
	if serveJSONLog {
		l = logger.NewJSON(cfg.Log.Level)
	}

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	roles, err := loadRoles()
	if err != nil {
		return err
	}

	deps := server.Deps{
		Cache:   db,
		Tracker: newTracker(db),
		Roles:   roles,
		Config:  cfg,
		Logger:  l,
	}
	if client, err := clashClient(); err == nil {
		deps.Source = client
	} else {
		l.Warn().Err(err).Msg("no live source, serving cached battles only")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cMuted.Fprintf(os.Stderr, "dashboard on http://%s (ctrl-c to stop)\n", addr)
	if err := server.New(deps).Run(ctx, addr); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
