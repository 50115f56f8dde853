// Package server is the local dashboard: a JSON API over the analysis
// functions plus chart pages rendered with go-echarts.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/pable/go-cr-metrics/internal/analysis"
	"github.com/pable/go-cr-metrics/internal/config"
	"github.com/pable/go-cr-metrics/internal/model"
	"github.com/pable/go-cr-metrics/internal/tracker"
)

// PlayerSource fetches live player data.
type PlayerSource interface {
	Player(ctx context.Context, tag string) (*model.Player, error)
	BattleLog(ctx context.Context, tag string) ([]model.BattleRecord, error)
}

// BattleCache serves previously fetched battles.
type BattleCache interface {
	ListBattles(ctx context.Context, tag string, limit int) ([]model.BattleRecord, error)
}

// Deps are the collaborators of the dashboard. Source and Cache may each be
// nil, but player endpoints need at least one of them.
type Deps struct {
	Source  PlayerSource
	Cache   BattleCache
	Tracker *tracker.Tracker
	Roles   analysis.Roles
	Config  *config.Config
	Logger  zerolog.Logger
	Now     func() time.Time
}

// Server is the dashboard HTTP server.
type Server struct {
	router chi.Router
	deps   Deps
	logger zerolog.Logger
}

// New builds the router with its middleware stack and routes.
func New(deps Deps) *Server {
	if deps.Config == nil {
		deps.Config = config.DefaultConfig()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	s := &Server{
		router: chi.NewRouter(),
		deps:   deps,
		logger: deps.Logger.With().Str("component", "server").Logger(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// ServeHTTP makes Server an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(60 * time.Second))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.deps.Config.Server.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Route("/api", func(r chi.Router) {
		r.Get("/players/{tag}/summary", s.handleSummary)
		r.Get("/players/{tag}/events", s.handleEvents)
		r.Get("/progress", s.handleProgress)
		r.Post("/battle/analyze", s.handleAnalyzeBattle)
	})
	s.router.Route("/charts", func(r chi.Router) {
		r.Get("/progress", s.handleProgressChart)
		r.Get("/events/{tag}", s.handleEventsChart)
		r.Post("/timeline", s.handleTimelineChart)
	})
}

// requestLogger tags each request with an id (taken from X-Request-ID or
// generated) and logs it once the handler returns.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		s.logger.Info().
			Str("request_id", id).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      90 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info().Str("addr", addr).Msg("dashboard listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
