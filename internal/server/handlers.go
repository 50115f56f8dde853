package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/pable/go-cr-metrics/internal/aggregator"
	"github.com/pable/go-cr-metrics/internal/analysis"
	"github.com/pable/go-cr-metrics/internal/charts"
	"github.com/pable/go-cr-metrics/internal/clash"
	"github.com/pable/go-cr-metrics/internal/model"
)

var errNoSource = errors.New("no player source configured")

type errorResponse struct {
	Error string `json:"error"`
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, err error) {
	respondJSON(w, status, errorResponse{Error: err.Error()})
}

// upstreamStatus maps a vendor error to the status returned to the browser.
func upstreamStatus(err error) int {
	switch {
	case clash.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, errNoSource):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

// loadBattles returns the live battle log, falling back to the cache when
// the vendor is unreachable or no live source is configured.
func (s *Server) loadBattles(ctx context.Context, tag string) ([]model.BattleRecord, error) {
	var liveErr error = errNoSource
	if s.deps.Source != nil {
		battles, err := s.deps.Source.BattleLog(ctx, tag)
		if err == nil {
			return battles, nil
		}
		liveErr = err
	}
	if s.deps.Cache != nil {
		battles, err := s.deps.Cache.ListBattles(ctx, clash.NormalizeTag(tag), 0)
		if err == nil && len(battles) > 0 {
			if s.deps.Source != nil {
				s.logger.Warn().Err(liveErr).Str("tag", tag).Msg("battle log unavailable, serving cache")
			}
			return battles, nil
		}
	}
	return nil, liveErr
}

type summaryResponse struct {
	Player    *model.Player      `json:"player,omitempty"`
	WinRate   float64            `json:"win_rate"`
	Tilt      bool               `json:"tilt"`
	Deck      []string           `json:"deck,omitempty"`
	Playstyle analysis.Playstyle `json:"playstyle,omitempty"`
	Summary   aggregator.Summary `json:"summary"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	tag := chi.URLParam(r, "tag")

	var (
		player  *model.Player
		battles []model.BattleRecord
	)
	g, ctx := errgroup.WithContext(r.Context())
	if s.deps.Source != nil {
		g.Go(func() error {
			p, err := s.deps.Source.Player(ctx, tag)
			if err != nil {
				// A cached battle log is still worth serving.
				s.logger.Warn().Err(err).Str("tag", tag).Msg("player profile unavailable")
				return nil
			}
			player = p
			return nil
		})
	}
	g.Go(func() error {
		b, err := s.loadBattles(ctx, tag)
		battles = b
		return err
	})
	if err := g.Wait(); err != nil {
		respondError(w, upstreamStatus(err), fmt.Errorf("load battles: %w", err))
		return
	}

	cfg := s.deps.Config
	resp := summaryResponse{
		Player:  player,
		WinRate: analysis.ComputeWinRate(battles),
		Tilt:    analysis.DetectTilt(battles, cfg.Analysis.TiltLimit, cfg.TiltWindow()),
		Summary: aggregator.Aggregate(battles),
	}
	if len(battles) > 0 {
		if team, _, ok := battles[0].Sides(); ok {
			resp.Deck = team.CardNames()
			resp.Playstyle = s.deps.Roles.ClassifyPlaystyle(resp.Deck)
		}
	}
	respondJSON(w, http.StatusOK, resp)
}

// days reads the days query parameter, defaulting to the configured window.
func (s *Server) days(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("days")
	if raw == "" {
		return s.deps.Config.Analysis.EventDays, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("days must be a positive integer, got %q", raw)
	}
	return n, nil
}

type eventsResponse struct {
	Events []model.EventStatEntry `json:"events"`
	Daily  []model.DailyWinRate   `json:"daily"`
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	days, err := s.days(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	battles, err := s.loadBattles(r.Context(), chi.URLParam(r, "tag"))
	if err != nil {
		respondError(w, upstreamStatus(err), fmt.Errorf("load battles: %w", err))
		return
	}
	respondJSON(w, http.StatusOK, eventsResponse{
		Events: analysis.CollectEventStats(battles),
		Daily:  analysis.DailyEventWR(battles, days, s.deps.Now()),
	})
}

func (s *Server) progress(r *http.Request) []model.ProgressEntry {
	if s.deps.Tracker == nil {
		return nil
	}
	return s.deps.Tracker.LoadProgress(r.Context())
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	entries := s.progress(r)
	if entries == nil {
		entries = []model.ProgressEntry{}
	}
	respondJSON(w, http.StatusOK, entries)
}

type analyzeRequest struct {
	Events  []model.PlayEvent `json:"events"`
	Window  int               `json:"window,omitempty"`
	Seconds float64           `json:"seconds,omitempty"`
}

type analyzeResponse struct {
	Coverage analysis.CardRoles    `json:"coverage"`
	// Aggro is null when the opponent spent no elixir in the window.
	Aggro    *float64              `json:"aggro"`
	Timeline []model.TimelinePoint `json:"timeline"`
}

func (s *Server) decodeEvents(r *http.Request) (analyzeRequest, error) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, fmt.Errorf("decode request: %w", err)
	}
	if req.Window <= 0 {
		req.Window = s.deps.Config.Analysis.CycleWindow
	}
	if req.Seconds <= 0 {
		req.Seconds = s.deps.Config.Analysis.AggroSeconds
	}
	return req, nil
}

func (s *Server) handleAnalyzeBattle(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeEvents(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	resp := analyzeResponse{
		Coverage: s.deps.Roles.AnalyzeCycle(req.Events, req.Window),
		Timeline: analysis.ElixirDiffTimeline(req.Events),
	}
	if aggro := analysis.AggroMeter(req.Events, req.Seconds); !math.IsInf(aggro, 0) {
		resp.Aggro = &aggro
	}
	respondJSON(w, http.StatusOK, resp)
}

// renderHTML buffers a chart so a render failure can still become a 500.
func renderHTML(w http.ResponseWriter, render func(*bytes.Buffer) error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleProgressChart(w http.ResponseWriter, r *http.Request) {
	entries := s.progress(r)
	renderHTML(w, func(buf *bytes.Buffer) error {
		return charts.Progress(buf, entries, charts.DefaultConfig())
	})
}

func (s *Server) handleEventsChart(w http.ResponseWriter, r *http.Request) {
	days, err := s.days(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	tag := chi.URLParam(r, "tag")
	battles, err := s.loadBattles(r.Context(), tag)
	if err != nil {
		respondError(w, upstreamStatus(err), fmt.Errorf("load battles: %w", err))
		return
	}
	cfg := charts.DefaultConfig()
	cfg.Subtitle = fmt.Sprintf("#%s, last %d days", clash.NormalizeTag(tag), days)
	renderHTML(w, func(buf *bytes.Buffer) error {
		return charts.DailyWinRate(buf, analysis.DailyEventWR(battles, days, s.deps.Now()), cfg)
	})
}

func (s *Server) handleTimelineChart(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeEvents(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	renderHTML(w, func(buf *bytes.Buffer) error {
		return charts.ElixirTimeline(buf, analysis.ElixirDiffTimeline(req.Events), charts.DefaultConfig())
	})
}
