// Package tracker runs the stateful operations over persisted collections:
// daily progress, event snapshots, Grand Challenge runs, and watch state.
//
// Persistence is best-effort. Store failures are logged and swallowed;
// callers get a safe default instead of an error.
package tracker

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/pable/go-cr-metrics/internal/model"
)

// Store loads and saves each persisted collection as a whole.
type Store interface {
	LoadProgress(ctx context.Context) ([]model.ProgressEntry, error)
	SaveProgress(ctx context.Context, entries []model.ProgressEntry) error
	LoadEventStats(ctx context.Context) ([]model.EventStatEntry, error)
	SaveEventStats(ctx context.Context, entries []model.EventStatEntry) error
	LoadRuns(ctx context.Context) ([]model.GCRun, error)
	SaveRuns(ctx context.Context, runs []model.GCRun) error
	LoadWatchState(ctx context.Context) (model.WatchState, error)
	SaveWatchState(ctx context.Context, st model.WatchState) error
}

// ErrRunNotFound is returned for an unknown Grand Challenge run id.
var ErrRunNotFound = errors.New("run not found")

// Tracker wraps a Store with the best-effort policy.
type Tracker struct {
	store  Store
	logger zerolog.Logger
	now    func() time.Time
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock overrides the time source used for "today" and run ids.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// New returns a Tracker over store.
func New(store Store, logger zerolog.Logger, opts ...Option) *Tracker {
	t := &Tracker{
		store:  store,
		logger: logger.With().Str("component", "tracker").Logger(),
		now:    time.Now,
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

func (t *Tracker) warn(err error, op string) {
	t.logger.Warn().Err(err).Str("op", op).Msg("store operation failed")
}
