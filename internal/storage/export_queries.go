package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/pable/go-cr-metrics/internal/model"
)

// SnapshotVersion is bumped whenever the Snapshot layout changes.
const SnapshotVersion = 1

// Snapshot is every persisted collection in one value.
type Snapshot struct {
	Version    int                    `json:"version"`
	ExportedAt time.Time              `json:"exported_at"`
	Progress   []model.ProgressEntry  `json:"progress"`
	EventStats []model.EventStatEntry `json:"event_stats"`
	Runs       []model.GCRun          `json:"gc_runs"`
	Watch      model.WatchState       `json:"watch"`
	Battles    []CachedBattle         `json:"battles"`
}

// LoadSnapshot reads every collection.
func (db *DB) LoadSnapshot(ctx context.Context) (*Snapshot, error) {
	var (
		s   = &Snapshot{Version: SnapshotVersion, ExportedAt: time.Now().UTC()}
		err error
	)
	if s.Progress, err = db.LoadProgress(ctx); err != nil {
		return nil, fmt.Errorf("progress: %w", err)
	}
	if s.EventStats, err = db.LoadEventStats(ctx); err != nil {
		return nil, fmt.Errorf("event stats: %w", err)
	}
	if s.Runs, err = db.LoadRuns(ctx); err != nil {
		return nil, fmt.Errorf("gc runs: %w", err)
	}
	if s.Watch, err = db.LoadWatchState(ctx); err != nil {
		return nil, fmt.Errorf("watch state: %w", err)
	}
	if s.Battles, err = db.listCachedBattles(ctx); err != nil {
		return nil, fmt.Errorf("battles: %w", err)
	}
	return s, nil
}

// RestoreSnapshot replaces every collection with the contents of s.
// Cached battles are merged: rows already present are kept.
func (db *DB) RestoreSnapshot(ctx context.Context, s *Snapshot) error {
	if s.Version > SnapshotVersion {
		return fmt.Errorf("snapshot version %d is newer than supported version %d", s.Version, SnapshotVersion)
	}
	if err := db.SaveProgress(ctx, s.Progress); err != nil {
		return fmt.Errorf("progress: %w", err)
	}
	if err := db.SaveEventStats(ctx, s.EventStats); err != nil {
		return fmt.Errorf("event stats: %w", err)
	}
	if err := db.SaveRuns(ctx, s.Runs); err != nil {
		return fmt.Errorf("gc runs: %w", err)
	}
	if err := db.SaveWatchState(ctx, s.Watch); err != nil {
		return fmt.Errorf("watch state: %w", err)
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, b := range s.Battles {
		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO battles(tag, battle_time, type, payload, fetched_at)
			VALUES (?, ?, ?, ?, ?)`,
			b.Tag, b.BattleTime, b.Type, string(b.Payload), b.FetchedAt); err != nil {
			return fmt.Errorf("battles: %w", err)
		}
	}
	return tx.Commit()
}
