package tracker

import (
	"context"
	"fmt"

	"github.com/oklog/ulid/v2"

	"github.com/pable/go-cr-metrics/internal/model"
)

// StartRun creates a Grand Challenge run for deck and returns its id. Ids
// are ULIDs, so they sort by creation time.
func (t *Tracker) StartRun(ctx context.Context, deck []string) (string, error) {
	now := t.now().UTC()
	id := ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String()

	runs := t.loadRuns(ctx)
	runs = append(runs, model.GCRun{
		RunID:     id,
		Deck:      append([]string(nil), deck...),
		CreatedAt: now,
	})
	if err := t.store.SaveRuns(ctx, runs); err != nil {
		return "", fmt.Errorf("save run: %w", err)
	}
	return id, nil
}

// RecordMatch appends a result to runID. It returns ErrRunNotFound for an
// unknown run; a failed save is logged and dropped.
func (t *Tracker) RecordMatch(ctx context.Context, runID string, win bool, opponentElo int) error {
	runs := t.loadRuns(ctx)
	i := findRun(runs, runID)
	if i < 0 {
		return fmt.Errorf("record match %s: %w", runID, ErrRunNotFound)
	}
	runs[i].Matches = append(runs[i].Matches, model.GCMatch{Win: win, Elo: opponentElo})
	if err := t.store.SaveRuns(ctx, runs); err != nil {
		t.warn(err, "save runs")
	}
	return nil
}

// SummarizeRun returns wins, matches played and mean opponent elo for runID.
func (t *Tracker) SummarizeRun(ctx context.Context, runID string) (model.GCSummary, error) {
	runs := t.loadRuns(ctx)
	i := findRun(runs, runID)
	if i < 0 {
		return model.GCSummary{}, fmt.Errorf("summarize run %s: %w", runID, ErrRunNotFound)
	}
	return summarize(runs[i].Matches), nil
}

// Runs returns every stored run, oldest first.
func (t *Tracker) Runs(ctx context.Context) []model.GCRun {
	return t.loadRuns(ctx)
}

func summarize(matches []model.GCMatch) model.GCSummary {
	var s model.GCSummary
	var elo int
	for _, m := range matches {
		if m.Win {
			s.Wins++
		}
		elo += m.Elo
	}
	s.Total = len(matches)
	if s.Total > 0 {
		s.AvgElo = float64(elo) / float64(s.Total)
	}
	return s
}

func (t *Tracker) loadRuns(ctx context.Context) []model.GCRun {
	runs, err := t.store.LoadRuns(ctx)
	if err != nil {
		t.warn(err, "load runs")
		return nil
	}
	return runs
}

func findRun(runs []model.GCRun, id string) int {
	for i := range runs {
		if runs[i].RunID == id {
			return i
		}
	}
	return -1
}
