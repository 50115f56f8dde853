package tracker

import (
	"context"
	"sort"

	"github.com/pable/go-cr-metrics/internal/analysis"
	"github.com/pable/go-cr-metrics/internal/model"
)

// RecordDailyProgress stores today's trophies, league rank and ranked win
// rate, replacing any entry already written today. It returns the entry
// computed for today. Nothing is saved when the history cannot be read.
func (t *Tracker) RecordDailyProgress(ctx context.Context, battles []model.BattleRecord, trophies, leagueRank int) model.ProgressEntry {
	today := t.now().UTC()
	entry := model.ProgressEntry{
		Date:       today.Format(model.DateLayout),
		Trophies:   trophies,
		LeagueRank: leagueRank,
		WinRate:    analysis.ComputeWinRate(analysis.BattlesOn(battles, today)),
	}

	entries, err := t.store.LoadProgress(ctx)
	if err != nil {
		// Saving now would overwrite the unread history with a single day.
		t.warn(err, "load progress")
		return entry
	}
	replaced := false
	for i := range entries {
		if entries[i].Date == entry.Date {
			entries[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Date < entries[j].Date })

	if err := t.store.SaveProgress(ctx, entries); err != nil {
		t.warn(err, "save progress")
	}
	return entry
}

// LoadProgress returns the progress history, oldest first, or nil when
// the store cannot be read.
func (t *Tracker) LoadProgress(ctx context.Context) []model.ProgressEntry {
	entries, err := t.store.LoadProgress(ctx)
	if err != nil {
		t.warn(err, "load progress")
		return nil
	}
	return entries
}

// ResetProgress clears the progress history.
func (t *Tracker) ResetProgress(ctx context.Context) {
	if err := t.store.SaveProgress(ctx, nil); err != nil {
		t.warn(err, "reset progress")
	}
}

// CollectEventStats aggregates event battles and stores the snapshot.
func (t *Tracker) CollectEventStats(ctx context.Context, battles []model.BattleRecord) []model.EventStatEntry {
	stats := analysis.CollectEventStats(battles)
	if err := t.store.SaveEventStats(ctx, stats); err != nil {
		t.warn(err, "save event stats")
	}
	return stats
}

// LoadEventStats returns the last stored event snapshot.
func (t *Tracker) LoadEventStats(ctx context.Context) []model.EventStatEntry {
	stats, err := t.store.LoadEventStats(ctx)
	if err != nil {
		t.warn(err, "load event stats")
		return nil
	}
	return stats
}
