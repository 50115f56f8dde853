package analysis

import (
	"sort"
	"strconv"
	"time"

	"github.com/pable/go-cr-metrics/internal/model"
)

// isEventBattle reports whether b belongs to a special event or challenge
// rather than the ranked ladder.
func isEventBattle(b *model.BattleRecord) bool {
	return b.Type != model.BattleTypePvP && b.Type != model.BattleTypeRanked
}

// eventKey groups battles by event id, then event name, then "unknown".
func eventKey(b *model.BattleRecord) string {
	if b.EventMode != nil {
		if b.EventMode.ID != 0 {
			return strconv.Itoa(b.EventMode.ID)
		}
		if b.EventMode.Name != "" {
			return b.EventMode.Name
		}
	}
	return "unknown"
}

// CollectEventStats aggregates wins and losses per event over the
// non-ranked battles of a log. Each entry keeps the deck and date of the
// most recent battle seen for that event. Entries are sorted by event id.
func CollectEventStats(battles []model.BattleRecord) []model.EventStatEntry {
	type accum struct {
		entry    model.EventStatEntry
		lastTime string
	}
	byKey := make(map[string]*accum)

	for i := range battles {
		b := &battles[i]
		if !isEventBattle(b) {
			continue
		}
		team, _, ok := b.Sides()
		if !ok {
			continue
		}
		key := eventKey(b)
		acc := byKey[key]
		if acc == nil {
			acc = &accum{entry: model.EventStatEntry{EventID: key}}
			byKey[key] = acc
		}
		if b.Won() {
			acc.entry.Wins++
		} else {
			acc.entry.Losses++
		}
		// battleTime sorts lexically in its fixed layout.
		if acc.entry.Deck == nil || b.BattleTime > acc.lastTime {
			acc.lastTime = b.BattleTime
			acc.entry.Deck = team.CardNames()
			acc.entry.Date = battleDate(b.BattleTime)
		}
	}

	out := make([]model.EventStatEntry, 0, len(byKey))
	for _, acc := range byKey {
		out = append(out, acc.entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EventID < out[j].EventID })
	return out
}

// battleDate converts a battleTime to its UTC calendar day, or returns the
// raw value when it does not parse.
func battleDate(battleTime string) string {
	ts, err := ParseBattleTime(battleTime)
	if err != nil {
		return battleTime
	}
	return ts.Format(model.DateLayout)
}

// DailyEventWR buckets non-ranked battles from the last days days by UTC
// date and returns the per-day win rate in ascending date order.
func DailyEventWR(battles []model.BattleRecord, days int, now time.Time) []model.DailyWinRate {
	cutoff := now.UTC().Add(-time.Duration(days) * 24 * time.Hour)

	type tally struct{ wins, total int }
	byDay := make(map[string]*tally)
	for i := range battles {
		b := &battles[i]
		if !isEventBattle(b) {
			continue
		}
		if _, _, ok := b.Sides(); !ok {
			continue
		}
		ts, err := ParseBattleTime(b.BattleTime)
		if err != nil {
			continue
		}
		if ts.Before(cutoff) {
			continue
		}
		day := ts.Format(model.DateLayout)
		t := byDay[day]
		if t == nil {
			t = &tally{}
			byDay[day] = t
		}
		if b.Won() {
			t.wins++
		}
		t.total++
	}

	out := make([]model.DailyWinRate, 0, len(byDay))
	for day, t := range byDay {
		out = append(out, model.DailyWinRate{
			Date:    day,
			WinRate: float64(t.wins) / float64(t.total),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}
