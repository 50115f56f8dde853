// Package analysis holds the pure statistics computed over battle logs,
// decks, and in-battle play events. Nothing here performs I/O.
package analysis

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/pable/go-cr-metrics/internal/model"
)

// ParseBattleTime parses the vendor's battleTime field. Only the exact
// YYYYMMDDTHHMMSS.000Z layout is accepted.
func ParseBattleTime(s string) (time.Time, error) {
	return time.ParseInLocation(model.BattleTimeLayout, s, time.UTC)
}

// ComputeWinRate returns the ranked PvP win rate of a battle log. Battles
// missing either side are skipped. Returns 0 when no battle qualifies.
func ComputeWinRate(battles []model.BattleRecord) float64 {
	wins, total := 0, 0
	for i := range battles {
		b := &battles[i]
		if b.Type != model.BattleTypePvP {
			continue
		}
		if _, _, ok := b.Sides(); !ok {
			continue
		}
		if b.Won() {
			wins++
		}
		total++
	}
	if total == 0 {
		return 0
	}
	return float64(wins) / float64(total)
}

// DetectTilt reports whether the log opens with at least limit consecutive
// ranked losses spanning no more than window.
//
// battles must be most-recent-first, as the vendor returns them. The order
// is not validated: with oldest-first input the elapsed time comes out
// negative and always fits the window.
//
// A non-loss ends the scan. So does an unparsable battleTime, in which case
// the result is false.
func DetectTilt(battles []model.BattleRecord, limit int, window time.Duration) bool {
	losses := 0
	var firstLoss time.Time
	for i := range battles {
		b := &battles[i]
		if b.Type != model.BattleTypePvP {
			continue
		}
		if _, _, ok := b.Sides(); !ok {
			continue
		}
		if b.Won() {
			return false
		}
		ts, err := ParseBattleTime(b.BattleTime)
		if err != nil {
			return false
		}
		if losses == 0 {
			firstLoss = ts
		}
		losses++
		if losses >= limit && firstLoss.Sub(ts) <= window {
			return true
		}
	}
	return false
}

// BattlesOn returns the battles whose battleTime falls on the UTC calendar
// day of day. Unparsable timestamps are dropped.
func BattlesOn(battles []model.BattleRecord, day time.Time) []model.BattleRecord {
	key := day.UTC().Format(model.DateLayout)
	var out []model.BattleRecord
	for _, b := range battles {
		ts, err := ParseBattleTime(b.BattleTime)
		if err != nil {
			continue
		}
		if ts.Format(model.DateLayout) == key {
			out = append(out, b)
		}
	}
	return out
}

// BattlesSince returns the battles strictly newer than cutoff.
func BattlesSince(battles []model.BattleRecord, cutoff time.Time) []model.BattleRecord {
	var out []model.BattleRecord
	for _, b := range battles {
		ts, err := ParseBattleTime(b.BattleTime)
		if err != nil {
			continue
		}
		if ts.After(cutoff) {
			out = append(out, b)
		}
	}
	return out
}

// HasLuckyDrop reports whether any battle payload mentions a Lucky Drop
// chest, case-insensitively.
func HasLuckyDrop(battles []model.BattleRecord) bool {
	for i := range battles {
		raw := battles[i].Raw
		if len(raw) == 0 {
			var err error
			if raw, err = json.Marshal(&battles[i]); err != nil {
				continue
			}
		}
		if strings.Contains(strings.ToLower(string(raw)), "lucky drop") {
			return true
		}
	}
	return false
}
