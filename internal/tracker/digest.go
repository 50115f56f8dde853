package tracker

import (
	"context"
	"time"

	"github.com/pable/go-cr-metrics/internal/analysis"
	"github.com/pable/go-cr-metrics/internal/model"
)

// Digest is the once-a-day summary for one player.
type Digest struct {
	Date          string  `json:"date"`
	Trophies      int     `json:"trophies"`
	DeltaTrophies int     `json:"delta_trophies"`
	LeagueRank    int     `json:"league_rank"`
	DeltaStep     int     `json:"delta_step"`
	WinRate       float64 `json:"win_rate"`
	LuckyDrop     bool    `json:"lucky_drop"`
}

// DailyDigest records today's progress for player and compares it with the
// previous stored day. The win rate covers ranked battles from the last 24
// hours. ok is false when no progress could be read back.
func (t *Tracker) DailyDigest(ctx context.Context, player model.Player, battles []model.BattleRecord) (d Digest, ok bool) {
	t.RecordDailyProgress(ctx, battles, player.Trophies, player.LeagueRank)
	progress := t.LoadProgress(ctx)
	if len(progress) == 0 {
		return Digest{}, false
	}

	today := progress[len(progress)-1]
	d = Digest{
		Date:       today.Date,
		Trophies:   today.Trophies,
		LeagueRank: today.LeagueRank,
	}
	if len(progress) > 1 {
		prev := progress[len(progress)-2]
		d.DeltaTrophies = today.Trophies - prev.Trophies
		d.DeltaStep = today.LeagueRank - prev.LeagueRank
	}

	cutoff := t.now().UTC().Add(-24 * time.Hour)
	d.WinRate = analysis.ComputeWinRate(analysis.BattlesSince(battles, cutoff))
	d.LuckyDrop = analysis.HasLuckyDrop(battles)
	return d, true
}
