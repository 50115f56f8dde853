package analysis

import (
	"math"
	"sort"

	"github.com/pable/go-cr-metrics/internal/model"
)

// Elixir simulation constants.
const (
	StartElixir = 5.0
	MaxElixir   = 10.0
	// ElixirPerSecond is the single-elixir regeneration rate (one per 2.8s).
	ElixirPerSecond = 1 / 2.8
)

// AnalyzeCycle slides a window of the player's last window plays over the
// event stream. Every full window is checked for each role; a role missing
// from any full window stays missing. The returned flags are true when the
// role was covered in every window checked (or no window ever filled).
func (r Roles) AnalyzeCycle(plays []model.PlayEvent, window int) CardRoles {
	if window <= 0 {
		return CardRoles{AntiAir: true, Spell: true, WinCon: true}
	}

	var missing CardRoles
	buf := make([]string, 0, window)
	for _, p := range plays {
		if p.Side != model.SidePlayer {
			continue
		}
		if len(buf) == window {
			buf = buf[1:]
		}
		buf = append(buf, p.Card)
		if len(buf) < window {
			continue
		}

		var covered CardRoles
		for _, card := range buf {
			cr := r.ClassifyCard(card)
			covered.AntiAir = covered.AntiAir || cr.AntiAir
			covered.Spell = covered.Spell || cr.Spell
			covered.WinCon = covered.WinCon || cr.WinCon
		}
		missing.AntiAir = missing.AntiAir || !covered.AntiAir
		missing.Spell = missing.Spell || !covered.Spell
		missing.WinCon = missing.WinCon || !covered.WinCon
	}

	return CardRoles{
		AntiAir: !missing.AntiAir,
		Spell:   !missing.Spell,
		WinCon:  !missing.WinCon,
	}
}

// AggroMeter returns the ratio of player to opponent elixir spent during
// the first seconds of the battle. It is +Inf when the opponent spent
// nothing in that span.
func AggroMeter(events []model.PlayEvent, seconds float64) float64 {
	var player, opponent float64
	for _, e := range events {
		if e.Time > seconds {
			continue
		}
		switch e.Side {
		case model.SidePlayer:
			player += e.Elixir
		case model.SideOpponent:
			opponent += e.Elixir
		}
	}
	if opponent == 0 {
		return math.Inf(1)
	}
	return player / opponent
}

// ElixirDiffTimeline reconstructs both elixir pools across the battle and
// returns one point per event, in time order. Pools regenerate between
// events up to MaxElixir and are not floored at zero after a spend.
func ElixirDiffTimeline(events []model.PlayEvent) []model.TimelinePoint {
	sorted := append([]model.PlayEvent(nil), events...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Time < sorted[j].Time
	})

	player, opponent := StartElixir, StartElixir
	last := 0.0
	out := make([]model.TimelinePoint, 0, len(sorted))
	for _, e := range sorted {
		regen := (e.Time - last) * ElixirPerSecond
		player = math.Min(MaxElixir, player+regen)
		opponent = math.Min(MaxElixir, opponent+regen)
		last = e.Time

		switch e.Side {
		case model.SidePlayer:
			player -= e.Elixir
		case model.SideOpponent:
			opponent -= e.Elixir
		}

		out = append(out, model.TimelinePoint{
			Time:     e.Time,
			Diff:     player - opponent,
			Player:   player,
			Opponent: opponent,
		})
	}
	return out
}
