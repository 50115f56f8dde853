package analysis

import (
	"math"
	"testing"

	"github.com/pable/go-cr-metrics/internal/model"
)

func play(t float64, side model.Side, card string, elixir float64) model.PlayEvent {
	return model.PlayEvent{Time: t, Side: side, Card: card, Elixir: elixir}
}

func TestAnalyzeCycle_AllRolesCovered(t *testing.T) {
	plays := []model.PlayEvent{
		play(1, model.SidePlayer, "fireball", 4),
		play(2, model.SidePlayer, "archer", 3),
		play(3, model.SidePlayer, "knight", 3),
		play(4, model.SidePlayer, "hog rider", 4),
	}
	got := DefaultRoles().AnalyzeCycle(plays, 4)
	want := CardRoles{AntiAir: true, Spell: true, WinCon: true}
	if got != want {
		t.Errorf("want %+v, got %+v", want, got)
	}
}

// TestAnalyzeCycle_MissingSpell: a later window without a spell flips the flag.
func TestAnalyzeCycle_MissingSpell(t *testing.T) {
	plays := []model.PlayEvent{
		play(1, model.SidePlayer, "fireball", 4),
		play(2, model.SidePlayer, "archers", 3),
		play(3, model.SidePlayer, "hog rider", 4),
		play(4, model.SidePlayer, "knight", 3),
		play(5, model.SidePlayer, "valkyrie", 4),
	}
	got := DefaultRoles().AnalyzeCycle(plays, 3)
	if got.Spell {
		t.Error("expected spell coverage to be missing")
	}
	if got.AntiAir {
		t.Error("expected anti-air coverage to be missing in window [hog rider knight valkyrie]")
	}
}

func TestAnalyzeCycle_IgnoresOpponentAndShortInput(t *testing.T) {
	plays := []model.PlayEvent{
		play(1, model.SideOpponent, "knight", 3),
		play(2, model.SidePlayer, "knight", 3),
	}
	got := DefaultRoles().AnalyzeCycle(plays, 4)
	if !got.AntiAir || !got.Spell || !got.WinCon {
		t.Errorf("no full window: want all true, got %+v", got)
	}
}

func TestAggroMeter(t *testing.T) {
	events := []model.PlayEvent{
		play(10, model.SidePlayer, "hog rider", 4),
		play(20, model.SidePlayer, "musketeer", 3),
		play(15, model.SideOpponent, "valkyrie", 4),
		play(50, model.SideOpponent, "fireball", 2),
		play(90, model.SidePlayer, "golem", 8),
	}
	got := AggroMeter(events, 60)
	want := 7.0 / 6.0
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("aggro: want %f, got %f", want, got)
	}
}

func TestAggroMeter_NoOpponentSpend(t *testing.T) {
	got := AggroMeter([]model.PlayEvent{play(5, model.SidePlayer, "zap", 2)}, 60)
	if !math.IsInf(got, 1) {
		t.Errorf("want +Inf, got %f", got)
	}
}

func TestElixirDiffTimeline(t *testing.T) {
	events := []model.PlayEvent{
		play(5.6, model.SideOpponent, "knight", 3),
		play(2.8, model.SidePlayer, "hog rider", 4),
	}
	tl := ElixirDiffTimeline(events)
	if len(tl) != 2 {
		t.Fatalf("want 2 points, got %d", len(tl))
	}
	if tl[0].Time != 2.8 || tl[1].Time != 5.6 {
		t.Errorf("points not in time order: %+v", tl)
	}
	// 5 + 1 regen - 4 = 2 for the player; opponent 6.
	if math.Abs(tl[0].Player-2) > 1e-9 || math.Abs(tl[0].Opponent-6) > 1e-9 {
		t.Errorf("first point: want 2/6, got %f/%f", tl[0].Player, tl[0].Opponent)
	}
	for i, p := range tl {
		if math.Abs(p.Diff-(p.Player-p.Opponent)) > 1e-9 {
			t.Errorf("point %d: diff %f != player-opponent %f", i, p.Diff, p.Player-p.Opponent)
		}
	}
}

func TestElixirDiffTimeline_CapsAtMax(t *testing.T) {
	tl := ElixirDiffTimeline([]model.PlayEvent{play(60, model.SidePlayer, "golem", 8)})
	if tl[0].Player != MaxElixir-8 || tl[0].Opponent != MaxElixir {
		t.Errorf("cap: got player %f opponent %f", tl[0].Player, tl[0].Opponent)
	}
}

func TestElixirDiffTimeline_Empty(t *testing.T) {
	if tl := ElixirDiffTimeline(nil); len(tl) != 0 {
		t.Errorf("want empty timeline, got %v", tl)
	}
}

func TestAggroMeter_Example(t *testing.T) {
	events := []model.PlayEvent{
		play(5, model.SidePlayer, "knight", 3),
		play(10, model.SideOpponent, "zap", 2),
		play(20, model.SidePlayer, "hog rider", 4),
		play(25, model.SideOpponent, "valkyrie", 4),
	}
	if got := AggroMeter(events, 30); math.Abs(got-7.0/6.0) > 1e-9 {
		t.Errorf("want 7/6, got %f", got)
	}
}
