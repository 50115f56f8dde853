package analysis

import (
	"reflect"
	"testing"
	"time"

	"github.com/pable/go-cr-metrics/internal/model"
)

func eventBattle(id int, won bool, battleTime string, cards ...string) model.BattleRecord {
	b := battle("challenge", 0, 1, battleTime)
	if won {
		b.Team[0].Crowns = 2
	}
	b.EventMode = &model.EventMode{ID: id}
	for _, c := range cards {
		b.Team[0].Cards = append(b.Team[0].Cards, model.Card{Name: c})
	}
	return b
}

func TestCollectEventStats(t *testing.T) {
	log := []model.BattleRecord{
		eventBattle(72000010, true, "20240716T120000.000Z", "Hog Rider", "Zap"),
		eventBattle(72000010, false, "20240715T120000.000Z", "Golem"),
		eventBattle(72000005, true, "20240714T080000.000Z", "Miner"),
		battle(model.BattleTypePvP, 3, 0, "20240716T130000.000Z"),
		battle(model.BattleTypeRanked, 3, 0, "20240716T130000.000Z"),
	}
	got := CollectEventStats(log)
	if len(got) != 2 {
		t.Fatalf("want 2 events, got %d: %+v", len(got), got)
	}
	if got[0].EventID != "72000005" || got[1].EventID != "72000010" {
		t.Errorf("not sorted by event id: %+v", got)
	}
	e := got[1]
	if e.Wins != 1 || e.Losses != 1 {
		t.Errorf("72000010: want 1-1, got %d-%d", e.Wins, e.Losses)
	}
	if !reflect.DeepEqual(e.Deck, []string{"Hog Rider", "Zap"}) {
		t.Errorf("deck should come from the most recent battle, got %v", e.Deck)
	}
	if e.Date != "2024-07-16" {
		t.Errorf("date: want 2024-07-16, got %s", e.Date)
	}
}

func TestCollectEventStats_KeyFallback(t *testing.T) {
	named := battle("challenge", 1, 0, "20240716T120000.000Z")
	named.EventMode = &model.EventMode{Name: "Draft"}
	bare := battle("tournament", 1, 0, "20240716T120000.000Z")
	got := CollectEventStats([]model.BattleRecord{named, bare})
	ids := []string{got[0].EventID, got[1].EventID}
	if !reflect.DeepEqual(ids, []string{"Draft", "unknown"}) {
		t.Errorf("event keys: got %v", ids)
	}
}

func TestDailyEventWR(t *testing.T) {
	now := time.Date(2024, 7, 17, 12, 0, 0, 0, time.UTC)
	log := []model.BattleRecord{
		eventBattle(1, true, "20240716T100000.000Z"),
		eventBattle(1, false, "20240716T110000.000Z"),
		eventBattle(1, true, "20240717T090000.000Z"),
		eventBattle(1, true, "20240701T090000.000Z"), // outside window
		battle(model.BattleTypePvP, 0, 3, "20240717T090000.000Z"),
	}
	got := DailyEventWR(log, 7, now)
	want := []model.DailyWinRate{
		{Date: "2024-07-16", WinRate: 0.5},
		{Date: "2024-07-17", WinRate: 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("want %v, got %v", want, got)
	}
}

func TestEventStatEntryWR(t *testing.T) {
	e := model.EventStatEntry{Wins: 3, Losses: 1}
	if e.WR() != 0.75 {
		t.Errorf("WR: want 0.75, got %f", e.WR())
	}
	var empty model.EventStatEntry
	if empty.WR() != 0 {
		t.Errorf("empty WR: want 0, got %f", empty.WR())
	}
}
