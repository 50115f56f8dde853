package analysis

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/pable/go-cr-metrics/internal/model"
)

// battle builds a battle record with one participant per side.
func battle(typ string, teamCrowns, oppCrowns int, battleTime string) model.BattleRecord {
	return model.BattleRecord{
		Type:       typ,
		BattleTime: battleTime,
		Team:       []model.Participant{{Crowns: teamCrowns}},
		Opponent:   []model.Participant{{Crowns: oppCrowns}},
	}
}

func loss(battleTime string) model.BattleRecord {
	return battle(model.BattleTypePvP, 0, 1, battleTime)
}

func TestComputeWinRate(t *testing.T) {
	log := []model.BattleRecord{
		battle(model.BattleTypePvP, 1, 0, ""),
		battle(model.BattleTypePvP, 0, 2, ""),
	}
	if got := ComputeWinRate(log); got != 0.5 {
		t.Errorf("win rate: want 0.5, got %f", got)
	}
}

func TestComputeWinRate_Empty(t *testing.T) {
	if got := ComputeWinRate(nil); got != 0 {
		t.Errorf("empty log: want 0, got %f", got)
	}
}

// TestComputeWinRate_Filters: non-PvP battles and battles missing a side do
// not count; equal crowns is a loss.
func TestComputeWinRate_Filters(t *testing.T) {
	log := []model.BattleRecord{
		battle("challenge", 3, 0, ""),
		{Type: model.BattleTypePvP, Team: []model.Participant{{Crowns: 3}}},
		battle(model.BattleTypePvP, 1, 1, ""),
		battle(model.BattleTypePvP, 2, 1, ""),
	}
	if got := ComputeWinRate(log); got != 0.5 {
		t.Errorf("want 0.5 (1 win of 2 qualifying), got %f", got)
	}
}

func TestComputeWinRate_Bounds(t *testing.T) {
	logs := [][]model.BattleRecord{
		{battle(model.BattleTypePvP, 3, 0, "")},
		{battle(model.BattleTypePvP, 0, 3, "")},
		{battle("challenge", 0, 3, "")},
	}
	for i, log := range logs {
		got := ComputeWinRate(log)
		if got < 0 || got > 1 {
			t.Errorf("log %d: win rate %f out of [0,1]", i, got)
		}
	}
}

func TestDetectTilt_WithinWindow(t *testing.T) {
	log := []model.BattleRecord{
		loss("20240716T120100.000Z"),
		loss("20240716T120000.000Z"),
		loss("20240716T115900.000Z"),
	}
	if !DetectTilt(log, 3, 5*time.Minute) {
		t.Error("expected tilt: 3 losses in 2 minutes with a 5 minute window")
	}
}

func TestDetectTilt_OutsideWindow(t *testing.T) {
	log := []model.BattleRecord{
		loss("20240716T130000.000Z"),
		loss("20240716T121000.000Z"),
		loss("20240716T120000.000Z"),
	}
	if DetectTilt(log, 3, 15*time.Minute) {
		t.Error("expected no tilt: losses span an hour")
	}
}

// TestDetectTilt_WinBreaksStreak: a win before the limit is reached ends the scan.
func TestDetectTilt_WinBreaksStreak(t *testing.T) {
	log := []model.BattleRecord{
		loss("20240716T120100.000Z"),
		battle(model.BattleTypePvP, 2, 0, "20240716T120000.000Z"),
		loss("20240716T115900.000Z"),
		loss("20240716T115800.000Z"),
	}
	if DetectTilt(log, 3, 15*time.Minute) {
		t.Error("expected no tilt: streak broken by a win")
	}
}

// TestDetectTilt_SkipsNonRanked: challenge battles neither count nor break the streak.
func TestDetectTilt_SkipsNonRanked(t *testing.T) {
	log := []model.BattleRecord{
		loss("20240716T120100.000Z"),
		battle("challenge", 3, 0, "20240716T120030.000Z"),
		loss("20240716T120000.000Z"),
		loss("20240716T115900.000Z"),
	}
	if !DetectTilt(log, 3, 5*time.Minute) {
		t.Error("expected tilt: challenge win must be ignored")
	}
}

func TestDetectTilt_UnparsableTime(t *testing.T) {
	log := []model.BattleRecord{
		loss("20240716T120100.000Z"),
		loss("2024-07-16 12:00:00"),
		loss("20240716T115900.000Z"),
	}
	if DetectTilt(log, 3, time.Hour) {
		t.Error("expected false on unparsable battleTime")
	}
}

func TestDetectTilt_TooFewLosses(t *testing.T) {
	log := []model.BattleRecord{
		loss("20240716T120100.000Z"),
		loss("20240716T120000.000Z"),
	}
	if DetectTilt(log, 3, time.Hour) {
		t.Error("expected false with only 2 losses")
	}
}

// TestDetectTilt_AscendingInput documents that oldest-first input is not
// rejected: the elapsed time goes negative and always fits the window.
func TestDetectTilt_AscendingInput(t *testing.T) {
	log := []model.BattleRecord{
		loss("20240716T100000.000Z"),
		loss("20240716T110000.000Z"),
		loss("20240716T120000.000Z"),
	}
	if !DetectTilt(log, 3, time.Minute) {
		t.Error("ascending input: expected true (negative span)")
	}
}

func TestBattlesOn(t *testing.T) {
	log := []model.BattleRecord{
		loss("20240716T235959.000Z"),
		loss("20240717T000000.000Z"),
		loss("garbage"),
	}
	day := time.Date(2024, 7, 16, 9, 0, 0, 0, time.UTC)
	got := BattlesOn(log, day)
	if len(got) != 1 || got[0].BattleTime != "20240716T235959.000Z" {
		t.Errorf("BattlesOn: unexpected result %+v", got)
	}
}

func TestHasLuckyDrop(t *testing.T) {
	var log []model.BattleRecord
	if err := json.Unmarshal([]byte(`[{"type":"PvP","chest":"Lucky Drop"}]`), &log); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !HasLuckyDrop(log) {
		t.Error("expected lucky drop in raw payload")
	}
	if HasLuckyDrop([]model.BattleRecord{battle(model.BattleTypePvP, 1, 0, "")}) {
		t.Error("expected no lucky drop")
	}
}

func TestParseBattleTime(t *testing.T) {
	ts, err := ParseBattleTime("20240716T120100.000Z")
	if err != nil {
		t.Fatalf("ParseBattleTime: %v", err)
	}
	want := time.Date(2024, 7, 16, 12, 1, 0, 0, time.UTC)
	if !ts.Equal(want) {
		t.Errorf("want %v, got %v", want, ts)
	}
	if _, err := ParseBattleTime("20240716T120100Z"); err == nil {
		t.Error("expected error for layout without milliseconds")
	}
}
