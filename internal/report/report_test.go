package report

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/pable/go-cr-metrics/internal/aggregator"
	"github.com/pable/go-cr-metrics/internal/analysis"
	"github.com/pable/go-cr-metrics/internal/model"
	"github.com/pable/go-cr-metrics/internal/storage"
	"github.com/pable/go-cr-metrics/internal/tracker"
)

func assertContains(t *testing.T, out string, wants ...string) {
	t.Helper()
	for _, w := range wants {
		if !strings.Contains(out, w) {
			t.Errorf("output missing %q:\n%s", w, out)
		}
	}
}

var now = time.Date(2024, 7, 16, 13, 0, 0, 0, time.UTC)

func TestPrintPlayerHeader(t *testing.T) {
	var buf bytes.Buffer
	PrintPlayerHeader(&buf, model.Player{Tag: "#ABC", Name: "Ana", Trophies: 7421, LeagueRank: 5}, 0.55)
	assertContains(t, buf.String(), "Ana (#ABC)", "7,421", "League: 5", "55%")
}

func TestPrintBattleTable(t *testing.T) {
	battles := []model.BattleRecord{
		{
			Type:       "PvP",
			BattleTime: "20240716T120000.000Z",
			Team:       []model.Participant{{Crowns: 3}},
			Opponent:   []model.Participant{{Name: "Bo", Crowns: 1}},
		},
		{Type: "PvP", BattleTime: "20240716T110000.000Z"},
	}
	var buf bytes.Buffer
	PrintBattleTable(&buf, battles, now)
	out := buf.String()
	assertContains(t, out, "1 hour ago", "3-1", "Bo")
	if strings.Contains(out, "2 hours ago") {
		t.Error("battle without sides should be skipped")
	}
}

func TestPrintSummary(t *testing.T) {
	s := aggregator.Summary{
		Battles: 4, Wins: 3, Losses: 1, MedianCrownDiff: 1,
		ByType:  []aggregator.TypeStats{{Type: "PvP", Wins: 3, Losses: 1}},
		ByDeck:  []aggregator.DeckStats{{Cards: []string{"Giant", "Zap"}, Wins: 3, Losses: 1}},
		Nemesis: []aggregator.CardMatchup{{Card: "Mortar", Seen: 4, Losses: 1}},
	}
	var buf bytes.Buffer
	PrintSummary(&buf, s)
	assertContains(t, buf.String(), "4 (3 W / 1 L, 75%)", "+1.0", "Giant, Zap", "Mortar", "25%")
}

func TestPrintBattleAnalysis(t *testing.T) {
	var buf bytes.Buffer
	cov := analysis.CardRoles{AntiAir: true, Spell: false, WinCon: true}
	tl := []model.TimelinePoint{{Time: 2, Player: 2.71, Opponent: 5.71, Diff: -3}}
	PrintBattleAnalysis(&buf, cov, math.Inf(1), tl)
	assertContains(t, buf.String(), "MISSING", "∞", "2.71", "-3.00")
}

func TestPrintProgress_Deltas(t *testing.T) {
	var buf bytes.Buffer
	PrintProgress(&buf, []model.ProgressEntry{
		{Date: "2024-07-15", Trophies: 7000},
		{Date: "2024-07-16", Trophies: 7042, WinRate: 0.5},
	})
	assertContains(t, buf.String(), "7,042", "+42", "50%")
}

func TestPrintDigest(t *testing.T) {
	var buf bytes.Buffer
	PrintDigest(&buf, tracker.Digest{Date: "2024-07-16", Trophies: 7042, DeltaTrophies: -8, LeagueRank: 4, DeltaStep: 1, LuckyDrop: true})
	assertContains(t, buf.String(), "Daily digest 2024-07-16", "7,042 (-8)", "4 (+1)", "Lucky drop")
}

func TestPrintRuns(t *testing.T) {
	runs := []model.GCRun{
		{RunID: "old", CreatedAt: now.Add(-48 * time.Hour)},
		{RunID: "new", CreatedAt: now.Add(-time.Hour), Matches: []model.GCMatch{{Win: true}, {Win: false}}},
	}
	var buf bytes.Buffer
	PrintRuns(&buf, runs, now)
	out := buf.String()
	if strings.Index(out, "new") > strings.Index(out, "old") {
		t.Errorf("runs should be newest first:\n%s", out)
	}

	buf.Reset()
	PrintGCSummary(&buf, "r1", model.GCSummary{})
	assertContains(t, buf.String(), "0 wins / 0 games", "—")
}

func TestPrintUpgrades(t *testing.T) {
	var buf bytes.Buffer
	PrintUpgrades(&buf, []string{"Archers", "Knight"},
		map[string]int{"Archers": 9, "Knight": 10},
		map[string]int{"Archers": 1000, "Knight": 4000}, 6000)
	assertContains(t, buf.String(), "9 → 10", "5,000", "1,000")

	buf.Reset()
	PrintUpgrades(&buf, nil, nil, nil, 1500)
	assertContains(t, buf.String(), "Nothing affordable with 1,500 gold")
}

func TestPrintTags(t *testing.T) {
	var buf bytes.Buffer
	PrintTags(&buf, []storage.TagSummary{{Tag: "ABC", Battles: 1200, Latest: "20240716T120000.000Z"}}, now)
	assertContains(t, buf.String(), "#ABC", "1,200", "1 hour ago")
}

func TestPrintGoals(t *testing.T) {
	var buf bytes.Buffer
	PrintGoals(&buf, 6500, []string{"Arena 15"}, map[string]int{"Ultimate": 9000, "Legend": 7000})
	out := buf.String()
	assertContains(t, out, "[x] Arena 15", "[ ] Legend (500 to go)", "[ ] Ultimate (2,500 to go)")
	if strings.Index(out, "Legend") > strings.Index(out, "Ultimate") {
		t.Error("remaining goals should be ordered by target")
	}
}

func TestPrintVideos_Empty(t *testing.T) {
	var buf bytes.Buffer
	PrintVideos(&buf, nil)
	assertContains(t, buf.String(), "(no videos)")
}
