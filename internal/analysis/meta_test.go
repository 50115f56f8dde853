package analysis

import (
	"reflect"
	"testing"

	"github.com/pable/go-cr-metrics/internal/model"
)

func TestMetaPulse(t *testing.T) {
	decks := []model.TopDeck{
		{Name: "Hog 2.6", Usage: 0.08},
		{Name: "Log Bait", Usage: 0.03},
		{Name: "Golem", Usage: 0.05},
	}
	got := MetaPulse(decks, 0.05)
	if len(got) != 2 || got[0].Name != "Hog 2.6" || got[1].Name != "Golem" {
		t.Errorf("MetaPulse: got %+v", got)
	}
}

func TestQuartileBenchmarks(t *testing.T) {
	var players []model.RankedPlayer
	for i := 1; i <= 8; i++ {
		players = append(players, model.RankedPlayer{RankPoints: float64(i * 100), WinRate: float64(i) / 10})
	}
	got := QuartileBenchmarks(players)
	if len(got) != 4 {
		t.Fatalf("want 4 quartiles, got %d", len(got))
	}
	// Top quartile holds rank points 800 and 700.
	if got[0].Quartile != 1 || !approx(got[0].AvgWinRate, 0.75) {
		t.Errorf("Q1: got %+v", got[0])
	}
	if !approx(got[3].AvgWinRate, 0.15) {
		t.Errorf("Q4: got %+v", got[3])
	}
}

func TestQuartileBenchmarks_Small(t *testing.T) {
	got := QuartileBenchmarks([]model.RankedPlayer{{RankPoints: 1, WinRate: 0.4}})
	if len(got) != 1 || got[0].Quartile != 4 {
		t.Errorf("single player lands in the last quartile, got %+v", got)
	}
	if QuartileBenchmarks(nil) != nil {
		t.Error("empty input should return nil")
	}
}

func TestFilterProChannels(t *testing.T) {
	videos := []model.Video{
		{Title: "a", ChannelID: "UCa-Y5sBjOlbwL6GzGkN6IBw"},
		{Title: "b", ChannelID: "UCrandom"},
	}
	got := FilterProChannels(videos, []string{"UCa-Y5sBjOlbwL6GzGkN6IBw"})
	if len(got) != 1 || got[0].Title != "a" {
		t.Errorf("filtered: got %+v", got)
	}
	if len(FilterProChannels(videos, nil)) != 2 {
		t.Error("no channels should keep every video")
	}
}

func TestCardTierList(t *testing.T) {
	stats := []model.MergeCardStat{
		{Name: "Knight", Wins: 5, Battles: 10, Turns: 5},
		{Name: "Archer", Wins: 8, Battles: 10, Turns: 2},
		{Name: "Ghost", Wins: 0, Battles: 0, Turns: 0},
	}
	got := CardTierList(stats)
	var names []string
	for _, c := range got {
		names = append(names, c.Card)
	}
	if !reflect.DeepEqual(names, []string{"Archer", "Knight", "Ghost"}) {
		t.Errorf("order: got %v", names)
	}
	if !approx(got[0].Efficiency, 0.4) {
		t.Errorf("Archer efficiency: want 0.4, got %f", got[0].Efficiency)
	}
}

func TestDeckOverlap(t *testing.T) {
	a := []string{"A", "B", "C", "D", "E", "F", "G", "H"}
	b := []string{"h", "g", "f", "e", "d", "c", "x", "y"}
	if got := DeckOverlap(a, b); got != 0.75 {
		t.Errorf("overlap: want 0.75, got %f", got)
	}
	if DeckOverlap(a, nil) != 0 {
		t.Error("empty b should give 0")
	}
}

func approx(a, b float64) bool {
	d := a - b
	return d < 1e-9 && d > -1e-9
}
