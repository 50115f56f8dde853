package analysis

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/pable/go-cr-metrics/internal/model"
)

func catalog(entries map[string]int) []model.CardCatalogEntry {
	out := make([]model.CardCatalogEntry, 0, len(entries))
	for name, cost := range entries {
		out = append(out, model.CardCatalogEntry{Name: name, ElixirCost: cost})
	}
	return out
}

func TestComputeDeckRating_Ideal(t *testing.T) {
	cat := catalog(map[string]int{"A": 3, "B": 4})
	r := ComputeDeckRating([]string{"A", "B"}, cat)
	if r.AverageElixir != 3.5 {
		t.Errorf("average: want 3.5, got %f", r.AverageElixir)
	}
	if r.Score != 100 {
		t.Errorf("score: want 100, got %f", r.Score)
	}
	if r.Tips == nil || len(r.Tips) != 0 {
		t.Errorf("tips: want empty non-nil slice, got %#v", r.Tips)
	}
}

func TestComputeDeckRating_Heavy(t *testing.T) {
	cat := catalog(map[string]int{"Golem": 8, "Pekka": 7, "Zap": 2})
	r := ComputeDeckRating([]string{"golem", "pekka", "zap", "Unknown"}, cat)
	// (8+7+2)/3, unknown card skipped
	want := 17.0 / 3
	if r.AverageElixir != want {
		t.Errorf("average: want %f, got %f", want, r.AverageElixir)
	}
	if len(r.Tips) != 1 || r.Tips[0] != TipTooHeavy {
		t.Errorf("tips: want [TipTooHeavy], got %v", r.Tips)
	}
	if r.Score < 0 || r.Score > 100 {
		t.Errorf("score %f out of range", r.Score)
	}
}

func TestComputeDeckRating_LightAndEmpty(t *testing.T) {
	r := ComputeDeckRating(nil, nil)
	if r.AverageElixir != 0 || r.Score != 30 {
		t.Errorf("empty deck: want avg 0 score 30, got %f / %f", r.AverageElixir, r.Score)
	}
	if len(r.Tips) != 1 || r.Tips[0] != TipTooLight {
		t.Errorf("empty deck tips: %v", r.Tips)
	}
}

func TestComputeDeckRating_ScoreClampedAtZero(t *testing.T) {
	cat := catalog(map[string]int{"Mirror": 9})
	r := ComputeDeckRating([]string{"Mirror"}, cat)
	if r.Score != 0 {
		t.Errorf("want score clamped to 0, got %f", r.Score)
	}
}

func TestClassifyPlaystyle(t *testing.T) {
	roles := DefaultRoles()
	cases := []struct {
		deck []string
		want Playstyle
	}{
		{[]string{"X-Bow", "Tesla Building", "Archers", "The Log"}, PlaystyleSiege},
		{[]string{"Hog Rider", "Fireball", "Zap", "The Log"}, PlaystyleCycle},
		{nil, PlaystyleCycle},
	}
	for _, c := range cases {
		if got := roles.ClassifyPlaystyle(c.deck); got != c.want {
			t.Errorf("ClassifyPlaystyle(%v): want %s, got %s", c.deck, c.want, got)
		}
	}
}

func TestCardCycleTrainer(t *testing.T) {
	deck := []string{"A", "B", "C", "D", "E", "F", "G", "H"}
	hands := CardCycleTrainer(deck, []string{"A", "B"})
	want := [][]string{
		{"A", "B", "C", "D"},
		{"B", "C", "D", "E"},
	}
	if !reflect.DeepEqual(hands, want) {
		t.Errorf("hands: want %v, got %v", want, hands)
	}
	if deck[0] != "A" {
		t.Error("input deck was mutated")
	}
}

// TestCardCycleTrainer_UnknownPlay: a card outside the deck leaves the rotation alone.
func TestCardCycleTrainer_UnknownPlay(t *testing.T) {
	deck := []string{"A", "B", "C", "D", "E"}
	hands := CardCycleTrainer(deck, []string{"Z", "a", "Q"})
	want := [][]string{
		{"A", "B", "C", "D"},
		{"A", "B", "C", "D"},
		{"B", "C", "D", "E"},
	}
	if !reflect.DeepEqual(hands, want) {
		t.Errorf("hands: want %v, got %v", want, hands)
	}
}

func TestCardCycleTrainer_ShortDeck(t *testing.T) {
	hands := CardCycleTrainer([]string{"A", "B"}, []string{"A"})
	if len(hands) != 1 || len(hands[0]) != 2 {
		t.Errorf("short deck: want one hand of 2, got %v", hands)
	}
}

func TestLoadRoles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roles.yaml")
	body := "spell:\n  - Snowball\nwin_condition:\n  - Sparky\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write roles: %v", err)
	}
	roles, err := LoadRoles(path)
	if err != nil {
		t.Fatalf("LoadRoles: %v", err)
	}
	if !roles.IsSpell("snowball") || roles.IsSpell("fireball") {
		t.Error("spell list not replaced by file contents")
	}
	if !roles.IsWinCon("SPARKY") {
		t.Error("win condition lookup should be case-insensitive")
	}
	if !roles.IsAntiAir("musketeer") {
		t.Error("anti-air list omitted from file should keep defaults")
	}
}

func TestLoadRoles_Missing(t *testing.T) {
	if _, err := LoadRoles(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestComputeDeckRating_Example(t *testing.T) {
	cat := catalog(map[string]int{"Knight": 3, "Archers": 3, "Fireball": 4, "Hog Rider": 4})
	r := ComputeDeckRating([]string{"Knight", "Archers", " fireball ", "Hog Rider"}, cat)
	if r.AverageElixir != 3.5 {
		t.Errorf("average: want 3.5, got %f", r.AverageElixir)
	}
	if r.Score < 0 || r.Score > 100 {
		t.Errorf("score %f out of range", r.Score)
	}
}
