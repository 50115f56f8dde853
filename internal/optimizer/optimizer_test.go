package optimizer

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/pable/go-cr-metrics/internal/analysis"
	"github.com/pable/go-cr-metrics/internal/model"
)

func seeded() *rand.Rand { return rand.New(rand.NewPCG(1, 2)) }

// countFitness scores a deck by how many "X" cards it holds.
func countFitness(deck []string) float64 {
	n := 0
	for _, c := range deck {
		if c == "X" {
			n++
		}
	}
	return float64(n)
}

func TestSmartSwap_TopThreeSorted(t *testing.T) {
	deck := []string{"A", "B", "C", "D", "E", "F", "G", "H"}
	got := SmartSwap(deck, []string{"X", "Y"}, countFitness, Options{Rand: seeded()})
	if len(got) != 3 {
		t.Fatalf("want 3 results, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].Score < got[i].Score {
			t.Errorf("results not sorted descending: %v", got)
		}
	}
	if got[0].Score < 1 {
		t.Errorf("expected search to find at least one X, best score %f", got[0].Score)
	}
	if deck[0] != "A" {
		t.Error("input deck was mutated")
	}
}

// TestSmartSwap_KeepsOriginal: an unbeatable original deck stays on top.
func TestSmartSwap_KeepsOriginal(t *testing.T) {
	deck := []string{"A", "B"}
	fitness := func(d []string) float64 {
		if slices.Equal(d, deck) {
			return 100
		}
		return 0
	}
	got := SmartSwap(deck, []string{"Z"}, fitness, Options{Generations: 3, Population: 2, Rand: seeded()})
	if !slices.Equal(got[0].Deck, deck) || got[0].Score != 100 {
		t.Errorf("want original on top, got %+v", got[0])
	}
}

func TestSmartSwap_EmptyPool(t *testing.T) {
	got := SmartSwap([]string{"A"}, nil, countFitness, Options{Rand: seeded()})
	if len(got) != 1 || got[0].Deck[0] != "A" {
		t.Errorf("empty pool: want original only, got %+v", got)
	}
}

func TestSmartSwap_Deterministic(t *testing.T) {
	deck := []string{"A", "B", "C", "D"}
	pool := []string{"X", "Y", "Z"}
	a := SmartSwap(deck, pool, countFitness, Options{Rand: seeded()})
	b := SmartSwap(deck, pool, countFitness, Options{Rand: seeded()})
	for i := range a {
		if !slices.Equal(a[i].Deck, b[i].Deck) || a[i].Score != b[i].Score {
			t.Fatalf("same seed gave different results: %v vs %v", a, b)
		}
	}
}

func TestUpgradeOptimizer(t *testing.T) {
	levels := map[string]int{"Knight": 12, "Archers": 11}
	costs := map[string]int{"Knight": 20000, "Archers": 5000}
	picks := UpgradeOptimizer(levels, costs, 20000)
	if !slices.Contains(picks, "Archers") {
		t.Errorf("want Archers picked, got %v", picks)
	}
	if picks[0] != "Archers" {
		t.Errorf("Archers has the higher ROI and should be first, got %v", picks)
	}
	for i := 1; i < len(picks); i++ {
		if ROI(levels, costs, picks[i-1]) < ROI(levels, costs, picks[i]) {
			t.Errorf("picks not in descending ROI order: %v", picks)
		}
	}
}

// TestUpgradeOptimizer_SkipsUnaffordable: a card over budget does not stop cheaper picks.
func TestUpgradeOptimizer_SkipsUnaffordable(t *testing.T) {
	levels := map[string]int{"A": 9, "B": 0, "C": 1}
	costs := map[string]int{"A": 1000, "B": 5000, "C": 100}
	picks := UpgradeOptimizer(levels, costs, 1100)
	// ROI: A 0.01, C 0.02, B 0.0002
	want := []string{"C", "A"}
	if !slices.Equal(picks, want) {
		t.Errorf("want %v, got %v", want, picks)
	}
}

func TestUpgradeOptimizer_ExcludesBadCost(t *testing.T) {
	levels := map[string]int{"Free": 5, "Missing": 5, "Ok": 1}
	costs := map[string]int{"Free": 0, "Ok": 10}
	picks := UpgradeOptimizer(levels, costs, 100)
	if !slices.Equal(picks, []string{"Ok"}) {
		t.Errorf("want [Ok], got %v", picks)
	}
}

func TestDeckFitness(t *testing.T) {
	catalog := []model.CardCatalogEntry{
		{Name: "Knight", ElixirCost: 3},
		{Name: "Archers", ElixirCost: 3},
		{Name: "Fireball", ElixirCost: 4},
		{Name: "Hog Rider", ElixirCost: 4},
	}
	fit := DeckFitness(catalog, analysis.DefaultRoles())
	full := fit([]string{"Knight", "Archers", "Fireball", "Hog Rider"})
	if full != 130 {
		t.Errorf("full coverage at 3.5 elixir: want 130, got %f", full)
	}
	dup := fit([]string{"Knight", "Knight", "Fireball", "Hog Rider"})
	if dup >= full {
		t.Errorf("duplicate deck should score lower: %f >= %f", dup, full)
	}
}
