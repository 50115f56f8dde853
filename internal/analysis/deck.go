package analysis

import (
	"math"
	"strings"

	"github.com/pable/go-cr-metrics/internal/model"
)

// Deck rating tips.
const (
	TipTooHeavy = "Deck is too heavy: swap a high-cost card for a cheaper cycle card."
	TipTooLight = "Deck is too light: make sure it still has a reliable win condition."
)

const idealElixir = 3.5

// ComputeDeckRating rates a deck's elixir curve against the card catalog.
// Cards missing from the catalog are left out of the average.
func ComputeDeckRating(deck []string, catalog []model.CardCatalogEntry) model.DeckRating {
	costs := make(map[string]int, len(catalog))
	for _, c := range catalog {
		costs[normName(c.Name)] = c.ElixirCost
	}

	sum, count := 0, 0
	for _, name := range deck {
		cost, ok := costs[normName(name)]
		if !ok {
			continue
		}
		sum += cost
		count++
	}

	avg := 0.0
	if count > 0 {
		avg = float64(sum) / float64(count)
	}
	score := 100 - math.Abs(avg-idealElixir)*20
	score = math.Max(0, math.Min(100, score))

	tips := []string{}
	switch {
	case avg > 4.5:
		tips = append(tips, TipTooHeavy)
	case avg < 3:
		tips = append(tips, TipTooLight)
	}

	return model.DeckRating{
		AverageElixir: avg,
		Score:         score,
		Tips:          tips,
	}
}

// Playstyle is a coarse archetype label for a deck.
type Playstyle string

const (
	PlaystyleSiege    Playstyle = "Siege"
	PlaystyleCycle    Playstyle = "Cycle"
	PlaystyleControl  Playstyle = "Control"
	PlaystyleBeatdown Playstyle = "Beatdown"
	PlaystyleBait     Playstyle = "Bait"
)

// ClassifyPlaystyle tags a deck with an archetype. First match wins:
// Siege, Cycle, Control, Beatdown, then Bait.
//
// avgCost is the number of cards seen divided by deck size, not elixir.
// It is 1 for any non-empty deck, so the Cycle branch catches everything
// that is not Siege.
func (r Roles) ClassifyPlaystyle(deck []string) Playstyle {
	var spells, buildings, winCons, seen int
	for _, name := range deck {
		n := normName(name)
		if r.IsSpell(n) {
			spells++
		}
		if strings.Contains(n, "building") {
			buildings++
		}
		if r.IsWinCon(n) {
			winCons++
		}
		seen++
	}
	avgCost := 0.0
	if len(deck) > 0 {
		avgCost = float64(seen) / float64(len(deck))
	}

	switch {
	case buildings >= 1 && winCons <= 1:
		return PlaystyleSiege
	case avgCost <= 3.0:
		return PlaystyleCycle
	case spells >= 3:
		return PlaystyleControl
	case avgCost >= 4.0:
		return PlaystyleBeatdown
	default:
		return PlaystyleBait
	}
}

const handSize = 4

// CardCycleTrainer replays plays against a rotating deck and returns the
// hand (first four cards of the rotation) held before each play. A played
// card found in the rotation goes to the back; unknown cards leave the
// rotation untouched.
func CardCycleTrainer(deck, plays []string) [][]string {
	rotation := append([]string(nil), deck...)
	hands := make([][]string, 0, len(plays))
	for _, play := range plays {
		n := min(handSize, len(rotation))
		hands = append(hands, append([]string(nil), rotation[:n]...))

		idx := -1
		for i, c := range rotation {
			if strings.EqualFold(c, play) {
				idx = i
				break
			}
		}
		if idx < 0 {
			continue
		}
		card := rotation[idx]
		rotation = append(rotation[:idx], rotation[idx+1:]...)
		rotation = append(rotation, card)
	}
	return hands
}
