// Package optimizer searches for deck swaps and card upgrades. All functions
// are pure over their inputs; randomness is injected.
package optimizer

import (
	"math/rand/v2"
	"sort"
	"strings"

	"github.com/pable/go-cr-metrics/internal/analysis"
	"github.com/pable/go-cr-metrics/internal/model"
)

// ScoredDeck is a candidate deck and its fitness.
type ScoredDeck struct {
	Deck  []string `json:"deck"`
	Score float64  `json:"score"`
}

// Fitness scores a deck. Higher is better.
type Fitness func(deck []string) float64

// Options tunes SmartSwap. Zero values fall back to the defaults.
type Options struct {
	Generations int
	Population  int
	Rand        *rand.Rand
}

const (
	defaultGenerations = 10
	defaultPopulation  = 6
	keep               = 3
)

func (o Options) withDefaults() Options {
	if o.Generations <= 0 {
		o.Generations = defaultGenerations
	}
	if o.Population <= 0 {
		o.Population = defaultPopulation
	}
	if o.Rand == nil {
		o.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return o
}

// SmartSwap runs a small genetic search from deck using cards drawn from
// pool. Every generation each surviving candidate spawns Population
// mutants (one random slot replaced, a second slot with probability 0.5);
// the three best mutants seed the next generation. The result holds the
// three best decks seen, the original included, best first.
func SmartSwap(deck, pool []string, fitness Fitness, opts Options) []ScoredDeck {
	opts = opts.withDefaults()
	original := append([]string(nil), deck...)
	best := []ScoredDeck{{Deck: original, Score: fitness(original)}}
	if len(deck) == 0 || len(pool) == 0 {
		return best
	}

	r := opts.Rand
	current := [][]string{original}
	for g := 0; g < opts.Generations; g++ {
		scored := make([]ScoredDeck, 0, len(current)*opts.Population)
		for _, d := range current {
			for p := 0; p < opts.Population; p++ {
				mutant := append([]string(nil), d...)
				mutant[r.IntN(len(mutant))] = pool[r.IntN(len(pool))]
				if r.Float64() < 0.5 {
					mutant[r.IntN(len(mutant))] = pool[r.IntN(len(pool))]
				}
				scored = append(scored, ScoredDeck{Deck: mutant, Score: fitness(mutant)})
			}
		}
		sortByScore(scored)
		best = append(best, scored[0])

		current = current[:0]
		for _, s := range scored[:min(keep, len(scored))] {
			current = append(current, s.Deck)
		}
	}

	sortByScore(best)
	return best[:min(keep, len(best))]
}

func sortByScore(s []ScoredDeck) {
	sort.SliceStable(s, func(i, j int) bool { return s[i].Score > s[j].Score })
}

// upgrade is a candidate card for UpgradeOptimizer.
type upgrade struct {
	card string
	roi  float64
	cost int
}

// UpgradeOptimizer ranks cards by (level+1)/cost and picks greedily in that
// order while the remaining gold covers each card. Cards that do not fit
// are skipped and cheaper ones further down may still be picked. Cards
// with a missing or non-positive cost are excluded.
func UpgradeOptimizer(levels, costs map[string]int, gold int) []string {
	cands := make([]upgrade, 0, len(levels))
	for card, level := range levels {
		cost, ok := costs[card]
		if !ok || cost <= 0 {
			continue
		}
		cands = append(cands, upgrade{card: card, roi: float64(level+1) / float64(cost), cost: cost})
	}
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].roi != cands[j].roi {
			return cands[i].roi > cands[j].roi
		}
		return cands[i].card < cands[j].card
	})

	var picks []string
	remaining := gold
	for _, c := range cands {
		if c.cost > remaining {
			continue
		}
		remaining -= c.cost
		picks = append(picks, c.card)
	}
	return picks
}

// ROI returns the upgrade value used by UpgradeOptimizer, or 0 when the
// card has no usable cost.
func ROI(levels, costs map[string]int, card string) float64 {
	cost := costs[card]
	if cost <= 0 {
		return 0
	}
	return float64(levels[card]+1) / float64(cost)
}

const (
	roleBonus        = 10.0
	duplicatePenalty = 50.0
)

// DeckFitness returns the stock fitness used by the CLI: the deck rating
// score, plus a bonus for each card role the deck covers, minus a penalty
// for every repeated card.
func DeckFitness(catalog []model.CardCatalogEntry, roles analysis.Roles) Fitness {
	return func(deck []string) float64 {
		score := analysis.ComputeDeckRating(deck, catalog).Score

		var covered analysis.CardRoles
		seen := make(map[string]struct{}, len(deck))
		for _, c := range deck {
			key := strings.ToLower(strings.TrimSpace(c))
			if _, dup := seen[key]; dup {
				score -= duplicatePenalty
			}
			seen[key] = struct{}{}
			cr := roles.ClassifyCard(c)
			covered.AntiAir = covered.AntiAir || cr.AntiAir
			covered.Spell = covered.Spell || cr.Spell
			covered.WinCon = covered.WinCon || cr.WinCon
		}
		for _, ok := range []bool{covered.AntiAir, covered.Spell, covered.WinCon} {
			if ok {
				score += roleBonus
			}
		}
		return score
	}
}
