package aggregator

import (
	"sort"
	"strings"

	"github.com/pable/go-cr-metrics/internal/model"
)

// MinMatchupSample is the number of sightings an opponent card needs before
// it is ranked as a nemesis.
const MinMatchupSample = 3

// Summary aggregates a player's battles across many fetched logs.
type Summary struct {
	Battles     int `json:"battles"`
	Wins        int `json:"wins"`
	Losses      int `json:"losses"`
	ThreeCrowns int `json:"three_crowns"`
	// MedianCrownDiff is the median of own crowns minus opponent crowns.
	MedianCrownDiff float64       `json:"median_crown_diff"`
	FirstBattle     string        `json:"first_battle,omitempty"`
	LastBattle      string        `json:"last_battle,omitempty"`
	ByType          []TypeStats   `json:"by_type"`
	ByDeck          []DeckStats   `json:"by_deck"`
	Nemesis         []CardMatchup `json:"nemesis"`
}

// WinRate returns wins over battles, or 0 for an empty summary.
func (s *Summary) WinRate() float64 {
	if s.Battles == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.Battles)
}

type TypeStats struct {
	Type   string `json:"type"`
	Wins   int    `json:"wins"`
	Losses int    `json:"losses"`
}

// DeckStats is the record of one eight-card deck, keyed by its sorted card list.
type DeckStats struct {
	Cards  []string `json:"cards"`
	Wins   int      `json:"wins"`
	Losses int      `json:"losses"`
}

func (d *DeckStats) WinRate() float64 {
	total := d.Wins + d.Losses
	if total == 0 {
		return 0
	}
	return float64(d.Wins) / float64(total)
}

// CardMatchup counts how often an opponent card was faced and lost to.
type CardMatchup struct {
	Card   string `json:"card"`
	Seen   int    `json:"seen"`
	Losses int    `json:"losses"`
}

func (c *CardMatchup) LossRate() float64 {
	if c.Seen == 0 {
		return 0
	}
	return float64(c.Losses) / float64(c.Seen)
}

// Aggregate folds battles into a Summary. Battles missing either side are
// skipped. Decks are ordered by games played, nemesis cards by loss rate
// (at least MinMatchupSample sightings) and then by name.
func Aggregate(battles []model.BattleRecord) Summary {
	var s Summary
	byType := make(map[string]*TypeStats)
	byDeck := make(map[string]*DeckStats)
	byCard := make(map[string]*CardMatchup)
	var diffs []float64

	for i := range battles {
		b := &battles[i]
		team, opp, ok := b.Sides()
		if !ok {
			continue
		}
		won := b.Won()
		s.Battles++
		if won {
			s.Wins++
		} else {
			s.Losses++
		}
		if team.Crowns == 3 {
			s.ThreeCrowns++
		}
		diffs = append(diffs, float64(team.Crowns-opp.Crowns))

		// battleTime sorts lexically in its fixed layout.
		if s.FirstBattle == "" || b.BattleTime < s.FirstBattle {
			s.FirstBattle = b.BattleTime
		}
		if b.BattleTime > s.LastBattle {
			s.LastBattle = b.BattleTime
		}

		ts := byType[b.Type]
		if ts == nil {
			ts = &TypeStats{Type: b.Type}
			byType[b.Type] = ts
		}
		tally(&ts.Wins, &ts.Losses, won)

		cards := team.CardNames()
		if len(cards) > 0 {
			sort.Strings(cards)
			key := strings.Join(cards, "|")
			ds := byDeck[key]
			if ds == nil {
				ds = &DeckStats{Cards: cards}
				byDeck[key] = ds
			}
			tally(&ds.Wins, &ds.Losses, won)
		}

		seen := make(map[string]bool)
		for _, c := range opp.CardNames() {
			if seen[c] {
				continue
			}
			seen[c] = true
			cm := byCard[c]
			if cm == nil {
				cm = &CardMatchup{Card: c}
				byCard[c] = cm
			}
			cm.Seen++
			if !won {
				cm.Losses++
			}
		}
	}

	sort.Float64s(diffs)
	s.MedianCrownDiff = median(diffs)

	for _, ts := range byType {
		s.ByType = append(s.ByType, *ts)
	}
	sort.Slice(s.ByType, func(i, j int) bool { return s.ByType[i].Type < s.ByType[j].Type })

	for _, ds := range byDeck {
		s.ByDeck = append(s.ByDeck, *ds)
	}
	sort.Slice(s.ByDeck, func(i, j int) bool {
		ni := s.ByDeck[i].Wins + s.ByDeck[i].Losses
		nj := s.ByDeck[j].Wins + s.ByDeck[j].Losses
		if ni != nj {
			return ni > nj
		}
		return strings.Join(s.ByDeck[i].Cards, "|") < strings.Join(s.ByDeck[j].Cards, "|")
	})

	for _, cm := range byCard {
		if cm.Seen >= MinMatchupSample {
			s.Nemesis = append(s.Nemesis, *cm)
		}
	}
	sort.Slice(s.Nemesis, func(i, j int) bool {
		li, lj := s.Nemesis[i].LossRate(), s.Nemesis[j].LossRate()
		if li != lj {
			return li > lj
		}
		return s.Nemesis[i].Card < s.Nemesis[j].Card
	})
	return s
}

func tally(wins, losses *int, won bool) {
	if won {
		*wins++
	} else {
		*losses++
	}
}

// median returns the median of a pre-sorted (ascending) slice of float64.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
