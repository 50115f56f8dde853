package analysis

import (
	"sort"
	"strings"

	"github.com/pable/go-cr-metrics/internal/model"
)

// ---- Meta trends ----

// MetaPulse returns the decks whose usage share is at least threshold,
// preserving input order.
func MetaPulse(decks []model.TopDeck, threshold float64) []model.TopDeck {
	var out []model.TopDeck
	for _, d := range decks {
		if d.Usage >= threshold {
			out = append(out, d)
		}
	}
	return out
}

// QuartileBenchmark is the mean win rate of one rank-points quartile.
type QuartileBenchmark struct {
	Quartile   int     `json:"quartile"`
	AvgWinRate float64 `json:"avg_win_rate"`
}

// QuartileBenchmarks ranks players by rank points (highest first), splits
// them into four groups, and averages each group's win rate. The last
// quartile absorbs any remainder; empty groups are omitted.
func QuartileBenchmarks(players []model.RankedPlayer) []QuartileBenchmark {
	items := append([]model.RankedPlayer(nil), players...)
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].RankPoints > items[j].RankPoints
	})
	n := len(items)
	if n == 0 {
		return nil
	}

	var out []QuartileBenchmark
	for q := 0; q < 4; q++ {
		start := q * n / 4
		end := (q + 1) * n / 4
		if q == 3 {
			end = n
		}
		subset := items[start:end]
		if len(subset) == 0 {
			continue
		}
		var sum float64
		for _, p := range subset {
			sum += p.WinRate
		}
		out = append(out, QuartileBenchmark{
			Quartile:   q + 1,
			AvgWinRate: sum / float64(len(subset)),
		})
	}
	return out
}

// FilterProChannels keeps videos whose channel id contains one of
// channels. An empty channel list keeps everything.
func FilterProChannels(videos []model.Video, channels []string) []model.Video {
	if len(channels) == 0 {
		return videos
	}
	var out []model.Video
	for _, v := range videos {
		for _, c := range channels {
			if strings.Contains(v.ChannelID, c) {
				out = append(out, v)
				break
			}
		}
	}
	return out
}

// MatchupQuery builds the video search query for a deck-vs-deck matchup.
func MatchupQuery(deckA, deckB string) string {
	return deckA + " vs " + deckB + " Clash Royale"
}

// ---- Merge Tactics ----

// CardTier is a Merge Tactics card graded by win rate per turn.
type CardTier struct {
	Card       string  `json:"card"`
	Efficiency float64 `json:"eff"`
}

// CardTierList grades cards by win rate divided by turns on board, best
// first. Missing battle or turn counts are treated as 1.
func CardTierList(stats []model.MergeCardStat) []CardTier {
	out := make([]CardTier, 0, len(stats))
	for _, s := range stats {
		turns := s.Turns
		if turns <= 0 {
			turns = 1
		}
		battles := max(1, s.Battles)
		wr := float64(s.Wins) / float64(battles)
		out = append(out, CardTier{Card: s.Name, Efficiency: wr / float64(turns)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Efficiency > out[j].Efficiency
	})
	return out
}

// ---- Deck change detection ----

// DeckOverlap returns the fraction of an eight-card deck shared by a and
// b, ignoring order and case.
func DeckOverlap(a, b []string) float64 {
	if len(b) == 0 {
		return 0
	}
	inB := make(map[string]struct{}, len(b))
	for _, c := range b {
		inB[normName(c)] = struct{}{}
	}
	shared := make(map[string]struct{})
	for _, c := range a {
		if _, ok := inB[normName(c)]; ok {
			shared[normName(c)] = struct{}{}
		}
	}
	return float64(len(shared)) / 8
}
