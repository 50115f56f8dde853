package report

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/pable/go-cr-metrics/internal/aggregator"
	"github.com/pable/go-cr-metrics/internal/analysis"
	"github.com/pable/go-cr-metrics/internal/model"
	"github.com/pable/go-cr-metrics/internal/optimizer"
	"github.com/pable/go-cr-metrics/internal/storage"
	"github.com/pable/go-cr-metrics/internal/tracker"
)

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))
}

func pct(v float64) string { return fmt.Sprintf("%.0f%%", v*100) }

func signed(v int) string {
	if v > 0 {
		return "+" + strconv.Itoa(v)
	}
	return strconv.Itoa(v)
}

// ratio formats a ratio that may be +Inf.
func ratio(v float64) string {
	if math.IsInf(v, 1) {
		return "∞"
	}
	return fmt.Sprintf("%.2f", v)
}

func check(ok bool) string {
	if ok {
		return "yes"
	}
	return "MISSING"
}

// PrintPlayerHeader prints a one-line summary header for the player.
func PrintPlayerHeader(w io.Writer, p model.Player, winRate float64) {
	fmt.Fprintf(w, "\nPlayer: %s (%s)  |  Trophies: %s  |  League: %d  |  Win rate: %s\n\n",
		p.Name, p.Tag, humanize.Comma(int64(p.Trophies)), p.LeagueRank, pct(winRate))
}

// PrintBattleTable prints the battle log, newest first as given. Battle
// times are shown relative to now.
func PrintBattleTable(w io.Writer, battles []model.BattleRecord, now time.Time) {
	table := newTable(w)
	table.Header("WHEN", "TYPE", "RESULT", "CROWNS", "OPPONENT")
	for i := range battles {
		b := &battles[i]
		team, opp, ok := b.Sides()
		if !ok {
			continue
		}
		when := b.BattleTime
		if ts, err := analysis.ParseBattleTime(b.BattleTime); err == nil {
			when = humanize.RelTime(ts, now, "ago", "from now")
		}
		result := "L"
		if b.Won() {
			result = "W"
		}
		table.Append(
			when,
			b.Type,
			result,
			fmt.Sprintf("%d-%d", team.Crowns, opp.Crowns),
			opp.Name,
		)
	}
	table.Render()
}

// PrintSummary prints the cross-battle aggregate: totals, per-type and
// per-deck records, and the opponent cards lost to most often.
func PrintSummary(w io.Writer, s aggregator.Summary) {
	fmt.Fprintf(w, "\n  Battles      : %d (%d W / %d L, %s)\n", s.Battles, s.Wins, s.Losses, pct(s.WinRate()))
	fmt.Fprintf(w, "  Three crowns : %d\n", s.ThreeCrowns)
	fmt.Fprintf(w, "  Crown margin : %+.1f (median)\n", s.MedianCrownDiff)
	if s.FirstBattle != "" {
		fmt.Fprintf(w, "  Span         : %s → %s\n", s.FirstBattle, s.LastBattle)
	}

	if len(s.ByType) > 0 {
		fmt.Fprintf(w, "\n--- By mode ---\n\n")
		table := newTable(w)
		table.Header("TYPE", "W", "L", "WIN%")
		for _, ts := range s.ByType {
			total := ts.Wins + ts.Losses
			table.Append(ts.Type, strconv.Itoa(ts.Wins), strconv.Itoa(ts.Losses),
				pct(float64(ts.Wins)/float64(max(1, total))))
		}
		table.Render()
	}

	if len(s.ByDeck) > 0 {
		fmt.Fprintf(w, "\n--- By deck ---\n\n")
		table := newTable(w)
		table.Header("DECK", "GAMES", "WIN%")
		for _, d := range s.ByDeck {
			table.Append(strings.Join(d.Cards, ", "), strconv.Itoa(d.Wins+d.Losses), pct(d.WinRate()))
		}
		table.Render()
	}

	if len(s.Nemesis) > 0 {
		fmt.Fprintf(w, "\n--- Toughest opponent cards (seen ≥ %d) ---\n\n", aggregator.MinMatchupSample)
		table := newTable(w)
		table.Header("CARD", "SEEN", "LOSSES", "LOSS%")
		for _, c := range s.Nemesis {
			table.Append(c.Card, strconv.Itoa(c.Seen), strconv.Itoa(c.Losses), pct(c.LossRate()))
		}
		table.Render()
	}
}

// PrintDeckRating prints the elixir rating and playstyle of a deck.
func PrintDeckRating(w io.Writer, deck []string, r model.DeckRating, style analysis.Playstyle) {
	fmt.Fprintf(w, "\nDeck     : %s\n", strings.Join(deck, ", "))
	fmt.Fprintf(w, "Avg cost : %.2f\n", r.AverageElixir)
	fmt.Fprintf(w, "Score    : %.0f/100\n", r.Score)
	fmt.Fprintf(w, "Style    : %s\n", style)
	for _, tip := range r.Tips {
		fmt.Fprintf(w, "Tip      : %s\n", tip)
	}
}

// PrintCycle prints the hand held before each play of a cycle drill.
func PrintCycle(w io.Writer, plays []string, hands [][]string) {
	table := newTable(w)
	table.Header("#", "PLAYED", "HAND BEFORE")
	for i, hand := range hands {
		played := "—"
		if i < len(plays) {
			played = plays[i]
		}
		table.Append(strconv.Itoa(i+1), played, strings.Join(hand, ", "))
	}
	table.Render()
}

// PrintBattleAnalysis prints role coverage, the aggro ratio and the elixir
// difference timeline of one recorded battle.
func PrintBattleAnalysis(w io.Writer, cov analysis.CardRoles, aggro float64, timeline []model.TimelinePoint) {
	fmt.Fprintf(w, "\nAnti-air in every cycle : %s\n", check(cov.AntiAir))
	fmt.Fprintf(w, "Spell in every cycle    : %s\n", check(cov.Spell))
	fmt.Fprintf(w, "Win con in every cycle  : %s\n", check(cov.WinCon))
	fmt.Fprintf(w, "Aggro ratio             : %s\n\n", ratio(aggro))

	if len(timeline) == 0 {
		return
	}
	table := newTable(w)
	table.Header("T(s)", "PLAYER", "OPPONENT", "DIFF")
	for _, p := range timeline {
		table.Append(
			fmt.Sprintf("%.1f", p.Time),
			fmt.Sprintf("%.2f", p.Player),
			fmt.Sprintf("%.2f", p.Opponent),
			fmt.Sprintf("%+.2f", p.Diff),
		)
	}
	table.Render()
}

// PrintProgress prints the daily progress history with day-over-day trophy deltas.
func PrintProgress(w io.Writer, entries []model.ProgressEntry) {
	table := newTable(w)
	table.Header("DATE", "TROPHIES", "Δ", "LEAGUE", "WIN%")
	for i, e := range entries {
		delta := "—"
		if i > 0 {
			delta = signed(e.Trophies - entries[i-1].Trophies)
		}
		table.Append(e.Date, humanize.Comma(int64(e.Trophies)), delta, strconv.Itoa(e.LeagueRank), pct(e.WinRate))
	}
	table.Render()
}

// PrintEventStats prints per-event records.
func PrintEventStats(w io.Writer, entries []model.EventStatEntry) {
	table := newTable(w)
	table.Header("EVENT", "W", "L", "WIN%", "LAST PLAYED", "DECK")
	for i := range entries {
		e := &entries[i]
		table.Append(e.EventID, strconv.Itoa(e.Wins), strconv.Itoa(e.Losses), pct(e.WR()),
			e.Date, strings.Join(e.Deck, ", "))
	}
	table.Render()
}

// PrintDailyWR prints per-day event win rates.
func PrintDailyWR(w io.Writer, rates []model.DailyWinRate) {
	table := newTable(w)
	table.Header("DATE", "WIN%")
	for _, r := range rates {
		table.Append(r.Date, pct(r.WinRate))
	}
	table.Render()
}

// PrintDigest prints the daily digest block.
func PrintDigest(w io.Writer, d tracker.Digest) {
	fmt.Fprintf(w, "\n=== Daily digest %s ===\n\n", d.Date)
	fmt.Fprintf(w, "  Trophies    : %s (%s)\n", humanize.Comma(int64(d.Trophies)), signed(d.DeltaTrophies))
	fmt.Fprintf(w, "  League step : %d (%s)\n", d.LeagueRank, signed(d.DeltaStep))
	fmt.Fprintf(w, "  24h win rate: %s\n", pct(d.WinRate))
	if d.LuckyDrop {
		fmt.Fprintf(w, "  Lucky drop  : yes\n")
	}
}

// PrintRuns lists Grand Challenge runs, newest first.
func PrintRuns(w io.Writer, runs []model.GCRun, now time.Time) {
	sorted := append([]model.GCRun(nil), runs...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].CreatedAt.After(sorted[j].CreatedAt) })

	table := newTable(w)
	table.Header("RUN", "STARTED", "W", "L", "DECK")
	for _, r := range sorted {
		wins := 0
		for _, m := range r.Matches {
			if m.Win {
				wins++
			}
		}
		table.Append(r.RunID, humanize.RelTime(r.CreatedAt, now, "ago", "from now"),
			strconv.Itoa(wins), strconv.Itoa(len(r.Matches)-wins), strings.Join(r.Deck, ", "))
	}
	table.Render()
}

// PrintGCSummary prints the result line of one run.
func PrintGCSummary(w io.Writer, runID string, s model.GCSummary) {
	avg := "—"
	if s.Total > 0 {
		avg = fmt.Sprintf("%.0f", s.AvgElo)
	}
	fmt.Fprintf(w, "Run %s: %d wins / %d games, avg opponent elo %s\n", runID, s.Wins, s.Total, avg)
}

// PrintScoredDecks prints deck suggestions, best first as given.
func PrintScoredDecks(w io.Writer, decks []optimizer.ScoredDeck) {
	table := newTable(w)
	table.Header("#", "SCORE", "DECK")
	for i, d := range decks {
		table.Append(strconv.Itoa(i+1), fmt.Sprintf("%.1f", d.Score), strings.Join(d.Deck, ", "))
	}
	table.Render()
}

// PrintUpgrades prints an upgrade plan with the running gold total.
func PrintUpgrades(w io.Writer, order []string, levels, costs map[string]int, gold int) {
	if len(order) == 0 {
		fmt.Fprintf(w, "Nothing affordable with %s gold.\n", humanize.Comma(int64(gold)))
		return
	}
	table := newTable(w)
	table.Header("#", "CARD", "LEVEL", "COST", "GOLD LEFT")
	left := gold
	for i, card := range order {
		left -= costs[card]
		table.Append(strconv.Itoa(i+1), card,
			fmt.Sprintf("%d → %d", levels[card], levels[card]+1),
			humanize.Comma(int64(costs[card])), humanize.Comma(int64(left)))
	}
	table.Render()
}

// PrintTopDecks prints meta decks with usage share and win rate.
func PrintTopDecks(w io.Writer, decks []model.TopDeck) {
	table := newTable(w)
	table.Header("DECK", "USAGE", "WIN%", "CARDS")
	for _, d := range decks {
		table.Append(d.Name, fmt.Sprintf("%.1f%%", d.Usage*100), pct(d.WinRate), strings.Join(d.Cards, ", "))
	}
	table.Render()
}

func PrintQuartiles(w io.Writer, qs []analysis.QuartileBenchmark) {
	table := newTable(w)
	table.Header("QUARTILE", "AVG WIN%")
	for _, q := range qs {
		table.Append("Q"+strconv.Itoa(q.Quartile), fmt.Sprintf("%.1f%%", q.AvgWinRate*100))
	}
	table.Render()
}

func PrintTiers(w io.Writer, tiers []analysis.CardTier) {
	table := newTable(w)
	table.Header("#", "CARD", "WIN%/TURN")
	for i, t := range tiers {
		table.Append(strconv.Itoa(i+1), t.Card, fmt.Sprintf("%.3f", t.Efficiency))
	}
	table.Render()
}

// PrintVideos lists videos one per line.
func PrintVideos(w io.Writer, videos []model.Video) {
	if len(videos) == 0 {
		fmt.Fprintln(w, "(no videos)")
		return
	}
	for _, v := range videos {
		fmt.Fprintf(w, "  %s\n    %s\n", v.Title, v.URL)
	}
}

// PrintTags lists the players held in the battle cache.
func PrintTags(w io.Writer, tags []storage.TagSummary, now time.Time) {
	table := newTable(w)
	table.Header("TAG", "BATTLES", "LATEST")
	for _, t := range tags {
		latest := t.Latest
		if ts, err := analysis.ParseBattleTime(t.Latest); err == nil {
			latest = humanize.RelTime(ts, now, "ago", "from now")
		}
		table.Append("#"+t.Tag, humanize.Comma(int64(t.Battles)), latest)
	}
	table.Render()
}

// PrintGoals prints achieved badges and the distance to each remaining goal.
func PrintGoals(w io.Writer, trophies int, achieved []string, remaining map[string]int) {
	for _, name := range achieved {
		fmt.Fprintf(w, "  [x] %s\n", name)
	}
	names := make([]string, 0, len(remaining))
	for name := range remaining {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return remaining[names[i]] < remaining[names[j]] })
	for _, name := range names {
		fmt.Fprintf(w, "  [ ] %s (%s to go)\n", name, humanize.Comma(int64(remaining[name]-trophies)))
	}
}
