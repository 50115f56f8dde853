package coach

import (
	"context"
	"fmt"
	"math"
	"strings"
)

// Heuristic is a rule-based generator that works offline.
type Heuristic struct{}

func (Heuristic) Name() string { return "heuristic" }

// Advise returns one Markdown bullet per rule that fires, most urgent
// first.
func (Heuristic) Advise(_ context.Context, c Context) (string, error) {
	var tips []string

	if c.Tilt {
		tips = append(tips, "You are on a quick losing streak. Take a break before the next ranked battle.")
	}
	switch {
	case c.WinRate < 0.4:
		tips = append(tips, fmt.Sprintf("Win rate is %.0f%%. Consider a deck you know better or practice in friendly battles.", c.WinRate*100))
	case c.WinRate >= 0.6:
		tips = append(tips, fmt.Sprintf("Win rate is %.0f%%. Keep the deck and push while you are in form.", c.WinRate*100))
	}
	switch {
	case c.AvgElixir > 4.5:
		tips = append(tips, fmt.Sprintf("Average elixir is %.1f. Swap a heavy card for a cheap cycle card.", c.AvgElixir))
	case c.AvgElixir > 0 && c.AvgElixir < 3:
		tips = append(tips, fmt.Sprintf("Average elixir is %.1f. Make sure the deck still has a reliable win condition.", c.AvgElixir))
	}
	switch {
	case math.IsInf(c.Aggro, 1):
		tips = append(tips, "Your opponent spent nothing early. Punish with pressure at the bridge.")
	case c.Aggro > 1.5:
		tips = append(tips, fmt.Sprintf("Early aggro ratio is %.2f. You may be overcommitting before double elixir.", c.Aggro))
	case c.Aggro > 0 && c.Aggro < 0.67:
		tips = append(tips, fmt.Sprintf("Early aggro ratio is %.2f. You are passive early; look for cheap chip damage.", c.Aggro))
	}
	if tip, ok := playstyleTips[c.Playstyle]; ok {
		tips = append(tips, tip)
	}

	if len(tips) == 0 {
		return "- No obvious problems. Keep playing your game.\n", nil
	}
	var b strings.Builder
	for _, t := range tips {
		b.WriteString("- ")
		b.WriteString(t)
		b.WriteByte('\n')
	}
	return b.String(), nil
}

var playstyleTips = map[string]string{
	"Siege":    "Siege: protect the building and defend at the river.",
	"Cycle":    "Cycle: out-rotate counters and keep your win condition in hand.",
	"Control":  "Control: trade efficiently and take towers with spell chip.",
	"Beatdown": "Beatdown: build one big push in double elixir; sacrifice tower HP early if needed.",
	"Bait":     "Bait: track the opponent's spells and punish when they are out of rotation.",
}
