package cmd

import (
	"context"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/pable/go-cr-metrics/internal/analysis"
	"github.com/pable/go-cr-metrics/internal/coach"
	"github.com/pable/go-cr-metrics/internal/eventlog"
)

var (
	coachOffline  bool
	coachLog      string
	coachProvider string
)

var coachCmd = &cobra.Command{
	Use:   "coach [tag] [question]",
	Short: "Get coaching tips from your recent battles",
	Long: `Summarize the recent battle log (win rate, tilt, deck elixir and playstyle,
optionally the opening aggression of a recorded battle) and ask the configured
advice generator what to work on.

Generators (coach.provider or --provider):
  heuristic  rule-based, offline (default)
  ollama     local model via coach.ollama_url / coach.ollama_model
  anthropic  Anthropic API, needs ANTHROPIC_API_KEY

Examples:
  crmetrics coach
  crmetrics coach '#2PP' "Why do I lose to Golem?" --provider anthropic`,
	Args: cobra.MaximumNArgs(2),
	RunE: runCoach,
}

func init() {
	coachCmd.Flags().BoolVar(&coachOffline, "offline", false, "use cached battles only")
	coachCmd.Flags().StringVar(&coachLog, "log", "", "event log of a battle to measure opening aggression from")
	coachCmd.Flags().StringVar(&coachProvider, "provider", "", "advice generator (overrides coach.provider)")
}

func runCoach(cmd *cobra.Command, args []string) error {
	tag, err := playerTag(args)
	if err != nil {
		return err
	}
	question := ""
	if len(args) > 1 {
		question = args[1]
	}
	if coachProvider != "" {
		cfg.Coach.Provider = coachProvider
	}
	gen, err := coach.New(cfg, log)
	if err != nil {
		return err
	}

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := cmd.Context()
	battles, err := recentBattles(ctx, db, tag, coachOffline, 25)
	if err != nil {
		return err
	}
	if len(battles) == 0 {
		return fmt.Errorf("no battles for #%s", tag)
	}
	roles, err := loadRoles()
	if err != nil {
		return err
	}

	c := coach.Context{
		WinRate:  analysis.ComputeWinRate(battles),
		Tilt:     analysis.DetectTilt(battles, cfg.Analysis.TiltLimit, cfg.TiltWindow()),
		Aggro:    math.NaN(),
		Question: question,
	}
	if team, _, ok := battles[0].Sides(); ok {
		deck := team.CardNames()
		c.Playstyle = string(roles.ClassifyPlaystyle(deck))
		if !coachOffline {
			if catalog, err := cardCatalog(ctx); err == nil {
				c.AvgElixir = analysis.ComputeDeckRating(deck, catalog).AverageElixir
			} else {
				log.Warn().Err(err).Msg("card catalog unavailable, skipping elixir")
			}
		}
	}
	if coachLog != "" {
		events, err := eventlog.ReadFile(coachLog)
		if err != nil {
			return err
		}
		c.Aggro = analysis.AggroMeter(events, cfg.Analysis.AggroSeconds)
	}

	return advise(ctx, gen, c)
}

// advise prints the generator's answer. Streaming generators write as they
// go; the others are rendered as Markdown once complete.
func advise(ctx context.Context, gen coach.AdviceGenerator, c coach.Context) error {
	ctx, cancel := context.WithTimeout(ctx, cfg.CoachTimeout())
	defer cancel()

	cMuted.Fprintf(os.Stderr, "asking %s...\n", gen.Name())
	if a, ok := gen.(*coach.Anthropic); ok {
		a.Out = os.Stdout
		fmt.Fprintln(os.Stdout, "\n─── Coach ───────────────────────────────────────────")
		_, err := a.Advise(ctx, c)
		fmt.Fprintln(os.Stdout, "\n─────────────────────────────────────────────────────")
		return err
	}

	text, err := gen.Advise(ctx, c)
	if err != nil {
		return err
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err != nil {
		fmt.Fprintln(os.Stdout, text)
		return nil
	}
	out, err := r.Render("## Coach\n\n" + strings.TrimSpace(text) + "\n")
	if err != nil {
		fmt.Fprintln(os.Stdout, text)
		return nil
	}
	fmt.Fprint(os.Stdout, out)
	return nil
}
