package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-cr-metrics/internal/analysis"
	"github.com/pable/go-cr-metrics/internal/eventlog"
	"github.com/pable/go-cr-metrics/internal/model"
	"github.com/pable/go-cr-metrics/internal/report"
)

var (
	deckFrom  string
	deckCards string
	deckPlays string
	deckLog   string
)

var deckCmd = &cobra.Command{
	Use:   "deck",
	Short: "Rate decks and drill card cycles",
}

var deckRateCmd = &cobra.Command{
	Use:   "rate",
	Short: "Rate a deck's elixir curve and classify its playstyle",
	Long: `Rate a deck by average elixir (ideal 3.5) and classify it as Siege, Cycle,
Control, Beatdown or Bait. The deck comes from --cards or, with --from, from
the player's most recent battle.

Examples:
  crmetrics deck rate --cards "Hog Rider,Musketeer,Fireball,The Log,Ice Spirit,Skeletons,Cannon,Ice Golem"
  crmetrics deck rate --from '#2PP'`,
	Args: cobra.NoArgs,
	RunE: runDeckRate,
}

var deckCycleCmd = &cobra.Command{
	Use:   "cycle",
	Short: "Replay a sequence of plays and show the hand before each one",
	Long: `Replay plays against the deck's rotation. Plays come from --plays or from the
player side of a recorded event log (--log).`,
	Args: cobra.NoArgs,
	RunE: runDeckCycle,
}

func init() {
	deckRateCmd.Flags().StringVar(&deckCards, "cards", "", "comma-separated deck")
	deckRateCmd.Flags().StringVar(&deckFrom, "from", "", "take the deck from this player's latest battle")

	deckCycleCmd.Flags().StringVar(&deckCards, "cards", "", "comma-separated deck in starting rotation order (required)")
	deckCycleCmd.Flags().StringVar(&deckPlays, "plays", "", "comma-separated cards in play order")
	deckCycleCmd.Flags().StringVar(&deckLog, "log", "", "event log to take the player's plays from")
	_ = deckCycleCmd.MarkFlagRequired("cards")

	deckCmd.AddCommand(deckRateCmd)
	deckCmd.AddCommand(deckCycleCmd)
}

func runDeckRate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	deck := splitCards(deckCards)
	if deckFrom != "" {
		tag, err := playerTag([]string{deckFrom})
		if err != nil {
			return err
		}
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()
		battles, err := recentBattles(ctx, db, tag, false, 0)
		if err != nil {
			return err
		}
		if len(battles) == 0 {
			return fmt.Errorf("#%s has no battles", tag)
		}
		team, _, ok := battles[0].Sides()
		if !ok {
			return fmt.Errorf("latest battle of #%s has no deck", tag)
		}
		deck = team.CardNames()
	}
	if len(deck) == 0 {
		return errors.New("no deck: pass --cards or --from")
	}

	catalog, err := cardCatalog(ctx)
	if err != nil {
		return err
	}
	roles, err := loadRoles()
	if err != nil {
		return err
	}

	rating := analysis.ComputeDeckRating(deck, catalog)
	report.PrintDeckRating(os.Stdout, deck, rating, roles.ClassifyPlaystyle(deck))

	var covered analysis.CardRoles
	for _, c := range deck {
		cr := roles.ClassifyCard(c)
		covered.AntiAir = covered.AntiAir || cr.AntiAir
		covered.Spell = covered.Spell || cr.Spell
		covered.WinCon = covered.WinCon || cr.WinCon
	}
	for _, miss := range []struct {
		ok   bool
		role string
	}{
		{covered.AntiAir, "anti-air"},
		{covered.Spell, "spell"},
		{covered.WinCon, "win condition"},
	} {
		if !miss.ok {
			cWarn.Fprintf(os.Stdout, "No %s card in this deck.\n", miss.role)
		}
	}
	return nil
}

func runDeckCycle(cmd *cobra.Command, args []string) error {
	deck := splitCards(deckCards)
	plays := splitCards(deckPlays)
	if deckLog != "" {
		events, err := eventlog.ReadFile(deckLog)
		if err != nil {
			return err
		}
		plays = plays[:0]
		for _, e := range events {
			if e.Side == model.SidePlayer {
				plays = append(plays, e.Card)
			}
		}
	}
	if len(plays) == 0 {
		return errors.New("no plays: pass --plays or --log")
	}
	report.PrintCycle(os.Stdout, plays, analysis.CardCycleTrainer(deck, plays))
	return nil
}
