package cmd

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/pable/go-cr-metrics/internal/optimizer"
	"github.com/pable/go-cr-metrics/internal/report"
)

var (
	optDeck        string
	optPool        string
	optGenerations int
	optPopulation  int
	optSeed        uint64

	optCards []string
	optPlan  string
	optGold  int
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Suggest deck swaps and card upgrade order",
}

var optimizeSwapCmd = &cobra.Command{
	Use:   "swap",
	Short: "Search single-card swaps that improve a deck",
	Long: `Run a small evolutionary search: each generation swaps one random card of the
deck for one from the pool and keeps the best variants. Decks are scored on
elixir curve and role coverage. Prints the three best decks found.

Without --pool every card in the game that is not already in the deck is a
candidate.`,
	Args: cobra.NoArgs,
	RunE: runOptimizeSwap,
}

var optimizeUpgradeCmd = &cobra.Command{
	Use:   "upgrade",
	Short: "Order card upgrades by level gained per gold",
	Long: `Greedily pick upgrades with the best (level+1)/cost ratio that still fit the
gold budget. Cards come from repeated --card NAME=LEVEL:COST flags or from a
YAML plan file:

  levels: {Knight: 10, Archers: 9}
  costs:  {Knight: 4000, Archers: 1000}

Examples:
  crmetrics optimize upgrade --gold 6000 --card Knight=10:4000 --card Archers=9:1000`,
	Args: cobra.NoArgs,
	RunE: runOptimizeUpgrade,
}

func init() {
	optimizeSwapCmd.Flags().StringVar(&optDeck, "cards", "", "comma-separated deck (required)")
	optimizeSwapCmd.Flags().StringVar(&optPool, "pool", "", "comma-separated candidate cards")
	optimizeSwapCmd.Flags().IntVar(&optGenerations, "generations", 10, "search generations")
	optimizeSwapCmd.Flags().IntVar(&optPopulation, "population", 6, "variants per generation")
	optimizeSwapCmd.Flags().Uint64Var(&optSeed, "seed", 0, "random seed for reproducible runs (0 = random)")
	_ = optimizeSwapCmd.MarkFlagRequired("cards")

	optimizeUpgradeCmd.Flags().StringArrayVar(&optCards, "card", nil, "NAME=LEVEL:COST, repeatable")
	optimizeUpgradeCmd.Flags().StringVar(&optPlan, "plan", "", "YAML file with levels and costs")
	optimizeUpgradeCmd.Flags().IntVar(&optGold, "gold", 0, "gold budget (required)")
	_ = optimizeUpgradeCmd.MarkFlagRequired("gold")

	optimizeCmd.AddCommand(optimizeSwapCmd)
	optimizeCmd.AddCommand(optimizeUpgradeCmd)
}

func runOptimizeSwap(cmd *cobra.Command, args []string) error {
	deck := splitCards(optDeck)
	catalog, err := cardCatalog(cmd.Context())
	if err != nil {
		return err
	}
	roles, err := loadRoles()
	if err != nil {
		return err
	}

	pool := splitCards(optPool)
	if len(pool) == 0 {
		inDeck := make(map[string]bool, len(deck))
		for _, c := range deck {
			inDeck[strings.ToLower(c)] = true
		}
		for _, c := range catalog {
			if !inDeck[strings.ToLower(c.Name)] {
				pool = append(pool, c.Name)
			}
		}
	}

	opts := optimizer.Options{Generations: optGenerations, Population: optPopulation}
	if optSeed != 0 {
		opts.Rand = rand.New(rand.NewPCG(optSeed, optSeed))
	}
	best := optimizer.SmartSwap(deck, pool, optimizer.DeckFitness(catalog, roles), opts)
	report.PrintScoredDecks(os.Stdout, best)
	return nil
}

type upgradePlan struct {
	Levels map[string]int `yaml:"levels"`
	Costs  map[string]int `yaml:"costs"`
}

// parseCardFlag parses NAME=LEVEL:COST.
func parseCardFlag(s string) (name string, level, cost int, err error) {
	name, rest, ok := strings.Cut(s, "=")
	if !ok {
		return "", 0, 0, fmt.Errorf("invalid --card %q: want NAME=LEVEL:COST", s)
	}
	lv, c, ok := strings.Cut(rest, ":")
	if !ok {
		return "", 0, 0, fmt.Errorf("invalid --card %q: want NAME=LEVEL:COST", s)
	}
	if level, err = strconv.Atoi(lv); err != nil {
		return "", 0, 0, fmt.Errorf("invalid level in --card %q: %w", s, err)
	}
	if cost, err = strconv.Atoi(c); err != nil {
		return "", 0, 0, fmt.Errorf("invalid cost in --card %q: %w", s, err)
	}
	return strings.TrimSpace(name), level, cost, nil
}

func runOptimizeUpgrade(cmd *cobra.Command, args []string) error {
	plan := upgradePlan{Levels: map[string]int{}, Costs: map[string]int{}}
	if optPlan != "" {
		data, err := os.ReadFile(optPlan)
		if err != nil {
			return fmt.Errorf("read plan: %w", err)
		}
		if err := yaml.Unmarshal(data, &plan); err != nil {
			return fmt.Errorf("parse plan %s: %w", optPlan, err)
		}
		if plan.Levels == nil {
			plan.Levels = map[string]int{}
		}
		if plan.Costs == nil {
			plan.Costs = map[string]int{}
		}
	}
	for _, s := range optCards {
		name, level, cost, err := parseCardFlag(s)
		if err != nil {
			return err
		}
		plan.Levels[name] = level
		plan.Costs[name] = cost
	}
	if len(plan.Costs) == 0 {
		return errors.New("no cards: pass --card or --plan")
	}

	order := optimizer.UpgradeOptimizer(plan.Levels, plan.Costs, optGold)
	report.PrintUpgrades(os.Stdout, order, plan.Levels, plan.Costs, optGold)
	return nil
}
