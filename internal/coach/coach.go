// Package coach turns a small battle summary into coaching advice. Three
// generators are available: a rule-based one that needs no network, a local
// Ollama model, and the Anthropic Messages API.
package coach

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pable/go-cr-metrics/internal/config"
)

// Context is the summary handed to an advice generator.
type Context struct {
	WinRate   float64 `json:"win_rate"`
	Tilt      bool    `json:"tilt"`
	AvgElixir float64 `json:"avg_elixir"`
	// Aggro is player/opponent early elixir; +Inf when the opponent spent
	// none and NaN when no play log was analyzed.
	Aggro     float64 `json:"-"`
	Playstyle string  `json:"playstyle"`
	Question  string  `json:"-"`
}

// AdviceGenerator produces advice text (Markdown) for a Context.
type AdviceGenerator interface {
	Name() string
	Advise(ctx context.Context, c Context) (string, error)
}

const systemPrompt = `You are a Clash Royale coach. You are given a short JSON summary of a
player's recent ladder battles and, optionally, a question.

Rules:
- Answer ONLY from the data provided. Never invent statistics.
- Cite the numbers you rely on.
- Give at most five concrete, actionable points as a Markdown list.

Fields:
- win_rate: share of recent ranked battles won, 0 to 1.
- tilt: true when several ranked losses happened in quick succession.
- avg_elixir: average elixir cost of the current deck. 3.5 is balanced.
- aggro: player elixir spent divided by opponent elixir spent early in the battle. Above 1 is aggressive; null means not measured or the opponent spent nothing.
- playstyle: deck archetype label.`

// promptData is the JSON form of a Context. Aggro is nil when infinite,
// since JSON has no representation for it.
type promptData struct {
	Context
	Aggro *float64 `json:"aggro"`
}

// userMessage renders c as the DATA/QUESTION message sent to LLM backends.
func userMessage(c Context) (string, error) {
	d := promptData{Context: c}
	if !math.IsInf(c.Aggro, 0) && !math.IsNaN(c.Aggro) {
		a := math.Round(c.Aggro*100) / 100
		d.Aggro = &a
	}
	d.WinRate = math.Round(c.WinRate*1000) / 1000
	d.AvgElixir = math.Round(c.AvgElixir*100) / 100

	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode coaching context: %w", err)
	}
	q := strings.TrimSpace(c.Question)
	if q == "" {
		q = "What should I focus on to win more?"
	}
	return fmt.Sprintf("DATA:\n%s\n\nQUESTION: %s", data, q), nil
}

// New returns the generator selected by cfg.Coach.Provider.
func New(cfg *config.Config, logger zerolog.Logger) (AdviceGenerator, error) {
	switch strings.ToLower(cfg.Coach.Provider) {
	case "", "heuristic":
		return Heuristic{}, nil
	case "ollama":
		return NewOllama(OllamaConfig{
			BaseURL: cfg.Coach.OllamaURL,
			Model:   cfg.Coach.OllamaModel,
			Timeout: cfg.CoachTimeout(),
		}, logger), nil
	case "anthropic":
		key, err := cfg.RequireAnthropicKey()
		if err != nil {
			return nil, err
		}
		return NewAnthropic(key, cfg.Coach.AnthropicModel, logger), nil
	default:
		return nil, fmt.Errorf("unknown coach provider %q", cfg.Coach.Provider)
	}
}
