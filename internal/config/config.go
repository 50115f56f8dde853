// Package config loads application settings from a TOML file, an optional
// .env file and the process environment, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// ErrMissingToken is wrapped by the Require* helpers when a credential is
// not configured.
var ErrMissingToken = errors.New("missing API token")

// Config represents the application configuration.
type Config struct {
	Player    PlayerConfig    `toml:"player"`
	Clash     ClashConfig     `toml:"clash"`
	RoyaleAPI RoyaleAPIConfig `toml:"royaleapi"`
	Invidious InvidiousConfig `toml:"invidious"`
	Coach     CoachConfig     `toml:"coach"`
	Analysis  AnalysisConfig  `toml:"analysis"`
	Server    ServerConfig    `toml:"server"`
	Log       LogConfig       `toml:"log"`
}

// PlayerConfig holds defaults for the tracked player.
type PlayerConfig struct {
	Tag   string         `toml:"tag"`   // default player tag for commands
	Goals map[string]int `toml:"goals"` // badge name -> trophy target
}

type ClashConfig struct {
	Token   string `toml:"token"`
	BaseURL string `toml:"base_url"`
}

type RoyaleAPIConfig struct {
	Token   string `toml:"token"`
	BaseURL string `toml:"base_url"`
}

type InvidiousConfig struct {
	BaseURL  string   `toml:"base_url"`
	Channels []string `toml:"channels"` // channels trusted for matchup videos
}

// CoachConfig selects and tunes the advice generator.
type CoachConfig struct {
	Provider       string `toml:"provider"` // heuristic, ollama or anthropic
	OllamaURL      string `toml:"ollama_url"`
	OllamaModel    string `toml:"ollama_model"`
	AnthropicKey   string `toml:"anthropic_key"`
	AnthropicModel string `toml:"anthropic_model"`
	Timeout        string `toml:"timeout"`
}

// AnalysisConfig holds the tunable analysis thresholds.
type AnalysisConfig struct {
	TiltLimit      int     `toml:"tilt_limit"`
	TiltWindow     string  `toml:"tilt_window"`
	CycleWindow    int     `toml:"cycle_window"`
	AggroSeconds   float64 `toml:"aggro_seconds"`
	EventDays      int     `toml:"event_days"`
	MetaThreshold  float64 `toml:"meta_threshold"`
	DeckSimilarity float64 `toml:"deck_similarity"`
	RolesFile      string  `toml:"roles_file"` // optional YAML override of card roles
}

type ServerConfig struct {
	Addr           string   `toml:"addr"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Player: PlayerConfig{
			Goals: map[string]int{},
		},
		Invidious: InvidiousConfig{
			BaseURL: "https://yewtu.be",
			Channels: []string{
				"UCa-Y5sBjOlbwL6GzGkN6IBw",
				"UCnS5iAw-Aw5XVKwIk98cNVQ",
			},
		},
		Coach: CoachConfig{
			Provider:       "heuristic",
			OllamaURL:      "http://localhost:11434",
			OllamaModel:    "qwen:7b",
			AnthropicModel: "claude-haiku-4-5-20251001",
			Timeout:        "60s",
		},
		Analysis: AnalysisConfig{
			TiltLimit:      3,
			TiltWindow:     "15m",
			CycleWindow:    4,
			AggroSeconds:   60,
			EventDays:      30,
			MetaThreshold:  0.05,
			DeckSimilarity: 0.75,
		},
		Server: ServerConfig{
			Addr:           "127.0.0.1:8080",
			AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Dir returns the application directory, ~/.crmetrics.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".crmetrics"
	}
	return filepath.Join(home, ".crmetrics")
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load reads the config file at path (DefaultPath when empty) over the
// defaults, then applies a .env file from the working directory and the
// environment overrides. A missing config file is not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config file: %w", err)
	default:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	// .env is optional; existing environment variables win over it.
	_ = godotenv.Load()
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	setFromEnv(&c.Clash.Token, "CLASH_ROYALE_TOKEN")
	setFromEnv(&c.RoyaleAPI.Token, "ROYALEAPI_TOKEN")
	setFromEnv(&c.Invidious.BaseURL, "INVIDIOUS_BASE")
	setFromEnv(&c.Coach.OllamaModel, "OLLAMA_MODEL")
	setFromEnv(&c.Coach.OllamaURL, "OLLAMA_URL")
	setFromEnv(&c.Coach.AnthropicKey, "ANTHROPIC_API_KEY")
	setFromEnv(&c.Player.Tag, "CR_PLAYER_TAG")
	setFromEnv(&c.Log.Level, "LOG_LEVEL")
}

func setFromEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Save writes the configuration to path (DefaultPath when empty),
// creating the directory if needed.
func (c *Config) Save(path string) error {
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	if _, err := time.ParseDuration(c.Analysis.TiltWindow); err != nil {
		return fmt.Errorf("invalid tilt window %q: %w", c.Analysis.TiltWindow, err)
	}
	if _, err := time.ParseDuration(c.Coach.Timeout); err != nil {
		return fmt.Errorf("invalid coach timeout %q: %w", c.Coach.Timeout, err)
	}
	if c.Analysis.TiltLimit < 1 {
		return fmt.Errorf("tilt limit must be at least 1: %d", c.Analysis.TiltLimit)
	}
	if c.Analysis.CycleWindow < 1 {
		return fmt.Errorf("cycle window must be at least 1: %d", c.Analysis.CycleWindow)
	}
	if c.Analysis.EventDays < 1 {
		return fmt.Errorf("event days must be at least 1: %d", c.Analysis.EventDays)
	}
	if s := c.Analysis.DeckSimilarity; s < 0 || s > 1 {
		return fmt.Errorf("deck similarity must be within [0,1]: %g", s)
	}
	switch strings.ToLower(c.Coach.Provider) {
	case "heuristic", "ollama", "anthropic":
	default:
		return fmt.Errorf("unknown coach provider %q", c.Coach.Provider)
	}
	return nil
}

// TiltWindow returns the tilt window as a duration.
func (c *Config) TiltWindow() time.Duration {
	d, _ := time.ParseDuration(c.Analysis.TiltWindow)
	return d
}

// CoachTimeout returns the coach request timeout as a duration.
func (c *Config) CoachTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Coach.Timeout)
	return d
}

// RequireClashToken returns the Clash Royale API token or an error
// wrapping ErrMissingToken.
func (c *Config) RequireClashToken() (string, error) {
	if c.Clash.Token == "" {
		return "", fmt.Errorf("%w: set CLASH_ROYALE_TOKEN or clash.token", ErrMissingToken)
	}
	return c.Clash.Token, nil
}

// RequireRoyaleAPIToken returns the RoyaleAPI token or an error wrapping
// ErrMissingToken.
func (c *Config) RequireRoyaleAPIToken() (string, error) {
	if c.RoyaleAPI.Token == "" {
		return "", fmt.Errorf("%w: set ROYALEAPI_TOKEN or royaleapi.token", ErrMissingToken)
	}
	return c.RoyaleAPI.Token, nil
}

// RequireAnthropicKey returns the Anthropic API key or an error wrapping
// ErrMissingToken.
func (c *Config) RequireAnthropicKey() (string, error) {
	if c.Coach.AnthropicKey == "" {
		return "", fmt.Errorf("%w: set ANTHROPIC_API_KEY or coach.anthropic_key", ErrMissingToken)
	}
	return c.Coach.AnthropicKey, nil
}
