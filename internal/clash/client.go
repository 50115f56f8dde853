// Package clash provides a minimal client for the official Clash Royale API.
package clash

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/pable/go-cr-metrics/internal/model"
)

// DefaultBaseURL is the root endpoint for the Clash Royale API v1.
const DefaultBaseURL = "https://api.clashroyale.com/v1"

const (
	requestTimeout = 10 * time.Second
	// the developer API allows short bursts; keep well under it
	rateLimitDelay = 100 * time.Millisecond
)

// APIError is a non-200 answer from the API.
type APIError struct {
	Path       string
	StatusCode int
	Reason     string
}

func (e *APIError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("GET %s: HTTP %d (%s)", e.Path, e.StatusCode, e.Reason)
	}
	return fmt.Sprintf("GET %s: HTTP %d", e.Path, e.StatusCode)
}

// IsNotFound reports whether err is an APIError for an unknown resource.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Client is a rate-limited Clash Royale API client.
type Client struct {
	token   string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	logger  zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another API root, such as a proxy.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient returns a client authenticated with the given bearer token.
func NewClient(token string, opts ...Option) *Client {
	c := &Client{
		token:   token,
		baseURL: DefaultBaseURL,
		http:    &http.Client{Timeout: requestTimeout},
		limiter: rate.NewLimiter(rate.Every(rateLimitDelay), 1),
		logger:  zerolog.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// NormalizeTag strips a leading '#', trims spaces and upper-cases a player tag.
func NormalizeTag(tag string) string {
	return strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(tag), "#"))
}

func playerPath(tag string) string {
	return "/players/" + url.PathEscape("#"+NormalizeTag(tag))
}

// get performs an authenticated, rate-limited GET request and JSON-decodes
// the response body into out.
func (c *Client) get(ctx context.Context, path string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()
	c.logger.Debug().
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("clash api request")

	if resp.StatusCode != http.StatusOK {
		var body struct {
			Reason string `json:"reason"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&body)
		return &APIError{Path: path, StatusCode: resp.StatusCode, Reason: body.Reason}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("GET %s: decode: %w", path, err)
	}
	return nil
}

// player is the subset of /players/{tag} we read.
type player struct {
	Tag        string `json:"tag"`
	Name       string `json:"name"`
	Trophies   int    `json:"trophies"`
	ExpLevel   int    `json:"expLevel"`
	LeagueRank int    `json:"leagueRank"`

	PathOfLegend *struct {
		LeagueNumber int `json:"leagueNumber"`
		Rank         int `json:"rank"`
	} `json:"currentPathOfLegendSeasonResult"`
}

// Player fetches a player profile. LeagueRank is the current Path of
// Legends league step when the API reports one.
func (c *Client) Player(ctx context.Context, tag string) (*model.Player, error) {
	var p player
	if err := c.get(ctx, playerPath(tag), &p); err != nil {
		return nil, err
	}
	out := &model.Player{
		Tag:        p.Tag,
		Name:       p.Name,
		Trophies:   p.Trophies,
		LeagueRank: p.LeagueRank,
		ExpLevel:   p.ExpLevel,
	}
	if p.PathOfLegend != nil && p.PathOfLegend.LeagueNumber > 0 {
		out.LeagueRank = p.PathOfLegend.LeagueNumber
	}
	return out, nil
}

// BattleLog fetches the player's recent battles, most recent first.
func (c *Client) BattleLog(ctx context.Context, tag string) ([]model.BattleRecord, error) {
	var battles []model.BattleRecord
	if err := c.get(ctx, playerPath(tag)+"/battlelog", &battles); err != nil {
		return nil, err
	}
	return battles, nil
}

// Cards fetches the card catalog.
func (c *Client) Cards(ctx context.Context) ([]model.CardCatalogEntry, error) {
	var resp struct {
		Items []model.CardCatalogEntry `json:"items"`
	}
	if err := c.get(ctx, "/cards", &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}
