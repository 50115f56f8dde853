// Package royaleapi reads leaderboards and popular decks from RoyaleAPI.
//
// RoyaleAPI item shapes differ between endpoints and over time, so items are
// read field by field with gjson and a short list of accepted key spellings.
package royaleapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/pable/go-cr-metrics/internal/model"
)

// DefaultBaseURL is the RoyaleAPI root endpoint.
const DefaultBaseURL = "https://api.royaleapi.com"

// Client is a minimal RoyaleAPI client.
type Client struct {
	token   string
	baseURL string
	http    *http.Client
}

// NewClient returns a client authenticated with the given bearer token.
// An empty baseURL selects DefaultBaseURL.
func NewClient(token, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		token:   token,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// items performs an authenticated GET and returns the "items" array of the
// JSON response.
func (c *Client) items(ctx context.Context, path string, q url.Values) ([]gjson.Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: HTTP %d", path, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("GET %s: read body: %w", path, err)
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("GET %s: invalid JSON", path)
	}
	return gjson.GetBytes(body, "items").Array(), nil
}

// first returns the first present key of it.
func first(it gjson.Result, keys ...string) gjson.Result {
	for _, k := range keys {
		if r := it.Get(k); r.Exists() {
			return r
		}
	}
	return gjson.Result{}
}

func limitQuery(limit int) url.Values {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	return q
}

// TopDecks returns the most used ladder decks of the last week.
func (c *Client) TopDecks(ctx context.Context, limit int) ([]model.TopDeck, error) {
	q := limitQuery(limit)
	q.Set("time", "7d")
	return c.decks(ctx, q)
}

// GCDecks returns popular decks from recent Grand Challenge runs.
func (c *Client) GCDecks(ctx context.Context, limit int) ([]model.TopDeck, error) {
	q := limitQuery(limit)
	q.Set("type", "GC")
	q.Set("time", "7d")
	return c.decks(ctx, q)
}

func (c *Client) decks(ctx context.Context, q url.Values) ([]model.TopDeck, error) {
	items, err := c.items(ctx, "/decks/popular", q)
	if err != nil {
		return nil, err
	}
	out := make([]model.TopDeck, 0, len(items))
	for _, it := range items {
		d := model.TopDeck{
			Name:    first(it, "name", "deck_name", "archetype").String(),
			Usage:   first(it, "usage", "popularity").Float(),
			WinRate: first(it, "win_rate", "winrate", "wins_percent").Float(),
		}
		for _, card := range first(it, "cards", "deck").Array() {
			if card.IsObject() {
				d.Cards = append(d.Cards, card.Get("name").String())
			} else {
				d.Cards = append(d.Cards, card.String())
			}
		}
		if d.Name == "" {
			d.Name = strings.Join(d.Cards, ", ")
		}
		out = append(out, d)
	}
	return out, nil
}

// TopPlayers returns the global player leaderboard.
func (c *Client) TopPlayers(ctx context.Context, limit int) ([]model.RankedPlayer, error) {
	items, err := c.items(ctx, "/player/top", limitQuery(limit))
	if err != nil {
		return nil, err
	}
	out := make([]model.RankedPlayer, 0, len(items))
	for _, it := range items {
		out = append(out, model.RankedPlayer{
			Tag:        it.Get("tag").String(),
			Name:       it.Get("name").String(),
			RankPoints: first(it, "rank_points", "rankPoints", "eloRating", "trophies").Float(),
			WinRate:    first(it, "win_rate", "winRate").Float(),
		})
	}
	return out, nil
}

// MergeLeaderboard returns per-card Merge Tactics statistics.
func (c *Client) MergeLeaderboard(ctx context.Context, limit int) ([]model.MergeCardStat, error) {
	items, err := c.items(ctx, "/leaderboards/merge", limitQuery(limit))
	if err != nil {
		return nil, err
	}
	out := make([]model.MergeCardStat, 0, len(items))
	for _, it := range items {
		s := model.MergeCardStat{
			Name:    first(it, "name", "card").String(),
			Wins:    int(it.Get("wins").Int()),
			Battles: int(it.Get("battles").Int()),
			Turns:   int(it.Get("turns").Int()),
		}
		if !it.Get("turns").Exists() {
			s.Turns = 1
		}
		if !it.Get("battles").Exists() {
			s.Battles = 1
		}
		out = append(out, s)
	}
	return out, nil
}
