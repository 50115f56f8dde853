package royaleapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, path, body string, check func(*http.Request)) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != path {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		if check != nil {
			check(r)
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return NewClient("tok", srv.URL)
}

func TestClient_TopDecks(t *testing.T) {
	c := serve(t, "/decks/popular", `{"items":[
		{"name":"Hog 2.6","cards":[{"name":"Hog Rider"},{"name":"Musketeer"}],"usage":0.08,"win_rate":0.54},
		{"cards":["Golem","Night Witch"],"popularity":0.02}
	]}`, func(r *http.Request) {
		assert.Equal(t, "7d", r.URL.Query().Get("time"))
		assert.Equal(t, "50", r.URL.Query().Get("limit"))
		assert.Empty(t, r.URL.Query().Get("type"))
	})

	decks, err := c.TopDecks(context.Background(), 50)
	require.NoError(t, err)
	require.Len(t, decks, 2)
	assert.Equal(t, "Hog 2.6", decks[0].Name)
	assert.Equal(t, []string{"Hog Rider", "Musketeer"}, decks[0].Cards)
	assert.InDelta(t, 0.08, decks[0].Usage, 1e-9)
	assert.Equal(t, "Golem, Night Witch", decks[1].Name)
	assert.InDelta(t, 0.02, decks[1].Usage, 1e-9)
}

func TestClient_GCDecks(t *testing.T) {
	c := serve(t, "/decks/popular", `{"items":[{"name":"GC Bait","cards":["Goblin Barrel"]}]}`, func(r *http.Request) {
		assert.Equal(t, "GC", r.URL.Query().Get("type"))
	})
	decks, err := c.GCDecks(context.Background(), 20)
	require.NoError(t, err)
	require.Len(t, decks, 1)
	assert.Equal(t, "GC Bait", decks[0].Name)
}

func TestClient_TopPlayers(t *testing.T) {
	c := serve(t, "/player/top", `{"items":[
		{"tag":"#A","name":"One","rank_points":2100,"win_rate":0.61},
		{"tag":"#B","name":"Two","eloRating":1900.5}
	]}`, nil)
	players, err := c.TopPlayers(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, players, 2)
	assert.Equal(t, 2100.0, players[0].RankPoints)
	assert.InDelta(t, 0.61, players[0].WinRate, 1e-9)
	assert.Equal(t, 1900.5, players[1].RankPoints)
}

func TestClient_MergeLeaderboard(t *testing.T) {
	c := serve(t, "/leaderboards/merge", `{"items":[
		{"name":"Archer","wins":8,"battles":10,"turns":2},
		{"name":"Knight","wins":3}
	]}`, nil)
	stats, err := c.MergeLeaderboard(context.Background(), 100)
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, 2, stats[0].Turns)
	assert.Equal(t, 1, stats[1].Turns)
	assert.Equal(t, 1, stats[1].Battles)
}

func TestClient_Errors(t *testing.T) {
	c := serve(t, "/player/top", `not json`, nil)
	_, err := c.TopPlayers(context.Background(), 1)
	assert.ErrorContains(t, err, "invalid JSON")

	_, err = c.MergeLeaderboard(context.Background(), 1)
	assert.ErrorContains(t, err, "HTTP 404")
}
