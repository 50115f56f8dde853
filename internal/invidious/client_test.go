package invidious

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Search(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/search", r.URL.Path)
		gotQuery = r.URL.Query().Get("q")
		assert.Equal(t, "video", r.URL.Query().Get("type"))
		_, _ = w.Write([]byte(`[
			{"type":"video","videoId":"aaa","title":"Hog vs Golem","authorId":"UCa-Y5sBjOlbwL6GzGkN6IBw"},
			{"type":"channel","title":"no id"},
			{"type":"video","videoId":"bbb","title":"Other","authorId":"UCother"},
			{"type":"video","videoId":"ccc","title":"Cut","authorId":"UCother"}
		]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	videos, err := c.Search(context.Background(), "hog cycle", 3)
	require.NoError(t, err)
	assert.Equal(t, "hog cycle", gotQuery)
	require.Len(t, videos, 2)
	assert.Equal(t, "https://www.youtube.com/watch?v=aaa", videos[0].URL)
	assert.Equal(t, "UCa-Y5sBjOlbwL6GzGkN6IBw", videos[0].ChannelID)
	assert.Equal(t, "bbb", videos[1].ID)
}

func TestClient_MatchupVideos(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Hog vs Golem Clash Royale", r.URL.Query().Get("q"))
		_, _ = w.Write([]byte(`[
			{"videoId":"aaa","title":"pro","authorId":"UCnS5iAw-Aw5XVKwIk98cNVQ"},
			{"videoId":"bbb","title":"random","authorId":"UCrandom"}
		]`))
	}))
	defer srv.Close()

	videos, err := NewClient(srv.URL).MatchupVideos(context.Background(), "Hog", "Golem", 5, ProChannels)
	require.NoError(t, err)
	require.Len(t, videos, 1)
	assert.Equal(t, "pro", videos[0].Title)
}

func TestClient_LatestVideo(t *testing.T) {
	cases := map[string]string{
		"list":    `[{"videoId":"new1","title":"Fresh"}]`,
		"wrapped": `{"videos":[{"videoId":"new1","title":"Fresh"}]}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/v1/channels/UCx/latest", r.URL.Path)
				_, _ = w.Write([]byte(body))
			}))
			defer srv.Close()

			v, ok, err := NewClient(srv.URL).LatestVideo(context.Background(), "UCx")
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, "new1", v.ID)
			assert.Equal(t, "UCx", v.ChannelID)
		})
	}
}

func TestClient_LatestVideo_Empty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	_, ok, err := NewClient(srv.URL).LatestVideo(context.Background(), "UCx")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClient_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Search(context.Background(), "x", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 502")
}
