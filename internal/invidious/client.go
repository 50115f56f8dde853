// Package invidious searches YouTube through an Invidious instance.
package invidious

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/pable/go-cr-metrics/internal/analysis"
	"github.com/pable/go-cr-metrics/internal/model"
)

// DefaultBaseURL is the public instance used when none is configured.
const DefaultBaseURL = "https://yewtu.be"

// ProChannels are the YouTube channels trusted for matchup videos.
var ProChannels = []string{
	"UCa-Y5sBjOlbwL6GzGkN6IBw",
	"UCnS5iAw-Aw5XVKwIk98cNVQ",
}

// Client talks to one Invidious instance.
type Client struct {
	baseURL string
	client  *fasthttp.Client
	timeout time.Duration
}

// NewClient returns a client for the instance at baseURL, or the default
// instance when baseURL is empty.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &fasthttp.Client{
			MaxConnsPerHost:     16,
			ReadTimeout:         10 * time.Second,
			WriteTimeout:        10 * time.Second,
			MaxIdleConnDuration: time.Minute,
		},
		timeout: 10 * time.Second,
	}
}

// item is one video entry in Invidious responses.
type item struct {
	Type     string `json:"type"`
	VideoID  string `json:"videoId"`
	Title    string `json:"title"`
	AuthorID string `json:"authorId"`
}

func (it item) video() model.Video {
	return model.Video{
		ID:        it.VideoID,
		Title:     it.Title,
		URL:       WatchURL(it.VideoID),
		ChannelID: it.AuthorID,
	}
}

// WatchURL returns the YouTube watch page for a video id.
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

// Search returns up to max videos matching query. Results without a video
// id are dropped.
func (c *Client) Search(ctx context.Context, query string, max int) ([]model.Video, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("type", "video")
	items, err := doRequest[[]item](ctx, c, "/api/v1/search?"+q.Encode())
	if err != nil {
		return nil, err
	}

	var out []model.Video
	for i, it := range *items {
		if max > 0 && i >= max {
			break
		}
		if it.VideoID == "" {
			continue
		}
		out = append(out, it.video())
	}
	return out, nil
}

// MatchupVideos searches for deck-vs-deck videos and keeps those from the
// given channels. An empty channel list keeps every result.
func (c *Client) MatchupVideos(ctx context.Context, deckA, deckB string, max int, channels []string) ([]model.Video, error) {
	videos, err := c.Search(ctx, analysis.MatchupQuery(deckA, deckB), max)
	if err != nil {
		return nil, err
	}
	return analysis.FilterProChannels(videos, channels), nil
}

// LatestVideo returns the most recent upload of a channel. ok is false
// when the channel has no videos.
func (c *Client) LatestVideo(ctx context.Context, channelID string) (v model.Video, ok bool, err error) {
	raw, err := doRequest[json.RawMessage](ctx, c, "/api/v1/channels/"+url.PathEscape(channelID)+"/latest")
	if err != nil {
		return model.Video{}, false, err
	}

	// Older instances answer with a bare list, newer ones wrap it.
	var items []item
	body := bytes.TrimSpace(*raw)
	if len(body) > 0 && body[0] == '[' {
		err = json.Unmarshal(body, &items)
	} else {
		var wrapped struct {
			Videos []item `json:"videos"`
		}
		err = json.Unmarshal(body, &wrapped)
		items = wrapped.Videos
	}
	if err != nil {
		return model.Video{}, false, fmt.Errorf("decode latest videos: %w", err)
	}
	if len(items) == 0 {
		return model.Video{}, false, nil
	}
	v = items[0].video()
	if v.ChannelID == "" {
		v.ChannelID = channelID
	}
	return v, true, nil
}

func doRequest[T any](ctx context.Context, c *Client, path string) (*T, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + path)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(c.timeout)
	}
	if err := c.client.DoDeadline(req, resp, deadline); err != nil {
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("GET %s: HTTP %d", path, resp.StatusCode())
	}

	var result T
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("GET %s: decode: %w", path, err)
	}
	return &result, nil
}
