package model

import (
	"encoding/json"
	"time"
)

// Battle types as reported by the vendor battle log.
const (
	BattleTypePvP    = "PvP"
	BattleTypeRanked = "ranked"
)

// BattleTimeLayout is the vendor's fixed battleTime format.
const BattleTimeLayout = "20060102T150405.000Z"

// DateLayout is the calendar-day key used by progress and event stats.
const DateLayout = "2006-01-02"

// ---- Vendor records ----

type Card struct {
	Name       string `json:"name"`
	Level      int    `json:"level,omitempty"`
	ElixirCost int    `json:"elixirCost,omitempty"`
}

type Participant struct {
	Tag    string `json:"tag,omitempty"`
	Name   string `json:"name,omitempty"`
	Crowns int    `json:"crowns"`
	Cards  []Card `json:"cards,omitempty"`
}

// CardNames returns the participant's deck as a list of names.
func (p Participant) CardNames() []string {
	out := make([]string, 0, len(p.Cards))
	for _, c := range p.Cards {
		out = append(out, c.Name)
	}
	return out
}

type EventMode struct {
	ID   int    `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// BattleRecord is one entry of a player's battle log. The vendor returns
// logs most-recent-first.
type BattleRecord struct {
	Type       string        `json:"type"`
	BattleTime string        `json:"battleTime"`
	EventMode  *EventMode    `json:"eventMode,omitempty"`
	Team       []Participant `json:"team,omitempty"`
	Opponent   []Participant `json:"opponent,omitempty"`

	// Raw is the payload as received, kept for free-text scans.
	Raw json.RawMessage `json:"-"`
}

func (b *BattleRecord) UnmarshalJSON(data []byte) error {
	type plain BattleRecord
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*b = BattleRecord(p)
	b.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// Sides returns the first participant of each side. ok is false when
// either side is missing.
func (b *BattleRecord) Sides() (team, opponent Participant, ok bool) {
	if len(b.Team) == 0 || len(b.Opponent) == 0 {
		return Participant{}, Participant{}, false
	}
	return b.Team[0], b.Opponent[0], true
}

// Won reports whether the team side strictly out-crowned the opponent.
// Equal crowns is a loss.
func (b *BattleRecord) Won() bool {
	team, opp, ok := b.Sides()
	return ok && team.Crowns > opp.Crowns
}

// Side identifies who played a card.
type Side string

const (
	SidePlayer   Side = "player"
	SideOpponent Side = "opponent"
)

// PlayEvent is one card deployment inside a battle. Time is seconds since
// the battle started; input streams are not guaranteed to be sorted.
type PlayEvent struct {
	Time   float64 `json:"time"`
	Side   Side    `json:"side"`
	Card   string  `json:"card"`
	Elixir float64 `json:"elixir"`
}

type CardCatalogEntry struct {
	Name       string `json:"name"`
	ElixirCost int    `json:"elixirCost"`
}

type Player struct {
	Tag        string `json:"tag"`
	Name       string `json:"name"`
	Trophies   int    `json:"trophies"`
	LeagueRank int    `json:"leagueRank"`
	ExpLevel   int    `json:"expLevel"`
}

// ---- Derived records ----

type DeckRating struct {
	AverageElixir float64  `json:"average_elixir"`
	Score         float64  `json:"score"`
	Tips          []string `json:"tips"`
}

type ProgressEntry struct {
	Date       string  `json:"date"`
	Trophies   int     `json:"trophies"`
	LeagueRank int     `json:"league_rank"`
	WinRate    float64 `json:"win_rate"`
}

type EventStatEntry struct {
	EventID string   `json:"event_id"`
	Wins    int      `json:"wins"`
	Losses  int      `json:"losses"`
	Deck    []string `json:"deck"`
	Date    string   `json:"date"`
}

// WR returns wins/(wins+losses), or 0 when no games were played.
func (e *EventStatEntry) WR() float64 {
	total := e.Wins + e.Losses
	if total == 0 {
		return 0
	}
	return float64(e.Wins) / float64(total)
}

type DailyWinRate struct {
	Date    string  `json:"date"`
	WinRate float64 `json:"win_rate"`
}

type TimelinePoint struct {
	Time     float64 `json:"time"`
	Diff     float64 `json:"diff"`
	Player   float64 `json:"player"`
	Opponent float64 `json:"opponent"`
}

// ---- Grand Challenge ----

type GCMatch struct {
	Win bool `json:"win"`
	Elo int  `json:"elo"`
}

type GCRun struct {
	RunID     string    `json:"run_id"`
	Deck      []string  `json:"deck"`
	Matches   []GCMatch `json:"matches"`
	CreatedAt time.Time `json:"created_at"`
}

type GCSummary struct {
	Wins   int     `json:"wins"`
	Total  int     `json:"total"`
	AvgElo float64 `json:"avg_elo"`
}

// ---- Watch state ----

type WatchState struct {
	VideoLast map[string]string   `json:"video_last"`
	DeckLast  map[string][]string `json:"deck_last"`
}

// ---- Meta / video records ----

type Video struct {
	ID        string `json:"videoId"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	ChannelID string `json:"channelId"`
}

type TopDeck struct {
	Name    string   `json:"name"`
	Cards   []string `json:"cards"`
	Usage   float64  `json:"usage"`
	WinRate float64  `json:"win_rate"`
}

type RankedPlayer struct {
	Tag        string  `json:"tag"`
	Name       string  `json:"name"`
	RankPoints float64 `json:"rank_points"`
	WinRate    float64 `json:"win_rate"`
}

type MergeCardStat struct {
	Name    string `json:"name"`
	Wins    int    `json:"wins"`
	Battles int    `json:"battles"`
	Turns   int    `json:"turns"`
}
