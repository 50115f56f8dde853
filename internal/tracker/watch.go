package tracker

import (
	"context"
	"sort"

	"github.com/pable/go-cr-metrics/internal/analysis"
	"github.com/pable/go-cr-metrics/internal/model"
)

// DefaultSimilarity is the deck overlap below which a deck counts as changed.
const DefaultSimilarity = 0.75

// CheckNewVideo compares the latest upload of a channel with the last one
// seen. It returns the video and true the first time a new id shows up.
func (t *Tracker) CheckNewVideo(ctx context.Context, latest model.Video) (model.Video, bool) {
	if latest.ID == "" {
		return model.Video{}, false
	}
	st := t.loadWatch(ctx)
	if st.VideoLast[latest.ChannelID] == latest.ID {
		return model.Video{}, false
	}
	st.VideoLast[latest.ChannelID] = latest.ID
	t.saveWatch(ctx, st)
	return latest, true
}

// CheckDeckChange compares the deck of the most recent battle in battles
// with the deck last stored for tag. When fewer than similarity of the
// eight slots are shared it stores the new deck and returns it sorted.
func (t *Tracker) CheckDeckChange(ctx context.Context, tag string, battles []model.BattleRecord, similarity float64) ([]string, bool) {
	if len(battles) == 0 || len(battles[0].Team) == 0 {
		return nil, false
	}
	latest := battles[0].Team[0].CardNames()
	sort.Strings(latest)

	st := t.loadWatch(ctx)
	same := 0.0
	if prev := st.DeckLast[tag]; len(prev) > 0 {
		same = analysis.DeckOverlap(latest, prev)
	}
	if same >= similarity {
		return nil, false
	}
	st.DeckLast[tag] = latest
	t.saveWatch(ctx, st)
	return latest, true
}

func (t *Tracker) loadWatch(ctx context.Context) model.WatchState {
	st, err := t.store.LoadWatchState(ctx)
	if err != nil {
		t.warn(err, "load watch state")
	}
	if st.VideoLast == nil {
		st.VideoLast = map[string]string{}
	}
	if st.DeckLast == nil {
		st.DeckLast = map[string][]string{}
	}
	return st
}

func (t *Tracker) saveWatch(ctx context.Context, st model.WatchState) {
	if err := t.store.SaveWatchState(ctx, st); err != nil {
		t.warn(err, "save watch state")
	}
}
