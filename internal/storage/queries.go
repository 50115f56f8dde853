package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pable/go-cr-metrics/internal/model"
)

// LoadProgress returns every progress entry, oldest first.
func (db *DB) LoadProgress(ctx context.Context) ([]model.ProgressEntry, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT date, trophies, league_rank, win_rate FROM progress ORDER BY date`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ProgressEntry
	for rows.Next() {
		var p model.ProgressEntry
		if err := rows.Scan(&p.Date, &p.Trophies, &p.LeagueRank, &p.WinRate); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// SaveProgress replaces the stored progress history with entries.
func (db *DB) SaveProgress(ctx context.Context, entries []model.ProgressEntry) error {
	return db.replaceAll(ctx, "progress", func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT OR REPLACE INTO progress(date, trophies, league_rank, win_rate) VALUES (?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, p := range entries {
			if _, err := stmt.ExecContext(ctx, p.Date, p.Trophies, p.LeagueRank, p.WinRate); err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadEventStats returns the stored event snapshot, ordered by event id.
func (db *DB) LoadEventStats(ctx context.Context) ([]model.EventStatEntry, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT event_id, wins, losses, deck, date FROM event_stats ORDER BY event_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.EventStatEntry
	for rows.Next() {
		var (
			e    model.EventStatEntry
			deck string
		)
		if err := rows.Scan(&e.EventID, &e.Wins, &e.Losses, &deck, &e.Date); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(deck), &e.Deck); err != nil {
			return nil, fmt.Errorf("event %s deck: %w", e.EventID, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// SaveEventStats replaces the stored event snapshot with entries.
func (db *DB) SaveEventStats(ctx context.Context, entries []model.EventStatEntry) error {
	return db.replaceAll(ctx, "event_stats", func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT OR REPLACE INTO event_stats(event_id, wins, losses, deck, date) VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, e := range entries {
			deck, err := marshalList(e.Deck)
			if err != nil {
				return err
			}
			if _, err := stmt.ExecContext(ctx, e.EventID, e.Wins, e.Losses, deck, e.Date); err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadRuns returns every Grand Challenge run with its matches in play order.
func (db *DB) LoadRuns(ctx context.Context) ([]model.GCRun, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT run_id, deck, created_at FROM gc_runs ORDER BY created_at, run_id`)
	if err != nil {
		return nil, err
	}
	var (
		runs  []model.GCRun
		index = map[string]int{}
	)
	for rows.Next() {
		var (
			r          model.GCRun
			deck, when string
		)
		if err := rows.Scan(&r.RunID, &deck, &when); err != nil {
			rows.Close()
			return nil, err
		}
		if err := json.Unmarshal([]byte(deck), &r.Deck); err != nil {
			rows.Close()
			return nil, fmt.Errorf("run %s deck: %w", r.RunID, err)
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339Nano, when)
		index[r.RunID] = len(runs)
		runs = append(runs, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	mrows, err := db.conn.QueryContext(ctx,
		`SELECT run_id, win, elo FROM gc_matches ORDER BY run_id, seq`)
	if err != nil {
		return nil, err
	}
	defer mrows.Close()
	for mrows.Next() {
		var (
			id  string
			win int
			m   model.GCMatch
		)
		if err := mrows.Scan(&id, &win, &m.Elo); err != nil {
			return nil, err
		}
		m.Win = win != 0
		if i, ok := index[id]; ok {
			runs[i].Matches = append(runs[i].Matches, m)
		}
	}
	return runs, mrows.Err()
}

// SaveRuns replaces every stored run and match with runs.
func (db *DB) SaveRuns(ctx context.Context, runs []model.GCRun) error {
	return db.replaceAll(ctx, "gc_runs", func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM gc_matches`); err != nil {
			return err
		}
		for _, r := range runs {
			deck, err := marshalList(r.Deck)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO gc_runs(run_id, deck, created_at) VALUES (?, ?, ?)`,
				r.RunID, deck, r.CreatedAt.UTC().Format(time.RFC3339Nano)); err != nil {
				return err
			}
			for seq, m := range r.Matches {
				if _, err := tx.ExecContext(ctx,
					`INSERT INTO gc_matches(run_id, seq, win, elo) VALUES (?, ?, ?, ?)`,
					r.RunID, seq, boolInt(m.Win), m.Elo); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// LoadWatchState returns the last-seen video per channel and deck per player.
func (db *DB) LoadWatchState(ctx context.Context) (model.WatchState, error) {
	st := model.WatchState{
		VideoLast: map[string]string{},
		DeckLast:  map[string][]string{},
	}

	rows, err := db.conn.QueryContext(ctx, `SELECT channel_id, video_id FROM watch_videos`)
	if err != nil {
		return st, err
	}
	for rows.Next() {
		var ch, vid string
		if err := rows.Scan(&ch, &vid); err != nil {
			rows.Close()
			return st, err
		}
		st.VideoLast[ch] = vid
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return st, err
	}

	drows, err := db.conn.QueryContext(ctx, `SELECT tag, deck FROM watch_decks`)
	if err != nil {
		return st, err
	}
	defer drows.Close()
	for drows.Next() {
		var tag, deck string
		if err := drows.Scan(&tag, &deck); err != nil {
			return st, err
		}
		var cards []string
		if err := json.Unmarshal([]byte(deck), &cards); err != nil {
			return st, fmt.Errorf("watch deck %s: %w", tag, err)
		}
		st.DeckLast[tag] = cards
	}
	return st, drows.Err()
}

// SaveWatchState replaces the stored watch state with st.
func (db *DB) SaveWatchState(ctx context.Context, st model.WatchState) error {
	return db.replaceAll(ctx, "watch_videos", func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM watch_decks`); err != nil {
			return err
		}
		for ch, vid := range st.VideoLast {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO watch_videos(channel_id, video_id) VALUES (?, ?)`, ch, vid); err != nil {
				return err
			}
		}
		for tag, cards := range st.DeckLast {
			deck, err := marshalList(cards)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO watch_decks(tag, deck) VALUES (?, ?)`, tag, deck); err != nil {
				return err
			}
		}
		return nil
	})
}

// QueryRaw runs an arbitrary query and returns column names and every row
// rendered as strings. NULL values render as "NULL".
func (db *DB) QueryRaw(query string) ([]string, [][]string, error) {
	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}
	var out [][]string
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		row := make([]string, len(cols))
		for i, v := range vals {
			switch x := v.(type) {
			case nil:
				row[i] = "NULL"
			case []byte:
				row[i] = string(x)
			default:
				row[i] = fmt.Sprint(x)
			}
		}
		out = append(out, row)
	}
	return cols, out, rows.Err()
}

// replaceAll clears table and refills it through fill inside one transaction.
func (db *DB) replaceAll(ctx context.Context, table string, fill func(*sql.Tx) error) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
		return fmt.Errorf("clear %s: %w", table, err)
	}
	if err := fill(tx); err != nil {
		return fmt.Errorf("write %s: %w", table, err)
	}
	return tx.Commit()
}

func marshalList(v []string) (string, error) {
	if v == nil {
		v = []string{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
