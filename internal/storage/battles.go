package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pable/go-cr-metrics/internal/model"
)

// CachedBattle is one stored battle-log row.
type CachedBattle struct {
	Tag        string          `json:"tag"`
	BattleTime string          `json:"battle_time"`
	Type       string          `json:"type"`
	Payload    json.RawMessage `json:"payload"`
	FetchedAt  string          `json:"fetched_at"`
}

// InsertBattles caches battles for tag. Battles already stored under the
// same tag and battle time are left untouched. Returns the number of new
// rows.
func (db *DB) InsertBattles(ctx context.Context, tag string, battles []model.BattleRecord) (int, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO battles(tag, battle_time, type, payload, fetched_at)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	added := 0
	for i := range battles {
		b := &battles[i]
		payload := []byte(b.Raw)
		if len(payload) == 0 {
			if payload, err = json.Marshal(b); err != nil {
				return 0, fmt.Errorf("encode battle %s: %w", b.BattleTime, err)
			}
		}
		res, err := stmt.ExecContext(ctx, tag, b.BattleTime, b.Type, string(payload), now)
		if err != nil {
			return 0, err
		}
		if n, _ := res.RowsAffected(); n > 0 {
			added++
		}
	}
	return added, tx.Commit()
}

// ListBattles returns up to limit cached battles for tag, most recent
// first. A limit of zero or less returns every battle.
func (db *DB) ListBattles(ctx context.Context, tag string, limit int) ([]model.BattleRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := db.conn.QueryContext(ctx, `
		SELECT payload FROM battles WHERE tag = ?
		ORDER BY battle_time DESC LIMIT ?`, tag, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.BattleRecord
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var b model.BattleRecord
		if err := json.Unmarshal([]byte(payload), &b); err != nil {
			return nil, fmt.Errorf("decode cached battle: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// TagSummary is one row of ListTags.
type TagSummary struct {
	Tag     string
	Battles int
	Latest  string
}

// ListTags returns every player tag with cached battles.
func (db *DB) ListTags(ctx context.Context) ([]TagSummary, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT tag, COUNT(1), MAX(battle_time) FROM battles
		GROUP BY tag ORDER BY tag`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TagSummary
	for rows.Next() {
		var s TagSummary
		if err := rows.Scan(&s.Tag, &s.Battles, &s.Latest); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (db *DB) listCachedBattles(ctx context.Context) ([]CachedBattle, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT tag, battle_time, type, payload, fetched_at FROM battles
		ORDER BY tag, battle_time`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CachedBattle
	for rows.Next() {
		var (
			c       CachedBattle
			payload string
		)
		if err := rows.Scan(&c.Tag, &c.BattleTime, &c.Type, &payload, &c.FetchedAt); err != nil {
			return nil, err
		}
		c.Payload = json.RawMessage(payload)
		out = append(out, c)
	}
	return out, rows.Err()
}
