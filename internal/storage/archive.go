package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
)

// Export writes a zstd-compressed JSON snapshot of the database to w.
func (db *DB) Export(ctx context.Context, w io.Writer) (*Snapshot, error) {
	snap, err := db.LoadSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return nil, fmt.Errorf("zstd writer: %w", err)
	}
	if err := json.NewEncoder(enc).Encode(snap); err != nil {
		enc.Close()
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("flush archive: %w", err)
	}
	return snap, nil
}

// Import reads an archive written by Export and restores it.
func (db *DB) Import(ctx context.Context, r io.Reader) (*Snapshot, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("zstd reader: %w", err)
	}
	defer dec.Close()

	var snap Snapshot
	if err := json.NewDecoder(dec).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if err := db.RestoreSnapshot(ctx, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}
