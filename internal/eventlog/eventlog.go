// Package eventlog reads card-play event logs recorded during a battle.
//
// A log is either a JSON array of play events or JSON Lines with one event
// per line. Follow tails a JSONL file while it is being written.
package eventlog

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/pable/go-cr-metrics/internal/model"
)

// Read decodes every play event in r. Blank lines are ignored in JSONL
// input; a malformed line is an error carrying its line number.
func Read(r io.Reader) ([]model.PlayEvent, error) {
	br := bufio.NewReader(r)
	first, err := peekNonSpace(br)
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read event log: %w", err)
	}

	if first == '[' {
		var events []model.PlayEvent
		if err := json.NewDecoder(br).Decode(&events); err != nil {
			return nil, fmt.Errorf("decode event array: %w", err)
		}
		return events, nil
	}

	var events []model.PlayEvent
	sc := bufio.NewScanner(br)
	line := 0
	for sc.Scan() {
		line++
		text := bytes.TrimSpace(sc.Bytes())
		if len(text) == 0 {
			continue
		}
		var e model.PlayEvent
		if err := json.Unmarshal(text, &e); err != nil {
			return nil, fmt.Errorf("decode event line %d: %w", line, err)
		}
		events = append(events, e)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read event log: %w", err)
	}
	return events, nil
}

// ReadFile opens path and decodes it with Read.
func ReadFile(path string) ([]model.PlayEvent, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open event log: %w", err)
	}
	defer f.Close()
	return Read(f)
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		}
		return b, br.UnreadByte()
	}
}

// Follower tails a JSONL event log and hands each complete line to a
// callback. Lines that fail to decode are logged and skipped.
type Follower struct {
	path   string
	poll   time.Duration
	logger zerolog.Logger
}

// NewFollower returns a Follower for path. A backup poll interval catches
// writes whose notifications are delayed or coalesced.
func NewFollower(path string, logger zerolog.Logger) *Follower {
	return &Follower{
		path:   path,
		poll:   250 * time.Millisecond,
		logger: logger.With().Str("component", "eventlog").Str("path", path).Logger(),
	}
}

// Follow reads the events already in the file, then waits for appended
// lines until ctx is cancelled. It returns ctx.Err() on cancellation.
func (f *Follower) Follow(ctx context.Context, fn func(model.PlayEvent)) error {
	file, err := os.Open(f.path)
	if err != nil {
		return fmt.Errorf("open event log: %w", err)
	}
	defer file.Close()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(f.path); err != nil {
		return fmt.Errorf("watch event log: %w", err)
	}

	reader := bufio.NewReader(file)
	var pending []byte
	drain := func() error {
		for {
			chunk, err := reader.ReadBytes('\n')
			pending = append(pending, chunk...)
			if err == io.EOF {
				// Keep a partial trailing line until its newline arrives.
				return nil
			}
			if err != nil {
				return err
			}
			f.emit(pending, fn)
			pending = pending[:0]
		}
	}

	if err := drain(); err != nil {
		return fmt.Errorf("read event log: %w", err)
	}

	ticker := time.NewTicker(f.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Write == fsnotify.Write {
				if err := drain(); err != nil {
					return fmt.Errorf("read event log: %w", err)
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			f.logger.Warn().Err(err).Msg("file watcher error")
		case <-ticker.C:
			if err := drain(); err != nil {
				return fmt.Errorf("read event log: %w", err)
			}
		}
	}
}

func (f *Follower) emit(line []byte, fn func(model.PlayEvent)) {
	text := bytes.TrimSpace(line)
	if len(text) == 0 {
		return
	}
	var e model.PlayEvent
	if err := json.Unmarshal(text, &e); err != nil {
		f.logger.Warn().Err(err).Msg("skipping malformed event line")
		return
	}
	fn(e)
}
