package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/pable/go-cr-metrics/internal/model"
	"github.com/pable/go-cr-metrics/internal/storage"
)

func TestWriteHTML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chart.html")
	err := writeHTML(path, func(f *os.File) error {
		_, err := f.WriteString("<html></html>")
		return err
	})
	if err != nil {
		t.Fatalf("writeHTML: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read chart: %v", err)
	}
	if string(data) != "<html></html>" {
		t.Errorf("unexpected chart content %q", data)
	}
}

// TestWriteHTML_RenderError: the error is returned and no partial file is left.
func TestWriteHTML_RenderError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chart.html")
	boom := errors.New("render failed")
	err := writeHTML(path, func(f *os.File) error {
		f.WriteString("<html>")
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("want render error, got %v", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("partial chart left behind: %v", err)
	}
}

// TestWriteHTML_CloseError: a close failure after a successful render is
// reported rather than dropped.
func TestWriteHTML_CloseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chart.html")
	err := writeHTML(path, func(f *os.File) error {
		// Closing here makes the close in writeHTML fail.
		return f.Close()
	})
	if err == nil || !strings.Contains(err.Error(), "close chart file") {
		t.Errorf("want close error, got %v", err)
	}
}

// seedDB creates a database at path with one cached battle and one
// progress day.
func seedDB(t *testing.T, path string) {
	t.Helper()
	db, err := storage.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	ctx := context.Background()
	battles := []model.BattleRecord{{
		Type:       model.BattleTypePvP,
		BattleTime: "20240716T120000.000Z",
		Team:       []model.Participant{{Crowns: 1}},
		Opponent:   []model.Participant{{Crowns: 0}},
	}}
	if _, err := db.InsertBattles(ctx, "ABC", battles); err != nil {
		t.Fatalf("InsertBattles: %v", err)
	}
	if err := db.SaveProgress(ctx, []model.ProgressEntry{{Date: "2024-07-16", Trophies: 7000}}); err != nil {
		t.Fatalf("SaveProgress: %v", err)
	}
}

func TestDescribeDB(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crmetrics.db")
	seedDB(t, path)

	var buf bytes.Buffer
	if err := describeDB(context.Background(), &buf, path); err != nil {
		t.Fatalf("describeDB: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"1 cached battles for 1 players", "1 progress days", "0 Grand Challenge runs"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestDrop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crmetrics.db")
	seedDB(t, path)

	oldPath, oldForce := dbPath, dropForce
	t.Cleanup(func() { dbPath, dropForce = oldPath, oldForce })
	dbPath = path

	c := &cobra.Command{}
	c.SetContext(context.Background())

	dropForce = false
	if err := runDrop(c, nil); err != nil {
		t.Fatalf("runDrop: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("database removed without --force: %v", err)
	}

	dropForce = true
	if err := runDrop(c, nil); err != nil {
		t.Fatalf("runDrop --force: %v", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("database still present: %v", err)
	}
	if err := runDrop(c, nil); err != nil {
		t.Errorf("dropping a missing database: %v", err)
	}
}
