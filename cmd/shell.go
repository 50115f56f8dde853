package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pable/go-cr-metrics/internal/aggregator"
	"github.com/pable/go-cr-metrics/internal/analysis"
	"github.com/pable/go-cr-metrics/internal/clash"
	"github.com/pable/go-cr-metrics/internal/report"
	"github.com/pable/go-cr-metrics/internal/storage"
	"github.com/pable/go-cr-metrics/internal/tracker"
)

var (
	cPrompt   = color.New(color.FgCyan, color.Bold)
	cError    = color.New(color.FgRed, color.Bold)
	cHeader   = color.New(color.FgCyan, color.Bold)
	cCmd      = color.New(color.FgYellow, color.Bold)
	cGreeting = color.New(color.Bold)
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive REPL session",
	Long:  "Open a persistent session against the local database. Works offline. Type 'help' for available commands.",
	Args:  cobra.NoArgs,
	RunE:  runShell,
}

// session is the state shared by shell commands.
type session struct {
	ctx context.Context
	db  *storage.DB
	t   *tracker.Tracker
}

func runShell(cmd *cobra.Command, _ []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()
	s := &session{ctx: cmd.Context(), db: db, t: newTracker(db)}

	cGreeting.Println("crmetrics shell")
	cMuted.Println("type 'help' or 'exit'")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		cPrompt.Print("crmetrics")
		cMuted.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		tokens := strings.Fields(line)
		name, args := tokens[0], tokens[1:]

		switch name {
		case "exit", "quit":
			return nil
		case "help":
			shellHelp()
		case "list":
			s.list()
		case "stats":
			tag := cfg.Player.Tag
			if len(args) > 0 {
				tag = args[0]
			}
			if tag == "" {
				cError.Fprintln(os.Stderr, "usage: stats <tag> [limit]")
				continue
			}
			limit := 10
			if len(args) > 1 {
				if n, err := strconv.Atoi(args[1]); err == nil && n > 0 {
					limit = n
				}
			}
			s.stats(clash.NormalizeTag(tag), limit)
		case "progress":
			s.progress()
		case "events":
			s.events()
		case "runs":
			s.runs()
		case "run":
			if len(args) == 0 {
				cError.Fprintln(os.Stderr, "usage: run <run-id>")
				continue
			}
			s.run(args[0])
		default:
			cWarn.Fprintf(os.Stderr, "unknown command %q, type 'help'\n", name)
		}
	}
	return nil
}

func shellHelp() {
	fmt.Println()
	type entry struct{ cmd, desc string }
	rows := []entry{
		{"list", "list players with cached battles"},
		{"stats [tag] [limit]", "recent battles and summary from the cache"},
		{"progress", "daily trophy history"},
		{"events", "stored event stats"},
		{"runs", "Grand Challenge runs"},
		{"run <run-id>", "summary of one Grand Challenge run"},
		{"help", "show this message"},
		{"exit / quit", "close the session"},
	}
	for _, r := range rows {
		fmt.Print("  ")
		cCmd.Printf("%-24s", r.cmd)
		fmt.Println(r.desc)
	}
	fmt.Println()
}

func (s *session) list() {
	tags, err := s.db.ListTags(s.ctx)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	if len(tags) == 0 {
		cMuted.Println("No battles cached yet.")
		return
	}
	report.PrintTags(os.Stdout, tags, time.Now())
}

func (s *session) stats(tag string, limit int) {
	battles, err := s.db.ListBattles(s.ctx, tag, 0)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	if len(battles) == 0 {
		fmt.Fprintf(os.Stderr, "no cached battles for #%s\n", tag)
		return
	}
	cHeader.Fprintf(os.Stdout, "\n#%s  |  recent win rate %.0f%%\n\n", tag, analysis.ComputeWinRate(battles[:min(25, len(battles))])*100)
	report.PrintBattleTable(os.Stdout, battles[:min(limit, len(battles))], time.Now())
	report.PrintSummary(os.Stdout, aggregator.Aggregate(battles))
}

func (s *session) progress() {
	entries := s.t.LoadProgress(s.ctx)
	if len(entries) == 0 {
		cMuted.Println("No progress recorded yet.")
		return
	}
	report.PrintProgress(os.Stdout, entries)
}

func (s *session) events() {
	entries := s.t.LoadEventStats(s.ctx)
	if len(entries) == 0 {
		cMuted.Println("No event stats stored yet.")
		return
	}
	report.PrintEventStats(os.Stdout, entries)
}

func (s *session) runs() {
	runs := s.t.Runs(s.ctx)
	if len(runs) == 0 {
		cMuted.Println("No Grand Challenge runs yet.")
		return
	}
	report.PrintRuns(os.Stdout, runs, time.Now())
}

func (s *session) run(id string) {
	sum, err := s.t.SummarizeRun(s.ctx, id)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	report.PrintGCSummary(os.Stdout, id, sum)
}
