// Package charts renders interactive HTML charts with go-echarts. Every
// renderer writes a complete page to an io.Writer, so the same code serves
// files written by the CLI and pages served by the dashboard.
package charts

import (
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/pable/go-cr-metrics/internal/model"
)

// Config holds presentation options shared by every chart.
type Config struct {
	Title    string
	Subtitle string
	Width    string
	Height   string
	Theme    string
	Smooth   bool
	Colors   []string
}

// DefaultConfig returns the default chart configuration.
func DefaultConfig() Config {
	return Config{
		Width:  "900px",
		Height: "500px",
		Theme:  "light",
		Smooth: true,
		Colors: []string{"#5470C6", "#EE6666", "#91CC75", "#FAC858"},
	}
}

func (c Config) globalOpts(title string) []charts.GlobalOpts {
	if c.Title != "" {
		title = c.Title
	}
	colors := c.Colors
	if len(colors) == 0 {
		colors = DefaultConfig().Colors
	}
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: title,
			Width:     c.Width,
			Height:    c.Height,
			Theme:     c.Theme,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: c.Subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithColorsOpts(opts.Colors(colors)),
	}
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

// ElixirTimeline renders the player and opponent elixir pools and their
// difference over the course of a battle.
func ElixirTimeline(w io.Writer, points []model.TimelinePoint, cfg Config) error {
	line := charts.NewLine()
	line.SetGlobalOptions(append(cfg.globalOpts("Elixir difference"),
		charts.WithXAxisOpts(opts.XAxis{Name: "seconds"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "elixir"}),
	)...)

	x := make([]string, len(points))
	diff := make([]opts.LineData, len(points))
	player := make([]opts.LineData, len(points))
	opponent := make([]opts.LineData, len(points))
	for i, p := range points {
		x[i] = fmt.Sprintf("%.1f", p.Time)
		diff[i] = opts.LineData{Value: round2(p.Diff)}
		player[i] = opts.LineData{Value: round2(p.Player)}
		opponent[i] = opts.LineData{Value: round2(p.Opponent)}
	}

	line.SetXAxis(x).
		AddSeries("Diff", diff).
		AddSeries("Player", player).
		AddSeries("Opponent", opponent).
		SetSeriesOptions(
			charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(cfg.Smooth)}),
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(false)}),
		)

	if err := line.Render(w); err != nil {
		return fmt.Errorf("render elixir timeline: %w", err)
	}
	return nil
}

// DailyWinRate renders per-day event win rates as a bar chart, in percent.
func DailyWinRate(w io.Writer, rates []model.DailyWinRate, cfg Config) error {
	bar := charts.NewBar()
	bar.SetGlobalOptions(append(cfg.globalOpts("Event win rate by day"),
		charts.WithYAxisOpts(opts.YAxis{Name: "win %", Min: 0, Max: 100}),
	)...)

	x := make([]string, len(rates))
	y := make([]opts.BarData, len(rates))
	for i, r := range rates {
		x[i] = r.Date
		y[i] = opts.BarData{Value: round2(r.WinRate * 100)}
	}

	bar.SetXAxis(x).
		AddSeries("Win Rate", y).
		SetSeriesOptions(charts.WithLabelOpts(opts.Label{Show: opts.Bool(false)}))

	if err := bar.Render(w); err != nil {
		return fmt.Errorf("render daily win rate: %w", err)
	}
	return nil
}

// Progress renders the trophy trend of the daily progress history.
func Progress(w io.Writer, entries []model.ProgressEntry, cfg Config) error {
	line := charts.NewLine()
	line.SetGlobalOptions(append(cfg.globalOpts("Trophy progress"),
		charts.WithYAxisOpts(opts.YAxis{Name: "trophies", Scale: opts.Bool(true)}),
	)...)

	x := make([]string, len(entries))
	trophies := make([]opts.LineData, len(entries))
	for i, e := range entries {
		x[i] = e.Date
		trophies[i] = opts.LineData{Value: e.Trophies}
	}

	line.SetXAxis(x).
		AddSeries("Trophies", trophies).
		SetSeriesOptions(
			charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(cfg.Smooth)}),
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(false)}),
		)

	if err := line.Render(w); err != nil {
		return fmt.Errorf("render progress: %w", err)
	}
	return nil
}
