package leaderboardservice

import (
	"bytes"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ChartPalette holds the colors used by rendered charts.
type ChartPalette struct {
	Background drawing.Color
	TextColor  drawing.Color
	TeamColors []drawing.Color
}

// DefaultPalette uses red, blue and gold bars on a light background.
var DefaultPalette = ChartPalette{
	Background: drawing.ColorFromHex("f8f9fa"),
	TextColor:  drawing.ColorFromHex("212529"),
	TeamColors: []drawing.Color{
		drawing.ColorFromHex("dc3545"),
		drawing.ColorFromHex("0d6efd"),
		drawing.ColorFromHex("ffc107"),
	},
}

var chartMetrics = []struct {
	label string
	value func(NormalizedStats) float64
}{
	{"Auto", func(n NormalizedStats) float64 { return n.AutoScoring }},
	{"Teleop", func(n NormalizedStats) float64 { return n.TeleopScoring }},
	{"Climb", func(n NormalizedStats) float64 { return n.ClimbRating }},
	{"Defense", func(n NormalizedStats) float64 { return n.DefenseRating }},
}

// GenerateComparisonChart produces a PNG bar chart of each team's normalized stats,
// grouped by metric.
func GenerateComparisonChart(comparisons []TeamComparison, palette ChartPalette) ([]byte, error) {
	hasData := false
	for _, c := range comparisons {
		if c.Stats.MatchesPlayed > 0 {
			hasData = true
			break
		}
	}
	if !hasData {
		return renderNoDataPlaceholder(palette)
	}

	bars := make([]chart.Value, 0, len(chartMetrics)*len(comparisons))
	for _, metric := range chartMetrics {
		for i, c := range comparisons {
			color := palette.TeamColors[i%len(palette.TeamColors)]
			bars = append(bars, chart.Value{
				Label: fmt.Sprintf("%d %s", c.Team.TeamNumber, metric.label),
				Value: metric.value(c.Normalized),
				Style: chart.Style{
					FillColor:   color,
					StrokeColor: color,
				},
			})
		}
	}

	graph := chart.BarChart{
		Title:      "Team Comparison",
		Width:      1000,
		Height:     450,
		BarWidth:   50,
		BarSpacing: 20,
		Background: chart.Style{
			FillColor: palette.Background,
			Padding:   chart.Box{Top: 40},
		},
		Canvas: chart.Style{
			FillColor: palette.Background,
		},
		TitleStyle: chart.Style{
			FontColor: palette.TextColor,
		},
		XAxis: chart.Style{
			FontColor: palette.TextColor,
			FontSize:  8,
		},
		YAxis: chart.YAxis{
			Style: chart.Style{
				FontColor: palette.TextColor,
			},
			Range: &chart.ContinuousRange{Min: 0, Max: 1},
		},
		Bars: bars,
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("render comparison chart: %w", err)
	}
	return buffer.Bytes(), nil
}

func renderNoDataPlaceholder(palette ChartPalette) ([]byte, error) {
	const (
		width  = 400
		height = 200
		msg    = "No scouting data for these teams"
	)

	graph := chart.Chart{
		Width:  width,
		Height: height,
		Background: chart.Style{
			FillColor: palette.Background,
		},
		Canvas: chart.Style{
			FillColor: palette.Background,
		},
		Elements: []chart.Renderable{
			func(r chart.Renderer, cb chart.Box, chartDefaults chart.Style) {
				r.SetFontColor(palette.TextColor)
				r.SetFontSize(12.0)
				tb := r.MeasureText(msg)
				x := (cb.Width() - tb.Width()) / 2
				y := (cb.Height() + tb.Height()) / 2
				r.Text(msg, x, y)
			},
		},
	}
	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}
