package export

import (
	"bytes"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/wonny/liga/backend/internal/contracts"
)

const (
	barWidth   = 30
	barSpacing = 12
	chartPad   = 120
	minWidth   = 400
	chartH     = 420
)

// zoneColors paints each bar by its movement zone
var zoneColors = map[contracts.Zone]drawing.Color{
	contracts.ZoneAscenso:         drawing.ColorFromHex("2e7d32"),
	contracts.ZonePlayoffAscenso:  drawing.ColorFromHex("81c784"),
	contracts.ZonePlayoffDescenso: drawing.ColorFromHex("ffb74d"),
	contracts.ZoneDescenso:        drawing.ColorFromHex("c62828"),
	contracts.ZoneInactive:        drawing.ColorFromHex("9e9e9e"),
}

// RenderChart draws the final averages of a standings run as a PNG bar chart,
// one bar per entry in ranking order, colored by zone
func RenderChart(s *contracts.Standings) ([]byte, error) {
	if len(s.Ranking) == 0 {
		return renderPlaceholder("No standings yet")
	}

	maxValue := 0.0
	bars := make([]chart.Value, 0, len(s.Ranking))
	for _, e := range s.Ranking {
		if e.FinalAverage > maxValue {
			maxValue = e.FinalAverage
		}
		color := zoneColors[s.Zones.ZoneOf(e.PlayerID)]
		bars = append(bars, chart.Value{
			Label: barLabel(e),
			Value: e.FinalAverage,
			Style: chart.Style{
				FillColor:   color,
				StrokeColor: color,
				StrokeWidth: 1,
			},
		})
	}
	if maxValue <= 0 {
		maxValue = 1 // 전원 0점이면 축 범위가 0이 됨
	}

	width := chartPad + len(bars)*(barWidth+barSpacing)
	if width < minWidth {
		width = minWidth
	}

	graph := chart.BarChart{
		Title:      fmt.Sprintf("%s / %s", s.StageID, s.DivisionID),
		Width:      width,
		Height:     chartH,
		BarWidth:   barWidth,
		BarSpacing: barSpacing,
		Background: chart.Style{
			Padding: chart.Box{Top: 40},
		},
		YAxis: chart.YAxis{
			Name: "Final average",
			Range: &chart.ContinuousRange{
				Min: 0,
				Max: maxValue * 1.1,
			},
		},
		Bars: bars,
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}
	return buffer.Bytes(), nil
}

func barLabel(e contracts.RankingEntry) string {
	name := e.PlayerRef
	if name == "" {
		name = e.PlayerID
	}
	if e.Position == nil {
		return "- " + name
	}
	return fmt.Sprintf("%d %s", *e.Position, name)
}

// renderPlaceholder draws a single empty bar carrying msg as its label
func renderPlaceholder(msg string) ([]byte, error) {
	graph := chart.BarChart{
		Width:    minWidth,
		Height:   200,
		BarWidth: barWidth,
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: 1},
		},
		Bars: []chart.Value{{Label: msg, Value: 0}},
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("render placeholder: %w", err)
	}
	return buffer.Bytes(), nil
}
