package ledger

import (
	"bytes"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/lakmalw/cense/internal/models"
)

// RenderHistoryChart renders the snapshot history as a PNG line chart.
// Returns raw PNG bytes.
func RenderHistoryChart(snapshots []models.PortfolioSnapshot) ([]byte, error) {
	if len(snapshots) < 2 {
		return nil, fmt.Errorf("need at least 2 snapshots, got %d", len(snapshots))
	}

	xValues := make([]time.Time, 0, len(snapshots))
	yValues := make([]float64, 0, len(snapshots))
	for _, snap := range snapshots {
		date, err := time.Parse("2006-01-02", snap.Date)
		if err != nil {
			continue
		}
		xValues = append(xValues, date)
		yValues = append(yValues, snap.TotalValue)
	}
	if len(xValues) < 2 {
		return nil, fmt.Errorf("need at least 2 parseable snapshots")
	}

	valueSeries := chart.TimeSeries{
		Name: "Portfolio Value",
		Style: chart.Style{
			StrokeColor: drawing.ColorFromHex("2563eb"),
			StrokeWidth: 2.5,
		},
		XValues: xValues,
		YValues: yValues,
	}

	graph := chart.Chart{
		Title:  "Portfolio Value",
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			TickPosition: chart.TickPositionBetweenTicks,
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).Format("02 Jan")
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.0fk", f/1000)
				}
				return ""
			},
		},
		Series: []chart.Series{valueSeries},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderSectorChart renders active-holdings value by sector as a PNG pie
// chart. Returns raw PNG bytes.
func RenderSectorChart(investments []models.Investment) ([]byte, error) {
	bySector := make(map[string]float64)
	for _, inv := range investments {
		if inv.Status != models.StatusActive {
			continue
		}
		sector := inv.Sector
		if sector == "" {
			sector = "Uncategorized"
		}
		bySector[sector] += inv.MarketValue()
	}
	if len(bySector) == 0 {
		return nil, fmt.Errorf("no active holdings to chart")
	}

	values := make([]chart.Value, 0, len(bySector))
	for sector, value := range bySector {
		values = append(values, chart.Value{Label: sector, Value: value})
	}

	graph := chart.PieChart{
		Title:  "Sector Allocation",
		Width:  600,
		Height: 600,
		Values: values,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}
