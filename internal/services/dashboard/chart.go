package dashboard

import (
	"bytes"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/mhollowell/tradedeck/internal/models"
)

const (
	chartWidth  = 900
	chartHeight = 400
)

// RenderChart renders a chart spec to PNG bytes.
func RenderChart(spec *models.ChartSpec) ([]byte, error) {
	if spec == nil || len(spec.Series) == 0 {
		return nil, fmt.Errorf("empty chart spec")
	}

	series := spec.Series[0]
	switch series.Kind {
	case models.SeriesLine:
		return renderLine(spec.Title, series)
	case models.SeriesBars:
		return renderBars(spec.Title, series)
	case models.SeriesDonut:
		return renderDonut(spec.Title, series)
	default:
		return nil, fmt.Errorf("unknown series kind %q", series.Kind)
	}
}

// renderLine draws the equity curve: a green line with a faint fill and the
// final value annotated, matching the original page's account growth view.
func renderLine(title string, series models.ChartSeries) ([]byte, error) {
	if len(series.Points) == 0 {
		return nil, fmt.Errorf("no data points")
	}

	xValues := make([]time.Time, len(series.Points))
	yValues := make([]float64, len(series.Points))
	for i, p := range series.Points {
		xValues[i] = p.Date
		yValues[i] = p.Value
	}

	// A single-trade journal is a valid input; draw a flat day-long segment
	// ending at the trade so the renderer has a real x-range.
	if len(xValues) == 1 {
		xValues = []time.Time{xValues[0].AddDate(0, 0, -1), xValues[0]}
		yValues = []float64{yValues[0], yValues[0]}
	}

	lineColor := drawing.ColorFromHex(series.Color)
	equitySeries := chart.TimeSeries{
		Name: series.Name,
		Style: chart.Style{
			StrokeColor: lineColor,
			StrokeWidth: 2.5,
			FillColor:   lineColor.WithAlpha(20),
		},
		XValues: xValues,
		YValues: yValues,
	}

	graph := chart.Chart{
		Title:  title,
		Width:  chartWidth,
		Height: chartHeight,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			TickPosition: chart.TickPositionBetweenTicks,
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).Format("Jan 06")
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("$%.0f", f)
				}
				return ""
			},
		},
		Series: []chart.Series{
			equitySeries,
			chart.LastValueAnnotationSeries(equitySeries, func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("$%.0f", f)
				}
				return ""
			}),
		},
	}

	// A flat curve has no y-spread; give the axis one so it can translate.
	minY, maxY := yValues[0], yValues[0]
	for _, v := range yValues[1:] {
		if v < minY {
			minY = v
		}
		if v > maxY {
			maxY = v
		}
	}
	if minY == maxY {
		graph.YAxis.Range = &chart.ContinuousRange{Min: minY - 1, Max: maxY + 1}
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}

// renderBars draws per-trade or per-month P&L bars, colored per sign.
func renderBars(title string, series models.ChartSeries) ([]byte, error) {
	if len(series.Points) == 0 {
		return nil, fmt.Errorf("no data points")
	}

	bars := make([]chart.Value, len(series.Points))
	for i, p := range series.Points {
		label := p.Label
		if !p.Date.IsZero() {
			label = p.Date.Format("01-02")
		}
		color := drawing.ColorFromHex(p.Color)
		bars[i] = chart.Value{
			Value: p.Value,
			Label: label,
			Style: chart.Style{
				FillColor:   color,
				StrokeColor: color,
			},
		}
	}

	graph := chart.BarChart{
		Title:    title,
		Width:    chartWidth,
		Height:   chartHeight,
		BarWidth: barWidth(len(bars)),
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("$%.0f", f)
				}
				return ""
			},
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}

// barWidth keeps dense series inside the canvas.
func barWidth(n int) int {
	if n == 0 {
		return 60
	}
	w := (chartWidth - 100) / n
	if w > 60 {
		return 60
	}
	if w < 4 {
		return 4
	}
	return w
}

// renderDonut draws the win/loss/break-even share.
func renderDonut(title string, series models.ChartSeries) ([]byte, error) {
	if len(series.Points) == 0 {
		return nil, fmt.Errorf("no data points")
	}

	values := make([]chart.Value, len(series.Points))
	for i, p := range series.Points {
		color := drawing.ColorFromHex(p.Color)
		values[i] = chart.Value{
			Value: p.Value,
			Label: fmt.Sprintf("%s (%.0f)", p.Label, p.Value),
			Style: chart.Style{
				FillColor:   color,
				StrokeColor: color,
			},
		}
	}

	graph := chart.DonutChart{
		Title:  title,
		Width:  chartHeight, // square canvas
		Height: chartHeight,
		Values: values,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}
