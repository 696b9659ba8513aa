// Package chart draws the bar chart shown for a dataset: one group of bars
// per row for the first two numeric columns.
package chart

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/nconklindev/sweeper/internal/converter"
	"github.com/nconklindev/sweeper/internal/types"

	"github.com/charmbracelet/lipgloss"
	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// MaxSeries is how many numeric columns are plotted.
const MaxSeries = 2

var ErrNoNumericData = errors.New("no numeric data to chart")

var seriesColors = []drawing.Color{gochart.ColorBlue, gochart.ColorGreen}

// Data is the plotted slice of a dataset. Values is indexed [row][series].
type Data struct {
	Series []string
	Labels []string
	Values [][]float64
}

// Extract picks the first MaxSeries numeric columns and at most maxRows rows.
// Missing cells plot as zero. maxRows <= 0 means all rows.
func Extract(ds *types.Dataset, maxRows int) (*Data, error) {
	numeric := converter.NumericColumns(ds)
	if len(numeric) == 0 || ds.Len() == 0 {
		return nil, ErrNoNumericData
	}
	if len(numeric) > MaxSeries {
		numeric = numeric[:MaxSeries]
	}

	rows := ds.Len()
	if maxRows > 0 && rows > maxRows {
		rows = maxRows
	}

	data := &Data{Values: make([][]float64, rows), Labels: make([]string, rows)}
	for _, idx := range numeric {
		data.Series = append(data.Series, ds.Columns[idx].Name)
	}

	for i := 0; i < rows; i++ {
		data.Labels[i] = strconv.Itoa(i)
		data.Values[i] = make([]float64, len(numeric))
		for s, idx := range numeric {
			if v := ds.Columns[idx].Values[i]; !v.Missing {
				data.Values[i][s] = v.Num
			}
		}
	}

	return data, nil
}

func (d *Data) bounds() (float64, float64) {
	lo, hi := 0.0, 0.0
	for _, row := range d.Values {
		for _, v := range row {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if hi == lo {
		hi = lo + 1
	}
	return lo, hi
}

// RenderPNG draws the data as a PNG bar chart. The width grows to fit all bars.
func RenderPNG(data *Data, width, height int) ([]byte, error) {
	const barWidth, barSpacing = 16, 6

	var bars []gochart.Value
	for i, row := range data.Values {
		for s, v := range row {
			bars = append(bars, gochart.Value{
				Label: data.Labels[i],
				Value: v,
				Style: gochart.Style{
					FillColor:   seriesColors[s%len(seriesColors)],
					StrokeColor: seriesColors[s%len(seriesColors)],
				},
			})
		}
	}
	if len(bars) == 0 {
		return nil, ErrNoNumericData
	}

	if need := len(bars)*(barWidth+barSpacing) + 120; need > width {
		width = need
	}

	lo, hi := data.bounds()
	bc := gochart.BarChart{
		Title:      strings.Join(data.Series, " / "),
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16}},
		Width:      width,
		Height:     height,
		BarWidth:   barWidth,
		BarSpacing: barSpacing,
		YAxis:      gochart.YAxis{Range: &gochart.ContinuousRange{Min: lo, Max: hi}},
		Bars:       bars,
	}

	var buf bytes.Buffer
	if err := bc.Render(gochart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}
	return buf.Bytes(), nil
}

var textColors = []lipgloss.Color{"#FF8C42", "#FFB84D"}

// RenderText draws the data as horizontal bars for a terminal. Negative
// values are drawn by magnitude.
func RenderText(data *Data, width int) string {
	labelWidth := 0
	for _, name := range data.Series {
		labelWidth = max(labelWidth, len(name))
	}
	barSpace := max(width-labelWidth-20, 10)

	peak := 0.0
	for _, row := range data.Values {
		for _, v := range row {
			peak = math.Max(peak, math.Abs(v))
		}
	}

	var b strings.Builder
	for i, name := range data.Series {
		style := lipgloss.NewStyle().Foreground(textColors[i%len(textColors)])
		b.WriteString(style.Render("■ " + name))
		b.WriteString("  ")
	}
	b.WriteString("\n\n")

	for i, row := range data.Values {
		for sIdx, v := range row {
			n := 0
			if peak > 0 {
				n = int(math.Round(math.Abs(v) / peak * float64(barSpace)))
			}
			style := lipgloss.NewStyle().Foreground(textColors[sIdx%len(textColors)])
			label := ""
			if sIdx == 0 {
				label = data.Labels[i]
			}
			fmt.Fprintf(&b, "%4s %-*s %s %s\n", label, labelWidth, data.Series[sIdx],
				style.Render(strings.Repeat("█", n)), strconv.FormatFloat(v, 'g', 6, 64))
		}
	}

	return b.String()
}
