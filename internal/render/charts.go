package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"go-microplastic-inspector/internal/projection"
)

// ChartSize is the minimum pixel size of a rendered chart.
// Charts grow wider when there are more images than fit.
type ChartSize struct {
	Width  int
	Height int
}

const (
	maxBarWidth  = 50
	minBarWidth  = 8
	barSpacing   = 12
	chartPadding = 120
)

// categoryColors follows models.Categories order
var categoryColors = []drawing.Color{
	drawing.ColorFromHex("4e79a7"),
	drawing.ColorFromHex("f28e2b"),
	drawing.ColorFromHex("59a14f"),
	drawing.ColorFromHex("e15759"),
}

// barLayout picks a bar width and chart width for n bars
func barLayout(n int, size ChartSize) (barWidth, width int) {
	width = size.Width
	if n == 0 {
		return maxBarWidth, width
	}
	barWidth = (width-chartPadding)/n - barSpacing
	if barWidth > maxBarWidth {
		barWidth = maxBarWidth
	}
	if barWidth < minBarWidth {
		barWidth = minBarWidth
		width = n*(barWidth+barSpacing) + chartPadding
	}
	return barWidth, width
}

// RenderCompositionPNG draws one stacked bar per image, one segment per category
func RenderCompositionPNG(w io.Writer, data projection.ChartData, size ChartSize) error {
	if data.Len() == 0 {
		return writeBlank(w, size)
	}

	barWidth, width := barLayout(data.Len(), size)
	bars := make([]chart.StackedBar, data.Len())
	for i, label := range data.Labels {
		values := make([]chart.Value, len(data.Composition))
		for c, series := range data.Composition {
			values[c] = chart.Value{
				Value: float64(series.Counts[i]),
				Style: chart.Style{
					FillColor:   categoryColors[c%len(categoryColors)],
					StrokeColor: drawing.ColorWhite,
					StrokeWidth: 1,
				},
			}
			if series.Counts[i] > 0 {
				values[c].Label = string(series.Category)
			}
		}
		bars[i] = chart.StackedBar{Name: label, Width: barWidth, Values: values}
	}

	sbc := chart.StackedBarChart{
		Title:      "Particle composition per image",
		Width:      width,
		Height:     size.Height,
		BarSpacing: barSpacing,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		Bars:       bars,
	}

	var buf bytes.Buffer
	if err := sbc.Render(chart.PNG, &buf); err != nil {
		return fmt.Errorf("rendering composition chart: %w", err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// RenderAccuracyPNG draws one bar per image with its accuracy on a 0-100 axis
func RenderAccuracyPNG(w io.Writer, data projection.ChartData, size ChartSize) error {
	if data.Len() == 0 {
		return writeBlank(w, size)
	}

	barWidth, width := barLayout(data.Len(), size)
	bars := make([]chart.Value, data.Len())
	for i, label := range data.Labels {
		bars[i] = chart.Value{
			Value: data.Accuracy[i],
			Label: label,
			Style: chart.Style{
				FillColor:   drawing.ColorFromHex("76b7b2"),
				StrokeColor: drawing.ColorFromHex("4e79a7"),
				StrokeWidth: 1,
			},
		}
	}

	bc := chart.BarChart{
		Title:      "Detection accuracy (%)",
		Width:      width,
		Height:     size.Height,
		BarWidth:   barWidth,
		BarSpacing: barSpacing,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		YAxis: chart.YAxis{
			Name:  "%",
			Range: &chart.ContinuousRange{Min: 0, Max: 100},
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := bc.Render(chart.PNG, &buf); err != nil {
		return fmt.Errorf("rendering accuracy chart: %w", err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// writeBlank emits a white placeholder for an empty axis
func writeBlank(w io.Writer, size ChartSize) error {
	img := image.NewRGBA(image.Rect(0, 0, size.Width, size.Height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	return png.Encode(w, img)
}
