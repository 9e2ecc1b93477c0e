package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/color"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/ironsheep/digit-vision-mcp/internal/vision"
)

// ChartResult is a rendered score chart.
type ChartResult struct {
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

var (
	barColor  = color.NRGBA{R: 150, G: 150, B: 150, A: 255}
	bestColor = color.NRGBA{R: 208, G: 48, B: 48, A: 255}
)

// RenderScores draws the ten digit scores as a bar chart with the predicted
// digit highlighted.
func RenderScores(scores vision.DigitScores, prediction int) (*ChartResult, error) {
	if prediction < 0 || prediction >= vision.NumDigits {
		return nil, fmt.Errorf("prediction %d is not a digit", prediction)
	}

	p := plot.New()
	p.Title.Text = "Digit scores"
	p.X.Label.Text = "Digit"
	p.Y.Label.Text = "Score"
	p.Y.Min = 0

	all := make(plotter.Values, vision.NumDigits)
	best := make(plotter.Values, vision.NumDigits)
	names := make([]string, vision.NumDigits)
	for d, v := range scores {
		all[d] = v
		names[d] = strconv.Itoa(d)
	}
	best[prediction] = scores[prediction]

	width := vg.Points(18)
	bars, err := plotter.NewBarChart(all, width)
	if err != nil {
		return nil, fmt.Errorf("failed to build chart: %w", err)
	}
	bars.Color = barColor
	bars.LineStyle.Width = 0

	top, err := plotter.NewBarChart(best, width)
	if err != nil {
		return nil, fmt.Errorf("failed to build chart: %w", err)
	}
	top.Color = bestColor
	top.LineStyle.Width = 0

	p.Add(bars, top)
	p.NominalX(names...)

	w, err := p.WriterTo(4*vg.Inch, 3*vg.Inch, "png")
	if err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}
	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode chart: %w", err)
	}

	return &ChartResult{
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}
