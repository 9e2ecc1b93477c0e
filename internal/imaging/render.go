package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/digit-vision-mcp/internal/vision"
)

// MaxCellSize bounds the upscale factor of rendered grids.
const MaxCellSize = 64

// RenderOptions controls grid rendering.
type RenderOptions struct {
	// CellSize is the edge length in pixels of one grid cell (1-64).
	CellSize int

	// GridColor is a "#RRGGBB" colour for cell or band lines. Empty means
	// DefaultGridColor.
	GridColor string

	// Lines draws cell boundaries on proximal grids and band boundaries on
	// boards.
	Lines bool

	// Labels prints each proximal cell's value as a percentage.
	Labels bool
}

// DefaultRenderOptions returns options suitable for viewing in a chat client.
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{CellSize: 16, Lines: true}
}

// RenderResult contains a rendered grid as a base64 PNG.
type RenderResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	CellSize    int    `json:"cell_size"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// RenderProximal draws a 5x5 proximal grid with each cell as a CellSize square.
// A cell is black with opacity min(value, 1) over a white page, so saturated
// regions look solid and faint ones fade.
func RenderProximal(p vision.ProximalGrid, opts RenderOptions) (*RenderResult, error) {
	lineColor, err := checkRenderOptions(opts)
	if err != nil {
		return nil, err
	}

	ink := image.NewNRGBA(image.Rect(0, 0, vision.ProximalSize, vision.ProximalSize))
	for col := 0; col < vision.ProximalSize; col++ {
		for row := 0; row < vision.ProximalSize; row++ {
			alpha := math.Min(math.Max(p.At(col, row), 0), 1) * 255
			ink.SetNRGBA(col, row, color.NRGBA{A: uint8(math.Round(alpha))})
		}
	}

	page := imaging.New(vision.ProximalSize, vision.ProximalSize, color.White)
	page = imaging.Overlay(page, ink, image.Pt(0, 0), 1.0)

	big := enlarge(page, opts.CellSize)
	if opts.Lines {
		drawBandLines(big, []int{1, 2, 3, 4}, opts.CellSize, lineColor)
	}
	if opts.Labels {
		labelProximal(big, p, opts.CellSize)
	}
	return encodeResult(big, opts.CellSize)
}

// RenderBoard draws a boolean grid: active cells black, the rest white. With
// Lines set, the five downsampling bands of the grid are outlined.
func RenderBoard(g *vision.RawGrid, opts RenderOptions) (*RenderResult, error) {
	lineColor, err := checkRenderOptions(opts)
	if err != nil {
		return nil, err
	}
	if g == nil || g.Size() == 0 {
		return nil, ErrEmptyImage
	}

	n := g.Size()
	page := imaging.New(n, n, color.White)
	for col := 0; col < n; col++ {
		for row := 0; row < n; row++ {
			if g.At(col, row) {
				page.SetNRGBA(col, row, color.NRGBA{A: 255})
			}
		}
	}

	big := enlarge(page, opts.CellSize)
	if opts.Lines {
		drawBandLines(big, bandOffsets(n), opts.CellSize, lineColor)
	}
	return encodeResult(big, opts.CellSize)
}

func checkRenderOptions(opts RenderOptions) (color.Color, error) {
	if opts.CellSize < 1 || opts.CellSize > MaxCellSize {
		return nil, fmt.Errorf("cell size %d outside 1-%d", opts.CellSize, MaxCellSize)
	}
	return parseHexColor(opts.GridColor)
}

func enlarge(img *image.NRGBA, cellSize int) *image.NRGBA {
	b := img.Bounds()
	return imaging.Resize(img, b.Dx()*cellSize, b.Dy()*cellSize, imaging.NearestNeighbor)
}

func encodeResult(img *image.NRGBA, cellSize int) (*RenderResult, error) {
	encoded, err := EncodePNG(img)
	if err != nil {
		return nil, err
	}
	return &RenderResult{
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
		CellSize:    cellSize,
		ImageBase64: encoded,
		MimeType:    "image/png",
	}, nil
}

// EncodePNG encodes img as base64 PNG.
func EncodePNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
