package imaging

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strconv"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/digit-vision-mcp/internal/vision"
)

// DefaultGridColor is used for band lines when RenderOptions.GridColor is empty.
const DefaultGridColor = "#d03030"

// drawBandLines draws a line at every band boundary of an upscaled grid.
// offsets are in grid cells; the image is cellSize pixels per cell.
func drawBandLines(img *image.NRGBA, offsets []int, cellSize int, c color.Color) {
	b := img.Bounds()
	for _, off := range offsets {
		p := off * cellSize
		if p <= b.Min.X || p >= b.Max.X {
			continue
		}
		for y := b.Min.Y; y < b.Max.Y; y++ {
			img.Set(p, y, c)
		}
	}
	for _, off := range offsets {
		p := off * cellSize
		if p <= b.Min.Y || p >= b.Max.Y {
			continue
		}
		for x := b.Min.X; x < b.Max.X; x++ {
			img.Set(x, p, c)
		}
	}
}

// bandOffsets returns the interior band boundaries for a region of side n.
func bandOffsets(n int) []int {
	bands := vision.Bands(n)
	out := make([]int, 0, len(bands))
	for _, band := range bands[1:] {
		if band.Width > 0 {
			out = append(out, band.Offset)
		}
	}
	return out
}

// parseHexColor parses "#RRGGBB" (or "#RGB"). An empty string yields
// DefaultGridColor.
func parseHexColor(hex string) (color.Color, error) {
	if hex == "" {
		hex = DefaultGridColor
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return nil, fmt.Errorf("invalid grid color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
}

// labelProximal prints each cell's value as a percentage in its top-left
// corner. Cells too small to hold a label are skipped.
func labelProximal(img *image.NRGBA, p vision.ProximalGrid, cellSize int) {
	if cellSize < labelHeight+2 {
		return
	}
	fg := color.NRGBA{R: 200, A: 255}
	bg := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	for col := 0; col < vision.ProximalSize; col++ {
		for row := 0; row < vision.ProximalSize; row++ {
			v := math.Min(p.At(col, row), 1)
			if v <= 0 {
				continue
			}
			label := strconv.Itoa(int(math.Round(v * 100)))
			if len(label)*charWidth > cellSize-2 {
				continue
			}
			drawLabel(img, col*cellSize+2, row*cellSize+2, label, fg, bg)
		}
	}
}

const (
	charWidth   = 4
	labelHeight = 7
)

// glyphs is a 3x5 pixel font for digits.
var glyphs = map[rune][]string{
	'0': {"111", "101", "101", "101", "111"},
	'1': {"010", "110", "010", "010", "111"},
	'2': {"111", "001", "111", "100", "111"},
	'3': {"111", "001", "111", "001", "111"},
	'4': {"101", "101", "111", "001", "001"},
	'5': {"111", "100", "111", "001", "111"},
	'6': {"111", "100", "111", "101", "111"},
	'7': {"111", "001", "001", "001", "001"},
	'8': {"111", "101", "111", "101", "111"},
	'9': {"111", "101", "111", "001", "111"},
}

func drawLabel(img *image.NRGBA, x, y int, text string, fg, bg color.NRGBA) {
	bounds := img.Bounds()
	in := func(px, py int) bool {
		return px >= bounds.Min.X && px < bounds.Max.X && py >= bounds.Min.Y && py < bounds.Max.Y
	}

	for dy := -1; dy < labelHeight-1; dy++ {
		for dx := -1; dx < len(text)*charWidth; dx++ {
			if in(x+dx, y+dy) {
				img.SetNRGBA(x+dx, y+dy, bg)
			}
		}
	}

	cx := x
	for _, ch := range text {
		for row, line := range glyphs[ch] {
			for col, pixel := range line {
				if pixel == '1' && in(cx+col, y+row) {
					img.SetNRGBA(cx+col, y+row, fg)
				}
			}
		}
		cx += charWidth
	}
}
