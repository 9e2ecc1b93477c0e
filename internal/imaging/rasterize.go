package imaging

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/segment"
	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/digit-vision-mcp/internal/vision"
)

// RasterMode selects how ink is separated from the background.
type RasterMode string

const (
	// ModeThreshold marks pixels darker than a luminance level as ink.
	ModeThreshold RasterMode = "threshold"

	// ModeContrast marks pixels whose lightness differs from the border's
	// mean lightness by more than a distance as ink. It works for light ink
	// on a dark background as well as the usual dark on light.
	ModeContrast RasterMode = "contrast"
)

// ErrEmptyImage is returned when the source image has no pixels.
var ErrEmptyImage = errors.New("image has no pixels")

// RasterOptions controls how a photo or scan becomes a drawing canvas.
type RasterOptions struct {
	// Resolution is the side of the square canvas in cells.
	Resolution int `json:"resolution"`

	// Mode is ModeThreshold or ModeContrast.
	Mode RasterMode `json:"mode"`

	// Threshold is the luminance level (1-255) used by ModeThreshold.
	Threshold uint8 `json:"threshold"`

	// Contrast is the Lab lightness distance (0-100) used by ModeContrast.
	Contrast float64 `json:"contrast"`
}

// DefaultRasterOptions returns options matching the default canvas.
func DefaultRasterOptions() RasterOptions {
	return RasterOptions{
		Resolution: vision.DefaultResolution,
		Mode:       ModeThreshold,
		Threshold:  128,
		Contrast:   25,
	}
}

// Rasterize converts an image of a hand-drawn digit into a canvas.
//
// The image is flattened onto white (so transparent backgrounds read as
// paper), padded to a square with its own border colour so the aspect ratio
// survives, then box-filtered down to Resolution x Resolution. Each resulting
// pixel becomes one canvas cell.
//
// Column x of the canvas corresponds to pixel column x of the downscaled image
// and row y to pixel row y, matching the canvas convention that row 0 is the
// top.
func Rasterize(img image.Image, opts RasterOptions) (*vision.Canvas, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, ErrEmptyImage
	}
	if opts.Resolution < 1 {
		return nil, fmt.Errorf("invalid resolution %d", opts.Resolution)
	}

	small := squareAndShrink(img, opts.Resolution)

	var ink func(x, y int) bool
	switch opts.Mode {
	case ModeThreshold, "":
		if opts.Threshold == 0 {
			return nil, fmt.Errorf("threshold must be between 1 and 255")
		}
		ink = thresholdInk(small, opts.Threshold)
	case ModeContrast:
		if opts.Contrast < 0 || opts.Contrast > 100 {
			return nil, fmt.Errorf("contrast %.1f outside 0-100", opts.Contrast)
		}
		ink = contrastInk(small, opts.Contrast)
	default:
		return nil, fmt.Errorf("unknown raster mode %q", opts.Mode)
	}

	canvas := vision.NewCanvas(opts.Resolution)
	for y := 0; y < opts.Resolution; y++ {
		for x := 0; x < opts.Resolution; x++ {
			if ink(x, y) {
				canvas.Plot(x, y, true)
			}
		}
	}
	return canvas, nil
}

// squareAndShrink returns an n x n NRGBA image anchored at (0,0).
func squareAndShrink(img image.Image, n int) *image.NRGBA {
	b := img.Bounds()
	flat := imaging.New(b.Dx(), b.Dy(), color.White)
	flat = imaging.Overlay(flat, img, image.Pt(0, 0), 1.0)

	side := b.Dx()
	if b.Dy() > side {
		side = b.Dy()
	}
	square := imaging.New(side, side, borderColor(flat))
	square = imaging.PasteCenter(square, flat)

	return imaging.Resize(square, n, n, imaging.Box)
}

func thresholdInk(img *image.NRGBA, level uint8) func(x, y int) bool {
	bw := segment.Threshold(effect.Grayscale(img), level)
	return func(x, y int) bool {
		// Threshold paints everything below the level black.
		return bw.GrayAt(bw.Bounds().Min.X+x, bw.Bounds().Min.Y+y).Y == 0
	}
}

func contrastInk(img *image.NRGBA, distance float64) func(x, y int) bool {
	bg := borderLightness(img)
	return func(x, y int) bool {
		return math.Abs(lightness(img.NRGBAAt(x, y))-bg)*100 > distance
	}
}

// lightness returns the Lab L component in [0,1].
func lightness(c color.Color) float64 {
	cf, ok := colorful.MakeColor(c)
	if !ok {
		return 1
	}
	l, _, _ := cf.Lab()
	return l
}

// borderPixels calls fn for every pixel on the outer ring of img.
func borderPixels(img image.Image, fn func(color.Color)) {
	b := img.Bounds()
	for x := b.Min.X; x < b.Max.X; x++ {
		fn(img.At(x, b.Min.Y))
		if b.Dy() > 1 {
			fn(img.At(x, b.Max.Y-1))
		}
	}
	for y := b.Min.Y + 1; y < b.Max.Y-1; y++ {
		fn(img.At(b.Min.X, y))
		if b.Dx() > 1 {
			fn(img.At(b.Max.X-1, y))
		}
	}
}

func borderLightness(img image.Image) float64 {
	var sum float64
	var count int
	borderPixels(img, func(c color.Color) {
		sum += lightness(c)
		count++
	})
	if count == 0 {
		return 1
	}
	return sum / float64(count)
}

// borderColor is the mean colour of the image border, used as the padding
// colour when squaring.
func borderColor(img image.Image) color.Color {
	var r, g, b, count uint64
	borderPixels(img, func(c color.Color) {
		n := color.NRGBAModel.Convert(c).(color.NRGBA)
		r += uint64(n.R)
		g += uint64(n.G)
		b += uint64(n.B)
		count++
	})
	if count == 0 {
		return color.White
	}
	return color.NRGBA{R: uint8(r / count), G: uint8(g / count), B: uint8(b / count), A: 255}
}
