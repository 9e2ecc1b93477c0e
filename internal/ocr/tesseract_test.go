package ocr

import (
	"image"
	"image/color"
	"image/draw"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// digitImage renders text with basicfont and scales it up so strokes are a
// few pixels wide, like a finger drawing.
func digitImage(text string, scale int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, len(text)*7+8, 21))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Black),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(4), Y: fixed.I(15)},
	}
	d.DrawString(text)

	b := img.Bounds()
	return imaging.Resize(img, b.Dx()*scale, b.Dy()*scale, imaging.NearestNeighbor)
}

func skipWithoutTesseract(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		return
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "tesseract") || strings.Contains(msg, "language") || strings.Contains(msg, "library") {
		t.Skipf("Tesseract not available: %v", err)
	}
}

func TestParseDigit(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"7", 7},
		{" 0\n", 0},
		{"", -1},
		{"12", -1},
		{"a", -1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, parseDigit(tt.text), "text %q", tt.text)
	}
}

func TestPrepare(t *testing.T) {
	small := image.NewRGBA(image.Rect(0, 0, 10, 20))

	got := prepare(small)
	assert.Equal(t, minHeight, got.Bounds().Dy())
	assert.Equal(t, uint8(255), got.NRGBAAt(0, 0).R, "margin is white")

	big := image.NewRGBA(image.Rect(0, 0, 200, 300))
	got = prepare(big)
	assert.Equal(t, image.Rect(0, 0, 200+2*margin, 300+2*margin), got.Bounds())
}

func TestRecognizeDigit_NoImage(t *testing.T) {
	_, err := RecognizeDigit(nil)
	assert.ErrorIs(t, err, ErrNoImage)

	_, err = RecognizeDigit(image.NewRGBA(image.Rectangle{}))
	assert.ErrorIs(t, err, ErrNoImage)
}

func TestRecognizeDigit_RenderedDigits(t *testing.T) {
	for _, digit := range []string{"1", "4", "7"} {
		t.Run(digit, func(t *testing.T) {
			reading, err := RecognizeDigit(digitImage(digit, 6))
			skipWithoutTesseract(t, err)
			require.NoError(t, err)

			assert.Equal(t, DefaultLanguage, reading.Language)
			assert.GreaterOrEqual(t, reading.Confidence, 0.0)
			assert.LessOrEqual(t, reading.Confidence, 1.0)
			if reading.Recognized() {
				assert.Equal(t, digit, reading.Text)
			}
		})
	}
}

func TestRecognizeDigit_BlankPage(t *testing.T) {
	blank := image.NewRGBA(image.Rect(0, 0, 40, 40))
	draw.Draw(blank, blank.Bounds(), image.White, image.Point{}, draw.Src)

	reading, err := RecognizeDigit(blank)
	skipWithoutTesseract(t, err)
	require.NoError(t, err)

	assert.False(t, reading.Recognized())
	assert.Zero(t, reading.Confidence)
}

func TestRecognizeDigitLang_BadLanguage(t *testing.T) {
	_, err := RecognizeDigitLang(digitImage("3", 4), "zz_not_a_language")
	assert.Error(t, err)
}
