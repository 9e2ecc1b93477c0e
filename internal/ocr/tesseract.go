package ocr

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
)

// DefaultLanguage is the Tesseract language used for digit reading.
const DefaultLanguage = "eng"

// digitWhitelist restricts Tesseract to the ten digits.
const digitWhitelist = "0123456789"

// minHeight is the glyph height Tesseract reads reliably; smaller crops are
// upscaled to it.
const minHeight = 96

// margin is the white border added around a crop. Tesseract's single
// character mode misreads glyphs that touch the image edge.
const margin = 16

// ErrNoImage is returned when RecognizeDigit is given nothing to read.
var ErrNoImage = errors.New("ocr: no image")

// DigitReading is Tesseract's opinion of a single drawn digit.
type DigitReading struct {
	// Digit is 0-9, or -1 when Tesseract did not read a digit.
	Digit int `json:"digit"`

	// Text is the raw recognized text after trimming.
	Text string `json:"text"`

	// Confidence is the best symbol confidence in 0-1.
	Confidence float64 `json:"confidence"`

	// Language is the Tesseract language that was loaded.
	Language string `json:"language"`
}

// Recognized reports whether Tesseract produced a digit.
func (r *DigitReading) Recognized() bool { return r.Digit >= 0 }

// RecognizeDigit reads one digit from img using single-character page
// segmentation and a digit-only whitelist.
//
// The image is converted to greyscale, surrounded by a white margin and
// upscaled when small before being handed to Tesseract in memory. An empty
// reading is not an error: the result has Digit -1.
func RecognizeDigit(img image.Image) (*DigitReading, error) {
	return RecognizeDigitLang(img, DefaultLanguage)
}

// RecognizeDigitLang is RecognizeDigit with an explicit Tesseract language.
func RecognizeDigitLang(img image.Image, language string) (*DigitReading, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, ErrNoImage
	}

	encoded, err := encode(prepare(img))
	if err != nil {
		return nil, err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(language); err != nil {
		return nil, fmt.Errorf("failed to set language: %w", err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_CHAR); err != nil {
		return nil, fmt.Errorf("failed to set page segmentation: %w", err)
	}
	if err := client.SetWhitelist(digitWhitelist); err != nil {
		return nil, fmt.Errorf("failed to set whitelist: %w", err)
	}
	if err := client.SetImageFromBytes(encoded); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	reading := &DigitReading{
		Digit:    parseDigit(text),
		Text:     strings.TrimSpace(text),
		Language: language,
	}

	// Boxes can fail on some Tesseract builds; the text is still usable.
	if boxes, err := client.GetBoundingBoxes(gosseract.RIL_SYMBOL); err == nil {
		for _, box := range boxes {
			if c := box.Confidence / 100.0; c > reading.Confidence {
				reading.Confidence = c
			}
		}
	}
	if !reading.Recognized() {
		reading.Confidence = 0
	}

	return reading, nil
}

// prepare returns a greyscale copy of img with a white margin, upscaled so
// its height is at least minHeight.
func prepare(img image.Image) *image.NRGBA {
	gray := imaging.Grayscale(img)

	b := gray.Bounds()
	framed := imaging.New(b.Dx()+2*margin, b.Dy()+2*margin, color.White)
	framed = imaging.PasteCenter(framed, gray)

	if h := framed.Bounds().Dy(); h < minHeight {
		framed = imaging.Resize(framed, 0, minHeight, imaging.Lanczos)
	}
	return framed
}

func encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// parseDigit returns the single digit in text, or -1.
func parseDigit(text string) int {
	text = strings.TrimSpace(text)
	if len(text) != 1 {
		return -1
	}
	d, err := strconv.Atoi(text)
	if err != nil {
		return -1
	}
	return d
}
