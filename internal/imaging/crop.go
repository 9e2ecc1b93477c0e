package imaging

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/digit-vision-mcp/internal/vision"
)

// CropResult contains the cropped image data
type CropResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// SourceRect maps a bounding box on a rasterized canvas of side n back to
// pixel coordinates of the source image. It inverts the squaring done by
// Rasterize, so the rectangle may extend past the image on the padded axis;
// the result is clipped to the image bounds.
func SourceRect(bounds image.Rectangle, box vision.BoundingBox, n int) (image.Rectangle, error) {
	if n < 1 {
		return image.Rectangle{}, fmt.Errorf("invalid resolution %d", n)
	}
	if !box.Within(n) {
		return image.Rectangle{}, fmt.Errorf("%w: %s outside %dx%d canvas", vision.ErrInvalidBoxGeometry, box, n, n)
	}

	w, h := bounds.Dx(), bounds.Dy()
	side := w
	if h > side {
		side = h
	}
	offX := (side - w) / 2
	offY := (side - h) / 2

	scale := func(v int) int { return v * side / n }
	r := image.Rect(
		scale(box.Left)-offX, scale(box.Top)-offY,
		scale(box.Right+1)-offX, scale(box.Bottom+1)-offY,
	).Add(bounds.Min)

	r = r.Intersect(bounds)
	if r.Empty() {
		return image.Rectangle{}, fmt.Errorf("%w: %s maps outside the image", vision.ErrInvalidBoxGeometry, box)
	}
	return r, nil
}

// CropDigit extracts the source pixels under a canvas bounding box, padded by
// margin pixels on each side where the image allows.
func CropDigit(img image.Image, box vision.BoundingBox, n, margin int) (*image.NRGBA, error) {
	r, err := SourceRect(img.Bounds(), box, n)
	if err != nil {
		return nil, err
	}
	if margin > 0 {
		r = r.Inset(-margin).Intersect(img.Bounds())
	}
	return imaging.Crop(img, r), nil
}

// CropDigitPNG is CropDigit encoded for transport.
func CropDigitPNG(img image.Image, box vision.BoundingBox, n, margin int) (*CropResult, error) {
	cropped, err := CropDigit(img, box, n, margin)
	if err != nil {
		return nil, err
	}

	encoded, err := EncodePNG(cropped)
	if err != nil {
		return nil, err
	}
	return &CropResult{
		Width:       cropped.Bounds().Dx(),
		Height:      cropped.Bounds().Dy(),
		ImageBase64: encoded,
		MimeType:    "image/png",
	}, nil
}
