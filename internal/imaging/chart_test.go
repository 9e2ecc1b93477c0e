package imaging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/digit-vision-mcp/internal/vision"
)

func TestRenderScores(t *testing.T) {
	scores := vision.DigitScores{0: 1.07, 6: 0.3, 8: 0.25}

	res, err := RenderScores(scores, 0)
	require.NoError(t, err)
	assert.Equal(t, "image/png", res.MimeType)

	img := decodeResult(t, res.ImageBase64)
	assert.Positive(t, img.Bounds().Dx())
	assert.Positive(t, img.Bounds().Dy())
}

func TestRenderScores_AllZero(t *testing.T) {
	_, err := RenderScores(vision.DigitScores{}, 0)
	require.NoError(t, err)
}

func TestRenderScores_BadPrediction(t *testing.T) {
	_, err := RenderScores(vision.DigitScores{}, 10)
	assert.ErrorContains(t, err, "not a digit")

	_, err = RenderScores(vision.DigitScores{}, -1)
	assert.Error(t, err)
}
