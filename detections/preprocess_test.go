package detections

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flatPNG encodes a uniform single-color image.
func flatPNG(t *testing.T, width, height int, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestPrepareImageShapeAndOriginalSize(t *testing.T) {
	data, size, err := PrepareImage(flatPNG(t, 320, 200, color.RGBA{R: 255, A: 255}), 64)
	require.NoError(t, err)

	assert.Len(t, data, 3*64*64)
	assert.Equal(t, 320, size.Width)
	assert.Equal(t, 200, size.Height)
}

func TestPrepareImageNormalizationAndChannelOrder(t *testing.T) {
	// Pure red: channel 0 saturates at 1, channels 1 and 2 stay at 0.
	data, _, err := PrepareImage(flatPNG(t, 64, 64, color.RGBA{R: 255, A: 255}), 32)
	require.NoError(t, err)

	channelSize := 32 * 32
	for i := 0; i < channelSize; i++ {
		assert.InDelta(t, 1.0, data[i], 1e-6)
		assert.InDelta(t, 0.0, data[channelSize+i], 1e-6)
		assert.InDelta(t, 0.0, data[2*channelSize+i], 1e-6)
	}
}

func TestPrepareImageValuesInUnitRange(t *testing.T) {
	data, _, err := PrepareImage(flatPNG(t, 100, 50, color.RGBA{R: 120, G: 33, B: 250, A: 255}), 32)
	require.NoError(t, err)

	for _, v := range data {
		assert.GreaterOrEqual(t, v, float32(0))
		assert.LessOrEqual(t, v, float32(1))
	}
}

func TestPrepareImageRejectsGarbage(t *testing.T) {
	_, _, err := PrepareImage([]byte("definitely not an image"), 64)
	require.Error(t, err)

	var decodeErr *DecodeError
	assert.ErrorAs(t, err, &decodeErr)
}

func TestPrepareImageRejectsTruncated(t *testing.T) {
	full := flatPNG(t, 64, 64, color.RGBA{G: 200, A: 255})

	_, _, err := PrepareImage(full[:20], 64)
	require.Error(t, err)

	var decodeErr *DecodeError
	assert.ErrorAs(t, err, &decodeErr)
}
