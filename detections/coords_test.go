package detections

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/visionedge/person-detection-service/models"
)

func TestMapToImageSpaceNoScaling(t *testing.T) {
	// When the original image already matches the model input size, mapping
	// reduces to a pure center-to-corner conversion.
	c := models.Candidate{CX: 320, CY: 240, W: 100, H: 60, Confidence: 0.9, ClassID: 0}
	d := MapToImageSpace(c, models.Size{Width: 640, Height: 640}, 640)

	assert.InDelta(t, 270, d.X, 1e-5)
	assert.InDelta(t, 210, d.Y, 1e-5)
	assert.InDelta(t, 100, d.Width, 1e-5)
	assert.InDelta(t, 60, d.Height, 1e-5)
	assert.Equal(t, float32(0.9), d.Confidence)
	assert.Equal(t, "person", d.Label)
	assert.Equal(t, 0, d.ClassID)
}

func TestMapToImageSpaceIndependentAxisScaling(t *testing.T) {
	// 1280x320 original with a 640 input: x doubles, y halves, matching the
	// distortion of the non-aspect-preserving resize.
	c := models.Candidate{CX: 320, CY: 320, W: 100, H: 100, Confidence: 0.5}
	d := MapToImageSpace(c, models.Size{Width: 1280, Height: 320}, 640)

	assert.InDelta(t, (320-50)*2, d.X, 1e-4)
	assert.InDelta(t, (320-50)*0.5, d.Y, 1e-4)
	assert.InDelta(t, 200, d.Width, 1e-4)
	assert.InDelta(t, 50, d.Height, 1e-4)
}

func TestMapToImageSpaceNoBoundsClamping(t *testing.T) {
	// A box hanging over the image edge passes through untouched; clamping
	// would change its area and every downstream IoU.
	c := models.Candidate{CX: 10, CY: 630, W: 80, H: 80, Confidence: 0.5}
	d := MapToImageSpace(c, models.Size{Width: 640, Height: 640}, 640)

	assert.InDelta(t, -30, d.X, 1e-5)
	assert.InDelta(t, 590, d.Y, 1e-5)
	assert.InDelta(t, 80, d.Width, 1e-5)
	assert.InDelta(t, 80, d.Height, 1e-5)
}

func TestMapToImageSpaceClampsNegativeDimensions(t *testing.T) {
	c := models.Candidate{CX: 100, CY: 100, W: -20, H: -5, Confidence: 0.5}
	d := MapToImageSpace(c, models.Size{Width: 640, Height: 640}, 640)

	assert.Equal(t, float32(0), d.Width)
	assert.Equal(t, float32(0), d.Height)
	assert.InDelta(t, 100, d.X, 1e-5)
	assert.InDelta(t, 100, d.Y, 1e-5)
}
