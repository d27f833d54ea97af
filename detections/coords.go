package detections

import (
	"github.com/chewxy/math32"

	"github.com/visionedge/person-detection-service/models"
)

// MapToImageSpace converts a center-format model-space candidate into a
// corner-format detection in original image pixels. Each axis is rescaled
// independently by originalSize/inputSize, which inverts the distortion the
// non-aspect-preserving resize introduced; inputSize must be the same value
// the preprocessor used.
//
// The result is NOT clamped to the image bounds: a box that hangs over an
// edge is passed through as-is, because clamping changes its area and
// therefore every IoU computed against it. Callers that need in-bounds
// boxes clamp on their side. Negative widths or heights from malformed
// model output are clamped to zero.
func MapToImageSpace(c models.Candidate, originalSize models.Size, inputSize int) models.Detection {
	scaleX := float32(originalSize.Width) / float32(inputSize)
	scaleY := float32(originalSize.Height) / float32(inputSize)

	w := math32.Max(0, c.W)
	h := math32.Max(0, c.H)

	return models.Detection{
		X:          (c.CX - w/2) * scaleX,
		Y:          (c.CY - h/2) * scaleY,
		Width:      w * scaleX,
		Height:     h * scaleY,
		Confidence: c.Confidence,
		Label:      ClassName(c.ClassID),
		ClassID:    c.ClassID,
	}
}
