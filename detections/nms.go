package detections

import (
	"sort"

	"github.com/chewxy/math32"

	"github.com/visionedge/person-detection-service/models"
)

// IoU computes the intersection-over-union of two corner-format boxes.
//
// A box with zero or negative area never contributes to suppression: it
// scores 0 against everything, including itself. Boxes with no spatial
// overlap score exactly 0.
func IoU(a, b models.Detection) float32 {
	ix1 := math32.Max(a.X, b.X)
	iy1 := math32.Max(a.Y, b.Y)
	ix2 := math32.Min(a.X+a.Width, b.X+b.Width)
	iy2 := math32.Min(a.Y+a.Height, b.Y+b.Height)

	intersection := math32.Max(0, ix2-ix1) * math32.Max(0, iy2-iy1)

	areaA := a.Width * a.Height
	areaB := b.Width * b.Height
	if areaA <= 0 || areaB <= 0 {
		return 0
	}

	union := areaA + areaB - intersection
	if union <= 0 {
		return 0
	}
	return intersection / union
}

// NonMaxSuppression deduplicates overlapping boxes greedily: the
// highest-confidence box is kept and every remaining box overlapping it
// with IoU >= iouThreshold is discarded, then the process repeats with the
// next survivor. Suppression is class-agnostic.
//
// The sort is stable, so boxes with exactly equal confidence keep their
// incoming relative order. The input slice is not modified; the returned
// slice is ordered by non-increasing confidence. O(n^2) over the candidate
// count in the worst case.
func NonMaxSuppression(boxes []models.Detection, iouThreshold float32) []models.Detection {
	if len(boxes) == 0 {
		return nil
	}

	ordered := make([]models.Detection, len(boxes))
	copy(ordered, boxes)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Confidence > ordered[j].Confidence
	})

	kept := make([]models.Detection, 0, len(ordered))
	suppressed := make([]bool, len(ordered))

	for i := 0; i < len(ordered); i++ {
		if suppressed[i] {
			continue
		}
		kept = append(kept, ordered[i])
		for j := i + 1; j < len(ordered); j++ {
			if suppressed[j] {
				continue
			}
			if IoU(ordered[i], ordered[j]) >= iouThreshold {
				suppressed[j] = true
			}
		}
	}
	return kept
}
