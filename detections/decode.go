package detections

import (
	"fmt"

	"github.com/visionedge/person-detection-service/models"
)

// DecodeOutput interprets a raw [1, 4+numClasses, numCandidates] output
// tensor (batch dimension already flattened into the slice) and returns the
// candidates whose best class score passes the confidence threshold.
//
// Rows 0-3 are the center-format box (cx, cy, w, h) in model input-space
// pixels; rows 4.. are per-class scores. Candidates are scanned in ascending
// column order so downstream tie-breaking stays deterministic. The class
// argmax keeps the lowest index on exact ties; that mirrors the original
// model's behavior and is implementation-defined rather than a guaranteed
// contract.
//
// classFilter restricts emission to one class id; pass ClassFilterDisabled
// to decode every class. Candidates failing the filter or the threshold are
// dropped silently.
func DecodeOutput(output []float32, numClasses, numCandidates int, confThreshold float32, classFilter int) ([]models.Candidate, error) {
	expected := (4 + numClasses) * numCandidates
	if len(output) != expected {
		// A size mismatch means the loaded model does not match the
		// configured layout; degrading silently would corrupt every box.
		return nil, &InferenceError{Cause: fmt.Errorf(
			"unexpected output tensor size: got %d values, want %d (4+%d classes x %d candidates)",
			len(output), expected, numClasses, numCandidates)}
	}

	candidates := make([]models.Candidate, 0, 64)
	for i := 0; i < numCandidates; i++ {
		classID := 0
		score := output[4*numCandidates+i]
		for c := 1; c < numClasses; c++ {
			if s := output[(4+c)*numCandidates+i]; s > score {
				score = s
				classID = c
			}
		}

		if classFilter != ClassFilterDisabled && classID != classFilter {
			continue
		}
		if score < confThreshold {
			continue
		}

		candidates = append(candidates, models.Candidate{
			CX:         output[i],
			CY:         output[numCandidates+i],
			W:          output[2*numCandidates+i],
			H:          output[3*numCandidates+i],
			Confidence: score,
			ClassID:    classID,
		})
	}
	return candidates, nil
}
