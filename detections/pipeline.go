package detections

import (
	"strconv"
	"time"

	"github.com/visionedge/person-detection-service/models"
)

// Pipeline sequences preprocessing, inference, decoding, coordinate mapping
// and non-maximum suppression for one request. It holds only immutable
// layout configuration, so a single Pipeline is shared by all requests.
type Pipeline struct {
	InputSize     int
	NumClasses    int
	NumCandidates int
	// ClassFilter restricts results to one class id
	// (ClassFilterDisabled turns filtering off).
	ClassFilter int
}

// NewPipeline returns a Pipeline with the YOLO11 layout and the default
// person-only class filter.
func NewPipeline() *Pipeline {
	return &Pipeline{
		InputSize:     InputSize,
		NumClasses:    NumClasses,
		NumCandidates: NumCandidates,
		ClassFilter:   PersonClassID,
	}
}

// Result is the stable triple the serving layer consumes.
type Result struct {
	Detections   []models.Detection `json:"detections"`
	Count        int                `json:"count"`
	OriginalSize models.Size        `json:"original_size"`
}

// Run executes one detection request end to end: preprocess, infer, decode,
// map, suppress, strictly in that order. The first failing stage
// short-circuits the rest. infer is the externally supplied engine call;
// timings may be nil.
func (p *Pipeline) Run(imageBytes []byte, confThreshold, iouThreshold float32, infer InferFunc, timings *models.ProcessingTimings) (*Result, error) {
	if timings == nil {
		timings = &models.ProcessingTimings{}
	}
	if len(imageBytes) == 0 {
		return nil, ErrNoImageData
	}
	if err := validateThreshold("confidence", confThreshold); err != nil {
		return nil, err
	}
	if err := validateThreshold("iou", iouThreshold); err != nil {
		return nil, err
	}

	prepStart := time.Now()
	input, originalSize, err := PrepareImage(imageBytes, p.InputSize)
	timings.Preprocess = time.Since(prepStart)
	if err != nil {
		return nil, err
	}

	inferStart := time.Now()
	output, err := infer(input)
	timings.Inference = time.Since(inferStart)
	if err != nil {
		return nil, err
	}

	postStart := time.Now()
	candidates, err := DecodeOutput(output, p.NumClasses, p.NumCandidates, confThreshold, p.ClassFilter)
	if err != nil {
		return nil, err
	}

	boxes := make([]models.Detection, len(candidates))
	for i, c := range candidates {
		boxes[i] = MapToImageSpace(c, originalSize, p.InputSize)
	}
	timings.Postprocess = time.Since(postStart)

	nmsStart := time.Now()
	detections := NonMaxSuppression(boxes, iouThreshold)
	timings.Suppression = time.Since(nmsStart)

	if detections == nil {
		detections = []models.Detection{}
	}
	return &Result{
		Detections:   detections,
		Count:        len(detections),
		OriginalSize: originalSize,
	}, nil
}

func validateThreshold(name string, v float32) error {
	// v != v catches NaN.
	if v != v || v < 0 || v > 1 {
		return &ParameterError{Name: name, Value: strconv.FormatFloat(float64(v), 'g', -1, 32)}
	}
	return nil
}
