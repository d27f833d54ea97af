package models

import (
	"encoding/json"
	"time"
)

// Size is an image extent in pixels, recorded before any resizing.
type Size struct {
	Width  int
	Height int
}

// MarshalJSON encodes a Size as the two-element [width, height] array used
// by the /detect response contract.
func (s Size) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{s.Width, s.Height})
}

// UnmarshalJSON decodes the [width, height] array form.
func (s *Size) UnmarshalJSON(data []byte) error {
	var pair [2]int
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	s.Width = pair[0]
	s.Height = pair[1]
	return nil
}

// Candidate is a pre-suppression detection proposal decoded straight from
// the raw model output. The box is center-format (cx, cy, w, h) in model
// input-space pixels. Candidates only live for the duration of one
// inference call.
type Candidate struct {
	CX         float32
	CY         float32
	W          float32
	H          float32
	Confidence float32
	ClassID    int
}

// Detection is the externally visible result unit: a corner-format box in
// original image pixels, top-left origin.
type Detection struct {
	X          float32 `json:"x"`
	Y          float32 `json:"y"`
	Width      float32 `json:"width"`
	Height     float32 `json:"height"`
	Confidence float32 `json:"confidence"`
	Label      string  `json:"label"`
	ClassID    int     `json:"class_id"`
}

// ProcessingTimings collects per-stage durations for one request.
type ProcessingTimings struct {
	RequestID   string
	ImageDecode time.Duration
	Resize      time.Duration
	Preprocess  time.Duration
	Inference   time.Duration
	Postprocess time.Duration
	Suppression time.Duration
	Total       time.Duration
}
