package detections

import (
	"fmt"

	ort "github.com/yalue/onnxruntime_go"
)

// InferFunc is the black-box engine seam: one forward pass from input
// tensor data to output tensor data. The pipeline never looks behind it.
type InferFunc func(input []float32) ([]float32, error)

// Session is one engine instance the pool can hand out. Implementations
// must be safe for use by one request at a time; the pool enforces that no
// two requests share a session concurrently.
type Session interface {
	Infer(input []float32) ([]float32, error)
	Destroy()
}

// ModelSession wraps an ONNX Runtime session with its pre-allocated input
// and output tensors.
type ModelSession struct {
	Session *ort.AdvancedSession
	Input   *ort.Tensor[float32]
	Output  *ort.Tensor[float32]
}

// Infer copies input into the session's input tensor, runs the model and
// returns a copy of the output tensor data. The copy keeps the result valid
// after the session goes back to the pool.
func (m *ModelSession) Infer(input []float32) ([]float32, error) {
	dst := m.Input.GetData()
	if len(input) != len(dst) {
		return nil, &InferenceError{Cause: fmt.Errorf(
			"input tensor holds %d values, got %d", len(dst), len(input))}
	}
	copy(dst, input)

	if err := m.Session.Run(); err != nil {
		return nil, &InferenceError{Cause: err}
	}

	out := m.Output.GetData()
	result := make([]float32, len(out))
	copy(result, out)
	return result, nil
}

// Destroy releases the session and its tensors.
func (m *ModelSession) Destroy() {
	if m.Session != nil {
		m.Session.Destroy()
	}
	if m.Input != nil {
		m.Input.Destroy()
	}
	if m.Output != nil {
		m.Output.Destroy()
	}
}
