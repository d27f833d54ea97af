package detections

import (
	"errors"
	"fmt"
)

// Sentinel errors for conditions the HTTP layer maps to fixed responses.
var (
	// ErrNoImageData is returned when a request carries an empty body.
	ErrNoImageData = errors.New("No image data provided")

	// ErrModelNotLoaded is returned while no usable engine session exists.
	// It persists until an operator fixes the deployment.
	ErrModelNotLoaded = errors.New("Model not loaded")
)

// DecodeError wraps a failure to decode the request image bytes. It maps to
// a 400-class response.
type DecodeError struct {
	Cause error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode image: %v", e.Cause)
}

func (e *DecodeError) Unwrap() error { return e.Cause }

// ParameterError reports a non-numeric or out-of-range request parameter.
// It maps to a 400-class response.
type ParameterError struct {
	Name  string
	Value string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s=%q: must be a number in [0, 1]", e.Name, e.Value)
}

// InferenceError wraps a failure raised by the inference engine or a model
// whose output does not match the configured layout. It maps to a 500-class
// response; the message is surfaced to the caller for diagnosis.
type InferenceError struct {
	Cause error
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("inference failed: %v", e.Cause)
}

func (e *InferenceError) Unwrap() error { return e.Cause }
