package detections

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testClasses    = 3
	testCandidates = 4
)

// newTestOutput allocates a zeroed [1, 4+testClasses, testCandidates]
// tensor.
func newTestOutput() []float32 {
	return make([]float32, (4+testClasses)*testCandidates)
}

func setBox(out []float32, i int, cx, cy, w, h float32) {
	out[i] = cx
	out[testCandidates+i] = cy
	out[2*testCandidates+i] = w
	out[3*testCandidates+i] = h
}

func setScore(out []float32, i, class int, score float32) {
	out[(4+class)*testCandidates+i] = score
}

func TestDecodeOutputBasic(t *testing.T) {
	out := newTestOutput()
	setBox(out, 0, 100, 120, 40, 60)
	setScore(out, 0, 0, 0.9)
	setScore(out, 0, 1, 0.3)

	candidates, err := DecodeOutput(out, testClasses, testCandidates, 0.45, ClassFilterDisabled)
	require.NoError(t, err)
	require.Len(t, candidates, 1)

	c := candidates[0]
	assert.Equal(t, float32(100), c.CX)
	assert.Equal(t, float32(120), c.CY)
	assert.Equal(t, float32(40), c.W)
	assert.Equal(t, float32(60), c.H)
	assert.Equal(t, float32(0.9), c.Confidence)
	assert.Equal(t, 0, c.ClassID)
}

func TestDecodeOutputThresholdAboveOneYieldsNothing(t *testing.T) {
	out := newTestOutput()
	for i := 0; i < testCandidates; i++ {
		setScore(out, i, 0, 1.0)
	}

	candidates, err := DecodeOutput(out, testClasses, testCandidates, 1.1, ClassFilterDisabled)
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestDecodeOutputThresholdIsInclusive(t *testing.T) {
	out := newTestOutput()
	setScore(out, 0, 0, 0.45)

	candidates, err := DecodeOutput(out, testClasses, testCandidates, 0.45, ClassFilterDisabled)
	require.NoError(t, err)
	assert.Len(t, candidates, 1)
}

func TestDecodeOutputClassFilter(t *testing.T) {
	out := newTestOutput()
	// Candidate 0: class 1 wins. Candidate 1: class 0 wins.
	setScore(out, 0, 0, 0.6)
	setScore(out, 0, 1, 0.8)
	setScore(out, 1, 0, 0.7)

	candidates, err := DecodeOutput(out, testClasses, testCandidates, 0.45, 0)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, 0, candidates[0].ClassID)
	assert.Equal(t, float32(0.7), candidates[0].Confidence)

	// Disabling the filter surfaces both.
	candidates, err = DecodeOutput(out, testClasses, testCandidates, 0.45, ClassFilterDisabled)
	require.NoError(t, err)
	assert.Len(t, candidates, 2)
}

func TestDecodeOutputArgmaxTieBreaksToLowestIndex(t *testing.T) {
	out := newTestOutput()
	setScore(out, 0, 1, 0.8)
	setScore(out, 0, 2, 0.8)

	candidates, err := DecodeOutput(out, testClasses, testCandidates, 0.45, ClassFilterDisabled)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, 1, candidates[0].ClassID)
}

func TestDecodeOutputPreservesCandidateOrder(t *testing.T) {
	out := newTestOutput()
	setBox(out, 1, 10, 10, 5, 5)
	setScore(out, 1, 0, 0.5)
	setBox(out, 3, 20, 20, 5, 5)
	setScore(out, 3, 0, 0.9)

	candidates, err := DecodeOutput(out, testClasses, testCandidates, 0.45, ClassFilterDisabled)
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	// Ascending column order, not confidence order.
	assert.Equal(t, float32(10), candidates[0].CX)
	assert.Equal(t, float32(20), candidates[1].CX)
}

func TestDecodeOutputRejectsSizeMismatch(t *testing.T) {
	out := make([]float32, 10)

	_, err := DecodeOutput(out, testClasses, testCandidates, 0.45, ClassFilterDisabled)
	require.Error(t, err)

	var infErr *InferenceError
	assert.ErrorAs(t, err, &infErr)
}

func TestDecodeOutputDeterministic(t *testing.T) {
	out := newTestOutput()
	setBox(out, 0, 1, 2, 3, 4)
	setScore(out, 0, 2, 0.77)
	setBox(out, 2, 5, 6, 7, 8)
	setScore(out, 2, 1, 0.66)

	first, err := DecodeOutput(out, testClasses, testCandidates, 0.45, ClassFilterDisabled)
	require.NoError(t, err)
	second, err := DecodeOutput(out, testClasses, testCandidates, 0.45, ClassFilterDisabled)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
