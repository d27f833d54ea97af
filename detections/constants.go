package detections

const (
	// InputSize is the side length of the square model input. The mapper
	// must invert the preprocessor's resize with this exact value.
	InputSize = 640

	// NumClasses and NumCandidates describe the YOLO11 output layout
	// [1, 4+NumClasses, NumCandidates].
	NumClasses    = 80
	NumCandidates = 8400

	// PersonClassID is the class the service filters for by default.
	PersonClassID = 0

	// ClassFilterDisabled turns off class filtering in the decoder.
	ClassFilterDisabled = -1

	DefaultConfThreshold = 0.45
	DefaultIoUThreshold  = 0.5
)
