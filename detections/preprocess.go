package detections

import (
	"bytes"
	"image"
	"runtime"
	"sync"

	// Formats registered for image.Decode. The service accepts whatever the
	// client sends, not just JPEG.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/disintegration/imaging"

	"github.com/visionedge/person-detection-service/models"
)

// PrepareImage decodes raw image bytes and produces the model input tensor
// data in [1, 3, inputSize, inputSize] CHW layout, each channel value
// normalized to [0, 1]. The resize is non-aspect-preserving: both axes are
// scaled independently to inputSize, and the returned pre-resize size is
// what the coordinate mapper needs to invert that distortion.
func PrepareImage(imageBytes []byte, inputSize int) ([]float32, models.Size, error) {
	img, _, err := image.Decode(bytes.NewReader(imageBytes))
	if err != nil {
		return nil, models.Size{}, &DecodeError{Cause: err}
	}

	bounds := img.Bounds()
	originalSize := models.Size{Width: bounds.Dx(), Height: bounds.Dy()}

	resized := imaging.Resize(img, inputSize, inputSize, imaging.Linear)

	data := make([]float32, 3*inputSize*inputSize)
	fillCHW(resized, data, inputSize)

	return data, originalSize, nil
}

// fillCHW converts the resized image into channel-major float32 data,
// splitting rows across workers the way the request path can afford.
func fillCHW(img image.Image, data []float32, inputSize int) {
	channelSize := inputSize * inputSize
	numWorkers := runtime.NumCPU()
	if numWorkers > inputSize {
		numWorkers = inputSize
	}
	rowsPerWorker := inputSize / numWorkers

	var wg sync.WaitGroup
	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		startY := w * rowsPerWorker
		endY := startY + rowsPerWorker
		if w == numWorkers-1 {
			endY = inputSize
		}
		go func(startY, endY int) {
			defer wg.Done()
			for y := startY; y < endY; y++ {
				offset := y * inputSize
				for x := 0; x < inputSize; x++ {
					i := offset + x
					r, g, b, _ := img.At(x, y).RGBA()
					data[i] = float32(r>>8) / 255.0
					data[channelSize+i] = float32(g>>8) / 255.0
					data[channelSize*2+i] = float32(b>>8) / 255.0
				}
			}
		}(startY, endY)
	}
	wg.Wait()
}
