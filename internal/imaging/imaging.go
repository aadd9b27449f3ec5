package imaging

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"

	"github.com/nfnt/resize"
)

// ErrDecode indicates the uploaded bytes are not a decodable raster image.
var ErrDecode = errors.New("image decode failed")

// ErrValidation indicates the image decoded but is unusable as X-ray
// input, e.g. the resolution is below the minimum.
var ErrValidation = errors.New("image validation failed")

const (
	// InputSize is the model input width and height in pixels.
	InputSize = 224
	// Channels is the number of color channels the model expects.
	Channels = 3
	// TensorLen is the flattened CHW tensor length.
	TensorLen = Channels * InputSize * InputSize

	minResolution = 100
)

// Result holds the preprocessed tensor along with facts about the
// source image that the UI and report surface to the user.
type Result struct {
	Tensor   []float32
	Width    int
	Height   int
	Format   string
	Warnings []string
}

// Load decodes, validates and preprocesses an uploaded image into a
// normalized CHW float32 tensor sized for the classifier.
func Load(r io.Reader) (*Result, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	slog.Debug("Decoded image", "format", format, "width", width, "height", height)

	warnings, err := Validate(width, height)
	if err != nil {
		return nil, err
	}

	return &Result{
		Tensor:   Preprocess(img),
		Width:    width,
		Height:   height,
		Format:   format,
		Warnings: warnings,
	}, nil
}

// Validate checks that the image is plausible X-ray input. A
// resolution below the minimum rejects the image; anything else only
// produces advisory warnings, and the classifier still runs on the
// upscaled image.
func Validate(width, height int) ([]string, error) {
	if width < minResolution || height < minResolution {
		return nil, fmt.Errorf("%w: resolution %dx%d is below the %dpx minimum", ErrValidation, width, height, minResolution)
	}

	var warnings []string

	if width < InputSize && height < InputSize {
		warnings = append(warnings, "Image will be upscaled for analysis; higher resolution images give better results.")
	}

	ratio := float64(width) / float64(height)
	if ratio < 0.5 || ratio > 2.0 {
		warnings = append(warnings, "Unusual aspect ratio; ensure the image shows a complete chest X-ray.")
	}

	return warnings, nil
}

// Preprocess resizes the image to the model input size and converts it
// to a CHW float32 tensor with each channel normalized to [0,1].
func Preprocess(img image.Image) []float32 {
	resized := resize.Resize(InputSize, InputSize, img, resize.Lanczos3)

	tensor := make([]float32, TensorLen)
	for y := 0; y < InputSize; y++ {
		for x := 0; x < InputSize; x++ {
			r, g, b, _ := resized.At(x, y).RGBA()

			// RGBA returns 16-bit channel values.
			idx := y*InputSize + x
			tensor[idx] = float32(r) / 65535.0
			tensor[InputSize*InputSize+idx] = float32(g) / 65535.0
			tensor[2*InputSize*InputSize+idx] = float32(b) / 65535.0
		}
	}

	return tensor
}
