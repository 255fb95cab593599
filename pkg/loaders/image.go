package loaders

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // JPEG decoder
	_ "image/png"  // PNG decoder
	"math"
	"os"

	_ "golang.org/x/image/bmp"  // BMP decoder
	_ "golang.org/x/image/tiff" // TIFF decoder

	"github.com/df07/go-sphere-pathtracer/pkg/core"
)

var ErrImageSizeMismatch = errors.New("loaders: image sizes differ")

// ImageData contains loaded image data as Vec3 color array
type ImageData struct {
	Width  int
	Height int
	Pixels []core.Vec3
}

// ImageDiff summarizes how far two images are apart
type ImageDiff struct {
	RMSE            float64 // Root mean squared error over all channels
	MaxChannelError float64 // Largest absolute channel difference
	LuminanceA      float64 // Mean luminance of the first image
	LuminanceB      float64 // Mean luminance of the second image
	DifferentPixels int     // Pixels with any channel difference
	TotalPixels     int
}

// LoadImage loads a PNG, JPEG, BMP or TIFF image and converts it to a Vec3
// color array with channels in [0,1]
func LoadImage(filename string) (*ImageData, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open image file: %w", err)
	}
	defer file.Close()

	// Format is detected from the file header
	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", filename, err)
	}

	return NewImageData(img), nil
}

// NewImageData converts an image to a Vec3 color array
func NewImageData(img image.Image) *ImageData {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	pixels := make([]core.Vec3, width*height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			// RGBA returns uint32 in [0, 65535], convert to [0, 1]
			pixels[y*width+x] = core.NewVec3(
				float64(r)/65535.0,
				float64(g)/65535.0,
				float64(b)/65535.0,
			)
		}
	}

	return &ImageData{
		Width:  width,
		Height: height,
		Pixels: pixels,
	}
}

// Compare measures the per-channel difference between two images of equal size
func (d *ImageData) Compare(other *ImageData) (ImageDiff, error) {
	if d.Width != other.Width || d.Height != other.Height {
		return ImageDiff{}, fmt.Errorf("%w: %dx%d vs %dx%d", ErrImageSizeMismatch, d.Width, d.Height, other.Width, other.Height)
	}

	diff := ImageDiff{TotalPixels: len(d.Pixels)}
	if diff.TotalPixels == 0 {
		return diff, nil
	}

	sumSq := 0.0
	for i, a := range d.Pixels {
		b := other.Pixels[i]
		delta := a.Subtract(b)
		sumSq += delta.LengthSquared()

		maxDelta := math.Max(math.Abs(delta.X), math.Max(math.Abs(delta.Y), math.Abs(delta.Z)))
		diff.MaxChannelError = math.Max(diff.MaxChannelError, maxDelta)
		if maxDelta > 0 {
			diff.DifferentPixels++
		}

		diff.LuminanceA += a.Luminance()
		diff.LuminanceB += b.Luminance()
	}

	n := float64(diff.TotalPixels)
	diff.RMSE = math.Sqrt(sumSq / (3 * n))
	diff.LuminanceA /= n
	diff.LuminanceB /= n
	return diff, nil
}
