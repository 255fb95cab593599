package loaders

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/bmp"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
)

// TestLoadImage creates a test PNG and verifies loading
func TestLoadImage(t *testing.T) {
	// Create a temporary directory for test files
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "test.png")

	// Create a simple 2x2 test image
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))

	// Set pixel colors (RGBA with max value 65535 when using RGBA())
	// Top-left: white
	img.Set(0, 0, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	// Top-right: red
	img.Set(1, 0, color.RGBA{R: 255, G: 0, B: 0, A: 255})
	// Bottom-left: green
	img.Set(0, 1, color.RGBA{R: 0, G: 255, B: 0, A: 255})
	// Bottom-right: blue
	img.Set(1, 1, color.RGBA{R: 0, G: 0, B: 255, A: 255})

	// Save as PNG
	f, err := os.Create(testFile)
	if err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		t.Fatalf("Failed to encode PNG: %v", err)
	}
	f.Close()

	// Load the image
	imageData, err := LoadImage(testFile)
	if err != nil {
		t.Fatalf("LoadImage failed: %v", err)
	}

	// Verify dimensions
	if imageData.Width != 2 || imageData.Height != 2 {
		t.Errorf("Expected 2x2 image, got %dx%d", imageData.Width, imageData.Height)
	}

	// Verify pixel count
	if len(imageData.Pixels) != 4 {
		t.Errorf("Expected 4 pixels, got %d", len(imageData.Pixels))
	}

	// Helper function to check color with tolerance for precision
	checkColor := func(name string, got, expected core.Vec3) {
		const tolerance = 0.01
		if abs(got.X-expected.X) > tolerance ||
			abs(got.Y-expected.Y) > tolerance ||
			abs(got.Z-expected.Z) > tolerance {
			t.Errorf("%s: expected %v, got %v", name, expected, got)
		}
	}

	// Verify colors (row-major order)
	white := core.NewVec3(1.0, 1.0, 1.0)
	red := core.NewVec3(1.0, 0.0, 0.0)
	green := core.NewVec3(0.0, 1.0, 0.0)
	blue := core.NewVec3(0.0, 0.0, 1.0)

	checkColor("Top-left (white)", imageData.Pixels[0], white)
	checkColor("Top-right (red)", imageData.Pixels[1], red)
	checkColor("Bottom-left (green)", imageData.Pixels[2], green)
	checkColor("Bottom-right (blue)", imageData.Pixels[3], blue)
}

// TestLoadImageNotFound verifies error handling for missing files
func TestLoadImageNotFound(t *testing.T) {
	_, err := LoadImage("nonexistent.png")
	if err == nil {
		t.Error("Expected error for non-existent file, got nil")
	}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

func TestLoadImage_BMP(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.bmp")
	img := image.NewRGBA(image.Rect(0, 0, 3, 1))
	for x := 0; x < 3; x++ {
		img.Set(x, 0, color.RGBA{R: uint8(100 * x), G: 50, B: 0, A: 255})
	}

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	if err := bmp.Encode(f, img); err != nil {
		f.Close()
		t.Fatalf("Failed to encode BMP: %v", err)
	}
	f.Close()

	imageData, err := LoadImage(path)
	if err != nil {
		t.Fatalf("LoadImage failed: %v", err)
	}
	if imageData.Width != 3 || imageData.Height != 1 {
		t.Fatalf("Expected 3x1 image, got %dx%d", imageData.Width, imageData.Height)
	}
	if abs(imageData.Pixels[2].X-200.0/255.0) > 1e-6 {
		t.Errorf("Expected red channel %f, got %f", 200.0/255.0, imageData.Pixels[2].X)
	}
}

func TestImageData_Compare(t *testing.T) {
	a := &ImageData{Width: 2, Height: 1, Pixels: []core.Vec3{
		core.NewVec3(1, 1, 1),
		core.NewVec3(0, 0, 0),
	}}
	b := &ImageData{Width: 2, Height: 1, Pixels: []core.Vec3{
		core.NewVec3(1, 1, 1),
		core.NewVec3(0.5, 0.5, 0.5),
	}}

	same, err := a.Compare(a)
	if err != nil {
		t.Fatalf("Compare error: %v", err)
	}
	if same.RMSE != 0 || same.DifferentPixels != 0 || same.MaxChannelError != 0 {
		t.Errorf("Image compared with itself should not differ: %+v", same)
	}

	diff, err := a.Compare(b)
	if err != nil {
		t.Fatalf("Compare error: %v", err)
	}
	// One of six channel values differs by 0.5 in each of three channels
	expectedRMSE := 0.5 / math.Sqrt(2)
	if abs(diff.RMSE-expectedRMSE) > 1e-12 {
		t.Errorf("Expected RMSE %f, got %f", expectedRMSE, diff.RMSE)
	}
	if diff.DifferentPixels != 1 || diff.TotalPixels != 2 {
		t.Errorf("Expected 1 of 2 pixels to differ, got %d of %d", diff.DifferentPixels, diff.TotalPixels)
	}
	if diff.MaxChannelError != 0.5 {
		t.Errorf("Expected max channel error 0.5, got %f", diff.MaxChannelError)
	}
	if abs(diff.LuminanceA-0.5) > 1e-9 || abs(diff.LuminanceB-0.75) > 1e-9 {
		t.Errorf("Unexpected luminance %f / %f", diff.LuminanceA, diff.LuminanceB)
	}
}

func TestImageData_CompareSizeMismatch(t *testing.T) {
	a := &ImageData{Width: 1, Height: 1, Pixels: make([]core.Vec3, 1)}
	b := &ImageData{Width: 2, Height: 1, Pixels: make([]core.Vec3, 2)}
	if _, err := a.Compare(b); !errors.Is(err, ErrImageSizeMismatch) {
		t.Errorf("Expected ErrImageSizeMismatch, got %v", err)
	}
}
