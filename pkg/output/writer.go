package output

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// Format identifies an image encoding
type Format string

const (
	PNG  Format = "png"
	BMP  Format = "bmp"
	TIFF Format = "tiff"
)

var ErrUnknownFormat = errors.New("output: unknown image format")

// Formats lists the supported encodings
func Formats() []Format {
	return []Format{PNG, BMP, TIFF}
}

// FormatFromPath picks the encoding from the file extension
func FormatFromPath(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".png":
		return PNG, nil
	case ".bmp":
		return BMP, nil
	case ".tif", ".tiff":
		return TIFF, nil
	default:
		return "", fmt.Errorf("%w: extension %q", ErrUnknownFormat, ext)
	}
}

// Encode writes img to w using the given format
func Encode(w io.Writer, format Format, img image.Image) error {
	switch format {
	case PNG:
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		return enc.Encode(w, img)
	case BMP:
		return bmp.Encode(w, img)
	case TIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Save writes img to path, creating missing parent directories. The format
// follows the file extension.
func Save(path string, img image.Image) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("output: creating directory %s: %w", dir, err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("output: creating %s: %w", path, err)
	}

	if err := Encode(f, format, img); err != nil {
		f.Close()
		return fmt.Errorf("output: encoding %s: %w", path, err)
	}
	return f.Close()
}
