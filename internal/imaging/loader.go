package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif" // Register GIF format decoder
	"os"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // Register WebP format decoder

	"github.com/ironsheep/image-augment/internal/geometry"
)

// Format is an output encoding.
type Format string

const (
	FormatJPEG Format = "jpeg"
	FormatPNG  Format = "png"
	FormatWebP Format = "webp"
)

// Ext returns the file extension (with dot) used for f.
func (f Format) Ext() string {
	switch f {
	case FormatPNG:
		return ".png"
	case FormatWebP:
		return ".webp"
	default:
		return ".jpg"
	}
}

// ParseFormat maps a user-supplied format name to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "jpg", "jpeg":
		return FormatJPEG, nil
	case "png":
		return FormatPNG, nil
	case "webp":
		return FormatWebP, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", s)
	}
}

// Load decodes the image at path.
//
// EXIF orientation is applied, so boxes annotated against the displayed image
// line up with the returned pixels.
//
// # Errors
//
//   - Returns error if the file does not exist or cannot be read
//   - Returns error if the file is not a decodable image
func Load(path string) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	return img, nil
}

// Dimensions returns the pixel size of img.
func Dimensions(img image.Image) geometry.Size {
	b := img.Bounds()
	return geometry.Size{Width: b.Dx(), Height: b.Dy()}
}

// Save encodes img to path in the given format.
//
// The file is written to a temporary name in the same directory and renamed
// into place, so a crash never leaves a truncated image behind.
func Save(img image.Image, path string, format Format, quality int) error {
	var buf bytes.Buffer
	switch format {
	case FormatWebP:
		if err := webp.Encode(&buf, img, &webp.Options{Quality: float32(quality)}); err != nil {
			return fmt.Errorf("failed to encode webp: %w", err)
		}
	case FormatPNG:
		if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
			return fmt.Errorf("failed to encode png: %w", err)
		}
	default:
		if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
			return fmt.Errorf("failed to encode jpeg: %w", err)
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".img-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close image: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to move image into place: %w", err)
	}
	return nil
}
