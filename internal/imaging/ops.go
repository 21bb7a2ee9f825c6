package imaging

import (
	"bytes"
	"fmt"
	"image"
	"math"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/blur"
	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/ironsheep/image-augment/internal/geometry"
)

// Axis selects the mirror used by Flip.
type Axis int

const (
	// AxisX mirrors across the horizontal midline (top and bottom swap).
	AxisX Axis = iota
	// AxisY mirrors across the vertical midline (left and right swap).
	AxisY
	// AxisBoth applies both mirrors.
	AxisBoth
)

// Resize scales img to exactly size using Lanczos resampling.
// The aspect ratio is not preserved.
func Resize(img image.Image, size geometry.Size) image.Image {
	return imaging.Resize(img, size.Width, size.Height, imaging.Lanczos)
}

// Flip mirrors img along axis.
func Flip(img image.Image, axis Axis) image.Image {
	switch axis {
	case AxisX:
		return imaging.FlipV(img)
	case AxisY:
		return imaging.FlipH(img)
	default:
		return imaging.Rotate180(img)
	}
}

// RotationMatrix returns the source-to-destination affine transform that turns
// an image by radians about anchor (absolute pixels).
//
// The matrix is the one geometry.BoundingBox.Rotate applies to box corners:
//
//	x' = cos·(x-ax) - sin·(y-ay) + ax
//	y' = sin·(x-ax) + cos·(y-ay) + ay
//
// With Y growing downward a positive angle turns clockwise on screen.
func RotationMatrix(anchorX, anchorY, radians float64) f64.Aff3 {
	sin, cos := math.Sincos(radians)
	return f64.Aff3{
		cos, -sin, anchorX - cos*anchorX + sin*anchorY,
		sin, cos, anchorY - sin*anchorX - cos*anchorY,
	}
}

// WarpAffine maps img through the source-to-destination matrix m into a canvas
// of the given size. Pixels that map from outside the source are transparent
// black.
func WarpAffine(img image.Image, m f64.Aff3, size geometry.Size) image.Image {
	src := imaging.Clone(img)
	dst := image.NewNRGBA(image.Rect(0, 0, size.Width, size.Height))
	draw.BiLinear.Transform(dst, m, src, src.Bounds(), draw.Src, nil)
	return dst
}

// BoxBlur blurs img with a box kernel of the given odd size.
func BoxBlur(img image.Image, kernel int) image.Image {
	return blur.Box(img, float64(kernel/2))
}

// GaussianBlur blurs img with a Gaussian kernel of the given odd size.
func GaussianBlur(img image.Image, kernel int) image.Image {
	return blur.Gaussian(img, float64(kernel/2))
}

// AdjustBrightness shifts brightness by change, a fraction in [-1, 1].
func AdjustBrightness(img image.Image, change float64) image.Image {
	return adjust.Brightness(img, change)
}

// AdjustContrast scales contrast by change, a fraction in [-1, 1].
func AdjustContrast(img image.Image, change float64) image.Image {
	return adjust.Contrast(img, change)
}

// EncodeDecode round-trips img through JPEG at the given quality (1-100) and
// returns the decoded, artefact-bearing result.
func EncodeDecode(img image.Image, quality int) (image.Image, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}
	out, err := imaging.Decode(&buf)
	if err != nil {
		return nil, fmt.Errorf("failed to decode jpeg: %w", err)
	}
	return out, nil
}
