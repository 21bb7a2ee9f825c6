package filter

import (
	"image"
	"math"

	"github.com/ironsheep/image-augment/internal/geometry"
	"github.com/ironsheep/image-augment/internal/imaging"
)

// HorizontalFlip mirrors the image across its horizontal midline, so top and
// bottom swap. Boxes follow with y' = H - y - h.
type HorizontalFlip struct {
	stream
}

// NewHorizontalFlip returns a top/bottom mirror filter.
func NewHorizontalFlip() *HorizontalFlip {
	return &HorizontalFlip{stream: newStream()}
}

func (f *HorizontalFlip) Name() string { return "horizontal_flip" }

func (f *HorizontalFlip) Forward(img image.Image) (image.Image, error) {
	return imaging.Flip(img, imaging.AxisX), nil
}

func (f *HorizontalFlip) ForwardWithBoxes(img image.Image, boxes []geometry.BoundingBox) (image.Image, []geometry.BoundingBox, error) {
	h := imaging.Dimensions(img).Height
	out := make([]geometry.BoundingBox, len(boxes))
	for i, b := range boxes {
		out[i] = b.FlipVertical(h)
	}
	return imaging.Flip(img, imaging.AxisX), out, nil
}

func (f *HorizontalFlip) Clone() Filter {
	c := &HorizontalFlip{}
	c.Reseed(f.seed)
	return c
}

// VerticalFlip mirrors the image across its vertical midline, so left and
// right swap. Boxes follow with x' = W - x - w.
type VerticalFlip struct {
	stream
}

// NewVerticalFlip returns a left/right mirror filter.
func NewVerticalFlip() *VerticalFlip {
	return &VerticalFlip{stream: newStream()}
}

func (f *VerticalFlip) Name() string { return "vertical_flip" }

func (f *VerticalFlip) Forward(img image.Image) (image.Image, error) {
	return imaging.Flip(img, imaging.AxisY), nil
}

func (f *VerticalFlip) ForwardWithBoxes(img image.Image, boxes []geometry.BoundingBox) (image.Image, []geometry.BoundingBox, error) {
	w := imaging.Dimensions(img).Width
	out := make([]geometry.BoundingBox, len(boxes))
	for i, b := range boxes {
		out[i] = b.FlipHorizontal(w)
	}
	return imaging.Flip(img, imaging.AxisY), out, nil
}

func (f *VerticalFlip) Clone() Filter {
	c := &VerticalFlip{}
	c.Reseed(f.seed)
	return c
}

// Flip mirrors across both midlines, a half turn about the image centre.
type Flip struct {
	stream
}

// NewFlip returns a filter that mirrors both axes.
func NewFlip() *Flip {
	return &Flip{stream: newStream()}
}

func (f *Flip) Name() string { return "flip" }

func (f *Flip) Forward(img image.Image) (image.Image, error) {
	return imaging.Flip(img, imaging.AxisBoth), nil
}

func (f *Flip) ForwardWithBoxes(img image.Image, boxes []geometry.BoundingBox) (image.Image, []geometry.BoundingBox, error) {
	size := imaging.Dimensions(img)
	out := make([]geometry.BoundingBox, len(boxes))
	for i, b := range boxes {
		out[i] = b.FlipVertical(size.Height).FlipHorizontal(size.Width)
	}
	return imaging.Flip(img, imaging.AxisBoth), out, nil
}

func (f *Flip) Clone() Filter {
	c := &Flip{}
	c.Reseed(f.seed)
	return c
}

// Rotate turns the image by a random whole number of degrees about an anchor
// given as fractions of width and height.
//
// Each call draws an angle from [0, |MaxAngle|] carrying MaxAngle's sign.
// Positive angles turn clockwise on screen. The canvas keeps its size; corners
// that leave it are cut off and uncovered areas are transparent black.
type Rotate struct {
	stream
	maxAngle int
	anchorX  float64
	anchorY  float64
}

// NewRotate returns a rotation filter. The anchor components must lie in
// [0, 1]; (0.5, 0.5) is the image centre.
func NewRotate(maxAngle int, anchorX, anchorY float64) (*Rotate, error) {
	if !inUnit(anchorX) || !inUnit(anchorY) {
		return nil, configError("filter.rotate", "anchor (%g, %g) must lie in [0,1]", anchorX, anchorY)
	}
	return &Rotate{stream: newStream(), maxAngle: maxAngle, anchorX: anchorX, anchorY: anchorY}, nil
}

func (f *Rotate) Name() string { return "rotate" }

// MaxAngle returns the configured angle bound in degrees.
func (f *Rotate) MaxAngle() int { return f.maxAngle }

func (f *Rotate) Forward(img image.Image) (image.Image, error) {
	out, _ := f.rotate(img, nil)
	return out, nil
}

func (f *Rotate) ForwardWithBoxes(img image.Image, boxes []geometry.BoundingBox) (image.Image, []geometry.BoundingBox, error) {
	out, moved := f.rotate(img, boxes)
	return out, moved, nil
}

// rotate draws one angle and applies it to the pixels and every box.
func (f *Rotate) rotate(img image.Image, boxes []geometry.BoundingBox) (image.Image, []geometry.BoundingBox) {
	degrees := f.drawAngle()
	rad := float64(degrees) * math.Pi / 180

	size := imaging.Dimensions(img)
	anchor := geometry.Anchor(f.anchorX, f.anchorY, size)
	out := imaging.WarpAffine(img, imaging.RotationMatrix(anchor.X, anchor.Y, rad), size)

	if boxes == nil {
		return out, nil
	}
	moved := make([]geometry.BoundingBox, len(boxes))
	for i, b := range boxes {
		moved[i] = b.Rotate(anchor, rad, size)
	}
	return out, moved
}

func (f *Rotate) drawAngle() int {
	bound := f.maxAngle
	sign := 1
	if bound < 0 {
		bound, sign = -bound, -1
	}
	return sign * f.rng.IntN(bound+1)
}

func (f *Rotate) Clone() Filter {
	c := &Rotate{maxAngle: f.maxAngle, anchorX: f.anchorX, anchorY: f.anchorY}
	c.Reseed(f.seed)
	return c
}

func inUnit(v float64) bool {
	return v >= 0 && v <= 1
}
