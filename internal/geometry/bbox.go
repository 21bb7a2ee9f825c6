// Package geometry provides the bounding-box value type used by annotations and
// the transforms that keep boxes aligned with augmented pixels.
//
// # Coordinate System
//
// Coordinates follow the image convention: (0,0) is the top-left corner, X grows
// rightward and Y grows downward. Boxes are stored in COCO form
// [x, y, width, height] in absolute pixels, rounded to integers on construction.
//
// # Immutability
//
// BoundingBox fields are unexported and every transform returns a new value, so a
// box can be shared between goroutines without synchronization.
package geometry

import (
	"fmt"
	"math"

	"github.com/ironsheep/image-augment/internal/domain"
)

// Size is an image's pixel dimensions.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Point is an integer pixel coordinate.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// BoundingBox is an axis-aligned rectangle in absolute pixel units.
//
// The zero value is not a usable box: it was not produced by a constructor and
// Valid reports false for it. Use New or one of the From* constructors.
type BoundingBox struct {
	x, y          int
	width, height int
	tagged        bool
}

// Corners lists a box's corners in the order topLeft, bottomLeft, bottomRight,
// topRight.
type Corners [4]Point

// CornerForm is the Pascal VOC representation [xMin, yMin, xMax, yMax].
type CornerForm struct {
	XMin int `json:"x_min"`
	YMin int `json:"y_min"`
	XMax int `json:"x_max"`
	YMax int `json:"y_max"`
}

// Normalized is a box expressed as fractions of the image width and height.
// Values are expected in [0,1] but this is not enforced.
type Normalized struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NormalizedCorners is CornerForm expressed as fractions of the image size.
type NormalizedCorners struct {
	XMin float64 `json:"x_min"`
	YMin float64 `json:"y_min"`
	XMax float64 `json:"x_max"`
	YMax float64 `json:"y_max"`
}

// New builds a box from COCO components, rounding each to the nearest integer.
func New(x, y, width, height float64) BoundingBox {
	return BoundingBox{
		x:      int(math.Round(x)),
		y:      int(math.Round(y)),
		width:  int(math.Round(width)),
		height: int(math.Round(height)),
		tagged: true,
	}
}

// FromTuple builds a box from a COCO [x, y, width, height] slice.
func FromTuple(vals []float64) (BoundingBox, error) {
	if err := checkArity("geometry.from_tuple", vals); err != nil {
		return BoundingBox{}, err
	}
	return New(vals[0], vals[1], vals[2], vals[3]), nil
}

// FromCorners builds a box from [xMin, yMin, xMax, yMax].
//
// Width and height are xMax-xMin and yMax-yMin. Swapped inputs produce negative
// sizes; that is left to the caller.
func FromCorners(vals []float64) (BoundingBox, error) {
	if err := checkArity("geometry.from_corners", vals); err != nil {
		return BoundingBox{}, err
	}
	return New(vals[0], vals[1], vals[2]-vals[0], vals[3]-vals[1]), nil
}

// FromNormalized builds a box from fractions of size in COCO order.
func FromNormalized(vals []float64, size Size) (BoundingBox, error) {
	if err := checkArity("geometry.from_normalized", vals); err != nil {
		return BoundingBox{}, err
	}
	w, h := float64(size.Width), float64(size.Height)
	return New(vals[0]*w, vals[1]*h, vals[2]*w, vals[3]*h), nil
}

// FromNormalizedCorners builds a box from fractions of size in corner order.
func FromNormalizedCorners(vals []float64, size Size) (BoundingBox, error) {
	if err := checkArity("geometry.from_normalized_corners", vals); err != nil {
		return BoundingBox{}, err
	}
	w, h := float64(size.Width), float64(size.Height)
	x := vals[0] * w
	y := vals[1] * h
	return New(x, y, vals[2]*w-x, vals[3]*h-y), nil
}

func checkArity(op string, vals []float64) error {
	if len(vals) != 4 {
		return domain.Errorf(op, domain.KindInvalidGeometry, "expected 4 values, got %d", len(vals))
	}
	return nil
}

func (b BoundingBox) X() int      { return b.x }
func (b BoundingBox) Y() int      { return b.y }
func (b BoundingBox) Width() int  { return b.width }
func (b BoundingBox) Height() int { return b.height }

// Valid reports whether b was produced by a constructor.
func (b BoundingBox) Valid() bool { return b.tagged }

// Area is width*height.
func (b BoundingBox) Area() int { return b.width * b.height }

// AsTuple returns the COCO [x, y, width, height] representation.
func (b BoundingBox) AsTuple() [4]float64 {
	return [4]float64{float64(b.x), float64(b.y), float64(b.width), float64(b.height)}
}

// CornerForm returns the Pascal VOC representation.
func (b BoundingBox) CornerForm() CornerForm {
	return CornerForm{XMin: b.x, YMin: b.y, XMax: b.x + b.width, YMax: b.y + b.height}
}

// Corners returns the four corners: topLeft, bottomLeft, bottomRight, topRight.
func (b BoundingBox) Corners() Corners {
	right, bottom := b.x+b.width, b.y+b.height
	return Corners{
		{X: b.x, Y: b.y},
		{X: b.x, Y: bottom},
		{X: right, Y: bottom},
		{X: right, Y: b.y},
	}
}

// Normalize expresses b as fractions of size.
func (b BoundingBox) Normalize(size Size) Normalized {
	w, h := float64(size.Width), float64(size.Height)
	return Normalized{
		X:      float64(b.x) / w,
		Y:      float64(b.y) / h,
		Width:  float64(b.width) / w,
		Height: float64(b.height) / h,
	}
}

// NormalizedCorners expresses the corner form of b as fractions of size.
func (b BoundingBox) NormalizedCorners(size Size) NormalizedCorners {
	c := b.CornerForm()
	w, h := float64(size.Width), float64(size.Height)
	return NormalizedCorners{
		XMin: float64(c.XMin) / w,
		YMin: float64(c.YMin) / h,
		XMax: float64(c.XMax) / w,
		YMax: float64(c.YMax) / h,
	}
}

// Scale multiplies x and width by sx, y and height by sy.
func (b BoundingBox) Scale(sx, sy float64) BoundingBox {
	return New(float64(b.x)*sx, float64(b.y)*sy, float64(b.width)*sx, float64(b.height)*sy)
}

// Resize rescales b from an image of size from to an image of size to.
//
// Each axis is scaled independently by to/from. This holds for a pure resize
// only; it is wrong for any transform that introduces rotation or shear.
func (b BoundingBox) Resize(from, to Size) BoundingBox {
	if from.Width == 0 || from.Height == 0 {
		return b
	}
	return b.Scale(
		float64(to.Width)/float64(from.Width),
		float64(to.Height)/float64(from.Height),
	)
}

func (b BoundingBox) String() string {
	return fmt.Sprintf("bbox(x=%d y=%d w=%d h=%d)", b.x, b.y, b.width, b.height)
}
