package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// FlipVertical mirrors b across the horizontal midline of an image of the given
// height: y' = height - y - h.
func (b BoundingBox) FlipVertical(imageHeight int) BoundingBox {
	return New(float64(b.x), float64(imageHeight-b.y-b.height), float64(b.width), float64(b.height))
}

// FlipHorizontal mirrors b across the vertical midline of an image of the given
// width: x' = width - x - w.
func (b BoundingBox) FlipHorizontal(imageWidth int) BoundingBox {
	return New(float64(imageWidth-b.x-b.width), float64(b.y), float64(b.width), float64(b.height))
}

// Rotate turns b by radians about anchor (absolute pixels) and re-fits it.
//
// Positive angles turn clockwise as displayed (Y grows downward). The result is
// the axis-aligned bound of the four rotated corners with each coordinate
// clipped to [0, clip.Width] and [0, clip.Height]. This is a loose fit: it
// encloses the rotated rectangle but is not the minimum-area box around the
// object it annotates.
func (b BoundingBox) Rotate(anchor r2.Vec, radians float64, clip Size) BoundingBox {
	corners := b.Corners()
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)

	for _, c := range corners {
		p := r2.Rotate(r2.Vec{X: float64(c.X), Y: float64(c.Y)}, radians, anchor)
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}

	w, h := float64(clip.Width), float64(clip.Height)
	minX, maxX = clamp(minX, 0, w), clamp(maxX, 0, w)
	minY, maxY = clamp(minY, 0, h), clamp(maxY, 0, h)

	return New(minX, minY, maxX-minX, maxY-minY)
}

// Anchor converts a normalized pivot (fractions of width and height) into
// absolute pixel coordinates for an image of the given size.
func Anchor(nx, ny float64, size Size) r2.Vec {
	return r2.Vec{X: nx * float64(size.Width), Y: ny * float64(size.Height)}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
