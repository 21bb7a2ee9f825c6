// Package filter implements the transforms applied to each augmented variant.
//
// A Filter has two entry points that must agree on pixels: Forward transforms
// pixels only, ForwardWithBoxes transforms pixels and keeps bounding boxes
// aligned with them. Geometric filters (flips, rotation) move boxes; every
// other filter changes colour or texture and passes boxes through unchanged.
//
// Each filter owns a private random stream. Streams are never shared between
// instances, so two goroutines working on different filter instances (for
// example two clones of one composite) stay reproducible for a fixed seed. A
// single instance must not be used from more than one goroutine.
package filter

import (
	"image"
	"math/rand/v2"

	"github.com/ironsheep/image-augment/internal/domain"
	"github.com/ironsheep/image-augment/internal/geometry"
)

// Filter is a randomized image transform.
type Filter interface {
	// Name is the registry name of the filter, e.g. "rotate".
	Name() string

	// Forward transforms pixels only.
	Forward(img image.Image) (image.Image, error)

	// ForwardWithBoxes transforms pixels and applies the same geometric change
	// to boxes. The pixel result equals Forward's for the same random draw.
	ForwardWithBoxes(img image.Image, boxes []geometry.BoundingBox) (image.Image, []geometry.BoundingBox, error)

	// Reseed resets the filter's random stream.
	Reseed(seed int64)

	// Clone returns an independent copy with the same parameters whose stream
	// restarts from the current seed.
	Clone() Filter
}

// Result is the output of Apply. Boxes is nil when boxes were not requested.
type Result struct {
	Image image.Image
	Boxes []geometry.BoundingBox
}

// Apply runs f on img.
//
// With withBoxes set every element of boxes must be a constructed
// BoundingBox; otherwise the call fails with a type-mismatch error before any
// pixel work. Without it only the pixel path runs and boxes is ignored.
// Errors and panics raised while transforming are reported as transform
// errors.
func Apply(f Filter, img image.Image, withBoxes bool, boxes []geometry.BoundingBox) (res Result, err error) {
	if withBoxes {
		for i, b := range boxes {
			if !b.Valid() {
				return Result{}, domain.Errorf("filter.apply", domain.KindTypeMismatch,
					"box %d passed to %s is not a constructed bounding box", i, f.Name())
			}
		}
	}

	defer func() {
		if r := recover(); r != nil {
			res = Result{}
			err = domain.Errorf("filter.apply", domain.KindTransform, "%s panicked: %v", f.Name(), r)
		}
	}()

	if !withBoxes {
		out, err := f.Forward(img)
		if err != nil {
			return Result{}, domain.Wrap("filter."+f.Name(), domain.KindTransform, "", err)
		}
		return Result{Image: out}, nil
	}

	out, moved, err := f.ForwardWithBoxes(img, boxes)
	if err != nil {
		return Result{}, domain.Wrap("filter."+f.Name(), domain.KindTransform, "", err)
	}
	return Result{Image: out, Boxes: moved}, nil
}

// stream is the per-instance random source embedded by every filter.
type stream struct {
	seed int64
	rng  *rand.Rand
}

func newStream() stream {
	var s stream
	s.Reseed(rand.Int64())
	return s
}

func (s *stream) Reseed(seed int64) {
	s.seed = seed
	s.rng = rand.New(rand.NewPCG(uint64(seed), 0x9e3779b97f4a7c15))
}

// DeriveSeed returns the i-th child seed of seed. Children of one parent are
// decorrelated from each other and from the parent.
func DeriveSeed(seed int64, i int) int64 {
	z := uint64(seed) + uint64(i+1)*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return int64(z ^ (z >> 31))
}

func configError(op, format string, args ...any) error {
	return domain.Errorf(op, domain.KindConfig, format, args...)
}

// uniform draws from [lo, hi).
func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

// intBetween draws from [lo, hi] inclusive.
func intBetween(rng *rand.Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + rng.IntN(hi-lo+1)
}
