// Package composite picks one filter out of a pool for every augmented
// variant.
//
// Selection draws x uniformly from [0, 1), remaps it through a Probability,
// scales the result by the pool size and takes the nearest index (ties go to
// the smaller index). With avoid-repeat enabled the same index is never
// returned twice in a row unless the pool has a single filter.
//
// A Composite is not safe for concurrent use. Concurrent batches each get
// their own copy through Clone.
package composite

import (
	"image"
	"math"
	"math/rand/v2"

	"github.com/ironsheep/image-augment/internal/domain"
	"github.com/ironsheep/image-augment/internal/filter"
	"github.com/ironsheep/image-augment/internal/geometry"
)

// maxRedraws bounds the avoid-repeat loop so a remap that always lands on
// the previous index fails instead of spinning.
const maxRedraws = 1024

// Composite is a randomized selector over a pool of filters.
type Composite struct {
	filters     []filter.Filter
	withBoxes   bool
	avoidRepeat bool
	probability Probability

	seed int64
	rng  *rand.Rand
	last int
}

// Option configures a Composite.
type Option func(*Composite)

// WithBoxes makes Transform carry bounding boxes through the chosen filter.
func WithBoxes(on bool) Option {
	return func(c *Composite) { c.withBoxes = on }
}

// WithAvoidRepeat forbids picking the same filter twice in a row.
func WithAvoidRepeat(on bool) Option {
	return func(c *Composite) { c.avoidRepeat = on }
}

// WithProbability sets the remap applied to each draw. A nil p is Identity.
func WithProbability(p Probability) Option {
	return func(c *Composite) {
		if p == nil {
			p = Identity
		}
		c.probability = p
	}
}

// WithSeed seeds the selector and every filter in the pool. Without it the
// seed is random.
func WithSeed(seed int64) Option {
	return func(c *Composite) { c.seed = seed }
}

// New builds a Composite over filters. The pool must be non-empty and hold no
// nil filters.
func New(filters []filter.Filter, opts ...Option) (*Composite, error) {
	if len(filters) == 0 {
		return nil, domain.Errorf("composite.new", domain.KindConfig, "composite needs at least one filter")
	}
	for i, f := range filters {
		if f == nil {
			return nil, domain.Errorf("composite.new", domain.KindConfig, "filter %d is nil", i)
		}
	}

	c := &Composite{
		filters:     append([]filter.Filter(nil), filters...),
		probability: Identity,
		seed:        rand.Int64(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.Reseed(c.seed)
	return c, nil
}

// Reseed resets the selector stream and reseeds every filter with a seed
// derived from seed and its position.
func (c *Composite) Reseed(seed int64) {
	c.seed = seed
	c.rng = rand.New(rand.NewPCG(uint64(seed), uint64(len(c.filters))))
	c.last = -1
	for i, f := range c.filters {
		f.Reseed(filter.DeriveSeed(seed, i))
	}
}

// Clone returns an independent composite with cloned filters, the same
// options and a fresh stream seeded from seed.
func (c *Composite) Clone(seed int64) *Composite {
	filters := make([]filter.Filter, len(c.filters))
	for i, f := range c.filters {
		filters[i] = f.Clone()
	}
	out := &Composite{
		filters:     filters,
		withBoxes:   c.withBoxes,
		avoidRepeat: c.avoidRepeat,
		probability: c.probability,
	}
	out.Reseed(seed)
	return out
}

func (c *Composite) UsesBoxes() bool { return c.withBoxes }

func (c *Composite) Len() int { return len(c.filters) }

func (c *Composite) Seed() int64 { return c.seed }

// Filter returns the i-th filter of the pool.
func (c *Composite) Filter(i int) filter.Filter { return c.filters[i] }

// PickIndex draws the index of the next filter.
func (c *Composite) PickIndex() (int, error) {
	n := len(c.filters)
	if n == 1 {
		c.last = 0
		return 0, nil
	}

	for attempt := 0; attempt < maxRedraws; attempt++ {
		idx, err := c.draw()
		if err != nil {
			return 0, err
		}
		if c.avoidRepeat && idx == c.last {
			continue
		}
		c.last = idx
		return idx, nil
	}
	return 0, domain.Errorf("composite.pick", domain.KindRange,
		"could not draw an index other than %d after %d attempts", c.last, maxRedraws)
}

func (c *Composite) draw() (int, error) {
	x := c.rng.Float64()
	y := c.probability(x)
	if math.IsNaN(y) || y < 0 || y > 1 {
		return 0, domain.Errorf("composite.pick", domain.KindRange,
			"probability remap returned %v for %v, want a value in [0,1]", y, x)
	}
	return nearestIndex(y*float64(len(c.filters)), len(c.filters)), nil
}

// nearestIndex returns the index in [0, n) closest to z, ties to the smaller.
func nearestIndex(z float64, n int) int {
	best, bestDist := 0, math.Abs(z)
	for i := 1; i < n; i++ {
		if d := math.Abs(z - float64(i)); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// Transform picks a filter and applies it to img, carrying boxes when the
// composite was built WithBoxes.
func (c *Composite) Transform(img image.Image, boxes []geometry.BoundingBox) (filter.Result, error) {
	idx, err := c.PickIndex()
	if err != nil {
		return filter.Result{}, err
	}
	return filter.Apply(c.filters[idx], img, c.withBoxes, boxes)
}
