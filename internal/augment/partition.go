package augment

import (
	"math"
	"math/rand/v2"

	"github.com/ironsheep/image-augment/internal/domain"
)

// Partition names.
const (
	Train = "train"
	Valid = "valid"
	Test  = "test"
)

// ratioTolerance absorbs binary rounding, e.g. 0.7+0.2+0.1.
const ratioTolerance = 1e-9

// Partition is a named share of the image list.
type Partition struct {
	Name   string   `json:"name"`
	Images []string `json:"images"`
}

// Partitions is the result of a split, ordered train, valid (if any), test.
type Partitions []Partition

// Map returns the partitions keyed by name.
func (ps Partitions) Map() map[string][]string {
	m := make(map[string][]string, len(ps))
	for _, p := range ps {
		m[p.Name] = p.Images
	}
	return m
}

// Partitioner splits image lists into train, test and optionally valid
// shares with its own seeded stream.
type Partitioner struct {
	train    float64
	test     float64
	valid    float64
	hasValid bool
	rng      *rand.Rand
}

// NewPartitioner validates ratio and returns a partitioner seeded with seed.
//
// ratio is (train, test) or (train, test, valid). Every element must be a
// finite number in [0, 1] and the elements must sum to 1.
func NewPartitioner(ratio []float64, seed int64) (*Partitioner, error) {
	if err := ValidateRatio(ratio); err != nil {
		return nil, err
	}
	p := &Partitioner{
		train: ratio[0],
		test:  ratio[1],
		rng:   rand.New(rand.NewPCG(uint64(seed), 0x5851f42d4c957f2d)),
	}
	if len(ratio) == 3 {
		p.valid = ratio[2]
		p.hasValid = true
	}
	return p, nil
}

// ValidateRatio checks the arity, range and sum of a split ratio.
func ValidateRatio(ratio []float64) error {
	if len(ratio) < 2 || len(ratio) > 3 {
		return domain.Errorf("augment.ratio", domain.KindConfig,
			"ratio needs 2 or 3 elements, got %d", len(ratio))
	}
	sum := 0.0
	for i, r := range ratio {
		if math.IsNaN(r) || math.IsInf(r, 0) || r < 0 || r > 1 {
			return domain.Errorf("augment.ratio", domain.KindConfig,
				"ratio element %d is %v, want a number in [0,1]", i, r)
		}
		sum += r
	}
	if math.Abs(sum-1) > ratioTolerance {
		return domain.Errorf("augment.ratio", domain.KindConfig, "ratio %v sums to %v, want 1", ratio, sum)
	}
	return nil
}

// Partition shuffles a copy of images and cuts it. The train share is
// round(total*train) and the valid share round(total*valid) taken after it,
// both rounding half to even; the rest is test. Each call advances the
// stream.
func (p *Partitioner) Partition(images []string) Partitions {
	shuffled := append([]string(nil), images...)
	p.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	total := len(shuffled)
	trainEnd := min(share(total, p.train), total)

	if !p.hasValid {
		return Partitions{
			{Name: Train, Images: shuffled[:trainEnd]},
			{Name: Test, Images: shuffled[trainEnd:]},
		}
	}

	validEnd := min(trainEnd+share(total, p.valid), total)
	return Partitions{
		{Name: Train, Images: shuffled[:trainEnd]},
		{Name: Valid, Images: shuffled[trainEnd:validEnd]},
		{Name: Test, Images: shuffled[validEnd:]},
	}
}

func share(total int, r float64) int {
	return int(math.RoundToEven(float64(total) * r))
}
