package composite

import (
	"math"
	"sort"
	"strings"

	"github.com/ironsheep/image-augment/internal/domain"
)

// Probability remaps a uniform draw x in [0, 1) before it is turned into a
// filter index. It must return a value in [0, 1]; anything else is reported as
// a range violation when the draw happens.
type Probability func(x float64) float64

// Identity leaves the draw unchanged.
func Identity(x float64) float64 { return x }

// Square biases selection toward the first filters.
func Square(x float64) float64 { return x * x }

// Sqrt biases selection toward the last filters.
func Sqrt(x float64) float64 { return math.Sqrt(x) }

// Invert mirrors the draw.
func Invert(x float64) float64 { return 1 - x }

var probabilities = map[string]Probability{
	"identity": Identity,
	"square":   Square,
	"sqrt":     Sqrt,
	"invert":   Invert,
}

// ParseProbability returns the named remap. The empty name is Identity.
func ParseProbability(name string) (Probability, error) {
	if name == "" {
		return Identity, nil
	}
	p, ok := probabilities[strings.ToLower(name)]
	if !ok {
		names := make([]string, 0, len(probabilities))
		for n := range probabilities {
			names = append(names, n)
		}
		sort.Strings(names)
		return nil, domain.Errorf("composite.probability", domain.KindConfig,
			"unknown probability %q (expected one of %s)", name, strings.Join(names, ", "))
	}
	return p, nil
}
