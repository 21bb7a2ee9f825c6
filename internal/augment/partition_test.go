package augment

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/image-augment/internal/domain"
)

func imageNames(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("img_%03d.png", i)
	}
	return out
}

func TestPartition_Sizes(t *testing.T) {
	p, err := NewPartitioner([]float64{0.7, 0.2, 0.1}, 42)
	require.NoError(t, err)

	parts := p.Partition(imageNames(100)).Map()
	assert.Len(t, parts[Train], 70)
	assert.Len(t, parts[Valid], 10)
	assert.Len(t, parts[Test], 20)
}

func TestPartition_Reproducible(t *testing.T) {
	run := func() Partitions {
		p, err := NewPartitioner([]float64{0.7, 0.2, 0.1}, 42)
		require.NoError(t, err)
		return p.Partition(imageNames(100))
	}
	assert.Equal(t, run(), run())

	other, err := NewPartitioner([]float64{0.7, 0.2, 0.1}, 43)
	require.NoError(t, err)
	assert.NotEqual(t, run(), other.Partition(imageNames(100)))
}

func TestPartition_DisjointUnion(t *testing.T) {
	ratios := [][]float64{
		{0.5, 0.5},
		{1, 0},
		{0, 1},
		{0.75, 0.25},
		{0.75, 0.15, 0.1},
		{0.34, 0.33, 0.33},
		{0, 0, 1},
	}
	for _, n := range []int{0, 1, 7, 33, 100} {
		for _, r := range ratios {
			t.Run(fmt.Sprintf("%d/%v", n, r), func(t *testing.T) {
				p, err := NewPartitioner(r, 1)
				require.NoError(t, err)

				images := imageNames(n)
				parts := p.Partition(images)

				var all []string
				for _, part := range parts {
					all = append(all, part.Images...)
				}
				assert.ElementsMatch(t, images, all, "union must equal input with no duplicates")

				m := parts.Map()
				trainWant := int(math.RoundToEven(float64(n) * r[0]))
				assert.Len(t, m[Train], min(trainWant, n))
			})
		}
	}
}

func TestPartition_DoesNotMutateInput(t *testing.T) {
	p, err := NewPartitioner([]float64{0.5, 0.5}, 3)
	require.NoError(t, err)

	images := imageNames(20)
	before := append([]string(nil), images...)
	p.Partition(images)
	assert.Equal(t, before, images)
}

func TestPartition_RoundsHalfToEven(t *testing.T) {
	// 5 * 0.5 = 2.5 rounds to 2
	p, err := NewPartitioner([]float64{0.5, 0.5}, 0)
	require.NoError(t, err)
	assert.Len(t, p.Partition(imageNames(5)).Map()[Train], 2)
}

func TestNewPartitioner_BadRatio(t *testing.T) {
	tests := []struct {
		name  string
		ratio []float64
	}{
		{"empty", nil},
		{"one element", []float64{1}},
		{"four elements", []float64{0.25, 0.25, 0.25, 0.25}},
		{"short sum", []float64{0.5, 0.4}},
		{"long sum", []float64{0.7, 0.2, 0.2}},
		{"negative", []float64{1.5, -0.5}},
		{"nan", []float64{math.NaN(), 1}},
		{"inf", []float64{math.Inf(1), 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPartitioner(tt.ratio, 1)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrConfig))
		})
	}
}
