package filter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/image-augment/internal/domain"
)

func TestBuildEveryName(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			spec := Spec{Name: name}
			if name == "stack" {
				spec.Filters = []Spec{{Name: "flip"}, {Name: "blur"}}
			}
			f, err := Build(spec)
			require.NoError(t, err)
			assert.NotNil(t, f)
		})
	}
}

func TestBuildDecodesParams(t *testing.T) {
	f, err := Build(Spec{Name: "rotate", Params: map[string]any{
		"max_angle": "-20",
		"anchor":    []any{0.25, 1},
	}})
	require.NoError(t, err)

	r, ok := f.(*Rotate)
	require.True(t, ok)
	assert.Equal(t, -20, r.MaxAngle())
	assert.Equal(t, 0.25, r.anchorX)
	assert.Equal(t, 1.0, r.anchorY)
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name string
		spec Spec
	}{
		{"unknown name", Spec{Name: "sharpen"}},
		{"unknown param", Spec{Name: "blur", Params: map[string]any{"sigma": 2}}},
		{"bad value", Spec{Name: "blur", Params: map[string]any{"min": 9, "max": 3}}},
		{"short anchor", Spec{Name: "rotate", Params: map[string]any{"anchor": []any{0.5}}}},
		{"empty stack", Spec{Name: "stack"}},
		{"bad stack child", Spec{Name: "stack", Filters: []Spec{{Name: "nope"}}}},
		{"children on leaf", Spec{Name: "flip", Filters: []Spec{{Name: "flip"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.spec)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrConfig), "got %v", err)
		})
	}
}

func TestBuildAll(t *testing.T) {
	fs, err := BuildAll([]Spec{{Name: "flip"}, {Name: "noise", Params: map[string]any{"stddev": 5}}})
	require.NoError(t, err)
	require.Len(t, fs, 2)
	assert.Equal(t, "flip", fs[0].Name())
	assert.Equal(t, "noise", fs[1].Name())

	_, err = BuildAll([]Spec{{Name: "flip"}, {Name: "bogus"}})
	assert.ErrorContains(t, err, "filter 1 (bogus)")
}
