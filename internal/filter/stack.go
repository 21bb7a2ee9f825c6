package filter

import (
	"image"
	"strings"

	"github.com/ironsheep/image-augment/internal/geometry"
)

// Stack applies its children in order. In box mode each child receives the
// boxes produced by the previous one.
type Stack struct {
	children []Filter
}

// NewStack returns a stack of children. It needs at least one child and none
// may be nil.
func NewStack(children ...Filter) (*Stack, error) {
	if len(children) == 0 {
		return nil, configError("filter.stack", "stack needs at least one filter")
	}
	for i, c := range children {
		if c == nil {
			return nil, configError("filter.stack", "filter %d is nil", i)
		}
	}
	return &Stack{children: append([]Filter(nil), children...)}, nil
}

func (s *Stack) Name() string {
	names := make([]string, len(s.children))
	for i, c := range s.children {
		names[i] = c.Name()
	}
	return "stack(" + strings.Join(names, ",") + ")"
}

// Children returns the filters in application order.
func (s *Stack) Children() []Filter {
	return append([]Filter(nil), s.children...)
}

func (s *Stack) Forward(img image.Image) (image.Image, error) {
	var err error
	for _, c := range s.children {
		if img, err = c.Forward(img); err != nil {
			return nil, err
		}
	}
	return img, nil
}

func (s *Stack) ForwardWithBoxes(img image.Image, boxes []geometry.BoundingBox) (image.Image, []geometry.BoundingBox, error) {
	var err error
	for _, c := range s.children {
		if img, boxes, err = c.ForwardWithBoxes(img, boxes); err != nil {
			return nil, nil, err
		}
	}
	return img, boxes, nil
}

// Reseed gives every child its own derived seed.
func (s *Stack) Reseed(seed int64) {
	for i, c := range s.children {
		c.Reseed(DeriveSeed(seed, i))
	}
}

func (s *Stack) Clone() Filter {
	children := make([]Filter, len(s.children))
	for i, c := range s.children {
		children[i] = c.Clone()
	}
	return &Stack{children: children}
}
