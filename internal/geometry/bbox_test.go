package geometry

import (
	"errors"
	"math"
	"testing"

	"github.com/ironsheep/image-augment/internal/domain"
)

func TestNewRounds(t *testing.T) {
	b := New(10.4, 20.6, 30.5, 39.49)
	if b.X() != 10 || b.Y() != 21 || b.Width() != 31 || b.Height() != 39 {
		t.Errorf("got %v, want (10,21,31,39)", b)
	}
	if !b.Valid() {
		t.Error("constructed box should be valid")
	}
	if (BoundingBox{}).Valid() {
		t.Error("zero box must not be valid")
	}
}

func TestFromCorners(t *testing.T) {
	b, err := FromCorners([]float64{10, 20, 40, 60})
	if err != nil {
		t.Fatalf("FromCorners failed: %v", err)
	}
	if b.AsTuple() != [4]float64{10, 20, 30, 40} {
		t.Errorf("got %v, want (10,20,30,40)", b.AsTuple())
	}

	swapped, err := FromCorners([]float64{40, 60, 10, 20})
	if err != nil {
		t.Fatalf("swapped corners should not error: %v", err)
	}
	if swapped.Width() != -30 || swapped.Height() != -40 {
		t.Errorf("swapped: got %v, want negative size", swapped)
	}
}

func TestConstructorsRejectBadArity(t *testing.T) {
	tests := []struct {
		name string
		fn   func([]float64) (BoundingBox, error)
	}{
		{"tuple", FromTuple},
		{"corners", FromCorners},
		{"normalized", func(v []float64) (BoundingBox, error) { return FromNormalized(v, Size{100, 100}) }},
		{"normalized corners", func(v []float64) (BoundingBox, error) { return FromNormalizedCorners(v, Size{100, 100}) }},
	}

	for _, tt := range tests {
		for _, vals := range [][]float64{nil, {1, 2, 3}, {1, 2, 3, 4, 5}} {
			t.Run(tt.name, func(t *testing.T) {
				_, err := tt.fn(vals)
				if !errors.Is(err, domain.ErrInvalidGeometry) {
					t.Errorf("len %d: got %v, want ErrInvalidGeometry", len(vals), err)
				}
			})
		}
	}
}

func TestCornerRoundTrip(t *testing.T) {
	boxes := []BoundingBox{
		New(0, 0, 0, 0),
		New(10, 20, 30, 40),
		New(-5, -7, 12, 3),
		New(250.4, 13.6, 99.5, 1),
		New(1e4, 2e4, 3, 5),
	}

	for _, b := range boxes {
		c := b.CornerForm()
		got, err := FromCorners([]float64{float64(c.XMin), float64(c.YMin), float64(c.XMax), float64(c.YMax)})
		if err != nil {
			t.Fatalf("FromCorners: %v", err)
		}
		for i, v := range got.AsTuple() {
			if math.Abs(v-b.AsTuple()[i]) > 1 {
				t.Errorf("round trip %v -> %v", b, got)
			}
		}
	}
}

func TestCornersOrder(t *testing.T) {
	c := New(10, 20, 30, 40).Corners()
	want := Corners{{10, 20}, {10, 60}, {40, 60}, {40, 20}}
	if c != want {
		t.Errorf("Corners: got %v, want %v", c, want)
	}
}

func TestNormalizeRoundTrip(t *testing.T) {
	size := Size{Width: 200, Height: 100}
	b := New(50, 25, 100, 50)

	n := b.Normalize(size)
	if n != (Normalized{X: 0.25, Y: 0.25, Width: 0.5, Height: 0.5}) {
		t.Errorf("Normalize: got %+v", n)
	}

	back, err := FromNormalized([]float64{n.X, n.Y, n.Width, n.Height}, size)
	if err != nil {
		t.Fatal(err)
	}
	if back.AsTuple() != b.AsTuple() {
		t.Errorf("FromNormalized: got %v, want %v", back, b)
	}

	nc := b.NormalizedCorners(size)
	fromNC, err := FromNormalizedCorners([]float64{nc.XMin, nc.YMin, nc.XMax, nc.YMax}, size)
	if err != nil {
		t.Fatal(err)
	}
	if fromNC.AsTuple() != b.AsTuple() {
		t.Errorf("FromNormalizedCorners: got %v, want %v", fromNC, b)
	}
}

func TestResize(t *testing.T) {
	b := New(10, 20, 30, 40)
	got := b.Resize(Size{Width: 100, Height: 200}, Size{Width: 50, Height: 50})
	if got.AsTuple() != [4]float64{5, 5, 15, 10} {
		t.Errorf("Resize: got %v", got)
	}

	same := b.Resize(Size{}, Size{Width: 10, Height: 10})
	if same != b {
		t.Errorf("Resize from empty size should be a no-op, got %v", same)
	}
}

func TestArea(t *testing.T) {
	if got := New(0, 0, 7, 6).Area(); got != 42 {
		t.Errorf("Area: got %d, want 42", got)
	}
}
