package imaging

import (
	"image/color"
	"math"
	"testing"

	"github.com/ironsheep/image-augment/internal/geometry"
)

func TestResize(t *testing.T) {
	img := createInMemoryImage(100, 50, color.RGBA{255, 0, 0, 255})

	out := Resize(img, geometry.Size{Width: 32, Height: 64})

	if got := Dimensions(out); got != (geometry.Size{Width: 32, Height: 64}) {
		t.Errorf("dimensions: got %+v, want 32x64", got)
	}
}

func TestFlip(t *testing.T) {
	img := createPatternImage(20, 20)

	tests := []struct {
		name    string
		axis    Axis
		x, y    int
		r, g, b uint8
	}{
		// top-left after mirroring top/bottom comes from bottom-left (blue)
		{"x axis", AxisX, 2, 2, 0, 0, 255},
		// top-left after mirroring left/right comes from top-right (green)
		{"y axis", AxisY, 2, 2, 0, 255, 0},
		// top-left after both comes from bottom-right (white)
		{"both", AxisBoth, 2, 2, 255, 255, 255},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Flip(img, tt.axis)
			r, g, b := rgbAt(out, tt.x, tt.y)
			if r != tt.r || g != tt.g || b != tt.b {
				t.Errorf("got (%d,%d,%d), want (%d,%d,%d)", r, g, b, tt.r, tt.g, tt.b)
			}
		})
	}
}

func TestRotationMatrix_MatchesBoxRotation(t *testing.T) {
	size := geometry.Size{Width: 100, Height: 80}
	anchor := geometry.Anchor(0.3, 0.6, size)
	theta := 25 * math.Pi / 180

	m := RotationMatrix(anchor.X, anchor.Y, theta)
	box := geometry.New(40, 10, 1, 1)

	// Single-pixel box: its rotated top-left corner must match the matrix.
	x, y := 40.0, 10.0
	mx := m[0]*x + m[1]*y + m[2]
	my := m[3]*x + m[4]*y + m[5]

	rotated := box.Rotate(anchor, theta, geometry.Size{Width: 1000, Height: 1000})
	if math.Abs(float64(rotated.X())-mx) > 1.5 || math.Abs(float64(rotated.Y())-my) > 1.5 {
		t.Errorf("matrix maps (40,10) to (%.1f,%.1f), box went to (%d,%d)", mx, my, rotated.X(), rotated.Y())
	}
}

func TestWarpAffine_Identity(t *testing.T) {
	img := createPatternImage(40, 40)
	size := Dimensions(img)

	out := WarpAffine(img, RotationMatrix(20, 20, 0), size)

	for _, p := range [][2]int{{5, 5}, {35, 5}, {5, 35}, {35, 35}} {
		r1, g1, b1 := rgbAt(img, p[0], p[1])
		r2, g2, b2 := rgbAt(out, p[0], p[1])
		if r1 != r2 || g1 != g2 || b1 != b2 {
			t.Errorf("at %v: got (%d,%d,%d), want (%d,%d,%d)", p, r2, g2, b2, r1, g1, b1)
		}
	}
}

func TestWarpAffine_HalfTurn(t *testing.T) {
	img := createPatternImage(40, 40)
	size := Dimensions(img)

	out := WarpAffine(img, RotationMatrix(20, 20, math.Pi), size)

	// red top-left ends up bottom-right
	r, g, b := rgbAt(out, 35, 35)
	if r != 255 || g != 0 || b != 0 {
		t.Errorf("half turn: got (%d,%d,%d) at bottom-right, want red", r, g, b)
	}
}

func TestBlurKeepsSize(t *testing.T) {
	img := createPatternImage(30, 20)

	box := BoxBlur(img, 5)
	gauss := GaussianBlur(img, 5)
	if Dimensions(box) != Dimensions(img) {
		t.Errorf("BoxBlur changed size: %+v", Dimensions(box))
	}
	if Dimensions(gauss) != Dimensions(img) {
		t.Errorf("GaussianBlur changed size: %+v", Dimensions(gauss))
	}
}

func TestAdjustBrightnessAndContrast(t *testing.T) {
	img := createInMemoryImage(8, 8, color.RGBA{100, 100, 100, 255})

	brighter := AdjustBrightness(img, 0.2)
	r, _, _ := rgbAt(brighter, 0, 0)
	if r <= 100 {
		t.Errorf("brightness +0.2 should brighten, got %d", r)
	}

	same := AdjustContrast(img, 0)
	r, _, _ = rgbAt(same, 0, 0)
	if absDiff(r, 100) > 1 {
		t.Errorf("contrast 0 should be a no-op, got %d", r)
	}
}

func TestEncodeDecode(t *testing.T) {
	img := createPatternImage(32, 32)

	out, err := EncodeDecode(img, 10)
	if err != nil {
		t.Fatalf("EncodeDecode failed: %v", err)
	}
	if Dimensions(out) != Dimensions(img) {
		t.Errorf("dimensions changed: %+v", Dimensions(out))
	}
}
