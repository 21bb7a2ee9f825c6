package filter

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/image-augment/internal/domain"
	"github.com/ironsheep/image-augment/internal/geometry"
)

// createPatternImage creates an image with a different colour in each quadrant
func createPatternImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var c color.Color
			switch {
			case x < width/2 && y < height/2:
				c = color.RGBA{255, 0, 0, 255}
			case x >= width/2 && y < height/2:
				c = color.RGBA{0, 255, 0, 255}
			case x < width/2:
				c = color.RGBA{0, 0, 255, 255}
			default:
				c = color.RGBA{255, 255, 255, 255}
			}
			img.Set(x, y, c)
		}
	}
	return img
}

func samePixels(t *testing.T, a, b image.Image) bool {
	t.Helper()
	if a.Bounds().Size() != b.Bounds().Size() {
		return false
	}
	ab, bb := a.Bounds(), b.Bounds()
	for y := 0; y < ab.Dy(); y++ {
		for x := 0; x < ab.Dx(); x++ {
			r1, g1, b1, a1 := a.At(ab.Min.X+x, ab.Min.Y+y).RGBA()
			r2, g2, b2, a2 := b.At(bb.Min.X+x, bb.Min.Y+y).RGBA()
			if r1 != r2 || g1 != g2 || b1 != b2 || a1 != a2 {
				return false
			}
		}
	}
	return true
}

func allFilters(t *testing.T) []Filter {
	t.Helper()
	rotate, err := NewRotate(25, 0.5, 0.5)
	require.NoError(t, err)
	shift, err := NewRGBShift(25, 25, 25)
	require.NoError(t, err)
	bright, err := NewBrightness(0.12)
	require.NoError(t, err)
	contr, err := NewContrast(0.5)
	require.NoError(t, err)
	bc, err := NewBrightnessContrast(0.1, 0.3)
	require.NoError(t, err)
	blur, err := NewBlur(3, 7)
	require.NoError(t, err)
	gauss, err := NewGaussianBlur(3, 7)
	require.NoError(t, err)
	noise, err := NewNoise(0, 3)
	require.NoError(t, err)
	hsl, err := NewHueSatLight(DefaultHSLSpread)
	require.NoError(t, err)
	hue, err := NewHue(DefaultHSLSpread)
	require.NoError(t, err)
	jpeg, err := NewJPEGCompression(10, 40)
	require.NoError(t, err)
	stack, err := NewStack(NewFlip(), rotate.Clone())
	require.NoError(t, err)

	return []Filter{
		NewHorizontalFlip(), NewVerticalFlip(), NewFlip(), rotate,
		shift, NewRGBPermute(), bright, contr, bc, blur, gauss, noise, hsl, hue, jpeg, stack,
	}
}

func TestForwardAndBoxPathAgreeOnPixels(t *testing.T) {
	img := createPatternImage(40, 30)
	boxes := []geometry.BoundingBox{geometry.New(5, 5, 10, 8)}

	for _, f := range allFilters(t) {
		t.Run(f.Name(), func(t *testing.T) {
			a := f.Clone()
			b := f.Clone()
			a.Reseed(99)
			b.Reseed(99)

			plain, err := a.Forward(img)
			require.NoError(t, err)
			withBoxes, moved, err := b.ForwardWithBoxes(img, boxes)
			require.NoError(t, err)

			assert.True(t, samePixels(t, plain, withBoxes), "pixel paths diverged")
			assert.Len(t, moved, len(boxes))
		})
	}
}

func TestReseedIsReproducible(t *testing.T) {
	img := createPatternImage(32, 32)

	for _, f := range allFilters(t) {
		t.Run(f.Name(), func(t *testing.T) {
			f.Reseed(7)
			first, err := f.Forward(img)
			require.NoError(t, err)
			f.Reseed(7)
			second, err := f.Forward(img)
			require.NoError(t, err)
			assert.True(t, samePixels(t, first, second))
		})
	}
}

func TestPixelFiltersPassBoxesThrough(t *testing.T) {
	img := createPatternImage(20, 20)
	boxes := []geometry.BoundingBox{geometry.New(1, 2, 3, 4), geometry.New(10, 10, 5, 5)}

	f, err := NewBrightness(0.2)
	require.NoError(t, err)

	_, out, err := f.ForwardWithBoxes(img, boxes)
	require.NoError(t, err)
	assert.Equal(t, boxes, out)
}

func TestApply_TypeMismatch(t *testing.T) {
	img := createPatternImage(10, 10)

	_, err := Apply(NewFlip(), img, true, []geometry.BoundingBox{{}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrTypeMismatch))
}

func TestApply_IgnoresBoxesWhenNotRequested(t *testing.T) {
	img := createPatternImage(10, 10)

	res, err := Apply(NewFlip(), img, false, []geometry.BoundingBox{{}})
	require.NoError(t, err)
	assert.Nil(t, res.Boxes)
	assert.NotNil(t, res.Image)
}

type panicky struct{ HorizontalFlip }

func (panicky) Forward(image.Image) (image.Image, error) { panic("boom") }

func TestApply_PanicBecomesTransformError(t *testing.T) {
	_, err := Apply(&panicky{}, createPatternImage(4, 4), false, nil)
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindTransform))
}

func TestDeriveSeedDistinct(t *testing.T) {
	seen := map[int64]bool{}
	for i := 0; i < 1000; i++ {
		s := DeriveSeed(42, i)
		assert.False(t, seen[s], "duplicate child seed at %d", i)
		seen[s] = true
	}
	assert.Equal(t, DeriveSeed(42, 3), DeriveSeed(42, 3))
	assert.NotEqual(t, DeriveSeed(42, 3), DeriveSeed(43, 3))
}

func TestStack(t *testing.T) {
	t.Run("rejects empty", func(t *testing.T) {
		_, err := NewStack()
		assert.True(t, errors.Is(err, domain.ErrConfig))
	})

	t.Run("rejects nil child", func(t *testing.T) {
		_, err := NewStack(NewFlip(), nil)
		assert.True(t, errors.Is(err, domain.ErrConfig))
	})

	t.Run("threads boxes", func(t *testing.T) {
		img := createPatternImage(100, 100)
		box := geometry.New(10, 20, 30, 40)

		s, err := NewStack(NewHorizontalFlip(), NewVerticalFlip())
		require.NoError(t, err)
		_, out, err := s.ForwardWithBoxes(img, []geometry.BoundingBox{box})
		require.NoError(t, err)

		_, direct, err := NewFlip().ForwardWithBoxes(img, []geometry.BoundingBox{box})
		require.NoError(t, err)
		assert.Equal(t, direct, out)
	})

	t.Run("name lists children", func(t *testing.T) {
		s, err := NewStack(NewFlip(), NewRGBPermute())
		require.NoError(t, err)
		assert.Equal(t, "stack(flip,rgb_permute)", s.Name())
	})
}
