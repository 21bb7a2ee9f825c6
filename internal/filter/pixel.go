package filter

import (
	"image"
	"math"
	"math/rand/v2"

	"github.com/ironsheep/image-augment/internal/geometry"
	"github.com/ironsheep/image-augment/internal/imaging"
)

// pixelOp is the random draw plus pixel change of a non-geometric filter.
// Implementations hold only immutable parameters so clones can share them.
type pixelOp interface {
	name() string
	apply(rng *rand.Rand, img image.Image) (image.Image, error)
}

// pixel adapts a pixelOp to Filter. Boxes pass through untouched.
type pixel struct {
	stream
	op pixelOp
}

func newPixel(op pixelOp) *pixel {
	return &pixel{stream: newStream(), op: op}
}

func (p *pixel) Name() string { return p.op.name() }

func (p *pixel) Forward(img image.Image) (image.Image, error) {
	return p.op.apply(p.rng, img)
}

func (p *pixel) ForwardWithBoxes(img image.Image, boxes []geometry.BoundingBox) (image.Image, []geometry.BoundingBox, error) {
	out, err := p.op.apply(p.rng, img)
	if err != nil {
		return nil, nil, err
	}
	return out, boxes, nil
}

func (p *pixel) Clone() Filter {
	c := &pixel{op: p.op}
	c.Reseed(p.seed)
	return c
}

// rgbShift adds an independent offset in [-max, max] to each channel.
type rgbShift struct{ r, g, b int }

// NewRGBShift returns a filter that shifts red, green and blue by up to the
// given amounts (0-255).
func NewRGBShift(maxR, maxG, maxB int) (Filter, error) {
	for _, v := range []int{maxR, maxG, maxB} {
		if v < 0 || v > 255 {
			return nil, configError("filter.rgb_shift", "channel shift %d out of range [0,255]", v)
		}
	}
	return newPixel(rgbShift{maxR, maxG, maxB}), nil
}

func (rgbShift) name() string { return "rgb_shift" }

func (o rgbShift) apply(rng *rand.Rand, img image.Image) (image.Image, error) {
	dr := intBetween(rng, -o.r, o.r)
	dg := intBetween(rng, -o.g, o.g)
	db := intBetween(rng, -o.b, o.b)
	return imaging.ShiftRGB(img, dr, dg, db), nil
}

type rgbPermute struct{}

// NewRGBPermute returns a filter that reorders the colour channels with a
// uniformly drawn permutation.
func NewRGBPermute() Filter {
	return newPixel(rgbPermute{})
}

func (rgbPermute) name() string { return "rgb_permute" }

func (rgbPermute) apply(rng *rand.Rand, img image.Image) (image.Image, error) {
	p := rng.Perm(3)
	return imaging.PermuteRGB(img, [3]int{p[0], p[1], p[2]}), nil
}

type brightness struct{ max float64 }

// NewBrightness returns a filter that shifts brightness by a fraction drawn
// from [-max, max]. max must lie in [0, 1].
func NewBrightness(max float64) (Filter, error) {
	if !inUnit(max) {
		return nil, configError("filter.brightness", "max %g out of range [0,1]", max)
	}
	return newPixel(brightness{max}), nil
}

func (brightness) name() string { return "brightness" }

func (o brightness) apply(rng *rand.Rand, img image.Image) (image.Image, error) {
	return imaging.AdjustBrightness(img, uniform(rng, -o.max, o.max)), nil
}

type contrast struct{ max float64 }

// NewContrast returns a filter that scales contrast by a fraction drawn from
// [-max, max]. max must lie in [0, 1].
func NewContrast(max float64) (Filter, error) {
	if !inUnit(max) {
		return nil, configError("filter.contrast", "max %g out of range [0,1]", max)
	}
	return newPixel(contrast{max}), nil
}

func (contrast) name() string { return "contrast" }

func (o contrast) apply(rng *rand.Rand, img image.Image) (image.Image, error) {
	return imaging.AdjustContrast(img, uniform(rng, -o.max, o.max)), nil
}

type brightnessContrast struct{ brightness, contrast float64 }

// NewBrightnessContrast adjusts brightness and then contrast, each with its
// own draw.
func NewBrightnessContrast(maxBrightness, maxContrast float64) (Filter, error) {
	if !inUnit(maxBrightness) || !inUnit(maxContrast) {
		return nil, configError("filter.brightness_contrast",
			"limits (%g, %g) out of range [0,1]", maxBrightness, maxContrast)
	}
	return newPixel(brightnessContrast{maxBrightness, maxContrast}), nil
}

func (brightnessContrast) name() string { return "brightness_contrast" }

func (o brightnessContrast) apply(rng *rand.Rand, img image.Image) (image.Image, error) {
	b := uniform(rng, -o.brightness, o.brightness)
	c := uniform(rng, -o.contrast, o.contrast)
	return imaging.AdjustContrast(imaging.AdjustBrightness(img, b), c), nil
}

// blurKernel is shared by the box and Gaussian blurs: an odd kernel size drawn
// from [min, max].
type blurKernel struct {
	min, max int
	gaussian bool
}

func newBlur(op string, min, max int, gaussian bool) (Filter, error) {
	if min < 1 || max < min {
		return nil, configError(op, "kernel range [%d,%d] invalid: need 1 <= min <= max", min, max)
	}
	return newPixel(blurKernel{min: min, max: max, gaussian: gaussian}), nil
}

// NewBlur returns a box blur whose odd kernel size is drawn from [min, max].
func NewBlur(min, max int) (Filter, error) {
	return newBlur("filter.blur", min, max, false)
}

// NewGaussianBlur returns a Gaussian blur whose odd kernel size is drawn from
// [min, max].
func NewGaussianBlur(min, max int) (Filter, error) {
	return newBlur("filter.gaussian_blur", min, max, true)
}

func (o blurKernel) name() string {
	if o.gaussian {
		return "gaussian_blur"
	}
	return "blur"
}

func (o blurKernel) apply(rng *rand.Rand, img image.Image) (image.Image, error) {
	k := intBetween(rng, o.min, o.max)
	if k%2 == 0 {
		k++
	}
	if o.gaussian {
		return imaging.GaussianBlur(img, k), nil
	}
	return imaging.BoxBlur(img, k), nil
}

type noise struct{ mean, stddev float64 }

// NewNoise returns a filter that adds Gaussian noise with the given mean and
// standard deviation (in 0-255 channel units) to every channel sample.
func NewNoise(mean, stddev float64) (Filter, error) {
	if stddev < 0 || math.IsNaN(stddev) || math.IsNaN(mean) {
		return nil, configError("filter.noise", "invalid noise parameters mean=%g stddev=%g", mean, stddev)
	}
	return newPixel(noise{mean, stddev}), nil
}

func (noise) name() string { return "noise" }

func (o noise) apply(rng *rand.Rand, img image.Image) (image.Image, error) {
	return imaging.AddNoise(img, func() float64 {
		return o.mean + rng.NormFloat64()*o.stddev
	}), nil
}

// hsl scales the selected HSL channels by factors drawn from
// [1-spread, 1+spread).
type hsl struct {
	label  string
	spread float64
	hue    bool
	sat    bool
	light  bool
}

// DefaultHSLSpread bounds the HSL multipliers to [5/6, 7/6).
const DefaultHSLSpread = 1.0 / 6

func newHSL(label string, spread float64, hue, sat, light bool) (Filter, error) {
	if spread < 0 || spread > 1 {
		return nil, configError("filter."+label, "spread %g out of range [0,1]", spread)
	}
	return newPixel(hsl{label: label, spread: spread, hue: hue, sat: sat, light: light}), nil
}

// NewHueSatLight jitters hue, saturation and lightness together.
func NewHueSatLight(spread float64) (Filter, error) {
	return newHSL("hue_sat_light", spread, true, true, true)
}

// NewHue jitters hue only.
func NewHue(spread float64) (Filter, error) {
	return newHSL("hue", spread, true, false, false)
}

// NewSaturation jitters saturation only.
func NewSaturation(spread float64) (Filter, error) {
	return newHSL("saturation", spread, false, true, false)
}

// NewLightness jitters lightness only.
func NewLightness(spread float64) (Filter, error) {
	return newHSL("lightness", spread, false, false, true)
}

func (o hsl) name() string { return o.label }

func (o hsl) apply(rng *rand.Rand, img image.Image) (image.Image, error) {
	s := imaging.HSLScale{Hue: 1, Saturation: 1, Lightness: 1}
	if o.hue {
		s.Hue = o.factor(rng)
	}
	if o.sat {
		s.Saturation = o.factor(rng)
	}
	if o.light {
		s.Lightness = o.factor(rng)
	}
	return imaging.ScaleHSL(img, s), nil
}

func (o hsl) factor(rng *rand.Rand) float64 {
	return uniform(rng, 1-o.spread, 1+o.spread)
}

type jpegCompression struct{ min, max int }

// NewJPEGCompression returns a filter that re-encodes the image as JPEG at a
// quality drawn from [minQuality, maxQuality] and decodes it back.
func NewJPEGCompression(minQuality, maxQuality int) (Filter, error) {
	if minQuality < 1 || maxQuality > 100 || minQuality > maxQuality {
		return nil, configError("filter.jpeg_compression",
			"quality range [%d,%d] invalid: need 1 <= min <= max <= 100", minQuality, maxQuality)
	}
	return newPixel(jpegCompression{minQuality, maxQuality}), nil
}

func (jpegCompression) name() string { return "jpeg_compression" }

func (o jpegCompression) apply(rng *rand.Rand, img image.Image) (image.Image, error) {
	return imaging.EncodeDecode(img, intBetween(rng, o.min, o.max))
}
