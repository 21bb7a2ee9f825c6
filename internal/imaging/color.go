package imaging

import (
	"image"
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/disintegration/imaging"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// HSLScale holds per-channel multipliers applied in HSL colour space.
//
// A multiplier of 1 leaves its channel unchanged:
//   - Hue is multiplied in degrees and wrapped into [0, 360)
//   - Saturation and Lightness are multiplied and clamped to [0, 1]
type HSLScale struct {
	Hue        float64
	Saturation float64
	Lightness  float64
}

// ScaleHSL converts every pixel to HSL, applies s, and converts back to RGB.
//
// Alpha is preserved. The conversion follows the standard algorithm via
// go-colorful:
//  1. Normalize RGB to 0-1 range
//  2. Convert to Hue (0-360), Saturation (0-1), Lightness (0-1)
//  3. Scale each component and bring it back into range
//  4. Convert back and clamp to the RGB gamut
func ScaleHSL(img image.Image, s HSLScale) image.Image {
	return adjust.Apply(img, func(c color.RGBA) color.RGBA {
		col := colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
		h, sat, l := col.Hsl()

		h = math.Mod(h*s.Hue, 360)
		if h < 0 {
			h += 360
		}
		sat = clampUnit(sat * s.Saturation)
		l = clampUnit(l * s.Lightness)

		r, g, b := colorful.Hsl(h, sat, l).Clamped().RGB255()
		return color.RGBA{R: r, G: g, B: b, A: c.A}
	})
}

// ShiftRGB adds a signed offset to each colour channel, saturating at 0 and 255.
func ShiftRGB(img image.Image, dr, dg, db int) image.Image {
	return adjust.Apply(img, func(c color.RGBA) color.RGBA {
		return color.RGBA{
			R: clampByte(int(c.R) + dr),
			G: clampByte(int(c.G) + dg),
			B: clampByte(int(c.B) + db),
			A: c.A,
		}
	})
}

// PermuteRGB reorders colour channels: output channel i takes input channel
// order[i], where 0=R, 1=G, 2=B.
func PermuteRGB(img image.Image, order [3]int) image.Image {
	return adjust.Apply(img, func(c color.RGBA) color.RGBA {
		in := [3]uint8{c.R, c.G, c.B}
		return color.RGBA{R: in[order[0]], G: in[order[1]], B: in[order[2]], A: c.A}
	})
}

// AddNoise adds a per-sample offset to every colour channel, saturating at 0
// and 255. sample is called exactly three times per pixel in row-major order
// (R, G, B), so a seeded source yields a reproducible noise field.
func AddNoise(img image.Image, sample func() float64) image.Image {
	dst := imaging.Clone(img)
	for i := 0; i < len(dst.Pix); i += 4 {
		for ch := 0; ch < 3; ch++ {
			v := float64(dst.Pix[i+ch]) + sample()
			dst.Pix[i+ch] = clampByte(int(math.Round(v)))
		}
	}
	return dst
}

func clampByte(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
