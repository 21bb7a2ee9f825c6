package filter

import (
	"fmt"
	"sort"

	"github.com/go-viper/mapstructure/v2"
)

// Spec declares a filter by name. Params are decoded into the named filter's
// option struct; Filters holds the children of a "stack".
type Spec struct {
	Name    string         `koanf:"name" mapstructure:"name" validate:"required"`
	Params  map[string]any `koanf:"params" mapstructure:"params"`
	Filters []Spec         `koanf:"filters" mapstructure:"filters"`
}

// RotateOptions configures "rotate".
type RotateOptions struct {
	MaxAngle int       `mapstructure:"max_angle"`
	Anchor   []float64 `mapstructure:"anchor"`
}

// RGBShiftOptions configures "rgb_shift".
type RGBShiftOptions struct {
	R int `mapstructure:"r"`
	G int `mapstructure:"g"`
	B int `mapstructure:"b"`
}

// RangeOptions configures filters that draw an integer from [Min, Max].
type RangeOptions struct {
	Min int `mapstructure:"min"`
	Max int `mapstructure:"max"`
}

// LimitOptions configures brightness and contrast.
type LimitOptions struct {
	Max float64 `mapstructure:"max"`
}

// BrightnessContrastOptions configures "brightness_contrast".
type BrightnessContrastOptions struct {
	Brightness float64 `mapstructure:"brightness"`
	Contrast   float64 `mapstructure:"contrast"`
}

// NoiseOptions configures "noise".
type NoiseOptions struct {
	Mean   float64 `mapstructure:"mean"`
	StdDev float64 `mapstructure:"stddev"`
}

// SpreadOptions configures the HSL family.
type SpreadOptions struct {
	Spread float64 `mapstructure:"spread"`
}

type builder func(params map[string]any) (Filter, error)

var builders = map[string]builder{
	"horizontal_flip": func(map[string]any) (Filter, error) { return NewHorizontalFlip(), nil },
	"vertical_flip":   func(map[string]any) (Filter, error) { return NewVerticalFlip(), nil },
	"flip":            func(map[string]any) (Filter, error) { return NewFlip(), nil },
	"rgb_permute":     func(map[string]any) (Filter, error) { return NewRGBPermute(), nil },

	"rotate": func(p map[string]any) (Filter, error) {
		o := RotateOptions{MaxAngle: 30, Anchor: []float64{0.5, 0.5}}
		if err := decode("rotate", p, &o); err != nil {
			return nil, err
		}
		if len(o.Anchor) != 2 {
			return nil, configError("filter.rotate", "anchor needs 2 components, got %d", len(o.Anchor))
		}
		return NewRotate(o.MaxAngle, o.Anchor[0], o.Anchor[1])
	},
	"rgb_shift": func(p map[string]any) (Filter, error) {
		o := RGBShiftOptions{R: 25, G: 25, B: 25}
		if err := decode("rgb_shift", p, &o); err != nil {
			return nil, err
		}
		return NewRGBShift(o.R, o.G, o.B)
	},
	"brightness": func(p map[string]any) (Filter, error) {
		o := LimitOptions{Max: 0.12}
		if err := decode("brightness", p, &o); err != nil {
			return nil, err
		}
		return NewBrightness(o.Max)
	},
	"contrast": func(p map[string]any) (Filter, error) {
		o := LimitOptions{Max: 0.5}
		if err := decode("contrast", p, &o); err != nil {
			return nil, err
		}
		return NewContrast(o.Max)
	},
	"brightness_contrast": func(p map[string]any) (Filter, error) {
		o := BrightnessContrastOptions{Brightness: 0.12, Contrast: 0.5}
		if err := decode("brightness_contrast", p, &o); err != nil {
			return nil, err
		}
		return NewBrightnessContrast(o.Brightness, o.Contrast)
	},
	"blur": func(p map[string]any) (Filter, error) {
		o := RangeOptions{Min: 3, Max: 10}
		if err := decode("blur", p, &o); err != nil {
			return nil, err
		}
		return NewBlur(o.Min, o.Max)
	},
	"gaussian_blur": func(p map[string]any) (Filter, error) {
		o := RangeOptions{Min: 3, Max: 10}
		if err := decode("gaussian_blur", p, &o); err != nil {
			return nil, err
		}
		return NewGaussianBlur(o.Min, o.Max)
	},
	"noise": func(p map[string]any) (Filter, error) {
		o := NoiseOptions{Mean: 0, StdDev: 3}
		if err := decode("noise", p, &o); err != nil {
			return nil, err
		}
		return NewNoise(o.Mean, o.StdDev)
	},
	"hue_sat_light": spreadBuilder("hue_sat_light", NewHueSatLight),
	"hue":           spreadBuilder("hue", NewHue),
	"saturation":    spreadBuilder("saturation", NewSaturation),
	"lightness":     spreadBuilder("lightness", NewLightness),
	"jpeg_compression": func(p map[string]any) (Filter, error) {
		o := RangeOptions{Min: 10, Max: 10}
		if err := decode("jpeg_compression", p, &o); err != nil {
			return nil, err
		}
		return NewJPEGCompression(o.Min, o.Max)
	},
}

func spreadBuilder(name string, ctor func(float64) (Filter, error)) builder {
	return func(p map[string]any) (Filter, error) {
		o := SpreadOptions{Spread: DefaultHSLSpread}
		if err := decode(name, p, &o); err != nil {
			return nil, err
		}
		return ctor(o.Spread)
	}
}

// Names returns the registered filter names, sorted. "stack" is included.
func Names() []string {
	names := make([]string, 0, len(builders)+1)
	for n := range builders {
		names = append(names, n)
	}
	names = append(names, "stack")
	sort.Strings(names)
	return names
}

// Build constructs the filter described by spec. Unknown names, unknown
// parameters and out-of-range values are configuration errors.
func Build(spec Spec) (Filter, error) {
	if spec.Name == "stack" {
		children := make([]Filter, 0, len(spec.Filters))
		for i, c := range spec.Filters {
			f, err := Build(c)
			if err != nil {
				return nil, fmt.Errorf("stack child %d: %w", i, err)
			}
			children = append(children, f)
		}
		return NewStack(children...)
	}

	b, ok := builders[spec.Name]
	if !ok {
		return nil, configError("filter.build", "unknown filter %q", spec.Name)
	}
	if len(spec.Filters) > 0 {
		return nil, configError("filter.build", "filter %q does not take child filters", spec.Name)
	}
	return b(spec.Params)
}

// BuildAll constructs every spec in order.
func BuildAll(specs []Spec) ([]Filter, error) {
	out := make([]Filter, 0, len(specs))
	for i, s := range specs {
		f, err := Build(s)
		if err != nil {
			return nil, fmt.Errorf("filter %d (%s): %w", i, s.Name, err)
		}
		out = append(out, f)
	}
	return out, nil
}

func decode(name string, params map[string]any, out any) error {
	if len(params) == 0 {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		ZeroFields:       true,
	})
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := dec.Decode(params); err != nil {
		return configError("filter."+name, "invalid params: %v", err)
	}
	return nil
}
