// Package config loads the settings of an augmentation run.
//
// Sources are layered in increasing precedence: built-in defaults, an
// optional YAML file, then IMAGE_AUGMENT_* environment variables. The merged
// result is decoded into Config, checked with struct tags and then with
// checks that need the filter registry and the split rules.
package config

import (
	"github.com/ironsheep/image-augment/internal/filter"
)

// EnvPrefix prefixes every environment variable the loader reads.
const EnvPrefix = "IMAGE_AUGMENT_"

// Config is the full description of an augmentation run.
type Config struct {
	// ImagesDir holds the source images. Every regular, non-hidden file is
	// treated as an image; unreadable ones are skipped at run time.
	ImagesDir string `koanf:"images_dir" validate:"required"`
	OutputDir string `koanf:"output_dir" validate:"required"`

	// Annotations is the source COCO file. Setting it switches the run to
	// bounding-box mode.
	Annotations string `koanf:"annotations"`
	// OutputAnnotations defaults to <output_dir>/annotations.json in
	// bounding-box mode.
	OutputAnnotations string `koanf:"output_annotations"`

	Split bool      `koanf:"split"`
	Ratio []float64 `koanf:"ratio"`
	// Seed fixes every random stream of the run. Unset means random.
	Seed *int64 `koanf:"seed"`

	Width      int `koanf:"width"       validate:"gt=0"`
	Height     int `koanf:"height"      validate:"gt=0"`
	Variations int `koanf:"variations"  validate:"gte=0"`
	BatchSize  int `koanf:"batch_size"  validate:"gte=0"`

	Concurrent bool `koanf:"concurrent"`
	Workers    int  `koanf:"workers" validate:"gte=0"`

	OutputFormat string `koanf:"output_format" validate:"oneof=jpeg jpg png webp"`
	JPEGQuality  int    `koanf:"jpeg_quality"  validate:"gte=1,lte=100"`

	Log       LogConfig       `koanf:"log"`
	Composite CompositeConfig `koanf:"composite"`

	// Filters is the pool the composite picks from. Empty means
	// DefaultFilters.
	Filters []filter.Spec `koanf:"filters" validate:"dive"`
}

type LogConfig struct {
	Level string `koanf:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `koanf:"json"`
}

type CompositeConfig struct {
	AvoidRepeat bool `koanf:"avoid_repeat"`
	// Probability names the draw remap: identity, square, sqrt or invert.
	Probability string `koanf:"probability"`
}

// BoxMode reports whether the run carries bounding boxes.
func (c *Config) BoxMode() bool {
	return c.Annotations != ""
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		Split:        true,
		Ratio:        []float64{0.75, 0.15, 0.1},
		Width:        256,
		Height:       256,
		Variations:   15,
		OutputFormat: "jpeg",
		JPEGQuality:  95,
		Log:          LogConfig{Level: "info"},
		Composite:    CompositeConfig{AvoidRepeat: true, Probability: "identity"},
	}
}

// DefaultFilters is the pool used when none is configured.
func DefaultFilters() []filter.Spec {
	return []filter.Spec{
		{Name: "horizontal_flip"},
		{Name: "vertical_flip"},
		{Name: "rotate", Params: map[string]any{"max_angle": 15, "anchor": []any{0.5, 0.5}}},
		{Name: "brightness_contrast"},
		{Name: "hue_sat_light"},
		{Name: "gaussian_blur"},
		{Name: "noise"},
	}
}
