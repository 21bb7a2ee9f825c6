package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"gopkg.in/yaml.v3"

	"github.com/ironsheep/image-augment/internal/augment"
	"github.com/ironsheep/image-augment/internal/composite"
	"github.com/ironsheep/image-augment/internal/domain"
	"github.com/ironsheep/image-augment/internal/filter"
	"github.com/ironsheep/image-augment/internal/imaging"
)

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty) and the environment. Any failure is a configuration error.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, configErr(path, fmt.Errorf("failed to load defaults: %w", err))
	}

	if path != "" {
		if err := loadYAML(k, path); err != nil {
			return nil, configErr(path, err)
		}
	}

	if err := k.Load(env.Provider(".", env.Opt{
		Prefix:        EnvPrefix,
		TransformFunc: transformEnv,
	}), nil); err != nil {
		return nil, configErr(path, fmt.Errorf("failed to load environment variables: %w", err))
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			Result:           &cfg,
			TagName:          "koanf",
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}); err != nil {
		return nil, configErr(path, fmt.Errorf("failed to unmarshal configuration: %w", err))
	}

	cfg.resolve()
	if err := Validate(&cfg); err != nil {
		return nil, configErr(path, err)
	}
	return &cfg, nil
}

func configErr(path string, err error) error {
	if errors.Is(err, domain.ErrConfig) {
		return err
	}
	return domain.Wrap("config.load", domain.KindConfig, path, err)
}

// loadYAML merges only the keys present in the file, so defaults survive for
// everything it leaves out. Lists replace their default wholesale.
func loadYAML(k *koanf.Koanf, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config file not found: %s", path)
		}
		return fmt.Errorf("failed to read YAML file: %w", err)
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to parse YAML file: %w", err)
	}
	for key, value := range flattenMap("", raw) {
		if err := k.Set(key, value); err != nil {
			return fmt.Errorf("failed to set key %s: %w", key, err)
		}
	}
	return nil
}

// flattenMap flattens nested maps into dot-notation keys, dropping nils.
func flattenMap(prefix string, m map[string]any) map[string]any {
	result := make(map[string]any)
	for k, v := range m {
		if v == nil {
			continue
		}
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nested, ok := v.(map[string]any); ok {
			for fk, fv := range flattenMap(key, nested) {
				result[fk] = fv
			}
			continue
		}
		result[key] = v
	}
	return result
}

// transformEnv maps IMAGE_AUGMENT_LOG_LEVEL to log.level and
// IMAGE_AUGMENT_IMAGES_DIR to images_dir.
func transformEnv(key, value string) (string, any) {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	for _, section := range []string{"log", "composite"} {
		if rest, ok := strings.CutPrefix(key, section+"_"); ok {
			return section + "." + rest, value
		}
	}
	if key == "filters" {
		// filter lists only come from the YAML file
		return "", nil
	}
	return key, value
}

// resolve fills values derived from other fields.
func (c *Config) resolve() {
	if len(c.Filters) == 0 {
		c.Filters = DefaultFilters()
	}
	if c.BoxMode() && c.OutputAnnotations == "" {
		c.OutputAnnotations = filepath.Join(c.OutputDir, "annotations.json")
	}
	c.OutputFormat = strings.ToLower(c.OutputFormat)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks struct tags and then the rules that need other packages:
// the split ratio, the output format, the probability name and every filter.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("configuration cannot be nil")
	}
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	if cfg.Split {
		if err := augment.ValidateRatio(cfg.Ratio); err != nil {
			return err
		}
	}
	if _, err := imaging.ParseFormat(cfg.OutputFormat); err != nil {
		return err
	}
	if _, err := composite.ParseProbability(cfg.Composite.Probability); err != nil {
		return err
	}
	if _, err := filter.BuildAll(cfg.Filters); err != nil {
		return err
	}
	if cfg.BoxMode() {
		if filepath.Clean(cfg.OutputAnnotations) == filepath.Clean(cfg.Annotations) {
			return fmt.Errorf("output_annotations must differ from annotations")
		}
	}
	return nil
}
