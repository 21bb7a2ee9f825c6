package cli

import (
	"fmt"
	"io"
	"math/rand/v2"

	"github.com/ironsheep/image-augment/internal/augment"
	"github.com/ironsheep/image-augment/internal/batch"
	"github.com/ironsheep/image-augment/internal/coco"
	"github.com/ironsheep/image-augment/internal/composite"
	"github.com/ironsheep/image-augment/internal/config"
	"github.com/ironsheep/image-augment/internal/filter"
	"github.com/ironsheep/image-augment/internal/geometry"
	"github.com/ironsheep/image-augment/internal/imaging"
	"github.com/ironsheep/image-augment/internal/logger"
)

// newLogger builds the process logger from the log section.
func newLogger(cfg config.LogConfig, out io.Writer) logger.Logger {
	lc := logger.DefaultConfig()
	lc.Level = logger.ParseLevel(cfg.Level)
	lc.JSON = cfg.JSON
	lc.Output = out
	return logger.New(lc)
}

// seed returns the configured seed, or a random one when none is set.
func seed(cfg *config.Config) int64 {
	if cfg.Seed != nil {
		return *cfg.Seed
	}
	return rand.Int64()
}

// newOrchestrator wires a loaded configuration into an orchestrator.
func newOrchestrator(cfg *config.Config, log logger.Logger) (*augment.Orchestrator, error) {
	s := seed(cfg)
	log.Debug("run seed", "seed", s)

	filters, err := filter.BuildAll(cfg.Filters)
	if err != nil {
		return nil, err
	}
	prob, err := composite.ParseProbability(cfg.Composite.Probability)
	if err != nil {
		return nil, err
	}
	c, err := composite.New(filters,
		composite.WithBoxes(cfg.BoxMode()),
		composite.WithAvoidRepeat(cfg.Composite.AvoidRepeat),
		composite.WithProbability(prob),
		composite.WithSeed(s),
	)
	if err != nil {
		return nil, err
	}

	format, err := imaging.ParseFormat(cfg.OutputFormat)
	if err != nil {
		return nil, err
	}

	oc := augment.Config{
		ImagesDir: cfg.ImagesDir,
		OutputDir: cfg.OutputDir,
		Split:     cfg.Split,
		Ratio:     cfg.Ratio,
		Seed:      s,
		BatchSize: cfg.BatchSize,
		Workers:   cfg.Workers,
		Batch: batch.Options{
			Size:    geometry.Size{Width: cfg.Width, Height: cfg.Height},
			Format:  format,
			Quality: cfg.JPEGQuality,
		},
		Logger: log,
	}
	if cfg.BoxMode() {
		src, err := coco.LoadSource(cfg.Annotations)
		if err != nil {
			return nil, fmt.Errorf("failed to load annotations: %w", err)
		}
		oc.Source = src
		oc.FinalStore = cfg.OutputAnnotations
	}
	return augment.New(oc, c)
}
