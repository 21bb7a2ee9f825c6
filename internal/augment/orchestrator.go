// Package augment turns a directory of source images into an augmented
// dataset.
//
// The Orchestrator lists the images, optionally splits them into train,
// valid and test partitions, cuts each partition into units of work and runs
// one batch per unit. Sequential runs write straight into the final
// annotation store. Concurrent runs give every unit a private staging store;
// only after every unit has finished can the staging stores be merged into
// the final store. The join is enforced by types: MergeStaging accepts only
// the Completion returned by Pending.Wait.
package augment

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/image-augment/internal/batch"
	"github.com/ironsheep/image-augment/internal/coco"
	"github.com/ironsheep/image-augment/internal/composite"
	"github.com/ironsheep/image-augment/internal/domain"
	"github.com/ironsheep/image-augment/internal/logger"
)

// Config describes one augmentation run.
type Config struct {
	ImagesDir string
	OutputDir string

	// Split partitions the images using Ratio; otherwise one partition holds
	// everything and outputs go straight into OutputDir.
	Split bool
	Ratio []float64
	Seed  int64

	// BatchSize cuts each partition into units of at most this many images.
	// Zero keeps each partition whole.
	BatchSize int
	// Workers bounds concurrent units. Zero means one per CPU.
	Workers int

	// Source and FinalStore are required when the composite tracks boxes.
	Source     *coco.Source
	FinalStore string

	// Batch carries output size, format and reader/writer overrides. Name
	// and Logger are set per unit.
	Batch batch.Options

	Logger logger.Logger
}

// Orchestrator runs batches over a directory of images.
type Orchestrator struct {
	cfg       Config
	composite *composite.Composite
	log       logger.Logger
}

// New validates cfg and returns an orchestrator using c as the template
// composite. Every unit works on its own clone of c.
func New(cfg Config, c *composite.Composite) (*Orchestrator, error) {
	if c == nil {
		return nil, domain.Errorf("augment.new", domain.KindConfig, "composite is required")
	}
	if cfg.ImagesDir == "" || cfg.OutputDir == "" {
		return nil, domain.Errorf("augment.new", domain.KindConfig, "images and output directories are required")
	}
	if cfg.Split {
		if err := ValidateRatio(cfg.Ratio); err != nil {
			return nil, err
		}
	}
	if cfg.BatchSize < 0 || cfg.Workers < 0 {
		return nil, domain.Errorf("augment.new", domain.KindConfig,
			"batch size and workers must be >= 0 (got %d, %d)", cfg.BatchSize, cfg.Workers)
	}
	if c.UsesBoxes() && (cfg.Source == nil || cfg.FinalStore == "") {
		return nil, domain.Errorf("augment.new", domain.KindConfig,
			"bounding-box runs need source annotations and an output annotation file")
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}
	return &Orchestrator{cfg: cfg, composite: c, log: cfg.Logger}, nil
}

// Images lists the regular, non-hidden files of the images directory by name.
func (o *Orchestrator) Images() ([]string, error) {
	entries, err := os.ReadDir(o.cfg.ImagesDir)
	if err != nil {
		return nil, domain.Wrap("augment.list", domain.KindIO, o.cfg.ImagesDir, err)
	}
	var names []string
	for _, e := range entries {
		if !e.Type().IsRegular() || e.Name()[0] == '.' {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

// Partition lists the images and splits them. The split depends only on the
// image names, the ratio and the seed, so repeated calls agree. Without
// Split a single train partition holds every image.
func (o *Orchestrator) Partition() (Partitions, error) {
	images, err := o.Images()
	if err != nil {
		return nil, err
	}
	if !o.cfg.Split {
		return Partitions{{Name: Train, Images: images}}, nil
	}
	p, err := NewPartitioner(o.cfg.Ratio, o.cfg.Seed)
	if err != nil {
		return nil, err
	}
	return p.Partition(images), nil
}

// unit is one batch worth of work.
type unit struct {
	name   string
	dir    string
	images []string
}

func (o *Orchestrator) units() ([]unit, error) {
	parts, err := o.Partition()
	if err != nil {
		return nil, err
	}

	var units []unit
	for _, p := range parts {
		dir := o.cfg.OutputDir
		if o.cfg.Split {
			dir = filepath.Join(o.cfg.OutputDir, p.Name)
		}
		paths := make([]string, len(p.Images))
		for i, name := range p.Images {
			paths[i] = filepath.Join(o.cfg.ImagesDir, name)
		}

		size := o.cfg.BatchSize
		if size == 0 || size >= len(paths) {
			units = append(units, unit{name: p.Name, dir: dir, images: paths})
			continue
		}
		for i := 0; i < len(paths); i += size {
			end := min(i+size, len(paths))
			units = append(units, unit{
				name:   fmt.Sprintf("%s-%d", p.Name, i/size),
				dir:    dir,
				images: paths[i:end],
			})
		}
	}
	return units, nil
}

// UnitReport is the outcome of one unit.
type UnitReport struct {
	Name  string
	Dir   string
	Stats batch.Stats
	Err   error
}

// Report summarises a run.
type Report struct {
	Units []UnitReport
	Total batch.Stats
	Merge coco.MergeStats
}

func (r *Report) add(u UnitReport) {
	r.Units = append(r.Units, u)
	r.Total.Add(u.Stats)
}

// err joins the errors of failed units.
func (r *Report) err() error {
	var errs []error
	for _, u := range r.Units {
		if u.Err != nil {
			errs = append(errs, fmt.Errorf("unit %s: %w", u.Name, u.Err))
		}
	}
	return errors.Join(errs...)
}

// runUnit builds and runs the batch of u against dest. dest is nil for
// pixel-only runs.
func (o *Orchestrator) runUnit(u unit, index, variations int, dest *coco.Store) UnitReport {
	rep := UnitReport{Name: u.name, Dir: u.dir}

	opts := o.cfg.Batch
	opts.Name = u.name
	opts.Logger = o.log
	c := o.composite.Clone(o.cfg.Seed + int64(index))

	o.log.Info("unit started", "unit", u.name, "images", len(u.images))
	if c.UsesBoxes() {
		b, err := batch.NewBoxBatch(u.images, u.dir, c, o.cfg.Source, dest, opts)
		if err != nil {
			rep.Err = err
			return rep
		}
		rep.Stats, rep.Err = b.Augment(variations)
	} else {
		b, err := batch.New(u.images, u.dir, c, opts)
		if err != nil {
			rep.Err = err
			return rep
		}
		rep.Stats, rep.Err = b.Augment(variations)
	}

	if rep.Err != nil {
		o.log.Error("unit failed", "unit", u.name, "err", rep.Err)
	} else {
		o.log.Info("unit finished", "unit", u.name,
			"written", rep.Stats.Written, "skipped", rep.Stats.Skipped, "failed", rep.Stats.Failed)
	}
	return rep
}

// RunSequential runs every unit in order against the final store. A failed
// unit does not stop the ones after it; the returned error joins every unit
// failure.
func (o *Orchestrator) RunSequential(variations int) (Report, error) {
	var rep Report
	units, err := o.units()
	if err != nil {
		return rep, err
	}

	var final *coco.Store
	if o.composite.UsesBoxes() {
		final = coco.NewStore(o.cfg.FinalStore)
		defer func() { _ = final.ReleaseLock() }()
	}

	for i, u := range units {
		rep.add(o.runUnit(u, i, variations, final))
	}
	return rep, rep.err()
}

// Pending is a concurrent run in flight.
type Pending struct {
	o       *Orchestrator
	g       *errgroup.Group
	staging []*coco.Store
	reports []UnitReport

	once       sync.Once
	completion *Completion
}

// Completion proves every unit of a concurrent run has finished. Only
// Pending.Wait creates one.
type Completion struct {
	owner   *Orchestrator
	staging []*coco.Store
	report  Report
}

// Report returns the unit outcomes of the finished run.
func (c *Completion) Report() Report { return c.report }

// Start launches every unit on its own goroutine, at most Workers at a time,
// each writing to its own staging store. Failures of one unit never cancel
// another.
func (o *Orchestrator) Start(variations int) (*Pending, error) {
	units, err := o.units()
	if err != nil {
		return nil, err
	}

	p := &Pending{o: o, g: &errgroup.Group{}, reports: make([]UnitReport, len(units))}
	p.g.SetLimit(o.cfg.Workers)

	if o.composite.UsesBoxes() {
		p.staging = make([]*coco.Store, len(units))
		for i := range units {
			s, err := coco.NewStaging(o.cfg.FinalStore)
			if err != nil {
				for _, created := range p.staging[:i] {
					_ = created.Remove()
				}
				return nil, err
			}
			p.staging[i] = s
		}
	}

	for i, u := range units {
		var dest *coco.Store
		if p.staging != nil {
			dest = p.staging[i]
		}
		p.g.Go(func() error {
			p.reports[i] = o.runUnit(u, i, variations, dest)
			return p.reports[i].Err
		})
	}
	return p, nil
}

// Wait blocks until every unit has finished. The Completion is returned even
// when units failed, so their partial output can still be merged; the error
// joins every unit failure. Calling Wait again returns the same Completion.
func (p *Pending) Wait() (*Completion, error) {
	p.once.Do(func() {
		_ = p.g.Wait()
		c := &Completion{owner: p.o, staging: p.staging}
		for _, r := range p.reports {
			c.report.add(r)
		}
		p.completion = c
	})
	return p.completion, p.completion.report.err()
}

// MergeStaging folds the staging stores of a finished concurrent run into
// the final store and deletes them. c must be the Completion this
// orchestrator's Pending.Wait returned.
func (o *Orchestrator) MergeStaging(c *Completion) (coco.MergeStats, error) {
	if c == nil || c.owner != o {
		return coco.MergeStats{}, domain.Errorf("augment.merge", domain.KindMergePremature,
			"merge needs the completion of a finished run")
	}
	if len(c.staging) == 0 {
		return coco.MergeStats{}, nil
	}

	final := coco.NewStore(o.cfg.FinalStore)
	defer func() { _ = final.ReleaseLock() }()

	stats, err := coco.Merge(final, c.staging)
	if err != nil {
		return stats, err
	}
	o.log.Info("merged staging stores", "stores", stats.Staging,
		"images", stats.Images, "annotations", stats.Annotations)
	return stats, nil
}

// RunConcurrent is Start, Wait and MergeStaging in one call. The merge runs
// even when some units failed.
func (o *Orchestrator) RunConcurrent(variations int) (Report, error) {
	p, err := o.Start(variations)
	if err != nil {
		return Report{}, err
	}
	c, unitErr := p.Wait()
	rep := c.Report()

	stats, mergeErr := o.MergeStaging(c)
	rep.Merge = stats
	return rep, errors.Join(unitErr, mergeErr)
}
