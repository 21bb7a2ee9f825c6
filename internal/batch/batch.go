// Package batch runs augmentation over a list of source images.
//
// For every readable image a batch writes `variations` randomly transformed
// copies plus the untouched original (prefixed "original_"), each resized to
// the target size and named with a fresh UUID. BoxBatch additionally carries
// the image's source bounding boxes through every transform and records one
// COCO image entry per output and one annotation per box.
//
// Failures are scoped: an unreadable image is logged and skipped, a failed
// variant is logged and the next variant runs. Errors that would repeat for
// every image (a type mismatch on boxes, an out-of-range probability remap,
// an unwritable annotation store) abort the batch.
package batch

import (
	"encoding/json"
	"errors"
	"image"
	"os"
	"path/filepath"

	"github.com/ironsheep/image-augment/internal/coco"
	"github.com/ironsheep/image-augment/internal/composite"
	"github.com/ironsheep/image-augment/internal/domain"
	"github.com/ironsheep/image-augment/internal/geometry"
	"github.com/ironsheep/image-augment/internal/imaging"
	"github.com/ironsheep/image-augment/internal/logger"
)

// OriginalPrefix marks the untouched copy of each source image.
const OriginalPrefix = "original_"

// DefaultSize is the output size when none is configured.
var DefaultSize = geometry.Size{Width: 256, Height: 256}

// Options holds the settings shared by Batch and BoxBatch. Zero values pick
// the defaults.
type Options struct {
	// Name labels the batch in logs.
	Name    string
	Size    geometry.Size
	Format  imaging.Format
	Quality int
	Reader  Reader
	Writer  Writer
	Logger  logger.Logger
}

// Stats counts what a batch did.
type Stats struct {
	Images   int // source images processed
	Skipped  int // source images that could not be read
	Written  int // output images written, originals included
	Failed   int // variants or originals that failed
	Boxes    int // annotations recorded
	Unlisted int // images with no entry in the source annotations
}

func (s *Stats) Add(o Stats) {
	s.Images += o.Images
	s.Skipped += o.Skipped
	s.Written += o.Written
	s.Failed += o.Failed
	s.Boxes += o.Boxes
	s.Unlisted += o.Unlisted
}

// engine is the augmentation loop shared by both batch kinds.
type engine struct {
	images    []string
	dir       string
	composite *composite.Composite
	size      geometry.Size
	ext       string
	reader    Reader
	writer    Writer
	log       logger.Logger
}

func newEngine(images []string, dir string, c *composite.Composite, opts Options) (*engine, error) {
	if c == nil {
		return nil, domain.Errorf("batch.new", domain.KindConfig, "composite is required")
	}
	if dir == "" {
		return nil, domain.Errorf("batch.new", domain.KindConfig, "destination directory is required")
	}

	size := opts.Size
	if size.Width == 0 && size.Height == 0 {
		size = DefaultSize
	}
	if size.Width <= 0 || size.Height <= 0 {
		return nil, domain.Errorf("batch.new", domain.KindConfig, "invalid target size %dx%d", size.Width, size.Height)
	}

	format := opts.Format
	if format == "" {
		format = imaging.FormatJPEG
	}
	quality := opts.Quality
	if quality == 0 {
		quality = 95
	}

	e := &engine{
		images:    append([]string(nil), images...),
		dir:       dir,
		composite: c,
		size:      size,
		ext:       format.Ext(),
		reader:    opts.Reader,
		writer:    opts.Writer,
		log:       opts.Logger,
	}
	if e.reader == nil {
		e.reader = FileReader{}
	}
	if e.writer == nil {
		e.writer = FileWriter{Format: format, Quality: quality}
	}
	if e.log == nil {
		e.log = logger.Nop()
	}
	if opts.Name != "" {
		e.log = e.log.With("batch", opts.Name)
	}
	return e, nil
}

// output is one written image and the annotations that belong to it.
type output struct {
	image       coco.Image
	annotations []coco.Annotation
}

// labeled pairs a box with the category of the annotation it came from.
type labeled struct {
	box      geometry.BoundingBox
	category json.RawMessage
}

// source is what run needs from a box-tracking caller.
type source interface {
	lookup(path string) (boxes []labeled, found bool)
	commit(outputs []output) error
}

// run augments every image. src is nil for pixel-only batches.
func (e *engine) run(variations int, src source) (Stats, error) {
	var stats Stats
	if variations < 0 {
		return stats, domain.Errorf("batch.augment", domain.KindConfig, "variations must be >= 0, got %d", variations)
	}
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return stats, domain.Wrap("batch.mkdir", domain.KindIO, e.dir, err)
	}

	for _, path := range e.images {
		img, err := e.reader.Read(path)
		if err != nil {
			e.log.Warn("image not openable, skipping", "image", path,
				"err", domain.Wrap("batch.read", domain.KindIO, path, err))
			stats.Skipped++
			continue
		}
		stats.Images++

		var labels []labeled
		if src != nil {
			var found bool
			labels, found = src.lookup(path)
			if !found {
				e.log.Warn("image has no source annotations", "image", path)
				stats.Unlisted++
			}
		}

		outputs, err := e.augmentImage(path, img, labels, src != nil, variations, &stats)
		if err != nil {
			return stats, err
		}

		if src != nil && len(outputs) > 0 {
			if err := src.commit(outputs); err != nil {
				return stats, err
			}
			for _, o := range outputs {
				stats.Boxes += len(o.annotations)
			}
		}
	}
	return stats, nil
}

func (e *engine) augmentImage(path string, img image.Image, labels []labeled, withBoxes bool, variations int, stats *Stats) ([]output, error) {
	boxes := make([]geometry.BoundingBox, len(labels))
	for i, l := range labels {
		boxes[i] = l.box
	}

	var outputs []output
	for v := 0; v < variations; v++ {
		res, err := e.composite.Transform(img, boxes)
		if err != nil {
			if fatal(err) {
				return nil, err
			}
			e.log.Warn("variant failed", "image", path, "variant", v, "err", err)
			stats.Failed++
			continue
		}

		var moved []labeled
		if withBoxes {
			moved = relabel(labels, res.Boxes)
		}
		out, err := e.write(res.Image, moved, "")
		if err != nil {
			e.log.Warn("variant not written", "image", path, "variant", v, "err", err)
			stats.Failed++
			continue
		}
		outputs = append(outputs, out)
		stats.Written++
	}

	out, err := e.write(img, labels, OriginalPrefix)
	if err != nil {
		e.log.Warn("original not written", "image", path, "err", err)
		stats.Failed++
		return outputs, nil
	}
	stats.Written++
	return append(outputs, out), nil
}

// fatal reports errors that abort the whole batch.
func fatal(err error) bool {
	return errors.Is(err, domain.ErrTypeMismatch) || errors.Is(err, domain.ErrRangeViolation)
}

func relabel(labels []labeled, boxes []geometry.BoundingBox) []labeled {
	out := make([]labeled, len(boxes))
	for i, b := range boxes {
		out[i] = labeled{box: b}
		if i < len(labels) {
			out[i].category = labels[i].category
		}
	}
	return out
}

// write resizes img to the target size, rescales labels to match and saves
// the result under a fresh id.
func (e *engine) write(img image.Image, labels []labeled, prefix string) (output, error) {
	from := imaging.Dimensions(img)
	resized := imaging.Resize(img, e.size)

	id := coco.NewID()
	name := prefix + string(id) + e.ext
	path := filepath.Join(e.dir, name)
	if err := e.writer.Write(resized, path); err != nil {
		return output{}, domain.Wrap("batch.write", domain.KindIO, path, err)
	}

	out := output{
		image: coco.Image{Width: e.size.Width, Height: e.size.Height, ID: id, FileName: name},
	}
	for _, l := range labels {
		b := l.box.Resize(from, e.size)
		out.annotations = append(out.annotations, coco.Annotation{
			ID:           coco.NewID(),
			ImageID:      id,
			CategoryID:   l.category,
			Segmentation: []json.RawMessage{},
			BBox:         b.AsTuple(),
			Area:         float64(b.Area()),
		})
	}
	return out, nil
}

// Batch augments pixels only. Its composite must not track boxes.
type Batch struct {
	*engine
}

// New returns a pixel-only batch writing into dir.
func New(images []string, dir string, c *composite.Composite, opts Options) (*Batch, error) {
	if c != nil && c.UsesBoxes() {
		return nil, domain.Errorf("batch.new", domain.KindConfig,
			"pixel-only batch cannot use a composite that tracks bounding boxes")
	}
	e, err := newEngine(images, dir, c, opts)
	if err != nil {
		return nil, err
	}
	return &Batch{engine: e}, nil
}

// Augment writes variations transformed copies and the original of every
// image.
func (b *Batch) Augment(variations int) (Stats, error) {
	return b.run(variations, nil)
}

// BoxBatch augments pixels and bounding boxes and records COCO annotations.
type BoxBatch struct {
	*engine
	source *coco.Source
	dest   *coco.Store
}

// NewBoxBatch returns a batch that reads boxes from source and appends
// records to dest. The composite must track boxes.
func NewBoxBatch(images []string, dir string, c *composite.Composite, source *coco.Source, dest *coco.Store, opts Options) (*BoxBatch, error) {
	if c != nil && !c.UsesBoxes() {
		return nil, domain.Errorf("batch.new", domain.KindConfig,
			"bounding-box batch needs a composite that tracks bounding boxes")
	}
	if source == nil || dest == nil {
		return nil, domain.Errorf("batch.new", domain.KindConfig, "source annotations and destination store are required")
	}
	e, err := newEngine(images, dir, c, opts)
	if err != nil {
		return nil, err
	}
	return &BoxBatch{engine: e, source: source, dest: dest}, nil
}

// Augment writes variations transformed copies and the original of every
// image, and appends their records to the destination store once per source
// image.
func (b *BoxBatch) Augment(variations int) (Stats, error) {
	return b.run(variations, b)
}

// Dest returns the store this batch writes to.
func (b *BoxBatch) Dest() *coco.Store { return b.dest }

func (b *BoxBatch) lookup(path string) ([]labeled, bool) {
	anns, found := b.source.Lookup(path)
	labels := make([]labeled, 0, len(anns))
	for _, a := range anns {
		box, err := geometry.FromTuple(a.BBox[:])
		if err != nil {
			continue
		}
		labels = append(labels, labeled{box: box, category: a.CategoryID})
	}
	return labels, found
}

func (b *BoxBatch) commit(outputs []output) error {
	images := make([]coco.Image, 0, len(outputs))
	var anns []coco.Annotation
	for _, o := range outputs {
		images = append(images, o.image)
		anns = append(anns, o.annotations...)
	}
	return b.dest.Append(b.source.Categories(), images, anns)
}
