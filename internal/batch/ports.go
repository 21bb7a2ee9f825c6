package batch

import (
	"image"

	"github.com/ironsheep/image-augment/internal/imaging"
)

// Reader loads a source image.
type Reader interface {
	Read(path string) (image.Image, error)
}

// Writer persists an output image.
type Writer interface {
	Write(img image.Image, path string) error
}

// FileReader reads images from disk, honouring EXIF orientation.
type FileReader struct{}

func (FileReader) Read(path string) (image.Image, error) {
	return imaging.Load(path)
}

// FileWriter encodes images to disk in one format.
type FileWriter struct {
	Format  imaging.Format
	Quality int
}

func (w FileWriter) Write(img image.Image, path string) error {
	return imaging.Save(img, path, w.Format, w.Quality)
}
