package coco

import (
	"encoding/json"
	"path/filepath"
	"strings"
)

// Source is a read-only index over a source annotation file, used to find
// the annotations of an image by its file name.
type Source struct {
	categories []json.RawMessage
	byName     map[string]ID
	byID       map[ID]bool
	anns       map[ID][]Annotation
}

// LoadSource reads and indexes the annotation file at path.
func LoadSource(path string) (*Source, error) {
	f, err := Load(path)
	if err != nil {
		return nil, err
	}
	return NewSource(f), nil
}

// NewSource indexes f.
func NewSource(f *File) *Source {
	s := &Source{
		categories: f.Categories,
		byName:     make(map[string]ID, len(f.Images)),
		byID:       make(map[ID]bool, len(f.Images)),
		anns:       make(map[ID][]Annotation),
	}
	for _, img := range f.Images {
		if img.FileName != "" {
			s.byName[filepath.Base(img.FileName)] = img.ID
		}
		s.byID[img.ID] = true
	}
	for _, a := range f.Annotations {
		s.anns[a.ImageID] = append(s.anns[a.ImageID], a)
	}
	return s
}

// Categories returns the source categories unchanged.
func (s *Source) Categories() []json.RawMessage {
	return s.categories
}

// Lookup returns the annotations of the image stored under path's base name.
// Images are matched on file_name first, then on an image id equal to the
// file name without its extension. The second result is false when no image
// matches; an image without annotations returns an empty list and true.
func (s *Source) Lookup(path string) ([]Annotation, bool) {
	name := filepath.Base(path)
	id, ok := s.byName[name]
	if !ok {
		stem := ID(strings.TrimSuffix(name, filepath.Ext(name)))
		if !s.byID[stem] {
			return nil, false
		}
		id = stem
	}
	return s.anns[id], true
}
