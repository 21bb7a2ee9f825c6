package coco

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/ironsheep/image-augment/internal/domain"
)

const stagingPattern = ".staging-*.json"

// NewStaging creates an empty, uniquely named staging store next to the
// final store at finalPath.
func NewStaging(finalPath string) (*Store, error) {
	dir := filepath.Dir(finalPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, domain.Wrap("coco.staging", domain.KindIO, dir, err)
	}
	f, err := os.CreateTemp(dir, stagingPattern)
	if err != nil {
		return nil, domain.Wrap("coco.staging", domain.KindIO, dir, err)
	}
	name := f.Name()
	if err := f.Close(); err != nil {
		return nil, domain.Wrap("coco.staging", domain.KindIO, name, err)
	}
	return NewStore(name), nil
}

// StagingFiles lists the staging stores that sit next to finalPath, sorted.
func StagingFiles(finalPath string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(filepath.Dir(finalPath), stagingPattern))
	if err != nil {
		return nil, domain.Wrap("coco.staging", domain.KindIO, finalPath, err)
	}
	sort.Strings(matches)
	return matches, nil
}

// MergeStats summarises a merge.
type MergeStats struct {
	Staging     int
	Images      int
	Annotations int
	Categories  int
}

// Merge folds every staging store into final and then deletes the staging
// stores.
//
// Images and annotations are concatenated in staging order. Categories are
// added when their id is not yet present. Every staging store is read before
// final is written, and final is written once, under its lock, before any
// staging store is deleted. On error no staging store has been deleted
// unless the error came from a deletion.
func Merge(final *Store, staging []*Store) (MergeStats, error) {
	var stats MergeStats

	parts := make([]*File, 0, len(staging))
	for _, s := range staging {
		part, err := s.Read(nil)
		if err != nil {
			return stats, err
		}
		parts = append(parts, part)
	}

	err := final.update(func(f *File) {
		for _, part := range parts {
			before := len(f.Categories)
			f.Images = append(f.Images, part.Images...)
			f.Annotations = append(f.Annotations, part.Annotations...)
			f.AddCategories(part.Categories)

			stats.Staging++
			stats.Images += len(part.Images)
			stats.Annotations += len(part.Annotations)
			stats.Categories += len(f.Categories) - before
		}
	}, nil)
	if err != nil {
		return stats, err
	}

	for _, s := range staging {
		if err := s.Remove(); err != nil {
			return stats, err
		}
	}
	return stats, nil
}
