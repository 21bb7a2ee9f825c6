package coco

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/ironsheep/image-augment/internal/domain"
)

// Load reads the annotation file at path. A missing or empty file is an
// error; use Store.Read for load-or-initialise semantics.
func Load(path string) (*File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.Wrap("coco.load", domain.KindIO, path, err)
	}
	return decode(path, b)
}

func decode(path string, b []byte) (*File, error) {
	var f File
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, domain.Wrap("coco.decode", domain.KindIO, path, err)
	}
	f.normalize()
	return &f, nil
}

// Save writes f to path through a temporary file and a rename, so readers
// never observe a partial file.
func Save(path string, f *File) error {
	f.normalize()
	b, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return domain.Wrap("coco.marshal", domain.KindIO, path, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return domain.Wrap("coco.mkdir", domain.KindIO, filepath.Dir(path), err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-"+filepath.Base(path)+"-*")
	if err != nil {
		return domain.Wrap("coco.write", domain.KindIO, path, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		_ = os.Remove(tmpName)
		return domain.Wrap("coco.write", domain.KindIO, tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return domain.Wrap("coco.write", domain.KindIO, tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return domain.Wrap("coco.rename", domain.KindIO, path, err)
	}
	return nil
}

// Store is an annotation file that is updated by read-modify-write.
//
// Each update holds an advisory lock on a sidecar "<path>.lock" file for the
// whole read-modify-write. The lock keeps separate processes from
// interleaving; it does not make sharing one Store between concurrent
// batches a supported configuration.
type Store struct {
	path string
	lock *flock.Flock
}

// NewStore returns a handle on the annotation file at path. The file is not
// touched until the first Read or Append.
func NewStore(path string) *Store {
	return &Store{path: path, lock: flock.New(lockPath(path))}
}

func lockPath(path string) string {
	return path + ".lock"
}

func (s *Store) Path() string { return s.path }

// Read loads the store. A missing or empty file reads as an empty store that
// carries categories.
func (s *Store) Read(categories []json.RawMessage) (*File, error) {
	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && len(b) == 0) {
		return NewFile(categories), nil
	}
	if err != nil {
		return nil, domain.Wrap("coco.read", domain.KindIO, s.path, err)
	}
	return decode(s.path, b)
}

// Append adds images and annotations to the store in one locked
// read-modify-write. If the store does not exist yet it is created with
// categories; an existing store keeps its own categories.
func (s *Store) Append(categories []json.RawMessage, images []Image, annotations []Annotation) error {
	return s.update(func(f *File) {
		f.Images = append(f.Images, images...)
		f.Annotations = append(f.Annotations, annotations...)
	}, categories)
}

func (s *Store) update(mutate func(*File), categories []json.RawMessage) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return domain.Wrap("coco.mkdir", domain.KindIO, filepath.Dir(s.path), err)
	}
	if err := s.lock.Lock(); err != nil {
		return domain.Wrap("coco.lock", domain.KindIO, s.lock.Path(), err)
	}
	defer func() { _ = s.lock.Unlock() }()

	f, err := s.Read(categories)
	if err != nil {
		return err
	}
	mutate(f)
	return Save(s.path, f)
}

// Remove deletes the store file and its lock file. Missing files are not an
// error.
func (s *Store) Remove() error {
	var errs []error
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		errs = append(errs, err)
	}
	if err := s.ReleaseLock(); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return domain.Wrap("coco.remove", domain.KindIO, s.path, err)
	}
	return nil
}

// ReleaseLock removes the sidecar lock file once no more updates will
// happen.
func (s *Store) ReleaseLock() error {
	_ = s.lock.Close()
	if err := os.Remove(lockPath(s.path)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove lock file: %w", err)
	}
	return nil
}
