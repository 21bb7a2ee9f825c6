// Package coco reads and writes COCO-shaped annotation files.
//
// Only the parts of the format the augmentation pipeline touches are typed.
// Categories and category ids are carried as raw JSON so that whatever the
// source file holds is written back unchanged.
package coco

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// ID identifies an image or annotation. Source files may use numbers or
// strings; both decode into ID. Ids generated here are UUID strings.
type ID string

// NewID returns a fresh unique id.
func NewID() ID {
	return ID(uuid.NewString())
}

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// MarshalJSON always writes a JSON string.
func (id ID) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(string(id))), nil
}

// Image is one entry of the top-level "images" list.
type Image struct {
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	ID       ID     `json:"id"`
	FileName string `json:"file_name"`
}

// Annotation is one entry of the top-level "annotations" list.
type Annotation struct {
	ID           ID                `json:"id"`
	ImageID      ID                `json:"image_id"`
	CategoryID   json.RawMessage   `json:"category_id"`
	Segmentation []json.RawMessage `json:"segmentation"`
	BBox         [4]float64        `json:"bbox"`
	Ignore       int               `json:"ignore"`
	IsCrowd      int               `json:"iscrowd"`
	Area         float64           `json:"area"`
}

// File is a whole annotation file.
type File struct {
	Images      []Image           `json:"images"`
	Categories  []json.RawMessage `json:"categories"`
	Annotations []Annotation      `json:"annotations"`
}

// NewFile returns an empty file that carries categories through.
func NewFile(categories []json.RawMessage) *File {
	f := &File{Categories: append([]json.RawMessage(nil), categories...)}
	f.normalize()
	return f
}

// normalize replaces nil lists with empty ones so they encode as [].
func (f *File) normalize() {
	if f.Images == nil {
		f.Images = []Image{}
	}
	if f.Categories == nil {
		f.Categories = []json.RawMessage{}
	}
	if f.Annotations == nil {
		f.Annotations = []Annotation{}
	}
	for i := range f.Annotations {
		if f.Annotations[i].Segmentation == nil {
			f.Annotations[i].Segmentation = []json.RawMessage{}
		}
	}
}

// AddCategories appends categories whose "id" is not already present.
// Categories without a readable id are compared by their full JSON text.
func (f *File) AddCategories(categories []json.RawMessage) {
	seen := make(map[string]bool, len(f.Categories))
	for _, c := range f.Categories {
		seen[categoryKey(c)] = true
	}
	for _, c := range categories {
		k := categoryKey(c)
		if seen[k] {
			continue
		}
		seen[k] = true
		f.Categories = append(f.Categories, c)
	}
}

func categoryKey(raw json.RawMessage) string {
	var probe struct {
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(raw, &probe); err == nil && len(probe.ID) > 0 {
		var buf bytes.Buffer
		if json.Compact(&buf, probe.ID) == nil {
			return "id:" + buf.String()
		}
	}
	var buf bytes.Buffer
	if json.Compact(&buf, raw) == nil {
		return "raw:" + buf.String()
	}
	return "raw:" + string(raw)
}
