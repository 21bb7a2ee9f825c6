package imaging

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// createTestImage creates a simple test image file and returns its path.
// The caller is responsible for removing the file.
func createTestImage(t *testing.T, width, height int, c color.Color) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}

	tmpFile, err := os.CreateTemp("", "test-image-*.png")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer tmpFile.Close()

	if err := png.Encode(tmpFile, img); err != nil {
		os.Remove(tmpFile.Name())
		t.Fatalf("failed to encode image: %v", err)
	}

	return tmpFile.Name()
}

func TestLoad(t *testing.T) {
	imgPath := createTestImage(t, 100, 60, color.RGBA{255, 0, 0, 255})
	defer os.Remove(imgPath)

	img, err := Load(imgPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if img == nil {
		t.Fatal("Load returned nil image")
	}

	bounds := img.Bounds()
	if bounds.Dx() != 100 || bounds.Dy() != 60 {
		t.Errorf("unexpected dimensions: got %dx%d, want 100x60", bounds.Dx(), bounds.Dy())
	}
}

func TestLoad_NonExistent(t *testing.T) {
	_, err := Load("/nonexistent/path/to/image.png")
	if err == nil {
		t.Error("Load should fail for non-existent file")
	}
}

func TestLoad_InvalidImage(t *testing.T) {
	// Create a file with invalid image data
	tmpFile, err := os.CreateTemp("", "invalid-image-*.png")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpFile.WriteString("not an image")
	tmpFile.Close()
	defer os.Remove(tmpFile.Name())

	_, err = Load(tmpFile.Name())
	if err == nil {
		t.Error("Load should fail for invalid image data")
	}
}

func TestLoad_ConcurrentAccess(t *testing.T) {
	imgPath := createTestImage(t, 50, 50, color.RGBA{128, 128, 128, 255})
	defer os.Remove(imgPath)

	var wg sync.WaitGroup
	errors := make(chan error, 50)

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := Load(imgPath); err != nil {
				errors <- err
			}
		}()
	}

	wg.Wait()
	close(errors)

	for err := range errors {
		t.Errorf("concurrent Load error: %v", err)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		ext     string
		wantErr bool
	}{
		{"", FormatJPEG, ".jpg", false},
		{"jpg", FormatJPEG, ".jpg", false},
		{"JPEG", FormatJPEG, ".jpg", false},
		{"png", FormatPNG, ".png", false},
		{"webp", FormatWebP, ".webp", false},
		{"tiff", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err: got %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got != tt.want || got.Ext() != tt.ext {
				t.Errorf("got %s (%s), want %s (%s)", got, got.Ext(), tt.want, tt.ext)
			}
		})
	}
}

func TestSave_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	img := createPatternImage(40, 30)

	for _, format := range []Format{FormatJPEG, FormatPNG} {
		t.Run(string(format), func(t *testing.T) {
			path := filepath.Join(dir, "out"+format.Ext())
			if err := Save(img, path, format, 90); err != nil {
				t.Fatalf("Save failed: %v", err)
			}

			back, err := Load(path)
			if err != nil {
				t.Fatalf("Load after Save failed: %v", err)
			}
			if Dimensions(back) != Dimensions(img) {
				t.Errorf("dimensions: got %+v, want %+v", Dimensions(back), Dimensions(img))
			}
		})
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Errorf("expected only the two saved files, found %d entries", len(entries))
	}
}
