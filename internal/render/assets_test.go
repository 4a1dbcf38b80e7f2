package render

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// writePNG writes a solid-color PNG of the given size into dir.
func writePNG(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 40, B: 40, A: 255})
		}
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encoding %s: %v", path, err)
	}
	return path
}

func TestAssets_MissingDir(t *testing.T) {
	t.Parallel()

	a := NewAssets(filepath.Join(t.TempDir(), "does-not-exist"))

	if _, err := a.CJKFamily(); !errors.Is(err, ErrAssetUnavailable) {
		t.Errorf("CJKFamily() error = %v, want ErrAssetUnavailable", err)
	}
	if _, err := a.LatinFamily(); !errors.Is(err, ErrAssetUnavailable) {
		t.Errorf("LatinFamily() error = %v, want ErrAssetUnavailable", err)
	}
	if _, err := a.Icon(true); !errors.Is(err, ErrAssetUnavailable) {
		t.Errorf("Icon(true) error = %v, want ErrAssetUnavailable", err)
	}
	if err := a.Verify(); !errors.Is(err, ErrAssetUnavailable) {
		t.Errorf("Verify() error = %v, want ErrAssetUnavailable", err)
	}
}

func TestAssets_CorruptFont(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, cjkFontFile), []byte("not a font"), 0o644); err != nil {
		t.Fatal(err)
	}

	a := NewAssets(dir)
	if _, err := a.CJKFamily(); !errors.Is(err, ErrAssetUnavailable) {
		t.Errorf("CJKFamily() error = %v, want ErrAssetUnavailable", err)
	}
}

func TestAssets_CorruptIcon(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, minusIconFile), []byte("not a png"), 0o644); err != nil {
		t.Fatal(err)
	}

	a := NewAssets(dir)
	if _, err := a.Icon(false); !errors.Is(err, ErrAssetUnavailable) {
		t.Errorf("Icon(false) error = %v, want ErrAssetUnavailable", err)
	}
}

func TestAssets_IconScaledToCanvas(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writePNG(t, dir, plusIconFile, 2, 2)

	a := NewAssets(dir)
	img, err := a.Icon(true)
	if err != nil {
		t.Fatalf("Icon(true) error = %v", err)
	}
	b := img.Bounds()
	if b.Dx() != Width || b.Dy() != Height {
		t.Errorf("Icon(true) bounds = %dx%d, want %dx%d", b.Dx(), b.Dy(), Width, Height)
	}
}

func TestAssets_IconCached(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writePNG(t, dir, minusIconFile, Width, Height)

	a := NewAssets(dir)
	if _, err := a.Icon(false); err != nil {
		t.Fatalf("first Icon(false) error = %v", err)
	}

	// The second lookup must come from the cache, not from disk.
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	if _, err := a.Icon(false); err != nil {
		t.Errorf("second Icon(false) error = %v, want cached image", err)
	}
}

func TestScaleToCanvas(t *testing.T) {
	t.Parallel()

	small := image.NewRGBA(image.Rect(0, 0, 3, 3))
	got := scaleToCanvas(small)
	if b := got.Bounds(); b.Dx() != Width || b.Dy() != Height {
		t.Errorf("scaleToCanvas(3x3) bounds = %dx%d, want %dx%d", b.Dx(), b.Dy(), Width, Height)
	}

	exact := image.NewRGBA(image.Rect(0, 0, Width, Height))
	if scaleToCanvas(exact) != image.Image(exact) {
		t.Error("scaleToCanvas(exact size) should return the image unchanged")
	}
}
