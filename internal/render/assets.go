// Package render composes sticker images: it rasterizes layout plans over a
// base icon and encodes the result as WebP.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/png"
	"os"
	"path/filepath"
	"sync"

	"github.com/tdewolff/canvas"
	xdraw "golang.org/x/image/draw"
)

// Canvas dimensions in pixels.
const (
	Width  = 512
	Height = 174
)

// File names resolved under the assets directory.
const (
	cjkFontFile   = "BIZ-UDGothicR.ttc"
	latinFontFile = "VCR_OSD_MONO_1.001.ttf"
	plusIconFile  = "plus.png"
	minusIconFile = "minus.png"
)

// ErrAssetUnavailable marks a missing or unreadable font or icon. It points
// at the deployment, not at the request being rendered.
var ErrAssetUnavailable = errors.New("render: asset unavailable")

// Assets resolves and caches the fonts and base icons used by the composer.
// Everything loads lazily on first use and stays cached for the process
// lifetime. Safe for concurrent use.
type Assets struct {
	dir string

	mu    sync.Mutex
	cjk   *canvas.FontFamily
	latin *canvas.FontFamily
	plus  image.Image
	minus image.Image
}

// NewAssets creates an asset resolver rooted at dir.
func NewAssets(dir string) *Assets {
	return &Assets{dir: dir}
}

// Dir returns the assets directory.
func (a *Assets) Dir() string { return a.dir }

// CJKFamily returns the font family for Chinese text.
func (a *Assets) CJKFamily() (*canvas.FontFamily, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cjk == nil {
		family, err := a.loadFamily("cjk", cjkFontFile)
		if err != nil {
			return nil, err
		}
		a.cjk = family
	}
	return a.cjk, nil
}

// LatinFamily returns the font family for Latin text.
func (a *Assets) LatinFamily() (*canvas.FontFamily, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.latin == nil {
		family, err := a.loadFamily("latin", latinFontFile)
		if err != nil {
			return nil, err
		}
		a.latin = family
	}
	return a.latin, nil
}

// Icon returns the base image for the given sign, scaled to the canvas size.
func (a *Assets) Icon(positive bool) (image.Image, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if positive {
		if a.plus == nil {
			img, err := a.loadIcon(plusIconFile)
			if err != nil {
				return nil, err
			}
			a.plus = img
		}
		return a.plus, nil
	}
	if a.minus == nil {
		img, err := a.loadIcon(minusIconFile)
		if err != nil {
			return nil, err
		}
		a.minus = img
	}
	return a.minus, nil
}

// Verify eagerly loads every asset. Used at startup and by health checks so
// a broken deployment surfaces before the first render request.
func (a *Assets) Verify() error {
	if _, err := a.CJKFamily(); err != nil {
		return err
	}
	if _, err := a.LatinFamily(); err != nil {
		return err
	}
	if _, err := a.Icon(true); err != nil {
		return err
	}
	if _, err := a.Icon(false); err != nil {
		return err
	}
	return nil
}

// loadFamily reads a font file into a fresh family. Collection index 0 covers
// both plain TTFs and the first face of a TTC. Caller holds a.mu.
func (a *Assets) loadFamily(name, file string) (*canvas.FontFamily, error) {
	path := filepath.Join(a.dir, file)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading font %s: %v", ErrAssetUnavailable, path, err)
	}
	family := canvas.NewFontFamily(name)
	if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return nil, fmt.Errorf("%w: parsing font %s: %v", ErrAssetUnavailable, path, err)
	}
	return family, nil
}

// loadIcon reads and decodes a base image, scaling it to the canvas size
// when it differs. Caller holds a.mu.
func (a *Assets) loadIcon(file string) (image.Image, error) {
	path := filepath.Join(a.dir, file)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading icon %s: %v", ErrAssetUnavailable, path, err)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: decoding icon %s: %v", ErrAssetUnavailable, path, err)
	}
	return scaleToCanvas(img), nil
}

// scaleToCanvas resizes img to Width x Height unless it already matches.
func scaleToCanvas(img image.Image) image.Image {
	b := img.Bounds()
	if b.Dx() == Width && b.Dy() == Height {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, Width, Height))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, xdraw.Over, nil)
	return dst
}
