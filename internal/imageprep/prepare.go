// Package imageprep normalizes images before they are uploaded: EXIF
// orientation is applied, large images are scaled down and SVGs are
// rasterized, so the backend always receives a reasonably sized PNG.
package imageprep

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imageorient"
	"github.com/nfnt/resize"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

const (
	// MaxDimension bounds the longest side of an uploaded image.
	MaxDimension = 1568

	defaultSVGSize = 512
	maxFileSize    = 20 << 20
)

// Image is a prepared upload.
type Image struct {
	Filename string
	Data     []byte
	Width    int
	Height   int
}

// PrepareFile reads and normalizes the image at path.
func PrepareFile(path string) (*Image, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat image: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("image is too large (%d bytes, max %d)", info.Size(), maxFileSize)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()
	return Prepare(filepath.Base(path), f)
}

// Prepare decodes r and re-encodes it as PNG. The name is only used to detect
// SVG input and to derive the upload filename.
func Prepare(name string, r io.Reader) (*Image, error) {
	var (
		img image.Image
		err error
	)
	if strings.EqualFold(filepath.Ext(name), ".svg") {
		img, err = rasterizeSVG(r, MaxDimension)
	} else {
		img, _, err = imageorient.Decode(r)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", name, err)
	}

	img = resize.Thumbnail(MaxDimension, MaxDimension, img, resize.Lanczos3)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	b := img.Bounds()
	return &Image{
		Filename: strings.TrimSuffix(name, filepath.Ext(name)) + ".png",
		Data:     buf.Bytes(),
		Width:    b.Dx(),
		Height:   b.Dy(),
	}, nil
}

func rasterizeSVG(r io.Reader, maxDim int) (image.Image, error) {
	icon, err := oksvg.ReadIconStream(r)
	if err != nil {
		return nil, err
	}
	w, h := int(icon.ViewBox.W), int(icon.ViewBox.H)
	if w <= 0 || h <= 0 {
		w, h = defaultSVGSize, defaultSVGSize
	}
	if longest := max(w, h); longest > maxDim {
		w = w * maxDim / longest
		h = h * maxDim / longest
	}
	w, h = max(w, 1), max(h, 1)

	icon.SetTarget(0, 0, float64(w), float64(h))
	rgba := image.NewRGBA(image.Rect(0, 0, w, h))
	scanner := rasterx.NewScannerGV(w, h, rgba, rgba.Bounds())
	raster := rasterx.NewDasher(w, h, scanner)
	icon.Draw(raster, 1.0)
	return rgba, nil
}
