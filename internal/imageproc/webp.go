package imageproc

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/webp"
)

// WebPMethod is the slowest, smallest-output libwebp compression effort.
const WebPMethod = 6

// WebPOptions are the settings every encoder writes its output with.
func WebPOptions(quality int) webp.Options {
	return webp.Options{
		Quality: quality,
		Method:  WebPMethod,
	}
}

// EncodeWebP encodes img as lossy WebP at the highest effort.
func EncodeWebP(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, WebPOptions(quality)); err != nil {
		return nil, fmt.Errorf("failed to encode webp: %w", err)
	}
	return buf.Bytes(), nil
}

// Flatten composites img over an opaque white canvas when its color model
// can carry transparency. Opaque models are returned as is.
func Flatten(img image.Image) image.Image {
	if !hasAlphaChannel(img) {
		return img
	}
	if p, ok := img.(*image.Paletted); ok {
		// expand indexed colors so palette alpha survives the blend
		img = imaging.Clone(p)
	}
	b := img.Bounds()
	bg := imaging.New(b.Dx(), b.Dy(), color.White)
	return imaging.Overlay(bg, img, image.Pt(0, 0), 1.0)
}

// hasAlphaChannel reports whether the decoded color model can carry transparency.
func hasAlphaChannel(img image.Image) bool {
	switch img.(type) {
	case *image.YCbCr, *image.Gray, *image.Gray16, *image.CMYK:
		return false
	default:
		return true
	}
}
