// Package vipsproc prepares pixels through libvips. It needs libvips at build
// and run time, which is why it lives outside imageproc.
package vipsproc

import (
	"bytes"
	"fmt"

	"github.com/deepxperience/imgopt/internal/config"
	"github.com/deepxperience/imgopt/internal/imageproc"
	"github.com/disintegration/imaging"
	"github.com/h2non/bimg"
)

var white = bimg.Color{R: 255, G: 255, B: 255}

// Encoder flattens and resizes with libvips into a lossless PNG, then encodes
// that with the same WebP settings as the native encoder. libvips' own WebP
// save does not expose the compression effort through bimg.
type Encoder struct {
	autoOrient bool
}

func NewEncoder(autoOrient bool) *Encoder {
	return &Encoder{autoOrient: autoOrient}
}

func (e *Encoder) Name() string { return "vips" }

func (e *Encoder) Encode(data []byte, quality int, maxSize *config.Size) (*imageproc.Output, error) {
	intermediate, err := e.prepare(data, maxSize)
	if err != nil {
		return nil, err
	}

	img, err := imaging.Decode(bytes.NewReader(intermediate))
	if err != nil {
		return nil, fmt.Errorf("failed to decode intermediate png: %w", err)
	}
	img = imageproc.Flatten(img)

	encoded, err := imageproc.EncodeWebP(img, quality)
	if err != nil {
		return nil, err
	}

	b := img.Bounds()
	return &imageproc.Output{
		Data:   encoded,
		Width:  b.Dx(),
		Height: b.Dy(),
		Image:  img,
	}, nil
}

// prepare returns the flattened, oriented and fitted pixels as PNG.
func (e *Encoder) prepare(data []byte, maxSize *config.Size) ([]byte, error) {
	metadata, err := bimg.NewImage(data).Metadata()
	if err != nil {
		return nil, fmt.Errorf("failed to read image metadata: %w", err)
	}

	// bimg flattens PNG alpha onto Background whenever it is not black.
	options := bimg.Options{
		Type:          bimg.PNG,
		Quality:       100,
		StripMetadata: true,
		NoAutoRotate:  !e.autoOrient,
		Background:    white,
	}

	if maxSize != nil {
		srcW, srcH := orientedSize(metadata, e.autoOrient)
		w, h := imageproc.FitDimensions(srcW, srcH, maxSize.Width, maxSize.Height)
		if w != srcW || h != srcH {
			options.Width = w
			options.Height = h
			options.Force = true
			options.Interpolator = bimg.Bicubic
		}
	}

	out, err := bimg.NewImage(data).Process(options)
	if err != nil {
		return nil, fmt.Errorf("failed to process image: %w", err)
	}
	return out, nil
}

// orientedSize is the size the image has once bimg has applied its EXIF
// orientation. bimg rotates before it resizes, so the bounds must be fitted
// against this frame.
func orientedSize(metadata bimg.ImageMetadata, autoOrient bool) (int, int) {
	w, h := metadata.Size.Width, metadata.Size.Height
	if autoOrient && metadata.Orientation >= 5 && metadata.Orientation <= 8 {
		return h, w
	}
	return w, h
}
