package imageproc

import (
	"bytes"
	"fmt"

	"github.com/deepxperience/imgopt/internal/config"
	"github.com/disintegration/imaging"
)

// NativeEncoder works without libvips: imaging for pixels, gen2brain/webp for encoding.
type NativeEncoder struct {
	autoOrient bool
}

func NewNativeEncoder(autoOrient bool) *NativeEncoder {
	return &NativeEncoder{autoOrient: autoOrient}
}

func (e *NativeEncoder) Name() string { return "native" }

func (e *NativeEncoder) Encode(data []byte, quality int, maxSize *config.Size) (*Output, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(e.autoOrient))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	img = Flatten(img)

	if maxSize != nil {
		b := img.Bounds()
		w, h := FitDimensions(b.Dx(), b.Dy(), maxSize.Width, maxSize.Height)
		if w != b.Dx() || h != b.Dy() {
			img = imaging.Resize(img, w, h, imaging.Lanczos)
		}
	}

	encoded, err := EncodeWebP(img, quality)
	if err != nil {
		return nil, err
	}

	b := img.Bounds()
	return &Output{
		Data:   encoded,
		Width:  b.Dx(),
		Height: b.Dy(),
		Image:  img,
	}, nil
}
