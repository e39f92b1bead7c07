package imageproc

import (
	"bytes"
	"fmt"
	"image"

	"github.com/gen2brain/jpegli"
)

// encodeJPEG produces the fallback JPEG for browsers without WebP support.
func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer

	options := &jpegli.EncodingOptions{
		Quality:              quality,
		ProgressiveLevel:     2,
		OptimizeCoding:       true,
		AdaptiveQuantization: true,
		FancyDownsampling:    true,
		ChromaSubsampling:    image.YCbCrSubsampleRatio420,
	}

	if err := jpegli.Encode(&buf, img, options); err != nil {
		return nil, fmt.Errorf("jpegli encoding failed: %w", err)
	}
	return buf.Bytes(), nil
}
