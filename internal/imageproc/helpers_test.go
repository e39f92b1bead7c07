package imageproc

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/gen2brain/webp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newTestProcessor(jpegFallback bool) *Processor {
	return NewProcessor(NewNativeEncoder(false), jpegFallback, 84, zerolog.Nop())
}

// gradient fills an opaque image with a smooth two-axis gradient.
func gradient(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8(x * 255 / w),
				G: uint8(y * 255 / h),
				B: 128,
				A: 255,
			})
		}
	}
	return img
}

func writeJPEG(t *testing.T, dir, name string, img image.Image) string {
	t.Helper()
	path := filepath.Join(dir, name)
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 100}))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
	return path
}

func writePNG(t *testing.T, dir, name string, img image.Image) string {
	t.Helper()
	path := filepath.Join(dir, name)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
	return path
}

func decodeWebP(t *testing.T, path string) image.Image {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "RIFF", string(data[:4]))
	require.Equal(t, "WEBP", string(data[8:12]))
	img, err := webp.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img
}

func requireOpaque(t *testing.T, img image.Image) {
	t.Helper()
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			_, _, _, a := img.At(x, y).RGBA()
			if a != 0xffff {
				t.Fatalf("pixel (%d,%d) has alpha %d", x, y, a)
			}
		}
	}
}

// near reports whether each 8-bit channel of c is within tol of want.
func near(c, want color.Color, tol int) bool {
	r, g, b, _ := c.RGBA()
	wr, wg, wb, _ := want.RGBA()
	diff := func(got, want uint32) bool {
		d := int(got>>8) - int(want>>8)
		return d >= -tol && d <= tol
	}
	return diff(r, wr) && diff(g, wg) && diff(b, wb)
}

// encodedColor is what a solid c reads back as after a WebP round trip at
// quality. libwebp decodes to limited-range YCbCr, so pure white comes back
// as Y=235 rather than 255; comparing against this keeps tolerances tight.
func encodedColor(t *testing.T, c color.Color, quality int) color.Color {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, c)
		}
	}
	data, err := EncodeWebP(img, quality)
	require.NoError(t, err)
	decoded, err := webp.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return decoded.At(32, 32)
}

// withOrientation inserts an EXIF APP1 segment carrying only the given
// orientation tag right after the JPEG SOI marker.
func withOrientation(data []byte, orientation uint16) []byte {
	app1 := []byte{
		0xFF, 0xE1, 0x00, 0x22,
		'E', 'x', 'i', 'f', 0x00, 0x00,
		'M', 'M', 0x00, 0x2A, 0x00, 0x00, 0x00, 0x08,
		0x00, 0x01,
		0x01, 0x12, 0x00, 0x03, 0x00, 0x00, 0x00, 0x01, byte(orientation >> 8), byte(orientation), 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
	}
	out := make([]byte, 0, len(data)+len(app1))
	out = append(out, data[:2]...)
	out = append(out, app1...)
	return append(out, data[2:]...)
}
