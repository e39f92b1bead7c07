package imageproc

import "math"

// FitDimensions scales width x height down to fit inside maxWidth x maxHeight,
// keeping the aspect ratio. Images already inside the box are returned as is.
func FitDimensions(width, height, maxWidth, maxHeight int) (int, int) {
	if width <= maxWidth && height <= maxHeight {
		return width, height
	}

	scale := math.Min(float64(maxWidth)/float64(width), float64(maxHeight)/float64(height))
	w := clamp(int(math.Round(float64(width)*scale)), 1, maxWidth)
	h := clamp(int(math.Round(float64(height)*scale)), 1, maxHeight)
	return w, h
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
