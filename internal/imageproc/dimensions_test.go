package imageproc

import "testing"

func TestFitDimensions(t *testing.T) {
	tests := []struct {
		w, h, maxW, maxH int
		wantW, wantH     int
	}{
		{1920, 1080, 1920, 1080, 1920, 1080},
		{3840, 2160, 1920, 1080, 1920, 1080},
		{1000, 500, 800, 600, 800, 400},
		{600, 1200, 800, 1000, 500, 1000},
		{400, 300, 1200, 700, 400, 300},
		{5000, 3, 800, 600, 800, 1},
		{1401, 801, 1400, 800, 1399, 800},
	}

	for _, tt := range tests {
		w, h := FitDimensions(tt.w, tt.h, tt.maxW, tt.maxH)
		if w != tt.wantW || h != tt.wantH {
			t.Errorf("FitDimensions(%d, %d, %d, %d) = %dx%d, expected %dx%d",
				tt.w, tt.h, tt.maxW, tt.maxH, w, h, tt.wantW, tt.wantH)
		}
		if w > tt.maxW || h > tt.maxH {
			t.Errorf("FitDimensions(%d, %d, %d, %d) = %dx%d exceeds bounds", tt.w, tt.h, tt.maxW, tt.maxH, w, h)
		}
	}
}
