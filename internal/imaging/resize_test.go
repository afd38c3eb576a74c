package imaging

import (
	"image"
	"testing"
)

func TestDownscale(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		maxWidth      int
		wantW, wantH  int
		wantScale     float64
	}{
		{"wide frame", 1280, 720, 640, 640, 360, 2},
		{"narrow frame", 320, 200, 640, 320, 200, 1},
		{"exact width", 640, 480, 640, 640, 480, 1},
		{"disabled", 1280, 720, 0, 1280, 720, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := image.NewRGBA(image.Rect(0, 0, tt.width, tt.height))
			out, sx, sy := Downscale(img, tt.maxWidth)

			b := out.Bounds()
			if b.Dx() != tt.wantW || b.Dy() != tt.wantH {
				t.Errorf("dimensions: got %dx%d, want %dx%d", b.Dx(), b.Dy(), tt.wantW, tt.wantH)
			}
			if sx != tt.wantScale || sy != tt.wantScale {
				t.Errorf("scale: got (%v, %v), want %v", sx, sy, tt.wantScale)
			}
		})
	}
}
