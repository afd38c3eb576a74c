package quality

import (
	"math"
	"testing"
)

func TestWeights_Fuse(t *testing.T) {
	w := DefaultWeights()
	tests := []struct {
		name                           string
		stability, sharpness, lighting int
		detected                       bool
		want                           int
	}{
		{"all perfect", 100, 100, 100, true, 100},
		{"no detection", 100, 100, 100, false, 60},
		{"mixed", 50, 80, 60, true, 63},
		{"all zero", 0, 0, 0, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := w.Fuse(tt.stability, tt.sharpness, tt.lighting, tt.detected); got != tt.want {
				t.Errorf("Fuse: got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestWeights_FuseIsConvexCombination(t *testing.T) {
	w := DefaultWeights()
	if sum := w.Stability + w.Sharpness + w.Lighting; math.Abs(sum-1) > 1e-9 {
		t.Fatalf("weights sum to %v, want 1", sum)
	}

	for st := 0; st <= 100; st += 10 {
		for sh := 0; sh <= 100; sh += 10 {
			for li := 0; li <= 100; li += 10 {
				got := w.Fuse(st, sh, li, true)
				want := int(math.Round(0.40*float64(st) + 0.35*float64(sh) + 0.25*float64(li)))
				if got != want {
					t.Fatalf("Fuse(%d, %d, %d): got %d, want %d", st, sh, li, got, want)
				}
				if got < 0 || got > 100 {
					t.Fatalf("Fuse(%d, %d, %d) = %d out of range", st, sh, li, got)
				}
			}
		}
	}
}
