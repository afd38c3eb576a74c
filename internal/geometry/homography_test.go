package geometry

import (
	"errors"
	"testing"
)

func TestQuadToQuad_MapsCorners(t *testing.T) {
	tests := []struct {
		name string
		src  Quad
	}{
		{"axis aligned", Quad{{20, 10}, {120, 10}, {120, 70}, {20, 70}}},
		{"parallelogram", Quad{{10, 10}, {110, 20}, {120, 90}, {20, 80}}},
		{"perspective", Quad{{30, 20}, {170, 10}, {190, 140}, {15, 120}}},
	}

	dst := RectQuad(200, 150)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := QuadToQuad(tt.src, dst)
			if err != nil {
				t.Fatalf("QuadToQuad: %v", err)
			}
			for i := range tt.src {
				got, ok := h.Apply(tt.src[i])
				if !ok {
					t.Fatalf("corner %d mapped to infinity", i)
				}
				if !approxEqual(got.X, dst[i].X, 1e-6) || !approxEqual(got.Y, dst[i].Y, 1e-6) {
					t.Errorf("corner %d: got %v, want %v", i, got, dst[i])
				}
			}
		})
	}
}

func TestHomographyInverse(t *testing.T) {
	src := Quad{{30, 20}, {170, 10}, {190, 140}, {15, 120}}
	dst := RectQuad(160, 120)

	h, err := QuadToQuad(src, dst)
	if err != nil {
		t.Fatalf("QuadToQuad: %v", err)
	}
	inv, err := h.Inverse()
	if err != nil {
		t.Fatalf("Inverse: %v", err)
	}

	for i := range dst {
		got, ok := inv.Apply(dst[i])
		if !ok {
			t.Fatalf("corner %d mapped to infinity", i)
		}
		if !approxEqual(got.X, src[i].X, 1e-6) || !approxEqual(got.Y, src[i].Y, 1e-6) {
			t.Errorf("corner %d: got %v, want %v", i, got, src[i])
		}
	}

	// Interior points survive a round trip as well.
	p := Pt(100, 70)
	mapped, _ := h.Apply(p)
	back, _ := inv.Apply(mapped)
	if !approxEqual(back.X, p.X, 1e-6) || !approxEqual(back.Y, p.Y, 1e-6) {
		t.Errorf("round trip: got %v, want %v", back, p)
	}
}

func TestSquareToQuad_Degenerate(t *testing.T) {
	tests := []struct {
		name string
		q    Quad
	}{
		{"all coincident", Quad{{5, 5}, {5, 5}, {5, 5}, {5, 5}}},
		{"collinear", Quad{{0, 0}, {10, 0}, {20, 0}, {30, 0}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := SquareToQuad(tt.q); !errors.Is(err, ErrDegenerate) {
				t.Errorf("SquareToQuad: got %v, want ErrDegenerate", err)
			}
		})
	}
}

func TestIdentityAndMul(t *testing.T) {
	h := Homography{2, 0, 5, 0, 3, -1, 0, 0, 1}
	if got := Identity().Mul(h); got != h {
		t.Errorf("Identity*h: got %v, want %v", got, h)
	}
	if got := h.Mul(Identity()); got != h {
		t.Errorf("h*Identity: got %v, want %v", got, h)
	}
	p, ok := h.Apply(Pt(1, 2))
	if !ok || p != Pt(7, 5) {
		t.Errorf("Apply: got %v (%v), want (7, 5)", p, ok)
	}
}
