package geometry

import (
	"errors"
	"math"
)

// ErrDegenerate is returned when a quadrilateral cannot define a
// projective mapping (collinear or coincident corners).
var ErrDegenerate = errors.New("geometry: degenerate quadrilateral")

// Homography is a row-major 3x3 projective transform:
//
//	x' = (h0 x + h1 y + h2) / (h6 x + h7 y + h8)
//	y' = (h3 x + h4 y + h5) / (h6 x + h7 y + h8)
type Homography [9]float64

// Identity returns the identity transform.
func Identity() Homography {
	return Homography{1, 0, 0, 0, 1, 0, 0, 0, 1}
}

// Apply maps p through h. ok is false when p maps to infinity.
func (h Homography) Apply(p Point) (Point, bool) {
	w := h[6]*p.X + h[7]*p.Y + h[8]
	if w == 0 {
		return Point{}, false
	}
	return Point{
		X: (h[0]*p.X + h[1]*p.Y + h[2]) / w,
		Y: (h[3]*p.X + h[4]*p.Y + h[5]) / w,
	}, true
}

// Mul returns h * o, the transform that applies o first and then h.
func (h Homography) Mul(o Homography) Homography {
	var out Homography
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			out[r*3+c] = h[r*3]*o[c] + h[r*3+1]*o[3+c] + h[r*3+2]*o[6+c]
		}
	}
	return out
}

// Adjoint returns the adjugate of h. For a projective transform the
// adjugate is an inverse up to scale.
func (h Homography) Adjoint() Homography {
	return Homography{
		h[4]*h[8] - h[5]*h[7], h[2]*h[7] - h[1]*h[8], h[1]*h[5] - h[2]*h[4],
		h[5]*h[6] - h[3]*h[8], h[0]*h[8] - h[2]*h[6], h[2]*h[3] - h[0]*h[5],
		h[3]*h[7] - h[4]*h[6], h[1]*h[6] - h[0]*h[7], h[0]*h[4] - h[1]*h[3],
	}
}

// Determinant returns det(h).
func (h Homography) Determinant() float64 {
	return h[0]*(h[4]*h[8]-h[5]*h[7]) -
		h[1]*(h[3]*h[8]-h[5]*h[6]) +
		h[2]*(h[3]*h[7]-h[4]*h[6])
}

// Inverse returns the inverse transform normalized so h8 == 1 where possible.
func (h Homography) Inverse() (Homography, error) {
	if math.Abs(h.Determinant()) < 1e-12 {
		return Homography{}, ErrDegenerate
	}
	return h.Adjoint().normalized(), nil
}

func (h Homography) normalized() Homography {
	if h[8] == 0 {
		return h
	}
	s := h[8]
	for i := range h {
		h[i] /= s
	}
	return h
}

// SquareToQuad maps the unit square (0,0),(1,0),(1,1),(0,1) onto q.
func SquareToQuad(q Quad) (Homography, error) {
	x0, y0 := q[0].X, q[0].Y
	x1, y1 := q[1].X, q[1].Y
	x2, y2 := q[2].X, q[2].Y
	x3, y3 := q[3].X, q[3].Y

	dx3 := x0 - x1 + x2 - x3
	dy3 := y0 - y1 + y2 - y3
	if dx3 == 0 && dy3 == 0 {
		// Parallelogram: the mapping is affine.
		h := Homography{
			x1 - x0, x3 - x0, x0,
			y1 - y0, y3 - y0, y0,
			0, 0, 1,
		}
		if math.Abs(h.Determinant()) < 1e-12 {
			return Homography{}, ErrDegenerate
		}
		return h, nil
	}

	dx1 := x1 - x2
	dx2 := x3 - x2
	dy1 := y1 - y2
	dy2 := y3 - y2
	den := dx1*dy2 - dx2*dy1
	if math.Abs(den) < 1e-12 {
		return Homography{}, ErrDegenerate
	}
	g := (dx3*dy2 - dx2*dy3) / den
	k := (dx1*dy3 - dx3*dy1) / den

	h := Homography{
		x1 - x0 + g*x1, x3 - x0 + k*x3, x0,
		y1 - y0 + g*y1, y3 - y0 + k*y3, y0,
		g, k, 1,
	}
	if math.Abs(h.Determinant()) < 1e-12 {
		return Homography{}, ErrDegenerate
	}
	return h, nil
}

// QuadToQuad returns the transform mapping src[i] onto dst[i] for all four
// corners.
func QuadToQuad(src, dst Quad) (Homography, error) {
	toSrc, err := SquareToQuad(src)
	if err != nil {
		return Homography{}, err
	}
	toDst, err := SquareToQuad(dst)
	if err != nil {
		return Homography{}, err
	}
	return toDst.Mul(toSrc.Adjoint()).normalized(), nil
}

// RectQuad returns the axis-aligned quad (0,0),(w,0),(w,h),(0,h).
func RectQuad(w, h float64) Quad {
	return Quad{{0, 0}, {w, 0}, {w, h}, {0, h}}
}
