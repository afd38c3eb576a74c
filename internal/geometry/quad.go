package geometry

import (
	"math"
	"sort"
)

// Corner indices into a Quad.
const (
	TopLeft = iota
	TopRight
	BottomRight
	BottomLeft
)

// Quad is four corners in canonical order: top-left, top-right,
// bottom-right, bottom-left.
type Quad [4]Point

// Points returns the corners as a slice.
func (q Quad) Points() []Point {
	return []Point{q[0], q[1], q[2], q[3]}
}

// Scale returns the quad with every corner scaled per axis.
func (q Quad) Scale(sx, sy float64) Quad {
	var out Quad
	for i, p := range q {
		out[i] = p.Scale(sx, sy)
	}
	return out
}

// Area returns the enclosed area.
func (q Quad) Area() float64 {
	return PolygonArea(q[:])
}

// Centroid returns the mean of the four corners.
func (q Quad) Centroid() Point {
	var c Point
	for _, p := range q {
		c.X += p.X
		c.Y += p.Y
	}
	return Point{X: c.X / 4, Y: c.Y / 4}
}

// OrderCorners maps four points in any order to canonical order.
//
// Points are sorted by Y (then X) and split into a top pair and a bottom
// pair; within each pair the smaller X is the left corner. Convex input
// always splits cleanly. When a non-convex point set makes the split
// self-intersecting, the points are ordered by angle around their centroid
// instead, starting from the corner with the smallest X+Y. Both paths depend
// only on the set of points, so reordering an already-ordered quad returns it
// unchanged.
func OrderCorners(pts [4]Point) Quad {
	sorted := pts
	sort.SliceStable(sorted[:], func(i, j int) bool {
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y < sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	var q Quad
	if sorted[0].X < sorted[1].X {
		q[TopLeft], q[TopRight] = sorted[0], sorted[1]
	} else {
		q[TopLeft], q[TopRight] = sorted[1], sorted[0]
	}
	if sorted[2].X < sorted[3].X {
		q[BottomLeft], q[BottomRight] = sorted[2], sorted[3]
	} else {
		q[BottomLeft], q[BottomRight] = sorted[3], sorted[2]
	}

	if selfIntersecting(q) {
		return orderByAngle(pts)
	}
	return q
}

// orderByAngle sorts corners clockwise (on screen) around the centroid and
// rotates the result so the corner with the smallest X+Y comes first.
func orderByAngle(pts [4]Point) Quad {
	q := Quad(pts)
	c := q.Centroid()

	sorted := pts
	sort.SliceStable(sorted[:], func(i, j int) bool {
		ai := math.Atan2(sorted[i].Y-c.Y, sorted[i].X-c.X)
		aj := math.Atan2(sorted[j].Y-c.Y, sorted[j].X-c.X)
		if ai != aj {
			return ai < aj
		}
		return sorted[i].X < sorted[j].X
	})

	start := 0
	for i := 1; i < 4; i++ {
		si := sorted[i].X + sorted[i].Y
		ss := sorted[start].X + sorted[start].Y
		if si < ss || (si == ss && sorted[i].X < sorted[start].X) {
			start = i
		}
	}

	var out Quad
	for i := 0; i < 4; i++ {
		out[i] = sorted[(start+i)%4]
	}
	return out
}

// selfIntersecting reports whether either pair of opposite edges crosses.
func selfIntersecting(q Quad) bool {
	return segmentsCross(q[0], q[1], q[2], q[3]) || segmentsCross(q[1], q[2], q[3], q[0])
}

func segmentsCross(a, b, c, d Point) bool {
	d1 := cross(c, d, a)
	d2 := cross(c, d, b)
	d3 := cross(a, b, c)
	d4 := cross(a, b, d)
	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}

// ValidityRules bounds what counts as a usable document outline.
type ValidityRules struct {
	// MinArea is the smallest accepted polygon area in square pixels.
	MinArea float64
	// MinAngleDegrees rejects corners sharper than this or wider than
	// 180 minus this.
	MinAngleDegrees float64
}

// DefaultValidityRules returns the rules used by the detector.
func DefaultValidityRules() ValidityRules {
	return ValidityRules{MinArea: 1000, MinAngleDegrees: 20}
}

// Valid reports whether q is large enough and free of slivers.
func (q Quad) Valid(rules ValidityRules) bool {
	if q.Area() < rules.MinArea {
		return false
	}
	for i := 0; i < 4; i++ {
		angle := AngleDegrees(q[i], q[(i+1)%4], q[(i+2)%4])
		if angle < rules.MinAngleDegrees || angle > 180-rules.MinAngleDegrees {
			return false
		}
	}
	return true
}

// PolygonArea returns the absolute shoelace area of a closed polygon.
func PolygonArea(pts []Point) float64 {
	if len(pts) < 3 {
		return 0
	}
	var area float64
	for i := range pts {
		j := (i + 1) % len(pts)
		area += pts[i].X*pts[j].Y - pts[j].X*pts[i].Y
	}
	return math.Abs(area / 2)
}

// Perimeter returns the length of the closed polygon through pts.
func Perimeter(pts []Point) float64 {
	if len(pts) < 2 {
		return 0
	}
	var total float64
	for i := range pts {
		total += Distance(pts[i], pts[(i+1)%len(pts)])
	}
	return total
}

// IsConvex reports whether the closed polygon turns consistently in one
// direction. Collinear vertices are ignored.
func IsConvex(pts []Point) bool {
	n := len(pts)
	if n < 3 {
		return false
	}
	sign := 0
	for i := 0; i < n; i++ {
		z := cross(pts[i], pts[(i+1)%n], pts[(i+2)%n])
		switch {
		case z > 0:
			if sign < 0 {
				return false
			}
			sign = 1
		case z < 0:
			if sign > 0 {
				return false
			}
			sign = -1
		}
	}
	return sign != 0
}
