package geometry

import "math"

// Point is an image-space coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// Scale returns p with each axis multiplied by its factor.
func (p Point) Scale(sx, sy float64) Point {
	return Point{X: p.X * sx, Y: p.Y * sy}
}

// Sub returns p - q as a vector.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// cross returns the z component of (a - o) x (b - o).
func cross(o, a, b Point) float64 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}

// AngleDegrees returns the angle at vertex b formed by a-b-c, in [0, 180].
func AngleDegrees(a, b, c Point) float64 {
	ab := a.Sub(b)
	cb := c.Sub(b)

	dot := ab.X*cb.X + ab.Y*cb.Y
	mag := math.Hypot(ab.X, ab.Y) * math.Hypot(cb.X, cb.Y)

	cosine := dot / (mag + 1e-6)
	cosine = math.Max(-1, math.Min(1, cosine))
	return math.Acos(cosine) * 180 / math.Pi
}
