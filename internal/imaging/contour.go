package imaging

import (
	"fmt"
	"math"

	"github.com/ironsheep/docscan/internal/geometry"
)

// minComponentPixels discards connected components too small to outline
// anything but noise.
const minComponentPixels = 10

// moore lists the 8 neighbours clockwise on screen, starting west.
var moore = [8][2]int{
	{-1, 0}, {-1, -1}, {0, -1}, {1, -1},
	{1, 0}, {1, 1}, {0, 1}, {-1, 1},
}

// mooreIndex maps a neighbour offset (dx+1, dy+1) back to its index in moore.
var mooreIndex = [3][3]int{
	{1, 2, 3}, // dy = -1: NW, N, NE
	{0, -1, 4},
	{7, 6, 5},
}

type bbox struct {
	minX, minY, maxX, maxY float64
}

func (b bbox) contains(p geometry.Point) bool {
	return p.X >= b.minX && p.X <= b.maxX && p.Y >= b.minY && p.Y <= b.maxY
}

// ExternalContours finds connected components of non-zero pixels in raster
// order. The outer boundary of each component is traced with Moore
// neighbour tracing starting at its first raster pixel; the component is
// then flood-filled so it is visited once. Components whose first pixel
// falls inside an earlier outline are skipped.
func (n *Native) ExternalContours(edges *Gray) ([]Contour, error) {
	visited, err := n.acquireLike(edges)
	if err != nil {
		return nil, fmt.Errorf("find contours: %w", err)
	}

	width, height := edges.Width, edges.Height
	contours := make([]Contour, 0)
	boxes := make([]bbox, 0)
	stack := make([]int, 0, 256)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := y*width + x
			if edges.Pix[i] == 0 || visited.Pix[i] != 0 {
				continue
			}

			var size int
			stack, size = floodFill(edges, visited, i, stack)
			if size < minComponentPixels {
				continue
			}

			start := geometry.Pt(float64(x), float64(y))
			if nested(start, contours, boxes) {
				continue
			}

			c := traceBoundary(edges, x, y)
			contours = append(contours, c)
			boxes = append(boxes, boundsOf(c))
		}
	}
	return contours, nil
}

// traceBoundary walks the outer boundary of the component containing
// (sx, sy), which must be its first pixel in raster order. The walk stops
// when it is about to repeat its first move.
func traceBoundary(edges *Gray, sx, sy int) Contour {
	width, height := edges.Width, edges.Height
	on := func(x, y int) bool {
		return x >= 0 && y >= 0 && x < width && y < height && edges.Pix[y*width+x] != 0
	}

	contour := Contour{geometry.Pt(float64(sx), float64(sy))}
	cx, cy := sx, sy
	// The raster scan guarantees the west neighbour is background.
	back := 0
	maxSteps := 4 * width * height

	for step := 0; step < maxSteps; step++ {
		nx, ny, nextBack, found := -1, -1, 0, false
		for k := 1; k <= 8; k++ {
			d := (back + k) % 8
			tx, ty := cx+moore[d][0], cy+moore[d][1]
			if !on(tx, ty) {
				continue
			}
			prev := (back + k - 1) % 8
			px, py := cx+moore[prev][0], cy+moore[prev][1]
			nx, ny = tx, ty
			nextBack = mooreIndex[py-ny+1][px-nx+1]
			found = true
			break
		}
		if !found {
			break
		}

		if cx == sx && cy == sy && len(contour) > 1 &&
			float64(nx) == contour[1].X && float64(ny) == contour[1].Y {
			break
		}

		cx, cy, back = nx, ny, nextBack
		contour = append(contour, geometry.Pt(float64(cx), float64(cy)))
	}

	// The walk ends on the start pixel; drop the duplicate.
	if len(contour) > 1 && contour[len(contour)-1] == contour[0] {
		contour = contour[:len(contour)-1]
	}
	return contour
}

// floodFill marks the 8-connected component containing pixel index start as
// visited and returns its pixel count. stack is reused between calls.
func floodFill(edges, visited *Gray, start int, stack []int) ([]int, int) {
	width, height := edges.Width, edges.Height
	stack = append(stack[:0], start)
	visited.Pix[start] = 1
	size := 0

	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		size++

		x, y := i%width, i/width
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				nx, ny := x+dx, y+dy
				if nx < 0 || ny < 0 || nx >= width || ny >= height {
					continue
				}
				j := ny*width + nx
				if edges.Pix[j] != 0 && visited.Pix[j] == 0 {
					visited.Pix[j] = 1
					stack = append(stack, j)
				}
			}
		}
	}
	return stack, size
}

func nested(p geometry.Point, contours []Contour, boxes []bbox) bool {
	for i, c := range contours {
		if boxes[i].contains(p) && pointInPolygon(p, c) {
			return true
		}
	}
	return false
}

// pointInPolygon is the even-odd ray casting test.
func pointInPolygon(p geometry.Point, poly Contour) bool {
	inside := false
	j := len(poly) - 1
	for i := range poly {
		a, b := poly[i], poly[j]
		if (a.Y > p.Y) != (b.Y > p.Y) &&
			p.X < (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y)+a.X {
			inside = !inside
		}
		j = i
	}
	return inside
}

func boundsOf(c Contour) bbox {
	b := bbox{minX: math.Inf(1), minY: math.Inf(1), maxX: math.Inf(-1), maxY: math.Inf(-1)}
	for _, p := range c {
		b.minX = math.Min(b.minX, p.X)
		b.minY = math.Min(b.minY, p.Y)
		b.maxX = math.Max(b.maxX, p.X)
		b.maxY = math.Max(b.maxY, p.Y)
	}
	return b
}

// ApproxPolygon implements Ops with the Ramer-Douglas-Peucker algorithm
// on a closed curve. The curve is split at the point farthest from its
// first point; each half is simplified on its own, and vertices left
// (nearly) collinear with their neighbours across the seam are removed.
func (n *Native) ApproxPolygon(c Contour, epsilon float64) Contour {
	if len(c) < 3 {
		return append(Contour(nil), c...)
	}

	far := 0
	var farDist float64
	for i, p := range c {
		if d := geometry.Distance(c[0], p); d > farDist {
			far, farDist = i, d
		}
	}
	if far == 0 {
		return Contour{c[0]}
	}

	first := rdp(c[:far+1], epsilon)
	loop := make(Contour, 0, len(c)-far+1)
	loop = append(loop, c[far:]...)
	loop = append(loop, c[0])
	second := rdp(loop, epsilon)

	out := make(Contour, 0, len(first)+len(second))
	out = append(out, first[:len(first)-1]...)
	out = append(out, second[:len(second)-1]...)
	return pruneCollinear(out, epsilon)
}

// rdp simplifies an open polyline, keeping both endpoints. It is iterative
// so long contours cannot exhaust the stack.
func rdp(pts Contour, epsilon float64) Contour {
	if len(pts) < 3 {
		return append(Contour(nil), pts...)
	}
	keep := make([]bool, len(pts))
	keep[0], keep[len(pts)-1] = true, true

	type span struct{ lo, hi int }
	spans := []span{{0, len(pts) - 1}}
	for len(spans) > 0 {
		s := spans[len(spans)-1]
		spans = spans[:len(spans)-1]

		idx, maxDist := -1, 0.0
		for i := s.lo + 1; i < s.hi; i++ {
			if d := segmentDistance(pts[i], pts[s.lo], pts[s.hi]); d > maxDist {
				idx, maxDist = i, d
			}
		}
		if idx >= 0 && maxDist > epsilon {
			keep[idx] = true
			spans = append(spans, span{s.lo, idx}, span{idx, s.hi})
		}
	}

	out := make(Contour, 0)
	for i, k := range keep {
		if k {
			out = append(out, pts[i])
		}
	}
	return out
}

func pruneCollinear(poly Contour, epsilon float64) Contour {
	for len(poly) > 3 {
		removed := false
		for i := range poly {
			prev := poly[(i+len(poly)-1)%len(poly)]
			next := poly[(i+1)%len(poly)]
			if segmentDistance(poly[i], prev, next) <= epsilon {
				poly = append(poly[:i:i], poly[i+1:]...)
				removed = true
				break
			}
		}
		if !removed {
			break
		}
	}
	return poly
}

// segmentDistance returns the distance from p to the segment a-b.
func segmentDistance(p, a, b geometry.Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return geometry.Distance(p, a)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / lenSq
	t = math.Max(0, math.Min(1, t))
	return geometry.Distance(p, geometry.Pt(a.X+t*dx, a.Y+t*dy))
}

// ContourArea implements Ops.
func (n *Native) ContourArea(c Contour) float64 {
	return geometry.PolygonArea(c)
}

// ArcLength implements Ops.
func (n *Native) ArcLength(c Contour) float64 {
	return geometry.Perimeter(c)
}

// IsConvex implements Ops.
func (n *Native) IsConvex(c Contour) bool {
	return geometry.IsConvex(c)
}
