package imaging

// Gray is a single-channel plane stored row-major. Values are float64 so
// that signed filter responses (Sobel, Laplacian) need no separate type.
type Gray struct {
	Width  int
	Height int
	Pix    []float64
}

// NewGray allocates a zeroed plane.
func NewGray(width, height int) *Gray {
	return &Gray{Width: width, Height: height, Pix: make([]float64, width*height)}
}

// At returns the value at (x, y). Coordinates are not bounds checked.
func (g *Gray) At(x, y int) float64 {
	return g.Pix[y*g.Width+x]
}

// Set stores v at (x, y).
func (g *Gray) Set(x, y int, v float64) {
	g.Pix[y*g.Width+x] = v
}

// Empty reports whether the plane has no pixels.
func (g *Gray) Empty() bool {
	return g == nil || g.Width <= 0 || g.Height <= 0
}

// clampAt returns the value at (x, y) with replicated borders.
func (g *Gray) clampAt(x, y int) float64 {
	return g.Pix[clamp(y, 0, g.Height-1)*g.Width+clamp(x, 0, g.Width-1)]
}

// DefaultScratchBuffers is the number of planes a Scratch pool hands out
// per frame before reporting ErrBufferUnavailable.
const DefaultScratchBuffers = 16

// Scratch is a per-stream pool of equally sized planes.
//
// Buffers are allocated lazily on the first frame and reused on every
// frame after that; Reset makes all of them available again. When the frame
// size changes the pool is rebuilt for the new size. A Scratch is owned by
// a single frame loop and is not safe for concurrent use.
type Scratch struct {
	width  int
	height int
	limit  int
	bufs   []*Gray
	used   int
}

// NewScratch returns a pool that hands out at most limit planes per frame.
func NewScratch(limit int) *Scratch {
	if limit <= 0 {
		limit = DefaultScratchBuffers
	}
	return &Scratch{limit: limit}
}

// Acquire returns a zeroed width x height plane.
func (s *Scratch) Acquire(width, height int) (*Gray, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrEmptyFrame
	}
	if width != s.width || height != s.height {
		s.bufs = s.bufs[:0]
		s.used = 0
		s.width, s.height = width, height
	}

	if s.used < len(s.bufs) {
		g := s.bufs[s.used]
		s.used++
		clear(g.Pix)
		return g, nil
	}
	if len(s.bufs) >= s.limit {
		return nil, ErrBufferUnavailable
	}

	g := NewGray(width, height)
	s.bufs = append(s.bufs, g)
	s.used++
	return g, nil
}

// Reset makes every buffer available again.
func (s *Scratch) Reset() {
	s.used = 0
}

// Free drops all buffers.
func (s *Scratch) Free() {
	s.bufs = nil
	s.used = 0
	s.width, s.height = 0, 0
}

// InUse returns the number of buffers handed out since the last Reset.
func (s *Scratch) InUse() int {
	return s.used
}

// clamp constrains an integer value to the range [min, max].
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
