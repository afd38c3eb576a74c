package imaging

import (
	"fmt"
	"image"
	"sort"

	"github.com/anthonynsimon/bild/clone"
	"gonum.org/v1/gonum/stat"

	"github.com/ironsheep/docscan/internal/geometry"
)

// Native is the pure-Go Ops implementation. It needs no cgo and is the
// default backend.
type Native struct {
	scratch *Scratch
}

// NewNative returns a Native backed by a scratch pool of limit planes.
// limit <= 0 selects DefaultScratchBuffers.
func NewNative(limit int) *Native {
	return &Native{scratch: NewScratch(limit)}
}

var _ Ops = (*Native)(nil)

// Reset implements Ops.
func (n *Native) Reset() {
	n.scratch.Reset()
}

// Close implements Ops.
func (n *Native) Close() {
	n.scratch.Free()
}

func (n *Native) acquireLike(src *Gray) (*Gray, error) {
	if src.Empty() {
		return nil, ErrEmptyFrame
	}
	return n.scratch.Acquire(src.Width, src.Height)
}

// Grayscale converts img to luminance using ITU-R BT.601 weights
// (0.299*R + 0.587*G + 0.114*B).
func (n *Native) Grayscale(img image.Image) (*Gray, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, ErrEmptyFrame
	}
	rgba := clone.AsRGBA(img)
	b := rgba.Bounds()

	out, err := n.scratch.Acquire(b.Dx(), b.Dy())
	if err != nil {
		return nil, fmt.Errorf("grayscale: %w", err)
	}
	for y := 0; y < out.Height; y++ {
		row := rgba.Pix[y*rgba.Stride:]
		for x := 0; x < out.Width; x++ {
			i := x * 4
			out.Pix[y*out.Width+x] = 0.299*float64(row[i]) + 0.587*float64(row[i+1]) + 0.114*float64(row[i+2])
		}
	}
	return out, nil
}

// MeanStdDev implements Ops.
func (n *Native) MeanStdDev(src *Gray) (mean, stddev float64) {
	if src.Empty() {
		return 0, 0
	}
	return stat.PopMeanStdDev(src.Pix, nil)
}

// Median implements Ops.
func (n *Native) Median(src *Gray, maxSamples int) float64 {
	if src.Empty() {
		return 0
	}
	total := len(src.Pix)
	step := 1
	if maxSamples > 0 && total > maxSamples {
		step = total / maxSamples
	}

	samples := make([]float64, 0, total/step+1)
	for i := 0; i < total; i += step {
		samples = append(samples, src.Pix[i])
	}
	sort.Float64s(samples)
	return stat.Quantile(0.5, stat.Empirical, samples, nil)
}

// PerspectiveTransform implements Ops.
func (n *Native) PerspectiveTransform(src, dst geometry.Quad) (geometry.Homography, error) {
	return geometry.QuadToQuad(src, dst)
}
