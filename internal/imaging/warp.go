package imaging

import (
	"fmt"
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/clone"

	"github.com/ironsheep/docscan/internal/geometry"
)

// Warp implements Ops by inverse mapping: every output pixel is pulled from
// the source through h^-1 with bilinear interpolation. Samples that land
// outside the source are opaque black.
func (n *Native) Warp(img image.Image, h geometry.Homography, width, height int) (image.Image, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, ErrEmptyFrame
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("warp: invalid output size %dx%d", width, height)
	}
	inv, err := h.Inverse()
	if err != nil {
		return nil, fmt.Errorf("warp: %w", err)
	}

	src := clone.AsRGBA(img)
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			p, ok := inv.Apply(geometry.Pt(float64(x), float64(y)))
			if !ok {
				dst.SetRGBA(x, y, color.RGBA{A: 255})
				continue
			}
			dst.SetRGBA(x, y, bilinear(src, p.X, p.Y))
		}
	}
	return dst, nil
}

// bilinear samples src at a fractional position relative to its bounds.
func bilinear(src *image.RGBA, fx, fy float64) color.RGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if fx < 0 || fy < 0 || fx > float64(w-1) || fy > float64(h-1) {
		return color.RGBA{A: 255}
	}

	x0, y0 := int(fx), int(fy)
	x1, y1 := x0+1, y0+1
	if x1 >= w {
		x1 = w - 1
	}
	if y1 >= h {
		y1 = h - 1
	}
	tx, ty := fx-float64(x0), fy-float64(y0)

	at := func(x, y, c int) float64 {
		return float64(src.Pix[y*src.Stride+x*4+c])
	}
	var out [4]uint8
	for c := 0; c < 4; c++ {
		top := lerp(at(x0, y0, c), at(x1, y0, c), tx)
		bottom := lerp(at(x0, y1, c), at(x1, y1, c), tx)
		out[c] = uint8(lerp(top, bottom, ty) + 0.5)
	}
	return color.RGBA{R: out[0], G: out[1], B: out[2], A: out[3]}
}

func lerp(a, b, t float64) float64 { return a + (b-a)*t }
