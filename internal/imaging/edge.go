package imaging

import (
	"fmt"
	"math"
)

// gaussian5 is the 5x5 Gaussian kernel (sigma ≈ 1.4) used for ksize 5:
//
//	1  4  7  4  1
//	4 16 26 16  4
//	7 26 41 26  7
//	4 16 26 16  4
//	1  4  7  4  1
//
// Total kernel sum = 273, used for normalization.
var gaussian5 = [5][5]float64{
	{1, 4, 7, 4, 1},
	{4, 16, 26, 16, 4},
	{7, 26, 41, 26, 7},
	{4, 16, 26, 16, 4},
	{1, 4, 7, 4, 1},
}

// GaussianBlur implements Ops. ksize 5 uses the fixed 273-sum kernel; other
// odd sizes use a separable kernel with sigma derived from the size.
// Border pixels use clamped (replicated) edge values.
func (n *Native) GaussianBlur(src *Gray, ksize int) (*Gray, error) {
	out, err := n.acquireLike(src)
	if err != nil {
		return nil, fmt.Errorf("gaussian blur: %w", err)
	}
	if ksize < 3 {
		copy(out.Pix, src.Pix)
		return out, nil
	}
	if ksize%2 == 0 {
		ksize++
	}

	if ksize == 5 {
		for y := 0; y < src.Height; y++ {
			for x := 0; x < src.Width; x++ {
				var sum float64
				for ky := -2; ky <= 2; ky++ {
					for kx := -2; kx <= 2; kx++ {
						sum += src.clampAt(x+kx, y+ky) * gaussian5[ky+2][kx+2]
					}
				}
				out.Pix[y*out.Width+x] = sum / 273.0
			}
		}
		return out, nil
	}

	tmp, err := n.acquireLike(src)
	if err != nil {
		return nil, fmt.Errorf("gaussian blur: %w", err)
	}
	kernel := gaussianKernel1D(ksize)
	r := ksize / 2
	for y := 0; y < src.Height; y++ {
		for x := 0; x < src.Width; x++ {
			var sum float64
			for k := -r; k <= r; k++ {
				sum += src.clampAt(x+k, y) * kernel[k+r]
			}
			tmp.Pix[y*tmp.Width+x] = sum
		}
	}
	for y := 0; y < src.Height; y++ {
		for x := 0; x < src.Width; x++ {
			var sum float64
			for k := -r; k <= r; k++ {
				sum += tmp.clampAt(x, y+k) * kernel[k+r]
			}
			out.Pix[y*out.Width+x] = sum
		}
	}
	return out, nil
}

// gaussianKernel1D returns a normalised kernel with the sigma OpenCV picks
// for a given aperture.
func gaussianKernel1D(ksize int) []float64 {
	sigma := 0.3*(float64(ksize-1)*0.5-1) + 0.8
	r := ksize / 2
	kernel := make([]float64, ksize)
	var total float64
	for i := -r; i <= r; i++ {
		v := math.Exp(-float64(i*i) / (2 * sigma * sigma))
		kernel[i+r] = v
		total += v
	}
	for i := range kernel {
		kernel[i] /= total
	}
	return kernel
}

var (
	sobelX = [3][3]float64{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	}
	sobelY = [3][3]float64{
		{-1, -2, -1},
		{0, 0, 0},
		{1, 2, 1},
	}
)

// Canny performs Canny edge detection on a (usually blurred) luminance plane.
//
//  1. Gradient computation: Sobel operators for X and Y gradients,
//     magnitude = sqrt(Gx² + Gy²) in raw intensity units
//  2. Non-maximum suppression: keep only local maxima along the gradient
//     direction
//  3. Hysteresis: pixels with magnitude above high seed edges, which then
//     grow through 8-connected pixels above low
//
// Both comparisons are strict, so a flat plane yields no edges even when
// the thresholds are zero.
func (n *Native) Canny(src *Gray, low, high float64) (*Gray, error) {
	magnitude, err := n.acquireLike(src)
	if err != nil {
		return nil, fmt.Errorf("canny: %w", err)
	}
	direction, err := n.acquireLike(src)
	if err != nil {
		return nil, fmt.Errorf("canny: %w", err)
	}
	suppressed, err := n.acquireLike(src)
	if err != nil {
		return nil, fmt.Errorf("canny: %w", err)
	}
	out, err := n.acquireLike(src)
	if err != nil {
		return nil, fmt.Errorf("canny: %w", err)
	}

	width, height := src.Width, src.Height
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var gx, gy float64
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					v := src.clampAt(x+kx, y+ky)
					gx += v * sobelX[ky+1][kx+1]
					gy += v * sobelY[ky+1][kx+1]
				}
			}
			magnitude.Pix[y*width+x] = math.Sqrt(gx*gx + gy*gy)
			direction.Pix[y*width+x] = math.Atan2(gy, gx)
		}
	}

	// Non-maximum suppression. Y grows downward, so a gradient in the
	// first quadrant points toward (x+1, y+1).
	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			angle := direction.At(x, y)
			mag := magnitude.At(x, y)
			if mag == 0 {
				continue
			}

			var n1, n2 float64
			switch {
			case (angle >= -math.Pi/8 && angle < math.Pi/8) || angle >= 7*math.Pi/8 || angle < -7*math.Pi/8:
				n1 = magnitude.At(x-1, y)
				n2 = magnitude.At(x+1, y)
			case (angle >= math.Pi/8 && angle < 3*math.Pi/8) || (angle >= -7*math.Pi/8 && angle < -5*math.Pi/8):
				n1 = magnitude.At(x-1, y-1)
				n2 = magnitude.At(x+1, y+1)
			case (angle >= 3*math.Pi/8 && angle < 5*math.Pi/8) || (angle >= -5*math.Pi/8 && angle < -3*math.Pi/8):
				n1 = magnitude.At(x, y-1)
				n2 = magnitude.At(x, y+1)
			default:
				n1 = magnitude.At(x+1, y-1)
				n2 = magnitude.At(x-1, y+1)
			}

			if mag >= n1 && mag >= n2 {
				suppressed.Set(x, y, mag)
			}
		}
	}

	// Hysteresis by breadth-first growth from strong pixels.
	queue := make([]int, 0, 1024)
	for i, v := range suppressed.Pix {
		if v > high {
			out.Pix[i] = 255
			queue = append(queue, i)
		}
	}
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		x, y := i%width, i/width
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				nx, ny := x+dx, y+dy
				if nx < 0 || ny < 0 || nx >= width || ny >= height {
					continue
				}
				j := ny*width + nx
				if out.Pix[j] == 0 && suppressed.Pix[j] > low {
					out.Pix[j] = 255
					queue = append(queue, j)
				}
			}
		}
	}
	return out, nil
}

// Dilate implements Ops with a 3x3 square structuring element.
func (n *Native) Dilate(src *Gray) (*Gray, error) {
	out, err := n.acquireLike(src)
	if err != nil {
		return nil, fmt.Errorf("dilate: %w", err)
	}
	for y := 0; y < src.Height; y++ {
		for x := 0; x < src.Width; x++ {
			var m float64
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					if v := src.clampAt(x+dx, y+dy); v > m {
						m = v
					}
				}
			}
			out.Pix[y*out.Width+x] = m
		}
	}
	return out, nil
}

// Laplacian implements Ops with the aperture-1 kernel
//
//	0  1  0
//	1 -4  1
//	0  1  0
func (n *Native) Laplacian(src *Gray) (*Gray, error) {
	out, err := n.acquireLike(src)
	if err != nil {
		return nil, fmt.Errorf("laplacian: %w", err)
	}
	for y := 0; y < src.Height; y++ {
		for x := 0; x < src.Width; x++ {
			out.Pix[y*out.Width+x] = src.clampAt(x-1, y) + src.clampAt(x+1, y) +
				src.clampAt(x, y-1) + src.clampAt(x, y+1) - 4*src.At(x, y)
		}
	}
	return out, nil
}
