package imaging

import (
	"errors"
	"fmt"
	"image"

	"github.com/ironsheep/docscan/internal/geometry"
)

var (
	// ErrEmptyFrame is returned for frames with no pixels.
	ErrEmptyFrame = errors.New("imaging: empty frame")

	// ErrBufferUnavailable is returned when the scratch pool cannot hand out
	// another buffer for the current frame.
	ErrBufferUnavailable = errors.New("imaging: scratch buffer unavailable")

	// ErrGoCVUnavailable is returned by NewGoCV in builds without the
	// gocv tag.
	ErrGoCVUnavailable = errors.New("imaging: built without the gocv tag")
)

// Backend names accepted by NewOps.
const (
	BackendNative = "native"
	BackendGoCV   = "gocv"
)

// NewOps returns the Ops implementation registered under backend. An empty
// name selects the native backend.
func NewOps(backend string, scratchLimit int) (Ops, error) {
	switch backend {
	case "", BackendNative:
		return NewNative(scratchLimit), nil
	case BackendGoCV:
		return NewGoCV(scratchLimit)
	default:
		return nil, fmt.Errorf("imaging: unknown backend %q", backend)
	}
}

// Contour is an ordered outline of pixel positions.
type Contour []geometry.Point

// Ops is the set of image-processing primitives the scanning pipeline is
// built on. Implementations own their scratch buffers: planes returned by
// one frame's calls stay valid until the next Reset.
//
// Implementations are not safe for concurrent use; each frame loop owns one.
type Ops interface {
	// Reset releases every scratch plane handed out since the last Reset.
	// It is called once at the start of each frame.
	Reset()

	// Close frees the scratch pool. The Ops must not be used afterwards.
	Close()

	// Grayscale converts img to a luminance plane in [0, 255].
	Grayscale(img image.Image) (*Gray, error)

	// GaussianBlur smooths src with an odd ksize x ksize Gaussian kernel.
	GaussianBlur(src *Gray, ksize int) (*Gray, error)

	// Canny returns a binary edge plane (0 or 255) using hysteresis
	// thresholds low and high on the gradient magnitude.
	Canny(src *Gray, low, high float64) (*Gray, error)

	// Dilate grows non-zero regions of a binary plane by one pixel.
	Dilate(src *Gray) (*Gray, error)

	// ExternalContours traces the outer boundary of every connected
	// component in a binary plane, skipping components nested inside an
	// earlier outline. Contours are returned in raster order of their
	// first pixel.
	ExternalContours(edges *Gray) ([]Contour, error)

	// ApproxPolygon simplifies a closed contour so that no dropped point
	// lies further than epsilon from the result.
	ApproxPolygon(c Contour, epsilon float64) Contour

	// ContourArea returns the enclosed area of a closed contour.
	ContourArea(c Contour) float64

	// ArcLength returns the perimeter of a closed contour.
	ArcLength(c Contour) float64

	// IsConvex reports whether a closed polygon is convex.
	IsConvex(c Contour) bool

	// Laplacian applies the 3x3 Laplacian operator. Values are signed.
	Laplacian(src *Gray) (*Gray, error)

	// MeanStdDev returns the population mean and standard deviation.
	MeanStdDev(src *Gray) (mean, stddev float64)

	// Median returns the median value estimated from at most maxSamples
	// evenly strided pixels. maxSamples <= 0 uses every pixel.
	Median(src *Gray, maxSamples int) float64

	// PerspectiveTransform returns the homography mapping src onto dst.
	PerspectiveTransform(src, dst geometry.Quad) (geometry.Homography, error)

	// Warp renders a width x height image whose pixel (x, y) is sampled
	// from img at h^-1(x, y).
	Warp(img image.Image, h geometry.Homography, width, height int) (image.Image, error)
}
