package detection

import (
	"fmt"
	"image"
	"log/slog"
	"math"

	"github.com/ironsheep/docscan/internal/geometry"
	"github.com/ironsheep/docscan/internal/imaging"
	"github.com/ironsheep/docscan/internal/logging"
)

// Quadrilateral is a document outline found in one frame.
type Quadrilateral struct {
	// Corners are in canonical order: top-left, top-right, bottom-right,
	// bottom-left.
	Corners geometry.Quad `json:"corners"`

	// AreaRatio is the traced contour area divided by the frame area.
	AreaRatio float64 `json:"area_ratio"`

	// Valid is true when the outline passed the geometric validity check.
	Valid bool `json:"valid"`
}

// Options tunes document detection.
type Options struct {
	// MinAreaRatio and MaxAreaRatio bound the contour area as a fraction
	// of the frame area.
	MinAreaRatio float64
	MaxAreaRatio float64

	// BlurSize is the Gaussian aperture applied before edge detection.
	BlurSize int

	// Sigma spreads the Canny thresholds around the median intensity:
	// lower = (1-Sigma)*median, upper = (1+Sigma)*median.
	Sigma float64

	// MedianSamples caps the number of pixels sampled for the median.
	MedianSamples int

	// EpsilonFactor is the polygon approximation tolerance as a fraction
	// of the contour perimeter.
	EpsilonFactor float64

	// Rules is the geometric validity check applied to every candidate.
	Rules geometry.ValidityRules
}

// DefaultOptions returns the detection settings used by the scanner.
func DefaultOptions() Options {
	return Options{
		MinAreaRatio:  0.2,
		MaxAreaRatio:  0.95,
		BlurSize:      5,
		Sigma:         0.33,
		MedianSamples: 5000,
		EpsilonFactor: 0.02,
		Rules:         geometry.DefaultValidityRules(),
	}
}

// Detector finds the document-shaped quadrilateral in a frame.
type Detector struct {
	ops    imaging.Ops
	opts   Options
	logger *slog.Logger
}

// NewDetector returns a Detector running on ops. A nil logger discards
// output.
func NewDetector(ops imaging.Ops, opts Options, logger *slog.Logger) *Detector {
	return &Detector{ops: ops, opts: opts, logger: logging.OrDiscard(logger)}
}

// Options returns the detector's settings.
func (d *Detector) Options() Options {
	return d.opts
}

// Detect converts img to grayscale and runs DetectGray. It starts a new
// frame on the detector's Ops, so planes from earlier calls are reused.
func (d *Detector) Detect(img image.Image) (Quadrilateral, bool, error) {
	if img == nil || img.Bounds().Empty() {
		return Quadrilateral{}, false, nil
	}
	d.ops.Reset()
	gray, err := d.ops.Grayscale(img)
	if err != nil {
		return Quadrilateral{}, false, err
	}
	return d.DetectGray(gray)
}

// DetectGray returns the best quadrilateral in a luminance plane.
//
// # Algorithm
//
//  1. Blur the plane to suppress noise
//  2. Derive Canny thresholds from the median intensity m:
//     lower = max(0, (1-σ)m), upper = min(255, (1+σ)m)
//  3. Detect edges, close one-pixel gaps by dilation and trace the
//     external contours
//  4. Drop contours whose area ratio falls outside [MinAreaRatio,
//     MaxAreaRatio]; approximate the rest with tolerance
//     EpsilonFactor * perimeter and keep convex 4-vertex polygons
//  5. Order the corners and apply the validity rules
//  6. Return the survivor with the largest area ratio; the first one
//     found wins ties
//
// Finding nothing is not an error: ok is false and err is nil. err is only
// set when the backend cannot process the frame (for example when its
// scratch pool is exhausted).
func (d *Detector) DetectGray(gray *imaging.Gray) (q Quadrilateral, ok bool, err error) {
	if gray.Empty() {
		return Quadrilateral{}, false, nil
	}
	frameArea := float64(gray.Width * gray.Height)

	blurred, err := d.ops.GaussianBlur(gray, d.opts.BlurSize)
	if err != nil {
		return Quadrilateral{}, false, fmt.Errorf("detect: %w", err)
	}

	lower, upper := AdaptiveThresholds(d.ops.Median(gray, d.opts.MedianSamples), d.opts.Sigma)
	edges, err := d.ops.Canny(blurred, lower, upper)
	if err != nil {
		return Quadrilateral{}, false, fmt.Errorf("detect: %w", err)
	}
	closed, err := d.ops.Dilate(edges)
	if err != nil {
		return Quadrilateral{}, false, fmt.Errorf("detect: %w", err)
	}
	contours, err := d.ops.ExternalContours(closed)
	if err != nil {
		return Quadrilateral{}, false, fmt.Errorf("detect: %w", err)
	}

	var best Quadrilateral
	candidates := 0
	for _, c := range contours {
		ratio := d.ops.ContourArea(c) / frameArea
		if ratio < d.opts.MinAreaRatio || ratio > d.opts.MaxAreaRatio {
			continue
		}

		approx := d.ops.ApproxPolygon(c, d.opts.EpsilonFactor*d.ops.ArcLength(c))
		if len(approx) != 4 || !d.ops.IsConvex(approx) {
			continue
		}

		corners := geometry.OrderCorners([4]geometry.Point(approx))
		if !corners.Valid(d.opts.Rules) {
			continue
		}
		candidates++

		if !ok || ratio > best.AreaRatio {
			best = Quadrilateral{Corners: corners, AreaRatio: ratio, Valid: true}
			ok = true
		}
	}

	d.logger.Debug("detection finished",
		"contours", len(contours),
		"candidates", candidates,
		"lower", lower,
		"upper", upper,
		"found", ok,
	)
	return best, ok, nil
}

// AdaptiveThresholds spreads Canny thresholds around a median intensity.
func AdaptiveThresholds(median, sigma float64) (lower, upper float64) {
	lower = math.Max(0, (1-sigma)*median)
	upper = math.Min(255, (1+sigma)*median)
	return lower, upper
}
