package rectify

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"math"
	"time"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/google/uuid"

	"github.com/ironsheep/docscan/internal/geometry"
	"github.com/ironsheep/docscan/internal/imaging"
	"github.com/ironsheep/docscan/internal/logging"
	"github.com/ironsheep/docscan/internal/quality"
)

var (
	// ErrInsufficientCorners is returned when fewer than four corners are
	// available.
	ErrInsufficientCorners = errors.New("rectify: need four corners")

	// ErrDegenerateTransform is returned when the corners cannot define a
	// perspective transform.
	ErrDegenerateTransform = errors.New("rectify: degenerate transform")
)

// ScanResult is one captured, perspective-corrected document.
type ScanResult struct {
	ID         string              `json:"id"`
	Image      image.Image         `json:"-"`
	Width      int                 `json:"width"`
	Height     int                 `json:"height"`
	Corners    geometry.Quad       `json:"corners"`
	Transform  geometry.Homography `json:"transform"`
	Quality    quality.Scores      `json:"quality"`
	CapturedAt time.Time           `json:"captured_at"`
}

// WritePNG encodes the rectified image as PNG.
func (r *ScanResult) WritePNG(w io.Writer) error {
	return imgio.PNGEncoder()(w, r.Image)
}

// PNG returns the rectified image encoded as PNG.
func (r *ScanResult) PNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := r.WritePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// Save writes the rectified image to path as PNG.
func (r *ScanResult) Save(path string) error {
	return imaging.SavePNG(path, r.Image)
}

// Base64 returns the PNG encoding as standard base64.
func (r *ScanResult) Base64() (string, error) {
	data, err := r.PNG()
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// DataURL returns the PNG encoding as a data:image/png URL.
func (r *ScanResult) DataURL() (string, error) {
	b64, err := r.Base64()
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + b64, nil
}

// OutputSize returns the rectified width and height for q.
func OutputSize(q geometry.Quad) (width, height int) {
	w := math.Max(
		geometry.Distance(q[geometry.TopLeft], q[geometry.TopRight]),
		geometry.Distance(q[geometry.BottomLeft], q[geometry.BottomRight]),
	)
	h := math.Max(
		geometry.Distance(q[geometry.TopLeft], q[geometry.BottomLeft]),
		geometry.Distance(q[geometry.TopRight], q[geometry.BottomRight]),
	)
	return max(1, int(math.Round(w))), max(1, int(math.Round(h)))
}

// Rectifier warps frames through the Ops it was built with.
type Rectifier struct {
	ops    imaging.Ops
	logger *slog.Logger
}

// New returns a Rectifier.
func New(ops imaging.Ops, logger *slog.Logger) *Rectifier {
	return &Rectifier{ops: ops, logger: logging.OrDiscard(logger)}
}

// Rectify maps the region of img outlined by corners onto an upright
// rectangle. corners must hold four points in canonical order; they are
// used as given.
func (r *Rectifier) Rectify(img image.Image, corners []geometry.Point, scores quality.Scores, at time.Time) (*ScanResult, error) {
	if len(corners) < 4 {
		return nil, ErrInsufficientCorners
	}
	if img == nil || img.Bounds().Empty() {
		return nil, imaging.ErrEmptyFrame
	}

	q := geometry.Quad{corners[0], corners[1], corners[2], corners[3]}
	width, height := OutputSize(q)
	dst := geometry.RectQuad(float64(width), float64(height))

	h, err := r.ops.PerspectiveTransform(q, dst)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDegenerateTransform, err)
	}
	out, err := r.ops.Warp(img, h, width, height)
	if err != nil {
		if errors.Is(err, geometry.ErrDegenerate) {
			return nil, fmt.Errorf("%w: %v", ErrDegenerateTransform, err)
		}
		return nil, fmt.Errorf("failed to warp frame: %w", err)
	}

	result := &ScanResult{
		ID:         uuid.NewString(),
		Image:      out,
		Width:      width,
		Height:     height,
		Corners:    q,
		Transform:  h,
		Quality:    scores,
		CapturedAt: at,
	}
	r.logger.Debug("rectified frame", "id", result.ID, "width", width, "height", height)
	return result, nil
}
