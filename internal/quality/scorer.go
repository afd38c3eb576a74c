package quality

import (
	"fmt"
	"math"
	"time"

	"github.com/ironsheep/docscan/internal/geometry"
	"github.com/ironsheep/docscan/internal/imaging"
)

// Options configures a Scorer.
type Options struct {
	HistorySize int
	Weights     Weights
	Stability   StabilityBounds
	Sharpness   SharpnessCurve
	Lighting    LightingRules
}

// DefaultOptions returns the scorer settings used by the scanner.
func DefaultOptions() Options {
	return Options{
		HistorySize: DefaultHistorySize,
		Weights:     DefaultWeights(),
		Stability:   DefaultStabilityBounds(),
		Sharpness:   DefaultSharpnessCurve(),
		Lighting:    DefaultLightingRules(),
	}
}

// Measurement is the part of a frame's assessment that depends on the
// frame alone.
type Measurement struct {
	Sharpness         int           `json:"sharpness"`
	Lighting          int           `json:"lighting"`
	LaplacianVariance float64       `json:"laplacian_variance"`
	Stats             LightingStats `json:"stats"`
}

// Scorer holds the corner history of one stream.
type Scorer struct {
	ops        imaging.Ops
	opts       Options
	history    *History
	frameIndex int
}

// NewScorer returns a Scorer measuring through ops.
func NewScorer(ops imaging.Ops, opts Options) *Scorer {
	return &Scorer{
		ops:     ops,
		opts:    opts,
		history: NewHistory(opts.HistorySize),
	}
}

// Measure computes sharpness and lighting for a luminance plane. It does not
// touch the history.
func (s *Scorer) Measure(gray *imaging.Gray) (Measurement, error) {
	if gray.Empty() {
		return Measurement{}, imaging.ErrEmptyFrame
	}

	lap, err := s.ops.Laplacian(gray)
	if err != nil {
		return Measurement{}, fmt.Errorf("sharpness: %w", err)
	}
	_, lapStd := s.ops.MeanStdDev(lap)
	variance := lapStd * lapStd

	mean, std := s.ops.MeanStdDev(gray)
	stats := LightingStats{Mean: mean, Contrast: std}
	stats.DarkRatio, stats.BrightRatio = clippedRatios(gray, s.opts.Lighting.DarkLevel, s.opts.Lighting.BrightLevel)

	return Measurement{
		Sharpness:         s.opts.Sharpness.Score(variance),
		Lighting:          s.opts.Lighting.Score(stats),
		LaplacianVariance: variance,
		Stats:             stats,
	}, nil
}

// clippedRatios returns the fractions of pixels at or below dark and at or
// above bright, after rounding to 8-bit levels.
func clippedRatios(gray *imaging.Gray, dark, bright float64) (darkRatio, brightRatio float64) {
	var nDark, nBright int
	for _, v := range gray.Pix {
		level := math.Round(v)
		if level <= dark {
			nDark++
		} else if level >= bright {
			nBright++
		}
	}
	total := float64(len(gray.Pix))
	return float64(nDark) / total, float64(nBright) / total
}

// Commit records the frame's corners and returns its fused scores. A nil
// corners means nothing was detected: the history is cleared and stability
// is zero.
func (s *Scorer) Commit(corners *geometry.Quad, m Measurement, at time.Time) Scores {
	stability := s.updateStability(corners, at)
	return Scores{
		Overall:   s.opts.Weights.Fuse(stability, m.Sharpness, m.Lighting, corners != nil),
		Stability: stability,
		Sharpness: m.Sharpness,
		Lighting:  m.Lighting,
	}
}

func (s *Scorer) updateStability(corners *geometry.Quad, at time.Time) int {
	if corners == nil {
		s.history.Clear()
		return 0
	}

	s.frameIndex++
	s.history.Push(HistoryEntry{FrameIndex: s.frameIndex, Corners: *corners, Timestamp: at})
	if s.history.Len() < 2 {
		return 0
	}
	return s.opts.Stability.Score(s.history.AverageMovement())
}

// History returns the recorded entries, oldest first.
func (s *Scorer) History() []HistoryEntry {
	return s.history.Entries()
}

// Reset clears the history.
func (s *Scorer) Reset() {
	s.history.Clear()
	s.frameIndex = 0
}
