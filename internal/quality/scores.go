package quality

import "math"

// Scores is one frame's readiness assessment. Every field is in [0, 100].
type Scores struct {
	Overall   int `json:"overall"`
	Stability int `json:"stability"`
	Sharpness int `json:"sharpness"`
	Lighting  int `json:"lighting"`
}

// Weights are the fusion coefficients. They sum to 1.
type Weights struct {
	Stability float64 `json:"stability"`
	Sharpness float64 `json:"sharpness"`
	Lighting  float64 `json:"lighting"`
}

// DefaultWeights favours stability, since a document that just came into
// view is rarely steady yet.
func DefaultWeights() Weights {
	return Weights{Stability: 0.40, Sharpness: 0.35, Lighting: 0.25}
}

// Fuse combines the sub-scores into the overall score. Without a detection
// the stability term is zero.
func (w Weights) Fuse(stability, sharpness, lighting int, detected bool) int {
	var total float64
	if detected {
		total += w.Stability * float64(stability)
	}
	total += w.Sharpness * float64(sharpness)
	total += w.Lighting * float64(lighting)
	return clampScore(math.Round(total))
}

// clampScore converts v to an int in [0, 100].
func clampScore(v float64) int {
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0
	case v >= 100:
		return 100
	default:
		return int(v)
	}
}
