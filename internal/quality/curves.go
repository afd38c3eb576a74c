package quality

import "math"

// StabilityBounds maps average corner movement (pixels per frame) to a
// score: at or below Still scores 100, at or above Shaky scores 0, linear in
// between.
type StabilityBounds struct {
	Still float64
	Shaky float64
}

// DefaultStabilityBounds returns 5px / 50px.
func DefaultStabilityBounds() StabilityBounds {
	return StabilityBounds{Still: 5, Shaky: 50}
}

// Score maps movement to [0, 100]. It is non-increasing in movement.
func (b StabilityBounds) Score(movement float64) int {
	if movement <= b.Still {
		return 100
	}
	if movement >= b.Shaky {
		return 0
	}
	ratio := (movement - b.Still) / (b.Shaky - b.Still)
	return clampScore(math.Round(100 - ratio*100))
}

// SharpnessCurve maps Laplacian variance to a score along two linear
// segments: Floor..Knee covers 0..50 and Knee..Ceiling covers 50..100.
type SharpnessCurve struct {
	Floor   float64
	Knee    float64
	Ceiling float64
}

// DefaultSharpnessCurve returns 50 / 200 / 500.
func DefaultSharpnessCurve() SharpnessCurve {
	return SharpnessCurve{Floor: 50, Knee: 200, Ceiling: 500}
}

// Score maps variance to [0, 100]. It is non-decreasing in variance.
func (c SharpnessCurve) Score(variance float64) int {
	switch {
	case variance >= c.Ceiling:
		return 100
	case variance <= c.Floor:
		return 0
	case variance < c.Knee:
		ratio := (variance - c.Floor) / (c.Knee - c.Floor)
		return clampScore(math.Round(ratio * 50))
	default:
		ratio := (variance - c.Knee) / (c.Ceiling - c.Knee)
		return clampScore(math.Round(50 + ratio*50))
	}
}

// LightingStats summarises a luminance plane.
type LightingStats struct {
	Mean        float64 `json:"mean_brightness"`
	Contrast    float64 `json:"contrast"`
	DarkRatio   float64 `json:"dark_ratio"`
	BrightRatio float64 `json:"bright_ratio"`
}

// Penalty is a linear deduction of Rate per unit beyond a limit, capped at
// Max.
type Penalty struct {
	Rate float64
	Max  float64
}

func (p Penalty) apply(excess float64) float64 {
	if excess <= 0 {
		return 0
	}
	return math.Min(p.Max, excess*p.Rate)
}

// LightingRules deducts from a starting score of 100.
type LightingRules struct {
	// MinBrightness and MaxBrightness bound the acceptable mean.
	MinBrightness float64
	MaxBrightness float64
	Dark          Penalty
	Bright        Penalty

	// MinContrast and MaxContrast bound the acceptable standard deviation.
	MinContrast float64
	MaxContrast float64
	Flat        Penalty
	Harsh       Penalty

	// DarkLevel and BrightLevel classify clipped pixels; up to
	// ClippedTolerance of the frame may be clipped on each side.
	DarkLevel        float64
	BrightLevel      float64
	ClippedTolerance float64
	Clipped          Penalty
}

// DefaultLightingRules returns the tuned exposure rules.
func DefaultLightingRules() LightingRules {
	return LightingRules{
		MinBrightness:    80,
		MaxBrightness:    180,
		Dark:             Penalty{Rate: 0.8, Max: 60},
		Bright:           Penalty{Rate: 0.6, Max: 60},
		MinContrast:      40,
		MaxContrast:      110,
		Flat:             Penalty{Rate: 1.0, Max: 50},
		Harsh:            Penalty{Rate: 0.3, Max: 20},
		DarkLevel:        5,
		BrightLevel:      250,
		ClippedTolerance: 0.05,
		Clipped:          Penalty{Rate: 400, Max: 40},
	}
}

// Score maps stats to [0, 100].
func (r LightingRules) Score(s LightingStats) int {
	score := 100.0
	if s.Mean < r.MinBrightness {
		score -= r.Dark.apply(r.MinBrightness - s.Mean)
	} else if s.Mean > r.MaxBrightness {
		score -= r.Bright.apply(s.Mean - r.MaxBrightness)
	}

	if s.Contrast < r.MinContrast {
		score -= r.Flat.apply(r.MinContrast - s.Contrast)
	} else if s.Contrast > r.MaxContrast {
		score -= r.Harsh.apply(s.Contrast - r.MaxContrast)
	}

	score -= r.Clipped.apply(s.DarkRatio - r.ClippedTolerance)
	score -= r.Clipped.apply(s.BrightRatio - r.ClippedTolerance)
	return clampScore(math.Round(score))
}
