package quality

import "testing"

func TestStabilityBounds_Score(t *testing.T) {
	b := DefaultStabilityBounds()
	tests := []struct {
		movement float64
		want     int
	}{
		{0, 100},
		{5, 100},
		{27.5, 50},
		{50, 0},
		{80, 0},
	}

	for _, tt := range tests {
		if got := b.Score(tt.movement); got != tt.want {
			t.Errorf("Score(%v): got %d, want %d", tt.movement, got, tt.want)
		}
	}
}

func TestStabilityBounds_Monotonic(t *testing.T) {
	b := DefaultStabilityBounds()
	prev := b.Score(0)
	for m := 0.5; m <= 60; m += 0.5 {
		got := b.Score(m)
		if got > prev {
			t.Fatalf("Score increased at movement %v: %d > %d", m, got, prev)
		}
		if got < 0 || got > 100 {
			t.Fatalf("Score(%v) = %d out of range", m, got)
		}
		prev = got
	}
}

func TestSharpnessCurve_Score(t *testing.T) {
	c := DefaultSharpnessCurve()
	tests := []struct {
		variance float64
		want     int
	}{
		{0, 0},
		{50, 0},
		{125, 25},
		{200, 50},
		{350, 75},
		{500, 100},
		{5000, 100},
	}

	for _, tt := range tests {
		if got := c.Score(tt.variance); got != tt.want {
			t.Errorf("Score(%v): got %d, want %d", tt.variance, got, tt.want)
		}
	}
}

func TestSharpnessCurve_Monotonic(t *testing.T) {
	c := DefaultSharpnessCurve()
	prev := c.Score(0)
	for v := 1.0; v <= 700; v++ {
		got := c.Score(v)
		if got < prev {
			t.Fatalf("Score decreased at variance %v: %d < %d", v, got, prev)
		}
		prev = got
	}
}

func TestLightingRules_Score(t *testing.T) {
	r := DefaultLightingRules()
	tests := []struct {
		name  string
		stats LightingStats
		want  int
	}{
		{"ideal", LightingStats{Mean: 130, Contrast: 70}, 100},
		{"dim", LightingStats{Mean: 30, Contrast: 70}, 60},
		{"black", LightingStats{Mean: 0, Contrast: 70}, 40},
		{"bright", LightingStats{Mean: 230, Contrast: 70}, 70},
		{"flat", LightingStats{Mean: 130, Contrast: 10}, 70},
		{"harsh", LightingStats{Mean: 130, Contrast: 150}, 88},
		{"crushed shadows", LightingStats{Mean: 130, Contrast: 70, DarkRatio: 0.2}, 60},
		{"small highlight clip", LightingStats{Mean: 130, Contrast: 70, BrightRatio: 0.06}, 96},
		{"everything wrong", LightingStats{Mean: 0, Contrast: 0, DarkRatio: 1}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Score(tt.stats); got != tt.want {
				t.Errorf("Score: got %d, want %d", got, tt.want)
			}
		})
	}
}
