package quality

import (
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/ironsheep/docscan/internal/imaging"
)

// createDocumentFrame draws a light rectangle on a dark background.
func createDocumentFrame(width, height int, doc image.Rectangle) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := uint8(40)
			if image.Pt(x, y).In(doc) {
				v = 230
			}
			img.SetRGBA(x, y, color.RGBA{v, v, v, 255})
		}
	}
	return img
}

func measureFrame(t *testing.T, s *Scorer, ops imaging.Ops, img image.Image) Measurement {
	t.Helper()
	ops.Reset()
	gray, err := ops.Grayscale(img)
	if err != nil {
		t.Fatalf("Grayscale failed: %v", err)
	}
	m, err := s.Measure(gray)
	if err != nil {
		t.Fatalf("Measure failed: %v", err)
	}
	return m
}

func TestScorer_MeasureDocumentFrame(t *testing.T) {
	ops := imaging.NewNative(0)
	s := NewScorer(ops, DefaultOptions())

	m := measureFrame(t, s, ops, createDocumentFrame(200, 150, image.Rect(30, 25, 170, 125)))

	if m.Sharpness != 100 {
		t.Errorf("Sharpness: got %d (variance %.1f), want 100", m.Sharpness, m.LaplacianVariance)
	}
	if m.Lighting != 100 {
		t.Errorf("Lighting: got %d (stats %+v), want 100", m.Lighting, m.Stats)
	}
	if len(s.History()) != 0 {
		t.Error("Measure should not touch the history")
	}
}

func TestScorer_MeasureFlatFrame(t *testing.T) {
	ops := imaging.NewNative(0)
	s := NewScorer(ops, DefaultOptions())

	m := measureFrame(t, s, ops, createDocumentFrame(120, 90, image.Rectangle{}))

	if m.Sharpness != 0 {
		t.Errorf("Sharpness: got %d, want 0", m.Sharpness)
	}
	// Mean 40 costs 32 and zero contrast costs 40.
	if m.Lighting != 28 {
		t.Errorf("Lighting: got %d (stats %+v), want 28", m.Lighting, m.Stats)
	}
}

func TestScorer_MeasureEmpty(t *testing.T) {
	s := NewScorer(imaging.NewNative(0), DefaultOptions())
	if _, err := s.Measure(&imaging.Gray{}); err != imaging.ErrEmptyFrame {
		t.Errorf("got %v, want ErrEmptyFrame", err)
	}
}

func TestScorer_CommitStability(t *testing.T) {
	s := NewScorer(imaging.NewNative(0), DefaultOptions())
	m := Measurement{Sharpness: 100, Lighting: 100}
	now := time.Unix(0, 0)
	q := squareAt(20, 20)

	first := s.Commit(&q, m, now)
	if first.Stability != 0 {
		t.Errorf("first frame stability: got %d, want 0", first.Stability)
	}
	if first.Overall != 60 {
		t.Errorf("first frame overall: got %d, want 60", first.Overall)
	}

	second := s.Commit(&q, m, now.Add(33*time.Millisecond))
	if second.Stability != 100 || second.Overall != 100 {
		t.Errorf("steady frame: got %+v, want stability 100 and overall 100", second)
	}

	// Pairs moved 0 then 30 pixels per corner: average 15.
	moved := squareAt(50, 20)
	third := s.Commit(&moved, m, now.Add(66*time.Millisecond))
	if third.Stability != 78 {
		t.Errorf("moved frame stability: got %d, want 78", third.Stability)
	}
}

func TestScorer_CommitWithoutDetection(t *testing.T) {
	s := NewScorer(imaging.NewNative(0), DefaultOptions())
	m := Measurement{Sharpness: 80, Lighting: 60}
	q := squareAt(0, 0)
	s.Commit(&q, m, time.Now())
	s.Commit(&q, m, time.Now())

	got := s.Commit(nil, m, time.Now())
	if got.Stability != 0 {
		t.Errorf("stability: got %d, want 0", got.Stability)
	}
	if got.Overall != 43 {
		t.Errorf("overall: got %d, want 43", got.Overall)
	}
	if len(s.History()) != 0 {
		t.Errorf("history: got %d entries, want 0", len(s.History()))
	}

	// Stability restarts from an empty history.
	if again := s.Commit(&q, m, time.Now()); again.Stability != 0 {
		t.Errorf("stability after loss: got %d, want 0", again.Stability)
	}
}

func TestScorer_StabilityDecreasesWithMovement(t *testing.T) {
	prev := 101
	for _, shift := range []float64{0, 6, 10, 20, 40, 49} {
		s := NewScorer(imaging.NewNative(0), DefaultOptions())
		a, b := squareAt(0, 0), squareAt(shift, 0)
		s.Commit(&a, Measurement{}, time.Now())
		got := s.Commit(&b, Measurement{}, time.Now()).Stability
		if got >= prev {
			t.Errorf("shift %v: stability %d not below %d", shift, got, prev)
		}
		prev = got
	}
}

func TestScorer_HistoryBounded(t *testing.T) {
	s := NewScorer(imaging.NewNative(0), DefaultOptions())
	for i := 0; i < 20; i++ {
		q := squareAt(float64(i), 0)
		s.Commit(&q, Measurement{}, time.Now())
	}
	h := s.History()
	if len(h) != DefaultHistorySize {
		t.Fatalf("history: got %d entries, want %d", len(h), DefaultHistorySize)
	}
	if h[0].FrameIndex != 14 || h[len(h)-1].FrameIndex != 20 {
		t.Errorf("history frames: got %d..%d, want 14..20", h[0].FrameIndex, h[len(h)-1].FrameIndex)
	}

	s.Reset()
	if len(s.History()) != 0 {
		t.Error("Reset should clear the history")
	}
}
