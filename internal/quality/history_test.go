package quality

import (
	"math"
	"testing"
	"time"

	"github.com/ironsheep/docscan/internal/geometry"
)

func squareAt(x, y float64) geometry.Quad {
	return geometry.Quad{{X: x, Y: y}, {X: x + 100, Y: y}, {X: x + 100, Y: y + 80}, {X: x, Y: y + 80}}
}

func TestHistory_PushEvictsOldest(t *testing.T) {
	h := NewHistory(3)
	base := time.Unix(0, 0)
	for i := 1; i <= 5; i++ {
		h.Push(HistoryEntry{FrameIndex: i, Corners: squareAt(float64(i), 0), Timestamp: base})
	}

	if h.Len() != 3 {
		t.Fatalf("Len: got %d, want 3", h.Len())
	}
	entries := h.Entries()
	for i, want := range []int{3, 4, 5} {
		if entries[i].FrameIndex != want {
			t.Errorf("entry %d: got frame %d, want %d", i, entries[i].FrameIndex, want)
		}
	}
}

func TestHistory_Clear(t *testing.T) {
	h := NewHistory(DefaultHistorySize)
	h.Push(HistoryEntry{FrameIndex: 1})
	h.Push(HistoryEntry{FrameIndex: 2})
	h.Clear()

	if h.Len() != 0 {
		t.Errorf("Len after Clear: got %d, want 0", h.Len())
	}
	if len(h.Entries()) != 0 {
		t.Error("Entries after Clear should be empty")
	}
	h.Push(HistoryEntry{FrameIndex: 9})
	if h.At(0).FrameIndex != 9 {
		t.Errorf("first entry after Clear: got %d, want 9", h.At(0).FrameIndex)
	}
}

func TestHistory_AverageMovement(t *testing.T) {
	h := NewHistory(DefaultHistorySize)
	if got := h.AverageMovement(); got != 0 {
		t.Errorf("empty history: got %v, want 0", got)
	}

	for i := 0; i < 4; i++ {
		h.Push(HistoryEntry{FrameIndex: i, Corners: squareAt(float64(3*i), float64(4*i))})
	}
	// Every corner moves by (3, 4) per frame.
	if got := h.AverageMovement(); math.Abs(got-5) > 1e-9 {
		t.Errorf("AverageMovement: got %v, want 5", got)
	}
}

func TestHistory_MinimumCapacity(t *testing.T) {
	if got := NewHistory(0).Cap(); got != 2 {
		t.Errorf("Cap: got %d, want 2", got)
	}
}
