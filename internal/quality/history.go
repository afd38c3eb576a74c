package quality

import (
	"time"

	"github.com/ironsheep/docscan/internal/geometry"
)

// DefaultHistorySize is the number of frames stability is measured over.
const DefaultHistorySize = 7

// HistoryEntry is one frame's ordered corners.
type HistoryEntry struct {
	FrameIndex int           `json:"frame_index"`
	Corners    geometry.Quad `json:"corners"`
	Timestamp  time.Time     `json:"timestamp"`
}

// History is a fixed-capacity ring buffer of recent corner positions. When
// full, pushing evicts the oldest entry.
type History struct {
	entries []HistoryEntry
	start   int
	size    int
}

// NewHistory returns an empty history holding at most capacity entries.
func NewHistory(capacity int) *History {
	if capacity < 2 {
		capacity = 2
	}
	return &History{entries: make([]HistoryEntry, capacity)}
}

// Cap returns the capacity.
func (h *History) Cap() int {
	return len(h.entries)
}

// Len returns the number of entries held.
func (h *History) Len() int {
	return h.size
}

// Push appends e, evicting the oldest entry when full.
func (h *History) Push(e HistoryEntry) {
	if h.size < len(h.entries) {
		h.entries[(h.start+h.size)%len(h.entries)] = e
		h.size++
		return
	}
	h.entries[h.start] = e
	h.start = (h.start + 1) % len(h.entries)
}

// Clear drops every entry.
func (h *History) Clear() {
	h.start, h.size = 0, 0
}

// At returns the i-th entry, oldest first.
func (h *History) At(i int) HistoryEntry {
	return h.entries[(h.start+i)%len(h.entries)]
}

// Entries returns a copy of the entries, oldest first.
func (h *History) Entries() []HistoryEntry {
	out := make([]HistoryEntry, h.size)
	for i := range out {
		out[i] = h.At(i)
	}
	return out
}

// AverageMovement returns the mean per-corner displacement between every
// consecutive pair of entries. It is zero with fewer than two entries.
func (h *History) AverageMovement() float64 {
	if h.size < 2 {
		return 0
	}
	var total float64
	comparisons := 0
	for i := 1; i < h.size; i++ {
		prev, cur := h.At(i-1), h.At(i)
		for j := range cur.Corners {
			total += geometry.Distance(prev.Corners[j], cur.Corners[j])
			comparisons++
		}
	}
	return total / float64(comparisons)
}
