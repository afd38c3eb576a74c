package scanner

import (
	"image"
	"time"

	"github.com/ironsheep/docscan/internal/rectify"
)

// DefaultReplayInterval spaces replayed frames at roughly 10 fps.
const DefaultReplayInterval = 100 * time.Millisecond

// FrameError records a frame that failed during a replay.
type FrameError struct {
	Index int    `json:"index"`
	Error string `json:"error"`
}

// ReplayResult collects everything a replay produced.
type ReplayResult struct {
	Reports  []Report              `json:"reports"`
	Captures []*rectify.ScanResult `json:"captures"`
	Errors   []FrameError          `json:"errors,omitempty"`
}

// Replay feeds frames through the session in order with synthetic
// timestamps start, start+interval, and so on. Failed frames are recorded
// and the replay continues.
func (s *Session) Replay(frames []image.Image, start time.Time, interval time.Duration) ReplayResult {
	if interval <= 0 {
		interval = DefaultReplayInterval
	}

	var out ReplayResult
	for i, img := range frames {
		rep, err := s.Process(Frame{Image: img, Timestamp: start.Add(time.Duration(i) * interval)})
		out.Reports = append(out.Reports, rep)
		if err != nil {
			out.Errors = append(out.Errors, FrameError{Index: rep.Index, Error: err.Error()})
		}
		if rep.Result != nil {
			out.Captures = append(out.Captures, rep.Result)
		}
	}
	return out
}
