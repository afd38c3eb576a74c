// Package scanner runs the frame loop that ties detection, scoring, the
// capture state machine and rectification together.
//
// A Session owns every piece of rolling state for one frame stream: the
// corner history, the countdown, the last processed frame and its corners.
// Frames are processed one at a time in the caller's goroutine. Each call
// to Process either commits a complete update or, when the frame fails,
// leaves the rolling state exactly as it was. A capture cut short by a
// panic is aborted so the machine returns to Idle. Nil and empty frames
// count as frames without a document.
//
// Basic usage:
//
//	ops := imaging.NewNative(imaging.DefaultScratchBuffers)
//	s := scanner.New(config.DefaultConfig(), ops, logger)
//	s.OnCapture(func(r *rectify.ScanResult) { save(r) })
//	for frame := range frames {
//		report, err := s.Process(frame)
//		...
//	}
//	s.Stop()
package scanner
