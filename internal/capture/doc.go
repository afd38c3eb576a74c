// Package capture decides when a frame stream is ready to be captured.
//
// Machine is a pure function of its previous state, the current frame's
// detection and score, and the frame timestamp. It never reads the clock and
// never sleeps, so a replayed stream with synthetic timestamps behaves exactly
// like a live one.
//
// # States
//
//	Idle -> Counting -> Capturing -> Cooldown -> Idle
//
// The first frame that holds a valid document at or above the threshold
// starts the countdown. Any frame that loses the document or drops below
// the threshold returns to Idle with the countdown cleared. When the
// countdown has run for the configured delay, Update reports that a capture
// should fire; the caller rectifies the frame and then calls Complete (or
// Abort on failure). Cooldown lasts a fixed window measured from the capture
// and only drives the capture animation phases.
package capture
