// Package quality scores how ready the current view is for capture.
//
// Three sub-scores, each an integer in [0, 100], are fused into one overall
// readiness score:
//
//   - Stability: how little the detected corners moved across the recent
//     frames held in a bounded History
//   - Sharpness: variance of the Laplacian response of the luminance plane
//   - Lighting: penalties for under or over exposure, weak or harsh
//     contrast and clipped shadows or highlights
//
// # Per-frame Flow
//
// Scoring is split so a frame can fail without touching rolling state.
// Measure computes sharpness and lighting from the frame alone. Commit then
// records the corners in the history, derives stability and fuses the
// three values. A frame that fails before Commit leaves the history as it
// was.
//
// # Fusion
//
//	overall = round(0.40*stability + 0.35*sharpness + 0.25*lighting)
//
// Stability contributes nothing when no document is detected, and the
// history is cleared so the next detection starts from scratch.
package quality
