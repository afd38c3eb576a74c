// Package detection finds the document outline in a camera frame.
//
// The Detector looks for the single best document-shaped quadrilateral: a
// convex four-corner outline whose area is a plausible fraction of the
// frame. Finding nothing is the normal result for most frames and is
// reported with ok == false rather than an error.
//
// # Algorithm Overview
//
//  1. Grayscale and Gaussian blur
//  2. Canny edge detection with thresholds derived from the frame's own
//     median intensity, so the same settings work in dim and bright scenes
//  3. Dilation to close small gaps, then external contour tracing
//  4. Area-ratio filtering and polygon approximation to 4 convex vertices
//  5. Canonical corner ordering and a validity check that rejects tiny
//     outlines and slivers
//  6. Largest area ratio wins
//
// All pixel work goes through an imaging.Ops, so the same detector runs on
// the pure-Go backend or on OpenCV.
//
// # Coordinate System
//
// Corners are reported in the coordinates of the plane that was analysed:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//
// Callers that analyse a downscaled frame scale the corners back.
package detection
