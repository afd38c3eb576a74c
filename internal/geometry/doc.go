// Package geometry provides the planar math shared by the scanning pipeline.
//
// It covers the value types used across the engine (Point, Quad), the
// deterministic corner ordering applied to every detected quadrilateral, the
// validity check that rejects degenerate slivers, polygon measurements
// (area, perimeter, convexity) and the projective transform used for
// rectification.
//
// # Coordinate System
//
// All coordinates are floating-point image-space positions:
//   - Origin (0, 0) at the top-left corner
//   - X increases rightward
//   - Y increases downward
//
// Because Y grows downward, a polygon listed top-left, top-right,
// bottom-right, bottom-left winds clockwise on screen.
//
// # Corner Order
//
// A Quad is always stored in canonical order:
//
//	Quad[TopLeft], Quad[TopRight], Quad[BottomRight], Quad[BottomLeft]
//
// OrderCorners produces this order from any permutation of four points and
// is idempotent on an already-ordered quad.
//
// # Homography
//
// Homography is a row-major 3x3 projective matrix. QuadToQuad builds the
// transform that maps one quadrilateral onto another by composing
// square-to-quad mappings, so no general linear solver is needed.
package geometry
