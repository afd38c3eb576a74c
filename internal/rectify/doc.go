// Package rectify turns a detected document outline into an upright image.
//
// The output size comes from the outline itself: width is the longer of the
// top and bottom edges and height the longer of the left and right edges,
// each rounded and at least one pixel. The four ordered corners are mapped
// onto (0,0), (W,0), (W,H), (0,H) and the source frame is warped through
// that transform.
package rectify
