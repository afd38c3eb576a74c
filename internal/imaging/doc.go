// Package imaging provides the image-processing primitives the scanning
// pipeline is built on.
//
// The primitives are exposed through the Ops interface so the detector,
// scorer and rectifier never depend on a particular backend:
//
//   - Native: pure Go, no cgo. Grayscale conversion, Gaussian blur, Canny
//     edge detection with hysteresis, dilation, Moore-neighbour contour
//     tracing, Ramer-Douglas-Peucker polygon approximation, Laplacian,
//     pixel statistics and perspective warping.
//   - GoCV: the same operations through OpenCV, available when built with
//     -tags gocv. Without the tag NewGoCV returns ErrGoCVUnavailable.
//
// # Planes
//
// Single-channel data is carried in a Gray plane of float64 values. Luminance
// planes hold values in [0, 255]; filter responses such as the Laplacian may
// be negative. Binary planes (edges) hold 0 or 255.
//
// # Scratch Buffers
//
// Every plane an Ops hands out comes from its Scratch pool. The pool is
// filled on the first frame of a stream and reused afterwards, so a steady
// stream allocates no planes per frame. Reset must be called at the start of
// each frame; planes from the previous frame are overwritten after that.
// When the pool is exhausted operations fail with ErrBufferUnavailable and
// the caller drops the frame.
//
// # Frames on Disk
//
// FrameCache decodes PNG, JPEG, GIF and BMP frames once per path. SavePNG
// and EncodePNGBase64 write results back out, and Annotate draws a detected
// outline onto a copy of a frame for inspection.
//
// # Coordinate System
//
// Pixel coordinates are 0-based relative to the image bounds:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//
// # Thread Safety
//
// FrameCache is safe for concurrent use. Ops implementations are not; each
// frame loop owns its own.
package imaging
