//go:build gocv
// +build gocv

package imaging

import (
	"fmt"
	"image"
	"math"
	"sort"

	"gocv.io/x/gocv"

	"github.com/ironsheep/docscan/internal/geometry"
)

// GoCV runs the pixel-heavy primitives through OpenCV. Pure geometry and
// statistics stay on the embedded Native implementation.
type GoCV struct {
	*Native
}

var _ Ops = (*GoCV)(nil)

// NewGoCV returns the OpenCV backed Ops.
func NewGoCV(limit int) (Ops, error) {
	return &GoCV{Native: NewNative(limit)}, nil
}

// GoCVAvailable reports whether the binary was built with OpenCV support.
func GoCVAvailable() bool { return true }

// toMat8U quantises a plane into an 8-bit single-channel Mat.
func toMat8U(g *Gray) (gocv.Mat, error) {
	buf := make([]byte, len(g.Pix))
	for i, v := range g.Pix {
		buf[i] = uint8(math.Max(0, math.Min(255, math.Round(v))))
	}
	return gocv.NewMatFromBytes(g.Height, g.Width, gocv.MatTypeCV8U, buf)
}

func (o *GoCV) fromMat8U(m gocv.Mat) (*Gray, error) {
	out, err := o.scratch.Acquire(m.Cols(), m.Rows())
	if err != nil {
		return nil, err
	}
	for i, b := range m.ToBytes() {
		out.Pix[i] = float64(b)
	}
	return out, nil
}

// Grayscale implements Ops.
func (o *GoCV) Grayscale(img image.Image) (*Gray, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, ErrEmptyFrame
	}
	src, err := gocv.ImageToMatRGBA(img)
	if err != nil {
		return nil, fmt.Errorf("grayscale: %w", err)
	}
	defer src.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(src, &gray, gocv.ColorRGBAToGray)
	return o.fromMat8U(gray)
}

// GaussianBlur implements Ops.
func (o *GoCV) GaussianBlur(src *Gray, ksize int) (*Gray, error) {
	if src.Empty() {
		return nil, ErrEmptyFrame
	}
	if ksize%2 == 0 {
		ksize++
	}
	in, err := toMat8U(src)
	if err != nil {
		return nil, fmt.Errorf("gaussian blur: %w", err)
	}
	defer in.Close()

	out := gocv.NewMat()
	defer out.Close()
	gocv.GaussianBlur(in, &out, image.Pt(ksize, ksize), 0, 0, gocv.BorderDefault)
	return o.fromMat8U(out)
}

// Canny implements Ops.
func (o *GoCV) Canny(src *Gray, low, high float64) (*Gray, error) {
	if src.Empty() {
		return nil, ErrEmptyFrame
	}
	in, err := toMat8U(src)
	if err != nil {
		return nil, fmt.Errorf("canny: %w", err)
	}
	defer in.Close()

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(in, &edges, float32(low), float32(high))
	return o.fromMat8U(edges)
}

// Dilate implements Ops.
func (o *GoCV) Dilate(src *Gray) (*Gray, error) {
	if src.Empty() {
		return nil, ErrEmptyFrame
	}
	in, err := toMat8U(src)
	if err != nil {
		return nil, fmt.Errorf("dilate: %w", err)
	}
	defer in.Close()

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(3, 3))
	defer kernel.Close()
	out := gocv.NewMat()
	defer out.Close()
	gocv.Dilate(in, &out, kernel)
	return o.fromMat8U(out)
}

// ExternalContours implements Ops. OpenCV reports outlines bottom-up, so
// they are re-sorted by the raster position of their first point.
func (o *GoCV) ExternalContours(edges *Gray) ([]Contour, error) {
	if edges.Empty() {
		return nil, ErrEmptyFrame
	}
	in, err := toMat8U(edges)
	if err != nil {
		return nil, fmt.Errorf("find contours: %w", err)
	}
	defer in.Close()

	found := gocv.FindContours(in, gocv.RetrievalExternal, gocv.ChainApproxNone)
	defer found.Close()

	contours := make([]Contour, 0, found.Size())
	for i := 0; i < found.Size(); i++ {
		pts := found.At(i).ToPoints()
		if len(pts) == 0 {
			continue
		}
		c := make(Contour, len(pts))
		for j, p := range pts {
			c[j] = geometry.Pt(float64(p.X), float64(p.Y))
		}
		contours = append(contours, c)
	}
	sort.SliceStable(contours, func(i, j int) bool {
		a, b := contours[i][0], contours[j][0]
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.X < b.X
	})
	return contours, nil
}

func toPointVector(c Contour) gocv.PointVector {
	pts := make([]image.Point, len(c))
	for i, p := range c {
		pts[i] = image.Pt(int(math.Round(p.X)), int(math.Round(p.Y)))
	}
	return gocv.NewPointVectorFromPoints(pts)
}

// ApproxPolygon implements Ops.
func (o *GoCV) ApproxPolygon(c Contour, epsilon float64) Contour {
	if len(c) < 3 {
		return append(Contour(nil), c...)
	}
	pv := toPointVector(c)
	defer pv.Close()

	approx := gocv.ApproxPolyDP(pv, epsilon, true)
	defer approx.Close()

	pts := approx.ToPoints()
	out := make(Contour, len(pts))
	for i, p := range pts {
		out[i] = geometry.Pt(float64(p.X), float64(p.Y))
	}
	return out
}

// ContourArea implements Ops.
func (o *GoCV) ContourArea(c Contour) float64 {
	if len(c) < 3 {
		return 0
	}
	pv := toPointVector(c)
	defer pv.Close()
	return gocv.ContourArea(pv)
}

// ArcLength implements Ops.
func (o *GoCV) ArcLength(c Contour) float64 {
	if len(c) < 2 {
		return 0
	}
	pv := toPointVector(c)
	defer pv.Close()
	return gocv.ArcLength(pv, true)
}

// Laplacian implements Ops.
func (o *GoCV) Laplacian(src *Gray) (*Gray, error) {
	if src.Empty() {
		return nil, ErrEmptyFrame
	}
	in, err := toMat8U(src)
	if err != nil {
		return nil, fmt.Errorf("laplacian: %w", err)
	}
	defer in.Close()

	lap := gocv.NewMat()
	defer lap.Close()
	gocv.Laplacian(in, &lap, gocv.MatTypeCV64F, 1, 1, 0, gocv.BorderDefault)

	data, err := lap.DataPtrFloat64()
	if err != nil {
		return nil, fmt.Errorf("laplacian: %w", err)
	}
	out, err := o.scratch.Acquire(src.Width, src.Height)
	if err != nil {
		return nil, fmt.Errorf("laplacian: %w", err)
	}
	copy(out.Pix, data)
	return out, nil
}

// PerspectiveTransform implements Ops.
func (o *GoCV) PerspectiveTransform(src, dst geometry.Quad) (geometry.Homography, error) {
	toVec := func(q geometry.Quad) gocv.Point2fVector {
		pts := make([]gocv.Point2f, 4)
		for i, p := range q {
			pts[i] = gocv.Point2f{X: float32(p.X), Y: float32(p.Y)}
		}
		return gocv.NewPoint2fVectorFromPoints(pts)
	}
	sv, dv := toVec(src), toVec(dst)
	defer sv.Close()
	defer dv.Close()

	m := gocv.GetPerspectiveTransform2f(sv, dv)
	defer m.Close()
	if m.Empty() {
		return geometry.Homography{}, geometry.ErrDegenerate
	}

	var h geometry.Homography
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			h[r*3+c] = m.GetDoubleAt(r, c)
		}
	}
	if math.Abs(h.Determinant()) < 1e-12 {
		return geometry.Homography{}, geometry.ErrDegenerate
	}
	return h, nil
}

// Warp implements Ops.
func (o *GoCV) Warp(img image.Image, h geometry.Homography, width, height int) (image.Image, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, ErrEmptyFrame
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("warp: invalid output size %dx%d", width, height)
	}
	src, err := gocv.ImageToMatRGBA(img)
	if err != nil {
		return nil, fmt.Errorf("warp: %w", err)
	}
	defer src.Close()

	m := gocv.NewMatWithSize(3, 3, gocv.MatTypeCV64F)
	defer m.Close()
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			m.SetDoubleAt(r, c, h[r*3+c])
		}
	}

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.WarpPerspective(src, &dst, m, image.Pt(width, height))
	out, err := dst.ToImage()
	if err != nil {
		return nil, fmt.Errorf("warp: %w", err)
	}
	return out, nil
}
