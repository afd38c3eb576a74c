package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/disintegration/imaging"

	"github.com/ironsheep/docscan/internal/geometry"
)

// cornerMarkerRadius is the half-width of the square drawn on each corner.
const cornerMarkerRadius = 3

// Annotate returns a copy of img with the outline q drawn over it in c.
// Edges are thickness pixels wide and each corner gets a filled marker.
// Pixels falling outside the frame are dropped.
func Annotate(img image.Image, q geometry.Quad, c color.Color, thickness int) *image.NRGBA {
	out := imaging.Clone(img)
	if thickness < 1 {
		thickness = 1
	}
	nc := color.NRGBAModel.Convert(c).(color.NRGBA)

	for i := 0; i < 4; i++ {
		drawSegment(out, q[i], q[(i+1)%4], nc, thickness)
	}
	for _, p := range q {
		fillSquare(out, int(math.Round(p.X)), int(math.Round(p.Y)), cornerMarkerRadius, nc)
	}
	return out
}

// drawSegment steps along a-b one pixel at a time stamping a square brush.
func drawSegment(img *image.NRGBA, a, b geometry.Point, c color.NRGBA, thickness int) {
	steps := int(math.Ceil(math.Max(math.Abs(b.X-a.X), math.Abs(b.Y-a.Y))))
	if steps == 0 {
		steps = 1
	}
	half := thickness / 2
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		x := int(math.Round(a.X + (b.X-a.X)*t))
		y := int(math.Round(a.Y + (b.Y-a.Y)*t))
		fillSquare(img, x, y, half, c)
	}
}

func fillSquare(img *image.NRGBA, cx, cy, radius int, c color.NRGBA) {
	bounds := img.Bounds()
	for y := cy - radius; y <= cy+radius; y++ {
		for x := cx - radius; x <= cx+radius; x++ {
			if image.Pt(x, y).In(bounds) {
				img.SetNRGBA(x, y, c)
			}
		}
	}
}

// EncodePNGBase64 encodes img as PNG and returns it as standard base64.
func EncodePNGBase64(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := imgio.PNGEncoder()(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
