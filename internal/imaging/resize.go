package imaging

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// Downscale returns img reduced to at most maxWidth pixels wide, keeping the
// aspect ratio, together with the factors that map coordinates in the
// returned image back onto img. Images already narrow enough (or any image
// when maxWidth <= 0) are returned as is with factors of 1.
func Downscale(img image.Image, maxWidth int) (out image.Image, scaleX, scaleY float64) {
	b := img.Bounds()
	if maxWidth <= 0 || b.Dx() <= maxWidth {
		return img, 1, 1
	}

	height := int(math.Round(float64(b.Dy()) * float64(maxWidth) / float64(b.Dx())))
	if height < 1 {
		height = 1
	}
	resized := imaging.Resize(img, maxWidth, height, imaging.Linear)
	return resized, float64(b.Dx()) / float64(maxWidth), float64(b.Dy()) / float64(height)
}
