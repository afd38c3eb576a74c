package scanner

import (
	"github.com/lucasb-eyer/go-colorful"
)

// Overlay readiness colours.
var (
	ColorCapturing = mustHex("#0080FF")
	ColorMissing   = mustHex("#FF4444")
	ColorReady     = mustHex("#00FF00")
	ColorGood      = mustHex("#FFD700")
	ColorFair      = mustHex("#FFA500")
	ColorPoor      = mustHex("#FF4444")
)

// overlayEasing is the fraction of the remaining distance the overlay
// colour covers per processed frame.
const overlayEasing = 0.15

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Overlay eases the outline colour toward the current readiness target.
type Overlay struct {
	current colorful.Color
	target  colorful.Color
}

// NewOverlay starts at the no-detection colour.
func NewOverlay() *Overlay {
	return &Overlay{current: ColorMissing, target: ColorMissing}
}

// Target picks the readiness colour for one frame.
func Target(capturing, detected bool, overall, threshold int) colorful.Color {
	switch {
	case capturing:
		return ColorCapturing
	case !detected:
		return ColorMissing
	case overall >= threshold:
		return ColorReady
	case overall >= 70:
		return ColorGood
	case overall >= 50:
		return ColorFair
	default:
		return ColorPoor
	}
}

// Step sets the target and moves the current colour toward it.
func (o *Overlay) Step(target colorful.Color) colorful.Color {
	o.target = target
	o.current = o.current.BlendRgb(o.target, overlayEasing)
	return o.current
}

// Current returns the eased colour.
func (o *Overlay) Current() colorful.Color { return o.current }

// Hex returns the eased colour as #rrggbb.
func (o *Overlay) Hex() string { return o.current.Clamped().Hex() }

// Reset snaps back to the no-detection colour.
func (o *Overlay) Reset() {
	o.current, o.target = ColorMissing, ColorMissing
}
