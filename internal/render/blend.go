package render

import (
	"github.com/lucasb-eyer/go-colorful"

	"github.com/keystorm-labs/buffercore/internal/renderer"
)

// BlendBackground blends two backgrounds perceptually in CIE-Lab space
// rather than the linear-RGB average renderer.Color.Blend does, so a demo
// theme's translucent selection/current-line backgrounds mix the way a
// human eye actually perceives them instead of washing out toward gray at
// t=0.5. amount 0 returns a, amount 1 returns b; when either side is the
// default colour, the other side is returned whatever the amount.
func BlendBackground(a, b renderer.Color, amount float64) renderer.Color {
	if a.IsDefault() {
		return b
	}
	if b.IsDefault() {
		return a
	}
	if a.Indexed || b.Indexed {
		return a.Blend(b, amount)
	}

	ca := colorful.Color{R: float64(a.R) / 255, G: float64(a.G) / 255, B: float64(a.B) / 255}
	cb := colorful.Color{R: float64(b.R) / 255, G: float64(b.G) / 255, B: float64(b.B) / 255}
	blended := ca.BlendLab(cb, amount)
	r, g, bl := blended.Clamped().RGB255()
	return renderer.Color{R: r, G: g, B: bl}
}
