package host

import (
	"image/color"

	"github.com/Garsondee/Fireworks/internal/shells"
	"golang.org/x/image/colornames"
)

// Palette maps render tags to draw colours.
type Palette map[shells.RenderTag]color.RGBA

// DefaultPalette covers the tags used by the built-in recipes. The colours
// follow the flame tint of each element.
func DefaultPalette() Palette {
	return Palette{
		"rocket":    colornames.Whitesmoke,
		"copper":    colornames.Turquoise,
		"sodium":    colornames.Gold,
		"strontium": colornames.Crimson,
		"barium":    colornames.Lawngreen,
	}
}

// Color returns the colour for tag, white when the tag is unknown.
func (p Palette) Color(tag shells.RenderTag) color.RGBA {
	if c, ok := p[tag]; ok {
		return c
	}
	return colornames.White
}

// Faded returns the tag colour with alpha scaled by f in [0,1].
func (p Palette) Faded(tag shells.RenderTag, f float64) color.RGBA {
	if f < 0 {
		f = 0
	}
	if f > 1 {
		f = 1
	}
	c := p.Color(tag)
	// Premultiplied alpha: scale every channel.
	return color.RGBA{
		R: uint8(float64(c.R) * f),
		G: uint8(float64(c.G) * f),
		B: uint8(float64(c.B) * f),
		A: uint8(float64(c.A) * f),
	}
}
