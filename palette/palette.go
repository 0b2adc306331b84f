// Package palette derives working color tables from palette files.
package palette

import (
	"image/color"
	"math"

	"github.com/mwantia/cncmaps/format"
)

const (
	// First and last index of the house color range.
	RemapStart = 16
	RemapEnd   = 31
)

// remapRamp scales the house color over the remap range, brightest first.
var remapRamp = [RemapEnd - RemapStart + 1]uint32{
	0xFC, 0xEC, 0xDC, 0xD0, 0xC0, 0xB0, 0xA4, 0x94,
	0x84, 0x78, 0x68, 0x58, 0x4C, 0x3C, 0x2C, 0x20,
}

// Palette is a base color table plus the working table derived from it.
// Base is never changed once loaded.
type Palette struct {
	Name       string
	Remappable bool

	Base   [256]color.RGBA
	Colors [256]color.RGBA
}

// Load creates a palette whose working table equals the file's colors.
func Load(pal *format.PalFile, name string, remappable bool) *Palette {
	p := &Palette{
		Name:       name,
		Remappable: remappable,
		Base:       pal.Colors,
	}
	p.Colors = p.Base
	return p
}

// Color returns the working color of index i. Index 0 is transparent.
func (p *Palette) Color(i uint8) color.RGBA {
	if i == 0 {
		return color.RGBA{}
	}
	return p.Colors[i]
}

// ColorPalette returns the working table for use with image.Paletted.
func (p *Palette) ColorPalette() color.Palette {
	pal := make(color.Palette, 256)
	for i := range 256 {
		pal[i] = p.Color(uint8(i))
	}
	return pal
}

// Lighting holds the ambient light of a scene. Level is added per height
// level above ground.
type Lighting struct {
	Ambient float64
	Red     float64
	Green   float64
	Blue    float64
	Ground  float64
	Level   float64
}

// Neutral leaves every color unchanged.
func Neutral() Lighting {
	return Lighting{Ambient: 1, Red: 1, Green: 1, Blue: 1}
}

// Context selects the derivation applied by Recalculate. The zero value
// leaves the base table unchanged.
type Context struct {
	Remap    *color.RGBA
	Lighting *Lighting
	Height   int
}

// Recalculate derives a new palette from the base table of p. It never
// modifies p and returns identical tables for identical inputs.
func Recalculate(p *Palette, ctx Context) *Palette {
	out := &Palette{
		Name:       p.Name,
		Remappable: p.Remappable,
		Base:       p.Base,
	}

	colors := p.Base
	if p.Remappable && ctx.Remap != nil {
		applyRemap(&colors, *ctx.Remap)
	}
	if ctx.Lighting != nil {
		applyLighting(&colors, *ctx.Lighting, ctx.Height)
	}

	out.Colors = colors
	return out
}

func applyRemap(colors *[256]color.RGBA, house color.RGBA) {
	for i, mult := range remapRamp {
		colors[RemapStart+i] = color.RGBA{
			R: uint8(uint32(house.R) * mult / 0xFF),
			G: uint8(uint32(house.G) * mult / 0xFF),
			B: uint8(uint32(house.B) * mult / 0xFF),
			A: 0xFF,
		}
	}
}

func applyLighting(colors *[256]color.RGBA, l Lighting, height int) {
	ambient := l.Ambient - l.Ground + l.Level*float64(height)

	for i := range colors {
		c := colors[i]
		colors[i] = color.RGBA{
			R: scale(c.R, ambient*l.Red),
			G: scale(c.G, ambient*l.Green),
			B: scale(c.B, ambient*l.Blue),
			A: c.A,
		}
	}
}

func scale(v uint8, mult float64) uint8 {
	return uint8(math.Max(0, math.Min(255, float64(v)*mult)))
}
