// Package surface implements the pixel buffer objects are drawn onto.
package surface

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"

	"github.com/mwantia/cncmaps/data"
)

// PixelFormat is the layout a surface is exported in.
type PixelFormat int

const (
	// RGB24 surfaces start opaque black and are exported without alpha.
	RGB24 PixelFormat = iota
	// RGBA32 surfaces start fully transparent.
	RGBA32
)

func (f PixelFormat) String() string {
	switch f {
	case RGB24:
		return "rgb24"
	case RGBA32:
		return "rgba32"
	default:
		return "unknown"
	}
}

// Surface is a mutable pixel buffer owned by one render.
type Surface struct {
	img    *image.RGBA
	format PixelFormat
}

func New(width, height int, format PixelFormat) (*Surface, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: surface size %dx%d", data.ErrInvalid, width, height)
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	if format == RGB24 {
		draw.Draw(img, img.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)
	}
	return &Surface{img: img, format: format}, nil
}

func (s *Surface) Bounds() image.Rectangle {
	return s.img.Bounds()
}

func (s *Surface) Format() PixelFormat {
	return s.format
}

func (s *Surface) At(x, y int) color.RGBA {
	return s.img.RGBAAt(x, y)
}

// Blit composites src with its top-left corner at at. Writes are clipped to
// clip and to the surface; an empty clip means the whole surface.
func (s *Surface) Blit(src image.Image, at image.Point, clip image.Rectangle) {
	r, sp, ok := s.target(src.Bounds(), at, clip)
	if !ok {
		return
	}
	draw.Draw(s.img, r, src, sp, draw.Over)
}

// Shade darkens the surface by factor wherever mask is not transparent.
func (s *Surface) Shade(mask image.Image, at image.Point, clip image.Rectangle, factor float64) {
	r, sp, ok := s.target(mask.Bounds(), at, clip)
	if !ok {
		return
	}
	factor = max(0, min(1, factor))

	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if _, _, _, a := mask.At(sp.X+x-r.Min.X, sp.Y+y-r.Min.Y).RGBA(); a == 0 {
				continue
			}

			c := s.img.RGBAAt(x, y)
			s.img.SetRGBA(x, y, color.RGBA{
				R: uint8(float64(c.R) * factor),
				G: uint8(float64(c.G) * factor),
				B: uint8(float64(c.B) * factor),
				A: c.A,
			})
		}
	}
}

// target returns the destination rectangle and the matching source point
// of a blit of bounds placed at at.
func (s *Surface) target(bounds image.Rectangle, at image.Point, clip image.Rectangle) (image.Rectangle, image.Point, bool) {
	if clip.Empty() {
		clip = s.img.Bounds()
	}

	r := bounds.Sub(bounds.Min).Add(at)
	r = r.Intersect(clip).Intersect(s.img.Bounds())
	if r.Empty() {
		return image.Rectangle{}, image.Point{}, false
	}
	return r, bounds.Min.Add(r.Min.Sub(at)), true
}

// ExportRegion returns a copy of rect clipped to the surface. Surfaces in
// RGB24 format are returned fully opaque.
func (s *Surface) ExportRegion(rect image.Rectangle) *image.RGBA {
	if rect.Empty() {
		rect = s.img.Bounds()
	}
	rect = rect.Intersect(s.img.Bounds())

	out := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(out, out.Bounds(), s.img, rect.Min, draw.Src)

	if s.format == RGB24 {
		for i := 3; i < len(out.Pix); i += 4 {
			out.Pix[i] = 0xFF
		}
	}
	return out
}
