package format

import (
	"fmt"
	"image/color"

	"github.com/mwantia/cncmaps/data"
)

const PalSize = 256 * 3

// PalFile is a 256 entry color table with components expanded from the
// 6-bit values stored on disk.
type PalFile struct {
	Name   string
	Colors [256]color.RGBA
}

func DecodePal(name string, buf []byte) (*PalFile, error) {
	if len(buf) != PalSize {
		return nil, data.NewFormatError("palette", name, fmt.Errorf("expected %d bytes, got %d", PalSize, len(buf)))
	}

	pal := &PalFile{Name: name}
	for i := range 256 {
		r, g, b := buf[i*3], buf[i*3+1], buf[i*3+2]
		if r > 0x3F || g > 0x3F || b > 0x3F {
			return nil, data.NewFormatError("palette", name, fmt.Errorf("entry %d exceeds 6-bit range", i))
		}
		pal.Colors[i] = color.RGBA{R: r << 2, G: g << 2, B: b << 2, A: 0xFF}
	}

	return pal, nil
}
