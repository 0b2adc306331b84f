package format

import (
	"encoding/binary"
	"fmt"
	"image"
	"image/color"

	"github.com/mwantia/cncmaps/data"
)

const (
	pcxHeaderSize    = 128
	pcxManufacturer  = 0x0A
	pcxPaletteMarker = 0x0C
)

// PcxFile is a decoded raw pixel image. Image is an *image.Paletted for
// 8-bit single plane files and an *image.RGBA for 24-bit files.
type PcxFile struct {
	Name  string
	Image image.Image
}

func (p *PcxFile) Bounds() image.Rectangle {
	return p.Image.Bounds()
}

func DecodePcx(name string, buf []byte) (*PcxFile, error) {
	fail := func(format string, args ...any) error {
		return data.NewFormatError("pcx", name, fmt.Errorf(format, args...))
	}

	if len(buf) < pcxHeaderSize {
		return nil, fail("truncated header")
	}
	if buf[0] != pcxManufacturer || buf[2] != 1 {
		return nil, fail("not an rle encoded pcx image")
	}

	bpp := int(buf[3])
	xmin := int(binary.LittleEndian.Uint16(buf[4:6]))
	ymin := int(binary.LittleEndian.Uint16(buf[6:8]))
	xmax := int(binary.LittleEndian.Uint16(buf[8:10]))
	ymax := int(binary.LittleEndian.Uint16(buf[10:12]))
	planes := int(buf[65])
	bytesPerLine := int(binary.LittleEndian.Uint16(buf[66:68]))

	width, height := xmax-xmin+1, ymax-ymin+1
	if width <= 0 || height <= 0 {
		return nil, fail("invalid dimensions %dx%d", width, height)
	}
	if bpp != 8 || (planes != 1 && planes != 3) {
		return nil, fail("unsupported layout %d bpp with %d planes", bpp, planes)
	}
	if bytesPerLine < width {
		return nil, fail("scanline of %d bytes shorter than width %d", bytesPerLine, width)
	}

	end := len(buf)
	if planes == 1 {
		end -= PalSize + 1
		if end < pcxHeaderSize || buf[end] != pcxPaletteMarker {
			return nil, fail("missing trailing palette")
		}
	}

	// A run of two bytes expands to at most 63.
	size := height * planes * bytesPerLine
	if size > 64*(end-pcxHeaderSize) {
		return nil, fail("%d bytes of pixel data cannot expand to %d", end-pcxHeaderSize, size)
	}

	scan, err := decodePcxRLE(buf[pcxHeaderSize:end], size)
	if err != nil {
		return nil, fail("%v", err)
	}

	rect := image.Rect(0, 0, width, height)
	if planes == 1 {
		pal := make(color.Palette, 256)
		p := buf[end+1:]
		for i := range 256 {
			pal[i] = color.RGBA{R: p[i*3], G: p[i*3+1], B: p[i*3+2], A: 0xFF}
		}

		img := image.NewPaletted(rect, pal)
		for y := range height {
			copy(img.Pix[y*img.Stride:y*img.Stride+width], scan[y*bytesPerLine:])
		}
		return &PcxFile{Name: name, Image: img}, nil
	}

	img := image.NewRGBA(rect)
	for y := range height {
		line := scan[y*3*bytesPerLine:]
		for x := range width {
			i := y*img.Stride + x*4
			img.Pix[i] = line[x]
			img.Pix[i+1] = line[bytesPerLine+x]
			img.Pix[i+2] = line[2*bytesPerLine+x]
			img.Pix[i+3] = 0xFF
		}
	}
	return &PcxFile{Name: name, Image: img}, nil
}

func decodePcxRLE(src []byte, size int) ([]byte, error) {
	out := make([]byte, 0, size)
	for i := 0; len(out) < size; i++ {
		if i >= len(src) {
			return nil, fmt.Errorf("pixel data ends after %d of %d bytes", len(out), size)
		}

		c := src[i]
		if c&0xC0 != 0xC0 {
			out = append(out, c)
			continue
		}

		i++
		if i >= len(src) {
			return nil, fmt.Errorf("run at %d misses its value", i-1)
		}
		for n := int(c & 0x3F); n > 0 && len(out) < size; n-- {
			out = append(out, src[i])
		}
	}
	return out, nil
}
