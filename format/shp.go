package format

import (
	"encoding/binary"
	"fmt"

	"github.com/mwantia/cncmaps/data"
)

const (
	shpHeaderSize      = 8
	shpFrameHeaderSize = 24

	shpCompressedRLE = 0x02
)

// ShpFrame is one decoded frame. Pixels holds Width*Height palette indices
// placed at (X, Y) inside the sheet; index 0 is transparent.
type ShpFrame struct {
	X, Y          int
	Width, Height int
	Compression   uint8
	Pixels        []byte
}

func (f *ShpFrame) Empty() bool {
	return f == nil || f.Width == 0 || f.Height == 0
}

// At returns the palette index at frame-local (x, y), or 0 outside the
// frame.
func (f *ShpFrame) At(x, y int) byte {
	if f.Empty() || x < 0 || y < 0 || x >= f.Width || y >= f.Height {
		return 0
	}
	return f.Pixels[y*f.Width+x]
}

// ShpFile is a TS/RA2 indexed sprite sheet.
type ShpFile struct {
	Name          string
	Width, Height int
	Frames        []*ShpFrame
}

func (s *ShpFile) Len() int {
	return len(s.Frames)
}

// Frame returns frame i, or nil when i is out of range.
func (s *ShpFile) Frame(i int) *ShpFrame {
	if i < 0 || i >= len(s.Frames) {
		return nil
	}
	return s.Frames[i]
}

func DecodeShp(name string, buf []byte) (*ShpFile, error) {
	fail := func(format string, args ...any) error {
		return data.NewFormatError("shp", name, fmt.Errorf(format, args...))
	}

	if len(buf) < shpHeaderSize {
		return nil, fail("truncated header")
	}
	if binary.LittleEndian.Uint16(buf[0:2]) != 0 {
		return nil, fail("unsupported sheet type")
	}

	shp := &ShpFile{
		Name:   name,
		Width:  int(binary.LittleEndian.Uint16(buf[2:4])),
		Height: int(binary.LittleEndian.Uint16(buf[4:6])),
	}
	count := int(binary.LittleEndian.Uint16(buf[6:8]))

	if len(buf) < shpHeaderSize+count*shpFrameHeaderSize {
		return nil, fail("truncated frame table for %d frames", count)
	}

	shp.Frames = make([]*ShpFrame, count)
	for i := range count {
		h := buf[shpHeaderSize+i*shpFrameHeaderSize:]
		frame := &ShpFrame{
			X:           int(binary.LittleEndian.Uint16(h[0:2])),
			Y:           int(binary.LittleEndian.Uint16(h[2:4])),
			Width:       int(binary.LittleEndian.Uint16(h[4:6])),
			Height:      int(binary.LittleEndian.Uint16(h[6:8])),
			Compression: h[8],
		}
		offset := int(binary.LittleEndian.Uint32(h[20:24]))

		if frame.Empty() || offset == 0 {
			shp.Frames[i] = &ShpFrame{}
			continue
		}
		if frame.X+frame.Width > shp.Width || frame.Y+frame.Height > shp.Height {
			return nil, fail("frame %d exceeds sheet bounds", i)
		}

		var err error
		if frame.Compression&shpCompressedRLE != 0 {
			frame.Pixels, err = decodeShpRLE(buf, offset, frame.Width, frame.Height)
		} else {
			frame.Pixels, err = decodeShpRaw(buf, offset, frame.Width, frame.Height)
		}
		if err != nil {
			return nil, fail("frame %d: %v", i, err)
		}

		shp.Frames[i] = frame
	}

	return shp, nil
}

func decodeShpRaw(buf []byte, offset, width, height int) ([]byte, error) {
	size := width * height
	if offset < 0 || offset+size > len(buf) {
		return nil, fmt.Errorf("pixel data at %d exceeds payload", offset)
	}

	pixels := make([]byte, size)
	copy(pixels, buf[offset:offset+size])
	return pixels, nil
}

// decodeShpRLE expands scanlines prefixed by their byte length where a zero
// byte is followed by a count of transparent pixels.
func decodeShpRLE(buf []byte, offset, width, height int) ([]byte, error) {
	if offset < 0 || offset+2*height > len(buf) {
		return nil, fmt.Errorf("scanlines of %d rows exceed payload", height)
	}

	pixels := make([]byte, width*height)

	pos := offset
	for y := range height {
		if pos < 0 || pos+2 > len(buf) {
			return nil, fmt.Errorf("scanline %d header exceeds payload", y)
		}
		length := int(binary.LittleEndian.Uint16(buf[pos : pos+2]))
		if length < 2 || pos+length > len(buf) {
			return nil, fmt.Errorf("scanline %d length %d invalid", y, length)
		}

		line := buf[pos+2 : pos+length]
		row := pixels[y*width : (y+1)*width]

		x := 0
		for i := 0; i < len(line); i++ {
			if line[i] == 0 {
				i++
				if i >= len(line) {
					return nil, fmt.Errorf("scanline %d ends inside a transparent run", y)
				}
				x += int(line[i])
			} else {
				if x >= width {
					return nil, fmt.Errorf("scanline %d overflows frame width", y)
				}
				row[x] = line[i]
				x++
			}
		}
		if x > width {
			return nil, fmt.Errorf("scanline %d overflows frame width", y)
		}

		pos += length
	}

	return pixels, nil
}
