// Package fixture builds binary asset payloads for tests.
package fixture

import (
	"bytes"
	"crypto/sha1"
	"encoding/binary"

	"github.com/mwantia/cncmaps/mix"
)

type MixEntry struct {
	Name string
	Data []byte
}

// Mix builds an unencrypted archive in the flagged header layout. With
// checksum set the body digest is appended.
func Mix(checksum bool, entries ...MixEntry) []byte {
	var buf bytes.Buffer

	flags := uint32(0)
	if checksum {
		flags |= 0x00010000
	}
	binary.Write(&buf, binary.LittleEndian, flags)

	body := writeIndex(&buf, entries)
	buf.Write(body)

	if checksum {
		sum := sha1.Sum(body)
		buf.Write(sum[:])
	}
	return buf.Bytes()
}

// OldMix builds an archive in the headerless layout used by early titles.
func OldMix(entries ...MixEntry) []byte {
	var buf bytes.Buffer
	body := writeIndex(&buf, entries)
	buf.Write(body)
	return buf.Bytes()
}

func writeIndex(buf *bytes.Buffer, entries []MixEntry) []byte {
	var body bytes.Buffer
	for _, e := range entries {
		body.Write(e.Data)
	}

	binary.Write(buf, binary.LittleEndian, uint16(len(entries)))
	binary.Write(buf, binary.LittleEndian, uint32(body.Len()))

	offset := uint32(0)
	for _, e := range entries {
		binary.Write(buf, binary.LittleEndian, mix.ID(e.Name))
		binary.Write(buf, binary.LittleEndian, offset)
		binary.Write(buf, binary.LittleEndian, uint32(len(e.Data)))
		offset += uint32(len(e.Data))
	}

	return body.Bytes()
}

// LocalDatabase builds a local mix database listing names.
func LocalDatabase(names ...string) []byte {
	var buf bytes.Buffer
	buf.WriteString("XCC by Olaf van der Spek\x1a\x04\x17\x27\x10\x19\x80\x00")

	var list bytes.Buffer
	for _, n := range names {
		list.WriteString(n)
		list.WriteByte(0)
	}

	binary.Write(&buf, binary.LittleEndian, uint32(52+list.Len()))
	binary.Write(&buf, binary.LittleEndian, uint32(0))
	binary.Write(&buf, binary.LittleEndian, uint32(0))
	binary.Write(&buf, binary.LittleEndian, uint32(5))
	binary.Write(&buf, binary.LittleEndian, uint32(len(names)))
	buf.Write(list.Bytes())

	return buf.Bytes()
}

// Palette builds a 768 byte palette file from 6-bit components.
func Palette(fn func(i int) (r, g, b uint8)) []byte {
	buf := make([]byte, 768)
	for i := range 256 {
		r, g, b := fn(i)
		buf[i*3], buf[i*3+1], buf[i*3+2] = r&0x3F, g&0x3F, b&0x3F
	}
	return buf
}

// GrayPalette maps index i to the 6-bit gray level i/4.
func GrayPalette() []byte {
	return Palette(func(i int) (uint8, uint8, uint8) {
		v := uint8(i >> 2)
		return v, v, v
	})
}

type ShpFrame struct {
	X, Y          int
	Width, Height int
	Pixels        []byte
	RLE           bool
}

// Shp builds a TS/RA2 sprite sheet holding frames.
func Shp(width, height int, frames ...ShpFrame) []byte {
	var header, body bytes.Buffer

	binary.Write(&header, binary.LittleEndian, uint16(0))
	binary.Write(&header, binary.LittleEndian, uint16(width))
	binary.Write(&header, binary.LittleEndian, uint16(height))
	binary.Write(&header, binary.LittleEndian, uint16(len(frames)))

	dataStart := 8 + 24*len(frames)
	for _, f := range frames {
		compression := uint8(1)
		payload := f.Pixels
		if f.RLE {
			compression = 3
			payload = encodeRLE(f.Width, f.Height, f.Pixels)
		}

		offset := uint32(0)
		if f.Width > 0 && f.Height > 0 {
			offset = uint32(dataStart + body.Len())
			body.Write(payload)
		}

		binary.Write(&header, binary.LittleEndian, uint16(f.X))
		binary.Write(&header, binary.LittleEndian, uint16(f.Y))
		binary.Write(&header, binary.LittleEndian, uint16(f.Width))
		binary.Write(&header, binary.LittleEndian, uint16(f.Height))
		header.WriteByte(compression)
		header.Write([]byte{0, 0, 0})
		binary.Write(&header, binary.LittleEndian, uint32(0))
		binary.Write(&header, binary.LittleEndian, uint32(0))
		binary.Write(&header, binary.LittleEndian, offset)
	}

	header.Write(body.Bytes())
	return header.Bytes()
}

func encodeRLE(width, height int, pixels []byte) []byte {
	var out bytes.Buffer
	for y := range height {
		var line bytes.Buffer
		row := pixels[y*width : (y+1)*width]
		for x := 0; x < len(row); {
			if row[x] != 0 {
				line.WriteByte(row[x])
				x++
				continue
			}
			run := 0
			for x < len(row) && row[x] == 0 && run < 255 {
				run++
				x++
			}
			line.WriteByte(0)
			line.WriteByte(byte(run))
		}
		binary.Write(&out, binary.LittleEndian, uint16(line.Len()+2))
		out.Write(line.Bytes())
	}
	return out.Bytes()
}

// Solid returns width*height pixels set to index.
func Solid(width, height int, index byte) []byte {
	return bytes.Repeat([]byte{index}, width*height)
}

// Pcx builds an 8-bit image. With planes set to 1 pixels are palette
// indices followed by pal (768 bytes); with 3 planes pixels are RGB triples.
func Pcx(width, height, planes int, pixels []byte, pal []byte) []byte {
	header := make([]byte, 128)
	header[0], header[1], header[2], header[3] = 0x0A, 5, 1, 8
	binary.LittleEndian.PutUint16(header[8:10], uint16(width-1))
	binary.LittleEndian.PutUint16(header[10:12], uint16(height-1))
	header[65] = byte(planes)
	binary.LittleEndian.PutUint16(header[66:68], uint16(width))

	var buf bytes.Buffer
	buf.Write(header)

	for y := range height {
		for p := range planes {
			for x := range width {
				v := pixels[(y*width+x)*planes+p]
				if v >= 0xC0 {
					buf.WriteByte(0xC1)
				}
				buf.WriteByte(v)
			}
		}
	}

	if planes == 1 {
		buf.WriteByte(0x0C)
		buf.Write(pal)
	}
	return buf.Bytes()
}
