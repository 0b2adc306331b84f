package mix

import (
	"hash/crc32"
	"strings"
)

// ID returns the entry identifier used by TS/RA2 archives for name: the
// CRC-32 of the upper-cased name, padded to a multiple of four bytes.
func ID(name string) uint32 {
	buf := []byte(strings.ToUpper(name))

	l := len(buf)
	a := l >> 2
	if l&3 != 0 {
		buf = append(buf, byte(l-(a<<2)))
		pad := 3 - (l & 3)
		for range pad {
			buf = append(buf, buf[a<<2])
		}
	}

	return crc32.ChecksumIEEE(buf)
}
