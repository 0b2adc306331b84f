package mix

import (
	"bytes"
	"encoding/binary"
)

const (
	// LocalDatabaseName is the entry holding the names of all other entries.
	LocalDatabaseName = "local mix database.dat"

	lmdHeaderSize = 52
)

// parseLocalDatabase extracts the names listed in a local mix database.
// Malformed databases yield no names.
func parseLocalDatabase(buf []byte) []string {
	if len(buf) < lmdHeaderSize {
		return nil
	}

	count := int(binary.LittleEndian.Uint32(buf[48:52]))
	body := buf[lmdHeaderSize:]

	// Every name takes at least two bytes including its terminator.
	names := make([]string, 0, min(count, len(body)/2))
	for len(names) < count && len(body) > 0 {
		end := bytes.IndexByte(body, 0)
		if end < 0 {
			break
		}
		if end > 0 {
			names = append(names, string(body[:end]))
		}
		body = body[end+1:]
	}

	return names
}
