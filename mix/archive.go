package mix

import (
	"bytes"
	"crypto/sha1"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mwantia/cncmaps/data"
)

const (
	flagChecksum  uint32 = 0x00010000
	flagEncrypted uint32 = 0x00020000

	entrySize    = 12
	checksumSize = sha1.Size

	formatName = "mix archive"
)

// Entry describes one file packed into an archive.
type Entry struct {
	ID     uint32
	Name   string
	Offset uint32
	Size   uint32
}

// Archive is a read-only view of a TS/RA2 mix container. Entry data is read
// lazily from the backing reader and never cached.
type Archive struct {
	mu sync.RWMutex

	name   string
	reader io.ReaderAt
	closer io.Closer
	size   int64

	flags      uint32
	bodyOffset int64
	bodySize   uint32

	entries map[uint32]*Entry
	order   []uint32
	closed  bool
}

// OpenFile opens the archive stored at path. The returned archive owns the
// file handle and releases it on Close.
func OpenFile(path string, opts ...ArchiveOption) (*Archive, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, data.NewNotFound(data.KindEntry, path)
		}
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	a, err := Open(filepath.Base(path), f, info.Size(), opts...)
	if err != nil {
		f.Close()
		return nil, err
	}

	a.closer = f
	return a, nil
}

// Open parses the header of the archive backed by r.
func Open(name string, r io.ReaderAt, size int64, opts ...ArchiveOption) (*Archive, error) {
	options := newDefaultArchiveOptions()
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}

	a := &Archive{
		name:    name,
		reader:  r,
		size:    size,
		entries: make(map[uint32]*Entry),
	}

	if err := a.readHeader(); err != nil {
		return nil, err
	}

	if a.flags&flagChecksum != 0 && options.VerifyChecksum {
		if err := a.verifyChecksum(); err != nil {
			return nil, err
		}
	}

	a.assignNames(options.Names)
	return a, nil
}

func (a *Archive) formatError(format string, args ...any) error {
	return data.NewFormatError(formatName, a.name, fmt.Errorf(format, args...))
}

func (a *Archive) readAt(off int64, n int) ([]byte, error) {
	if off < 0 || n < 0 || off+int64(n) > a.size {
		return nil, a.formatError("read of %d bytes at %d exceeds archive size %d", n, off, a.size)
	}

	buf := make([]byte, n)
	if _, err := a.reader.ReadAt(buf, off); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return buf, nil
}

func (a *Archive) readHeader() error {
	head, err := a.readAt(0, 6)
	if err != nil {
		return a.formatError("truncated header")
	}

	var (
		count uint16
		table []byte
	)

	if binary.LittleEndian.Uint16(head[0:2]) != 0 {
		count, a.bodySize = readCount(head)
		if table, err = a.readAt(6, int(count)*entrySize); err != nil {
			return err
		}
		a.bodyOffset = 6 + int64(count)*entrySize
	} else {
		a.flags = binary.LittleEndian.Uint32(head[0:4])
		if unknown := a.flags &^ (flagChecksum | flagEncrypted); unknown != 0 {
			return a.formatError("unknown header flags %08X", unknown)
		}

		if a.flags&flagEncrypted != 0 {
			if count, table, err = a.readEncryptedHeader(); err != nil {
				return err
			}
		} else {
			sizes, err := a.readAt(4, 6)
			if err != nil {
				return a.formatError("truncated header")
			}
			count, a.bodySize = readCount(sizes)
			if table, err = a.readAt(10, int(count)*entrySize); err != nil {
				return err
			}
			a.bodyOffset = 10 + int64(count)*entrySize
		}
	}

	if a.bodyOffset+int64(a.bodySize) > a.size {
		return a.formatError("body of %d bytes exceeds archive size %d", a.bodySize, a.size)
	}

	return a.readTable(count, table)
}

func (a *Archive) readEncryptedHeader() (uint16, []byte, error) {
	source, err := a.readAt(4, keySourceSize)
	if err != nil {
		return 0, nil, a.formatError("truncated key source")
	}

	cipher, err := newHeaderCipher(source)
	if err != nil {
		return 0, nil, data.NewFormatError(formatName, a.name, err)
	}

	const indexOffset = 4 + keySourceSize

	first, err := a.readAt(indexOffset, 8)
	if err != nil {
		return 0, nil, a.formatError("truncated encrypted header")
	}
	cipher.decrypt(first)

	var count uint16
	count, a.bodySize = readCount(first)

	blocks := encryptedIndexBlocks(count)
	index, err := a.readAt(indexOffset, blocks*8)
	if err != nil {
		return 0, nil, err
	}
	cipher.decrypt(index)

	a.bodyOffset = indexOffset + int64(blocks)*8
	return count, index[6 : 6+int(count)*entrySize], nil
}

func (a *Archive) readTable(count uint16, table []byte) error {
	a.order = make([]uint32, 0, count)

	for i := range int(count) {
		raw := table[i*entrySize : (i+1)*entrySize]
		e := &Entry{
			ID:     binary.LittleEndian.Uint32(raw[0:4]),
			Offset: binary.LittleEndian.Uint32(raw[4:8]),
			Size:   binary.LittleEndian.Uint32(raw[8:12]),
		}

		if uint64(e.Offset)+uint64(e.Size) > uint64(a.bodySize) {
			return a.formatError("entry %08X at %d+%d exceeds body size %d", e.ID, e.Offset, e.Size, a.bodySize)
		}
		if _, exists := a.entries[e.ID]; exists {
			return a.formatError("duplicate entry %08X", e.ID)
		}

		a.entries[e.ID] = e
		a.order = append(a.order, e.ID)
	}

	return nil
}

func (a *Archive) verifyChecksum() error {
	digest, err := a.readAt(a.bodyOffset+int64(a.bodySize), checksumSize)
	if err != nil {
		return a.formatError("missing body checksum")
	}

	h := sha1.New()
	if _, err := io.Copy(h, io.NewSectionReader(a.reader, a.bodyOffset, int64(a.bodySize))); err != nil {
		return err
	}

	if !bytes.Equal(h.Sum(nil), digest) {
		return data.NewFormatError(formatName, a.name, data.ErrChecksum)
	}
	return nil
}

func (a *Archive) assignNames(names []string) {
	if e, ok := a.entries[ID(LocalDatabaseName)]; ok {
		e.Name = LocalDatabaseName
		if buf, err := a.readEntry(e); err == nil {
			names = append(names, parseLocalDatabase(buf)...)
		}
	}

	for _, name := range names {
		if e, ok := a.entries[ID(name)]; ok && e.Name == "" {
			e.Name = name
		}
	}
}

func (a *Archive) readEntry(e *Entry) ([]byte, error) {
	buf := make([]byte, e.Size)
	if _, err := io.ReadFull(a.section(e), buf); err != nil {
		return nil, data.NewFormatError(formatName, a.name, fmt.Errorf("entry %08X: %w", e.ID, err))
	}
	return buf, nil
}

func (a *Archive) section(e *Entry) *io.SectionReader {
	return io.NewSectionReader(a.reader, a.bodyOffset+int64(e.Offset), int64(e.Size))
}

// Name returns the file name the archive was opened with.
func (a *Archive) Name() string {
	return a.name
}

func (a *Archive) Encrypted() bool {
	return a.flags&flagEncrypted != 0
}

func (a *Archive) Len() int {
	return len(a.order)
}

// Contains reports whether the archive holds an entry for name. Names are
// matched case-insensitively.
func (a *Archive) Contains(name string) bool {
	_, ok := a.entries[ID(name)]
	return ok
}

// Read returns the bytes of the named entry.
func (a *Archive) Read(name string) ([]byte, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.closed {
		return nil, data.ErrClosed
	}

	e, ok := a.entries[ID(name)]
	if !ok {
		return nil, data.NewNotFound(data.KindEntry, name)
	}

	return a.readEntry(e)
}

// Reader returns a reader over the named entry without copying it.
func (a *Archive) Reader(name string) (*io.SectionReader, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.closed {
		return nil, data.ErrClosed
	}

	e, ok := a.entries[ID(name)]
	if !ok {
		return nil, data.NewNotFound(data.KindEntry, name)
	}

	return a.section(e), nil
}

// Entries returns the entry table in archive order.
func (a *Archive) Entries() []Entry {
	result := make([]Entry, 0, len(a.order))
	for _, id := range a.order {
		result = append(result, *a.entries[id])
	}
	return result
}

// Names returns the lower-cased names of the entries whose name is known.
func (a *Archive) Names() []string {
	names := make([]string, 0, len(a.order))
	for _, id := range a.order {
		if name := a.entries[id].Name; name != "" {
			names = append(names, strings.ToLower(name))
		}
	}
	return names
}

func (a *Archive) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil
	}
	a.closed = true

	if a.closer != nil {
		return a.closer.Close()
	}
	return nil
}
