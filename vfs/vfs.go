package vfs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/mwantia/cncmaps/data"
	errs "github.com/mwantia/cncmaps/data/errors"
	"github.com/mwantia/cncmaps/format"
	"github.com/mwantia/cncmaps/log"
	"github.com/mwantia/cncmaps/source"
	"github.com/mwantia/cncmaps/source/archive"
	"github.com/mwantia/cncmaps/source/direct"
)

// VirtualFileSystem resolves logical names across an ordered list of
// sources. The first source added that contains a name wins.
type VirtualFileSystem struct {
	mu       sync.RWMutex
	log      *log.Logger
	registry *format.Registry
	sources  []*sourceEntry
	closed   bool

	cacheMu sync.RWMutex
	cache   map[cacheKey]any
	group   singleflight.Group
}

type sourceEntry struct {
	// Held for reading while an entry is read, for writing on release.
	mu       sync.RWMutex
	id       uuid.UUID
	src      source.Source
	method   data.CacheMethod
	released bool
}

func (e *sourceEntry) isReleased() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.released
}

type cacheKey struct {
	source uuid.UUID
	kind   string
	name   string
}

func (k cacheKey) String() string {
	return fmt.Sprintf("%s|%s|%s", k.source, k.kind, k.name)
}

// SourceInfo describes one source of the file system.
type SourceInfo struct {
	ID       string
	Name     string
	Method   data.CacheMethod
	Entries  int
	Released bool
}

func NewVirtualFileSystem(opts ...VirtualFileSystemOption) (*VirtualFileSystem, error) {
	options := newDefaultVirtualFileSystemOptions()
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}

	logger := options.Logger
	if logger == nil {
		var err error
		logger, err = log.NewLogger("vfs",
			log.WithLevel(options.LogLevel),
			log.WithFile(options.LogFile),
			log.WithTerminal(!options.NoTerminalLog),
		)
		if err != nil {
			return nil, err
		}
	}

	registry := options.Registry
	if registry == nil {
		registry = format.NewRegistry()
	}

	return &VirtualFileSystem{
		log:      logger,
		registry: registry,
		cache:    make(map[cacheKey]any),
	}, nil
}

// Add adds the source named by address. A protocol address is parsed, an
// absolute path or a name containing a separator is added from disk, and
// any other name is opened as an archive nested inside the sources added
// so far.
func (v *VirtualFileSystem) Add(ctx context.Context, address string, method data.CacheMethod) error {
	if source.IsAddress(address) {
		src, err := source.ParseAddress(address)
		if err != nil {
			return err
		}
		return v.AddSource(ctx, src, method)
	}

	if filepath.IsAbs(address) || strings.ContainsAny(address, `/\`) {
		return v.AddPath(ctx, address, method)
	}

	r, size, err := v.openReaderAt(ctx, address)
	if err != nil {
		return err
	}
	return v.AddSource(ctx, archive.NewArchiveSource(address, r, size), method)
}

// AddPath adds the directory or archive file stored at path.
func (v *VirtualFileSystem) AddPath(ctx context.Context, path string, method data.CacheMethod) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return data.NewNotFound(data.KindEntry, path)
		}
		return errs.SourceFailed(err, path)
	}

	if info.IsDir() {
		return v.AddSource(ctx, direct.NewDirectSource(path), method)
	}
	return v.AddSource(ctx, archive.NewArchiveFileSource(path), method)
}

// AddSource opens src and appends it to the source list.
func (v *VirtualFileSystem) AddSource(ctx context.Context, src source.Source, method data.CacheMethod) error {
	if err := src.Open(ctx); err != nil {
		return errs.SourceFailed(err, src.Name())
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		src.Close(ctx)
		return data.ErrClosed
	}

	v.sources = append(v.sources, &sourceEntry{
		id:     uuid.Must(uuid.NewV7()),
		src:    src,
		method: method,
	})

	v.log.Debug("Added source '%s' with %d entries (%s)", src.Name(), len(src.Entries()), method)
	return nil
}

// LoadArchives adds every name that can be found, skipping missing ones.
// It returns the number of sources added.
func (v *VirtualFileSystem) LoadArchives(ctx context.Context, names []string, method data.CacheMethod) (int, error) {
	var (
		added    int
		failures data.Errors
	)

	for _, name := range names {
		if err := v.Add(ctx, name, method); err != nil {
			if isNotExist(err) {
				v.log.Debug("Skipping archive '%s': not found", name)
				continue
			}
			v.log.Warn("Unable to add archive '%s': %v", name, err)
			failures.Add(err)
			continue
		}
		added++
	}

	return added, failures.Errors()
}

func isNotExist(err error) bool {
	return errors.Is(err, data.ErrNotExist)
}

// Contains reports whether any source holds name.
func (v *VirtualFileSystem) Contains(name string) bool {
	_, err := v.find(name)
	return err == nil
}

// Open returns the raw bytes of name. Raw reads are never cached.
func (v *VirtualFileSystem) Open(ctx context.Context, name string) ([]byte, error) {
	entry, err := v.find(name)
	if err != nil {
		return nil, err
	}

	if entry.isReleased() {
		defer v.release(ctx, entry)
	}
	return v.read(ctx, entry, name)
}

func (v *VirtualFileSystem) openReaderAt(ctx context.Context, name string) (io.ReaderAt, int64, error) {
	entry, err := v.find(name)
	if err != nil {
		return nil, 0, err
	}

	if as, ok := entry.src.(*archive.ArchiveSource); ok && entry.method != data.CacheAndClose {
		if a := as.Archive(); a != nil {
			r, err := a.Reader(name)
			if err != nil {
				return nil, 0, err
			}
			return r, r.Size(), nil
		}
	}

	buf, err := v.read(ctx, entry, name)
	if err != nil {
		return nil, 0, err
	}
	return bytes.NewReader(buf), int64(len(buf)), nil
}

func (v *VirtualFileSystem) find(name string) (*sourceEntry, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if v.closed {
		return nil, data.ErrClosed
	}

	for _, entry := range v.sources {
		if entry.src.Contains(name) {
			return entry, nil
		}
	}

	return nil, data.NewNotFound(data.KindEntry, name)
}

// read returns the bytes of name from the source of entry, reopening the
// source when it was released before.
func (v *VirtualFileSystem) read(ctx context.Context, entry *sourceEntry, name string) ([]byte, error) {
	for {
		entry.mu.RLock()
		if !entry.released {
			break
		}
		entry.mu.RUnlock()

		if err := v.reopen(ctx, entry); err != nil {
			return nil, err
		}
	}
	defer entry.mu.RUnlock()

	buf, err := entry.src.ReadEntry(ctx, name)
	if err != nil {
		if isNotExist(err) {
			return nil, err
		}
		return nil, errs.SourceRead(err, entry.src.Name(), name)
	}

	v.log.Debug("Read: '%s' from '%s' (%s)", name, entry.src.Name(), humanize.Bytes(uint64(len(buf))))
	return buf, nil
}

// reopen opens a released source again. It fails once the file system
// was shut down.
func (v *VirtualFileSystem) reopen(ctx context.Context, entry *sourceEntry) error {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if v.closed {
		return fmt.Errorf("%w: source '%s' released", data.ErrClosed, entry.src.Name())
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if !entry.released {
		return nil
	}
	if err := entry.src.Open(ctx); err != nil {
		return errs.SourceFailed(err, entry.src.Name())
	}
	entry.released = false

	v.log.Debug("Reopened source '%s'", entry.src.Name())
	return nil
}

// release closes the source of entry once every in-flight read completed.
func (v *VirtualFileSystem) release(ctx context.Context, entry *sourceEntry) {
	entry.mu.Lock()
	defer entry.mu.Unlock()

	if entry.released {
		return
	}
	entry.released = true

	if err := entry.src.Close(ctx); err != nil {
		v.log.Warn("Failed to release source '%s': %v", entry.src.Name(), err)
		return
	}
	v.log.Debug("Released source '%s'", entry.src.Name())
}

// Sources describes the sources in precedence order.
func (v *VirtualFileSystem) Sources() []SourceInfo {
	v.mu.RLock()
	defer v.mu.RUnlock()

	infos := make([]SourceInfo, 0, len(v.sources))
	for _, entry := range v.sources {
		infos = append(infos, SourceInfo{
			ID:       entry.id.String(),
			Name:     entry.src.Name(),
			Method:   entry.method,
			Entries:  len(entry.src.Entries()),
			Released: entry.isReleased(),
		})
	}
	return infos
}

// Shutdown closes every source that was not released yet, in reverse add
// order, and drops the cache.
func (v *VirtualFileSystem) Shutdown(ctx context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return data.ErrClosed
	}
	v.closed = true

	var failures data.Errors
	for i := len(v.sources) - 1; i >= 0; i-- {
		entry := v.sources[i]

		entry.mu.Lock()
		if !entry.released {
			entry.released = true
			if err := entry.src.Close(ctx); err != nil {
				failures.Add(errs.SourceClose(err, entry.src.Name()))
			}
		}
		entry.mu.Unlock()
	}

	v.cacheMu.Lock()
	v.cache = make(map[cacheKey]any)
	v.cacheMu.Unlock()

	return failures.Errors()
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
