package archive

import (
	"context"
	"io"
	"sync"

	"github.com/mwantia/cncmaps/data"
	"github.com/mwantia/cncmaps/mix"
)

// ArchiveSource serves the entries of one mix archive, either stored on
// disk or nested inside another source.
type ArchiveSource struct {
	mu sync.RWMutex

	name   string
	path   string
	reader io.ReaderAt
	size   int64
	opts   []mix.ArchiveOption

	archive *mix.Archive
	closed  bool
}

// NewArchiveFileSource creates a source for the archive stored at path.
func NewArchiveFileSource(path string, opts ...mix.ArchiveOption) *ArchiveSource {
	return &ArchiveSource{
		name: path,
		path: path,
		opts: opts,
	}
}

// NewArchiveSource creates a source for an archive backed by r.
func NewArchiveSource(name string, r io.ReaderAt, size int64, opts ...mix.ArchiveOption) *ArchiveSource {
	return &ArchiveSource{
		name:   name,
		reader: r,
		size:   size,
		opts:   opts,
	}
}

func (as *ArchiveSource) Name() string {
	return as.name
}

func (as *ArchiveSource) Open(ctx context.Context) error {
	as.mu.Lock()
	defer as.mu.Unlock()

	if as.archive != nil && !as.closed {
		return nil
	}

	var (
		archive *mix.Archive
		err     error
	)
	if as.path != "" {
		archive, err = mix.OpenFile(as.path, as.opts...)
	} else {
		archive, err = mix.Open(as.name, as.reader, as.size, as.opts...)
	}
	if err != nil {
		return err
	}

	as.archive = archive
	as.closed = false
	return nil
}

func (as *ArchiveSource) Close(ctx context.Context) error {
	as.mu.Lock()
	defer as.mu.Unlock()

	if as.archive == nil || as.closed {
		return nil
	}
	as.closed = true
	return as.archive.Close()
}

// Archive returns the opened archive, or nil before Open and after Close.
func (as *ArchiveSource) Archive() *mix.Archive {
	as.mu.RLock()
	defer as.mu.RUnlock()

	if as.closed {
		return nil
	}
	return as.archive
}

func (as *ArchiveSource) Contains(name string) bool {
	as.mu.RLock()
	defer as.mu.RUnlock()

	return as.archive != nil && as.archive.Contains(name)
}

func (as *ArchiveSource) Entries() []string {
	as.mu.RLock()
	defer as.mu.RUnlock()

	if as.archive == nil {
		return nil
	}
	return as.archive.Names()
}

func (as *ArchiveSource) ReadEntry(ctx context.Context, name string) ([]byte, error) {
	as.mu.RLock()
	defer as.mu.RUnlock()

	if as.archive == nil || as.closed {
		return nil, data.ErrClosed
	}
	return as.archive.Read(name)
}
