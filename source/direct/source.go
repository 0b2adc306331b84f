package direct

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tidwall/btree"

	"github.com/mwantia/cncmaps/data"
)

// DirectSource serves the regular files of one directory. The directory is
// indexed when the source is opened.
type DirectSource struct {
	mu   sync.RWMutex
	path string

	// lower-cased name -> file name on disk
	files *btree.Map[string, string]
}

func NewDirectSource(path string) *DirectSource {
	return &DirectSource{
		path:  filepath.Clean(path),
		files: btree.NewMap[string, string](0),
	}
}

func (ds *DirectSource) Name() string {
	return ds.path
}

func (ds *DirectSource) Open(ctx context.Context) error {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	info, err := os.Stat(ds.path)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return data.ErrPermission
		}
		return data.ErrSourceFailed
	}

	if !info.IsDir() {
		return data.ErrNotDirectory
	}

	entries, err := os.ReadDir(ds.path)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if entry.Type().IsRegular() {
			ds.files.Set(strings.ToLower(entry.Name()), entry.Name())
		}
	}

	return nil
}

// Close is a no-op, the directory persists independently.
func (ds *DirectSource) Close(ctx context.Context) error {
	return nil
}

func (ds *DirectSource) Contains(name string) bool {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	_, ok := ds.files.Get(strings.ToLower(name))
	return ok
}

func (ds *DirectSource) Entries() []string {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	return ds.files.Keys()
}

func (ds *DirectSource) ReadEntry(ctx context.Context, name string) ([]byte, error) {
	ds.mu.RLock()
	file, ok := ds.files.Get(strings.ToLower(name))
	ds.mu.RUnlock()

	if !ok {
		return nil, data.NewNotFound(data.KindEntry, name)
	}

	content, err := os.ReadFile(filepath.Join(ds.path, file))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, data.NewNotFound(data.KindEntry, name)
		}
		if errors.Is(err, fs.ErrPermission) {
			return nil, data.ErrPermission
		}
		return nil, err
	}

	return content, nil
}
