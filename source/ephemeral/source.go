package ephemeral

import (
	"context"
	"strings"
	"sync"

	"github.com/tidwall/btree"

	"github.com/mwantia/cncmaps/data"
)

// EphemeralSource keeps entries in memory. It is used for generated assets
// and as a fixture source.
type EphemeralSource struct {
	mu   sync.RWMutex
	name string

	files  *btree.Map[string, []byte]
	closed bool
}

func NewEphemeralSource(name string) *EphemeralSource {
	if name == "" {
		name = ":ephemeral:"
	}

	return &EphemeralSource{
		name:  name,
		files: btree.NewMap[string, []byte](0),
	}
}

func (es *EphemeralSource) Name() string {
	return es.name
}

func (es *EphemeralSource) Open(ctx context.Context) error {
	es.mu.Lock()
	defer es.mu.Unlock()

	es.closed = false
	return nil
}

func (es *EphemeralSource) Close(ctx context.Context) error {
	es.mu.Lock()
	defer es.mu.Unlock()

	es.closed = true
	return nil
}

// Put stores content under name, replacing an existing entry.
func (es *EphemeralSource) Put(name string, content []byte) {
	es.mu.Lock()
	defer es.mu.Unlock()

	es.files.Set(strings.ToLower(name), content)
}

func (es *EphemeralSource) Contains(name string) bool {
	es.mu.RLock()
	defer es.mu.RUnlock()

	_, ok := es.files.Get(strings.ToLower(name))
	return ok
}

func (es *EphemeralSource) Entries() []string {
	es.mu.RLock()
	defer es.mu.RUnlock()

	return es.files.Keys()
}

func (es *EphemeralSource) ReadEntry(ctx context.Context, name string) ([]byte, error) {
	es.mu.RLock()
	defer es.mu.RUnlock()

	if es.closed {
		return nil, data.ErrClosed
	}

	content, ok := es.files.Get(strings.ToLower(name))
	if !ok {
		return nil, data.NewNotFound(data.KindEntry, name)
	}

	return content, nil
}
