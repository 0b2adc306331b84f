package source

import "context"

// Source is one layer of the virtual file system: a loose directory, an
// opened archive or a remote asset store. Entry names are matched
// case-insensitively.
type Source interface {
	// Returns the identifier name of this source, usually its path.
	Name() string

	// Open is part of the lifecycle behaviour and gets called when the
	// source is added to a file system, and again when a released source
	// has to serve an entry that is not cached.
	Open(ctx context.Context) error
	// Close is part of the lifecycle behaviour and gets called once for
	// every successful Open.
	Close(ctx context.Context) error

	// Contains and Entries keep answering from the entry index after Close.
	Contains(name string) bool
	Entries() []string
	ReadEntry(ctx context.Context, name string) ([]byte, error)
}
