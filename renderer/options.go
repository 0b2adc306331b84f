package renderer

import (
	"github.com/mwantia/cncmaps/log"
	"github.com/mwantia/cncmaps/palette"
	"github.com/mwantia/cncmaps/vfs"
)

type RendererOption func(*RendererOptions) error

type RendererOptions struct {
	Logger *log.Logger
	// File system used instead of a new one. Configured sources are added
	// after the ones it already holds.
	FileSystem *vfs.VirtualFileSystem
	Lighting   *palette.Lighting
}

func newDefaultRendererOptions() *RendererOptions {
	return &RendererOptions{}
}

func WithLogger(logger *log.Logger) RendererOption {
	return func(o *RendererOptions) error {
		o.Logger = logger
		return nil
	}
}

func WithFileSystem(fs *vfs.VirtualFileSystem) RendererOption {
	return func(o *RendererOptions) error {
		o.FileSystem = fs
		return nil
	}
}

func WithLighting(l palette.Lighting) RendererOption {
	return func(o *RendererOptions) error {
		o.Lighting = &l
		return nil
	}
}
