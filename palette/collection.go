package palette

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/mwantia/cncmaps/config"
	"github.com/mwantia/cncmaps/data"
	"github.com/mwantia/cncmaps/format"
	"github.com/mwantia/cncmaps/log"
	"github.com/mwantia/cncmaps/vfs"
)

// Collection holds the palettes of the active theater. Palettes handed out
// are shared and must be treated as read-only.
type Collection struct {
	mu  sync.RWMutex
	log *log.Logger
	fs  *vfs.VirtualFileSystem
	ext string

	theater map[Kind]*Palette
	custom  map[string]*Palette
}

// LoadCollection resolves the theater palettes named by theater. Only the
// unit palette is required.
func LoadCollection(ctx context.Context, fs *vfs.VirtualFileSystem, theater *config.TheaterSettings, logger *log.Logger) (*Collection, error) {
	c := &Collection{
		log:     logger,
		fs:      fs,
		ext:     strings.TrimPrefix(theater.Extension, "."),
		theater: make(map[Kind]*Palette),
		custom:  make(map[string]*Palette),
	}

	names := []struct {
		kind Kind
		name string
	}{
		{Iso, theater.IsoPalette},
		{Unit, theater.UnitPalette},
		{Overlay, theater.OverlayPalette},
		{Anim, theater.AnimPalette},
	}

	for _, n := range names {
		kind, name := n.kind, n.name
		if name == "" {
			continue
		}

		pal, err := vfs.Resolve[*format.PalFile](ctx, fs, name)
		if err != nil {
			if kind != Unit && errors.Is(err, data.ErrNotExist) {
				logger.Warn("Missing %s palette '%s', using the unit palette", kind, name)
				continue
			}
			return nil, err
		}
		c.theater[kind] = Load(pal, name, kind == Unit)
		logger.Debug("Loaded %s palette '%s'", kind, name)
	}

	if _, ok := c.theater[Unit]; !ok {
		return nil, data.NewNotFound(data.KindPalette, "unit")
	}
	return c, nil
}

// NewCollection creates a collection from already loaded palettes.
func NewCollection(palettes map[Kind]*Palette) *Collection {
	c := &Collection{
		log:     log.Discard(),
		theater: make(map[Kind]*Palette),
		custom:  make(map[string]*Palette),
	}
	for kind, p := range palettes {
		c.theater[kind] = p
	}
	return c
}

// Get returns the theater palette of kind, falling back to the unit
// palette.
func (c *Collection) Get(kind Kind) *Palette {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if p, ok := c.theater[kind]; ok {
		return p
	}
	return c.theater[Unit]
}

// Custom returns the palette named name, trying the theater specific file
// "<name><ext>.pal" before "<name>.pal".
func (c *Collection) Custom(ctx context.Context, name string) (*Palette, error) {
	key := strings.ToLower(strings.TrimSuffix(name, ".pal"))

	c.mu.RLock()
	p, ok := c.custom[key]
	c.mu.RUnlock()
	if ok {
		return p, nil
	}

	if c.fs == nil {
		return nil, data.NewNotFound(data.KindPalette, name)
	}

	for _, file := range []string{key + c.ext + ".pal", key + ".pal"} {
		pal, err := vfs.Resolve[*format.PalFile](ctx, c.fs, file)
		if err != nil {
			if errors.Is(err, data.ErrNotExist) {
				continue
			}
			return nil, err
		}

		p = Load(pal, file, false)

		c.mu.Lock()
		if existing, ok := c.custom[key]; ok {
			p = existing
		} else {
			c.custom[key] = p
		}
		c.mu.Unlock()

		c.log.Debug("Loaded custom palette '%s'", file)
		return p, nil
	}

	return nil, data.NewNotFound(data.KindPalette, name)
}
