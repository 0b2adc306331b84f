// Package renderer renders single game objects from the assets of a game
// installation.
package renderer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/mwantia/cncmaps/composite"
	"github.com/mwantia/cncmaps/config"
	"github.com/mwantia/cncmaps/data"
	errs "github.com/mwantia/cncmaps/data/errors"
	"github.com/mwantia/cncmaps/drawable"
	"github.com/mwantia/cncmaps/log"
	"github.com/mwantia/cncmaps/object"
	"github.com/mwantia/cncmaps/palette"
	"github.com/mwantia/cncmaps/rules"
	"github.com/mwantia/cncmaps/surface"
	"github.com/mwantia/cncmaps/vfs"
)

// StaticRenderer renders objects one per surface, each placed on a tile at
// the center of the surface.
type StaticRenderer struct {
	mu     sync.Mutex
	cfg    *config.Config
	log    *log.Logger
	closed bool

	fs       *vfs.VirtualFileSystem
	rules    *rules.Rules
	palettes *palette.Collection
	resolver *drawable.Resolver
	engine   *composite.Engine
}

// New loads the file system, rules, palettes and drawables described by
// cfg.
func New(ctx context.Context, cfg *config.Config, opts ...RendererOption) (*StaticRenderer, error) {
	options := newDefaultRendererOptions()
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := options.Logger
	if logger == nil {
		var err error
		logger, err = log.NewLogger("cncmaps",
			log.WithLevelName(cfg.Log.Level),
			log.WithFile(cfg.Log.File),
			log.WithTerminal(!cfg.Log.NoTerminal),
			log.WithJSON(cfg.Log.JSON),
		)
		if err != nil {
			return nil, err
		}
	}

	r := &StaticRenderer{
		cfg:      cfg,
		log:      logger,
		fs:       options.FileSystem,
		resolver: drawable.NewResolver(),
	}

	if r.fs == nil {
		fs, err := vfs.NewVirtualFileSystem(vfs.WithLogger(logger.Named("vfs")))
		if err != nil {
			return nil, err
		}
		r.fs = fs
	}

	if err := r.init(ctx, options); err != nil {
		r.fs.Shutdown(ctx)
		return nil, err
	}
	return r, nil
}

func (r *StaticRenderer) init(ctx context.Context, options *RendererOptions) error {
	r.log.Info("Engine used for static renderer: %s", r.cfg.Engine)

	theater, err := r.cfg.Theater()
	if err != nil {
		return err
	}

	if err := r.initFileSystem(ctx, theater); err != nil {
		return err
	}

	if r.rules, err = rules.Load(ctx, r.fs, r.cfg.Engine, r.log.Named("rules")); err != nil {
		return err
	}

	if r.palettes, err = palette.LoadCollection(ctx, r.fs, theater, r.log.Named("palette")); err != nil {
		return err
	}

	builder, err := drawable.NewBuilder(r.fs, r.rules,
		drawable.WithLogger(r.log.Named("drawable")),
		drawable.WithTheater(theater.Extension, theater.NewTheaterChar),
	)
	if err != nil {
		return err
	}
	if _, err := builder.LoadAll(ctx, r.resolver); err != nil {
		return err
	}

	yellow, red := r.rules.Conditions()
	if r.cfg.ConditionYellow > 0 {
		yellow = r.cfg.ConditionYellow
	}
	if r.cfg.ConditionRed > 0 {
		red = r.cfg.ConditionRed
	}

	engineOpts := []composite.EngineOption{
		composite.WithLogger(r.log.Named("composite")),
		composite.WithHouseColors(r.rules),
	}
	if options.Lighting != nil {
		engineOpts = append(engineOpts, composite.WithLighting(*options.Lighting))
	}

	r.engine, err = composite.NewEngine(composite.Settings{
		TileWidth:       r.cfg.TileWidth,
		TileHeight:      r.cfg.TileHeight,
		ConditionYellow: yellow,
		ConditionRed:    red,
	}, r.palettes, r.resolver, engineOpts...)
	return err
}

// initFileSystem adds the configured sources, the mod directories or the
// mix directory, the extra mixes, the engine archives and finally the
// cached theater archives.
func (r *StaticRenderer) initFileSystem(ctx context.Context, theater *config.TheaterSettings) error {
	for _, src := range r.cfg.Sources {
		method, err := data.ParseCacheMethod(src.Cache)
		if err != nil {
			return err
		}
		if err := r.fs.Add(ctx, src.Address, method); err != nil {
			return err
		}
	}

	for _, dir := range r.cfg.Directories {
		if err := r.fs.AddPath(ctx, dir, data.Uncached); err != nil {
			return err
		}
	}

	if len(r.cfg.Directories) == 0 {
		if r.cfg.MixDirectory == "" {
			return fmt.Errorf("%w: neither mod directories nor a mix directory configured", data.ErrInvalid)
		}
		if err := r.fs.AddPath(ctx, r.cfg.MixDirectory, data.Uncached); err != nil {
			return err
		}
	}

	for _, mix := range r.archivePaths(r.cfg.ExtraMixes) {
		if err := r.fs.Add(ctx, mix, data.Uncached); err != nil {
			return err
		}
	}

	added, err := r.fs.LoadArchives(ctx, r.archivePaths(r.cfg.Engine.Archives()), data.Uncached)
	if err != nil {
		return err
	}
	r.log.Debug("Added %d engine archives", added)

	added, err = r.fs.LoadArchives(ctx, r.archivePaths(theater.Mixes), data.Cache)
	if err != nil {
		return err
	}
	r.log.Debug("Added %d theater archives", added)

	return nil
}

// archivePaths resolves names against the mix directory. Names not found
// there are kept and looked up inside the archives already added.
func (r *StaticRenderer) archivePaths(names []string) []string {
	paths := make([]string, 0, len(names))
	for _, name := range names {
		if r.cfg.MixDirectory != "" {
			path := filepath.Join(r.cfg.MixDirectory, name)
			if _, err := os.Stat(path); err == nil {
				if abs, err := filepath.Abs(path); err == nil {
					path = abs
				}
				paths = append(paths, path)
				continue
			}
		}
		paths = append(paths, name)
	}
	return paths
}

func (r *StaticRenderer) FileSystem() *vfs.VirtualFileSystem {
	return r.fs
}

func (r *StaticRenderer) Resolver() *drawable.Resolver {
	return r.resolver
}

func (r *StaticRenderer) Rules() *rules.Rules {
	return r.rules
}

func (r *StaticRenderer) Config() *config.Config {
	return r.cfg
}

// Render draws obj on a new surface without saving it.
func (r *StaticRenderer) Render(ctx context.Context, obj *object.GameObject) (*surface.Surface, error) {
	size := r.cfg.Output.Size

	s, err := surface.New(size, size, surface.RGB24)
	if err != nil {
		return nil, err
	}

	obj.Place(object.CenterTile(size, size, r.cfg.TileWidth, r.cfg.TileHeight))
	if err := r.engine.Draw(ctx, obj, s); err != nil {
		return nil, err
	}
	return s, nil
}

// RenderObject renders obj and saves it into the output directory as
// <NAME>.png and, when enabled, <NAME>.jpg.
func (r *StaticRenderer) RenderObject(ctx context.Context, obj *object.GameObject) (*surface.Surface, error) {
	s, err := r.Render(ctx, obj)
	if err != nil {
		return nil, err
	}

	out := r.cfg.Output
	rect := image.Rect(0, 0, out.Size, out.Size)
	base := filepath.Join(out.Directory, fileName(obj.Name))

	if out.SavePNG {
		if err := s.SaveToFile(base+surface.PNG.Extension(), surface.PNG, out.PNGQuality, rect); err != nil {
			return nil, err
		}
	}
	if out.SaveJPEG {
		if err := s.SaveToFile(base+surface.JPEG.Extension(), surface.JPEG, out.JPEGQuality, rect); err != nil {
			return nil, err
		}
	}

	r.log.Info("Rendered '%s'", obj.Name)
	return s, nil
}

// fileName replaces characters that are not valid in file names.
func fileName(name string) string {
	return strings.Map(func(c rune) rune {
		switch c {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		if c < 0x20 {
			return '_'
		}
		return c
	}, name)
}

// RenderAll renders every object. Failures are logged and collected; the
// remaining objects are still rendered.
func (r *StaticRenderer) RenderAll(ctx context.Context, objs []*object.GameObject) error {
	var (
		g        errgroup.Group
		failures data.Errors
	)
	g.SetLimit(max(1, r.cfg.Output.Parallelism))

	for _, obj := range objs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				failures.Add(err)
				return nil
			}
			if _, err := r.RenderObject(ctx, obj); err != nil {
				r.log.Error("Unable to render '%s': %v", obj.Name, err)
				failures.Add(err)
			}
			return nil
		})
	}

	g.Wait()
	return failures.Errors()
}

// Close shuts the file system down. Later calls return ErrClosed.
func (r *StaticRenderer) Close(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return data.ErrClosed
	}
	r.closed = true

	if err := r.fs.Shutdown(ctx); err != nil && !errors.Is(err, data.ErrClosed) {
		return errs.SourceClose(err, "vfs")
	}
	return nil
}

// DemoObjects returns the objects rendered when none are requested.
func DemoObjects() []*object.GameObject {
	objs := make([]*object.GameObject, 0, 4)
	for _, name := range []string{"LTNK", "BRUTE", "SHAD"} {
		objs = append(objs, object.NewUnit("none", name, 100, 0x80, false))
	}
	return append(objs, object.NewStructure("none", "GACNST", 100, 0x80))
}
