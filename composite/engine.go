// Package composite draws game objects onto surfaces.
package composite

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"slices"

	"github.com/mwantia/cncmaps/data"
	errs "github.com/mwantia/cncmaps/data/errors"
	"github.com/mwantia/cncmaps/drawable"
	"github.com/mwantia/cncmaps/format"
	"github.com/mwantia/cncmaps/log"
	"github.com/mwantia/cncmaps/object"
	"github.com/mwantia/cncmaps/palette"
	"github.com/mwantia/cncmaps/surface"
)

// Settings are the scene parameters the engine places objects with.
type Settings struct {
	TileWidth  int
	TileHeight int
	// Health fractions of the damaged and near dead frames.
	ConditionYellow float64
	ConditionRed    float64
}

// Engine composites objects. Drawables and palettes are only read, so one
// engine may draw onto several surfaces concurrently.
type Engine struct {
	settings Settings
	palettes *palette.Collection
	resolver *drawable.Resolver
	log      *log.Logger

	lighting        *palette.Lighting
	houses          HouseColors
	shadowIntensity float64
	bridgeHeight    int
}

func NewEngine(settings Settings, palettes *palette.Collection, resolver *drawable.Resolver, opts ...EngineOption) (*Engine, error) {
	options := newDefaultEngineOptions()
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}

	if settings.TileWidth <= 0 || settings.TileHeight <= 0 {
		return nil, fmt.Errorf("%w: tile size %dx%d", data.ErrInvalid, settings.TileWidth, settings.TileHeight)
	}

	return &Engine{
		settings:        settings,
		palettes:        palettes,
		resolver:        resolver,
		log:             options.Logger,
		lighting:        options.Lighting,
		houses:          options.Houses,
		shadowIntensity: options.ShadowIntensity,
		bridgeHeight:    options.BridgeHeight,
	}, nil
}

// TileOrigin returns the screen position of the top-left corner of t.
func (e *Engine) TileOrigin(t object.Tile) image.Point {
	return image.Pt(t.Dx*e.settings.TileWidth/2, (t.Dy-t.Z)*e.settings.TileHeight/2)
}

// Anchor returns the screen position the center of the object's sheet is
// placed at.
func (e *Engine) Anchor(obj *object.GameObject, d *drawable.Drawable) image.Point {
	p := e.TileOrigin(obj.Tile)
	p = p.Add(image.Pt(e.settings.TileWidth/2, e.settings.TileHeight/2))
	if obj.OnBridge {
		p.Y -= e.bridgeHeight * e.settings.TileHeight / 2
	}
	return p.Add(d.Offset)
}

// Draw composites obj onto s: the shadow first, then the main frame, then
// the drawables of installed upgrades.
func (e *Engine) Draw(ctx context.Context, obj *object.GameObject, s *surface.Surface) error {
	d, err := e.drawableOf(obj)
	if err != nil {
		return errs.RenderObject(err, obj.Name)
	}

	pal, err := e.paletteOf(ctx, obj, d)
	if err != nil {
		return errs.RenderObject(err, obj.Name)
	}

	e.drawFrames(obj, d, pal, s)

	for _, name := range obj.InstalledUpgrades() {
		upgrade, err := e.resolver.Drawable(name)
		if err != nil {
			e.log.Warn("Skipping upgrade '%s' of '%s': %v", name, obj.Name, err)
			continue
		}

		upal, err := e.paletteOf(ctx, obj, upgrade)
		if err != nil {
			e.log.Warn("Skipping upgrade '%s' of '%s': %v", name, obj.Name, err)
			continue
		}
		e.drawFrames(obj, upgrade, upal, s)
	}

	return nil
}

func (e *Engine) drawFrames(obj *object.GameObject, d *drawable.Drawable, pal *palette.Palette, s *surface.Surface) {
	state := obj.State(d, e.settings.ConditionYellow, e.settings.ConditionRed)
	if err := d.Check(state); err != nil {
		e.log.Debug("Clamping: %v", err)
	}

	main, shadow := d.Frames(state)
	if main == nil {
		e.log.Debug("Drawable '%s' has no frames", d.Name)
		return
	}

	origin := e.Anchor(obj, d).Sub(d.Size().Div(2))
	bounds := s.Bounds()

	if !shadow.Empty() {
		s.Shade(frameImage(shadow, shadowPalette), origin.Add(image.Pt(shadow.X, shadow.Y)), bounds, e.shadowIntensity)
	}
	if !main.Empty() {
		s.Blit(frameImage(main, pal.ColorPalette()), origin.Add(image.Pt(main.X, main.Y)), bounds)
	}

	e.log.Debug("Drew '%s' frame %d at %v", d.Name, d.Index(state), origin)
}

// shadowPalette marks every non-zero index as covered.
var shadowPalette = func() color.Palette {
	p := make(color.Palette, 256)
	p[0] = color.RGBA{}
	for i := 1; i < len(p); i++ {
		p[i] = color.RGBA{A: 0xFF}
	}
	return p
}()

func frameImage(f *format.ShpFrame, pal color.Palette) *image.Paletted {
	return &image.Paletted{
		Pix:     f.Pixels,
		Stride:  f.Width,
		Rect:    image.Rect(0, 0, f.Width, f.Height),
		Palette: pal,
	}
}

func (e *Engine) drawableOf(obj *object.GameObject) (*drawable.Drawable, error) {
	if obj.Drawable != nil {
		return obj.Drawable, nil
	}
	if e.resolver == nil {
		return nil, data.NewNotFound(data.KindDrawable, obj.Name)
	}
	return e.resolver.Drawable(obj.Name)
}

// paletteOf returns the palette obj is drawn with, remapped to its owner
// and lit when configured.
func (e *Engine) paletteOf(ctx context.Context, obj *object.GameObject, d *drawable.Drawable) (*palette.Palette, error) {
	pal := obj.Palette
	if pal == nil {
		if e.palettes == nil {
			return nil, data.NewNotFound(data.KindPalette, d.PaletteKind.String())
		}

		if d.CustomPalette != "" {
			custom, err := e.palettes.Custom(ctx, d.CustomPalette)
			if err != nil {
				return nil, err
			}
			pal = custom
		} else {
			pal = e.palettes.Get(d.PaletteKind)
		}
	}
	if pal == nil {
		return nil, data.NewNotFound(data.KindPalette, d.PaletteKind.String())
	}

	pctx := palette.Context{Lighting: e.lighting, Height: obj.Tile.Z}
	if d.Remappable && e.houses != nil {
		if c, ok := e.houses.HouseColor(obj.Owner); ok {
			pctx.Remap = &c
		}
	}

	if pctx.Remap == nil && pctx.Lighting == nil {
		return pal, nil
	}
	return palette.Recalculate(pal, pctx), nil
}

// DrawAll draws objs in painter's order of their bottom tiles. Failing
// objects are skipped and reported together.
func (e *Engine) DrawAll(ctx context.Context, objs []*object.GameObject, s *surface.Surface) error {
	sorted := slices.Clone(objs)
	slices.SortStableFunc(sorted, func(a, b *object.GameObject) int {
		if a.BottomTile.Dy != b.BottomTile.Dy {
			return a.BottomTile.Dy - b.BottomTile.Dy
		}
		return a.BottomTile.Dx - b.BottomTile.Dx
	})

	var failures data.Errors
	for _, obj := range sorted {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.Draw(ctx, obj, s); err != nil {
			e.log.Error("%v", err)
			failures.Add(err)
		}
	}
	return failures.Errors()
}
