package composite_test

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/mwantia/cncmaps/composite"
	"github.com/mwantia/cncmaps/data"
	"github.com/mwantia/cncmaps/drawable"
	"github.com/mwantia/cncmaps/format"
	"github.com/mwantia/cncmaps/internal/fixture"
	"github.com/mwantia/cncmaps/log"
	"github.com/mwantia/cncmaps/object"
	"github.com/mwantia/cncmaps/palette"
	"github.com/mwantia/cncmaps/source/ephemeral"
	"github.com/mwantia/cncmaps/surface"
	"github.com/mwantia/cncmaps/vfs"
)

var settings = composite.Settings{
	TileWidth:       60,
	TileHeight:      30,
	ConditionYellow: 0.5,
	ConditionRed:    0.25,
}

// spritePixels is a 4x3 frame with a transparent border column.
var spritePixels = []byte{
	0, 20, 20, 0,
	0, 40, 41, 0,
	0, 90, 90, 90,
}

type houses map[string]color.RGBA

func (h houses) HouseColor(owner string) (color.RGBA, bool) {
	c, ok := h[owner]
	return c, ok
}

func newEngine(tst *testing.T, resolver *drawable.Resolver, opts ...composite.EngineOption) *composite.Engine {
	engine, err := composite.NewEngine(settings, nil, resolver, opts...)
	if err != nil {
		tst.Fatalf("NewEngine failed: %v", err)
	}
	return engine
}

func grayPalette(tst *testing.T) *palette.Palette {
	pal, err := format.DecodePal("unittem.pal", fixture.GrayPalette())
	if err != nil {
		tst.Fatalf("DecodePal failed: %v", err)
	}
	return palette.Load(pal, "unittem.pal", true)
}

func TestEndToEnd(t *testing.T) {
	ctx := t.Context()

	fs, err := vfs.NewVirtualFileSystem(vfs.WithLogger(log.Discard()))
	if err != nil {
		t.Fatalf("NewVirtualFileSystem failed: %v", err)
	}
	defer fs.Shutdown(ctx)

	raw := fixture.Mix(true,
		fixture.MixEntry{Name: "unittem.pal", Data: fixture.GrayPalette()},
		fixture.MixEntry{Name: "ltank.shp", Data: fixture.Shp(8, 6, fixture.ShpFrame{
			X: 2, Y: 1, Width: 4, Height: 3, Pixels: spritePixels, RLE: true,
		})},
	)
	src := ephemeral.NewEphemeralSource("")
	src.Put("local.mix", raw)
	if err := fs.AddSource(ctx, src, data.Uncached); err != nil {
		t.Fatalf("AddSource failed: %v", err)
	}
	if err := fs.Add(ctx, "local.mix", data.Cache); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	pal, err := vfs.Resolve[*format.PalFile](ctx, fs, "unittem.pal")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	base := palette.Load(pal, "unittem.pal", true)
	recalculated := palette.Recalculate(base, palette.Context{})

	sheet, err := vfs.Resolve[*format.ShpFile](ctx, fs, "ltank.shp")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	resolver := drawable.NewResolver()
	if err := resolver.Register("LTNK", drawable.Vehicle, &drawable.Drawable{
		Name: "LTNK", Category: drawable.Vehicle, Sheet: sheet, Facings: 1, Tiers: 1, Shadow: true,
	}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	s, err := surface.New(300, 300, surface.RGBA32)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	obj := object.NewUnit("none", "LTNK", 100, 0x80, false)
	obj.Palette = recalculated
	obj.Place(object.CenterTile(300, 300, settings.TileWidth, settings.TileHeight))

	if err := newEngine(t, resolver).Draw(ctx, obj, s); err != nil {
		t.Fatalf("Draw failed: %v", err)
	}

	// Tile (5,10) has its center at (180,165); the 8x6 sheet is centered
	// there and the frame starts at (2,1) inside it.
	origin := image.Pt(180-4+2, 165-3+1)
	for y := range 300 {
		for x := range 300 {
			c := s.At(x, y)

			fx, fy := x-origin.X, y-origin.Y
			index := byte(0)
			if fx >= 0 && fy >= 0 && fx < 4 && fy < 3 {
				index = spritePixels[fy*4+fx]
			}

			if index == 0 {
				if c.A != 0 {
					t.Fatalf("Expected transparent pixel at (%d,%d), got %v", x, y, c)
				}
				continue
			}
			if c != recalculated.Color(index) {
				t.Fatalf("Expected %v at (%d,%d), got %v", recalculated.Color(index), x, y, c)
			}
		}
	}
}

func TestDrawShadowFirst(t *testing.T) {
	sheet := &format.ShpFile{Width: 2, Height: 2, Frames: []*format.ShpFrame{
		{Width: 1, Height: 1, Pixels: []byte{200}},
		{Width: 2, Height: 2, Pixels: []byte{1, 1, 1, 1}},
	}}
	d := &drawable.Drawable{Name: "UNIT", Sheet: sheet, Facings: 1, Tiers: 1, Shadow: true}

	s, err := surface.New(60, 60, surface.RGB24)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	s.Blit(image.NewUniform(color.RGBA{R: 200, G: 200, B: 200, A: 0xFF}), image.Point{}, image.Rectangle{})

	obj := object.NewUnit("none", "UNIT", 100, 0, false)
	obj.Drawable = d
	obj.Palette = grayPalette(t)

	engine := newEngine(t, nil)
	if err := engine.Draw(t.Context(), obj, s); err != nil {
		t.Fatalf("Draw failed: %v", err)
	}

	// The sheet is centered on the tile center (30,15).
	if c := s.At(29, 14); c != obj.Palette.Color(200) {
		t.Errorf("Expected main frame over the shadow, got %v", c)
	}
	if c := s.At(30, 15); c != (color.RGBA{R: 100, G: 100, B: 100, A: 0xFF}) {
		t.Errorf("Expected shaded pixel, got %v", c)
	}
	if c := s.At(31, 16); c != (color.RGBA{R: 200, G: 200, B: 200, A: 0xFF}) {
		t.Errorf("Expected untouched pixel, got %v", c)
	}
}

func TestDrawRemap(t *testing.T) {
	sheet := &format.ShpFile{Width: 1, Height: 1, Frames: []*format.ShpFrame{
		{Width: 1, Height: 1, Pixels: []byte{palette.RemapStart}},
	}}
	red := color.RGBA{R: 0xFF, A: 0xFF}

	tests := map[string]struct {
		owner      string
		remappable bool
		expected   func(p *palette.Palette) color.RGBA
	}{
		"remapped": {"Soviets", true, func(*palette.Palette) color.RGBA {
			return color.RGBA{R: 0xFC, A: 0xFF}
		}},
		"not-remappable": {"Soviets", false, func(p *palette.Palette) color.RGBA {
			return p.Color(palette.RemapStart)
		}},
		"unknown-owner": {"none", true, func(p *palette.Palette) color.RGBA {
			return p.Color(palette.RemapStart)
		}},
	}

	for name, test := range tests {
		t.Run(name, func(tst *testing.T) {
			s, err := surface.New(60, 30, surface.RGBA32)
			if err != nil {
				tst.Fatalf("New failed: %v", err)
			}

			obj := object.NewUnit(test.owner, "UNIT", 100, 0, false)
			obj.Drawable = &drawable.Drawable{Name: "UNIT", Sheet: sheet, Facings: 1, Tiers: 1, Remappable: test.remappable}
			obj.Palette = grayPalette(tst)

			engine := newEngine(tst, nil, composite.WithHouseColors(houses{"Soviets": red}))
			if err := engine.Draw(tst.Context(), obj, s); err != nil {
				tst.Fatalf("Draw failed: %v", err)
			}

			if c := s.At(30, 15); c != test.expected(obj.Palette) {
				tst.Errorf("Expected %v, got %v", test.expected(obj.Palette), c)
			}
			if obj.Palette.Colors[palette.RemapStart] != obj.Palette.Base[palette.RemapStart] {
				tst.Errorf("Expected the shared palette to stay unchanged")
			}
		})
	}
}

func TestDrawUpgrades(t *testing.T) {
	base := &format.ShpFile{Width: 2, Height: 2, Frames: []*format.ShpFrame{
		{Width: 2, Height: 2, Pixels: []byte{8, 8, 8, 8}},
	}}
	plug := &format.ShpFile{Width: 2, Height: 2, Frames: []*format.ShpFrame{
		{X: 1, Y: 1, Width: 1, Height: 1, Pixels: []byte{100}},
	}}

	resolver := drawable.NewResolver()
	if err := resolver.Register("GAPLUG", drawable.Building, &drawable.Drawable{Name: "GAPLUG", Sheet: plug, Facings: 1, Tiers: 1}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	obj := object.NewStructure("none", "GAPOWR", 100, 0)
	obj.Upgrades[0] = "GAPLUG"
	obj.Upgrades[1] = "MISSING"
	obj.Drawable = &drawable.Drawable{Name: "GAPOWR", Sheet: base, Facings: 1, Tiers: 1, Variants: 1}
	obj.Palette = grayPalette(t)

	s, err := surface.New(60, 30, surface.RGBA32)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := newEngine(t, resolver).Draw(t.Context(), obj, s); err != nil {
		t.Fatalf("Draw failed: %v", err)
	}

	if c := s.At(29, 14); c != obj.Palette.Color(8) {
		t.Errorf("Expected base pixel, got %v", c)
	}
	if c := s.At(30, 15); c != obj.Palette.Color(100) {
		t.Errorf("Expected upgrade pixel, got %v", c)
	}
}

func TestDrawPlacement(t *testing.T) {
	engine := newEngine(t, nil)
	d := &drawable.Drawable{Offset: image.Pt(3, -1)}

	tests := map[string]struct {
		obj      *object.GameObject
		expected image.Point
	}{
		"origin": {&object.GameObject{}, image.Pt(30+3, 15-1)},
		"tile":   {&object.GameObject{Tile: object.Tile{Dx: 2, Dy: 4, Z: 1}}, image.Pt(60+30+3, 45+15-1)},
		"bridge": {&object.GameObject{Tile: object.Tile{Dx: 2, Dy: 10}, OnBridge: true}, image.Pt(60+30+3, 150+15-60-1)},
	}

	for name, test := range tests {
		t.Run(name, func(tst *testing.T) {
			if p := engine.Anchor(test.obj, d); p != test.expected {
				tst.Errorf("Expected %v, got %v", test.expected, p)
			}
		})
	}
}

func TestDrawAll(t *testing.T) {
	sheet := &format.ShpFile{Width: 1, Height: 1, Frames: []*format.ShpFrame{
		{Width: 1, Height: 1, Pixels: []byte{1}},
	}}
	front := &format.ShpFile{Width: 1, Height: 1, Frames: []*format.ShpFrame{
		{Width: 1, Height: 1, Pixels: []byte{255}},
	}}

	resolver := drawable.NewResolver()
	resolver.Register("BACK", drawable.Vehicle, &drawable.Drawable{Name: "BACK", Sheet: sheet, Facings: 1, Tiers: 1})
	resolver.Register("FRONT", drawable.Vehicle, &drawable.Drawable{Name: "FRONT", Sheet: front, Facings: 1, Tiers: 1})

	pal := grayPalette(t)
	objects := make([]*object.GameObject, 0, 3)
	for _, entry := range []struct {
		name   string
		bottom int
	}{
		{"FRONT", 2},
		{"GHOST", 0},
		{"BACK", 1},
	} {
		obj := object.NewUnit("none", entry.name, 100, 0, false)
		obj.Palette = pal
		obj.BottomTile = object.Tile{Dy: entry.bottom}
		objects = append(objects, obj)
	}

	s, err := surface.New(60, 30, surface.RGBA32)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	err = newEngine(t, resolver).DrawAll(t.Context(), objects, s)
	if !errors.Is(err, data.ErrDrawableNotFound) {
		t.Fatalf("Expected ErrDrawableNotFound for GHOST, got %v", err)
	}
	if !bytes.Contains([]byte(err.Error()), []byte("GHOST")) {
		t.Errorf("Expected error to name GHOST, got %v", err)
	}

	if c := s.At(30, 15); c != pal.Color(255) {
		t.Errorf("Expected the front object on top, got %v", c)
	}
}

func TestNewEngineInvalid(t *testing.T) {
	if _, err := composite.NewEngine(composite.Settings{}, nil, nil); !errors.Is(err, data.ErrInvalid) {
		t.Errorf("Expected ErrInvalid, got %v", err)
	}
}
