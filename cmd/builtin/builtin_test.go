package builtin_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/mwantia/cncmaps/cmd"
	"github.com/mwantia/cncmaps/cmd/builtin"
	"github.com/mwantia/cncmaps/config"
	"github.com/mwantia/cncmaps/data"
	"github.com/mwantia/cncmaps/drawable"
	"github.com/mwantia/cncmaps/format"
	"github.com/mwantia/cncmaps/internal/fixture"
	"github.com/mwantia/cncmaps/log"
	"github.com/mwantia/cncmaps/object"
	"github.com/mwantia/cncmaps/source/ephemeral"
	"github.com/mwantia/cncmaps/surface"
	"github.com/mwantia/cncmaps/vfs"
)

type testAPI struct {
	mu       sync.Mutex
	cfg      *config.Config
	fs       *vfs.VirtualFileSystem
	resolver *drawable.Resolver
	rendered []*object.GameObject
}

func newTestAPI(tst *testing.T) *testAPI {
	ctx := tst.Context()

	fs, err := vfs.NewVirtualFileSystem(vfs.WithLogger(log.Discard()))
	if err != nil {
		tst.Fatalf("NewVirtualFileSystem failed: %v", err)
	}
	tst.Cleanup(func() { fs.Shutdown(context.Background()) })

	sheet := fixture.Shp(6, 6, fixture.ShpFrame{X: 1, Y: 1, Width: 4, Height: 4, Pixels: fixture.Solid(4, 4, 200)})
	src := ephemeral.NewEphemeralSource("assets")
	src.Put("mtank.shp", sheet)
	src.Put("unittem.pal", fixture.GrayPalette())
	if err := fs.AddSource(ctx, src, data.Cache); err != nil {
		tst.Fatalf("AddSource failed: %v", err)
	}

	shp, err := format.DecodeShp("mtank.shp", sheet)
	if err != nil {
		tst.Fatalf("DecodeShp failed: %v", err)
	}
	resolver := drawable.NewResolver()
	if err := resolver.Register("MTNK", drawable.Vehicle, &drawable.Drawable{Name: "MTNK", Image: "MTANK", Sheet: shp}); err != nil {
		tst.Fatalf("Register failed: %v", err)
	}

	cfg := config.Default(config.RedAlert2)
	cfg.Output.Directory = tst.TempDir()

	return &testAPI{cfg: cfg, fs: fs, resolver: resolver}
}

func (a *testAPI) Config() *config.Config             { return a.cfg }
func (a *testAPI) FileSystem() *vfs.VirtualFileSystem { return a.fs }
func (a *testAPI) Resolver() *drawable.Resolver       { return a.resolver }

func (a *testAPI) RenderObject(ctx context.Context, obj *object.GameObject) (*surface.Surface, error) {
	if _, err := a.resolver.Drawable(obj.Name); err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.rendered = append(a.rendered, obj)
	return surface.New(a.cfg.Output.Size, a.cfg.Output.Size, surface.RGB24)
}

func (a *testAPI) RenderAll(ctx context.Context, objs []*object.GameObject) error {
	var failures data.Errors
	for _, obj := range objs {
		if _, err := a.RenderObject(ctx, obj); err != nil {
			failures.Add(err)
		}
	}
	return failures.Errors()
}

func execute(tst *testing.T, api cmd.API, name string, raw ...string) (string, int, error) {
	registry, err := builtin.NewRegistry()
	if err != nil {
		tst.Fatalf("NewRegistry failed: %v", err)
	}

	var buf bytes.Buffer
	code, err := registry.Execute(tst.Context(), api, &buf, name, raw...)
	return buf.String(), code, err
}

func TestRenderCommand(t *testing.T) {
	api := newTestAPI(t)

	out, code, err := execute(t, api, "render", "--owner", "Americans", "--health", "40", "-d", "64", "mtnk")
	if err != nil || code != 0 {
		t.Fatalf("Execute failed: %d %v", code, err)
	}
	if !strings.Contains(out, "Rendered 1 of 1 objects") {
		t.Errorf("Expected summary, got %q", out)
	}

	if len(api.rendered) != 1 {
		t.Fatalf("Expected 1 rendered object, got %d", len(api.rendered))
	}
	obj := api.rendered[0]
	if obj.Name != "MTNK" || obj.Owner != "Americans" || obj.Health != 40 || obj.Direction != 64 || obj.Structure {
		t.Errorf("Expected unit built from flags, got %+v", obj)
	}
}

func TestRenderCommandStructure(t *testing.T) {
	api := newTestAPI(t)

	out, code, err := execute(t, api, "render", "-s", "-u", "GAPOWRUP", "-u", "GAPLUG", "MTNK", "GACNST")
	if code != 1 || !errors.Is(err, data.ErrDrawableNotFound) {
		t.Fatalf("Expected missing GACNST to fail, got %d %v", code, err)
	}
	if !strings.Contains(out, "Rendered 1 of 2 objects") {
		t.Errorf("Expected summary, got %q", out)
	}

	obj := api.rendered[0]
	if !obj.Structure || obj.Upgrades[0] != "GAPOWRUP" || obj.Upgrades[1] != "GAPLUG" || obj.Upgrades[2] != object.NoUpgrade {
		t.Errorf("Expected structure with upgrades, got %+v", obj)
	}
}

func TestRenderCommandDemo(t *testing.T) {
	api := newTestAPI(t)

	out, code, err := execute(t, api, "render")
	if code != 1 || err == nil {
		t.Fatalf("Expected demo objects to be missing, got %d %v", code, err)
	}
	if !strings.Contains(out, "Rendered 0 of 4 objects") {
		t.Errorf("Expected summary, got %q", out)
	}
}

func TestLsCommand(t *testing.T) {
	api := newTestAPI(t)

	out, code, err := execute(t, api, "ls")
	if err != nil || code != 0 {
		t.Fatalf("Execute failed: %d %v", code, err)
	}
	for _, expected := range []string{"Sources (1):", "assets", "cache", "2 entries", "vehicle (1):", "MTNK", "6x6"} {
		if !strings.Contains(out, expected) {
			t.Errorf("Expected output to contain %q, got %q", expected, out)
		}
	}

	out, _, err = execute(t, api, "ls", "--category", "building")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if strings.Contains(out, "Sources") || !strings.Contains(out, "building (0):") {
		t.Errorf("Expected only buildings, got %q", out)
	}

	if _, code, err := execute(t, api, "ls", "-C", "submarine"); code != 2 || !errors.Is(err, data.ErrInvalid) {
		t.Errorf("Expected ErrInvalid, got %d %v", code, err)
	}
}

func TestExtractCommand(t *testing.T) {
	api := newTestAPI(t)
	dest := filepath.Join(t.TempDir(), "out")

	out, code, err := execute(t, api, "extract", "--dest", dest, "UNITTEM.PAL")
	if err != nil || code != 0 {
		t.Fatalf("Execute failed: %d %v", code, err)
	}
	if !strings.Contains(out, "768 B") || !strings.Contains(out, string(data.ContentTypePalette)) {
		t.Errorf("Expected content type and humanized size, got %q", out)
	}

	content, err := os.ReadFile(filepath.Join(dest, "UNITTEM.PAL"))
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if !bytes.Equal(content, fixture.GrayPalette()) {
		t.Errorf("Expected extracted palette to match")
	}

	if _, code, err := execute(t, api, "extract", "--dest", dest, "missing.shp"); code != 1 || !errors.Is(err, data.ErrNotExist) {
		t.Errorf("Expected ErrNotExist, got %d %v", code, err)
	}
	if _, code, _ := execute(t, api, "extract"); code != 2 {
		t.Errorf("Expected usage error, got %d", code)
	}
}
