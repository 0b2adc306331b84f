package vfs_test

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/mwantia/cncmaps/data"
	"github.com/mwantia/cncmaps/format"
	"github.com/mwantia/cncmaps/internal/fixture"
	"github.com/mwantia/cncmaps/log"
	"github.com/mwantia/cncmaps/source/ephemeral"
	"github.com/mwantia/cncmaps/vfs"
)

type countedAsset struct {
	content string
}

// newCountingFileSystem returns a file system decoding *countedAsset and
// the number of decodes it ran.
func newCountingFileSystem(tst *testing.T) (*vfs.VirtualFileSystem, *atomic.Int64) {
	decodes := &atomic.Int64{}

	registry := format.NewRegistry()
	format.Register(registry, func(name string, buf []byte) (*countedAsset, error) {
		decodes.Add(1)
		if len(buf) == 0 {
			return nil, data.NewFormatError("counted", name, errors.New("empty payload"))
		}
		return &countedAsset{content: string(buf)}, nil
	})

	fs, err := vfs.NewVirtualFileSystem(vfs.WithLogger(log.Discard()), vfs.WithRegistry(registry))
	if err != nil {
		tst.Fatalf("NewVirtualFileSystem failed: %v", err)
	}
	tst.Cleanup(func() {
		fs.Shutdown(tst.Context())
	})
	return fs, decodes
}

func newTestFileSystem(tst *testing.T) *vfs.VirtualFileSystem {
	fs, _ := newCountingFileSystem(tst)
	return fs
}

func addEphemeral(tst *testing.T, fs *vfs.VirtualFileSystem, method data.CacheMethod, files map[string]string) *ephemeral.EphemeralSource {
	src := ephemeral.NewEphemeralSource("")
	for name, content := range files {
		src.Put(name, []byte(content))
	}
	if err := fs.AddSource(tst.Context(), src, method); err != nil {
		tst.Fatalf("AddSource failed: %v", err)
	}
	return src
}

func TestPrecedence(t *testing.T) {
	fs := newTestFileSystem(t)
	ctx := t.Context()

	addEphemeral(t, fs, data.Uncached, map[string]string{"rules.ini": "mod"})
	addEphemeral(t, fs, data.Uncached, map[string]string{"rules.ini": "expand", "art.ini": "expand"})
	addEphemeral(t, fs, data.Uncached, map[string]string{"rules.ini": "base", "art.ini": "base", "sound.ini": "base"})

	tests := map[string]string{
		"RULES.INI": "mod",
		"art.ini":   "expand",
		"sound.ini": "base",
	}

	for name, expected := range tests {
		t.Run(name, func(tst *testing.T) {
			content, err := fs.Open(ctx, name)
			if err != nil {
				tst.Fatalf("Open failed: %v", err)
			}
			if string(content) != expected {
				tst.Errorf("Expected %q, got %q", expected, string(content))
			}
		})
	}

	if _, err := fs.Open(ctx, "missing.ini"); !errors.Is(err, data.ErrNotExist) {
		t.Errorf("Expected ErrNotExist, got %v", err)
	}
	var notFound *data.NotFoundError
	if _, err := vfs.Resolve[[]byte](ctx, fs, "missing.ini"); !errors.As(err, &notFound) || notFound.Name != "missing.ini" {
		t.Errorf("Expected NotFoundError for missing.ini, got %v", err)
	}
}

func TestResolveCacheIdentity(t *testing.T) {
	tests := map[data.CacheMethod]bool{
		data.Uncached:      false,
		data.Cache:         true,
		data.CacheAndClose: true,
	}

	for method, shared := range tests {
		t.Run(method.String(), func(tst *testing.T) {
			fs := newTestFileSystem(tst)
			ctx := tst.Context()
			addEphemeral(tst, fs, method, map[string]string{"asset.bin": "payload"})

			first, err := vfs.Resolve[*countedAsset](ctx, fs, "asset.bin")
			if err != nil {
				tst.Fatalf("Resolve failed: %v", err)
			}
			second, err := vfs.Resolve[*countedAsset](ctx, fs, "ASSET.BIN")
			if err != nil {
				tst.Fatalf("Resolve failed: %v", err)
			}

			if (first == second) != shared {
				tst.Errorf("Expected shared instance %v, got %v", shared, first == second)
			}
		})
	}
}

func TestResolveConcurrentDecodesOnce(t *testing.T) {
	fs, decodes := newCountingFileSystem(t)
	ctx := t.Context()
	addEphemeral(t, fs, data.Cache, map[string]string{"shared.bin": "payload"})

	const workers = 32
	results := make([]*countedAsset, workers)

	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			asset, err := vfs.Resolve[*countedAsset](ctx, fs, "shared.bin")
			if err != nil {
				t.Errorf("Resolve failed: %v", err)
				return
			}
			results[i] = asset
		}()
	}
	wg.Wait()

	if n := decodes.Load(); n != 1 {
		t.Errorf("Expected 1 decode, got %d", n)
	}
	for i := 1; i < workers; i++ {
		if results[i] != results[0] {
			t.Fatalf("Expected every worker to share the cached instance")
		}
	}
}

func TestResolveFormatErrorIsNotCached(t *testing.T) {
	fs := newTestFileSystem(t)
	ctx := t.Context()
	src := addEphemeral(t, fs, data.Cache, map[string]string{"broken.bin": ""})

	if _, err := vfs.Resolve[*countedAsset](ctx, fs, "broken.bin"); !errors.Is(err, data.ErrFormat) {
		t.Fatalf("Expected ErrFormat, got %v", err)
	}

	src.Put("broken.bin", []byte("fixed"))
	asset, err := vfs.Resolve[*countedAsset](ctx, fs, "broken.bin")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if asset.content != "fixed" {
		t.Errorf("Expected %q, got %q", "fixed", asset.content)
	}
}

func TestCacheAndCloseReleasesSource(t *testing.T) {
	fs := newTestFileSystem(t)
	ctx := t.Context()

	addEphemeral(t, fs, data.CacheAndClose, map[string]string{"keyboard.ini": "once", "other.ini": "once"})
	addEphemeral(t, fs, data.Uncached, map[string]string{"other.ini": "fallback"})

	first, err := vfs.Resolve[*countedAsset](ctx, fs, "keyboard.ini")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	sources := fs.Sources()
	if !sources[0].Released || sources[1].Released {
		t.Fatalf("Expected only the first source to be released, got %+v", sources)
	}

	second, err := vfs.Resolve[*countedAsset](ctx, fs, "keyboard.ini")
	if err != nil {
		t.Fatalf("Resolve after release failed: %v", err)
	}
	if first != second {
		t.Errorf("Expected cached instance after release")
	}

	content, err := fs.Open(ctx, "other.ini")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if string(content) != "once" {
		t.Errorf("Expected first match %q after release, got %q", "once", string(content))
	}

	other, err := vfs.Resolve[*countedAsset](ctx, fs, "other.ini")
	if err != nil {
		t.Fatalf("Resolve after release failed: %v", err)
	}
	if other.content != "once" {
		t.Errorf("Expected first match %q after release, got %q", "once", other.content)
	}
	if sources := fs.Sources(); !sources[0].Released {
		t.Errorf("Expected the first source to be released again, got %+v", sources)
	}

	if err := fs.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}
	if err := fs.Shutdown(ctx); !errors.Is(err, data.ErrClosed) {
		t.Errorf("Expected ErrClosed on second shutdown, got %v", err)
	}
	if _, err := vfs.Resolve[*countedAsset](ctx, fs, "keyboard.ini"); !errors.Is(err, data.ErrClosed) {
		t.Errorf("Expected ErrClosed after shutdown, got %v", err)
	}
}

func TestCacheAndCloseReopensArchive(t *testing.T) {
	fs := newTestFileSystem(t)
	ctx := t.Context()

	archivePath := filepath.Join(t.TempDir(), "local.mix")
	content := fixture.Mix(false,
		fixture.MixEntry{Name: "rules.ini", Data: []byte("first")},
		fixture.MixEntry{Name: "art.ini", Data: []byte("second")},
	)
	if err := os.WriteFile(archivePath, content, 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if err := fs.Add(ctx, archivePath, data.CacheAndClose); err != nil {
		t.Fatalf("Add archive failed: %v", err)
	}

	tests := []struct {
		name     string
		expected string
	}{
		{name: "rules.ini", expected: "first"},
		{name: "ART.INI", expected: "second"},
		{name: "rules.ini", expected: "first"},
	}

	for _, test := range tests {
		asset, err := vfs.Resolve[*countedAsset](ctx, fs, test.name)
		if err != nil {
			t.Fatalf("Resolve %s failed: %v", test.name, err)
		}
		if asset.content != test.expected {
			t.Errorf("Expected %q, got %q", test.expected, asset.content)
		}
		if sources := fs.Sources(); !sources[0].Released {
			t.Errorf("Expected archive to be released after %s", test.name)
		}
	}
}

func TestAddPathsAndNestedArchives(t *testing.T) {
	fs := newTestFileSystem(t)
	ctx := t.Context()

	inner := fixture.Mix(false, fixture.MixEntry{Name: "gacnst.shp", Data: []byte("nested")})
	outer := fixture.Mix(true,
		fixture.MixEntry{Name: "conqmd.mix", Data: inner},
		fixture.MixEntry{Name: "rulesmd.ini", Data: []byte("archive")},
	)

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "rulesmd.ini"), []byte("loose"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	archivePath := filepath.Join(t.TempDir(), "ra2md.mix")
	if err := os.WriteFile(archivePath, outer, 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if err := fs.Add(ctx, dir, data.Uncached); err != nil {
		t.Fatalf("Add directory failed: %v", err)
	}
	if err := fs.Add(ctx, archivePath, data.Uncached); err != nil {
		t.Fatalf("Add archive failed: %v", err)
	}

	added, err := fs.LoadArchives(ctx, []string{"expandmd01.mix", "conqmd.mix"}, data.Cache)
	if err != nil {
		t.Fatalf("LoadArchives failed: %v", err)
	}
	if added != 1 {
		t.Errorf("Expected 1 archive added, got %d", added)
	}

	content, err := vfs.Resolve[[]byte](ctx, fs, "rulesmd.ini")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if string(content) != "loose" {
		t.Errorf("Expected loose override, got %q", string(content))
	}

	content, err = vfs.Resolve[[]byte](ctx, fs, "GACNST.SHP")
	if err != nil {
		t.Fatalf("Resolve nested failed: %v", err)
	}
	if string(content) != "nested" {
		t.Errorf("Expected %q, got %q", "nested", string(content))
	}

	if len(fs.Sources()) != 3 {
		t.Errorf("Expected 3 sources, got %d", len(fs.Sources()))
	}
}

func TestAddBareNameIgnoresWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	local := fixture.Mix(false, fixture.MixEntry{Name: "gacnst.shp", Data: []byte("disk")})
	if err := os.WriteFile(filepath.Join(dir, "conqmd.mix"), local, 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	t.Chdir(dir)

	fs := newTestFileSystem(t)
	ctx := t.Context()

	nested := fixture.Mix(false, fixture.MixEntry{Name: "gacnst.shp", Data: []byte("nested")})
	src := ephemeral.NewEphemeralSource("")
	src.Put("conqmd.mix", nested)
	if err := fs.AddSource(ctx, src, data.Uncached); err != nil {
		t.Fatalf("AddSource failed: %v", err)
	}

	if err := fs.Add(ctx, "conqmd.mix", data.Uncached); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	content, err := fs.Open(ctx, "gacnst.shp")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if string(content) != "nested" {
		t.Errorf("Expected %q, got %q", "nested", string(content))
	}

	if err := fs.Add(ctx, filepath.Join(".", "missing", "conqmd.mix"), data.Uncached); !errors.Is(err, data.ErrNotExist) {
		t.Errorf("Expected ErrNotExist for missing path, got %v", err)
	}
	if err := fs.Add(ctx, "./conqmd.mix", data.Uncached); err != nil {
		t.Errorf("Add relative path failed: %v", err)
	}
}

func TestResolveUnregisteredType(t *testing.T) {
	fs := newTestFileSystem(t)
	addEphemeral(t, fs, data.Cache, map[string]string{"x.bin": "x"})

	type unregistered struct{}
	if _, err := vfs.Resolve[*unregistered](t.Context(), fs, "x.bin"); !errors.Is(err, data.ErrInvalid) {
		t.Errorf("Expected ErrInvalid, got %v", err)
	}
}
