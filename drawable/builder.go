package drawable

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/mwantia/cncmaps/data"
	"github.com/mwantia/cncmaps/format"
	"github.com/mwantia/cncmaps/log"
	"github.com/mwantia/cncmaps/rules"
	"github.com/mwantia/cncmaps/vfs"
)

// genericTheaterChar is the new theater letter of images shared by every
// theater.
const genericTheaterChar = "G"

// Builder creates drawables from the rules and the sprites of a file
// system.
type Builder struct {
	fs    *vfs.VirtualFileSystem
	rules *rules.Rules
	log   *log.Logger

	extension      string
	newTheaterChar string
}

func NewBuilder(fs *vfs.VirtualFileSystem, r *rules.Rules, opts ...BuilderOption) (*Builder, error) {
	options := newDefaultBuilderOptions()
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}

	return &Builder{
		fs:             fs,
		rules:          r,
		log:            options.Logger,
		extension:      options.TheaterExtension,
		newTheaterChar: options.NewTheaterChar,
	}, nil
}

// ImageNames returns the sprite file names tried for art, in order.
func (b *Builder) ImageNames(art rules.ArtProperties) []string {
	image := art.Image

	switch {
	case art.Theater:
		return []string{image + b.extension}

	case art.NewTheater && len(image) >= 2 && isLetter(image[1]):
		names := make([]string, 0, 3)
		for _, name := range []string{
			image[:1] + b.newTheaterChar + image[2:] + ".shp",
			image[:1] + genericTheaterChar + image[2:] + ".shp",
			image + ".shp",
		} {
			if !slices.Contains(names, name) {
				names = append(names, name)
			}
		}
		return names

	default:
		return []string{image + ".shp"}
	}
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// Build creates the drawable of the type name in category.
func (b *Builder) Build(ctx context.Context, name string, category Category) (*Drawable, error) {
	art := b.rules.Art(name)
	if art.Voxel {
		return nil, fmt.Errorf("%w: voxel drawable '%s'", data.ErrUnsupported, name)
	}

	names := b.ImageNames(art)

	var sheet *format.ShpFile
	var file string
	for _, candidate := range names {
		shp, err := vfs.Resolve[*format.ShpFile](ctx, b.fs, strings.ToLower(candidate))
		if err != nil {
			if errors.Is(err, data.ErrNotExist) {
				continue
			}
			return nil, err
		}
		sheet, file = shp, candidate
		break
	}
	if sheet == nil {
		return nil, data.NewNotFound(data.KindEntry, names[0])
	}

	def := category.defaults()
	d := &Drawable{
		Name:          name,
		Category:      category,
		Image:         file,
		Sheet:         sheet,
		PaletteKind:   def.palette,
		CustomPalette: art.Palette,
		Facings:       def.facings,
		Tiers:         def.tiers,
		Variants:      1,
		StartFrame:    art.StartFrame,
		Shadow:        def.shadow,
		Remappable:    def.remappable,
		Offset:        art.Offset,
	}

	if art.Facings > 0 {
		d.Facings = art.Facings
	}
	if art.Variants > 0 {
		d.Variants = art.Variants
	}
	if art.Shadow != nil {
		d.Shadow = *art.Shadow
	}
	if art.Remappable != nil {
		d.Remappable = *art.Remappable
	}

	return d, nil
}

// LoadCategory builds and registers every type listed for category.
// Failing types are logged and skipped; the number registered is returned.
func (b *Builder) LoadCategory(ctx context.Context, resolver *Resolver, category Category) (int, error) {
	section := category.Section()
	if section == "" {
		return 0, nil
	}

	count := 0
	for _, name := range b.rules.TypeNames(section) {
		if err := ctx.Err(); err != nil {
			return count, err
		}

		d, err := b.Build(ctx, name, category)
		if err != nil {
			b.log.Debug("Skipping %s '%s': %v", category, name, err)
			continue
		}

		if err := resolver.Register(name, category, d); err != nil {
			b.log.Warn("Unable to register %s '%s': %v", category, name, err)
			continue
		}
		count++
	}

	b.log.Info("Loaded %d of %d %s types", count, len(b.rules.TypeNames(section)), category)
	return count, nil
}

// LoadAll loads every category into resolver.
func (b *Builder) LoadAll(ctx context.Context, resolver *Resolver) (int, error) {
	total := 0
	for _, category := range Categories {
		n, err := b.LoadCategory(ctx, resolver, category)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
