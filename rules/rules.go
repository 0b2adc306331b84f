// Package rules exposes the object definitions of the merged rules and art
// documents of an engine.
package rules

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/mwantia/cncmaps/config"
	"github.com/mwantia/cncmaps/data"
	"github.com/mwantia/cncmaps/format"
	"github.com/mwantia/cncmaps/log"
	"github.com/mwantia/cncmaps/vfs"
)

const (
	DefaultConditionYellow = 0.5
	DefaultConditionRed    = 0.25
)

type Rules struct {
	rules *format.IniFile
	art   *format.IniFile
}

// ArtProperties are the rendering related keys of one object type.
type ArtProperties struct {
	// Section of the art document describing the object.
	Section string
	// Base name of the sprite file.
	Image string

	Facings    int
	Variants   int
	StartFrame int
	Shadow     *bool
	Remappable *bool

	Theater    bool
	NewTheater bool
	Voxel      bool

	Palette string
	Offset  image.Point
}

// New creates rules over already merged documents.
func New(rules, art *format.IniFile) *Rules {
	if rules == nil {
		rules = format.NewIniFile("rules")
	}
	if art == nil {
		art = format.NewIniFile("art")
	}
	return &Rules{rules: rules, art: art}
}

// Load merges the rules and art documents of engine in order and follows
// the includes of the rules. The first document of each list is required.
func Load(ctx context.Context, fs *vfs.VirtualFileSystem, engine config.EngineType, logger *log.Logger) (*Rules, error) {
	files := engine.RulesFiles()

	rules, err := merge(ctx, fs, files.Rules, logger)
	if err != nil {
		return nil, err
	}

	open := func(ctx context.Context, name string) (*format.IniFile, error) {
		logger.Debug("Including '%s'", name)
		return vfs.Resolve[*format.IniFile](ctx, fs, name)
	}
	if err := rules.MergeIncludes(ctx, open); err != nil {
		return nil, err
	}

	art, err := merge(ctx, fs, files.Art, logger)
	if err != nil {
		return nil, err
	}

	return New(rules, art), nil
}

// merge copies the documents into a fresh file, so cached documents of the
// file system are never modified.
func merge(ctx context.Context, fs *vfs.VirtualFileSystem, names []string, logger *log.Logger) (*format.IniFile, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: no documents to merge", data.ErrInvalid)
	}

	merged := format.NewIniFile(names[0])
	for i, name := range names {
		doc, err := vfs.Resolve[*format.IniFile](ctx, fs, name)
		if err != nil {
			if i > 0 && errors.Is(err, data.ErrNotExist) {
				logger.Warn("Skipping missing '%s'", name)
				continue
			}
			return nil, err
		}

		merged.MergeWith(doc)
		logger.Debug("Merged '%s'", name)
	}
	return merged, nil
}

func (r *Rules) Rules() *format.IniFile {
	return r.rules
}

func (r *Rules) ArtFile() *format.IniFile {
	return r.art
}

// TypeNames returns the object types listed in a type list section such as
// "VehicleTypes".
func (r *Rules) TypeNames(section string) []string {
	return r.rules.Values(section)
}

// Art returns the art properties of the object type name.
func (r *Rules) Art(name string) ArtProperties {
	section := r.rules.String(name, "Image", name)

	props := ArtProperties{
		Section:    section,
		Image:      r.art.String(section, "Image", section),
		Facings:    r.art.Int(section, "Facings", r.rules.Int(name, "Facings", 0)),
		Variants:   r.art.Int(section, "Variants", 0),
		StartFrame: r.art.Int(section, "Start", 0),
		Theater:    r.art.Bool(section, "Theater", false),
		NewTheater: r.art.Bool(section, "NewTheater", false),
		Voxel:      r.art.Bool(section, "Voxel", false),
		Palette:    r.art.String(section, "Palette", ""),
		Offset: image.Point{
			X: r.art.Int(section, "XDrawOffset", 0),
			Y: r.art.Int(section, "YDrawOffset", 0),
		},
	}

	if r.art.HasKey(section, "Shadow") {
		shadow := r.art.Bool(section, "Shadow", true)
		props.Shadow = &shadow
	}
	if r.art.HasKey(section, "Remapable") {
		remap := r.art.Bool(section, "Remapable", false)
		props.Remappable = &remap
	} else if r.rules.HasKey(name, "Remapable") {
		remap := r.rules.Bool(name, "Remapable", false)
		props.Remappable = &remap
	}

	return props
}

// HouseColor returns the remap color of owner. The owner section names a
// color of the [Colors] section, stored as an HSV triple in 0..255.
func (r *Rules) HouseColor(owner string) (color.RGBA, bool) {
	name := r.rules.String(owner, "Color", "")
	if name == "" {
		if trimmed := strings.TrimSuffix(owner, " House"); trimmed != owner {
			name = r.rules.String(trimmed, "Color", "")
		}
	}
	if name == "" {
		return color.RGBA{}, false
	}

	return ParseHSV(r.rules.String("Colors", name, ""))
}

// ParseHSV converts a "H,S,V" triple with components in 0..255.
func ParseHSV(value string) (color.RGBA, bool) {
	parts := strings.Split(value, ",")
	if len(parts) != 3 {
		return color.RGBA{}, false
	}

	var hsv [3]float64
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || v < 0 || v > 255 {
			return color.RGBA{}, false
		}
		hsv[i] = float64(v)
	}

	c := colorful.Hsv(math.Mod(hsv[0]*360/255, 360), hsv[1]/255, hsv[2]/255)
	red, green, blue := c.Clamped().RGB255()
	return color.RGBA{R: red, G: green, B: blue, A: 0xFF}, true
}

// Conditions returns the health fractions below which objects are drawn
// damaged and near dead.
func (r *Rules) Conditions() (float64, float64) {
	yellow := r.rules.Float("AudioVisual", "ConditionYellow", DefaultConditionYellow)
	red := r.rules.Float("AudioVisual", "ConditionRed", DefaultConditionRed)
	return yellow, red
}
