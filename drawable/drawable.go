// Package drawable resolves object type names to the sprite data they are
// rendered with.
package drawable

import (
	"fmt"
	"image"

	"github.com/mwantia/cncmaps/data"
	"github.com/mwantia/cncmaps/format"
	"github.com/mwantia/cncmaps/palette"
)

// Drawable is the shared, read-only render data of one object type.
//
// Frames of the sheet are laid out as variants of damage tiers of facings,
// starting at StartFrame. When Shadow is set the second half of the sheet
// holds one shadow frame per main frame.
type Drawable struct {
	Name     string
	Category Category
	Image    string
	Sheet    *format.ShpFile

	PaletteKind   palette.Kind
	CustomPalette string

	Facings    int
	Tiers      int
	Variants   int
	StartFrame int

	Shadow     bool
	Remappable bool
	Offset     image.Point
}

// State is the discriminating state of an object, already bucketed.
type State struct {
	Facing  int
	Tier    int
	Variant int
}

// FacingBucket snaps direction onto one of facings orientations.
func FacingBucket(direction uint8, facings int) int {
	if facings <= 1 {
		return 0
	}
	return clamp(int(direction)*facings/256, facings)
}

// DamageTier returns 0 for full health, 1 at or below yellow and 2 at or
// below red. Health is a percentage; thresholds are fractions.
func DamageTier(health int, yellow, red float64) int {
	h := float64(max(0, min(100, health))) / 100
	switch {
	case h <= red:
		return 2
	case h <= yellow:
		return 1
	default:
		return 0
	}
}

func clamp(v, n int) int {
	return max(0, min(v, n-1))
}

func (d *Drawable) frameCount() int {
	if d.Sheet == nil {
		return 0
	}
	if d.hasShadow() {
		return d.Sheet.Len() / 2
	}
	return d.Sheet.Len()
}

func (d *Drawable) hasShadow() bool {
	return d.Shadow && d.Sheet != nil && d.Sheet.Len() >= 2
}

// Index returns the sheet index of the main frame for s. Dimensions the
// drawable lacks are clamped to the nearest available frame.
func (d *Drawable) Index(s State) int {
	facings, tiers, variants := max(1, d.Facings), max(1, d.Tiers), max(1, d.Variants)

	facing := clamp(s.Facing, facings)
	tier := clamp(s.Tier, tiers)
	variant := clamp(s.Variant, variants)

	index := d.StartFrame + (variant*tiers+tier)*facings + facing
	return clamp(index, d.frameCount())
}

// Check reports the dimensions of s the drawable cannot represent. Frames
// clamps them, so the result is informational.
func (d *Drawable) Check(s State) error {
	switch {
	case s.Facing >= max(1, d.Facings):
		return &data.StateError{Name: d.Name, Reason: fmt.Sprintf("facing %d of %d", s.Facing, d.Facings)}
	case s.Tier >= max(1, d.Tiers):
		return &data.StateError{Name: d.Name, Reason: fmt.Sprintf("damage tier %d of %d", s.Tier, d.Tiers)}
	case s.Variant >= max(1, d.Variants):
		return &data.StateError{Name: d.Name, Reason: fmt.Sprintf("variant %d of %d", s.Variant, d.Variants)}
	}
	return nil
}

// Frames returns the main and shadow frame for s. Shadow is nil when the
// drawable has none; both are nil for an empty sheet.
func (d *Drawable) Frames(s State) (*format.ShpFrame, *format.ShpFrame) {
	if d.frameCount() == 0 {
		return nil, nil
	}

	index := d.Index(s)
	main := d.Sheet.Frame(index)

	var shadow *format.ShpFrame
	if d.hasShadow() {
		shadow = d.Sheet.Frame(index + d.Sheet.Len()/2)
	}
	return main, shadow
}

// Size returns the sheet dimensions the frames are placed in.
func (d *Drawable) Size() image.Point {
	if d.Sheet == nil {
		return image.Point{}
	}
	return image.Pt(d.Sheet.Width, d.Sheet.Height)
}
