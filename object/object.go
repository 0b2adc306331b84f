// Package object describes the game objects handed to the compositor.
package object

import (
	"strings"

	"github.com/mwantia/cncmaps/drawable"
	"github.com/mwantia/cncmaps/palette"
)

// NoUpgrade marks an empty upgrade slot.
const NoUpgrade = "None"

// Tile is the map cell an object stands on.
type Tile struct {
	Dx, Dy int
	Z      int
}

// CenterTile returns the cell whose top-left corner is the center of a
// width x height surface.
func CenterTile(width, height, tileWidth, tileHeight int) Tile {
	return Tile{
		Dx: width / 2 / (tileWidth / 2),
		Dy: height / 2 / (tileHeight / 2),
	}
}

// GameObject is a renderable entity. It is built per render and owns no
// shared state; Palette and Drawable are shared and read-only.
type GameObject struct {
	Owner string
	Name  string
	// Health in percent, clamped to 0..100.
	Health    int
	Direction uint8
	OnBridge  bool
	Structure bool
	Upgrades  [3]string

	// Optional; resolved by the compositor when nil.
	Palette  *palette.Palette
	Drawable *drawable.Drawable

	Tile       Tile
	BottomTile Tile
}

func clampHealth(health int) int {
	return max(0, min(100, health))
}

func NewUnit(owner, name string, health int, direction uint8, onBridge bool) *GameObject {
	return &GameObject{
		Owner:     owner,
		Name:      name,
		Health:    clampHealth(health),
		Direction: direction,
		OnBridge:  onBridge,
	}
}

func NewStructure(owner, name string, health int, direction uint8) *GameObject {
	return &GameObject{
		Owner:     owner,
		Name:      name,
		Health:    clampHealth(health),
		Direction: direction,
		Structure: true,
		Upgrades:  [3]string{NoUpgrade, NoUpgrade, NoUpgrade},
	}
}

// Place sets both tiles to t.
func (o *GameObject) Place(t Tile) {
	o.Tile = t
	o.BottomTile = t
}

// InstalledUpgrades returns the names of the occupied upgrade slots.
func (o *GameObject) InstalledUpgrades() []string {
	if !o.Structure {
		return nil
	}

	upgrades := make([]string, 0, len(o.Upgrades))
	for _, u := range o.Upgrades {
		if u = strings.TrimSpace(u); u != "" && !strings.EqualFold(u, NoUpgrade) {
			upgrades = append(upgrades, u)
		}
	}
	return upgrades
}

// State returns the drawable state of the object for the given damage
// thresholds.
func (o *GameObject) State(d *drawable.Drawable, yellow, red float64) drawable.State {
	return drawable.State{
		Facing:  drawable.FacingBucket(o.Direction, d.Facings),
		Tier:    drawable.DamageTier(o.Health, yellow, red),
		Variant: len(o.InstalledUpgrades()),
	}
}
