package object_test

import (
	"slices"
	"testing"

	"github.com/mwantia/cncmaps/drawable"
	"github.com/mwantia/cncmaps/object"
)

func TestCenterTile(t *testing.T) {
	tests := map[string]struct {
		width, height int
		expected      object.Tile
	}{
		"ra2": {60, 30, object.Tile{Dx: 5, Dy: 10}},
		"ts":  {48, 24, object.Tile{Dx: 6, Dy: 12}},
	}

	for name, test := range tests {
		t.Run(name, func(tst *testing.T) {
			if tile := object.CenterTile(300, 300, test.width, test.height); tile != test.expected {
				tst.Errorf("Expected %+v, got %+v", test.expected, tile)
			}
		})
	}
}

func TestNewStructure(t *testing.T) {
	obj := object.NewStructure("none", "GACNST", 5000, 0x80)
	if obj.Health != 100 {
		t.Errorf("Expected health to be clamped to 100, got %d", obj.Health)
	}
	if upgrades := obj.InstalledUpgrades(); len(upgrades) != 0 {
		t.Errorf("Expected no installed upgrades, got %v", upgrades)
	}

	obj.Upgrades[1] = "GAPLUG"
	obj.Upgrades[2] = " none "
	if upgrades := obj.InstalledUpgrades(); !slices.Equal(upgrades, []string{"GAPLUG"}) {
		t.Errorf("Expected [GAPLUG], got %v", upgrades)
	}
}

func TestState(t *testing.T) {
	d := &drawable.Drawable{Facings: 8, Tiers: 2}

	unit := object.NewUnit("none", "LTNK", 40, 0x80, false)
	state := unit.State(d, 0.5, 0.25)
	if state != (drawable.State{Facing: 4, Tier: 1}) {
		t.Errorf("Unexpected state %+v", state)
	}

	unit.Upgrades[0] = "GAPLUG"
	if unit.State(d, 0.5, 0.25).Variant != 0 {
		t.Errorf("Expected units to ignore upgrade slots")
	}

	if unit = object.NewUnit("none", "LTNK", -10, 0, true); unit.Health != 0 || !unit.OnBridge {
		t.Errorf("Unexpected unit %+v", unit)
	}
}
