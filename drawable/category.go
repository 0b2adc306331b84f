package drawable

import (
	"fmt"
	"strings"

	"github.com/mwantia/cncmaps/data"
	"github.com/mwantia/cncmaps/palette"
)

// Category groups drawables by the rules list they are defined in.
type Category int

const (
	Tile Category = iota
	Animation
	Vehicle
	Infantry
	Building
	Aircraft
	Overlay
	Terrain
)

// Categories lists every category in lookup order.
var Categories = [...]Category{
	Tile,
	Animation,
	Vehicle,
	Infantry,
	Building,
	Aircraft,
	Overlay,
	Terrain,
}

func (c Category) String() string {
	switch c {
	case Tile:
		return "tile"
	case Animation:
		return "animation"
	case Vehicle:
		return "vehicle"
	case Infantry:
		return "infantry"
	case Building:
		return "building"
	case Aircraft:
		return "aircraft"
	case Overlay:
		return "overlay"
	case Terrain:
		return "terrain"
	default:
		return "unknown"
	}
}

func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if strings.EqualFold(strings.TrimSpace(s), c.String()) {
			return c, nil
		}
	}
	return Tile, fmt.Errorf("%w: unknown category '%s'", data.ErrInvalid, s)
}

// Section returns the rules list naming the types of c. Tiles are defined
// by the theater and have no list.
func (c Category) Section() string {
	switch c {
	case Animation:
		return "Animations"
	case Vehicle:
		return "VehicleTypes"
	case Infantry:
		return "InfantryTypes"
	case Building:
		return "BuildingTypes"
	case Aircraft:
		return "AircraftTypes"
	case Overlay:
		return "OverlayTypes"
	case Terrain:
		return "TerrainTypes"
	default:
		return ""
	}
}

// defaults are the drawable properties assumed when the art omits them.
type defaults struct {
	palette    palette.Kind
	facings    int
	tiers      int
	shadow     bool
	remappable bool
}

func (c Category) defaults() defaults {
	switch c {
	case Animation:
		return defaults{palette: palette.Anim, facings: 1, tiers: 1}
	case Vehicle, Aircraft:
		return defaults{palette: palette.Unit, facings: 8, tiers: 1, shadow: true, remappable: true}
	case Infantry:
		return defaults{palette: palette.Unit, facings: 8, tiers: 1, shadow: true, remappable: true}
	case Building:
		return defaults{palette: palette.Unit, facings: 1, tiers: 2, shadow: true, remappable: true}
	case Overlay:
		return defaults{palette: palette.Overlay, facings: 1, tiers: 1}
	case Terrain:
		return defaults{palette: palette.Iso, facings: 1, tiers: 1, shadow: true}
	default:
		return defaults{palette: palette.Iso, facings: 1, tiers: 1}
	}
}
