package composite

import (
	"image/color"

	"github.com/mwantia/cncmaps/log"
	"github.com/mwantia/cncmaps/palette"
)

type EngineOption func(*EngineOptions) error

// HouseColors resolves the remap color of an owner.
type HouseColors interface {
	HouseColor(owner string) (color.RGBA, bool)
}

type EngineOptions struct {
	Logger   *log.Logger
	Lighting *palette.Lighting
	Houses   HouseColors

	// Factor applied to the surface below shadow frames.
	ShadowIntensity float64
	// Height levels an object on a bridge is raised by.
	BridgeHeight int
}

func newDefaultEngineOptions() *EngineOptions {
	return &EngineOptions{
		Logger:          log.Discard(),
		ShadowIntensity: 0.5,
		BridgeHeight:    4,
	}
}

func WithLogger(logger *log.Logger) EngineOption {
	return func(o *EngineOptions) error {
		o.Logger = logger
		return nil
	}
}

// WithLighting applies l to every palette, scaled by the height of the
// object's tile.
func WithLighting(l palette.Lighting) EngineOption {
	return func(o *EngineOptions) error {
		o.Lighting = &l
		return nil
	}
}

// WithHouseColors remaps remappable drawables to the color of their owner.
func WithHouseColors(houses HouseColors) EngineOption {
	return func(o *EngineOptions) error {
		o.Houses = houses
		return nil
	}
}

func WithShadowIntensity(factor float64) EngineOption {
	return func(o *EngineOptions) error {
		o.ShadowIntensity = factor
		return nil
	}
}
