// Package config holds the explicit configuration value of a render run.
package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"

	"github.com/mwantia/cncmaps/data"
)

type Config struct {
	Engine EngineType `json:"engine"`

	// Directory holding the game archives.
	MixDirectory string `json:"mix_directory"`
	// Source addresses (sqlite://, s3://, ...) added before everything else.
	Sources []SourceSettings `json:"sources"`
	// Loose override directories, highest precedence first.
	Directories []string `json:"directories"`
	// Archives added after the directories and before the engine archives.
	ExtraMixes []string `json:"extra_mixes"`

	TileWidth  int `json:"tile_width"`
	TileHeight int `json:"tile_height"`

	ActiveTheater TheaterType       `json:"active_theater"`
	Theaters      []TheaterSettings `json:"theaters"`

	// Health fractions below which the damaged and near-dead frames are
	// used. Zero values are read from the rules.
	ConditionYellow float64 `json:"condition_yellow"`
	ConditionRed    float64 `json:"condition_red"`

	Output OutputSettings `json:"output"`
	Log    LogSettings    `json:"log"`
}

type SourceSettings struct {
	Address string `json:"address"`
	// One of "uncached", "cache" or "cache-and-close".
	Cache string `json:"cache"`
}

type OutputSettings struct {
	Directory string `json:"directory"`
	// Edge length of the square surface each object is rendered on.
	Size int `json:"size"`

	SavePNG     bool `json:"save_png"`
	PNGQuality  int  `json:"png_quality"`
	SaveJPEG    bool `json:"save_jpeg"`
	JPEGQuality int  `json:"jpeg_quality"`

	// Number of objects rendered concurrently.
	Parallelism int `json:"parallelism"`
}

type LogSettings struct {
	Level      string `json:"level"`
	File       string `json:"file"`
	NoTerminal bool   `json:"no_terminal"`
	JSON       bool   `json:"json"`
}

// Default returns the configuration of engine with its default theaters.
func Default(engine EngineType) *Config {
	engine = engine.Resolve()
	tw, th := engine.TileSize()

	return &Config{
		Engine:        engine,
		TileWidth:     tw,
		TileHeight:    th,
		ActiveTheater: Temperate,
		Theaters:      DefaultTheaters(engine),
		Output: OutputSettings{
			Directory:   ".",
			Size:        300,
			SavePNG:     true,
			PNGQuality:  6,
			JPEGQuality: 90,
			Parallelism: 1,
		},
		Log: LogSettings{
			Level: "info",
		},
	}
}

// Parse decodes a JSON configuration on top of the defaults of the engine
// it names.
func Parse(buf []byte) (*Config, error) {
	var head struct {
		Engine EngineType `json:"engine"`
	}
	if err := json.Unmarshal(buf, &head); err != nil {
		return nil, fmt.Errorf("%w: %v", data.ErrInvalid, err)
	}

	cfg := Default(head.Engine)
	if err := json.Unmarshal(buf, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", data.ErrInvalid, err)
	}
	cfg.Engine = cfg.Engine.Resolve()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Load(path string) (*Config, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(buf)
}

func (c *Config) Validate() error {
	if c.TileWidth <= 0 || c.TileHeight <= 0 {
		return fmt.Errorf("%w: tile size %dx%d", data.ErrInvalid, c.TileWidth, c.TileHeight)
	}
	if c.Output.Size <= 0 {
		return fmt.Errorf("%w: output size %d", data.ErrInvalid, c.Output.Size)
	}
	if c.Output.PNGQuality < 0 || c.Output.PNGQuality > 9 {
		return fmt.Errorf("%w: png quality %d", data.ErrInvalid, c.Output.PNGQuality)
	}
	if c.Output.JPEGQuality < 1 || c.Output.JPEGQuality > 100 {
		return fmt.Errorf("%w: jpeg quality %d", data.ErrInvalid, c.Output.JPEGQuality)
	}
	if c.ConditionRed < 0 || c.ConditionYellow < 0 || (c.ConditionYellow > 0 && c.ConditionRed > c.ConditionYellow) {
		return fmt.Errorf("%w: damage conditions %v/%v", data.ErrInvalid, c.ConditionYellow, c.ConditionRed)
	}
	for _, src := range c.Sources {
		if src.Address == "" {
			return fmt.Errorf("%w: empty source address", data.ErrInvalid)
		}
		if _, err := data.ParseCacheMethod(src.Cache); err != nil {
			return err
		}
	}
	if _, err := c.Theater(); err != nil {
		return err
	}
	return nil
}

// Theater returns the settings of the active theater.
func (c *Config) Theater() (*TheaterSettings, error) {
	for i := range c.Theaters {
		if c.Theaters[i].Type == c.ActiveTheater {
			return &c.Theaters[i], nil
		}
	}
	return nil, fmt.Errorf("%w: theater '%s' not configured", data.ErrInvalid, c.ActiveTheater)
}
