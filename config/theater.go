package config

import (
	"fmt"
	"strings"

	"github.com/mwantia/cncmaps/data"
)

// TheaterType names a themed asset set.
type TheaterType string

const (
	Temperate TheaterType = "temperate"
	Snow      TheaterType = "snow"
	Urban     TheaterType = "urban"
	Desert    TheaterType = "desert"
	NewUrban  TheaterType = "newurban"
	Lunar     TheaterType = "lunar"
)

func ParseTheater(s string) (TheaterType, error) {
	switch t := TheaterType(strings.ToLower(strings.TrimSpace(s))); t {
	case Temperate, Snow, Urban, Desert, NewUrban, Lunar:
		return t, nil
	}
	return "", fmt.Errorf("%w: unknown theater '%s'", data.ErrInvalid, s)
}

func (t *TheaterType) UnmarshalText(text []byte) error {
	theater, err := ParseTheater(string(text))
	if err != nil {
		return err
	}
	*t = theater
	return nil
}

// TheaterSettings lists the archives and palettes of one theater.
type TheaterSettings struct {
	Type TheaterType `json:"type"`

	// File extension of theater specific sprites, e.g. ".tem".
	Extension string `json:"extension"`
	// Letter substituted into the second position of new theater images.
	NewTheaterChar string `json:"new_theater_char"`

	Mixes []string `json:"mixes"`

	IsoPalette     string `json:"iso_palette"`
	UnitPalette    string `json:"unit_palette"`
	OverlayPalette string `json:"overlay_palette"`
	AnimPalette    string `json:"anim_palette"`
}

func theater(t TheaterType, ext, char, isoMix, shortMd, name, short string, md bool) TheaterSettings {
	mixes := []string{"iso" + isoMix + ".mix"}
	if md {
		mixes = append(mixes, "iso"+shortMd+"md.mix")
	}
	mixes = append(mixes, name+".mix", short+".mix")

	return TheaterSettings{
		Type:           t,
		Extension:      ext,
		NewTheaterChar: char,
		Mixes:          mixes,
		IsoPalette:     "iso" + short + ".pal",
		UnitPalette:    "unit" + short + ".pal",
		OverlayPalette: name + ".pal",
		AnimPalette:    "anim.pal",
	}
}

// DefaultTheaters returns the theaters shipped with engine.
func DefaultTheaters(engine EngineType) []TheaterSettings {
	if engine.IsTiberianSun() {
		return []TheaterSettings{
			theater(Temperate, ".tem", "T", "temp", "", "temperat", "tem", false),
			theater(Snow, ".sno", "A", "snow", "", "snow", "sno", false),
		}
	}

	md := engine.Resolve() == YurisRevenge
	theaters := []TheaterSettings{
		theater(Temperate, ".tem", "T", "temp", "tem", "temperat", "tem", md),
		theater(Snow, ".sno", "A", "snow", "sno", "snow", "sno", md),
		theater(Urban, ".urb", "U", "urb", "urb", "urban", "urb", md),
	}
	if md {
		theaters = append(theaters,
			theater(Desert, ".des", "D", "des", "des", "desert", "des", md),
			theater(NewUrban, ".ubn", "N", "ubn", "ubn", "urbann", "ubn", md),
			theater(Lunar, ".lun", "L", "lun", "lun", "lunar", "lun", md),
		)
	}
	return theaters
}
