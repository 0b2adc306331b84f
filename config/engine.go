package config

import (
	"fmt"
	"strings"

	"github.com/mwantia/cncmaps/data"
)

// EngineType selects the game whose asset layout is rendered.
type EngineType string

const (
	EngineAuto   EngineType = "auto"
	TiberianSun  EngineType = "ts"
	Firestorm    EngineType = "fs"
	RedAlert2    EngineType = "ra2"
	YurisRevenge EngineType = "yr"
)

func ParseEngine(s string) (EngineType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return EngineAuto, nil
	case "ts", "tiberiansun":
		return TiberianSun, nil
	case "fs", "firestorm":
		return Firestorm, nil
	case "ra2", "redalert2":
		return RedAlert2, nil
	case "yr", "yurisrevenge":
		return YurisRevenge, nil
	}
	return EngineAuto, fmt.Errorf("%w: unknown engine '%s'", data.ErrInvalid, s)
}

func (e *EngineType) UnmarshalText(text []byte) error {
	engine, err := ParseEngine(string(text))
	if err != nil {
		return err
	}
	*e = engine
	return nil
}

// Resolve maps EngineAuto to the engine assumed when none is detected.
func (e EngineType) Resolve() EngineType {
	if e == EngineAuto || e == "" {
		return YurisRevenge
	}
	return e
}

// IsTiberianSun reports whether e uses the TS asset layout.
func (e EngineType) IsTiberianSun() bool {
	e = e.Resolve()
	return e == TiberianSun || e == Firestorm
}

// TileSize returns the pixel size of one isometric cell.
func (e EngineType) TileSize() (int, int) {
	if e.IsTiberianSun() {
		return 48, 24
	}
	return 60, 30
}

// RulesFiles lists the documents merged, in order, into the rules and art
// databases of an engine.
type RulesFiles struct {
	Rules []string
	Art   []string
}

func (e EngineType) RulesFiles() RulesFiles {
	switch e.Resolve() {
	case YurisRevenge:
		return RulesFiles{Rules: []string{"rulesmd.ini"}, Art: []string{"artmd.ini"}}
	case Firestorm:
		return RulesFiles{Rules: []string{"rules.ini", "firestrm.ini"}, Art: []string{"art.ini", "artfs.ini"}}
	default:
		return RulesFiles{Rules: []string{"rules.ini"}, Art: []string{"art.ini"}}
	}
}

// Archives lists the engine archives in the order they are added. Earlier
// names take precedence, so expansions come before the base game.
func (e EngineType) Archives() []string {
	engine := e.Resolve()

	var names []string
	numbered := func(format string, from, to int) {
		for i := from; i >= to; i-- {
			names = append(names, fmt.Sprintf(format, i))
		}
	}

	switch engine {
	case TiberianSun, Firestorm:
		numbered("expand%02d.mix", 99, 1)
		numbered("ecache%02d.mix", 99, 0)
		if engine == Firestorm {
			names = append(names, "e01sc01.mix", "e01sc02.mix", "e01vox01.mix", "e01vox02.mix")
		}
		names = append(names,
			"tibsun.mix", "cache.mix", "conquer.mix", "local.mix",
			"isosnow.mix", "isotemp.mix", "sidec01.mix", "sidec02.mix",
		)

	case RedAlert2, YurisRevenge:
		yr := engine == YurisRevenge
		if yr {
			numbered("expandmd%02d.mix", 99, 1)
			numbered("ecachemd%02d.mix", 99, 0)
			names = append(names, "ra2md.mix")
		} else {
			numbered("expand%02d.mix", 99, 1)
			numbered("ecache%02d.mix", 99, 0)
		}
		names = append(names, "ra2.mix")

		for _, base := range []struct{ md, plain string }{
			{"langmd.mix", "language.mix"},
			{"cachemd.mix", "cache.mix"},
			{"localmd.mix", "local.mix"},
			{"conqmd.mix", "conquer.mix"},
			{"genermd.mix", "generic.mix"},
			{"isogenmd.mix", "isogen.mix"},
			{"cameomd.mix", "cameo.mix"},
			{"multimd.mix", "multi.mix"},
		} {
			if yr {
				names = append(names, base.md)
			}
			names = append(names, base.plain)
		}
	}

	return names
}
