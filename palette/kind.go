package palette

import (
	"fmt"
	"strings"

	"github.com/mwantia/cncmaps/data"
)

// Kind names the theater palette a drawable is rendered with.
type Kind int

const (
	Iso Kind = iota
	Unit
	Overlay
	Anim
)

func (k Kind) String() string {
	switch k {
	case Iso:
		return "iso"
	case Unit:
		return "unit"
	case Overlay:
		return "overlay"
	case Anim:
		return "anim"
	default:
		return "unknown"
	}
}

func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "iso":
		return Iso, nil
	case "unit":
		return Unit, nil
	case "overlay", "ovl":
		return Overlay, nil
	case "anim":
		return Anim, nil
	}
	return Iso, fmt.Errorf("%w: unknown palette kind '%s'", data.ErrInvalid, s)
}
