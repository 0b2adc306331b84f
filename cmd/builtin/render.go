package builtin

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/mwantia/cncmaps/cmd"
	"github.com/mwantia/cncmaps/object"
	"github.com/mwantia/cncmaps/renderer"
)

// RenderCommand renders the named types, or the demo objects when no type
// is named, into the output directory.
type RenderCommand struct {
}

func (r *RenderCommand) Name() string {
	return "render"
}

func (r *RenderCommand) Description() string {
	return "Render game objects into the output directory"
}

func (r *RenderCommand) Usage() string {
	return "render [--owner name] [--health n] [--direction n] [--structure] [--bridge] [--upgrade type] [types...]"
}

func (r *RenderCommand) Execute(ctx context.Context, api cmd.API, args *cmd.CommandArgs, writer io.Writer) (int, error) {
	objs := r.objects(args)
	if len(objs) == 0 {
		return 2, fmt.Errorf("render: no objects")
	}

	err := api.RenderAll(ctx, objs)
	failed := 0
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		failed = len(joined.Unwrap())
	} else if err != nil {
		failed = len(objs)
	}

	fmt.Fprintf(writer, "Rendered %d of %d objects into '%s'\n", len(objs)-failed, len(objs), api.Config().Output.Directory)
	if err != nil {
		return 1, err
	}
	return 0, nil
}

func (r *RenderCommand) objects(args *cmd.CommandArgs) []*object.GameObject {
	if len(args.Args) == 0 {
		return renderer.DemoObjects()
	}

	owner := args.String("owner")
	health := args.Int("health")
	direction := uint8(min(max(args.Int("direction"), 0), 255))
	upgrades := args.Strings("upgrade")

	objs := make([]*object.GameObject, 0, len(args.Args))
	for _, name := range args.Args {
		name = strings.ToUpper(name)
		if args.Bool("structure") {
			obj := object.NewStructure(owner, name, health, direction)
			for i, upgrade := range upgrades {
				if i < len(obj.Upgrades) {
					obj.Upgrades[i] = strings.ToUpper(upgrade)
				}
			}
			objs = append(objs, obj)
			continue
		}
		objs = append(objs, object.NewUnit(owner, name, health, direction, args.Bool("bridge")))
	}
	return objs
}

func (r *RenderCommand) GetFlags() *cmd.CommandFlagSet {
	return &cmd.CommandFlagSet{
		Flags: map[string]*cmd.CommandFlag{
			"owner": {
				Name:        "owner",
				Short:       "o",
				Type:        "string",
				Default:     "none",
				Description: "House owning the objects",
			},
			"health": {
				Name:        "health",
				Type:        "int",
				Default:     int64(100),
				Description: "Health in percent",
			},
			"direction": {
				Name:        "direction",
				Short:       "d",
				Type:        "int",
				Default:     int64(0x80),
				Description: "Facing direction 0-255",
			},
			"structure": {
				Name:        "structure",
				Short:       "s",
				Type:        "bool",
				Description: "Render the types as structures",
			},
			"bridge": {
				Name:        "bridge",
				Type:        "bool",
				Description: "Place units on a bridge",
			},
			"upgrade": {
				Name:        "upgrade",
				Short:       "u",
				Type:        "string",
				Multiple:    true,
				Description: "Upgrade installed on structures, repeatable",
			},
		},
	}
}
