package builtin

import (
	"context"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"

	"github.com/mwantia/cncmaps/cmd"
	"github.com/mwantia/cncmaps/drawable"
)

// LsCommand lists the sources of the file system and the loaded drawables.
type LsCommand struct {
}

func (ls *LsCommand) Name() string {
	return "ls"
}

func (ls *LsCommand) Description() string {
	return "List sources and loaded drawables"
}

func (ls *LsCommand) Usage() string {
	return "ls [--sources] [--category name]"
}

func (ls *LsCommand) Execute(ctx context.Context, api cmd.API, args *cmd.CommandArgs, writer io.Writer) (int, error) {
	onlySources := args.Bool("sources")
	category := args.String("category")

	if category == "" || onlySources {
		sources := api.FileSystem().Sources()
		fmt.Fprintf(writer, "Sources (%d):\n", len(sources))
		for _, info := range sources {
			state := ""
			if info.Released {
				state = " released"
			}
			fmt.Fprintf(writer, "  %s  %-20s %-16s %s entries%s\n",
				info.ID, info.Name, info.Method, humanize.Comma(int64(info.Entries)), state)
		}
	}
	if onlySources {
		return 0, nil
	}

	categories := drawable.Categories[:]
	if category != "" {
		c, err := drawable.ParseCategory(category)
		if err != nil {
			return 2, err
		}
		categories = []drawable.Category{c}
	}

	resolver := api.Resolver()
	for _, c := range categories {
		fmt.Fprintf(writer, "%s (%d):\n", c, resolver.Len(c))
		for _, name := range resolver.Names(c) {
			d, _, _ := resolver.Lookup(name)
			size := d.Size()
			fmt.Fprintf(writer, "  %-16s %-16s %dx%d\n", name, d.Image, size.X, size.Y)
		}
	}
	return 0, nil
}

func (ls *LsCommand) GetFlags() *cmd.CommandFlagSet {
	return &cmd.CommandFlagSet{
		Flags: map[string]*cmd.CommandFlag{
			"sources": {
				Name:        "sources",
				Type:        "bool",
				Description: "Only list the sources",
			},
			"category": {
				Name:        "category",
				Short:       "C",
				Type:        "string",
				Description: "Only list drawables of the category",
			},
		},
	}
}
