package builtin

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"github.com/mwantia/cncmaps/cmd"
	"github.com/mwantia/cncmaps/data"
)

// ExtractCommand copies entries resolved through the file system to disk.
type ExtractCommand struct {
}

func (e *ExtractCommand) Name() string {
	return "extract"
}

func (e *ExtractCommand) Description() string {
	return "Extract entries from the file system"
}

func (e *ExtractCommand) Usage() string {
	return "extract [--dest path] <names...>"
}

func (e *ExtractCommand) Execute(ctx context.Context, api cmd.API, args *cmd.CommandArgs, writer io.Writer) (int, error) {
	if len(args.Args) == 0 {
		return 2, fmt.Errorf("extract: missing entry name")
	}

	dest := args.String("dest")
	if err := os.MkdirAll(dest, 0755); err != nil {
		return 1, err
	}

	for _, name := range args.Args {
		content, err := api.FileSystem().Open(ctx, name)
		if err != nil {
			return 1, err
		}

		path := filepath.Join(dest, filepath.Base(name))
		if err := os.WriteFile(path, content, 0644); err != nil {
			return 1, err
		}
		fmt.Fprintf(writer, "Extracted '%s' (%s, %s) to '%s'\n", name, data.GetMIMEType(name), humanize.Bytes(uint64(len(content))), path)
	}
	return 0, nil
}

func (e *ExtractCommand) GetFlags() *cmd.CommandFlagSet {
	return &cmd.CommandFlagSet{
		Flags: map[string]*cmd.CommandFlag{
			"dest": {
				Name:        "dest",
				Short:       "D",
				Type:        "string",
				Default:     ".",
				Description: "Directory the entries are written to",
			},
		},
	}
}
