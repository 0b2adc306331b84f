package cmd

import (
	"context"
	"io"

	"github.com/mwantia/cncmaps/config"
	"github.com/mwantia/cncmaps/drawable"
	"github.com/mwantia/cncmaps/object"
	"github.com/mwantia/cncmaps/surface"
	"github.com/mwantia/cncmaps/vfs"
)

// API is the part of the renderer commands operate on.
type API interface {
	// Config returns the configuration the renderer was created with.
	Config() *config.Config

	// FileSystem returns the virtual file system holding the game assets.
	FileSystem() *vfs.VirtualFileSystem

	// Resolver returns the drawables loaded from the rules.
	Resolver() *drawable.Resolver

	// RenderObject renders obj and saves it into the output directory.
	RenderObject(ctx context.Context, obj *object.GameObject) (*surface.Surface, error)

	// RenderAll renders every object, continuing after failures.
	RenderAll(ctx context.Context, objs []*object.GameObject) error
}

// Command represents an executable command of the command line.
type Command interface {
	// Name returns the command identifier
	Name() string

	// Description returns human-readable help text
	Description() string

	// Usage returns a usage string for help (e.g. "render [--owner name] [types...]")
	Usage() string

	// Execute runs the command with parsed arguments
	// The writer parameter is where command output should be written
	// Returns exit code (0 = success) and error message
	Execute(ctx context.Context, api API, args *CommandArgs, writer io.Writer) (int, error)

	// GetFlags returns the flag set for this command (this is optional)
	GetFlags() *CommandFlagSet
}
