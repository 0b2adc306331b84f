// Package builtin holds the commands shipped with the command line.
package builtin

import "github.com/mwantia/cncmaps/cmd"

// NewRegistry returns a registry holding every builtin command.
func NewRegistry() (*cmd.Registry, error) {
	return cmd.NewRegistry(
		&RenderCommand{},
		&LsCommand{},
		&ExtractCommand{},
	)
}
