package drawable

import "github.com/mwantia/cncmaps/log"

type BuilderOption func(*BuilderOptions) error

type BuilderOptions struct {
	Logger *log.Logger
	// Extension of theater specific sprites, e.g. ".tem".
	TheaterExtension string
	// Letter substituted into new theater image names.
	NewTheaterChar string
}

func newDefaultBuilderOptions() *BuilderOptions {
	return &BuilderOptions{
		Logger:           log.Discard(),
		TheaterExtension: ".tem",
		NewTheaterChar:   "T",
	}
}

func WithLogger(logger *log.Logger) BuilderOption {
	return func(o *BuilderOptions) error {
		o.Logger = logger
		return nil
	}
}

// WithTheater sets the extension and new theater letter of the active
// theater.
func WithTheater(extension, newTheaterChar string) BuilderOption {
	return func(o *BuilderOptions) error {
		o.TheaterExtension = extension
		o.NewTheaterChar = newTheaterChar
		return nil
	}
}
