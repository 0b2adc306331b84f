package log

import "io"

type LoggerOptions struct {
	Level      LogLevel
	TimeFormat string

	File     string
	Rotation LoggerRotation

	Terminal bool
	Color    bool
	JSON     bool

	Writer io.Writer
}

// LoggerRotation configures the rotation of log files.
type LoggerRotation struct {
	MaxSize    int
	MaxBackups int
	MaxAge     int
	Compress   bool
}

type LoggerOption func(*LoggerOptions) error

func newDefaultLoggerOptions() *LoggerOptions {
	return &LoggerOptions{
		Level:      Info,
		TimeFormat: "2006-01-02 15:04:05",
		Rotation: LoggerRotation{
			MaxSize:    128,
			MaxBackups: 5,
			MaxAge:     16,
		},
		Terminal: true,
		Color:    true,
	}
}

func WithLevel(level LogLevel) LoggerOption {
	return func(opts *LoggerOptions) error {
		opts.Level = level
		return nil
	}
}

// WithLevelName parses name as the minimum level.
func WithLevelName(name string) LoggerOption {
	return func(opts *LoggerOptions) error {
		level, err := Parse(name)
		if err != nil {
			return err
		}
		opts.Level = level
		return nil
	}
}

// WithFile additionally writes to a rotated log file at path.
func WithFile(path string) LoggerOption {
	return func(opts *LoggerOptions) error {
		opts.File = path
		return nil
	}
}

func WithRotation(rotation LoggerRotation) LoggerOption {
	return func(opts *LoggerOptions) error {
		opts.Rotation = rotation
		return nil
	}
}

// WithTerminal toggles writing to stdout. Without a file stdout is used
// regardless.
func WithTerminal(enabled bool) LoggerOption {
	return func(opts *LoggerOptions) error {
		opts.Terminal = enabled
		return nil
	}
}

func WithJSON(enabled bool) LoggerOption {
	return func(opts *LoggerOptions) error {
		opts.JSON = enabled
		return nil
	}
}

// WithWriter writes uncolored lines to w instead of stdout.
func WithWriter(w io.Writer) LoggerOption {
	return func(opts *LoggerOptions) error {
		opts.Writer = w
		opts.Terminal = false
		opts.Color = false
		return nil
	}
}
