package vfs

import (
	"github.com/mwantia/cncmaps/format"
	"github.com/mwantia/cncmaps/log"
)

type VirtualFileSystemOptions struct {
	LogLevel      log.LogLevel
	LogFile       string
	NoTerminalLog bool
	Logger        *log.Logger
	Registry      *format.Registry
}

type VirtualFileSystemOption func(*VirtualFileSystemOptions) error

func newDefaultVirtualFileSystemOptions() *VirtualFileSystemOptions {
	return &VirtualFileSystemOptions{
		LogLevel: log.Info,
	}
}

func WithLogLevel(logLevel log.LogLevel) VirtualFileSystemOption {
	return func(opts *VirtualFileSystemOptions) error {
		opts.LogLevel = logLevel
		return nil
	}
}

func WithoutTerminalLog() VirtualFileSystemOption {
	return func(opts *VirtualFileSystemOptions) error {
		opts.NoTerminalLog = true
		return nil
	}
}

func WithLogFile(logFile string) VirtualFileSystemOption {
	return func(opts *VirtualFileSystemOptions) error {
		opts.LogFile = logFile
		return nil
	}
}

// WithLogger uses logger instead of creating one from the log options.
func WithLogger(logger *log.Logger) VirtualFileSystemOption {
	return func(opts *VirtualFileSystemOptions) error {
		opts.Logger = logger
		return nil
	}
}

// WithRegistry decodes resolved entries through registry instead of a
// registry holding only the built-in formats.
func WithRegistry(registry *format.Registry) VirtualFileSystemOption {
	return func(opts *VirtualFileSystemOptions) error {
		opts.Registry = registry
		return nil
	}
}
