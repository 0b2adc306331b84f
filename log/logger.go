package log

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger writes leveled lines to a shared output. Loggers derived with
// Named share the output and its lock.
type Logger struct {
	mu  *sync.Mutex
	out io.Writer

	name       string
	level      LogLevel
	timeFormat string
	color      bool
	json       bool
}

type logEntry struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Service   string `json:"service,omitempty"`
	Message   string `json:"message"`
}

func NewLogger(name string, opts ...LoggerOption) (*Logger, error) {
	options := newDefaultLoggerOptions()
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}

	return &Logger{
		mu:         &sync.Mutex{},
		out:        newOutput(options),
		name:       name,
		level:      options.Level,
		timeFormat: options.TimeFormat,
		color:      options.Color && options.Terminal && options.Writer == nil,
		json:       options.JSON,
	}, nil
}

// NewWriterLogger creates a logger writing uncolored lines to w.
func NewWriterLogger(name string, level LogLevel, w io.Writer) *Logger {
	logger, _ := NewLogger(name, WithLevel(level), WithWriter(w))
	return logger
}

// Discard returns a logger that drops every message.
func Discard() *Logger {
	return NewWriterLogger("", Fatal+1, io.Discard)
}

func newOutput(options *LoggerOptions) io.Writer {
	var writers []io.Writer

	if options.Writer != nil {
		writers = append(writers, options.Writer)
	}
	if options.Terminal {
		writers = append(writers, os.Stdout)
	}
	if options.File != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   options.File,
			MaxSize:    options.Rotation.MaxSize,
			MaxBackups: options.Rotation.MaxBackups,
			MaxAge:     options.Rotation.MaxAge,
			Compress:   options.Rotation.Compress,
		})
	}

	switch len(writers) {
	case 0:
		return os.Stdout
	case 1:
		return writers[0]
	}
	return io.MultiWriter(writers...)
}

func (l *Logger) Name() string {
	return l.name
}

func (l *Logger) Enabled(level LogLevel) bool {
	return level >= l.level
}

func (l *Logger) log(level LogLevel, msg string, args ...any) {
	if !l.Enabled(level) {
		return
	}

	line := l.format(level, time.Now(), fmt.Sprintf(msg, args...))

	l.mu.Lock()
	l.out.Write(line)
	l.mu.Unlock()

	if level == Fatal {
		os.Exit(1)
	}
}

func (l *Logger) format(level LogLevel, at time.Time, msg string) []byte {
	timestamp := at.Format(l.timeFormat)

	if l.json {
		buf, _ := json.Marshal(logEntry{
			Timestamp: timestamp,
			Level:     level.String(),
			Service:   l.name,
			Message:   msg,
		})
		return append(buf, '\n')
	}

	line := fmt.Sprintf("[%s] %-5s", timestamp, level)
	if l.name != "" {
		line += " [" + l.name + "]"
	}
	line += " " + msg

	if l.color {
		line = level.color() + line + colorReset
	}
	return []byte(line + "\n")
}

func (l *Logger) Debug(msg string, args ...any) {
	l.log(Debug, msg, args...)
}

func (l *Logger) Info(msg string, args ...any) {
	l.log(Info, msg, args...)
}

func (l *Logger) Warn(msg string, args ...any) {
	l.log(Warn, msg, args...)
}

func (l *Logger) Error(msg string, args ...any) {
	l.log(Error, msg, args...)
}

func (l *Logger) Fatal(msg string, args ...any) {
	l.log(Fatal, msg, args...)
}

// Named returns a logger for a component below l, named "<l>/<name>".
func (l *Logger) Named(name string) *Logger {
	sub := *l
	if l.name != "" {
		sub.name = l.name + "/" + name
	} else {
		sub.name = name
	}
	return &sub
}
