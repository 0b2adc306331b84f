package data

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Standard errors that sources, loaders and the render pipeline should use.
var (
	// Resolution errors
	ErrNotExist         = errors.New("cncmaps: entry does not exist")
	ErrDrawableNotFound = errors.New("cncmaps: drawable not found")
	ErrExist            = errors.New("cncmaps: entry already exists")

	// Format errors
	ErrFormat      = errors.New("cncmaps: invalid format")
	ErrChecksum    = errors.New("cncmaps: checksum mismatch")
	ErrUnsupported = errors.New("cncmaps: unsupported format feature")

	// Source lifecycle errors
	ErrSourceFailed = errors.New("cncmaps: source initialization failed")
	ErrNotDirectory = errors.New("cncmaps: not a directory")
	ErrPermission   = errors.New("cncmaps: permission denied")
	ErrUnknownProto = errors.New("cncmaps: unknown source protocol")

	// State errors
	ErrState   = errors.New("cncmaps: invalid object state")
	ErrClosed  = errors.New("cncmaps: already closed")
	ErrInvalid = errors.New("cncmaps: invalid argument")
)

// NotFoundError reports a name that could not be resolved. Kind names the
// namespace that was searched, e.g. "entry" or "drawable".
type NotFoundError struct {
	Kind string
	Name string
}

func (e *NotFoundError) Error() string {
	if e.Kind == KindDrawable {
		return fmt.Sprintf("cncmaps: not found drawable type of obj=%s", e.Name)
	}
	return fmt.Sprintf("cncmaps: %s '%s' not found", e.Kind, e.Name)
}

func (e *NotFoundError) Is(target error) bool {
	switch target {
	case ErrNotExist:
		return true
	case ErrDrawableNotFound:
		return e.Kind == KindDrawable
	}
	return false
}

const (
	KindEntry    = "entry"
	KindDrawable = "drawable"
	KindPalette  = "palette"
	KindCommand  = "command"
)

func NewNotFound(kind, name string) error {
	return &NotFoundError{Kind: kind, Name: name}
}

// FormatError wraps a decoding failure of a named payload.
type FormatError struct {
	Format string
	Name   string
	Err    error
}

func (e *FormatError) Error() string {
	var sb strings.Builder
	sb.WriteString("cncmaps: invalid ")
	sb.WriteString(e.Format)
	if e.Name != "" {
		sb.WriteString(" '")
		sb.WriteString(e.Name)
		sb.WriteString("'")
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

func (e *FormatError) Is(target error) bool {
	return target == ErrFormat
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

func NewFormatError(format, name string, err error) error {
	return &FormatError{Format: format, Name: name, Err: err}
}

// StateError describes object state a drawable cannot represent.
type StateError struct {
	Name   string
	Reason string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("cncmaps: state of '%s' not representable: %s", e.Name, e.Reason)
}

func (e *StateError) Is(target error) bool {
	return target == ErrState
}

type Errors struct {
	mu     sync.RWMutex
	errors []error
}

func (e *Errors) Add(err error) {
	if err == nil {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.errors = append(e.errors, err)
}

func (e *Errors) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return len(e.errors)
}

func (e *Errors) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.errors = make([]error, 0)
}

func (e *Errors) Errors() error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if len(e.errors) == 0 {
		return nil
	}

	return errors.Join(e.errors...)
}
