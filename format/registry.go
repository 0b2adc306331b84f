// Package format holds the typed decoders that turn resolved entry bytes
// into in-memory asset objects.
package format

import (
	"reflect"
	"sync"
)

// Decoder turns the bytes of the named entry into a decoded object. It must
// reject malformed input with a *data.FormatError.
type Decoder[T any] func(name string, buf []byte) (T, error)

// Registry maps decoded types to their decoders. Each file system owns one.
type Registry struct {
	mu       sync.RWMutex
	decoders map[reflect.Type]any
}

// NewRegistry returns a registry holding the decoders of every asset format
// of this package.
func NewRegistry() *Registry {
	r := &Registry{
		decoders: make(map[reflect.Type]any),
	}

	Register(r, DecodeRaw)
	Register(r, DecodePal)
	Register(r, DecodeShp)
	Register(r, DecodePcx)
	Register(r, DecodeIni)
	return r
}

// Register binds decoder to the decoded type T in r, replacing any previous
// decoder for T.
func Register[T any](r *Registry, decoder Decoder[T]) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.decoders[reflect.TypeFor[T]()] = decoder
}

// Lookup returns the decoder registered for T in r.
func Lookup[T any](r *Registry) (Decoder[T], bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.decoders[reflect.TypeFor[T]()]
	if !ok {
		return nil, false
	}
	return d.(Decoder[T]), true
}

func TypeName[T any]() string {
	return reflect.TypeFor[T]().String()
}

// DecodeRaw returns buf unchanged.
func DecodeRaw(_ string, buf []byte) ([]byte, error) {
	return buf, nil
}
