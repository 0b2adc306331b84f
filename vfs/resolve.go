package vfs

import (
	"context"
	"fmt"

	"github.com/mwantia/cncmaps/data"
	"github.com/mwantia/cncmaps/format"
)

// Resolve returns name decoded as T through the decoder registered for T.
// Sources with a caching method return the same instance for every call.
func Resolve[T any](ctx context.Context, v *VirtualFileSystem, name string) (T, error) {
	var zero T

	decode, ok := format.Lookup[T](v.registry)
	if !ok {
		return zero, fmt.Errorf("%w: no decoder registered for %s", data.ErrInvalid, format.TypeName[T]())
	}

	obj, err := v.resolve(ctx, name, format.TypeName[T](), func(buf []byte) (any, error) {
		return decode(name, buf)
	})
	if err != nil {
		return zero, err
	}

	return obj.(T), nil
}

func (v *VirtualFileSystem) resolve(ctx context.Context, name, kind string, decode func([]byte) (any, error)) (any, error) {
	entry, obj, err := v.lookup(name, kind)
	if err != nil {
		return nil, err
	}
	if obj != nil {
		return obj, nil
	}

	if !entry.method.Caches() {
		buf, err := v.read(ctx, entry, name)
		if err != nil {
			return nil, err
		}
		return decode(buf)
	}

	key := cacheKey{source: entry.id, kind: kind, name: normalizeName(name)}
	obj, err, _ = v.group.Do(key.String(), func() (any, error) {
		if obj, ok := v.cached(key); ok {
			return obj, nil
		}

		buf, err := v.read(ctx, entry, name)
		if err != nil {
			return nil, err
		}

		obj, err := decode(buf)
		if err != nil {
			return nil, err
		}

		v.cacheMu.Lock()
		v.cache[key] = obj
		v.cacheMu.Unlock()

		return obj, nil
	})
	if entry.method == data.CacheAndClose {
		v.release(ctx, entry)
	}
	if err != nil {
		return nil, err
	}
	return obj, nil
}

// lookup finds the first source holding name. Cached objects are returned
// directly; released sources are reopened by read on a cache miss.
func (v *VirtualFileSystem) lookup(name, kind string) (*sourceEntry, any, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if v.closed {
		return nil, nil, data.ErrClosed
	}

	normalized := normalizeName(name)
	for _, entry := range v.sources {
		if !entry.src.Contains(name) {
			continue
		}

		if entry.method.Caches() {
			if obj, ok := v.cached(cacheKey{source: entry.id, kind: kind, name: normalized}); ok {
				return entry, obj, nil
			}
		}

		return entry, nil, nil
	}

	return nil, nil, data.NewNotFound(data.KindEntry, name)
}

func (v *VirtualFileSystem) cached(key cacheKey) (any, bool) {
	v.cacheMu.RLock()
	defer v.cacheMu.RUnlock()

	obj, ok := v.cache[key]
	return obj, ok
}
