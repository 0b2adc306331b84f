package data

import (
	"fmt"
	"strings"
)

// CacheMethod controls how the virtual file system treats decoded objects
// resolved from a source.
type CacheMethod int

const (
	// Uncached re-reads and re-decodes the entry on every resolution.
	Uncached CacheMethod = iota
	// Cache memoizes decoded objects for the lifetime of the file system.
	Cache
	// CacheAndClose memoizes like Cache and releases the source after the
	// first successful read.
	CacheAndClose
)

func (m CacheMethod) String() string {
	switch m {
	case Uncached:
		return "uncached"
	case Cache:
		return "cache"
	case CacheAndClose:
		return "cache-and-close"
	default:
		return "unknown"
	}
}

func (m CacheMethod) Caches() bool {
	return m == Cache || m == CacheAndClose
}

func ParseCacheMethod(s string) (CacheMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "uncached", "none":
		return Uncached, nil
	case "cache":
		return Cache, nil
	case "cache-and-close", "cacheandclose":
		return CacheAndClose, nil
	}
	return Uncached, fmt.Errorf("%w: cache method '%s'", ErrInvalid, s)
}
