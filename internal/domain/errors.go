package domain

import "errors"

var (
	// ErrInvalidRequest is returned when the tender request is malformed
	// or has no processable items.
	ErrInvalidRequest = errors.New("invalid tender request")

	// ErrCatalogUnavailable is returned when the catalog store query fails.
	ErrCatalogUnavailable = errors.New("catalog store unavailable")

	// ErrSemanticUnavailable is returned when the semantic provider fails;
	// the engine degrades to a neutral semantic score.
	ErrSemanticUnavailable = errors.New("semantic provider unavailable")

	// ErrCacheMiss is returned when a key is not found in the resolver cache.
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheUnavailable is returned when the cache backend cannot be reached.
	ErrCacheUnavailable = errors.New("cache unavailable")
)
