package domain

import (
	"context"
	"time"
)

// CatalogStore is the read contract of the deduplicated products database.
type CatalogStore interface {
	// FindByPrefix returns products whose classification code starts
	// with the given prefix, most-supplied first.
	FindByPrefix(ctx context.Context, codePrefix string, limit int) ([]Product, error)

	// FindEnhanced combines the prefix filter with weighted full-text
	// search; returned products carry TextScore when the store supports
	// text search. Implementations without that capability fall back to
	// plain prefix filtering.
	FindEnhanced(ctx context.Context, codePrefix string, weightedTerms map[string]float64, limit int) ([]Product, error)
}

// SemanticProvider scores candidate texts against a query text, batched.
// Scores are in [0,1]. Failures are treated as "no semantic signal" by
// the engine, never as fatal.
type SemanticProvider interface {
	Score(ctx context.Context, query string, candidates []string) ([]float64, error)
}

// CacheRepository is the resolver's code→candidates cache. Implementations
// must be safe for concurrent use by parallel item tasks.
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]Product, error)
	Set(ctx context.Context, key string, products []Product, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
