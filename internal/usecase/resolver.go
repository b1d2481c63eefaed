package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tendermatch/backend/internal/domain"
)

// subCodeSeparator splits a classification code from its trailing sub-code,
// e.g. "32.99.12-130" → base "32.99.12", sub-code "130".
const subCodeSeparator = "-"

// ResolverConfig holds the classification search knobs.
type ResolverConfig struct {
	FallbackEnabled bool
	SearchDepth     int
	CacheEnabled    bool
	CacheTTL        time.Duration
}

// HierarchicalResolver expands a classification code into progressively
// broader prefix patterns and queries the catalog store until enough
// candidates accumulate.
type HierarchicalResolver struct {
	store           domain.CatalogStore
	cache           domain.CacheRepository
	fallbackEnabled bool
	searchDepth     int
	cacheEnabled    bool
	cacheTTL        time.Duration
}

// NewHierarchicalResolver creates a resolver. The cache may be nil, which
// disables caching regardless of configuration.
func NewHierarchicalResolver(store domain.CatalogStore, cache domain.CacheRepository, config ResolverConfig) *HierarchicalResolver {
	depth := config.SearchDepth
	if depth <= 0 {
		depth = 3
	}
	ttl := config.CacheTTL
	if ttl == 0 {
		ttl = time.Hour
	}
	return &HierarchicalResolver{
		store:           store,
		cache:           cache,
		fallbackEnabled: config.FallbackEnabled,
		searchDepth:     depth,
		cacheEnabled:    config.CacheEnabled && cache != nil,
		cacheTTL:        ttl,
	}
}

// Resolve returns candidate products for a classification code,
// deduplicated by product hash and capped at maxResults. Patterns are
// tried narrowest first and querying stops once minResults accumulate,
// so the store sees at most one round-trip per pattern.
func (r *HierarchicalResolver) Resolve(ctx context.Context, code string, minResults, maxResults int) ([]domain.Product, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("%w: empty classification code", domain.ErrInvalidRequest)
	}

	// The key carries both bounds: a sweep stopped early by a small
	// minimum must never serve a call asking for more candidates.
	cacheKey := fmt.Sprintf("okpd2:%s:%d:%d", code, minResults, maxResults)
	if r.cacheEnabled {
		if cached, err := r.cache.Get(ctx, cacheKey); err == nil {
			log.Debug().Str("code", code).Int("count", len(cached)).Msg("resolver cache hit")
			return cached, nil
		}
	}

	patterns := r.BuildPatterns(code)

	var results []domain.Product
	seen := make(map[string]bool)

	for _, pattern := range patterns {
		if len(results) >= minResults {
			break
		}

		products, err := r.store.FindByPrefix(ctx, pattern, maxResults)
		if err != nil {
			// A narrow pattern failing should not kill the broader ones,
			// but a total failure must surface to the caller.
			if len(results) > 0 {
				log.Warn().Err(err).Str("pattern", pattern).Msg("pattern lookup failed, keeping accumulated results")
				continue
			}
			return nil, fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err)
		}

		for _, p := range products {
			if seen[p.Hash] {
				continue
			}
			seen[p.Hash] = true
			results = append(results, p)
			if len(results) >= maxResults {
				break
			}
		}

		log.Debug().
			Str("pattern", pattern).
			Int("accumulated", len(results)).
			Msg("classification pattern queried")

		if len(results) >= maxResults {
			break
		}
	}

	if r.cacheEnabled && len(results) > 0 {
		if err := r.cache.Set(ctx, cacheKey, results, r.cacheTTL); err != nil {
			log.Warn().Err(err).Str("code", code).Msg("resolver cache write failed")
		}
	}

	return results, nil
}

// BuildPatterns returns search patterns from narrowest to broadest:
// the exact code, the base code without its sub-code, then shorter
// hierarchical prefixes down to the configured depth. Broadening past
// the exact code only happens when fallback is enabled.
func (r *HierarchicalResolver) BuildPatterns(code string) []string {
	patterns := []string{code}

	base := code
	if idx := strings.Index(code, subCodeSeparator); idx > 0 {
		base = code[:idx]
		if r.fallbackEnabled {
			patterns = append(patterns, base)
		}
	}

	if !r.fallbackEnabled {
		return patterns
	}

	segments := strings.Split(base, ".")
	for len(segments) > 1 && len(patterns) <= r.searchDepth {
		segments = segments[:len(segments)-1]
		patterns = append(patterns, strings.Join(segments, "."))
	}

	return patterns
}
