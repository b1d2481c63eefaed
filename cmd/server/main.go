package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tendermatch/backend/config"
	httpDelivery "github.com/tendermatch/backend/internal/delivery/http"
	"github.com/tendermatch/backend/internal/domain"
	"github.com/tendermatch/backend/internal/infrastructure/cache"
	"github.com/tendermatch/backend/internal/infrastructure/catalog"
	"github.com/tendermatch/backend/internal/infrastructure/semantic"
	"github.com/tendermatch/backend/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	config.SetupLogger(cfg.Log)

	log.Info().
		Str("environment", cfg.Server.Environment).
		Str("port", cfg.Server.Port).
		Str("algorithm", cfg.Matching.Algorithm).
		Msg("starting tendermatch backend")

	ctx := context.Background()

	// Catalog store: a failed connection degrades to empty candidate sets
	// so the API can report per-item status instead of refusing to start.
	store, err := catalog.NewMongoStore(ctx, catalog.MongoConfig{
		URI:            cfg.Mongo.URI,
		Database:       cfg.Mongo.Database,
		Collection:     cfg.Mongo.Collection,
		ConnectTimeout: cfg.Mongo.ConnectTimeout,
		QueryTimeout:   cfg.Mongo.QueryTimeout,
	})
	if err != nil {
		log.Warn().Err(err).Msg("catalog connection failed, running degraded")
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := store.Close(shutdownCtx); err != nil {
				log.Warn().Err(err).Msg("catalog disconnect failed")
			}
		}()
	}

	var cacheRepo domain.CacheRepository
	switch cfg.Cache.Type {
	case "redis":
		redisCache, err := cache.NewRedisCache(ctx, cache.RedisConfig{URL: cfg.Cache.RedisURL})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisCache.Close()
		cacheRepo = redisCache
	default:
		cacheRepo = cache.NewMemoryCache(cfg.Cache.MaxEntries)
	}

	var semanticProvider domain.SemanticProvider
	if cfg.Semantic.Enabled {
		provider, err := semantic.NewEmbeddingProvider(semantic.Config{
			BaseURL:           cfg.Semantic.BaseURL,
			APIKey:            cfg.Semantic.APIKey,
			Model:             cfg.Semantic.Model,
			RequestsPerSecond: cfg.Semantic.RequestsPerSecond,
			MaxBatchSize:      cfg.Semantic.MaxBatchSize,
		})
		if err != nil {
			log.Warn().Err(err).Msg("semantic provider unavailable, matching without semantic stage")
		} else {
			semanticProvider = provider
		}
	}

	resolver := usecase.NewHierarchicalResolver(store, cacheRepo, usecase.ResolverConfig{
		FallbackEnabled: cfg.Classification.FallbackEnabled,
		SearchDepth:     cfg.Classification.SearchDepth,
		CacheEnabled:    cfg.Classification.CacheEnabled,
		CacheTTL:        cfg.Cache.TTL,
	})

	orchestrator := usecase.NewMatchOrchestrator(
		resolver,
		usecase.NewTermExtractor(),
		usecase.NewAttributeMatcher(),
		store,
		semanticProvider,
		usecase.MatchingConfig{
			MinScoreThreshold:     cfg.Matching.MinScoreThreshold,
			MaxMatchedProducts:    cfg.Matching.MaxMatchedProducts,
			MinCandidates:         cfg.Matching.MinCandidates,
			MaxCandidates:         cfg.Matching.MaxCandidates,
			PriceTolerancePercent: cfg.Matching.PriceTolerancePercent,
			UseEnhancedSearch:     cfg.Matching.UseEnhancedSearch,
			UseSemanticSearch:     cfg.Semantic.Enabled,
			SemanticThreshold:     cfg.Semantic.Threshold,
			ParallelThreshold:     cfg.Processing.ParallelThreshold,
			MaxParallelItems:      cfg.Processing.MaxParallelItems,
			BatchPause:            cfg.Processing.BatchPause,
			Algorithm:             cfg.Matching.Algorithm,
			AlgorithmVersion:      cfg.Matching.AlgorithmVersion,
		},
	)

	handler := httpDelivery.NewHandler(orchestrator)
	router := httpDelivery.SetupRouter(cfg, handler)

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Info().Str("addr", addr).Msg("server listening")

	if err := router.Run(addr); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
