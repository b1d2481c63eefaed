package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	cleanupEnv := func() {
		os.Unsetenv("TENDERMATCH_SERVER_PORT")
		os.Unsetenv("TENDERMATCH_SERVER_ENVIRONMENT")
		os.Unsetenv("TENDERMATCH_MONGO_URI")
		os.Unsetenv("TENDERMATCH_MONGO_DATABASE")
		os.Unsetenv("TENDERMATCH_CACHE_TYPE")
		os.Unsetenv("TENDERMATCH_CACHE_REDIS_URL")
		os.Unsetenv("TENDERMATCH_CACHE_TTL")
		os.Unsetenv("TENDERMATCH_MATCHING_ALGORITHM")
		os.Unsetenv("TENDERMATCH_MATCHING_MIN_SCORE_THRESHOLD")
		os.Unsetenv("TENDERMATCH_MATCHING_MAX_MATCHED_PRODUCTS")
		os.Unsetenv("TENDERMATCH_PROCESSING_MAX_PARALLEL_ITEMS")
		os.Unsetenv("TENDERMATCH_SEMANTIC_ENABLED")
		os.Unsetenv("TENDERMATCH_SEMANTIC_BASE_URL")
		os.Unsetenv("TENDERMATCH_SEMANTIC_THRESHOLD")
	}

	t.Run("loads with defaults when no env vars set", func(t *testing.T) {
		cleanupEnv()
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "8080" {
			t.Errorf("Server.Port = %s, want 8080", cfg.Server.Port)
		}
		if cfg.Mongo.URI != "mongodb://localhost:27017" {
			t.Errorf("Mongo.URI = %s, want mongodb://localhost:27017", cfg.Mongo.URI)
		}
		if cfg.Mongo.Collection != "unique_products" {
			t.Errorf("Mongo.Collection = %s, want unique_products", cfg.Mongo.Collection)
		}
		if cfg.Cache.Type != "memory" {
			t.Errorf("Cache.Type = %s, want memory", cfg.Cache.Type)
		}
		if cfg.Cache.TTL != time.Hour {
			t.Errorf("Cache.TTL = %v, want 1h", cfg.Cache.TTL)
		}
		if cfg.Matching.Algorithm != "standard" {
			t.Errorf("Matching.Algorithm = %s, want standard", cfg.Matching.Algorithm)
		}
		if cfg.Matching.MaxMatchedProducts != 5 {
			t.Errorf("Matching.MaxMatchedProducts = %d, want 5", cfg.Matching.MaxMatchedProducts)
		}
		if cfg.Processing.MaxParallelItems != 5 {
			t.Errorf("Processing.MaxParallelItems = %d, want 5", cfg.Processing.MaxParallelItems)
		}
		if cfg.Semantic.Enabled {
			t.Error("Semantic.Enabled should default to false")
		}
	})

	t.Run("loads custom values from environment variables", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("TENDERMATCH_SERVER_PORT", "9090")
		os.Setenv("TENDERMATCH_SERVER_ENVIRONMENT", "production")
		os.Setenv("TENDERMATCH_MONGO_URI", "mongodb://db:27017")
		os.Setenv("TENDERMATCH_MONGO_DATABASE", "catalog_prod")
		os.Setenv("TENDERMATCH_CACHE_TYPE", "redis")
		os.Setenv("TENDERMATCH_CACHE_REDIS_URL", "redis://localhost:6379")
		os.Setenv("TENDERMATCH_MATCHING_ALGORITHM", "soft_weighted")
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "9090" {
			t.Errorf("Server.Port = %s, want 9090", cfg.Server.Port)
		}
		if cfg.Mongo.URI != "mongodb://db:27017" {
			t.Errorf("Mongo.URI = %s, want mongodb://db:27017", cfg.Mongo.URI)
		}
		if cfg.Mongo.Database != "catalog_prod" {
			t.Errorf("Mongo.Database = %s, want catalog_prod", cfg.Mongo.Database)
		}
		if cfg.Cache.Type != "redis" {
			t.Errorf("Cache.Type = %s, want redis", cfg.Cache.Type)
		}
		if cfg.Matching.Algorithm != "soft_weighted" {
			t.Errorf("Matching.Algorithm = %s, want soft_weighted", cfg.Matching.Algorithm)
		}
	})

	t.Run("rejects redis cache without url", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("TENDERMATCH_CACHE_TYPE", "redis")
		defer cleanupEnv()

		if _, err := Load(); err == nil {
			t.Error("Load() should fail for redis cache without url")
		}
	})

	t.Run("rejects unknown algorithm", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("TENDERMATCH_MATCHING_ALGORITHM", "quantum")
		defer cleanupEnv()

		if _, err := Load(); err == nil {
			t.Error("Load() should fail for unknown algorithm")
		}
	})

	t.Run("rejects out-of-range score threshold", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("TENDERMATCH_MATCHING_MIN_SCORE_THRESHOLD", "1.5")
		defer cleanupEnv()

		if _, err := Load(); err == nil {
			t.Error("Load() should fail for threshold above 1")
		}
	})

	t.Run("rejects semantic search without backend", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("TENDERMATCH_SEMANTIC_ENABLED", "true")
		defer cleanupEnv()

		if _, err := Load(); err == nil {
			t.Error("Load() should fail when semantic search has no backend configured")
		}
	})
}
