package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server         ServerConfig
	Mongo          MongoConfig
	Cache          CacheConfig
	Matching       MatchingConfig
	Classification ClassificationConfig
	Processing     ProcessingConfig
	Semantic       SemanticConfig
	Log            LogConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string        `mapstructure:"port"`
	Environment    string        `mapstructure:"environment"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	APIKey         string        `mapstructure:"api_key"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// MongoConfig holds the catalog database configuration
type MongoConfig struct {
	URI            string        `mapstructure:"uri"`
	Database       string        `mapstructure:"database"`
	Collection     string        `mapstructure:"collection"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	QueryTimeout   time.Duration `mapstructure:"query_timeout"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type       string        `mapstructure:"type"` // "memory" or "redis"
	RedisURL   string        `mapstructure:"redis_url"`
	TTL        time.Duration `mapstructure:"ttl"`
	MaxEntries int           `mapstructure:"max_entries"`
}

// MatchingConfig holds scoring thresholds and limits
type MatchingConfig struct {
	MinScoreThreshold     float64 `mapstructure:"min_score_threshold"`
	MaxMatchedProducts    int     `mapstructure:"max_matched_products"`
	MinCandidates         int     `mapstructure:"min_candidates"`
	MaxCandidates         int     `mapstructure:"max_candidates"`
	PriceTolerancePercent float64 `mapstructure:"price_tolerance_percent"`
	Algorithm             string  `mapstructure:"algorithm"`
	AlgorithmVersion      string  `mapstructure:"algorithm_version"`
	UseEnhancedSearch     bool    `mapstructure:"use_enhanced_search"`
}

// ClassificationConfig holds the hierarchical code search settings
type ClassificationConfig struct {
	FallbackEnabled bool `mapstructure:"fallback_enabled"`
	SearchDepth     int  `mapstructure:"search_depth"`
	CacheEnabled    bool `mapstructure:"cache_enabled"`
}

// ProcessingConfig holds the parallel processing settings
type ProcessingConfig struct {
	ParallelThreshold int           `mapstructure:"parallel_threshold"`
	MaxParallelItems  int           `mapstructure:"max_parallel_items"`
	BatchPause        time.Duration `mapstructure:"batch_pause"`
}

// SemanticConfig holds the embedding similarity settings
type SemanticConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	BaseURL           string  `mapstructure:"base_url"`
	APIKey            string  `mapstructure:"api_key"`
	Model             string  `mapstructure:"model"`
	Threshold         float64 `mapstructure:"threshold"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	MaxBatchSize      int     `mapstructure:"max_batch_size"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/tendermatch/")

	v.SetEnvPrefix("TENDERMATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional; env vars and defaults cover everything
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.request_timeout", "300s")

	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "tender_catalog")
	v.SetDefault("mongo.collection", "unique_products")
	v.SetDefault("mongo.connect_timeout", "10s")
	v.SetDefault("mongo.query_timeout", "30s")

	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.ttl", "1h")
	v.SetDefault("cache.max_entries", 1000)

	v.SetDefault("matching.min_score_threshold", 0.3)
	v.SetDefault("matching.max_matched_products", 5)
	v.SetDefault("matching.min_candidates", 10)
	v.SetDefault("matching.max_candidates", 100)
	v.SetDefault("matching.price_tolerance_percent", 20.0)
	v.SetDefault("matching.algorithm", "standard")
	v.SetDefault("matching.algorithm_version", "v2")
	v.SetDefault("matching.use_enhanced_search", true)

	v.SetDefault("classification.fallback_enabled", true)
	v.SetDefault("classification.search_depth", 3)
	v.SetDefault("classification.cache_enabled", true)

	v.SetDefault("processing.parallel_threshold", 3)
	v.SetDefault("processing.max_parallel_items", 5)
	v.SetDefault("processing.batch_pause", "100ms")

	v.SetDefault("semantic.enabled", false)
	v.SetDefault("semantic.model", "text-embedding-3-small")
	v.SetDefault("semantic.threshold", 0.35)
	v.SetDefault("semantic.requests_per_second", 5.0)
	v.SetDefault("semantic.max_batch_size", 50)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "logs/tendermatch.log")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Mongo.URI == "" {
		return fmt.Errorf("mongo URI is required (set TENDERMATCH_MONGO_URI)")
	}

	if config.Cache.Type != "memory" && config.Cache.Type != "redis" {
		return fmt.Errorf("cache type must be 'memory' or 'redis', got: %s", config.Cache.Type)
	}
	if config.Cache.Type == "redis" && config.Cache.RedisURL == "" {
		return fmt.Errorf("redis URL is required when cache type is 'redis'")
	}

	if config.Matching.MinScoreThreshold < 0 || config.Matching.MinScoreThreshold > 1 {
		return fmt.Errorf("min score threshold must be in [0,1], got: %v", config.Matching.MinScoreThreshold)
	}
	if config.Matching.MaxMatchedProducts <= 0 {
		return fmt.Errorf("max matched products must be positive, got: %d", config.Matching.MaxMatchedProducts)
	}
	if config.Matching.MinCandidates > config.Matching.MaxCandidates {
		return fmt.Errorf("min candidates (%d) exceeds max candidates (%d)", config.Matching.MinCandidates, config.Matching.MaxCandidates)
	}

	switch config.Matching.Algorithm {
	case "standard", "characteristic_disabled", "soft_weighted":
	default:
		return fmt.Errorf("unknown matching algorithm: %s", config.Matching.Algorithm)
	}

	if config.Processing.MaxParallelItems <= 0 {
		return fmt.Errorf("max parallel items must be positive, got: %d", config.Processing.MaxParallelItems)
	}

	if config.Semantic.Enabled && config.Semantic.BaseURL == "" && config.Semantic.APIKey == "" {
		return fmt.Errorf("semantic search requires a base URL or API key (set TENDERMATCH_SEMANTIC_BASE_URL or TENDERMATCH_SEMANTIC_API_KEY)")
	}
	if config.Semantic.Threshold < 0 || config.Semantic.Threshold > 1 {
		return fmt.Errorf("semantic threshold must be in [0,1], got: %v", config.Semantic.Threshold)
	}

	return nil
}
