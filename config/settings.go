// Package config provides the configuration structures for the review service.
// Settings are read from YAML, overridden by REVIEW_RADAR_* environment
// variables, then completed with defaults and validated.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Cache backends.
const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
	CacheBackendNone   = "none"
)

// Ranking modes accepted in ranking.default_mode.
const (
	RankModeTitle    = "title"
	RankModeFullText = "fulltext"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "REVIEW_RADAR_"

// Config is the top-level application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Search    SearchConfig    `yaml:"search"`
	Ranking   RankingConfig   `yaml:"ranking"`
	Sentiment SentimentConfig `yaml:"sentiment"`
	Indexing  IndexingConfig  `yaml:"indexing"`
	Cache     CacheConfig     `yaml:"cache"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Jobs      JobsConfig      `yaml:"jobs"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// SearchConfig bounds full-text search requests.
type SearchConfig struct {
	DefaultTopK int `yaml:"default_top_k"` // used when a request omits top_k
	MaxTopK     int `yaml:"max_top_k"`     // requests above this are rejected
}

// RankingConfig controls product ranking defaults.
type RankingConfig struct {
	DefaultTopN int    `yaml:"default_top_n"`
	DefaultMode string `yaml:"default_mode"` // "title" or "fulltext"
}

// SentimentConfig controls the annotation pass.
type SentimentConfig struct {
	Workers int `yaml:"workers"` // 0 means GOMAXPROCS
}

// IndexingConfig controls the index builder worker pool.
type IndexingConfig struct {
	Workers   int `yaml:"workers"`
	BatchSize int `yaml:"batch_size"`
}

// CacheConfig selects and configures the ranking cache.
type CacheConfig struct {
	Backend       string        `yaml:"backend"`
	TTL           time.Duration `yaml:"ttl"`
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
	RedisPoolSize int           `yaml:"redis_pool_size"`
	KeyPrefix     string        `yaml:"key_prefix"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// JobsConfig sizes the background job manager.
type JobsConfig struct {
	Workers int           `yaml:"workers"`
	MaxAge  time.Duration `yaml:"max_age"` // finished jobs older than this are cleaned up
}

// Default returns a Config with every default applied.
func Default() *Config {
	cfg := &Config{Metrics: MetricsConfig{Enabled: true}}
	cfg.ApplyDefaults()
	return cfg
}

// Load reads a YAML config file (if provided), applies environment overrides
// and fills any remaining zero values with defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	if err := applyEnvOverrides(cfg, os.Getenv); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// ApplyDefaults fills zero values with defaults.
func (c *Config) ApplyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.MaxBodyBytes == 0 {
		c.Server.MaxBodyBytes = 64 << 20
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 30 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 60 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 15 * time.Second
	}

	if c.Search.DefaultTopK == 0 {
		c.Search.DefaultTopK = 10
	}
	if c.Search.MaxTopK == 0 {
		c.Search.MaxTopK = 1000
	}

	if c.Ranking.DefaultTopN == 0 {
		c.Ranking.DefaultTopN = 10
	}
	if c.Ranking.DefaultMode == "" {
		c.Ranking.DefaultMode = RankModeTitle
	}
	c.Ranking.DefaultMode = strings.ToLower(strings.TrimSpace(c.Ranking.DefaultMode))

	if c.Indexing.BatchSize == 0 {
		c.Indexing.BatchSize = 500
	}

	if c.Cache.Backend == "" {
		c.Cache.Backend = CacheBackendMemory
	}
	c.Cache.Backend = strings.ToLower(strings.TrimSpace(c.Cache.Backend))
	if c.Cache.TTL == 0 {
		c.Cache.TTL = 5 * time.Minute
	}
	if c.Cache.RedisAddr == "" {
		c.Cache.RedisAddr = "localhost:6379"
	}
	if c.Cache.RedisPoolSize == 0 {
		c.Cache.RedisPoolSize = 10
	}
	if c.Cache.KeyPrefix == "" {
		c.Cache.KeyPrefix = "review-radar:"
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}

	if c.Jobs.Workers == 0 {
		c.Jobs.Workers = 2
	}
	if c.Jobs.MaxAge == 0 {
		c.Jobs.MaxAge = 24 * time.Hour
	}
}

// Validate returns every conflict found in the configuration. An empty result
// means the configuration is usable.
func (c *Config) Validate() []string {
	var conflicts []string

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		conflicts = append(conflicts, fmt.Sprintf("server.port must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Server.MaxBodyBytes < 0 {
		conflicts = append(conflicts, "server.max_body_bytes cannot be negative")
	}

	if c.Search.DefaultTopK < 0 {
		conflicts = append(conflicts, "search.default_top_k cannot be negative")
	}
	if c.Search.MaxTopK < 0 {
		conflicts = append(conflicts, "search.max_top_k cannot be negative")
	}
	if c.Search.MaxTopK > 0 && c.Search.DefaultTopK > c.Search.MaxTopK {
		conflicts = append(conflicts, fmt.Sprintf("search.default_top_k (%d) exceeds search.max_top_k (%d)", c.Search.DefaultTopK, c.Search.MaxTopK))
	}

	if c.Ranking.DefaultTopN < 0 {
		conflicts = append(conflicts, "ranking.default_top_n cannot be negative")
	}
	switch c.Ranking.DefaultMode {
	case RankModeTitle, RankModeFullText:
	default:
		conflicts = append(conflicts, "Invalid ranking.default_mode '"+c.Ranking.DefaultMode+"' (must be 'title' or 'fulltext')")
	}

	if c.Sentiment.Workers < 0 {
		conflicts = append(conflicts, "sentiment.workers cannot be negative")
	}
	if c.Indexing.Workers < 0 {
		conflicts = append(conflicts, "indexing.workers cannot be negative")
	}
	if c.Indexing.BatchSize < 0 {
		conflicts = append(conflicts, "indexing.batch_size cannot be negative")
	}

	switch c.Cache.Backend {
	case CacheBackendMemory, CacheBackendNone:
	case CacheBackendRedis:
		if strings.TrimSpace(c.Cache.RedisAddr) == "" {
			conflicts = append(conflicts, "cache.redis_addr is required when cache.backend is 'redis'")
		}
	default:
		conflicts = append(conflicts, "Invalid cache.backend '"+c.Cache.Backend+"' (must be 'memory', 'redis' or 'none')")
	}
	if c.Cache.TTL < 0 {
		conflicts = append(conflicts, "cache.ttl cannot be negative")
	}
	if c.Cache.RedisDB < 0 {
		conflicts = append(conflicts, "cache.redis_db cannot be negative")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		conflicts = append(conflicts, "Invalid logging.level '"+c.Logging.Level+"'")
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		conflicts = append(conflicts, "Invalid logging.format '"+c.Logging.Format+"' (must be 'json' or 'text')")
	}

	if c.Jobs.Workers < 1 {
		conflicts = append(conflicts, "jobs.workers must be at least 1")
	}

	return conflicts
}

// applyEnvOverrides reads REVIEW_RADAR_* variables through getenv and
// overrides the corresponding fields. Unparseable values are an error.
func applyEnvOverrides(cfg *Config, getenv func(string) string) error {
	ints := []struct {
		key string
		dst *int
	}{
		{"SERVER_PORT", &cfg.Server.Port},
		{"SEARCH_DEFAULT_TOP_K", &cfg.Search.DefaultTopK},
		{"SEARCH_MAX_TOP_K", &cfg.Search.MaxTopK},
		{"RANKING_DEFAULT_TOP_N", &cfg.Ranking.DefaultTopN},
		{"SENTIMENT_WORKERS", &cfg.Sentiment.Workers},
		{"INDEXING_WORKERS", &cfg.Indexing.Workers},
		{"CACHE_REDIS_DB", &cfg.Cache.RedisDB},
		{"JOBS_WORKERS", &cfg.Jobs.Workers},
	}
	for _, o := range ints {
		v := getenv(EnvPrefix + o.key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s%s: %w", EnvPrefix, o.key, err)
		}
		*o.dst = n
	}

	strs := []struct {
		key string
		dst *string
	}{
		{"RANKING_DEFAULT_MODE", &cfg.Ranking.DefaultMode},
		{"CACHE_BACKEND", &cfg.Cache.Backend},
		{"CACHE_REDIS_ADDR", &cfg.Cache.RedisAddr},
		{"CACHE_REDIS_PASSWORD", &cfg.Cache.RedisPassword},
		{"LOGGING_LEVEL", &cfg.Logging.Level},
		{"LOGGING_FORMAT", &cfg.Logging.Format},
	}
	for _, o := range strs {
		if v := getenv(EnvPrefix + o.key); v != "" {
			*o.dst = v
		}
	}

	if v := getenv(EnvPrefix + "CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %sCACHE_TTL: %w", EnvPrefix, err)
		}
		cfg.Cache.TTL = d
	}
	if v := getenv(EnvPrefix + "METRICS_ENABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %sMETRICS_ENABLED: %w", EnvPrefix, err)
		}
		cfg.Metrics.Enabled = b
	}
	return nil
}
