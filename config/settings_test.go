package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()

	assert.Empty(t, cfg.Validate())
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 10, cfg.Search.DefaultTopK)
	assert.Equal(t, 10, cfg.Ranking.DefaultTopN)
	assert.Equal(t, RankModeTitle, cfg.Ranking.DefaultMode)
	assert.Equal(t, CacheBackendMemory, cfg.Cache.Backend)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, 2, cfg.Jobs.Workers)
}

func TestLoad_NoPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
ranking:
  default_top_n: 3
  default_mode: FullText
cache:
  backend: redis
  ttl: 90s
  redis_addr: cache:6379
  redis_db: 2
logging:
  level: debug
  format: json
metrics:
  enabled: false
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 3, cfg.Ranking.DefaultTopN)
	assert.Equal(t, RankModeFullText, cfg.Ranking.DefaultMode, "mode is normalized to lower case")
	assert.Equal(t, CacheBackendRedis, cfg.Cache.Backend)
	assert.Equal(t, 90*time.Second, cfg.Cache.TTL)
	assert.Equal(t, "cache:6379", cfg.Cache.RedisAddr)
	assert.Equal(t, 2, cfg.Cache.RedisDB)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.False(t, cfg.Metrics.Enabled)

	// untouched sections keep their defaults
	assert.Equal(t, 10, cfg.Search.DefaultTopK)
	assert.Equal(t, 2, cfg.Jobs.Workers)
	assert.Empty(t, cfg.Validate())
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "reading config file")
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := Load(writeConfig(t, "server: [port"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parsing config file")
	})
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9000\n")
	t.Setenv("REVIEW_RADAR_SERVER_PORT", "7000")
	t.Setenv("REVIEW_RADAR_CACHE_BACKEND", "none")
	t.Setenv("REVIEW_RADAR_CACHE_TTL", "30s")
	t.Setenv("REVIEW_RADAR_METRICS_ENABLED", "false")
	t.Setenv("REVIEW_RADAR_JOBS_WORKERS", "4")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7000, cfg.Server.Port, "environment wins over the file")
	assert.Equal(t, CacheBackendNone, cfg.Cache.Backend)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, 4, cfg.Jobs.Workers)
}

func TestApplyEnvOverrides_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"non numeric port", map[string]string{"REVIEW_RADAR_SERVER_PORT": "http"}, "REVIEW_RADAR_SERVER_PORT"},
		{"bad duration", map[string]string{"REVIEW_RADAR_CACHE_TTL": "soon"}, "REVIEW_RADAR_CACHE_TTL"},
		{"bad boolean", map[string]string{"REVIEW_RADAR_METRICS_ENABLED": "maybe"}, "REVIEW_RADAR_METRICS_ENABLED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := applyEnvOverrides(Default(), func(key string) string { return tt.env[key] })
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidate_Conflicts(t *testing.T) {
	tests := []struct {
		name           string
		mutate         func(*Config)
		expectedErrors int
		contains       string
	}{
		{
			name:           "port out of range",
			mutate:         func(c *Config) { c.Server.Port = 70000 },
			expectedErrors: 1,
			contains:       "server.port",
		},
		{
			name:           "default top_k above max",
			mutate:         func(c *Config) { c.Search.DefaultTopK = 50; c.Search.MaxTopK = 20 },
			expectedErrors: 1,
			contains:       "exceeds search.max_top_k",
		},
		{
			name:           "unknown ranking mode",
			mutate:         func(c *Config) { c.Ranking.DefaultMode = "stars" },
			expectedErrors: 1,
			contains:       "ranking.default_mode",
		},
		{
			name:           "unknown cache backend",
			mutate:         func(c *Config) { c.Cache.Backend = "memcached" },
			expectedErrors: 1,
			contains:       "cache.backend",
		},
		{
			name:           "redis without address",
			mutate:         func(c *Config) { c.Cache.Backend = CacheBackendRedis; c.Cache.RedisAddr = " " },
			expectedErrors: 1,
			contains:       "cache.redis_addr",
		},
		{
			name: "several problems reported together",
			mutate: func(c *Config) {
				c.Logging.Level = "verbose"
				c.Logging.Format = "xml"
				c.Jobs.Workers = -1
				c.Sentiment.Workers = -2
			},
			expectedErrors: 4,
			contains:       "logging.level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			conflicts := cfg.Validate()
			assert.Len(t, conflicts, tt.expectedErrors, "conflicts: %v", conflicts)
			joined := ""
			for _, c := range conflicts {
				joined += c + "\n"
			}
			assert.Contains(t, joined, tt.contains)
		})
	}
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	cfg := &Config{
		Server:  ServerConfig{Port: 1234},
		Ranking: RankingConfig{DefaultTopN: 5, DefaultMode: " TITLE "},
		Cache:   CacheConfig{Backend: "Redis", TTL: time.Second},
	}
	cfg.ApplyDefaults()

	assert.Equal(t, 1234, cfg.Server.Port)
	assert.Equal(t, 5, cfg.Ranking.DefaultTopN)
	assert.Equal(t, RankModeTitle, cfg.Ranking.DefaultMode)
	assert.Equal(t, CacheBackendRedis, cfg.Cache.Backend)
	assert.Equal(t, time.Second, cfg.Cache.TTL)
	assert.Equal(t, 64<<20, int(cfg.Server.MaxBodyBytes))
}
