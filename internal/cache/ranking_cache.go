package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/gcbaptista/review-radar/internal/logger"
	"github.com/gcbaptista/review-radar/internal/metrics"
	"github.com/gcbaptista/review-radar/model"
)

const keyPrefix = "rank:"

// Key identifies one ranking. BuildID scopes entries to a snapshot, so a
// rebuild makes older entries unreachable without an explicit flush.
type Key struct {
	BuildID string
	Mode    string
	Keyword string
	TopN    int
}

// String returns the hashed backend key.
func (k Key) String() string {
	raw := fmt.Sprintf("%s|%s|%s|%d", k.BuildID, k.Mode, strings.ToLower(k.Keyword), k.TopN)
	hash := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%s%x", keyPrefix, hash[:16])
}

// RankingCache memoizes product rankings. A nil *RankingCache always
// computes.
type RankingCache struct {
	backend Backend
	ttl     time.Duration
	group   singleflight.Group
	metrics *metrics.Metrics
	logger  *slog.Logger
	hits    atomic.Int64
	misses  atomic.Int64
}

// NewRankingCache wraps backend. m may be nil.
func NewRankingCache(backend Backend, ttl time.Duration, m *metrics.Metrics) *RankingCache {
	return &RankingCache{
		backend: backend,
		ttl:     ttl,
		metrics: m,
		logger:  logger.WithComponent("ranking-cache"),
	}
}

func (c *RankingCache) get(ctx context.Context, key string) ([]model.ProductAggregate, bool) {
	data, ok, err := c.backend.Get(ctx, key)
	if err != nil {
		c.logger.Error("cache get failed", "key", key, "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var ranked []model.ProductAggregate
	if err := json.Unmarshal(data, &ranked); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		return nil, false
	}
	return ranked, true
}

func (c *RankingCache) set(ctx context.Context, key string, ranked []model.ProductAggregate) {
	data, err := json.Marshal(ranked)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.backend.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns the cached ranking for key or computes and stores it.
// Concurrent misses on the same key run compute once. The boolean reports a
// cache hit. Backend failures degrade to computing.
func (c *RankingCache) GetOrCompute(ctx context.Context, key Key, compute func() ([]model.ProductAggregate, error)) ([]model.ProductAggregate, bool, error) {
	if c == nil || c.backend == nil {
		ranked, err := compute()
		return ranked, false, err
	}

	k := key.String()
	if ranked, ok := c.get(ctx, k); ok {
		c.hits.Add(1)
		c.metrics.CacheHit()
		c.logger.Debug("cache hit", "keyword", key.Keyword, "mode", key.Mode)
		return ranked, true, nil
	}
	c.misses.Add(1)
	c.metrics.CacheMiss()

	val, err, _ := c.group.Do(k, func() (interface{}, error) {
		if ranked, ok := c.get(ctx, k); ok {
			return ranked, nil
		}
		ranked, err := compute()
		if err != nil {
			return nil, err
		}
		c.set(ctx, k, ranked)
		return ranked, nil
	})
	if err != nil {
		return nil, false, err
	}
	return val.([]model.ProductAggregate), false, nil
}

// Invalidate drops every cached ranking.
func (c *RankingCache) Invalidate(ctx context.Context) error {
	if c == nil || c.backend == nil {
		return nil
	}
	deleted, err := c.backend.Flush(ctx)
	if err != nil {
		return fmt.Errorf("invalidating cache: %w", err)
	}
	c.logger.Info("cache invalidate", "keys_deleted", deleted)
	return nil
}

// Stats returns hit and miss counts since creation.
func (c *RankingCache) Stats() (hits, misses int64) {
	if c == nil {
		return 0, 0
	}
	return c.hits.Load(), c.misses.Load()
}

// Close releases the backend.
func (c *RankingCache) Close() error {
	if c == nil || c.backend == nil {
		return nil
	}
	return c.backend.Close()
}
