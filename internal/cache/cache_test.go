package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcbaptista/review-radar/internal/metrics"
	"github.com/gcbaptista/review-radar/model"
)

func sampleRanking() []model.ProductAggregate {
	relevance := 1.5
	return []model.ProductAggregate{
		{
			ProductID: "P1", ProductTitle: "Nail Clipper",
			AvgSentiment: model.Average{Value: 0.8, Defined: true},
			AvgRating:    model.Average{Value: 5, Defined: true},
			ReviewCount:  1, TextRelevance: &relevance,
		},
		{ProductID: "P2", ProductTitle: "Nail File", AvgRating: model.Average{Value: 3, Defined: true}, ReviewCount: 1},
	}
}

func TestMemoryBackend_TTL(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	b := NewMemoryBackend()
	b.now = func() time.Time { return now }

	require.NoError(t, b.Set(ctx, "short", []byte("a"), time.Minute))
	require.NoError(t, b.Set(ctx, "forever", []byte("b"), 0))

	v, ok, err := b.Get(ctx, "short")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("a"), v)

	now = now.Add(time.Minute)
	_, ok, _ = b.Get(ctx, "short")
	assert.False(t, ok, "entry must expire at its deadline")
	_, ok, _ = b.Get(ctx, "forever")
	assert.True(t, ok)
	assert.Equal(t, 1, b.Len())

	n, err := b.Flush(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, 0, b.Len())
}

func TestMemoryBackend_CopiesValue(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()
	value := []byte("abc")
	require.NoError(t, b.Set(ctx, "k", value, 0))
	value[0] = 'z'

	got, _, _ := b.Get(ctx, "k")
	assert.Equal(t, []byte("abc"), got)
}

func TestKey_String(t *testing.T) {
	base := Key{BuildID: "b1", Mode: "title", Keyword: "Nail", TopN: 10}

	assert.Equal(t, base.String(), Key{BuildID: "b1", Mode: "title", Keyword: "nail", TopN: 10}.String())
	assert.NotEqual(t, base.String(), Key{BuildID: "b2", Mode: "title", Keyword: "Nail", TopN: 10}.String())
	assert.NotEqual(t, base.String(), Key{BuildID: "b1", Mode: "fulltext", Keyword: "Nail", TopN: 10}.String())
	assert.NotEqual(t, base.String(), Key{BuildID: "b1", Mode: "title", Keyword: "Nail", TopN: 5}.String())
	assert.Contains(t, base.String(), keyPrefix)
}

func TestRankingCache_GetOrCompute(t *testing.T) {
	ctx := context.Background()
	m := metrics.New()
	c := NewRankingCache(NewMemoryBackend(), time.Minute, m)
	key := Key{BuildID: "b1", Mode: "title", Keyword: "nail", TopN: 10}

	calls := 0
	compute := func() ([]model.ProductAggregate, error) {
		calls++
		return sampleRanking(), nil
	}

	first, hit, err := c.GetOrCompute(ctx, key, compute)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, sampleRanking(), first)

	second, hit, err := c.GetOrCompute(ctx, key, compute)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, sampleRanking(), second, "cached value must survive the JSON round trip")
	assert.Equal(t, 1, calls)

	hits, misses := c.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
}

func TestRankingCache_ErrorsAreNotCached(t *testing.T) {
	ctx := context.Background()
	c := NewRankingCache(NewMemoryBackend(), time.Minute, nil)
	key := Key{BuildID: "b1", Keyword: "x"}

	_, _, err := c.GetOrCompute(ctx, key, func() ([]model.ProductAggregate, error) {
		return nil, errors.New("boom")
	})
	require.Error(t, err)

	got, hit, err := c.GetOrCompute(ctx, key, func() ([]model.ProductAggregate, error) {
		return sampleRanking(), nil
	})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Len(t, got, 2)
}

func TestRankingCache_ConcurrentMissesComputeOnce(t *testing.T) {
	ctx := context.Background()
	c := NewRankingCache(NewMemoryBackend(), time.Minute, nil)
	key := Key{BuildID: "b1", Keyword: "nail"}

	var calls atomic.Int32
	release := make(chan struct{})
	compute := func() ([]model.ProductAggregate, error) {
		calls.Add(1)
		<-release
		return sampleRanking(), nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, _, err := c.GetOrCompute(ctx, key, compute)
			assert.NoError(t, err)
			assert.Len(t, got, 2)
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
}

func TestRankingCache_Invalidate(t *testing.T) {
	ctx := context.Background()
	c := NewRankingCache(NewMemoryBackend(), 0, nil)
	key := Key{BuildID: "b1", Keyword: "nail"}
	compute := func() ([]model.ProductAggregate, error) { return sampleRanking(), nil }

	_, _, err := c.GetOrCompute(ctx, key, compute)
	require.NoError(t, err)
	require.NoError(t, c.Invalidate(ctx))

	_, hit, err := c.GetOrCompute(ctx, key, compute)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestRankingCache_NilAlwaysComputes(t *testing.T) {
	var c *RankingCache
	calls := 0
	for i := 0; i < 2; i++ {
		_, hit, err := c.GetOrCompute(context.Background(), Key{}, func() ([]model.ProductAggregate, error) {
			calls++
			return nil, nil
		})
		require.NoError(t, err)
		assert.False(t, hit)
	}
	assert.Equal(t, 2, calls)
	assert.NoError(t, c.Invalidate(context.Background()))
	assert.NoError(t, c.Close())
}

func TestNewRedisBackend_Unreachable(t *testing.T) {
	_, err := NewRedisBackend(RedisOptions{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis ping failed")
}
