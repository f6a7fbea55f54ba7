// Package engine owns the pipeline context: it runs normalize, annotate and
// build, publishes the resulting snapshot, and answers queries against it.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gcbaptista/review-radar/internal/analytics"
	"github.com/gcbaptista/review-radar/internal/cache"
	"github.com/gcbaptista/review-radar/internal/errors"
	"github.com/gcbaptista/review-radar/internal/indexing"
	"github.com/gcbaptista/review-radar/internal/jobs"
	"github.com/gcbaptista/review-radar/internal/logger"
	"github.com/gcbaptista/review-radar/internal/metrics"
	"github.com/gcbaptista/review-radar/internal/normalize"
	"github.com/gcbaptista/review-radar/internal/ranking"
	"github.com/gcbaptista/review-radar/internal/search"
	"github.com/gcbaptista/review-radar/internal/sentiment"
	"github.com/gcbaptista/review-radar/model"
)

// Options wires the engine's collaborators. Nil collaborators are replaced
// by defaults (lexicon annotator) or disabled (cache, metrics, analytics,
// jobs).
type Options struct {
	Annotator        sentiment.Annotator
	SentimentWorkers int
	Build            indexing.BuildConfig
	DefaultTopN      int
	DefaultMode      RankMode
	Cache            *cache.RankingCache
	Metrics          *metrics.Metrics
	Analytics        *analytics.Service
	Jobs             *jobs.Manager
}

// Engine replaces module-level pipeline state with an explicit object.
// Queries read the current snapshot under a read lock; rebuilds are
// serialized and swap the snapshot wholesale.
type Engine struct {
	mu        sync.RWMutex
	current   *Snapshot
	rebuildMu sync.Mutex

	annotator   sentiment.Annotator
	workers     int
	builder     *indexing.Builder
	normalizer  *normalize.Normalizer
	defaultTopN int
	defaultMode RankMode

	cache     *cache.RankingCache
	metrics   *metrics.Metrics
	analytics *analytics.Service
	jobs      *jobs.Manager
	logger    *slog.Logger
}

// New creates an engine with no snapshot. Every query fails with
// ErrIndexNotBuilt until the first successful Rebuild.
func New(opts Options) *Engine {
	annotator := opts.Annotator
	if annotator == nil {
		annotator = sentiment.NewLexicon()
	}
	topN := opts.DefaultTopN
	if topN <= 0 {
		topN = ranking.DefaultTopN
	}
	mode := opts.DefaultMode
	if mode == "" {
		mode = ModeTitle
	}
	return &Engine{
		annotator:   annotator,
		workers:     opts.SentimentWorkers,
		builder:     indexing.NewBuilder(opts.Build),
		normalizer:  normalize.NewNormalizer(),
		defaultTopN: topN,
		defaultMode: mode,
		cache:       opts.Cache,
		metrics:     opts.Metrics,
		analytics:   opts.Analytics,
		jobs:        opts.Jobs,
		logger:      logger.WithComponent("engine"),
	}
}

// ProgressFunc receives rebuild progress.
type ProgressFunc func(current, total int, message string)

// Rebuild normalizes rows, annotates sentiment, builds a new index and
// publishes it. On error the previous snapshot stays live.
func (e *Engine) Rebuild(ctx context.Context, rows []model.RawRecord) (*Snapshot, error) {
	return e.rebuild(ctx, rows, nil)
}

func (e *Engine) rebuild(ctx context.Context, rows []model.RawRecord, progress ProgressFunc) (*Snapshot, error) {
	e.rebuildMu.Lock()
	defer e.rebuildMu.Unlock()

	start := time.Now()
	report := func(step int, message string) {
		if progress != nil {
			progress(step, 4, message)
		}
	}

	snapshot, err := e.buildSnapshot(ctx, rows, report)
	if err != nil {
		e.metrics.ObserveRebuild(err, time.Since(start), 0, 0, 0, 0)
		e.logger.Error("rebuild failed", "rows", len(rows), "error", err)
		return nil, err
	}

	e.mu.Lock()
	previous := e.current
	e.current = snapshot
	e.mu.Unlock()
	report(4, "snapshot published")

	// Rankings of the replaced snapshot are unreachable under the new build ID.
	if previous != nil {
		if err := e.cache.Invalidate(ctx); err != nil {
			e.logger.Warn("stale rankings not released", "error", err)
		}
	}

	st := snapshot.Stats
	e.metrics.ObserveRebuild(nil, st.Duration, st.DocumentsIndexed, st.Terms, st.RowsSkipped, st.SentimentRejected)
	e.logger.Info("snapshot published",
		"build_id", snapshot.BuildID,
		"documents", st.DocumentsIndexed,
		"skipped", st.RowsSkipped,
		"sentiment_rejected", st.SentimentRejected,
		"terms", st.Terms,
		"duration", st.Duration)
	return snapshot, nil
}

func (e *Engine) buildSnapshot(ctx context.Context, rows []model.RawRecord, report func(int, string)) (*Snapshot, error) {
	start := time.Now()

	normalized := e.normalizer.Normalize(rows)
	report(1, fmt.Sprintf("normalized %d rows (%d skipped)", len(rows), normalized.Skipped))

	pass, err := sentiment.NewPass(e.annotator, e.workers)
	if err != nil {
		return nil, err
	}
	annotated, err := pass.Annotate(ctx, normalized.Reviews)
	if err != nil {
		return nil, fmt.Errorf("sentiment annotation failed: %w", err)
	}
	report(2, fmt.Sprintf("annotated %d reviews", len(annotated.Reviews)))

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	idx, docs, err := e.builder.Build(annotated.Reviews)
	if err != nil {
		return nil, fmt.Errorf("index build failed: %w", err)
	}
	report(3, fmt.Sprintf("indexed %d documents", idx.TotalDocs()))

	searcher, err := search.NewService(idx, docs)
	if err != nil {
		return nil, err
	}

	return &Snapshot{
		BuildID: uuid.New().String(),
		Index:   idx,
		Store:   docs,
		BuiltAt: time.Now(),
		Stats: BuildStats{
			RowsRead:          len(rows),
			DocumentsIndexed:  idx.TotalDocs(),
			RowsSkipped:       normalized.Skipped,
			SentimentRejected: annotated.Rejected,
			Terms:             idx.TermCount(),
			Duration:          time.Since(start),
		},
		searcher: searcher,
	}, nil
}

// Snapshot returns the live snapshot or ErrIndexNotBuilt.
func (e *Engine) Snapshot() (*Snapshot, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.current == nil {
		return nil, errors.ErrIndexNotBuilt
	}
	return e.current, nil
}

// Stats summarizes the engine state for the stats endpoint.
type Stats struct {
	Ready       bool       `json:"ready"`
	BuildID     string     `json:"build_id,omitempty"`
	BuiltAt     *time.Time `json:"built_at,omitempty"`
	Build       BuildStats `json:"build"`
	CacheHits   int64      `json:"cache_hits"`
	CacheMisses int64      `json:"cache_misses"`
}

// Stats reports the live snapshot's build statistics. It never fails.
func (e *Engine) Stats() Stats {
	hits, misses := e.cache.Stats()
	stats := Stats{CacheHits: hits, CacheMisses: misses}

	snapshot, err := e.Snapshot()
	if err != nil {
		return stats
	}
	builtAt := snapshot.BuiltAt
	stats.Ready = true
	stats.BuildID = snapshot.BuildID
	stats.BuiltAt = &builtAt
	stats.Build = snapshot.Stats
	return stats
}

// Close releases the cache backend and stops the job manager.
func (e *Engine) Close() error {
	if e.jobs != nil {
		e.jobs.Stop()
	}
	return e.cache.Close()
}
