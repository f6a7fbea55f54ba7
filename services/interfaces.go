// Package services declares the contracts the HTTP layer depends on.
package services

import (
	"context"
	"io"

	"github.com/gcbaptista/review-radar/internal/engine"
	"github.com/gcbaptista/review-radar/internal/jobs"
	"github.com/gcbaptista/review-radar/internal/search"
	"github.com/gcbaptista/review-radar/model"
)

// Searcher answers token queries against the live snapshot.
type Searcher interface {
	Search(keyword string, topK int) (search.Result, error)
}

// MultiSearcher runs several named token queries in one request.
type MultiSearcher interface {
	MultiSearch(ctx context.Context, queries []search.NamedQuery) (map[string]search.Result, error)
}

// ProductQuerier covers the product-level queries: title search, ranking
// and comparison.
type ProductQuerier interface {
	SearchProducts(keyword string) ([]model.Review, error)
	RankTopProducts(ctx context.Context, keyword string, topN int, mode engine.RankMode) ([]model.ProductAggregate, error)
	ResolveRankMode(mode engine.RankMode) engine.RankMode
	CompareProduct(productID string) (model.Comparison, error)
	CompareProducts(productIDs []string) ([]model.Comparison, error)
}

// Exporter streams the live corpus.
type Exporter interface {
	Export(w io.Writer) (int, error)
}

// Rebuilder replaces the corpus in the background.
type Rebuilder interface {
	RebuildAsync(rows []model.RawRecord) (string, error)
}

// JobManager exposes background job status.
type JobManager interface {
	GetJob(jobID string) (*model.Job, error)
	ListJobs(status *model.JobStatus) []*model.Job
	CancelJob(jobID string) error
	JobMetrics() jobs.MetricsData
}

// StatsProvider reports snapshot statistics.
type StatsProvider interface {
	Stats() engine.Stats
}

// ReviewEngine is everything the API needs from the engine.
type ReviewEngine interface {
	Searcher
	MultiSearcher
	ProductQuerier
	Exporter
	Rebuilder
	JobManager
	StatsProvider
}

var _ ReviewEngine = (*engine.Engine)(nil)
