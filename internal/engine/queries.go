package engine

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gcbaptista/review-radar/internal/cache"
	"github.com/gcbaptista/review-radar/internal/errors"
	"github.com/gcbaptista/review-radar/internal/export"
	"github.com/gcbaptista/review-radar/internal/metrics"
	"github.com/gcbaptista/review-radar/internal/ranking"
	"github.com/gcbaptista/review-radar/internal/search"
	"github.com/gcbaptista/review-radar/model"
)

// RankMode selects how reviews are matched before products are ranked.
type RankMode string

const (
	// ModeTitle matches reviews whose product title contains the keyword.
	ModeTitle RankMode = "title"
	// ModeFullText matches reviews through token search over all review text.
	ModeFullText RankMode = "fulltext"
)

// ParseRankMode validates a mode string. An empty string yields "".
func ParseRankMode(s string) (RankMode, error) {
	switch mode := RankMode(strings.ToLower(strings.TrimSpace(s))); mode {
	case "", ModeTitle, ModeFullText:
		return mode, nil
	default:
		return "", errors.NewValidationError("mode", fmt.Sprintf("unknown ranking mode '%s' (expected '%s' or '%s')", s, ModeTitle, ModeFullText))
	}
}

// Search runs a token search on the live snapshot.
func (e *Engine) Search(keyword string, topK int) (search.Result, error) {
	start := time.Now()
	snapshot, err := e.Snapshot()
	if err != nil {
		e.observe(model.OperationSearch, keyword, start, 0, false, err)
		return search.Result{}, err
	}
	result, err := snapshot.searcher.Search(keyword, topK)
	e.observe(model.OperationSearch, keyword, start, len(result.Hits), result.EmptyQuery, err)
	return result, err
}

// MultiSearch runs several named token searches on the live snapshot.
// Each named query is recorded as its own search.
func (e *Engine) MultiSearch(ctx context.Context, queries []search.NamedQuery) (map[string]search.Result, error) {
	start := time.Now()
	snapshot, err := e.Snapshot()
	if err == nil {
		var results map[string]search.Result
		if results, err = snapshot.searcher.MultiSearch(ctx, queries); err == nil {
			for _, q := range queries {
				result := results[q.Name]
				e.observe(model.OperationSearch, q.Query, start, len(result.Hits), result.EmptyQuery, nil)
			}
			return results, nil
		}
	}
	for _, q := range queries {
		e.observe(model.OperationSearch, q.Query, start, 0, false, err)
	}
	return nil, err
}

// SearchProducts returns every review whose product title contains keyword.
func (e *Engine) SearchProducts(keyword string) ([]model.Review, error) {
	start := time.Now()
	snapshot, err := e.Snapshot()
	if err != nil {
		e.observe(model.OperationProductSearch, keyword, start, 0, false, err)
		return nil, err
	}
	matched := search.FilterByTitleSubstring(snapshot.Store.All(), keyword)
	e.observe(model.OperationProductSearch, keyword, start, len(matched), false, nil)
	return matched, nil
}

// RankTopProducts ranks the products matching keyword. topN <= 0 and an
// empty mode fall back to the engine defaults. Results are memoized per
// snapshot when a cache is configured.
func (e *Engine) RankTopProducts(ctx context.Context, keyword string, topN int, mode RankMode) ([]model.ProductAggregate, error) {
	start := time.Now()
	ranked, err := e.rankTopProducts(ctx, keyword, topN, mode)
	e.observe(model.OperationRank, keyword, start, len(ranked), false, err)
	return ranked, err
}

func (e *Engine) rankTopProducts(ctx context.Context, keyword string, topN int, mode RankMode) ([]model.ProductAggregate, error) {
	if topN <= 0 {
		topN = e.defaultTopN
	}
	mode = e.ResolveRankMode(mode)
	if _, err := ParseRankMode(string(mode)); err != nil {
		return nil, err
	}

	snapshot, err := e.Snapshot()
	if err != nil {
		return nil, err
	}

	key := cache.Key{BuildID: snapshot.BuildID, Mode: string(mode), Keyword: keyword, TopN: topN}
	ranked, _, err := e.cache.GetOrCompute(ctx, key, func() ([]model.ProductAggregate, error) {
		switch mode {
		case ModeFullText:
			result, err := snapshot.searcher.Search(keyword, 0)
			if err != nil {
				return nil, err
			}
			return ranking.RankByRelevance(result.Hits, snapshot.Store, topN), nil
		default:
			matched := search.FilterByTitleSubstring(snapshot.Store.All(), keyword)
			return ranking.RankProducts(matched, topN), nil
		}
	})
	return ranked, err
}

// ResolveRankMode returns the mode a ranking with mode would use: the
// engine default when mode is empty.
func (e *Engine) ResolveRankMode(mode RankMode) RankMode {
	if mode == "" {
		return e.defaultMode
	}
	return mode
}

// CompareProduct summarizes all reviews of one product.
func (e *Engine) CompareProduct(productID string) (model.Comparison, error) {
	start := time.Now()
	snapshot, err := e.Snapshot()
	if err != nil {
		e.observe(model.OperationCompareProduct, productID, start, 0, false, err)
		return model.Comparison{}, err
	}
	comparison, err := ranking.CompareProduct(productID, snapshot.Store.ByProduct(productID))
	e.observe(model.OperationCompareProduct, productID, start, comparison.ReviewCount, false, err)
	return comparison, err
}

// CompareProducts summarizes several products side by side.
func (e *Engine) CompareProducts(productIDs []string) ([]model.Comparison, error) {
	start := time.Now()
	keyword := strings.Join(productIDs, ",")
	snapshot, err := e.Snapshot()
	if err != nil {
		e.observe(model.OperationCompareProduct, keyword, start, 0, false, err)
		return nil, err
	}
	comparisons, err := ranking.CompareProducts(productIDs, snapshot.Store.All())
	e.observe(model.OperationCompareProduct, keyword, start, len(comparisons), false, err)
	return comparisons, err
}

// Export writes the live corpus as NDJSON and returns the record count.
func (e *Engine) Export(w io.Writer) (int, error) {
	snapshot, err := e.Snapshot()
	if err != nil {
		return 0, err
	}
	return export.Write(w, snapshot.Store.All())
}

// observe feeds one query outcome to analytics and metrics. emptyQuery
// reports a query that normalized to no terms.
func (e *Engine) observe(op model.QueryOperation, keyword string, start time.Time, results int, emptyQuery bool, err error) {
	took := time.Since(start)

	outcome := metrics.ResultOK
	switch {
	case err != nil:
		outcome = metrics.ResultError
	case emptyQuery:
		outcome = metrics.ResultEmptyQuery
	case results == 0:
		outcome = metrics.ResultZeroResult
	}
	e.metrics.ObserveQuery(string(op), outcome, took, results)

	if e.analytics != nil {
		e.analytics.Track(model.QueryEvent{
			Operation:    op,
			Keyword:      keyword,
			ResponseTime: took,
			ResultCount:  results,
			Failed:       err != nil,
		})
	}

	if err != nil && !stderrors.Is(err, errors.ErrProductNotFound) && !stderrors.Is(err, errors.ErrInvalidInput) {
		e.logger.Warn("query failed", "operation", op, "keyword", keyword, "error", err)
		return
	}
	e.logger.Debug("query", "operation", op, "keyword", keyword, "results", results, "took", took)
}
