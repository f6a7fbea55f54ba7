// Package search implements token search over a frozen review index and the
// title substring filter.
package search

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/gcbaptista/review-radar/index"
	"github.com/gcbaptista/review-radar/internal/errors"
	"github.com/gcbaptista/review-radar/internal/tokenizer"
	"github.com/gcbaptista/review-radar/model"
	"github.com/gcbaptista/review-radar/store"
)

// Result is the outcome of a token search.
type Result struct {
	Hits       []model.Hit `json:"hits"`
	Total      int         `json:"total"` // Matching documents before topK truncation
	Terms      []string    `json:"terms"` // Distinct normalized query terms
	EmptyQuery bool        `json:"empty_query"`
	Took       int64       `json:"took"` // Milliseconds
}

// Err returns errors.ErrEmptyQuery when the query normalized to no terms.
func (r Result) Err() error {
	if r.EmptyQuery {
		return errors.ErrEmptyQuery
	}
	return nil
}

// Service implements search over a single snapshot. It holds no mutable
// state and is safe for concurrent use.
type Service struct {
	invertedIndex *index.InvertedIndex
	documentStore *store.DocumentStore
	scorer        *Scorer
}

// NewService creates a new search Service.
func NewService(invIndex *index.InvertedIndex, docStore *store.DocumentStore) (*Service, error) {
	if invIndex == nil {
		return nil, fmt.Errorf("inverted index cannot be nil")
	}
	if docStore == nil {
		return nil, fmt.Errorf("document store cannot be nil")
	}
	return &Service{
		invertedIndex: invIndex,
		documentStore: docStore,
		scorer:        NewScorer(invIndex),
	}, nil
}

// Search returns documents matching at least one distinct query term, best
// first. Ties are broken by ascending DocID. topK <= 0 returns every match.
func (s *Service) Search(query string, topK int) (Result, error) {
	startTime := time.Now()

	terms := tokenizer.DistinctTerms(query)
	if len(terms) == 0 {
		return Result{Hits: []model.Hit{}, Terms: terms, EmptyQuery: true}, nil
	}

	scores := s.scorer.ScoreAll(terms)

	hits := make([]model.Hit, 0, len(scores))
	for docID, score := range scores {
		hit := model.Hit{DocID: docID, Score: score}
		if review, ok := s.documentStore.Get(docID); ok {
			r := review
			hit.Review = &r
		}
		hits = append(hits, hit)
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].DocID < hits[j].DocID
	})

	total := len(hits)
	if topK > 0 && len(hits) > topK {
		hits = hits[:topK]
	}

	return Result{
		Hits:  hits,
		Total: total,
		Terms: terms,
		Took:  time.Since(startTime).Milliseconds(),
	}, nil
}

// NamedQuery is one entry of a multi-search request.
type NamedQuery struct {
	Name  string `json:"name"`
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

// MultiSearch executes multiple named queries in parallel.
func (s *Service) MultiSearch(ctx context.Context, queries []NamedQuery) (map[string]Result, error) {
	if len(queries) == 0 {
		return nil, errors.NewValidationError("queries", "at least one query is required")
	}

	type queryResult struct {
		name   string
		result Result
		err    error
	}

	seen := make(map[string]struct{}, len(queries))
	for _, q := range queries {
		if q.Name == "" {
			return nil, errors.NewValidationError("name", "each query must have a non-empty name")
		}
		if _, dup := seen[q.Name]; dup {
			return nil, errors.NewValidationError("name", fmt.Sprintf("duplicate query name '%s'", q.Name))
		}
		seen[q.Name] = struct{}{}
	}

	resultChan := make(chan queryResult, len(queries))
	for _, q := range queries {
		go func(nq NamedQuery) {
			result, err := s.Search(nq.Query, nq.TopK)
			resultChan <- queryResult{name: nq.Name, result: result, err: err}
		}(q)
	}

	results := make(map[string]Result, len(queries))
	for i := 0; i < len(queries); i++ {
		select {
		case qr := <-resultChan:
			if qr.err != nil {
				return nil, fmt.Errorf("error executing query '%s': %w", qr.name, qr.err)
			}
			results[qr.name] = qr.result
		case <-ctx.Done():
			return nil, fmt.Errorf("multi-search cancelled: %w", ctx.Err())
		}
	}
	return results, nil
}
