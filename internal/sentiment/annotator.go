// Package sentiment defines the sentiment annotator contract and the pass that
// attaches annotator output to canonical reviews.
package sentiment

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/gcbaptista/review-radar/internal/logger"
	"github.com/gcbaptista/review-radar/model"
)

// Annotator scores a piece of text. Implementations must be deterministic for
// identical input and safe for concurrent use.
type Annotator interface {
	Score(text string) (compound float64, label model.SentimentLabel, err error)
}

// AnnotatorFunc adapts a plain function to the Annotator interface.
type AnnotatorFunc func(text string) (float64, model.SentimentLabel, error)

// Score implements Annotator.
func (f AnnotatorFunc) Score(text string) (float64, model.SentimentLabel, error) {
	return f(text)
}

// Result is the outcome of an annotation pass.
type Result struct {
	Reviews []model.Review
	// Rejected counts reviews whose annotator output failed the range check;
	// those reviews keep a nil Sentiment.
	Rejected int
}

// Pass runs an Annotator over a batch of reviews with bounded parallelism.
type Pass struct {
	annotator Annotator
	workers   int
	logger    *slog.Logger
}

// NewPass creates an annotation pass. workers <= 0 uses GOMAXPROCS.
func NewPass(annotator Annotator, workers int) (*Pass, error) {
	if annotator == nil {
		return nil, fmt.Errorf("annotator cannot be nil")
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Pass{
		annotator: annotator,
		workers:   workers,
		logger:    logger.WithComponent("sentiment"),
	}, nil
}

// Annotate scores each review body and returns new reviews with sentiment
// attached, in the same order as the input. The input slice is not modified.
// An annotator error aborts the pass.
func (p *Pass) Annotate(ctx context.Context, reviews []model.Review) (Result, error) {
	out := make([]model.Review, len(reviews))
	accepted := make([]bool, len(reviews))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for i := range reviews {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			review := reviews[i]
			score, label, err := p.annotator.Score(review.Body)
			if err != nil {
				return fmt.Errorf("annotating document %d: %w", review.DocID, err)
			}
			if !InRange(score, label) {
				out[i] = review
				return nil
			}
			out[i] = review.WithSentiment(model.Sentiment{Score: score, Label: label})
			accepted[i] = true
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	result := Result{Reviews: out}
	for i, ok := range accepted {
		if !ok {
			result.Rejected++
			p.logger.Debug("sentiment out of range, leaving review unannotated", "doc_id", out[i].DocID)
		}
	}
	if result.Rejected > 0 {
		p.logger.Warn("annotator output rejected", "rejected", result.Rejected, "total", len(reviews))
	}
	return result, nil
}

// InRange reports whether annotator output is usable: a finite score within
// [-1, 1] and a known label.
func InRange(score float64, label model.SentimentLabel) bool {
	if math.IsNaN(score) || score < -1 || score > 1 {
		return false
	}
	return label.Valid()
}
