// Package indexing builds the immutable inverted index and document store
// from a sequence of canonical reviews.
package indexing

import (
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/gcbaptista/review-radar/index"
	"github.com/gcbaptista/review-radar/internal/errors"
	"github.com/gcbaptista/review-radar/internal/logger"
	"github.com/gcbaptista/review-radar/internal/tokenizer"
	"github.com/gcbaptista/review-radar/model"
	"github.com/gcbaptista/review-radar/store"
)

// BuildConfig controls how the builder spreads tokenization work.
type BuildConfig struct {
	WorkerCount      int // Parallel tokenization workers
	BatchSize        int // Documents handed to a worker at a time
	ProgressCallback func(processed, total int, message string)
}

// DefaultBuildConfig returns sensible defaults for index builds
func DefaultBuildConfig() BuildConfig {
	return BuildConfig{
		WorkerCount: runtime.NumCPU(),
		BatchSize:   500,
	}
}

// Builder turns reviews into an index and store.
type Builder struct {
	config BuildConfig
	logger *slog.Logger
}

// NewBuilder creates a builder. Zero config values fall back to the defaults.
func NewBuilder(config BuildConfig) *Builder {
	defaults := DefaultBuildConfig()
	if config.WorkerCount <= 0 {
		config.WorkerCount = defaults.WorkerCount
	}
	if config.BatchSize <= 0 {
		config.BatchSize = defaults.BatchSize
	}
	return &Builder{config: config, logger: logger.WithComponent("indexing")}
}

// Build indexes reviews with the default configuration.
func Build(reviews []model.Review) (*index.InvertedIndex, *store.DocumentStore, error) {
	return NewBuilder(DefaultBuildConfig()).Build(reviews)
}

// docTerms is the tokenization output for one document.
type docTerms struct {
	frequencies map[string]int
	length      int
}

// Build tokenizes title, headline and body of every review and merges the
// per-document term frequencies into posting lists ordered by DocID.
// reviews[i].DocID must equal i.
func (b *Builder) Build(reviews []model.Review) (*index.InvertedIndex, *store.DocumentStore, error) {
	for i, r := range reviews {
		if int(r.DocID) != i {
			return nil, nil, errors.NewValidationError("doc_id",
				fmt.Sprintf("document IDs must be contiguous from 0: position %d has ID %d", i, r.DocID))
		}
	}

	start := time.Now()
	terms := b.tokenizeAll(reviews)

	// Documents are merged in DocID order so every append keeps postings sorted.
	idx := index.New(len(reviews))
	for docID, dt := range terms {
		for term, tf := range dt.frequencies {
			idx.Postings[term] = append(idx.Postings[term], index.PostingEntry{
				DocID:         uint32(docID),
				TermFrequency: tf,
			})
		}
		idx.DocLengths = append(idx.DocLengths, dt.length)
	}

	docs := make([]model.Review, len(reviews))
	copy(docs, reviews)

	b.logger.Info("index built",
		"documents", idx.TotalDocs(),
		"terms", idx.TermCount(),
		"duration", time.Since(start))
	return idx, store.New(docs), nil
}

// tokenizeAll runs tokenization on a worker pool. Each worker writes only to
// the slots of its own batch.
func (b *Builder) tokenizeAll(reviews []model.Review) []docTerms {
	out := make([]docTerms, len(reviews))
	if len(reviews) == 0 {
		return out
	}

	type batch struct{ from, to int }
	batches := make(chan batch, b.config.WorkerCount*2)

	var processed int
	var progressMu sync.Mutex
	var wg sync.WaitGroup

	for w := 0; w < b.config.WorkerCount; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for bt := range batches {
				for i := bt.from; i < bt.to; i++ {
					freqs, length := tokenizer.TermFrequencies(reviews[i].Contents())
					out[i] = docTerms{frequencies: freqs, length: length}
				}
				if b.config.ProgressCallback != nil {
					progressMu.Lock()
					processed += bt.to - bt.from
					b.config.ProgressCallback(processed, len(reviews), "tokenizing documents")
					progressMu.Unlock()
				}
			}
		}()
	}

	for from := 0; from < len(reviews); from += b.config.BatchSize {
		to := from + b.config.BatchSize
		if to > len(reviews) {
			to = len(reviews)
		}
		batches <- batch{from: from, to: to}
	}
	close(batches)
	wg.Wait()
	return out
}
