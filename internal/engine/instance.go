package engine

import (
	"time"

	"github.com/gcbaptista/review-radar/index"
	"github.com/gcbaptista/review-radar/internal/search"
	"github.com/gcbaptista/review-radar/store"
)

// BuildStats describes how a snapshot was produced.
type BuildStats struct {
	RowsRead          int           `json:"rows_read"`
	DocumentsIndexed  int           `json:"documents_indexed"`
	RowsSkipped       int           `json:"rows_skipped"`
	SentimentRejected int           `json:"sentiment_rejected"`
	Terms             int           `json:"terms"`
	Duration          time.Duration `json:"duration_ns"`
}

// Snapshot is one immutable build of the corpus: the index, the document
// store it was built from, and the search service bound to both. A snapshot
// is never modified after it is published.
type Snapshot struct {
	BuildID string
	Index   *index.InvertedIndex
	Store   *store.DocumentStore
	Stats   BuildStats
	BuiltAt time.Time

	searcher *search.Service
}

// Searcher returns the search service bound to this snapshot.
func (s *Snapshot) Searcher() *search.Service {
	return s.searcher
}
