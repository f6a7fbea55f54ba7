package search

import (
	"math"

	"github.com/gcbaptista/review-radar/index"
)

// Scorer computes length-normalized tf-idf scores against a frozen index
type Scorer struct {
	invertedIndex *index.InvertedIndex
}

// NewScorer creates a scorer bound to invIndex
func NewScorer(invIndex *index.InvertedIndex) *Scorer {
	return &Scorer{invertedIndex: invIndex}
}

// IDF returns ln(1 + N/df), or 0 for a term no document contains
func (s *Scorer) IDF(term string) float64 {
	df := s.invertedIndex.DocumentFrequency(term)
	if df == 0 {
		return 0
	}
	n := float64(s.invertedIndex.TotalDocs())
	return math.Log(1 + n/float64(df))
}

// LengthNorm returns the denominator 1 + ln(1 + docLength)
func (s *Scorer) LengthNorm(docID uint32) float64 {
	return 1 + math.Log(1+float64(s.invertedIndex.DocLength(docID)))
}

// ScoreAll scores every document containing at least one of the given
// distinct terms: the sum of tf*idf divided by the document's length norm
func (s *Scorer) ScoreAll(terms []string) map[uint32]float64 {
	scores := make(map[uint32]float64)
	for _, term := range terms {
		pl, ok := s.invertedIndex.Lookup(term)
		if !ok {
			continue
		}
		idf := s.IDF(term)
		for _, entry := range pl {
			scores[entry.DocID] += float64(entry.TermFrequency) * idf
		}
	}
	for docID, sum := range scores {
		scores[docID] = sum / s.LengthNorm(docID)
	}
	return scores
}
