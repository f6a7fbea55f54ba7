package index

import "sort"

// InvertedIndex maps a normalized term to the documents containing it.
// It is produced once by the index builder and never mutated afterwards,
// so concurrent readers need no locking.
type InvertedIndex struct {
	Postings   map[string]PostingList
	DocLengths []int // Token count per document, indexed by DocID
}

// New returns an empty index sized for docCount documents.
func New(docCount int) *InvertedIndex {
	return &InvertedIndex{
		Postings:   make(map[string]PostingList),
		DocLengths: make([]int, 0, docCount),
	}
}

// TotalDocs returns N, the number of indexed documents.
func (ii *InvertedIndex) TotalDocs() int {
	return len(ii.DocLengths)
}

// DocumentFrequency returns the number of documents containing term.
// Each document appears at most once in a posting list.
func (ii *InvertedIndex) DocumentFrequency(term string) int {
	return len(ii.Postings[term])
}

// Lookup returns the posting list for term and whether the term is indexed.
func (ii *InvertedIndex) Lookup(term string) (PostingList, bool) {
	pl, ok := ii.Postings[term]
	return pl, ok
}

// DocLength returns the token count of docID, or 0 for an unknown document.
func (ii *InvertedIndex) DocLength(docID uint32) int {
	if int(docID) >= len(ii.DocLengths) {
		return 0
	}
	return ii.DocLengths[docID]
}

// TermCount returns the vocabulary size.
func (ii *InvertedIndex) TermCount() int {
	return len(ii.Postings)
}

// Terms returns the vocabulary in lexicographic order.
func (ii *InvertedIndex) Terms() []string {
	terms := make([]string, 0, len(ii.Postings))
	for term := range ii.Postings {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	return terms
}
