package index

// PostingEntry represents a document that contains a term and how often the
// term occurs in that document's indexed text.
type PostingEntry struct {
	DocID         uint32 // Internal numeric ID, equal to the review's ingestion position
	TermFrequency int    // Always >= 1
}

// PostingList is a slice of PostingEntry sorted by DocID ascending.
type PostingList []PostingEntry
