package store

import (
	"github.com/gcbaptista/review-radar/model"
)

// DocumentStore maps internal document IDs to canonical reviews.
// Reviews are held in DocID order, so the slice position is the ID.
// The store is read-only once the index build that produced it completes.
type DocumentStore struct {
	docs []model.Review
}

// New creates a store over reviews. The caller guarantees reviews[i].DocID == i
// and must not modify the slice afterwards.
func New(reviews []model.Review) *DocumentStore {
	return &DocumentStore{docs: reviews}
}

// Get returns the review with the given internal ID.
func (ds *DocumentStore) Get(docID uint32) (model.Review, bool) {
	if int(docID) >= len(ds.docs) {
		return model.Review{}, false
	}
	return ds.docs[docID], true
}

// Len returns the number of stored reviews.
func (ds *DocumentStore) Len() int {
	return len(ds.docs)
}

// All returns a copy of every review in DocID order.
func (ds *DocumentStore) All() []model.Review {
	out := make([]model.Review, len(ds.docs))
	copy(out, ds.docs)
	return out
}

// ByProduct returns the reviews of productID in DocID order.
func (ds *DocumentStore) ByProduct(productID string) []model.Review {
	var out []model.Review
	for _, r := range ds.docs {
		if r.ProductID == productID {
			out = append(out, r)
		}
	}
	return out
}
