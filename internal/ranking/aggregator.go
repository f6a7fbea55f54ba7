// Package ranking aggregates matched reviews per product and orders products
// by average sentiment and rating.
package ranking

import (
	"sort"

	"github.com/gcbaptista/review-radar/internal/errors"
	"github.com/gcbaptista/review-radar/model"
	"github.com/gcbaptista/review-radar/store"
)

// DefaultTopN is the number of products returned when the caller asks for
// none or a negative amount.
const DefaultTopN = 10

// group accumulates one product's reviews in ingestion order.
type group struct {
	productID  string
	title      string
	sentiments []float64
	ratings    []float64
	count      int
	relevance  float64
}

func (g *group) add(r model.Review) {
	if g.count == 0 {
		g.title = r.ProductTitle
	}
	g.count++
	g.ratings = append(g.ratings, float64(r.StarRating))
	if r.Sentiment != nil {
		g.sentiments = append(g.sentiments, r.Sentiment.Score)
	}
}

func (g *group) aggregate() model.ProductAggregate {
	return model.ProductAggregate{
		ProductID:    g.productID,
		ProductTitle: g.title,
		AvgSentiment: model.NewAverage(g.sentiments),
		AvgRating:    model.NewAverage(g.ratings),
		ReviewCount:  g.count,
	}
}

// groupByProduct groups reviews, keeping first-seen product order.
func groupByProduct(reviews []model.Review) []*group {
	byID := make(map[string]*group)
	var order []*group
	for _, r := range reviews {
		g, ok := byID[r.ProductID]
		if !ok {
			g = &group{productID: r.ProductID}
			byID[r.ProductID] = g
			order = append(order, g)
		}
		g.add(r)
	}
	return order
}

// RankProducts groups matched reviews by product and returns the best topN
// products by average sentiment, then average rating, then product ID.
// topN <= 0 means DefaultTopN.
func RankProducts(matched []model.Review, topN int) []model.ProductAggregate {
	groups := groupByProduct(matched)
	aggregates := make([]model.ProductAggregate, len(groups))
	for i, g := range groups {
		aggregates[i] = g.aggregate()
	}
	sortAggregates(aggregates)
	return truncate(aggregates, topN)
}

// RankByRelevance is the full-text variant of RankProducts: it groups the
// reviews behind token-search hits and records the summed hit score of each
// product as TextRelevance. Ordering uses the same keys as RankProducts,
// with higher relevance breaking ties before product ID.
func RankByRelevance(hits []model.Hit, docs *store.DocumentStore, topN int) []model.ProductAggregate {
	// Hits arrive best-first; regroup them in DocID order so the product title
	// comes from the earliest ingested review.
	ordered := make([]model.Hit, len(hits))
	copy(ordered, hits)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].DocID < ordered[j].DocID })

	byID := make(map[string]*group)
	var order []*group
	for _, h := range ordered {
		r, ok := docs.Get(h.DocID)
		if !ok {
			continue
		}
		g, ok := byID[r.ProductID]
		if !ok {
			g = &group{productID: r.ProductID}
			byID[r.ProductID] = g
			order = append(order, g)
		}
		g.add(r)
		g.relevance += h.Score
	}

	aggregates := make([]model.ProductAggregate, len(order))
	for i, g := range order {
		aggregates[i] = g.aggregate()
		relevance := g.relevance
		aggregates[i].TextRelevance = &relevance
	}
	sortAggregates(aggregates)
	return truncate(aggregates, topN)
}

// CompareProduct summarizes every review of productID.
func CompareProduct(productID string, reviews []model.Review) (model.Comparison, error) {
	g := &group{productID: productID}
	for _, r := range reviews {
		if r.ProductID == productID {
			g.add(r)
		}
	}
	if g.count == 0 {
		return model.Comparison{}, errors.NewProductNotFoundError(productID)
	}
	agg := g.aggregate()
	return model.Comparison{
		ProductID:    agg.ProductID,
		ProductTitle: agg.ProductTitle,
		AvgSentiment: agg.AvgSentiment,
		AvgRating:    agg.AvgRating,
		ReviewCount:  agg.ReviewCount,
	}, nil
}

// CompareProducts summarizes several products side by side, in the order the
// IDs were given. It fails on the first unknown product.
func CompareProducts(productIDs []string, reviews []model.Review) ([]model.Comparison, error) {
	if len(productIDs) == 0 {
		return nil, errors.NewValidationError("product_ids", "at least one product ID is required")
	}
	comparisons := make([]model.Comparison, 0, len(productIDs))
	for _, id := range productIDs {
		c, err := CompareProduct(id, reviews)
		if err != nil {
			return nil, err
		}
		comparisons = append(comparisons, c)
	}
	return comparisons, nil
}

func sortAggregates(aggregates []model.ProductAggregate) {
	sort.SliceStable(aggregates, func(i, j int) bool {
		a, b := aggregates[i], aggregates[j]
		if c := a.AvgSentiment.Compare(b.AvgSentiment); c != 0 {
			return c > 0
		}
		if c := a.AvgRating.Compare(b.AvgRating); c != 0 {
			return c > 0
		}
		if a.TextRelevance != nil && b.TextRelevance != nil && *a.TextRelevance != *b.TextRelevance {
			return *a.TextRelevance > *b.TextRelevance
		}
		return a.ProductID < b.ProductID
	})
}

func truncate(aggregates []model.ProductAggregate, topN int) []model.ProductAggregate {
	if topN <= 0 {
		topN = DefaultTopN
	}
	if len(aggregates) > topN {
		return aggregates[:topN]
	}
	return aggregates
}
