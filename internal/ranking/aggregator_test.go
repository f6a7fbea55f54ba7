package ranking

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcbaptista/review-radar/internal/errors"
	"github.com/gcbaptista/review-radar/internal/indexing"
	"github.com/gcbaptista/review-radar/internal/search"
	fixtures "github.com/gcbaptista/review-radar/internal/testing"
	"github.com/gcbaptista/review-radar/model"
)

func rev(docID uint32, productID, title string, rating int, sentiment *float64) model.Review {
	r := model.Review{DocID: docID, ProductID: productID, ProductTitle: title, StarRating: rating, Body: "body"}
	if sentiment != nil {
		r = r.WithSentiment(model.Sentiment{Score: *sentiment, Label: model.SentimentNeutral})
	}
	return r
}

func score(v float64) *float64 { return &v }

func productIDs(aggs []model.ProductAggregate) []string {
	ids := make([]string, len(aggs))
	for i, a := range aggs {
		ids[i] = a.ProductID
	}
	return ids
}

func TestRankProducts_Scenario(t *testing.T) {
	ranked := RankProducts(search.FilterByTitleSubstring(fixtures.ScenarioReviews(), "Nail"), 0)

	require.Len(t, ranked, 2)
	assert.Equal(t, "P1", ranked[0].ProductID)
	assert.Equal(t, "Nail Clipper", ranked[0].ProductTitle)
	assert.Equal(t, model.Average{Value: 0.8, Defined: true}, ranked[0].AvgSentiment)
	assert.Equal(t, model.Average{Value: 5, Defined: true}, ranked[0].AvgRating)
	assert.Equal(t, "P2", ranked[1].ProductID)
	assert.Equal(t, model.Average{Value: 0.1, Defined: true}, ranked[1].AvgSentiment)
	assert.Equal(t, model.Average{Value: 3, Defined: true}, ranked[1].AvgRating)
	assert.Nil(t, ranked[0].TextRelevance)
}

func TestRankProducts_Ordering(t *testing.T) {
	tests := []struct {
		name    string
		reviews []model.Review
		want    []string
	}{
		{
			name: "sentiment first",
			reviews: []model.Review{
				rev(0, "A", "a", 5, score(0.1)),
				rev(1, "B", "b", 1, score(0.9)),
			},
			want: []string{"B", "A"},
		},
		{
			name: "rating breaks sentiment ties",
			reviews: []model.Review{
				rev(0, "A", "a", 2, score(0.5)),
				rev(1, "B", "b", 4, score(0.5)),
			},
			want: []string{"B", "A"},
		},
		{
			name: "product id breaks full ties",
			reviews: []model.Review{
				rev(0, "Z", "z", 3, score(0.5)),
				rev(1, "M", "m", 3, score(0.5)),
				rev(2, "A", "a", 3, score(0.5)),
			},
			want: []string{"A", "M", "Z"},
		},
		{
			name: "undefined sentiment sorts last",
			reviews: []model.Review{
				rev(0, "A", "a", 5, nil),
				rev(1, "B", "b", 1, score(-0.9)),
			},
			want: []string{"B", "A"},
		},
		{
			name: "averages across reviews",
			reviews: []model.Review{
				rev(0, "A", "a", 5, score(1)),
				rev(1, "A", "a", 5, score(-0.6)),
				rev(2, "B", "b", 3, score(0.3)),
			},
			want: []string{"B", "A"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, productIDs(RankProducts(tt.reviews, 0)))
		})
	}
}

func TestRankProducts_PartialSentiment(t *testing.T) {
	ranked := RankProducts([]model.Review{
		rev(0, "A", "First title", 4, nil),
		rev(1, "A", "Second title", 2, score(0.4)),
	}, 0)

	require.Len(t, ranked, 1)
	assert.Equal(t, "First title", ranked[0].ProductTitle)
	assert.Equal(t, 2, ranked[0].ReviewCount)
	assert.Equal(t, model.Average{Value: 0.4, Defined: true}, ranked[0].AvgSentiment)
	assert.Equal(t, model.Average{Value: 3, Defined: true}, ranked[0].AvgRating)
}

func TestRankProducts_UndefinedSerializesAsNull(t *testing.T) {
	ranked := RankProducts([]model.Review{rev(0, "A", "a", 4, nil)}, 0)

	data, err := json.Marshal(ranked[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), `"avg_sentiment_score":null`)
	assert.Contains(t, string(data), `"avg_rating":4`)
}

func TestRankProducts_TopN(t *testing.T) {
	var reviews []model.Review
	for i := 0; i < 15; i++ {
		reviews = append(reviews, rev(uint32(i), fmt.Sprintf("P%02d", i), "t", 3, score(float64(i)/20)))
	}

	assert.Len(t, RankProducts(reviews, 0), DefaultTopN)
	assert.Len(t, RankProducts(reviews, -1), DefaultTopN)
	assert.Len(t, RankProducts(reviews, 3), 3)
	assert.Len(t, RankProducts(reviews, 50), 15)
	assert.Equal(t, "P14", RankProducts(reviews, 1)[0].ProductID)
}

func TestRankProducts_Empty(t *testing.T) {
	ranked := RankProducts(nil, 10)
	assert.NotNil(t, ranked)
	assert.Empty(t, ranked)
}

func TestRankByRelevance(t *testing.T) {
	reviews := []model.Review{
		rev(0, "A", "Clipper A", 5, score(0.5)),
		rev(1, "B", "Clipper B", 5, score(0.5)),
		rev(2, "A", "Clipper A2", 5, score(0.5)),
	}
	_, docs, err := indexing.Build(reviews)
	require.NoError(t, err)

	hits := []model.Hit{
		{DocID: 2, Score: 0.4},
		{DocID: 1, Score: 0.5},
		{DocID: 0, Score: 0.3},
		{DocID: 99, Score: 1},
	}
	ranked := RankByRelevance(hits, docs, 0)

	require.Len(t, ranked, 2)
	assert.Equal(t, "A", ranked[0].ProductID, "higher summed relevance breaks the tie")
	require.NotNil(t, ranked[0].TextRelevance)
	assert.InDelta(t, 0.7, *ranked[0].TextRelevance, 1e-12)
	assert.Equal(t, "Clipper A", ranked[0].ProductTitle)
	assert.Equal(t, 2, ranked[0].ReviewCount)
	assert.InDelta(t, 0.5, *ranked[1].TextRelevance, 1e-12)
}

func TestCompareProduct(t *testing.T) {
	reviews := fixtures.ScenarioReviews()

	c, err := CompareProduct("P1", reviews)
	require.NoError(t, err)
	assert.Equal(t, "Nail Clipper", c.ProductTitle)
	assert.Equal(t, 0.8, c.AvgSentiment.Value)
	assert.Equal(t, 5.0, c.AvgRating.Value)
	assert.Equal(t, 1, c.ReviewCount)

	_, err = CompareProduct("P3", reviews)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrProductNotFound)
	var notFound *errors.ProductNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "P3", notFound.ProductID)
}

func TestCompareProduct_NoSentiment(t *testing.T) {
	c, err := CompareProduct("A", []model.Review{rev(0, "A", "a", 2, nil)})
	require.NoError(t, err)
	assert.False(t, c.AvgSentiment.Defined)
	assert.True(t, c.AvgRating.Defined)
}

func TestCompareProducts(t *testing.T) {
	reviews := fixtures.ScenarioReviews()

	comparisons, err := CompareProducts([]string{"P2", "P1"}, reviews)
	require.NoError(t, err)
	require.Len(t, comparisons, 2)
	assert.Equal(t, "P2", comparisons[0].ProductID)
	assert.Equal(t, "P1", comparisons[1].ProductID)

	_, err = CompareProducts([]string{"P1", "P3"}, reviews)
	assert.ErrorIs(t, err, errors.ErrProductNotFound)

	_, err = CompareProducts(nil, reviews)
	assert.ErrorIs(t, err, errors.ErrInvalidInput)
}
