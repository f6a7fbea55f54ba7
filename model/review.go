package model

import (
	"encoding/json"
	"fmt"
)

// SentimentLabel is the categorical sentiment attached to a review.
type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "positive"
	SentimentNeutral  SentimentLabel = "neutral"
	SentimentNegative SentimentLabel = "negative"
)

// Valid reports whether l is one of the three known labels.
func (l SentimentLabel) Valid() bool {
	switch l {
	case SentimentPositive, SentimentNeutral, SentimentNegative:
		return true
	}
	return false
}

// Sentiment is the annotator output for one review: a compound score in [-1, 1]
// and its label.
type Sentiment struct {
	Score float64        `json:"compound_score"`
	Label SentimentLabel `json:"sentiment"`
}

// Review is the canonical, schema-fixed representation of one review row.
// Sentiment is nil until the annotation pass has run.
type Review struct {
	DocID            uint32     `json:"doc_id"`
	Marketplace      string     `json:"marketplace"`
	ProductID        string     `json:"product_id"`
	ProductParent    string     `json:"product_parent"`
	ProductTitle     string     `json:"product_title"`
	ProductCategory  string     `json:"product_category"`
	StarRating       int        `json:"star_rating"`
	HelpfulVotes     int        `json:"helpful_votes"`
	TotalVotes       int        `json:"total_votes"`
	VerifiedPurchase bool       `json:"verified_purchase"`
	Headline         string     `json:"review_headline"`
	Body             string     `json:"review_body"`
	Sentiment        *Sentiment `json:"sentiment,omitempty"`
}

// Contents returns the text that is tokenized for the index:
// product title, headline and body joined by single spaces.
func (r Review) Contents() string {
	return r.ProductTitle + " " + r.Headline + " " + r.Body
}

// WithSentiment returns a copy of r carrying s. The receiver is left untouched.
func (r Review) WithSentiment(s Sentiment) Review {
	r.Sentiment = &s
	return r
}

// Hit is one scored document returned by a token search.
type Hit struct {
	DocID  uint32  `json:"doc_id"`
	Score  float64 `json:"score"`
	Review *Review `json:"review,omitempty"`
}

// Average is a mean over zero or more values. An average over an empty set is
// not a number but an explicit undefined marker, serialized as JSON null.
type Average struct {
	Value   float64
	Defined bool
}

// NewAverage computes the mean of values.
func NewAverage(values []float64) Average {
	if len(values) == 0 {
		return Average{}
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return Average{Value: sum / float64(len(values)), Defined: true}
}

// Compare orders two averages; undefined sorts below every defined value.
// It returns -1, 0 or 1.
func (a Average) Compare(b Average) int {
	switch {
	case !a.Defined && !b.Defined:
		return 0
	case !a.Defined:
		return -1
	case !b.Defined:
		return 1
	case a.Value < b.Value:
		return -1
	case a.Value > b.Value:
		return 1
	}
	return 0
}

func (a Average) String() string {
	if !a.Defined {
		return "undefined"
	}
	return fmt.Sprintf("%.4f", a.Value)
}

// MarshalJSON implements json.Marshaler.
func (a Average) MarshalJSON() ([]byte, error) {
	if !a.Defined {
		return []byte("null"), nil
	}
	return json.Marshal(a.Value)
}

// UnmarshalJSON implements json.Unmarshaler.
func (a *Average) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*a = Average{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*a = Average{Value: v, Defined: true}
	return nil
}

// ProductAggregate summarizes the matched reviews of one product.
// TextRelevance is only set by relevance-driven rankings.
type ProductAggregate struct {
	ProductID     string   `json:"product_id"`
	ProductTitle  string   `json:"product_title"`
	AvgSentiment  Average  `json:"avg_sentiment_score"`
	AvgRating     Average  `json:"avg_rating"`
	ReviewCount   int      `json:"review_count"`
	TextRelevance *float64 `json:"text_relevance,omitempty"`
}

// Comparison is the per-product summary returned by product comparison.
type Comparison struct {
	ProductID    string  `json:"product_id"`
	ProductTitle string  `json:"product_title"`
	AvgSentiment Average `json:"avg_sentiment_score"`
	AvgRating    Average `json:"avg_rating"`
	ReviewCount  int     `json:"review_count"`
}
