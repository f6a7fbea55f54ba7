package model

// RawRecord is one already-parsed review row, keyed by the source column name
// (e.g. "product_id", "star_rating"). Values keep whatever type the parser
// produced: JSON decoding yields float64/bool/string, TSV readers yield strings.
type RawRecord map[string]interface{}

// Required column names of a raw review row.
const (
	FieldMarketplace      = "marketplace"
	FieldProductID        = "product_id"
	FieldProductParent    = "product_parent"
	FieldProductTitle     = "product_title"
	FieldProductCategory  = "product_category"
	FieldStarRating       = "star_rating"
	FieldHelpfulVotes     = "helpful_votes"
	FieldTotalVotes       = "total_votes"
	FieldVerifiedPurchase = "verified_purchase"
	FieldReviewHeadline   = "review_headline"
	FieldReviewBody       = "review_body"
)

// RequiredFields lists the columns every raw row must carry, in source order.
var RequiredFields = []string{
	FieldMarketplace,
	FieldProductID,
	FieldProductParent,
	FieldProductTitle,
	FieldProductCategory,
	FieldStarRating,
	FieldHelpfulVotes,
	FieldTotalVotes,
	FieldVerifiedPurchase,
	FieldReviewHeadline,
	FieldReviewBody,
}

// Get returns the value stored under key, treating an explicit nil as missing.
func (r RawRecord) Get(key string) (interface{}, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}
