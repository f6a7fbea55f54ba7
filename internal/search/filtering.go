package search

import (
	"strings"

	"github.com/gcbaptista/review-radar/model"
)

// FilterByTitleSubstring returns the reviews whose product title contains
// keyword, compared case-insensitively, in input order. An empty keyword
// matches every review.
func FilterByTitleSubstring(reviews []model.Review, keyword string) []model.Review {
	needle := strings.ToLower(keyword)
	matched := make([]model.Review, 0)
	for _, r := range reviews {
		if strings.Contains(strings.ToLower(r.ProductTitle), needle) {
			matched = append(matched, r)
		}
	}
	return matched
}
