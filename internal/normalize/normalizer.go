// Package normalize converts raw review rows into canonical, schema-fixed reviews.
package normalize

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/gcbaptista/review-radar/internal/errors"
	"github.com/gcbaptista/review-radar/internal/logger"
	"github.com/gcbaptista/review-radar/model"
)

const (
	minStarRating = 1
	maxStarRating = 5
)

// Result is the outcome of normalizing a batch of raw rows.
type Result struct {
	Reviews  []model.Review
	Skipped  int
	Failures []*errors.MalformedRecordError
}

// Normalizer validates raw rows and assigns document IDs.
type Normalizer struct {
	logger *slog.Logger
}

// NewNormalizer creates a Normalizer that logs through the default logger.
func NewNormalizer() *Normalizer {
	return &Normalizer{logger: logger.WithComponent("normalizer")}
}

// Normalize converts rows in order. Rows that fail validation are skipped and
// counted; surviving rows get DocIDs 0, 1, 2, ... in row order.
// Sentiment is left unset on every review.
func (n *Normalizer) Normalize(rows []model.RawRecord) Result {
	result := Result{Reviews: make([]model.Review, 0, len(rows))}

	for i, row := range rows {
		review, err := toReview(i, row)
		if err != nil {
			result.Skipped++
			result.Failures = append(result.Failures, err)
			n.logger.Debug("skipping malformed row", "row", i, "field", err.Field, "reason", err.Reason)
			continue
		}
		review.DocID = uint32(len(result.Reviews))
		result.Reviews = append(result.Reviews, review)
	}

	if result.Skipped > 0 {
		n.logger.Warn("malformed rows skipped", "skipped", result.Skipped, "kept", len(result.Reviews))
	}
	return result
}

// toReview validates one row. The first offending field is reported.
func toReview(row int, rec model.RawRecord) (model.Review, *errors.MalformedRecordError) {
	for _, field := range model.RequiredFields {
		if _, ok := rec.Get(field); !ok {
			return model.Review{}, errors.NewMissingFieldError(row, field)
		}
	}

	var r model.Review
	var err *errors.MalformedRecordError

	strFields := []struct {
		name string
		dst  *string
	}{
		{model.FieldMarketplace, &r.Marketplace},
		{model.FieldProductID, &r.ProductID},
		{model.FieldProductParent, &r.ProductParent},
		{model.FieldProductTitle, &r.ProductTitle},
		{model.FieldProductCategory, &r.ProductCategory},
		{model.FieldReviewHeadline, &r.Headline},
		{model.FieldReviewBody, &r.Body},
	}
	for _, f := range strFields {
		if *f.dst, err = stringField(row, rec, f.name); err != nil {
			return model.Review{}, err
		}
	}

	intFields := []struct {
		name string
		dst  *int
		min  int
		max  int
	}{
		{model.FieldStarRating, &r.StarRating, minStarRating, maxStarRating},
		{model.FieldHelpfulVotes, &r.HelpfulVotes, 0, math.MaxInt},
		{model.FieldTotalVotes, &r.TotalVotes, 0, math.MaxInt},
	}
	for _, f := range intFields {
		v, ferr := intField(row, rec, f.name)
		if ferr != nil {
			return model.Review{}, ferr
		}
		if v < f.min || v > f.max {
			if f.max == math.MaxInt {
				return model.Review{}, errors.NewMalformedRecordError(row, f.name, fmt.Sprintf("must be >= %d, got %d", f.min, v))
			}
			return model.Review{}, errors.NewMalformedRecordError(row, f.name, fmt.Sprintf("must be between %d and %d, got %d", f.min, f.max, v))
		}
		*f.dst = v
	}

	if r.VerifiedPurchase, err = boolField(row, rec, model.FieldVerifiedPurchase); err != nil {
		return model.Review{}, err
	}
	return r, nil
}

func stringField(row int, rec model.RawRecord, field string) (string, *errors.MalformedRecordError) {
	v, _ := rec.Get(field)
	switch val := v.(type) {
	case string:
		return val, nil
	case json.Number:
		return val.String(), nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	case int:
		return strconv.Itoa(val), nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	default:
		return "", errors.NewMalformedRecordError(row, field, fmt.Sprintf("has unsupported type %T", v))
	}
}

func intField(row int, rec model.RawRecord, field string) (int, *errors.MalformedRecordError) {
	v, _ := rec.Get(field)
	var f float64
	switch val := v.(type) {
	case int:
		return val, nil
	case int64:
		return int(val), nil
	case float64:
		f = val
	case json.Number:
		parsed, err := val.Float64()
		if err != nil {
			return 0, errors.NewMalformedRecordError(row, field, "is not a number")
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, errors.NewMalformedRecordError(row, field, fmt.Sprintf("is not a number: %q", val))
		}
		f = parsed
	default:
		return 0, errors.NewMalformedRecordError(row, field, fmt.Sprintf("has unsupported type %T", v))
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, errors.NewMalformedRecordError(row, field, "is not an integer")
	}
	// float64(math.MaxInt) rounds up to 2^63, which int cannot hold.
	if f >= float64(math.MaxInt) || f < float64(math.MinInt) {
		return 0, errors.NewMalformedRecordError(row, field, fmt.Sprintf("is out of range: %g", f))
	}
	return int(f), nil
}

func boolField(row int, rec model.RawRecord, field string) (bool, *errors.MalformedRecordError) {
	v, _ := rec.Get(field)
	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "y", "yes", "true", "1":
			return true, nil
		case "n", "no", "false", "0":
			return false, nil
		}
		return false, errors.NewMalformedRecordError(row, field, fmt.Sprintf("is not a boolean: %q", val))
	default:
		return false, errors.NewMalformedRecordError(row, field, fmt.Sprintf("has unsupported type %T", v))
	}
}
