// Package export writes annotated reviews as newline-delimited JSON records
// ready for an external full-text indexer, and reads them back.
package export

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gcbaptista/review-radar/model"
)

const maxLineBytes = 4 * 1024 * 1024

// Attributes carries the structured fields of an exported review.
type Attributes struct {
	Marketplace      string                `json:"marketplace"`
	ProductID        string                `json:"product_id"`
	ProductParent    string                `json:"product_parent"`
	ProductTitle     string                `json:"product_title"`
	ProductCategory  string                `json:"product_category"`
	StarRating       int                   `json:"star_rating"`
	HelpfulVotes     int                   `json:"helpful_votes"`
	TotalVotes       int                   `json:"total_votes"`
	VerifiedPurchase string                `json:"verified_purchase"` // "Y" or "N"
	CompoundScore    *float64              `json:"compound_score"`
	Sentiment        *model.SentimentLabel `json:"sentiment"`
}

// Record is one exported line.
type Record struct {
	ID       string     `json:"id"`
	Contents string     `json:"contents"`
	NER      Attributes `json:"NER"`
}

// NewRecord converts a review into its export form.
func NewRecord(r model.Review) Record {
	verified := "N"
	if r.VerifiedPurchase {
		verified = "Y"
	}
	rec := Record{
		ID:       strconv.FormatUint(uint64(r.DocID), 10),
		Contents: r.Contents(),
		NER: Attributes{
			Marketplace:      r.Marketplace,
			ProductID:        r.ProductID,
			ProductParent:    r.ProductParent,
			ProductTitle:     r.ProductTitle,
			ProductCategory:  r.ProductCategory,
			StarRating:       r.StarRating,
			HelpfulVotes:     r.HelpfulVotes,
			TotalVotes:       r.TotalVotes,
			VerifiedPurchase: verified,
		},
	}
	if r.Sentiment != nil {
		score, label := r.Sentiment.Score, r.Sentiment.Label
		rec.NER.CompoundScore = &score
		rec.NER.Sentiment = &label
	}
	return rec
}

// Review converts a record back into a review. Headline and body cannot be
// separated once joined, so the text after the title becomes the body and
// the headline is left empty; the tokenized contents are unchanged.
func (rec Record) Review() (model.Review, error) {
	id, err := strconv.ParseUint(rec.ID, 10, 32)
	if err != nil {
		return model.Review{}, fmt.Errorf("invalid id %q: %w", rec.ID, err)
	}
	body := strings.TrimPrefix(rec.Contents, rec.NER.ProductTitle+" ")

	r := model.Review{
		DocID:            uint32(id),
		Marketplace:      rec.NER.Marketplace,
		ProductID:        rec.NER.ProductID,
		ProductParent:    rec.NER.ProductParent,
		ProductTitle:     rec.NER.ProductTitle,
		ProductCategory:  rec.NER.ProductCategory,
		StarRating:       rec.NER.StarRating,
		HelpfulVotes:     rec.NER.HelpfulVotes,
		TotalVotes:       rec.NER.TotalVotes,
		VerifiedPurchase: strings.EqualFold(rec.NER.VerifiedPurchase, "Y"),
		Body:             body,
	}
	if rec.NER.CompoundScore != nil && rec.NER.Sentiment != nil {
		r.Sentiment = &model.Sentiment{Score: *rec.NER.CompoundScore, Label: *rec.NER.Sentiment}
	}
	return r, nil
}

// Write encodes one record per line in DocID order and returns the number
// of records written.
func Write(w io.Writer, reviews []model.Review) (int, error) {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)

	for i, r := range reviews {
		if err := enc.Encode(NewRecord(r)); err != nil {
			return i, fmt.Errorf("failed to encode document %d: %w", r.DocID, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return len(reviews), fmt.Errorf("failed to flush export: %w", err)
	}
	return len(reviews), nil
}

// Read decodes records written by Write. Blank lines are ignored.
func Read(r io.Reader) ([]Record, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	var records []Record
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var rec Record
		if err := json.Unmarshal([]byte(text), &rec); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read export: %w", err)
	}
	return records, nil
}

// ReadReviews decodes an export straight into reviews.
func ReadReviews(r io.Reader) ([]model.Review, error) {
	records, err := Read(r)
	if err != nil {
		return nil, err
	}
	reviews := make([]model.Review, 0, len(records))
	for i, rec := range records {
		review, err := rec.Review()
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		reviews = append(reviews, review)
	}
	return reviews, nil
}
