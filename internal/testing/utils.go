// Package testing provides fixtures and helpers shared by the package tests.
package testing

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gcbaptista/review-radar/model"
)

// RawRow returns a complete, valid raw review row. Overrides replace or add
// fields; an override with a nil value removes the field entirely.
func RawRow(productID, title, headline, body string, rating int, overrides map[string]interface{}) model.RawRecord {
	row := model.RawRecord{
		model.FieldMarketplace:      "US",
		model.FieldProductID:        productID,
		model.FieldProductParent:    "parent-" + productID,
		model.FieldProductTitle:     title,
		model.FieldProductCategory:  "Personal_Care_Appliances",
		model.FieldStarRating:       float64(rating),
		model.FieldHelpfulVotes:     float64(0),
		model.FieldTotalVotes:       float64(0),
		model.FieldVerifiedPurchase: "Y",
		model.FieldReviewHeadline:   headline,
		model.FieldReviewBody:       body,
	}
	for k, v := range overrides {
		if v == nil {
			delete(row, k)
			continue
		}
		row[k] = v
	}
	return row
}

// ScenarioRows is the two-review corpus used across the query and ranking tests.
func ScenarioRows() []model.RawRecord {
	return []model.RawRecord{
		RawRow("P1", "Nail Clipper", "", "great clipper", 5, nil),
		RawRow("P2", "Nail File", "", "okay file", 3, nil),
	}
}

// ScenarioSentiment maps the scenario review bodies to their fixed sentiment.
func ScenarioSentiment() map[string]model.Sentiment {
	return map[string]model.Sentiment{
		"great clipper": {Score: 0.8, Label: model.SentimentPositive},
		"okay file":     {Score: 0.1, Label: model.SentimentPositive},
	}
}

// ScenarioReviews is the annotated form of ScenarioRows.
func ScenarioReviews() []model.Review {
	return []model.Review{
		{
			DocID: 0, Marketplace: "US", ProductID: "P1", ProductParent: "parent-P1",
			ProductTitle: "Nail Clipper", ProductCategory: "Personal_Care_Appliances",
			StarRating: 5, VerifiedPurchase: true, Body: "great clipper",
			Sentiment: &model.Sentiment{Score: 0.8, Label: model.SentimentPositive},
		},
		{
			DocID: 1, Marketplace: "US", ProductID: "P2", ProductParent: "parent-P2",
			ProductTitle: "Nail File", ProductCategory: "Personal_Care_Appliances",
			StarRating: 3, VerifiedPurchase: true, Body: "okay file",
			Sentiment: &model.Sentiment{Score: 0.1, Label: model.SentimentPositive},
		},
	}
}

// FixedAnnotator returns canned sentiment keyed by the exact annotated text.
// Unknown text scores as neutral zero.
type FixedAnnotator map[string]model.Sentiment

// Score implements the sentiment annotator contract.
func (f FixedAnnotator) Score(text string) (float64, model.SentimentLabel, error) {
	if s, ok := f[text]; ok {
		return s.Score, s.Label, nil
	}
	return 0, model.SentimentNeutral, nil
}

// FailingAnnotator fails for the given text and delegates everything else.
type FailingAnnotator struct {
	FailOn string
	Next   FixedAnnotator
}

// Score implements the sentiment annotator contract.
func (f FailingAnnotator) Score(text string) (float64, model.SentimentLabel, error) {
	if text == f.FailOn {
		return 0, "", fmt.Errorf("annotator unavailable for %q", text)
	}
	return f.Next.Score(text)
}

// JobGetter is the subset of the job manager used by WaitForJobCompletion.
type JobGetter interface {
	GetJob(jobID string) (*model.Job, error)
}

// JobPollingOptions configures job polling behavior
type JobPollingOptions struct {
	Timeout      time.Duration
	PollInterval time.Duration
}

// DefaultJobPollingOptions returns sensible defaults for job polling
func DefaultJobPollingOptions() JobPollingOptions {
	return JobPollingOptions{
		Timeout:      5 * time.Second,
		PollInterval: 10 * time.Millisecond,
	}
}

// WaitForJobCompletion polls a job until it leaves the pending/running states or times out
func WaitForJobCompletion(t *testing.T, jobs JobGetter, jobID string, opts JobPollingOptions) *model.Job {
	t.Helper()
	timeout := time.After(opts.Timeout)
	ticker := time.NewTicker(opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-timeout:
			t.Fatalf("Job %s did not complete within %v timeout", jobID, opts.Timeout)
			return nil
		case <-ticker.C:
			job, err := jobs.GetJob(jobID)
			require.NoError(t, err, "Failed to get job status")
			switch job.Status {
			case model.JobStatusCompleted, model.JobStatusFailed, model.JobStatusCancelled:
				return job
			}
		}
	}
}
