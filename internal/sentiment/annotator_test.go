package sentiment

import (
	"context"
	"math"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fixtures "github.com/gcbaptista/review-radar/internal/testing"
	"github.com/gcbaptista/review-radar/model"
)

func unannotated() []model.Review {
	reviews := fixtures.ScenarioReviews()
	for i := range reviews {
		reviews[i].Sentiment = nil
	}
	return reviews
}

func TestNewPass_RequiresAnnotator(t *testing.T) {
	_, err := NewPass(nil, 2)
	assert.Error(t, err)
}

func TestAnnotate_AttachesSentimentInOrder(t *testing.T) {
	pass, err := NewPass(fixtures.FixedAnnotator(fixtures.ScenarioSentiment()), 4)
	require.NoError(t, err)

	input := unannotated()
	result, err := pass.Annotate(context.Background(), input)
	require.NoError(t, err)

	require.Len(t, result.Reviews, 2)
	assert.Equal(t, 0, result.Rejected)
	assert.Equal(t, fixtures.ScenarioReviews(), result.Reviews)

	for _, r := range input {
		assert.Nil(t, r.Sentiment, "input reviews must not be mutated")
	}
}

func TestAnnotate_RejectsOutOfRangeOutput(t *testing.T) {
	tests := []struct {
		name  string
		score float64
		label model.SentimentLabel
	}{
		{"score above one", 1.5, model.SentimentPositive},
		{"score below minus one", -1.01, model.SentimentNegative},
		{"nan score", math.NaN(), model.SentimentNeutral},
		{"unknown label", 0.3, model.SentimentLabel("ecstatic")},
		{"empty label", 0.3, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			annotator := AnnotatorFunc(func(string) (float64, model.SentimentLabel, error) {
				return tt.score, tt.label, nil
			})
			pass, err := NewPass(annotator, 1)
			require.NoError(t, err)

			result, err := pass.Annotate(context.Background(), unannotated())
			require.NoError(t, err)

			assert.Equal(t, 2, result.Rejected)
			for _, r := range result.Reviews {
				assert.Nil(t, r.Sentiment)
			}
		})
	}
}

func TestAnnotate_BoundaryScoresAccepted(t *testing.T) {
	annotator := fixtures.FixedAnnotator{
		"great clipper": {Score: 1, Label: model.SentimentPositive},
		"okay file":     {Score: -1, Label: model.SentimentNegative},
	}
	pass, err := NewPass(annotator, 2)
	require.NoError(t, err)

	result, err := pass.Annotate(context.Background(), unannotated())
	require.NoError(t, err)

	assert.Equal(t, 0, result.Rejected)
	require.NotNil(t, result.Reviews[0].Sentiment)
	require.NotNil(t, result.Reviews[1].Sentiment)
	assert.Equal(t, 1.0, result.Reviews[0].Sentiment.Score)
	assert.Equal(t, -1.0, result.Reviews[1].Sentiment.Score)
}

func TestAnnotate_AnnotatorErrorAbortsPass(t *testing.T) {
	annotator := fixtures.FailingAnnotator{FailOn: "okay file", Next: fixtures.ScenarioSentiment()}
	pass, err := NewPass(annotator, 1)
	require.NoError(t, err)

	_, err = pass.Annotate(context.Background(), unannotated())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "document 1")
}

func TestAnnotate_CancelledContext(t *testing.T) {
	var calls atomic.Int32
	annotator := AnnotatorFunc(func(string) (float64, model.SentimentLabel, error) {
		calls.Add(1)
		return 0, model.SentimentNeutral, nil
	})
	pass, err := NewPass(annotator, 1)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = pass.Annotate(ctx, unannotated())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(0), calls.Load())
}

func TestAnnotate_EmptyInput(t *testing.T) {
	pass, err := NewPass(NewLexicon(), 0)
	require.NoError(t, err)

	result, err := pass.Annotate(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, result.Reviews)
	assert.Equal(t, 0, result.Rejected)
}
