package export

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcbaptista/review-radar/internal/normalize"
	"github.com/gcbaptista/review-radar/model"
)

const rawNDJSON = `{"marketplace":"US","product_id":"P1","product_parent":"123","product_title":"Nail Clipper","product_category":"Personal_Care_Appliances","star_rating":5,"helpful_votes":0,"total_votes":0,"verified_purchase":"Y","review_headline":"","review_body":"great clipper"}

{"marketplace":"US","product_id":"P2","product_parent":"456","product_title":"Nail File","product_category":"Personal_Care_Appliances","star_rating":3,"helpful_votes":1,"total_votes":2,"verified_purchase":"N","review_headline":"","review_body":"okay file"}
`

func TestReadRawRecords_NDJSON(t *testing.T) {
	rows, err := ReadRawRecords(strings.NewReader(rawNDJSON))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "P1", rows[0][model.FieldProductID])
	assert.Equal(t, json.Number("5"), rows[0][model.FieldStarRating])

	result := normalize.NewNormalizer().Normalize(rows)
	assert.Len(t, result.Reviews, 2)
	assert.Equal(t, 0, result.Skipped)
	assert.Equal(t, 2, result.Reviews[1].TotalVotes)
}

func TestReadRawRecords_Array(t *testing.T) {
	lines := strings.Split(strings.TrimSpace(rawNDJSON), "\n\n")
	input := "  [\n" + strings.Join(lines, ",\n") + "\n]"
	rows, err := ReadRawRecords(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Nail File", rows[1][model.FieldProductTitle])
}

func TestReadRawRecords_Empty(t *testing.T) {
	for _, input := range []string{"", "  \n\t", "[]"} {
		rows, err := ReadRawRecords(strings.NewReader(input))
		require.NoError(t, err, "input %q", input)
		assert.NotNil(t, rows)
		assert.Empty(t, rows)
	}
}

func TestReadRawRecords_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"broken second row", `{"product_id":"P1"}` + "\n" + `{"product_id":`, "row 1"},
		{"broken array", `[{"product_id":"P1"},`, "row array"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadRawRecords(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
