package main

import (
	"bytes"
	"context"
	"bufio"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcbaptista/review-radar/internal/engine"
	"github.com/gcbaptista/review-radar/internal/export"
	"github.com/gcbaptista/review-radar/internal/logger"
	fixtures "github.com/gcbaptista/review-radar/internal/testing"
	"github.com/gcbaptista/review-radar/model"
)

func init() {
	color.NoColor = true
}

func TestPrintRanking(t *testing.T) {
	relevance := 0.7
	products := []model.ProductAggregate{
		{ProductID: "P1", ProductTitle: "Nail Clipper", AvgSentiment: model.NewAverage([]float64{0.8}), AvgRating: model.NewAverage([]float64{5}), ReviewCount: 1, TextRelevance: &relevance},
		{ProductID: "P2", ProductTitle: "Nail File", AvgRating: model.NewAverage([]float64{3}), ReviewCount: 1},
	}

	var buf bytes.Buffer
	printRanking(&buf, "nail", products)
	out := buf.String()

	assert.Contains(t, out, "Top products for nail")
	assert.Contains(t, out, "  1. P1 Nail Clipper")
	assert.Contains(t, out, "sentiment 0.8000  rating 5.0000  reviews 1  relevance 0.7000")
	assert.Contains(t, out, "sentiment undefined  rating 3.0000")
}

func TestPrintRanking_Empty(t *testing.T) {
	var buf bytes.Buffer
	printRanking(&buf, "razor", nil)
	assert.Contains(t, buf.String(), "no matching products")
}

func TestPrintComparisons(t *testing.T) {
	var buf bytes.Buffer
	printComparisons(&buf, []model.Comparison{
		{ProductID: "P2", ProductTitle: "Nail File", AvgSentiment: model.NewAverage([]float64{0.1}), AvgRating: model.NewAverage([]float64{3}), ReviewCount: 1},
	})
	out := buf.String()

	assert.Contains(t, out, "P2 Nail File")
	assert.Contains(t, out, "avg sentiment 0.1000")
	assert.Contains(t, out, "reviews       1")
}

func TestLoadCorpusAndExport(t *testing.T) {
	dir := t.TempDir()
	dataPath := filepath.Join(dir, "reviews.ndjson")

	var rows bytes.Buffer
	for _, row := range fixtures.ScenarioRows() {
		line, err := json.Marshal(row)
		require.NoError(t, err)
		rows.Write(append(line, '\n'))
	}
	require.NoError(t, os.WriteFile(dataPath, rows.Bytes(), 0o600))

	eng := engine.New(engine.Options{Annotator: fixtures.FixedAnnotator(fixtures.ScenarioSentiment())})
	defer eng.Close()
	require.NoError(t, loadCorpus(context.Background(), eng, dataPath))

	exportPath := filepath.Join(dir, "corpus.jsonl")
	require.NoError(t, runOneShot(context.Background(), eng, exportPath, "", "", "", 0))

	f, err := os.Open(exportPath)
	require.NoError(t, err)
	defer f.Close()
	records, err := export.Read(f)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Nail File  okay file", records[1].Contents)
}

// captureStdout runs fn with os.Stdout redirected and returns what it wrote.
func captureStdout(t *testing.T, fn func()) []byte {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)

	original := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = original }()

	done := make(chan []byte)
	go func() {
		out, _ := io.ReadAll(r)
		done <- out
	}()

	fn()
	require.NoError(t, w.Close())
	return <-done
}

func TestRunOneShot_ExportToStdoutIsPureNDJSON(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	out := captureStdout(t, func() {
		logger.Setup("debug", "text")
		eng := engine.New(engine.Options{Annotator: fixtures.FixedAnnotator(fixtures.ScenarioSentiment())})
		defer eng.Close()
		_, err := eng.Rebuild(context.Background(), fixtures.ScenarioRows())
		require.NoError(t, err)

		require.NoError(t, runOneShot(context.Background(), eng, "-", "", "", "", 0))
	})

	var records []export.Record
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		var record export.Record
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &record), "line %q", scanner.Text())
		records = append(records, record)
	}
	require.NoError(t, scanner.Err())
	require.Len(t, records, 2)
	assert.Equal(t, "0", records[0].ID)
	assert.Equal(t, "Nail Clipper  great clipper", records[0].Contents)
}

func TestRunOneShot_Errors(t *testing.T) {
	eng := engine.New(engine.Options{Annotator: fixtures.FixedAnnotator(fixtures.ScenarioSentiment())})
	defer eng.Close()
	_, err := eng.Rebuild(context.Background(), fixtures.ScenarioRows())
	require.NoError(t, err)

	err = runOneShot(context.Background(), eng, "", "nail", "", "stars", 0)
	assert.Error(t, err, "unknown mode")

	err = runOneShot(context.Background(), eng, "", "", "P1, P3", "", 0)
	assert.Error(t, err, "unknown product")
}

func TestLoadCorpus_MissingFile(t *testing.T) {
	eng := engine.New(engine.Options{})
	defer eng.Close()
	assert.Error(t, loadCorpus(context.Background(), eng, filepath.Join(t.TempDir(), "absent.ndjson")))
}
