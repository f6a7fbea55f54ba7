package api

import (
	stderrors "errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gcbaptista/review-radar/internal/engine"
	"github.com/gcbaptista/review-radar/internal/export"
	"github.com/gcbaptista/review-radar/internal/logger"
)

// ReplaceReviewsHandler replaces the whole corpus with the raw rows in the
// request body. Rows may be sent as a JSON array or as NDJSON. The rebuild
// runs as a background job; the response carries its ID.
func (api *API) ReplaceReviewsHandler(c *gin.Context) {
	rows, err := export.ReadRawRecords(c.Request.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if stderrors.As(err, &maxErr) {
			SendError(c, http.StatusRequestEntityTooLarge, ErrorCodeInvalidRequest,
				"Request body exceeds the configured size limit")
			return
		}
		SendInvalidJSONError(c, err)
		return
	}

	jobID, err := api.engine.RebuildAsync(rows)
	if err != nil {
		if stderrors.Is(err, engine.ErrJobsDisabled) {
			SendEngineError(c, "rebuild", err)
			return
		}
		SendJobExecutionError(c, "rebuild", err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"status":  "accepted",
		"message": "Corpus replacement started",
		"job_id":  jobID,
		"rows":    len(rows),
	})
}

// ExportHandler streams the live corpus as NDJSON, one record per review.
func (api *API) ExportHandler(c *gin.Context) {
	c.Header("Content-Type", "application/x-ndjson")

	n, err := api.engine.Export(c.Writer)
	if err != nil {
		if !c.Writer.Written() {
			c.Writer.Header().Del("Content-Type")
			SendEngineError(c, "export", err)
			return
		}
		// Headers are gone; the client sees a truncated stream.
		logger.WithComponent("api").Error("export interrupted", slog.Int("records", n), slog.Any("error", err))
	}
}
