package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gcbaptista/review-radar/internal/search"
)

// MultiSearchRequest represents the JSON request for multi-search
type MultiSearchRequest struct {
	Queries []NamedSearchRequest `json:"queries"`
}

// NamedSearchRequest represents a single named search query in the request
type NamedSearchRequest struct {
	Name  string `json:"name"`
	Query string `json:"query"`
	TopK  int    `json:"top_k,omitempty"` // 0 uses the configured default
}

// MultiSearchResponse wraps the per-name results of a multi-search.
type MultiSearchResponse struct {
	Results          map[string]search.Result `json:"results"`
	TotalQueries     int                      `json:"total_queries"`
	ProcessingTimeMs float64                  `json:"processing_time_ms"`
}

// SearchHandler runs a token search.
// Query parameters: q (the query text), top_k (optional result limit).
// A query with no tokens returns an empty hit list with empty_query set.
func (api *API) SearchHandler(c *gin.Context) {
	topK, validation := ParseLimit("top_k", c.Query("top_k"), api.limits.DefaultTopK, api.limits.MaxTopK)
	if validation.HasErrors() {
		SendValidationError(c, validation)
		return
	}

	result, err := api.engine.Search(c.Query("q"), topK)
	if err != nil {
		SendEngineError(c, "search", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// MultiSearchHandler runs several named token searches in one request.
// Request Body: MultiSearchRequest
func (api *API) MultiSearchHandler(c *gin.Context) {
	startTime := time.Now()

	var req MultiSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendError(c, http.StatusBadRequest, ErrorCodeInvalidQuery, "Invalid request body: "+err.Error())
		return
	}
	if validation := ValidateMultiSearchRequest(&req, api.limits.MaxTopK); validation.HasErrors() {
		SendValidationError(c, validation)
		return
	}

	queries := make([]search.NamedQuery, len(req.Queries))
	for i, q := range req.Queries {
		topK := q.TopK
		if topK == 0 {
			topK = api.limits.DefaultTopK
		}
		queries[i] = search.NamedQuery{Name: q.Name, Query: q.Query, TopK: topK}
	}

	results, err := api.engine.MultiSearch(c.Request.Context(), queries)
	if err != nil {
		SendEngineError(c, "multi-search", err)
		return
	}

	c.JSON(http.StatusOK, MultiSearchResponse{
		Results:          results,
		TotalQueries:     len(results),
		ProcessingTimeMs: float64(time.Since(startTime).Microseconds()) / 1000,
	})
}
