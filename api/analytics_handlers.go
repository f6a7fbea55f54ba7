package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// GetAnalyticsHandler summarizes tracked queries. The optional window query
// parameter (a Go duration such as "1h") limits the summary to recent events.
func (api *API) GetAnalyticsHandler(c *gin.Context) {
	if api.analytics == nil {
		SendError(c, http.StatusNotImplemented, ErrorCodeInvalidRequest, "Query analytics are not enabled on this server")
		return
	}

	var since time.Time
	if raw := c.Query("window"); raw != "" {
		window, err := time.ParseDuration(raw)
		if err != nil || window <= 0 {
			validation := &ValidationResult{Valid: true}
			validation.AddError("window", "window must be a positive duration such as '15m' or '1h'")
			SendValidationError(c, validation)
			return
		}
		since = time.Now().Add(-window)
	}

	c.JSON(http.StatusOK, api.analytics.Summary(since))
}
