package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gcbaptista/review-radar/config"
	"github.com/gcbaptista/review-radar/internal/analytics"
	"github.com/gcbaptista/review-radar/internal/metrics"
	"github.com/gcbaptista/review-radar/services"
)

// Dependencies wires the API to the engine and its optional collaborators.
// Analytics and Metrics may be nil.
type Dependencies struct {
	Engine    services.ReviewEngine
	Analytics *analytics.Service
	Metrics   *metrics.Metrics
	Search    config.SearchConfig
}

// API holds dependencies for API handlers, primarily the review engine.
type API struct {
	engine    services.ReviewEngine
	analytics *analytics.Service
	metrics   *metrics.Metrics
	limits    config.SearchConfig
	startedAt time.Time
}

// NewAPI creates a new API handler structure.
func NewAPI(deps Dependencies) *API {
	limits := deps.Search
	if limits.DefaultTopK <= 0 {
		limits.DefaultTopK = 10
	}
	return &API{
		engine:    deps.Engine,
		analytics: deps.Analytics,
		metrics:   deps.Metrics,
		limits:    limits,
		startedAt: time.Now(),
	}
}

// SetupRoutes defines all the API routes for the review service.
func SetupRoutes(router *gin.Engine, deps Dependencies) *API {
	apiHandler := NewAPI(deps)

	router.Use(RequestIDMiddleware(), MetricsMiddleware(deps.Metrics))

	router.GET("/health", apiHandler.HealthCheckHandler)
	router.GET("/stats", apiHandler.StatsHandler)
	router.GET("/analytics", apiHandler.GetAnalyticsHandler)
	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	// Corpus replacement and export
	router.POST("/reviews", apiHandler.ReplaceReviewsHandler)
	router.GET("/export", apiHandler.ExportHandler)

	// Token search
	router.GET("/search", apiHandler.SearchHandler)
	router.POST("/search/multi", apiHandler.MultiSearchHandler)

	// Product queries
	productRoutes := router.Group("/products")
	{
		productRoutes.GET("", apiHandler.SearchProductsHandler)                    // Reviews whose title contains keyword
		productRoutes.GET("/rank", apiHandler.RankProductsHandler)                 // Top products for keyword
		productRoutes.GET("/:productId/compare", apiHandler.CompareProductHandler) // One product summary
		productRoutes.POST("/compare", apiHandler.CompareProductsHandler)          // Side by side summaries
	}

	// Job management routes
	jobRoutes := router.Group("/jobs")
	{
		jobRoutes.GET("", apiHandler.ListJobsHandler)
		jobRoutes.GET("/metrics", apiHandler.GetJobMetricsHandler)
		jobRoutes.GET("/:jobId", apiHandler.GetJobHandler)
		jobRoutes.DELETE("/:jobId", apiHandler.CancelJobHandler)
	}

	return apiHandler
}

// HealthCheckHandler provides a simple health check endpoint. The service is
// healthy before the first build; ready reports whether queries can be served.
func (api *API) HealthCheckHandler(c *gin.Context) {
	stats := api.engine.Stats()
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "review-radar",
		"ready":     stats.Ready,
		"build_id":  stats.BuildID,
		"uptime":    time.Since(api.startedAt).Round(time.Second).String(),
		"timestamp": time.Now().Unix(),
	})
}

// StatsHandler reports the live snapshot's build statistics.
func (api *API) StatsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, api.engine.Stats())
}
