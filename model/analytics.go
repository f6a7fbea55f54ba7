package model

import "time"

// QueryOperation names the upward-facing operation a query event came from.
type QueryOperation string

const (
	OperationSearch         QueryOperation = "search"
	OperationProductSearch  QueryOperation = "product_search"
	OperationRank           QueryOperation = "rank"
	OperationCompareProduct QueryOperation = "compare"
)

// QueryEvent represents a single query for analytics tracking
type QueryEvent struct {
	Operation    QueryOperation `json:"operation"`
	Keyword      string         `json:"keyword"`
	ResponseTime time.Duration  `json:"response_time"`
	ResultCount  int            `json:"result_count"`
	Failed       bool           `json:"failed,omitempty"`
	Timestamp    time.Time      `json:"timestamp"`
}

// PopularQuery represents aggregated data for popular keywords
type PopularQuery struct {
	Keyword    string `json:"keyword"`
	QueryCount int    `json:"query_count"`
}

// OperationStats counts events per operation.
type OperationStats struct {
	Search         int `json:"search"`
	ProductSearch  int `json:"product_search"`
	Rank           int `json:"rank"`
	CompareProduct int `json:"compare"`
}

// ResponseTimeDistribution represents response time distribution buckets
type ResponseTimeDistribution struct {
	Bucket0To1ms    int `json:"bucket_0_1ms"`
	Bucket1To10ms   int `json:"bucket_1_10ms"`
	Bucket10To100ms int `json:"bucket_10_100ms"`
	Bucket100msPlus int `json:"bucket_100ms_plus"`
}

// AnalyticsSummary is the payload served by the analytics endpoint.
type AnalyticsSummary struct {
	TotalQueries             int                      `json:"total_queries"`
	FailedQueries            int                      `json:"failed_queries"`
	ZeroResultQueries        int                      `json:"zero_result_queries"`
	AvgResponseTimeMicros    int64                    `json:"avg_response_time_us"`
	PopularKeywords          []PopularQuery           `json:"popular_keywords"`
	Operations               OperationStats           `json:"operations"`
	ResponseTimeDistribution ResponseTimeDistribution `json:"response_time_distribution"`
}
