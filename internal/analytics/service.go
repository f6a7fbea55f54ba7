// Package analytics keeps an in-memory record of recent queries and
// summarizes them for the analytics endpoint.
package analytics

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gcbaptista/review-radar/model"
)

const (
	defaultMaxEvents   = 10000 // Keep last 10k events
	popularKeywordsTop = 5
)

// Service implements query tracking and reporting
type Service struct {
	mutex     sync.RWMutex
	events    []model.QueryEvent
	maxEvents int
	now       func() time.Time
}

// NewService creates an analytics service retaining at most maxEvents
// events. maxEvents <= 0 uses the default.
func NewService(maxEvents int) *Service {
	if maxEvents <= 0 {
		maxEvents = defaultMaxEvents
	}
	return &Service{
		events:    make([]model.QueryEvent, 0),
		maxEvents: maxEvents,
		now:       time.Now,
	}
}

// Track records a query event. The timestamp is set here.
func (s *Service) Track(event model.QueryEvent) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	event.Timestamp = s.now()
	s.events = append(s.events, event)
	if len(s.events) > s.maxEvents {
		s.events = s.events[len(s.events)-s.maxEvents:]
	}
}

// Len returns the number of retained events.
func (s *Service) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.events)
}

// Summary aggregates retained events. since limits the window; a zero
// time includes everything.
func (s *Service) Summary(since time.Time) model.AnalyticsSummary {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	summary := model.AnalyticsSummary{PopularKeywords: []model.PopularQuery{}}
	var totalTime time.Duration
	keywordCounts := make(map[string]int)

	for _, event := range s.events {
		if !since.IsZero() && event.Timestamp.Before(since) {
			continue
		}
		summary.TotalQueries++
		totalTime += event.ResponseTime

		switch {
		case event.Failed:
			summary.FailedQueries++
		case event.ResultCount == 0:
			summary.ZeroResultQueries++
		}

		switch event.Operation {
		case model.OperationSearch:
			summary.Operations.Search++
		case model.OperationProductSearch:
			summary.Operations.ProductSearch++
		case model.OperationRank:
			summary.Operations.Rank++
		case model.OperationCompareProduct:
			summary.Operations.CompareProduct++
		}

		addToDistribution(&summary.ResponseTimeDistribution, event.ResponseTime)

		if keyword := normalizeKeyword(event.Keyword); keyword != "" {
			keywordCounts[keyword]++
		}
	}

	if summary.TotalQueries > 0 {
		summary.AvgResponseTimeMicros = totalTime.Microseconds() / int64(summary.TotalQueries)
	}
	summary.PopularKeywords = popularKeywords(keywordCounts, popularKeywordsTop)
	return summary
}

// Reset drops every retained event.
func (s *Service) Reset() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.events = make([]model.QueryEvent, 0)
}

func normalizeKeyword(keyword string) string {
	return strings.Join(strings.Fields(strings.ToLower(keyword)), " ")
}

func addToDistribution(dist *model.ResponseTimeDistribution, d time.Duration) {
	switch {
	case d < time.Millisecond:
		dist.Bucket0To1ms++
	case d < 10*time.Millisecond:
		dist.Bucket1To10ms++
	case d < 100*time.Millisecond:
		dist.Bucket10To100ms++
	default:
		dist.Bucket100msPlus++
	}
}

// popularKeywords returns the n most frequent keywords, ties alphabetical
func popularKeywords(counts map[string]int, n int) []model.PopularQuery {
	popular := make([]model.PopularQuery, 0, len(counts))
	for keyword, count := range counts {
		popular = append(popular, model.PopularQuery{Keyword: keyword, QueryCount: count})
	}
	sort.Slice(popular, func(i, j int) bool {
		if popular[i].QueryCount != popular[j].QueryCount {
			return popular[i].QueryCount > popular[j].QueryCount
		}
		return popular[i].Keyword < popular[j].Keyword
	})
	if len(popular) > n {
		popular = popular[:n]
	}
	return popular
}
