package jobs

import (
	"sync"
	"time"

	"github.com/gcbaptista/review-radar/model"
)

const recentDurations = 100

// MetricsData is a point-in-time copy of job metrics, safe for JSON output
type MetricsData struct {
	JobsCreated        int64         `json:"jobs_created"`
	JobsCompleted      int64         `json:"jobs_completed"`
	JobsFailed         int64         `json:"jobs_failed"`
	JobsCancelled      int64         `json:"jobs_cancelled"`
	ActiveJobs         int64         `json:"active_jobs"`
	SuccessRate        float64       `json:"success_rate"`
	AverageDuration    time.Duration `json:"average_duration_ns"`
	RecentAverage      time.Duration `json:"recent_average_duration_ns"`
	LastFinishedAt     *time.Time    `json:"last_finished_at,omitempty"`
	TotalExecutionTime time.Duration `json:"total_execution_time_ns"`
}

// Metrics tracks job counts and durations
type Metrics struct {
	mu             sync.RWMutex
	created        int64
	completed      int64
	failed         int64
	cancelled      int64
	totalDuration  time.Duration
	recent         []time.Duration
	lastFinishedAt time.Time
}

// NewMetrics creates an empty metrics collector
func NewMetrics() *Metrics {
	return &Metrics{recent: make([]time.Duration, 0, recentDurations)}
}

// RecordCreated counts a newly created job
func (m *Metrics) RecordCreated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created++
}

// RecordFinished counts a job reaching a terminal status. Durations are only
// tracked for completed jobs.
func (m *Metrics) RecordFinished(status model.JobStatus, took time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastFinishedAt = time.Now()
	switch status {
	case model.JobStatusCompleted:
		m.completed++
		m.totalDuration += took
		if len(m.recent) == recentDurations {
			m.recent = m.recent[1:]
		}
		m.recent = append(m.recent, took)
	case model.JobStatusFailed:
		m.failed++
	case model.JobStatusCancelled:
		m.cancelled++
	}
}

// Snapshot returns a copy of the current metrics
func (m *Metrics) Snapshot() MetricsData {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data := MetricsData{
		JobsCreated:        m.created,
		JobsCompleted:      m.completed,
		JobsFailed:         m.failed,
		JobsCancelled:      m.cancelled,
		ActiveJobs:         m.created - m.completed - m.failed - m.cancelled,
		SuccessRate:        1.0,
		TotalExecutionTime: m.totalDuration,
	}
	if finished := m.completed + m.failed; finished > 0 {
		data.SuccessRate = float64(m.completed) / float64(finished)
	}
	if m.completed > 0 {
		data.AverageDuration = m.totalDuration / time.Duration(m.completed)
	}
	if len(m.recent) > 0 {
		var total time.Duration
		for _, d := range m.recent {
			total += d
		}
		data.RecentAverage = total / time.Duration(len(m.recent))
	}
	if !m.lastFinishedAt.IsZero() {
		t := m.lastFinishedAt
		data.LastFinishedAt = &t
	}
	return data
}
