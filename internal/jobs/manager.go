// Package jobs runs long operations such as corpus rebuilds in the
// background and tracks their status.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gcbaptista/review-radar/internal/errors"
	"github.com/gcbaptista/review-radar/internal/logger"
	"github.com/gcbaptista/review-radar/model"
)

// Func is the body of a job. It receives a copy of the job as it was when
// execution started and should honor ctx cancellation.
type Func func(ctx context.Context, job model.Job) error

// Manager handles background job execution and tracking
type Manager struct {
	mu      sync.RWMutex
	jobs    map[string]*model.Job
	cancels map[string]context.CancelFunc
	workers chan struct{} // Limits concurrent jobs
	ctx     context.Context
	stop    context.CancelFunc
	wg      sync.WaitGroup
	metrics *Metrics
	logger  *slog.Logger

	retention time.Duration
}

// NewManager creates a new job manager with specified worker count
func NewManager(maxWorkers int) *Manager {
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	ctx, stop := context.WithCancel(context.Background())
	return &Manager{
		jobs:    make(map[string]*model.Job),
		cancels: make(map[string]context.CancelFunc),
		workers: make(chan struct{}, maxWorkers),
		ctx:     ctx,
		stop:    stop,
		metrics: NewMetrics(),
		logger:  logger.WithComponent("jobs"),

		retention: 24 * time.Hour,
	}
}

// SetRetention sets how long finished jobs are kept by the background
// cleanup. It must be called before Start; non-positive values are ignored.
func (m *Manager) SetRetention(maxAge time.Duration) {
	if maxAge > 0 {
		m.retention = maxAge
	}
}

// Start begins background cleanup of finished jobs
func (m *Manager) Start() {
	m.logger.Info("job manager started", "max_workers", cap(m.workers))
	go m.cleanupRoutine()
}

// Stop cancels running jobs and waits for them to return
func (m *Manager) Stop() {
	m.stop()
	m.wg.Wait()
	m.logger.Info("job manager stopped")
}

// CreateJob registers a pending job and returns its ID
func (m *Manager) CreateJob(jobType model.JobType, metadata map[string]string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	job := &model.Job{
		ID:        uuid.New().String(),
		Type:      jobType,
		Status:    model.JobStatusPending,
		CreatedAt: time.Now(),
		Metadata:  metadata,
	}

	m.jobs[job.ID] = job
	m.metrics.RecordCreated()
	m.logger.Info("job created", "job_id", job.ID, "type", job.Type)
	return job.ID
}

// GetJob retrieves a copy of a job by ID
func (m *Manager) GetJob(jobID string) (*model.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	job, exists := m.jobs[jobID]
	if !exists {
		return nil, errors.NewJobNotFoundError(jobID)
	}
	return copyJob(job), nil
}

// ListJobs returns jobs newest first, optionally filtered by status
func (m *Manager) ListJobs(status *model.JobStatus) []*model.Job {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*model.Job, 0, len(m.jobs))
	for _, job := range m.jobs {
		if status == nil || job.Status == *status {
			result = append(result, copyJob(job))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result
}

// ExecuteJob runs fn for a pending job in a goroutine once a worker slot is
// free. It returns immediately.
func (m *Manager) ExecuteJob(jobID string, fn Func) error {
	m.mu.Lock()
	job, exists := m.jobs[jobID]
	if !exists {
		m.mu.Unlock()
		return errors.NewJobNotFoundError(jobID)
	}
	if job.Status != model.JobStatusPending {
		m.mu.Unlock()
		return fmt.Errorf("job with ID '%s' is not in pending status (current: %s)", jobID, job.Status)
	}
	if _, queued := m.cancels[jobID]; queued {
		m.mu.Unlock()
		return fmt.Errorf("job with ID '%s' is already queued", jobID)
	}
	if m.ctx.Err() != nil {
		m.mu.Unlock()
		m.updateJobStatus(jobID, model.JobStatusCancelled, "job manager shutting down")
		return fmt.Errorf("job manager is shutting down")
	}
	ctx, cancel := context.WithCancel(m.ctx)
	m.cancels[jobID] = cancel
	m.wg.Add(1)
	m.mu.Unlock()

	go func() {
		defer m.wg.Done()
		defer cancel()

		select {
		case m.workers <- struct{}{}:
		case <-ctx.Done():
			m.finish(jobID, model.JobStatusCancelled, "cancelled before start", 0)
			return
		}
		defer func() { <-m.workers }()

		m.mu.Lock()
		now := time.Now()
		job.Status = model.JobStatusRunning
		job.StartedAt = &now
		snapshot := *copyJob(job)
		m.mu.Unlock()

		err := fn(ctx, snapshot)
		took := time.Since(now)

		switch {
		case err != nil && ctx.Err() != nil:
			m.finish(jobID, model.JobStatusCancelled, err.Error(), took)
		case err != nil:
			m.finish(jobID, model.JobStatusFailed, err.Error(), took)
		default:
			m.finish(jobID, model.JobStatusCompleted, "", took)
		}
	}()

	return nil
}

// CancelJob cancels a pending or running job
func (m *Manager) CancelJob(jobID string) error {
	m.mu.RLock()
	job, exists := m.jobs[jobID]
	cancel := m.cancels[jobID]
	var status model.JobStatus
	if exists {
		status = job.Status
	}
	m.mu.RUnlock()

	if !exists {
		return errors.NewJobNotFoundError(jobID)
	}
	if status != model.JobStatusPending && status != model.JobStatusRunning {
		return errors.NewValidationError("status", fmt.Sprintf("job '%s' already finished (%s)", jobID, status))
	}
	if cancel == nil {
		// Never executed: mark it directly.
		m.updateJobStatus(jobID, model.JobStatusCancelled, "cancelled")
		m.metrics.RecordFinished(model.JobStatusCancelled, 0)
		return nil
	}
	cancel()
	return nil
}

// UpdateJobProgress updates the progress of a running job
func (m *Manager) UpdateJobProgress(jobID string, current, total int, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, exists := m.jobs[jobID]
	if !exists {
		return
	}
	if job.Progress == nil {
		job.Progress = &model.JobProgress{}
	}
	job.Progress.Current = current
	job.Progress.Total = total
	job.Progress.Message = message
}

func (m *Manager) finish(jobID string, status model.JobStatus, errorMsg string, took time.Duration) {
	m.updateJobStatus(jobID, status, errorMsg)
	m.metrics.RecordFinished(status, took)

	m.mu.Lock()
	delete(m.cancels, jobID)
	m.mu.Unlock()

	switch status {
	case model.JobStatusCompleted:
		m.logger.Info("job completed", "job_id", jobID, "duration", took)
	case model.JobStatusFailed:
		m.logger.Error("job failed", "job_id", jobID, "duration", took, "error", errorMsg)
	default:
		m.logger.Warn("job cancelled", "job_id", jobID, "reason", errorMsg)
	}
}

// updateJobStatus updates the status of a job (internal method)
func (m *Manager) updateJobStatus(jobID string, status model.JobStatus, errorMsg string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, exists := m.jobs[jobID]
	if !exists {
		return
	}
	job.Status = status
	if errorMsg != "" {
		job.Error = errorMsg
	}
	if status == model.JobStatusCompleted || status == model.JobStatusFailed || status == model.JobStatusCancelled {
		now := time.Now()
		job.CompletedAt = &now
	}
}

func (m *Manager) cleanupRoutine() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.CleanupOldJobs(m.retention)
		case <-m.ctx.Done():
			return
		}
	}
}

// CleanupOldJobs removes finished jobs older than maxAge and returns how
// many were removed
func (m *Manager) CleanupOldJobs(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	cleaned := 0
	for jobID, job := range m.jobs {
		if job.CompletedAt != nil && job.CompletedAt.Before(cutoff) {
			delete(m.jobs, jobID)
			cleaned++
		}
	}
	if cleaned > 0 {
		m.logger.Info("cleaned up old jobs", "count", cleaned)
	}
	return cleaned
}

// GetMetrics returns current job performance metrics
func (m *Manager) GetMetrics() MetricsData {
	return m.metrics.Snapshot()
}

func copyJob(job *model.Job) *model.Job {
	jobCopy := *job
	if job.Progress != nil {
		progressCopy := *job.Progress
		jobCopy.Progress = &progressCopy
	}
	if job.Metadata != nil {
		jobCopy.Metadata = make(map[string]string, len(job.Metadata))
		for k, v := range job.Metadata {
			jobCopy.Metadata[k] = v
		}
	}
	return &jobCopy
}
