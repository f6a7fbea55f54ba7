package engine

import (
	"context"
	stderrors "errors"
	"fmt"
	"strconv"

	"github.com/gcbaptista/review-radar/internal/jobs"
	"github.com/gcbaptista/review-radar/model"
)

// ErrJobsDisabled is returned by job operations on an engine built without
// a job manager.
var ErrJobsDisabled = stderrors.New("background jobs are not enabled")

// RebuildAsync replaces the corpus in a background job and returns the job
// ID. Progress is reported through the job manager.
func (e *Engine) RebuildAsync(rows []model.RawRecord) (string, error) {
	if e.jobs == nil {
		return "", ErrJobsDisabled
	}

	jobID := e.jobs.CreateJob(model.JobTypeRebuild, map[string]string{
		"operation": "rebuild",
		"rows":      strconv.Itoa(len(rows)),
	})

	err := e.jobs.ExecuteJob(jobID, func(ctx context.Context, job model.Job) error {
		return e.executeRebuildJob(ctx, rows, job.ID)
	})
	if err != nil {
		return "", fmt.Errorf("failed to start rebuild job: %w", err)
	}
	return jobID, nil
}

func (e *Engine) executeRebuildJob(ctx context.Context, rows []model.RawRecord, jobID string) error {
	_, err := e.rebuild(ctx, rows, func(current, total int, message string) {
		e.jobs.UpdateJobProgress(jobID, current, total, message)
	})
	return err
}

// GetJob exposes job status for the API.
func (e *Engine) GetJob(jobID string) (*model.Job, error) {
	if e.jobs == nil {
		return nil, ErrJobsDisabled
	}
	return e.jobs.GetJob(jobID)
}

// ListJobs lists background jobs, newest first.
func (e *Engine) ListJobs(status *model.JobStatus) []*model.Job {
	if e.jobs == nil {
		return []*model.Job{}
	}
	return e.jobs.ListJobs(status)
}

// CancelJob cancels a pending or running background job.
func (e *Engine) CancelJob(jobID string) error {
	if e.jobs == nil {
		return ErrJobsDisabled
	}
	return e.jobs.CancelJob(jobID)
}

// JobMetrics reports job manager counters. It is zero when jobs are disabled.
func (e *Engine) JobMetrics() jobs.MetricsData {
	if e.jobs == nil {
		return jobs.MetricsData{}
	}
	return e.jobs.GetMetrics()
}
