package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/raphaelgruber/circlemap/internal/models"
)

// ErrJobNotFound is returned for unknown job IDs.
var ErrJobNotFound = errors.New("job not found")

// JobStatus represents the state of a background job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// Done reports whether the status is terminal.
func (s JobStatus) Done() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// EnrichResult summarizes a finished enrichment job.
type EnrichResult struct {
	Enriched int      `json:"enriched"`
	Failed   int      `json:"failed"`
	Errors   []string `json:"errors"`
}

// Job is a background enrichment run.
type Job struct {
	ID          string        `json:"id"`
	Type        string        `json:"type"`
	Status      JobStatus     `json:"status"`
	Name        string        `json:"name,omitempty"`
	ProfileIDs  []string      `json:"profileIds"`
	Progress    int           `json:"progress"`
	Total       int           `json:"total"`
	Result      *EnrichResult `json:"result,omitempty"`
	Error       string        `json:"error,omitempty"`
	StartedAt   time.Time     `json:"startedAt"`
	CompletedAt *time.Time    `json:"completedAt,omitempty"`

	mu                 sync.RWMutex
	lastProgressUpdate time.Time
}

// JobStore persists job state. *db.Client implements it.
type JobStore interface {
	CreateEnrichJob(ctx context.Context, id, name string, profileIDs []string) error
	UpdateJobProgress(ctx context.Context, id string, progress int) error
	UpdateJobStatus(ctx context.Context, id, status string) error
	CompleteJob(ctx context.Context, id string, result map[string]any) error
	FailJob(ctx context.Context, id, message string) error
	GetIncompleteJobs(ctx context.Context) ([]models.EnrichJob, error)
}

// JobManager tracks background jobs and fans their progress out to
// subscribers.
type JobManager struct {
	mu          sync.RWMutex
	jobs        map[string]*Job
	subs        map[string]map[chan Job]struct{}
	concurrency int
	store       JobStore
	logger      *slog.Logger
}

// NewJobManager creates a job manager. store may be nil.
func NewJobManager(concurrency int, store JobStore, logger *slog.Logger) *JobManager {
	if concurrency <= 0 {
		concurrency = 4
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &JobManager{
		jobs:        make(map[string]*Job),
		subs:        make(map[string]map[chan Job]struct{}),
		concurrency: concurrency,
		store:       store,
		logger:      logger,
	}
}

// Concurrency returns the configured worker count.
func (m *JobManager) Concurrency() int {
	return m.concurrency
}

// CreateJob registers a new pending job and persists it.
func (m *JobManager) CreateJob(ctx context.Context, jobType, name string, profileIDs []string) (*Job, error) {
	job := &Job{
		ID:         uuid.New().String()[:8],
		Type:       jobType,
		Status:     JobStatusPending,
		Name:       name,
		ProfileIDs: profileIDs,
		Total:      len(profileIDs),
		StartedAt:  time.Now(),
	}

	if m.store != nil {
		if err := m.store.CreateEnrichJob(ctx, job.ID, name, profileIDs); err != nil {
			return nil, fmt.Errorf("persist job: %w", err)
		}
	}

	m.mu.Lock()
	m.jobs[job.ID] = job
	m.mu.Unlock()

	m.logger.Info("job created", "job_id", job.ID, "name", name, "type", jobType, "profiles", len(profileIDs))
	return job, nil
}

// Get returns a snapshot of a job.
func (m *JobManager) Get(id string) (Job, error) {
	m.mu.RLock()
	job, ok := m.jobs[id]
	m.mu.RUnlock()
	if !ok {
		return Job{}, fmt.Errorf("%s: %w", id, ErrJobNotFound)
	}
	return job.Snapshot(), nil
}

// List returns snapshots of all jobs, most recent first.
func (m *JobManager) List() []Job {
	m.mu.RLock()
	jobs := make([]*Job, 0, len(m.jobs))
	for _, job := range m.jobs {
		jobs = append(jobs, job)
	}
	m.mu.RUnlock()

	slices.SortFunc(jobs, func(a, b *Job) int {
		return b.StartedAt.Compare(a.StartedAt)
	})
	out := make([]Job, len(jobs))
	for i, job := range jobs {
		out[i] = job.Snapshot()
	}
	return out
}

// Subscribe returns a channel of job snapshots, starting with the current
// state. The channel is closed once the job finishes or cancel is called.
// Slow readers miss intermediate updates, never the final one.
func (m *JobManager) Subscribe(id string) (<-chan Job, func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[id]
	if !ok {
		return nil, nil, fmt.Errorf("%s: %w", id, ErrJobNotFound)
	}

	ch := make(chan Job, 16)
	snap := job.Snapshot()
	ch <- snap
	if snap.Status.Done() {
		close(ch)
		return ch, func() {}, nil
	}

	if m.subs[id] == nil {
		m.subs[id] = make(map[chan Job]struct{})
	}
	m.subs[id][ch] = struct{}{}

	cancel := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if _, ok := m.subs[id][ch]; ok {
			delete(m.subs[id], ch)
			close(ch)
		}
	}
	return ch, cancel, nil
}

// publish sends a snapshot to subscribers. Terminal snapshots close the
// channels; a full channel has its oldest update dropped to make room.
func (m *JobManager) publish(job *Job) {
	snap := job.Snapshot()

	m.mu.Lock()
	defer m.mu.Unlock()
	for ch := range m.subs[job.ID] {
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
		if snap.Status.Done() {
			close(ch)
		}
	}
	if snap.Status.Done() {
		delete(m.subs, job.ID)
	}
}

// UpdateProgress records progress. Store writes are debounced.
func (m *JobManager) UpdateProgress(ctx context.Context, job *Job, current int) {
	job.mu.Lock()
	job.Progress = current
	if job.Status == JobStatusPending {
		job.Status = JobStatusRunning
	}
	shouldPersist := m.store != nil && (time.Since(job.lastProgressUpdate) > 5*time.Second ||
		current%10 == 0 || current == job.Total)
	if shouldPersist {
		job.lastProgressUpdate = time.Now()
	}
	job.mu.Unlock()

	if shouldPersist {
		if err := m.store.UpdateJobProgress(ctx, job.ID, current); err != nil {
			m.logger.Warn("failed to persist job progress", "job_id", job.ID, "error", err)
		}
	}
	m.publish(job)
}

// SetRunning marks a job running.
func (m *JobManager) SetRunning(ctx context.Context, job *Job) {
	job.mu.Lock()
	job.Status = JobStatusRunning
	job.mu.Unlock()

	if m.store != nil {
		if err := m.store.UpdateJobStatus(ctx, job.ID, string(JobStatusRunning)); err != nil {
			m.logger.Warn("failed to set job running", "job_id", job.ID, "error", err)
		}
	}
	m.publish(job)
}

// Complete marks a job completed with result.
func (m *JobManager) Complete(ctx context.Context, job *Job, result *EnrichResult) {
	now := time.Now()
	job.mu.Lock()
	job.Status = JobStatusCompleted
	job.Result = result
	job.Progress = job.Total
	job.CompletedAt = &now
	job.mu.Unlock()

	if m.store != nil {
		err := m.store.CompleteJob(ctx, job.ID, map[string]any{
			"enriched": result.Enriched,
			"failed":   result.Failed,
			"errors":   result.Errors,
		})
		if err != nil {
			m.logger.Warn("failed to persist job completion", "job_id", job.ID, "error", err)
		}
	}
	m.publish(job)
	m.logger.Info("job completed", "job_id", job.ID, "enriched", result.Enriched, "failed", result.Failed)
}

// Fail marks a job failed.
func (m *JobManager) Fail(ctx context.Context, job *Job, err error) {
	now := time.Now()
	job.mu.Lock()
	job.Status = JobStatusFailed
	job.Error = err.Error()
	job.CompletedAt = &now
	job.mu.Unlock()

	if m.store != nil {
		if dbErr := m.store.FailJob(ctx, job.ID, err.Error()); dbErr != nil {
			m.logger.Warn("failed to persist job failure", "job_id", job.ID, "error", dbErr)
		}
	}
	m.publish(job)
	m.logger.Error("job failed", "job_id", job.ID, "error", err)
}

// AbandonInterrupted marks jobs a previous process left pending or running
// as failed. Their transcripts lived in memory only, so they cannot resume.
func (m *JobManager) AbandonInterrupted(ctx context.Context) (int, error) {
	if m.store == nil {
		return 0, nil
	}
	stale, err := m.store.GetIncompleteJobs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list incomplete jobs: %w", err)
	}

	abandoned := 0
	for _, dbJob := range stale {
		id, err := models.RecordIDString(dbJob.ID)
		if err != nil {
			m.logger.Warn("failed to get job ID", "error", err)
			continue
		}
		if err := m.store.FailJob(ctx, id, "interrupted by restart"); err != nil {
			m.logger.Warn("failed to abandon job", "job_id", id, "error", err)
			continue
		}
		abandoned++
	}
	if abandoned > 0 {
		m.logger.Info("abandoned interrupted jobs", "count", abandoned)
	}
	return abandoned, nil
}

// Snapshot returns a copy of the job state that is safe to read.
func (j *Job) Snapshot() Job {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return Job{
		ID:          j.ID,
		Type:        j.Type,
		Status:      j.Status,
		Name:        j.Name,
		ProfileIDs:  j.ProfileIDs,
		Progress:    j.Progress,
		Total:       j.Total,
		Result:      j.Result,
		Error:       j.Error,
		StartedAt:   j.StartedAt,
		CompletedAt: j.CompletedAt,
	}
}
