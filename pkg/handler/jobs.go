package handler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yumyai/sangercheck/logger"

	"github.com/yumyai/sangercheck/pkg/model"
)

// JobStatus represents the lifecycle of a batch comparison request.
type JobStatus string

const (
	JobQueued    JobStatus = "queued"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// Job keeps track of one batch comparison while the runner works on it.
type Job struct {
	ID        string
	Pairs     []model.Pair
	Status    JobStatus
	Outcomes  []model.Outcome
	Error     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Done reports whether the job reached a final state.
func (j Job) Done() bool {
	return j.Status == JobCompleted || j.Status == JobFailed
}

// JobManager stores job states indexed by job ID.
type JobManager struct {
	mu   sync.RWMutex
	jobs map[string]*Job
}

// NewJobManager constructs a job manager with no jobs.
func NewJobManager() *JobManager {
	return &JobManager{
		jobs: make(map[string]*Job),
	}
}

// NewJob registers a queued job for the provided pairs.
func (m *JobManager) NewJob(pairs []model.Pair) Job {
	now := time.Now()
	job := &Job{
		ID:        uuid.New().String(),
		Pairs:     pairs,
		Status:    JobQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}

	m.mu.Lock()
	m.jobs[job.ID] = job
	m.mu.Unlock()
	return *job
}

// SetRunning marks the job as running.
func (m *JobManager) SetRunning(jobID string) {
	m.updateJob(jobID, func(job *Job) {
		job.Status = JobRunning
	})
}

// CompleteJob stores the outcomes and marks the job complete.
func (m *JobManager) CompleteJob(jobID string, outcomes []model.Outcome) {
	m.updateJob(jobID, func(job *Job) {
		job.Status = JobCompleted
		job.Outcomes = outcomes
	})
}

// FailJob records a failure and attaches a user-facing error message.
func (m *JobManager) FailJob(jobID string, err error) {
	m.updateJob(jobID, func(job *Job) {
		job.Status = JobFailed
		job.Error = err.Error()
	})
}

// GetJob returns a snapshot of the job.
func (m *JobManager) GetJob(jobID string) (Job, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	job, ok := m.jobs[jobID]
	if !ok {
		return Job{}, false
	}
	return *job, true
}

func (m *JobManager) updateJob(jobID string, update func(job *Job)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[jobID]
	if !ok {
		return
	}

	update(job)
	job.UpdatedAt = time.Now()
}

// Active counts jobs that are queued or running.
func (m *JobManager) Active() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, job := range m.jobs {
		if !job.Done() {
			n++
		}
	}
	return n
}

// Prune drops finished jobs last updated before now-ttl and returns how many
// were removed. Queued and running jobs are never dropped.
func (m *JobManager) Prune(now time.Time, ttl time.Duration) int {
	cutoff := now.Add(-ttl)

	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for id, job := range m.jobs {
		if job.Done() && job.UpdatedAt.Before(cutoff) {
			delete(m.jobs, id)
			n++
		}
	}
	return n
}

// Sweep prunes finished jobs older than ttl every interval until ctx is done.
// A ttl <= 0 keeps jobs for the life of the process.
func (m *JobManager) Sweep(ctx context.Context, interval, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	if interval <= 0 {
		interval = ttl
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := m.Prune(now, ttl); n > 0 {
				logger.Debug("Pruned finished jobs", zap.Int("count", n))
			}
		}
	}
}
