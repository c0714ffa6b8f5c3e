// Package jobstore persists logo generation jobs and publishes a snapshot for
// every status mutation.
package jobstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"logoforge/internal/domain"
)

// Memory keeps jobs in process memory. It backs development runs and tests.
type Memory struct {
	mu    sync.Mutex
	jobs  map[string]*memoryJob
	order []string
	pub   domain.SnapshotPublisher
	now   func() time.Time
	newID func() string
}

type memoryJob struct {
	job     domain.Job
	claimed bool
}

// NewMemory creates an empty store publishing to pub (may be nil).
func NewMemory(pub domain.SnapshotPublisher) *Memory {
	return &Memory{
		jobs:  make(map[string]*memoryJob),
		pub:   pub,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

func (m *Memory) Create(ctx context.Context, in domain.NewJob) (*domain.Job, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	now := m.now()
	job := domain.Job{
		ID:         m.newID(),
		Prompt:     in.Prompt,
		Style:      in.Style,
		SurpriseMe: in.SurpriseMe,
		Status:     domain.JobStatusProcessing,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	m.mu.Lock()
	m.jobs[job.ID] = &memoryJob{job: job}
	m.order = append(m.order, job.ID)
	m.mu.Unlock()

	m.publish(job)
	return &job, nil
}

func (m *Memory) Get(ctx context.Context, jobID string) (*domain.Job, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.jobs[jobID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	job := entry.job
	return &job, nil
}

func (m *Memory) ClaimNext(ctx context.Context) (*domain.Job, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, id := range m.order {
		entry := m.jobs[id]
		if entry.claimed || entry.job.Status != domain.JobStatusProcessing {
			continue
		}
		entry.claimed = true
		entry.job.UpdatedAt = m.now()
		m.order = append(m.order[:i:i], m.order[i+1:]...)
		job := entry.job
		return &job, nil
	}
	return nil, domain.ErrNoJobQueued
}

func (m *Memory) Complete(ctx context.Context, jobID, resultURL string) error {
	return m.settle(ctx, jobID, func(j *domain.Job) {
		j.Status = domain.JobStatusDone
		j.ResultURL = resultURL
	})
}

func (m *Memory) Fail(ctx context.Context, jobID, errMsg string) error {
	return m.settle(ctx, jobID, func(j *domain.Job) {
		j.Status = domain.JobStatusFailed
		j.ErrorMessage = errMsg
	})
}

func (m *Memory) settle(ctx context.Context, jobID string, apply func(*domain.Job)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	entry, ok := m.jobs[jobID]
	if !ok {
		m.mu.Unlock()
		return domain.ErrNotFound
	}
	if entry.job.Status.Terminal() {
		m.mu.Unlock()
		return fmt.Errorf("job %s: %w", jobID, domain.ErrAlreadySettled)
	}
	apply(&entry.job)
	entry.job.UpdatedAt = m.now()
	job := entry.job
	m.mu.Unlock()

	m.publish(job)
	return nil
}

func (m *Memory) publish(job domain.Job) {
	if m.pub != nil {
		m.pub.Publish(job.Snapshot())
	}
}

var _ domain.JobRepository = (*Memory)(nil)
