package domain

import "context"

// JobRepository defines persistence for job entities. Implementations publish a
// Snapshot for every mutation they perform.
type JobRepository interface {
	Create(ctx context.Context, job NewJob) (*Job, error)
	Get(ctx context.Context, jobID string) (*Job, error)
	// ClaimNext hands out the oldest processing job nobody is working on yet.
	// It returns ErrNoJobQueued when there is none.
	ClaimNext(ctx context.Context) (*Job, error)
	Complete(ctx context.Context, jobID, resultURL string) error
	Fail(ctx context.Context, jobID, errMsg string) error
}

// SnapshotPublisher fans snapshots out to subscribers of a job.
type SnapshotPublisher interface {
	Publish(s Snapshot)
}
