package jobstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"logoforge/internal/domain"
	"logoforge/internal/infra"
	"logoforge/internal/sqlinline"
)

// NotifyChannel is the Postgres channel carrying ids of mutated jobs.
const NotifyChannel = "job_status"

// Postgres implements domain.JobRepository on top of the inline SQL runner.
// Snapshots leave the process through pg_notify; a Listener turns them back
// into bus publications wherever subscribers live.
type Postgres struct {
	sql infra.SQLExecutor
}

func NewPostgres(sql infra.SQLExecutor) *Postgres {
	return &Postgres{sql: sql}
}

func (p *Postgres) Create(ctx context.Context, in domain.NewJob) (*domain.Job, error) {
	row := p.sql.QueryRow(ctx, sqlinline.QInsertJob, uuid.NewString(), in.Prompt, string(in.Style), in.SurpriseMe)
	job, err := scanJob(row)
	if err != nil {
		return nil, fmt.Errorf("insert job: %w", err)
	}
	p.notify(ctx, job.ID)
	return job, nil
}

func (p *Postgres) Get(ctx context.Context, jobID string) (*domain.Job, error) {
	if _, err := uuid.Parse(jobID); err != nil {
		return nil, domain.ErrNotFound
	}
	job, err := scanJob(p.sql.QueryRow(ctx, sqlinline.QSelectJob, jobID))
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("select job: %w", err)
	}
	return job, nil
}

func (p *Postgres) ClaimNext(ctx context.Context) (*domain.Job, error) {
	job, err := scanJob(p.sql.QueryRow(ctx, sqlinline.QClaimNextJob))
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNoJobQueued
		}
		return nil, fmt.Errorf("claim job: %w", err)
	}
	return job, nil
}

// Ping checks that the database answers queries.
func (p *Postgres) Ping(ctx context.Context) error {
	var one int
	if err := p.sql.QueryRow(ctx, sqlinline.QPing).Scan(&one); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	return nil
}

func (p *Postgres) Complete(ctx context.Context, jobID, resultURL string) error {
	return p.settle(ctx, sqlinline.QCompleteJob, jobID, resultURL)
}

func (p *Postgres) Fail(ctx context.Context, jobID, errMsg string) error {
	return p.settle(ctx, sqlinline.QFailJob, jobID, errMsg)
}

func (p *Postgres) settle(ctx context.Context, query, jobID, value string) error {
	tag, err := p.sql.Exec(ctx, query, jobID, value)
	if err != nil {
		return fmt.Errorf("update job %s: %w", jobID, err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := p.Get(ctx, jobID); err != nil {
			return err
		}
		return fmt.Errorf("job %s: %w", jobID, domain.ErrAlreadySettled)
	}
	p.notify(ctx, jobID)
	return nil
}

// notify is best effort: subscribers resynchronise from the row on reconnect.
func (p *Postgres) notify(ctx context.Context, jobID string) {
	_, _ = p.sql.Exec(ctx, sqlinline.QNotifyJobStatus, NotifyChannel, jobID)
}

func scanJob(row pgx.Row) (*domain.Job, error) {
	var (
		job   domain.Job
		style string
		state string
	)
	if err := row.Scan(
		&job.ID,
		&job.Prompt,
		&style,
		&job.SurpriseMe,
		&state,
		&job.ResultURL,
		&job.ErrorMessage,
		&job.CreatedAt,
		&job.UpdatedAt,
	); err != nil {
		return nil, err
	}
	job.Style = domain.StyleKey(style)
	job.Status = domain.JobStatus(state)
	if !job.Status.Terminal() && job.Status != domain.JobStatusProcessing {
		return nil, errors.New("unknown job status " + state)
	}
	return &job, nil
}

var _ domain.JobRepository = (*Postgres)(nil)
