package jobstore

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"logoforge/internal/domain"
)

const listenerRetryDelay = 2 * time.Second

// Listener holds a dedicated connection subscribed to NotifyChannel and
// republishes the current snapshot of every notified job.
type Listener struct {
	pool   *pgxpool.Pool
	repo   domain.JobRepository
	pub    domain.SnapshotPublisher
	logger zerolog.Logger
}

func NewListener(pool *pgxpool.Pool, repo domain.JobRepository, pub domain.SnapshotPublisher, logger zerolog.Logger) *Listener {
	return &Listener{pool: pool, repo: repo, pub: pub, logger: logger}
}

// Run listens until ctx is cancelled, reconnecting after connection failures.
func (l *Listener) Run(ctx context.Context) error {
	for {
		err := l.listen(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		l.logger.Warn().Err(err).Msg("listener: connection lost, retrying")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(listenerRetryDelay):
		}
	}
}

func (l *Listener) listen(ctx context.Context) error {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "listen "+pgx.Identifier{NotifyChannel}.Sanitize()); err != nil {
		return err
	}
	l.logger.Info().Str("channel", NotifyChannel).Msg("listener: started")

	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return err
		}
		l.dispatch(ctx, n.Payload)
	}
}

func (l *Listener) dispatch(ctx context.Context, jobID string) {
	job, err := l.repo.Get(ctx, jobID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			l.logger.Error().Err(err).Str("job_id", jobID).Msg("listener: reload job failed")
		}
		return
	}
	l.pub.Publish(job.Snapshot())
}
