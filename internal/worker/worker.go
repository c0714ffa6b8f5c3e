// Package worker simulates logo generation for queued jobs.
package worker

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"logoforge/internal/domain"
	"logoforge/internal/providers/image"
)

// MockFailureMessage is stored on jobs failed by the success-rate roll.
const MockFailureMessage = "Random mock failure for testing"

const settleTimeout = 5 * time.Second

// Pool runs a fixed number of goroutines that claim and settle jobs.
type Pool struct {
	repo   domain.JobRepository
	gen    image.Generator
	logger zerolog.Logger

	workers      int
	minDelay     time.Duration
	maxDelay     time.Duration
	successRate  float64
	pollInterval time.Duration

	roll  func() float64
	randN func(n int64) int64
	sleep func(ctx context.Context, d time.Duration) error
}

type Option func(*Pool)

func WithWorkers(n int) Option {
	return func(p *Pool) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithDelay sets the simulated generation time range. A max below min is
// clamped to min.
func WithDelay(lo, hi time.Duration) Option {
	return func(p *Pool) {
		if lo < 0 {
			lo = 0
		}
		if hi < lo {
			hi = lo
		}
		p.minDelay, p.maxDelay = lo, hi
	}
}

func WithSuccessRate(rate float64) Option {
	return func(p *Pool) {
		if rate >= 0 && rate <= 1 {
			p.successRate = rate
		}
	}
}

func WithPollInterval(d time.Duration) Option {
	return func(p *Pool) {
		if d > 0 {
			p.pollInterval = d
		}
	}
}

func New(repo domain.JobRepository, gen image.Generator, logger zerolog.Logger, opts ...Option) *Pool {
	p := &Pool{
		repo:         repo,
		gen:          gen,
		logger:       logger,
		workers:      2,
		minDelay:     30 * time.Second,
		maxDelay:     60 * time.Second,
		successRate:  0.9,
		pollInterval: 2 * time.Second,
		roll:         rand.Float64,
		randN:        rand.Int64N,
		sleep:        sleepContext,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Run blocks until ctx is cancelled.
func (p *Pool) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < p.workers; i++ {
		workerID := i + 1
		g.Go(func() error {
			return p.loop(ctx, workerID)
		})
	}
	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (p *Pool) loop(ctx context.Context, workerID int) error {
	log := p.logger.With().Int("worker_id", workerID).Logger()
	log.Info().Msg("worker: started")
	defer log.Info().Msg("worker: stopped")

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		handled, err := p.ProcessNext(ctx)
		if err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("worker: failed to process job")
		}
		if handled && err == nil {
			continue
		}
		if err := p.sleep(ctx, p.pollInterval); err != nil {
			return err
		}
	}
}

// ProcessNext claims one job and settles it. It reports false when no job
// was waiting.
func (p *Pool) ProcessNext(ctx context.Context) (bool, error) {
	job, err := p.repo.ClaimNext(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNoJobQueued) {
			return false, nil
		}
		return false, err
	}
	return true, p.handle(ctx, job)
}

func (p *Pool) handle(ctx context.Context, job *domain.Job) error {
	log := p.logger.With().Str("job_id", job.ID).Logger()
	delay := p.delay()
	log.Info().Dur("delay", delay).Str("logo_style", string(job.Style)).Msg("worker: picked job")

	if err := p.sleep(ctx, delay); err != nil {
		settleCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), settleTimeout)
		defer cancel()
		if failErr := p.repo.Fail(settleCtx, job.ID, "generation interrupted"); failErr != nil {
			log.Warn().Err(failErr).Msg("worker: could not fail interrupted job")
		}
		return err
	}

	if p.roll() >= p.successRate {
		log.Info().Msg("worker: job failed")
		return p.repo.Fail(ctx, job.ID, MockFailureMessage)
	}

	asset, err := p.gen.Generate(ctx, image.GenerateRequest{JobID: job.ID, Prompt: job.Prompt, Style: job.Style})
	if err != nil {
		log.Error().Err(err).Msg("worker: generation failed")
		return p.repo.Fail(ctx, job.ID, err.Error())
	}
	if err := p.repo.Complete(ctx, job.ID, asset.URL); err != nil {
		return err
	}
	log.Info().Str("result_url", asset.URL).Msg("worker: job completed")
	return nil
}

func (p *Pool) delay() time.Duration {
	span := int64(p.maxDelay - p.minDelay)
	if span <= 0 {
		return p.minDelay
	}
	return p.minDelay + time.Duration(p.randN(span+1))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
