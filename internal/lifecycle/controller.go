// Package lifecycle tracks a single logo generation job from submission to
// its terminal state.
//
// A Controller is a small state machine:
//
//	idle -> processing -> done | failed -> (Retry) idle
//
// Every submission starts a new generation. Status callbacks carry the
// generation they were registered for and are dropped once it is stale, so a
// late snapshot for a discarded job never reaches the current one.
package lifecycle

import (
	"context"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"logoforge/internal/brand"
	"logoforge/internal/domain"
	"logoforge/internal/domain/jsoncfg"
)

// State is the client-side view of the tracked job.
type State string

const (
	StateIdle       State = "idle"
	StateProcessing State = "processing"
	StateDone       State = "done"
	StateFailed     State = "failed"
)

// JobCreator issues the create request and returns the backend job id.
type JobCreator interface {
	CreateJob(ctx context.Context, req jsoncfg.JobRequestJSON) (string, error)
}

// Subscription is an open status stream. Close stops delivery and returns
// only after the delivery goroutine has exited.
type Subscription interface {
	Close() error
}

// SnapshotFunc receives status snapshots, or a non-nil error when the stream
// broke for good. It is called from a single goroutine per subscription.
type SnapshotFunc func(domain.Snapshot, error)

// JobWatcher opens a status subscription for one job.
type JobWatcher interface {
	Watch(ctx context.Context, jobID string, fn SnapshotFunc) (Subscription, error)
}

// Status is a consistent copy of the controller state.
type Status struct {
	State     State
	JobID     string
	Prompt    string
	Style     domain.StyleKey
	ResultURL string
	Err       error
}

// Chip returns the status line for s in the given locale.
func (s Status) Chip(locale string) (Chip, bool) {
	return ChipFor(s.State, locale)
}

// RenderParams is handed to the result screen.
type RenderParams struct {
	JobID     string
	Prompt    string
	StyleKey  domain.StyleKey
	ResultURL string
}

// Logo derives the brand name, font and style used to render the result.
func (p RenderParams) Logo() brand.DerivedBrand {
	return brand.Derive(p.Prompt, p.StyleKey)
}

type Option func(*Controller)

func WithLogger(l zerolog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithObserver registers fn to be called after every state transition. fn
// runs outside the controller lock, possibly on the delivery goroutine, and
// must not call Retry or Close synchronously.
func WithObserver(fn func(Status)) Option {
	return func(c *Controller) { c.observer = fn }
}

// Controller owns at most one active job and its subscription.
type Controller struct {
	creator  JobCreator
	watcher  JobWatcher
	logger   zerolog.Logger
	observer func(Status)

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	state   State
	gen     uint64
	jobID   string
	prompt  string
	style   domain.StyleKey
	result  string
	cause   error
	sub     Subscription
	settled chan struct{}
	closed  bool
	done    chan struct{}
}

func New(creator JobCreator, watcher JobWatcher, opts ...Option) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		creator: creator,
		watcher: watcher,
		logger:  zerolog.Nop(),
		ctx:     ctx,
		cancel:  cancel,
		state:   StateIdle,
		done:    make(chan struct{}),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Submit starts a job for prompt. Rejected submissions leave the state as it
// was and send nothing to the backend.
func (c *Controller) Submit(ctx context.Context, prompt, styleKey string, surpriseMe bool) error {
	trimmed := strings.TrimSpace(prompt)
	if trimmed == "" {
		return ErrEmptyPrompt
	}
	if utf8.RuneCountInString(trimmed) > domain.MaxPromptLength {
		return ErrPromptTooLong
	}
	style, ok := domain.ParseStyleKey(styleKey)
	if !ok {
		return ErrInvalidStyle
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrControllerClosed
	}
	if c.state == StateProcessing {
		c.mu.Unlock()
		return ErrJobInFlight
	}
	prev := c.sub
	c.sub = nil
	c.gen++
	gen := c.gen
	c.state = StateProcessing
	c.jobID, c.result, c.cause = "", "", nil
	c.prompt, c.style = trimmed, style
	c.settled = make(chan struct{})
	status := c.statusLocked()
	c.mu.Unlock()

	c.closeSub(prev)
	c.notify(status)

	jobID, err := c.creator.CreateJob(ctx, jsoncfg.JobRequestJSON{
		Prompt:     trimmed,
		LogoStyle:  string(style),
		SurpriseMe: surpriseMe,
	})
	if err != nil {
		serr := &SubmissionError{Err: err}
		c.logger.Warn().Err(err).Msg("lifecycle: create job failed")
		c.settle(gen, "", StateFailed, "", serr)
		return serr
	}

	c.mu.Lock()
	if c.gen != gen {
		closed := c.closed
		c.mu.Unlock()
		if closed {
			return ErrControllerClosed
		}
		return nil
	}
	c.jobID = jobID
	status = c.statusLocked()
	c.mu.Unlock()
	c.notify(status)
	c.logger.Info().Str("job_id", jobID).Str("logo_style", string(style)).Msg("lifecycle: job submitted")

	sub, err := c.watcher.Watch(c.ctx, jobID, func(s domain.Snapshot, err error) {
		c.deliver(gen, jobID, s, err)
	})
	if err != nil {
		serr := &StreamError{JobID: jobID, Err: err}
		c.settle(gen, jobID, StateFailed, "", serr)
		return serr
	}

	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		c.closeSub(sub)
		return nil
	}
	c.sub = sub
	c.mu.Unlock()
	return nil
}

// deliver applies one snapshot, or a terminal stream error, for the job of
// generation gen.
func (c *Controller) deliver(gen uint64, jobID string, s domain.Snapshot, err error) {
	if err != nil {
		c.logger.Warn().Err(err).Str("job_id", jobID).Msg("lifecycle: status stream lost")
		c.settle(gen, jobID, StateFailed, "", &StreamError{JobID: jobID, Err: err})
		return
	}
	if s.JobID != "" && s.JobID != jobID {
		return
	}
	switch s.Status {
	case domain.JobStatusDone:
		c.settle(gen, jobID, StateDone, s.ResultURL, nil)
	case domain.JobStatusFailed:
		c.settle(gen, jobID, StateFailed, "", &JobFailedError{JobID: jobID, Message: s.ErrorMessage})
	}
}

// settle moves a processing job of generation gen to a terminal state. Calls
// for a superseded generation or a different job are ignored.
func (c *Controller) settle(gen uint64, jobID string, to State, resultURL string, cause error) {
	c.mu.Lock()
	if c.gen != gen || c.state != StateProcessing || (jobID != "" && c.jobID != jobID) {
		c.mu.Unlock()
		return
	}
	c.state = to
	c.result = resultURL
	c.cause = cause
	settled := c.settled
	status := c.statusLocked()
	c.mu.Unlock()

	c.logger.Info().Str("job_id", status.JobID).Str("state", string(to)).Msg("lifecycle: job settled")
	// Observers run before waiters are released.
	c.notify(status)
	close(settled)
}

// Retry discards a finished job and returns to idle.
func (c *Controller) Retry() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrControllerClosed
	}
	if c.state != StateDone && c.state != StateFailed {
		c.mu.Unlock()
		return ErrInvalidTransition
	}
	sub := c.sub
	c.sub = nil
	c.gen++
	c.state = StateIdle
	c.jobID, c.result, c.cause = "", "", nil
	c.prompt, c.style = "", ""
	c.settled = nil
	status := c.statusLocked()
	c.mu.Unlock()

	c.closeSub(sub)
	c.notify(status)
	return nil
}

// NavigateToResult returns the parameters of the finished job. It does not
// change state.
func (c *Controller) NavigateToResult() (RenderParams, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateDone || c.result == "" {
		return RenderParams{}, ErrNoResult
	}
	return RenderParams{
		JobID:     c.jobID,
		Prompt:    c.prompt,
		StyleKey:  c.style,
		ResultURL: c.result,
	}, nil
}

// Close releases the active subscription. Later submissions fail with
// ErrControllerClosed. Close is idempotent.
func (c *Controller) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	sub := c.sub
	c.sub = nil
	c.gen++
	close(c.done)
	c.mu.Unlock()

	c.cancel()
	return c.closeSub(sub)
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statusLocked()
}

// Wait blocks until the current job settles, the controller is closed or ctx
// is done. Waiting while idle is an invalid transition.
func (c *Controller) Wait(ctx context.Context) (Status, error) {
	c.mu.Lock()
	settled := c.settled
	state := c.state
	c.mu.Unlock()
	if state == StateIdle || settled == nil {
		return Status{State: state}, ErrInvalidTransition
	}

	select {
	case <-settled:
		return c.Status(), nil
	case <-c.done:
		return c.Status(), ErrControllerClosed
	case <-ctx.Done():
		return c.Status(), ctx.Err()
	}
}

func (c *Controller) statusLocked() Status {
	return Status{
		State:     c.state,
		JobID:     c.jobID,
		Prompt:    c.prompt,
		Style:     c.style,
		ResultURL: c.result,
		Err:       c.cause,
	}
}

func (c *Controller) notify(s Status) {
	if c.observer != nil {
		c.observer(s)
	}
}

func (c *Controller) closeSub(sub Subscription) error {
	if sub == nil {
		return nil
	}
	if err := sub.Close(); err != nil {
		c.logger.Warn().Err(err).Msg("lifecycle: close subscription")
		return err
	}
	return nil
}
