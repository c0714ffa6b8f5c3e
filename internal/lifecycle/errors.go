package lifecycle

import (
	"errors"
	"fmt"

	"logoforge/internal/domain"
)

// Precondition failures. They never change the controller state.
var (
	ErrEmptyPrompt       = errors.New("prompt is empty")
	ErrPromptTooLong     = fmt.Errorf("prompt exceeds %d characters", domain.MaxPromptLength)
	ErrInvalidStyle      = domain.ErrInvalidStyle
	ErrJobInFlight       = errors.New("a job is already processing")
	ErrInvalidTransition = errors.New("invalid state transition")
	ErrNoResult          = errors.New("no result available")
	ErrControllerClosed  = errors.New("controller closed")
)

// SubmissionError reports that the create request itself failed.
type SubmissionError struct {
	Err error
}

func (e *SubmissionError) Error() string {
	return "submit job: " + e.Err.Error()
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// JobFailedError reports a job the backend marked as failed.
type JobFailedError struct {
	JobID   string
	Message string
}

func (e *JobFailedError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("job %s failed", e.JobID)
	}
	return fmt.Sprintf("job %s failed: %s", e.JobID, e.Message)
}

// StreamError reports that the status subscription broke before the job
// reached a terminal state.
type StreamError struct {
	JobID string
	Err   error
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("job %s: status stream: %v", e.JobID, e.Err)
}

func (e *StreamError) Unwrap() error { return e.Err }
