package domain

import (
	"strings"
	"time"
)

// JobStatus enumerates job lifecycle states as stored by the backend.
type JobStatus string

const (
	JobStatusProcessing JobStatus = "processing"
	JobStatusDone       JobStatus = "done"
	JobStatusFailed     JobStatus = "failed"
)

// Terminal reports whether no further status mutation is expected.
func (s JobStatus) Terminal() bool {
	return s == JobStatusDone || s == JobStatusFailed
}

// StyleKey selects the visual treatment of a logo.
type StyleKey string

const (
	StyleNoStyle  StyleKey = "no-style"
	StyleMonogram StyleKey = "monogram"
	StyleAbstract StyleKey = "abstract"
	StyleMascot   StyleKey = "mascot"
)

// StyleKeys lists the closed set of style keys in display order.
var StyleKeys = []StyleKey{StyleNoStyle, StyleMonogram, StyleAbstract, StyleMascot}

// Valid reports whether k is one of the known style keys.
func (k StyleKey) Valid() bool {
	switch k {
	case StyleNoStyle, StyleMonogram, StyleAbstract, StyleMascot:
		return true
	default:
		return false
	}
}

// ParseStyleKey normalizes free-form input into a StyleKey. Unknown values are
// reported with ok=false.
func ParseStyleKey(raw string) (StyleKey, bool) {
	k := StyleKey(strings.ToLower(strings.TrimSpace(raw)))
	if k == "" {
		return StyleNoStyle, true
	}
	return k, k.Valid()
}

// MaxPromptLength caps the prompt length in characters.
const MaxPromptLength = 500

// Job is a unit of asynchronous logo generation work.
type Job struct {
	ID           string
	Prompt       string
	Style        StyleKey
	SurpriseMe   bool
	Status       JobStatus
	ResultURL    string
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Snapshot returns the observable status view of the job.
func (j Job) Snapshot() Snapshot {
	return Snapshot{
		JobID:        j.ID,
		Status:       j.Status,
		ResultURL:    j.ResultURL,
		ErrorMessage: j.ErrorMessage,
		UpdatedAt:    j.UpdatedAt,
	}
}

// Snapshot is one observed state of a job's status document.
type Snapshot struct {
	JobID        string    `json:"jobId"`
	Status       JobStatus `json:"status"`
	ResultURL    string    `json:"resultUrl,omitempty"`
	ErrorMessage string    `json:"errorMessage,omitempty"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// NewJob carries the client-supplied fields of a job creation request.
type NewJob struct {
	Prompt     string
	Style      StyleKey
	SurpriseMe bool
}
