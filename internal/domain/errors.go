package domain

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidPrompt  = errors.New("invalid prompt")
	ErrInvalidStyle   = errors.New("invalid logo style")
	ErrJobNotDone     = errors.New("job not done")
	ErrNoJobQueued    = errors.New("no job available")
	ErrAlreadySettled = errors.New("job already settled")
)
