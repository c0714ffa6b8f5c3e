package image

import (
	"context"

	"logoforge/internal/domain"
)

// GenerateRequest describes a normalized request passed to any image provider.
type GenerateRequest struct {
	JobID  string
	Prompt string
	Style  domain.StyleKey
}

// Asset represents a generated logo. StorageKey is set when the provider
// persisted the file itself.
type Asset struct {
	URL        string
	StorageKey string
	Format     string
	Width      int
	Height     int
}

// Generator is the contract implemented by all image providers.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (Asset, error)
}
