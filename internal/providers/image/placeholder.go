package image

import (
	"context"
	"fmt"
)

const placeholderBaseURL = "https://via.placeholder.com/400/4A90E2/FFFFFF"

// Placeholder returns a remote placeholder image labelled with the job id.
type Placeholder struct{}

func NewPlaceholder() *Placeholder {
	return &Placeholder{}
}

func (p *Placeholder) Generate(ctx context.Context, req GenerateRequest) (Asset, error) {
	if err := ctx.Err(); err != nil {
		return Asset{}, err
	}
	tag := req.JobID
	if len(tag) > 6 {
		tag = tag[:6]
	}
	return Asset{
		URL:    fmt.Sprintf("%s?text=Logo+%s", placeholderBaseURL, tag),
		Format: "image/png",
		Width:  400,
		Height: 400,
	}, nil
}

var _ Generator = (*Placeholder)(nil)
