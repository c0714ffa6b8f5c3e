package jsoncfg

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"logoforge/internal/domain"
)

// JobRequestJSON is the wire contract of a job creation request.
type JobRequestJSON struct {
	Prompt     string `json:"prompt"`
	LogoStyle  string `json:"logoStyle"`
	SurpriseMe bool   `json:"surpriseMe"`
}

// JobCreatedJSON is returned once the backend accepted a job.
type JobCreatedJSON struct {
	JobID     string `json:"jobId"`
	Status    string `json:"status"`
	CreatedAt string `json:"createdAt"`
}

const jobRequestSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["prompt"],
  "properties": {
    "prompt": {"type": "string", "minLength": 1},
    "logoStyle": {"type": "string", "maxLength": 32},
    "surpriseMe": {"type": "boolean"}
  }
}`

var jobRequest = jsonschema.MustCompileString("job_request.json", jobRequestSchema)

// DefaultLogoStyle is applied when the request omits the style.
const DefaultLogoStyle = string(domain.StyleNoStyle)

// DecodeJobRequest validates raw against the request schema before decoding it.
func DecodeJobRequest(raw []byte) (JobRequestJSON, error) {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return JobRequestJSON{}, fmt.Errorf("decode job request: %w", err)
	}
	if err := jobRequest.Validate(doc); err != nil {
		return JobRequestJSON{}, fmt.Errorf("%w: %s", domain.ErrInvalidPrompt, schemaMessage(err))
	}
	var req JobRequestJSON
	if err := json.Unmarshal(raw, &req); err != nil {
		return JobRequestJSON{}, fmt.Errorf("decode job request: %w", err)
	}
	req.Normalize()
	return req, req.Validate()
}

// schemaMessage reduces a validation error to its first leaf cause, without
// the schema URL.
func schemaMessage(err error) string {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err.Error()
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	if ve.InstanceLocation == "" {
		return ve.Message
	}
	return ve.InstanceLocation + ": " + ve.Message
}

// Normalize trims the prompt and applies the default style.
func (r *JobRequestJSON) Normalize() {
	if r == nil {
		return
	}
	r.Prompt = strings.TrimSpace(r.Prompt)
	r.LogoStyle = strings.ToLower(strings.TrimSpace(r.LogoStyle))
	if r.LogoStyle == "" {
		r.LogoStyle = DefaultLogoStyle
	}
}

// Validate ensures the request satisfies the contract after normalization.
func (r JobRequestJSON) Validate() error {
	if r.Prompt == "" {
		return fmt.Errorf("%w: prompt is required", domain.ErrInvalidPrompt)
	}
	if n := len([]rune(r.Prompt)); n > domain.MaxPromptLength {
		return fmt.Errorf("%w: prompt has %d characters, max %d", domain.ErrInvalidPrompt, n, domain.MaxPromptLength)
	}
	if !domain.StyleKey(r.LogoStyle).Valid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidStyle, r.LogoStyle)
	}
	return nil
}

// NewJob converts the request into the domain creation fields.
func (r JobRequestJSON) NewJob() domain.NewJob {
	return domain.NewJob{
		Prompt:     r.Prompt,
		Style:      domain.StyleKey(r.LogoStyle),
		SurpriseMe: r.SurpriseMe,
	}
}
