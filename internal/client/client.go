// Package client talks to the logo job API over HTTP. It implements the job
// creation and status subscription contracts of the lifecycle controller.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"logoforge/internal/brand"
	"logoforge/internal/domain"
	"logoforge/internal/domain/jsoncfg"
)

// APIError is a non-success response from the API.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("api: status %d", e.StatusCode)
	}
	return fmt.Sprintf("api: status %d: %s: %s", e.StatusCode, e.Code, e.Message)
}

type Client struct {
	baseURL    string
	http       *http.Client
	stream     *http.Client
	logger     zerolog.Logger
	locale     string
	maxRetries int
	retryDelay time.Duration
}

type Option func(*Client)

// WithHTTPClient replaces the client used for request/response calls.
// Event streams always use a client without an overall timeout.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithLocale sets the X-Locale header sent with every request.
func WithLocale(locale string) Option {
	return func(c *Client) { c.locale = strings.TrimSpace(locale) }
}

// WithReconnect bounds how often a broken event stream is reopened before
// the watcher reports a stream error.
func WithReconnect(maxRetries int, delay time.Duration) Option {
	return func(c *Client) {
		if maxRetries >= 0 {
			c.maxRetries = maxRetries
		}
		if delay >= 0 {
			c.retryDelay = delay
		}
	}
}

func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("client: invalid base url %q", baseURL)
	}
	c := &Client{
		baseURL:    strings.TrimRight(u.String(), "/"),
		http:       &http.Client{Timeout: 30 * time.Second},
		stream:     &http.Client{},
		logger:     zerolog.Nop(),
		maxRetries: 3,
		retryDelay: time.Second,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// CreateJob posts a job and returns its id.
func (c *Client) CreateJob(ctx context.Context, req jsoncfg.JobRequestJSON) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encode job request: %w", err)
	}
	var created jsoncfg.JobCreatedJSON
	if err := c.do(ctx, http.MethodPost, "/v1/jobs", body, http.StatusCreated, &created); err != nil {
		return "", err
	}
	if created.JobID == "" {
		return "", errors.New("api: response without job id")
	}
	return created.JobID, nil
}

// GetJob fetches the current snapshot of a job.
func (c *Client) GetJob(ctx context.Context, jobID string) (domain.Snapshot, error) {
	var snap domain.Snapshot
	err := c.do(ctx, http.MethodGet, "/v1/jobs/"+url.PathEscape(jobID), nil, http.StatusOK, &snap)
	return snap, err
}

// Surprise fetches a random canned prompt.
func (c *Client) Surprise(ctx context.Context) (brand.SurprisePrompt, error) {
	var p brand.SurprisePrompt
	err := c.do(ctx, http.MethodGet, "/v1/prompts/surprise", nil, http.StatusOK, &p)
	return p, err
}

const maxKitBytes = 8 << 20

// BrandKit downloads the zip bundle of a finished job.
func (c *Client) BrandKit(ctx context.Context, jobID string) ([]byte, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/v1/jobs/"+url.PathEscape(jobID)+"/kit", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download brand kit: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, decodeAPIError(resp)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxKitBytes+1))
	if err != nil {
		return nil, fmt.Errorf("download brand kit: %w", err)
	}
	if len(data) > maxKitBytes {
		return nil, errors.New("download brand kit: archive too large")
	}
	return data, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body []byte) (*http.Request, error) {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.locale != "" {
		req.Header.Set("X-Locale", c.locale)
	}
	return req, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, want int, out any) error {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != want {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body); err == nil {
		apiErr.Code = body.Error.Code
		apiErr.Message = body.Error.Message
	}
	return apiErr
}
