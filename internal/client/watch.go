package client

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"logoforge/internal/domain"
	"logoforge/internal/lifecycle"
)

// errStreamEnded is reported when the server closed the stream before a
// terminal snapshot.
var errStreamEnded = errors.New("event stream ended before a terminal snapshot")

// Stream is an open job status subscription.
type Stream struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Close stops the stream and waits for its goroutine to exit.
func (s *Stream) Close() error {
	s.cancel()
	<-s.done
	return nil
}

// Watch opens the job's event stream. The first connection is made before
// Watch returns so an unknown job is reported directly. Broken streams are
// reopened; fn then receives the current snapshot again.
func (c *Client) Watch(ctx context.Context, jobID string, fn lifecycle.SnapshotFunc) (lifecycle.Subscription, error) {
	ctx, cancel := context.WithCancel(ctx)
	body, err := c.openStream(ctx, jobID)
	if err != nil {
		cancel()
		return nil, err
	}
	s := &Stream{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(s.done)
		c.pump(ctx, jobID, body, fn)
	}()
	return s, nil
}

func (c *Client) openStream(ctx context.Context, jobID string) (io.ReadCloser, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/v1/jobs/"+url.PathEscape(jobID)+"/events", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")
	resp, err := c.stream.Do(req)
	if err != nil {
		return nil, fmt.Errorf("open event stream: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, decodeAPIError(resp)
	}
	return resp.Body, nil
}

func (c *Client) pump(ctx context.Context, jobID string, body io.ReadCloser, fn lifecycle.SnapshotFunc) {
	log := c.logger.With().Str("job_id", jobID).Logger()
	attempts := 0
	for {
		terminal, err := readSnapshots(body, fn)
		body.Close()
		if terminal || ctx.Err() != nil {
			return
		}
		if err == nil {
			err = errStreamEnded
		}
		var apiErr *APIError
		for {
			if attempts >= c.maxRetries || errors.As(err, &apiErr) {
				fn(domain.Snapshot{}, err)
				return
			}
			attempts++
			log.Warn().Err(err).Int("attempt", attempts).Msg("client: reconnecting event stream")
			select {
			case <-ctx.Done():
				return
			case <-time.After(c.retryDelay):
			}
			body, err = c.openStream(ctx, jobID)
			if ctx.Err() != nil {
				if body != nil {
					body.Close()
				}
				return
			}
			if err == nil {
				break
			}
		}
	}
}

// readSnapshots parses Server-Sent Events from r and hands every snapshot to
// fn. It reports whether a terminal snapshot was seen.
func readSnapshots(r io.Reader, fn lifecycle.SnapshotFunc) (bool, error) {
	scanner := bufio.NewScanner(r)
	var (
		event string
		data  strings.Builder
	)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			if data.Len() > 0 && (event == "" || event == "snapshot") {
				var snap domain.Snapshot
				if err := json.Unmarshal([]byte(data.String()), &snap); err != nil {
					return false, fmt.Errorf("decode snapshot: %w", err)
				}
				fn(snap, nil)
				if snap.Status.Terminal() {
					return true, nil
				}
			}
			event = ""
			data.Reset()
		case strings.HasPrefix(line, ":"):
			// keep-alive comment
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}
	}
	return false, scanner.Err()
}

var (
	_ lifecycle.JobCreator = (*Client)(nil)
	_ lifecycle.JobWatcher = (*Client)(nil)
)
