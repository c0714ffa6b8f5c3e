package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"logoforge/internal/domain"
)

// SnapshotEvent is the SSE event name carrying a job snapshot.
const SnapshotEvent = "snapshot"

// JobEvents streams job snapshots as Server-Sent Events: the current snapshot
// first, then every change, closing after the first terminal snapshot.
func (a *App) JobEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		a.error(w, r, http.StatusInternalServerError, "streaming_unsupported")
		return
	}

	// The job is re-read after subscribing so no mutation falls between the two.
	job, ok := a.loadJob(w, r)
	if !ok {
		return
	}
	events, unsubscribe := a.Bus.Subscribe(job.ID)
	defer unsubscribe()
	if fresh, err := a.Jobs.Get(r.Context(), job.ID); err == nil {
		job = fresh
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	log := a.log(r).With().Str("job_id", job.ID).Logger()
	stream := &snapshotStream{w: w, flusher: flusher}
	if err := stream.send(job.Snapshot()); err != nil || job.Status.Terminal() {
		return
	}

	interval := a.ResyncInterval
	if interval <= 0 {
		interval = defaultResyncInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	ctx := r.Context()
	for {
		var snap domain.Snapshot
		select {
		case <-ctx.Done():
			return
		case s, open := <-events:
			if !open {
				return
			}
			snap = s
		case <-ticker.C:
			current, err := a.Jobs.Get(ctx, job.ID)
			if err != nil {
				log.Warn().Err(err).Msg("event stream: resync failed")
				continue
			}
			snap = current.Snapshot()
		}
		if err := stream.send(snap); err != nil {
			log.Debug().Err(err).Msg("event stream: client gone")
			return
		}
		if snap.Status.Terminal() {
			return
		}
	}
}

type snapshotStream struct {
	w       http.ResponseWriter
	flusher http.Flusher
	last    domain.Snapshot
	sent    bool
}

// send writes snap unless it repeats the previous event.
func (s *snapshotStream) send(snap domain.Snapshot) error {
	if s.sent && snap == s.last {
		return nil
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", SnapshotEvent, data); err != nil {
		return err
	}
	s.flusher.Flush()
	s.last, s.sent = snap, true
	return nil
}
