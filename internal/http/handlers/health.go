package handlers

import (
	"context"
	"net/http"
	"time"
)

const healthTimeout = 2 * time.Second

type pinger interface {
	Ping(ctx context.Context) error
}

type healthResponse struct {
	Status string `json:"status"`
	Store  string `json:"store"`
}

// Health reports whether the job store is reachable. Stores without a Ping
// method are always healthy.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	p, ok := a.Jobs.(pinger)
	if !ok {
		a.json(w, http.StatusOK, healthResponse{Status: "ok", Store: "ok"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()
	if err := p.Ping(ctx); err != nil {
		a.log(r).Warn().Err(err).Msg("health: job store unreachable")
		a.json(w, http.StatusServiceUnavailable, healthResponse{Status: "degraded", Store: "unreachable"})
		return
	}
	a.json(w, http.StatusOK, healthResponse{Status: "ok", Store: "ok"})
}
