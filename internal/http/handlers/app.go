package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"logoforge/internal/domain"
	"logoforge/internal/eventbus"
	"logoforge/internal/middleware"
)

const defaultResyncInterval = 15 * time.Second

// App carries the dependencies shared by the HTTP handlers.
type App struct {
	Jobs   domain.JobRepository
	Bus    *eventbus.Bus
	Logger zerolog.Logger
	// ResyncInterval bounds how long an event stream can miss a dropped
	// publication before it re-reads the job.
	ResyncInterval time.Duration
}

func NewApp(jobs domain.JobRepository, bus *eventbus.Bus, logger zerolog.Logger) *App {
	return &App{Jobs: jobs, Bus: bus, Logger: logger, ResyncInterval: defaultResyncInterval}
}

// log returns the request-scoped logger set by the access log middleware,
// falling back to the app logger.
func (a *App) log(r *http.Request) *zerolog.Logger {
	if l := zerolog.Ctx(r.Context()); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &a.Logger
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// error writes a JSON error with the message localised for the request.
func (a *App) error(w http.ResponseWriter, r *http.Request, code int, errCode string) {
	a.json(w, code, errorBody{Error: errorDetail{
		Code:    errCode,
		Message: localizedMessage(middleware.LocaleFromContext(r.Context()), errCode),
	}})
}
