package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"logoforge/internal/http/handlers"
	"logoforge/internal/middleware"
)

// Options configures the cross-cutting middleware of the API.
type Options struct {
	Logger         zerolog.Logger
	AllowedOrigins []string
	RateLimit      int
	DefaultLocale  string
	CountryLookup  middleware.CountryLookup
	// StaticDir serves generated files under /static when set.
	StaticDir string
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		middleware.Logger(opts.Logger),
		chimw.Recoverer,
		middleware.CORS(opts.AllowedOrigins),
		middleware.I18N(opts.DefaultLocale, opts.CountryLookup),
	)

	r.Get("/v1/healthz", app.Health)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/styles", app.Styles)
		r.Get("/prompts/surprise", app.SurprisePrompt)

		r.Route("/jobs", func(r chi.Router) {
			r.With(middleware.RateLimit(opts.RateLimit, time.Minute)).Post("/", app.CreateJob)
			r.Get("/{id}", app.GetJob)
			r.Get("/{id}/events", app.JobEvents)
			r.Get("/{id}/render", app.RenderJob)
			r.Get("/{id}/kit", app.BrandKit)
		})
	})

	if opts.StaticDir != "" {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(opts.StaticDir))))
	}

	return r
}
