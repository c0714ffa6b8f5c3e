package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"logoforge/internal/brand"
	"logoforge/internal/domain"
	"logoforge/internal/domain/jsoncfg"
	"logoforge/internal/providers/image"
	"logoforge/pkg/zip"
)

const maxJobRequestBytes = 16 << 10

// CreateJob accepts {prompt, logoStyle, surpriseMe}; status and createdAt are
// always assigned here.
func (a *App) CreateJob(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxJobRequestBytes))
	if err != nil {
		a.error(w, r, http.StatusBadRequest, "bad_request")
		return
	}
	req, err := jsoncfg.DecodeJobRequest(raw)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidStyle):
			a.error(w, r, http.StatusBadRequest, "invalid_style")
		case errors.Is(err, domain.ErrInvalidPrompt):
			a.error(w, r, http.StatusBadRequest, "invalid_prompt")
		default:
			a.error(w, r, http.StatusBadRequest, "bad_request")
		}
		return
	}

	job, err := a.Jobs.Create(r.Context(), req.NewJob())
	if err != nil {
		a.log(r).Error().Err(err).Msg("create job failed")
		a.error(w, r, http.StatusInternalServerError, "internal")
		return
	}
	a.log(r).Info().
		Str("job_id", job.ID).
		Str("logo_style", string(job.Style)).
		Bool("surprise_me", job.SurpriseMe).
		Msg("job created")

	w.Header().Set("Location", "/v1/jobs/"+job.ID)
	a.json(w, http.StatusCreated, jsoncfg.JobCreatedJSON{
		JobID:     job.ID,
		Status:    string(job.Status),
		CreatedAt: job.CreatedAt.UTC().Format(time.RFC3339Nano),
	})
}

// GetJob returns the current snapshot of a job.
func (a *App) GetJob(w http.ResponseWriter, r *http.Request) {
	job, ok := a.loadJob(w, r)
	if !ok {
		return
	}
	a.json(w, http.StatusOK, job.Snapshot())
}

type renderResponse struct {
	JobID         string          `json:"jobId"`
	Prompt        string          `json:"prompt"`
	StyleKey      domain.StyleKey `json:"styleKey"`
	ResultURL     string          `json:"resultUrl"`
	BrandName     string          `json:"brandName"`
	FontStyle     brand.FontStyle `json:"fontStyle"`
	FontFamily    string          `json:"fontFamily"`
	VisualVariant string          `json:"visualVariant"`
	AccentColor   string          `json:"accentColor"`
	ImageKey      string          `json:"imageKey"`
}

// RenderJob returns everything a result screen needs for a finished job.
func (a *App) RenderJob(w http.ResponseWriter, r *http.Request) {
	job, ok := a.loadFinishedJob(w, r)
	if !ok {
		return
	}
	a.json(w, http.StatusOK, newRenderResponse(job))
}

// BrandKit downloads a zip holding brand.json and a vector rendition of the
// logo.
func (a *App) BrandKit(w http.ResponseWriter, r *http.Request) {
	job, ok := a.loadFinishedJob(w, r)
	if !ok {
		return
	}
	render := newRenderResponse(job)
	meta, err := json.MarshalIndent(render, "", "  ")
	if err != nil {
		a.log(r).Error().Err(err).Str("job_id", job.ID).Msg("encode brand kit failed")
		a.error(w, r, http.StatusInternalServerError, "internal")
		return
	}
	archive, err := zip.ArchiveAssets([]zip.Asset{
		{Filename: "brand.json", Data: meta},
		{Filename: "logo.svg", Data: image.RenderSVG(brand.Derive(job.Prompt, job.Style))},
	}, job.UpdatedAt)
	if err != nil {
		a.log(r).Error().Err(err).Str("job_id", job.ID).Msg("build brand kit failed")
		a.error(w, r, http.StatusInternalServerError, "internal")
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="brand-kit-`+job.ID+`.zip"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(archive)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive)
}

func newRenderResponse(job *domain.Job) renderResponse {
	derived := brand.Derive(job.Prompt, job.Style)
	return renderResponse{
		JobID:         job.ID,
		Prompt:        job.Prompt,
		StyleKey:      derived.Style.Key,
		ResultURL:     job.ResultURL,
		BrandName:     derived.BrandName,
		FontStyle:     derived.FontStyle,
		FontFamily:    derived.FontStyle.Family(),
		VisualVariant: derived.Style.VisualVariant,
		AccentColor:   derived.Style.AccentColor,
		ImageKey:      derived.Style.ImageKey,
	}
}

func (a *App) loadFinishedJob(w http.ResponseWriter, r *http.Request) (*domain.Job, bool) {
	job, ok := a.loadJob(w, r)
	if !ok {
		return nil, false
	}
	if job.Status != domain.JobStatusDone || job.ResultURL == "" {
		a.error(w, r, http.StatusConflict, "job_not_done")
		return nil, false
	}
	return job, true
}

func (a *App) loadJob(w http.ResponseWriter, r *http.Request) (*domain.Job, bool) {
	jobID := chi.URLParam(r, "id")
	job, err := a.Jobs.Get(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, r, http.StatusNotFound, "not_found")
			return nil, false
		}
		a.log(r).Error().Err(err).Str("job_id", jobID).Msg("load job failed")
		a.error(w, r, http.StatusInternalServerError, "internal")
		return nil, false
	}
	return job, true
}
