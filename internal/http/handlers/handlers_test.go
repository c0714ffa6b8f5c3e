package handlers

import (
	"archive/zip"
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"logoforge/internal/brand"
	"logoforge/internal/domain"
	"logoforge/internal/domain/jsoncfg"
	"logoforge/internal/eventbus"
	"logoforge/internal/jobstore"
	"logoforge/internal/middleware"
)

func newTestServer(t *testing.T) (*httptest.Server, *jobstore.Memory, *eventbus.Bus) {
	t.Helper()
	bus := eventbus.New(zerolog.Nop())
	store := jobstore.NewMemory(bus)
	app := NewApp(store, bus, zerolog.Nop())
	app.ResyncInterval = 50 * time.Millisecond

	r := chi.NewRouter()
	r.Use(middleware.I18N("en", nil))
	r.Get("/v1/styles", app.Styles)
	r.Get("/v1/prompts/surprise", app.SurprisePrompt)
	r.Post("/v1/jobs", app.CreateJob)
	r.Get("/v1/jobs/{id}", app.GetJob)
	r.Get("/v1/jobs/{id}/events", app.JobEvents)
	r.Get("/v1/jobs/{id}/render", app.RenderJob)
	r.Get("/v1/jobs/{id}/kit", app.BrandKit)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, store, bus
}

func postJob(t *testing.T, srv *httptest.Server, body string, header http.Header) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/v1/jobs", strings.NewReader(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header[k] = v
	}
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("post job: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestCreateJob(t *testing.T) {
	srv, store, _ := newTestServer(t)

	resp := postJob(t, srv, `{"prompt":"  Logo for Stellar Innovations  ","logoStyle":"monogram","surpriseMe":true,"status":"done"}`, nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var created jsoncfg.JobCreatedJSON
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Status != "processing" || created.JobID == "" || created.CreatedAt == "" {
		t.Fatalf("unexpected response: %+v", created)
	}

	job, err := store.Get(context.Background(), created.JobID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if job.Prompt != "Logo for Stellar Innovations" || job.Style != domain.StyleMonogram || !job.SurpriseMe {
		t.Fatalf("stored job = %+v", job)
	}
	if job.Status != domain.JobStatusProcessing {
		t.Fatalf("client supplied status must be ignored, got %s", job.Status)
	}
}

func TestCreateJobValidationLocalized(t *testing.T) {
	srv, _, _ := newTestServer(t)

	tests := []struct {
		name     string
		body     string
		locale   string
		wantCode string
		wantMsg  string
	}{
		{name: "empty prompt en", body: `{"prompt":""}`, locale: "en", wantCode: "invalid_prompt", wantMsg: messages["en"]["invalid_prompt"]},
		{name: "empty prompt id", body: `{"prompt":"  "}`, locale: "id", wantCode: "invalid_prompt", wantMsg: messages["id"]["invalid_prompt"]},
		{name: "bad style", body: `{"prompt":"x","logoStyle":"retro"}`, locale: "en", wantCode: "invalid_style", wantMsg: messages["en"]["invalid_style"]},
		{name: "malformed", body: `{`, locale: "en", wantCode: "bad_request", wantMsg: messages["en"]["bad_request"]},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp := postJob(t, srv, tc.body, http.Header{"X-Locale": {tc.locale}})
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("status = %d", resp.StatusCode)
			}
			var body errorBody
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Error.Code != tc.wantCode || body.Error.Message != tc.wantMsg {
				t.Fatalf("error = %+v", body.Error)
			}
		})
	}
}

func TestGetJobNotFound(t *testing.T) {
	srv, _, _ := newTestServer(t)
	resp, err := srv.Client().Get(srv.URL + "/v1/jobs/missing")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestRenderJob(t *testing.T) {
	srv, store, _ := newTestServer(t)
	ctx := context.Background()
	job, _ := store.Create(ctx, domain.NewJob{Prompt: `Make a logo for "Acme Corp" in blue`, Style: domain.StyleAbstract})

	resp, err := srv.Client().Get(srv.URL + "/v1/jobs/" + job.ID + "/render")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("render before done status = %d, want 409", resp.StatusCode)
	}

	if err := store.Complete(ctx, job.ID, "https://cdn.test/acme.png"); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	resp, err = srv.Client().Get(srv.URL + "/v1/jobs/" + job.ID + "/render")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	var got renderResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := renderResponse{
		JobID:         job.ID,
		Prompt:        job.Prompt,
		StyleKey:      domain.StyleAbstract,
		ResultURL:     "https://cdn.test/acme.png",
		BrandName:     "Acme Corp",
		FontStyle:     "semibold",
		FontFamily:    "Manrope-SemiBold",
		VisualVariant: "Abstract",
		AccentColor:   "#E94E77",
		ImageKey:      "image2",
	}
	if got != want {
		t.Fatalf("render = %+v\nwant %+v", got, want)
	}
}

func TestBrandKit(t *testing.T) {
	srv, store, _ := newTestServer(t)
	ctx := context.Background()
	job, _ := store.Create(ctx, domain.NewJob{Prompt: "Nova logo, serif", Style: domain.StyleMonogram})

	resp, err := srv.Client().Get(srv.URL + "/v1/jobs/" + job.ID + "/kit")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("kit before done status = %d, want 409", resp.StatusCode)
	}

	if err := store.Complete(ctx, job.ID, "https://cdn.test/nova.png"); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	resp, err = srv.Client().Get(srv.URL + "/v1/jobs/" + job.ID + "/kit")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("kit status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/zip" {
		t.Fatalf("content type = %q", ct)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	files := map[string][]byte{}
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", f.Name, err)
		}
		data, _ := io.ReadAll(rc)
		rc.Close()
		files[f.Name] = data
	}
	var meta renderResponse
	if err := json.Unmarshal(files["brand.json"], &meta); err != nil {
		t.Fatalf("decode brand.json: %v", err)
	}
	if meta.BrandName != "Nova" || meta.FontStyle != brand.FontSerifBold || meta.ImageKey != "image1" {
		t.Fatalf("brand.json = %+v", meta)
	}
	if !strings.Contains(string(files["logo.svg"]), "<svg") {
		t.Fatalf("logo.svg = %q", files["logo.svg"])
	}
}

func readEvents(t *testing.T, resp *http.Response) []domain.Snapshot {
	t.Helper()
	var out []domain.Snapshot
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		data, ok := strings.CutPrefix(line, "data: ")
		if !ok {
			continue
		}
		var snap domain.Snapshot
		if err := json.Unmarshal([]byte(data), &snap); err != nil {
			t.Fatalf("decode event %q: %v", data, err)
		}
		out = append(out, snap)
	}
	return out
}

func TestJobEventsStreamsUntilTerminal(t *testing.T) {
	srv, store, bus := newTestServer(t)
	ctx := context.Background()
	job, _ := store.Create(ctx, domain.NewJob{Prompt: "Nova logo"})

	resp, err := srv.Client().Get(srv.URL + "/v1/jobs/" + job.ID + "/events")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("Content-Type = %q", ct)
	}

	go func() {
		deadline := time.Now().Add(2 * time.Second)
		for bus.Subscribers(job.ID) == 0 && time.Now().Before(deadline) {
			time.Sleep(5 * time.Millisecond)
		}
		_ = store.Complete(ctx, job.ID, "https://cdn.test/nova.png")
	}()

	events := readEvents(t, resp)
	if len(events) < 2 {
		t.Fatalf("events = %+v", events)
	}
	if events[0].Status != domain.JobStatusProcessing {
		t.Fatalf("first event = %+v", events[0])
	}
	last := events[len(events)-1]
	if last.Status != domain.JobStatusDone || last.ResultURL != "https://cdn.test/nova.png" {
		t.Fatalf("last event = %+v", last)
	}
}

func TestJobEventsTerminalJobClosesImmediately(t *testing.T) {
	srv, store, _ := newTestServer(t)
	ctx := context.Background()
	job, _ := store.Create(ctx, domain.NewJob{Prompt: "Nova logo"})
	_ = store.Fail(ctx, job.ID, "Random mock failure for testing")

	resp, err := srv.Client().Get(srv.URL + "/v1/jobs/" + job.ID + "/events")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	events := readEvents(t, resp)
	if len(events) != 1 || events[0].Status != domain.JobStatusFailed || events[0].ErrorMessage == "" {
		t.Fatalf("events = %+v", events)
	}
}

func TestStylesAndSurprise(t *testing.T) {
	srv, _, _ := newTestServer(t)

	resp, err := srv.Client().Get(srv.URL + "/v1/styles")
	if err != nil {
		t.Fatalf("get styles: %v", err)
	}
	defer resp.Body.Close()
	var styles struct {
		Styles []struct {
			Key string `json:"key"`
		} `json:"styles"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&styles); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(styles.Styles) != len(domain.StyleKeys) {
		t.Fatalf("styles = %+v", styles)
	}

	resp2, err := srv.Client().Get(srv.URL + "/v1/prompts/surprise")
	if err != nil {
		t.Fatalf("get surprise: %v", err)
	}
	defer resp2.Body.Close()
	var surprise struct {
		Prompt    string `json:"prompt"`
		LogoStyle string `json:"logoStyle"`
	}
	if err := json.NewDecoder(resp2.Body).Decode(&surprise); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if surprise.Prompt == "" || !domain.StyleKey(surprise.LogoStyle).Valid() {
		t.Fatalf("surprise = %+v", surprise)
	}
}

type unreachableStore struct {
	*jobstore.Memory
}

func (unreachableStore) Ping(context.Context) error {
	return errors.New("connection refused")
}

func TestHealth(t *testing.T) {
	bus := eventbus.New(zerolog.Nop())
	memory := jobstore.NewMemory(bus)

	cases := []struct {
		name string
		repo domain.JobRepository
		code int
		want healthResponse
	}{
		{name: "memory", repo: memory, code: http.StatusOK, want: healthResponse{Status: "ok", Store: "ok"}},
		{name: "store down", repo: unreachableStore{memory}, code: http.StatusServiceUnavailable, want: healthResponse{Status: "degraded", Store: "unreachable"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := NewApp(tc.repo, bus, zerolog.Nop())
			rec := httptest.NewRecorder()
			app.Health(rec, httptest.NewRequest(http.MethodGet, "/v1/healthz", nil))
			if rec.Code != tc.code {
				t.Fatalf("status = %d, want %d", rec.Code, tc.code)
			}
			var got healthResponse
			if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got != tc.want {
				t.Fatalf("body = %+v, want %+v", got, tc.want)
			}
		})
	}
}
