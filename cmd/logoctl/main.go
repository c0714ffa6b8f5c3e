// Command logoctl submits a logo prompt to the API and follows the job until
// it settles.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"logoforge/internal/client"
	"logoforge/internal/infra"
	"logoforge/internal/lifecycle"
)

type options struct {
	apiURL   string
	prompt   string
	style    string
	surprise bool
	locale   string
	retries  int
	timeout  time.Duration
	kitPath  string
}

func main() {
	_ = godotenv.Load()

	var opts options
	flag.StringVar(&opts.apiURL, "api", envOr("LOGOFORGE_API_URL", "http://localhost:8080"), "API base URL")
	flag.StringVar(&opts.prompt, "prompt", "", "logo description")
	flag.StringVar(&opts.style, "style", "no-style", "logo style: no-style, monogram, abstract, mascot")
	flag.BoolVar(&opts.surprise, "surprise", false, "use a random canned prompt")
	flag.StringVar(&opts.locale, "locale", envOr("DEFAULT_LOCALE", "en"), "status message locale (en, id)")
	flag.IntVar(&opts.retries, "retry", 0, "resubmit up to n times after a failure")
	flag.DurationVar(&opts.timeout, "timeout", 5*time.Minute, "give up after this long")
	flag.StringVar(&opts.kitPath, "kit", "", "save the brand kit zip to this path")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "logoctl:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, out io.Writer) error {
	logger := infra.NewLogger(envOr("APP_ENV", "production"), envOr("LOG_LEVEL", "warn"), "logoctl")
	api, err := client.New(opts.apiURL, client.WithLocale(opts.locale), client.WithLogger(logger))
	if err != nil {
		return err
	}

	if opts.surprise {
		pick, err := api.Surprise(ctx)
		if err != nil {
			return fmt.Errorf("surprise prompt: %w", err)
		}
		opts.prompt, opts.style = pick.Prompt, string(pick.Style)
		fmt.Fprintf(out, "prompt: %s (%s)\n", opts.prompt, opts.style)
	}

	ctrl := lifecycle.New(api, api,
		lifecycle.WithLogger(logger),
		lifecycle.WithObserver(func(s lifecycle.Status) {
			if chip, ok := s.Chip(opts.locale); ok && s.JobID != "" {
				fmt.Fprintf(out, "[%s] %s %s\n", s.JobID, chip.Title, chip.Subtitle)
			}
		}),
	)
	defer ctrl.Close()

	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	for attempt := 0; ; attempt++ {
		status, err := submitAndWait(ctx, ctrl, opts)
		if err != nil {
			return err
		}
		if status.State == lifecycle.StateDone {
			break
		}
		if attempt >= opts.retries {
			return status.Err
		}
		fmt.Fprintf(out, "retrying after: %v\n", status.Err)
		if err := ctrl.Retry(); err != nil {
			return err
		}
	}

	params, err := ctrl.NavigateToResult()
	if err != nil {
		return err
	}
	if opts.kitPath != "" {
		kit, err := api.BrandKit(ctx, params.JobID)
		if err != nil {
			return err
		}
		if err := os.WriteFile(opts.kitPath, kit, 0o644); err != nil {
			return fmt.Errorf("save brand kit: %w", err)
		}
		fmt.Fprintf(out, "brand kit: %s\n", opts.kitPath)
	}

	logo := params.Logo()
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{
		"jobId":         params.JobID,
		"prompt":        params.Prompt,
		"styleKey":      params.StyleKey,
		"resultUrl":     params.ResultURL,
		"brandName":     logo.BrandName,
		"fontStyle":     logo.FontStyle,
		"fontFamily":    logo.FontStyle.Family(),
		"visualVariant": logo.Style.VisualVariant,
		"accentColor":   logo.Style.AccentColor,
		"imageKey":      logo.Style.ImageKey,
	})
}

// submitAndWait returns the settled status. Job failures are reported through
// the status, anything else as an error.
func submitAndWait(ctx context.Context, ctrl *lifecycle.Controller, opts options) (lifecycle.Status, error) {
	err := ctrl.Submit(ctx, opts.prompt, opts.style, opts.surprise)
	var (
		subErr    *lifecycle.SubmissionError
		streamErr *lifecycle.StreamError
	)
	if err != nil && !errors.As(err, &subErr) && !errors.As(err, &streamErr) {
		return lifecycle.Status{}, err
	}
	return ctrl.Wait(ctx)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
