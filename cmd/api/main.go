package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"logoforge/internal/domain"
	"logoforge/internal/eventbus"
	"logoforge/internal/http/handlers"
	"logoforge/internal/http/httpapi"
	"logoforge/internal/infra"
	"logoforge/internal/infra/geoip"
	"logoforge/internal/jobstore"
	"logoforge/internal/providers/image"
	"logoforge/internal/storage"
	"logoforge/internal/worker"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, cfg.LogLevel, "api")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fileStore, err := storage.NewFileStore(cfg.StoragePath, cfg.StorageBaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure storage")
	}

	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	}
	defer resolver.Close()

	bus := eventbus.New(logger)
	g, gctx := errgroup.WithContext(ctx)

	var jobs domain.JobRepository
	switch cfg.JobStore {
	case infra.JobStorePostgres:
		pool, err := infra.NewDBPool(ctx, cfg, "logoforge-api")
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect database")
		}
		defer pool.Close()

		runner := infra.NewSQLRunner(pool, logger)
		if err := infra.EnsureSchema(ctx, runner); err != nil {
			logger.Fatal().Err(err).Msg("failed to prepare schema")
		}
		store := jobstore.NewPostgres(runner)
		jobs = store

		listener := jobstore.NewListener(pool, store, bus, logger)
		g.Go(func() error { return ignoreCanceled(listener.Run(gctx)) })
		logger.Info().Msg("job store: postgres, run cmd/worker to process jobs")
	default:
		jobs = jobstore.NewMemory(bus)

		gen, err := image.NewGenerator(cfg.Generator, fileStore)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to configure generator")
		}
		pool := worker.New(jobs, gen, logger,
			worker.WithWorkers(cfg.WorkerCount),
			worker.WithDelay(cfg.WorkerMinDelay, cfg.WorkerMaxDelay),
			worker.WithSuccessRate(cfg.WorkerSuccessRate),
			worker.WithPollInterval(cfg.WorkerPollInterval),
		)
		g.Go(func() error { return pool.Run(gctx) })
		logger.Info().Int("workers", cfg.WorkerCount).Str("generator", cfg.Generator).Msg("job store: memory")
	}

	app := handlers.NewApp(jobs, bus, logger)
	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:         logger,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimit:      cfg.RateLimitPerMin,
		DefaultLocale:  cfg.DefaultLocale,
		CountryLookup:  resolver.Lookup(),
		StaticDir:      fileStore.BasePath(),
	})
	server := infra.NewHTTPServer(cfg, router)

	g.Go(func() error {
		logger.Info().Str("addr", server.Addr()).Msg("API listening")
		return server.Run(gctx)
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("server stopped with error")
		os.Exit(1)
	}
	logger.Info().Msg("server stopped")
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
