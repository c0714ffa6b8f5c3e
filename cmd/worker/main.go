package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"logoforge/internal/infra"
	"logoforge/internal/jobstore"
	"logoforge/internal/providers/image"
	"logoforge/internal/storage"
	"logoforge/internal/worker"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, cfg.LogLevel, "worker")

	if cfg.JobStore != infra.JobStorePostgres {
		logger.Fatal().Msg("worker: requires DATABASE_URL; the memory store runs workers inside cmd/api")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := infra.NewDBPool(ctx, cfg, "logoforge-worker")
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: db connection failed")
	}
	defer pool.Close()

	runner := infra.NewSQLRunner(pool, logger)
	if err := infra.EnsureSchema(ctx, runner); err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to prepare schema")
	}

	fileStore, err := storage.NewFileStore(cfg.StoragePath, cfg.StorageBaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to configure storage")
	}
	gen, err := image.NewGenerator(cfg.Generator, fileStore)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to configure generator")
	}

	workers := worker.New(jobstore.NewPostgres(runner), gen, logger,
		worker.WithWorkers(cfg.WorkerCount),
		worker.WithDelay(cfg.WorkerMinDelay, cfg.WorkerMaxDelay),
		worker.WithSuccessRate(cfg.WorkerSuccessRate),
		worker.WithPollInterval(cfg.WorkerPollInterval),
	)
	if err := workers.Run(ctx); err != nil {
		logger.Fatal().Err(err).Msg("worker: stopped with error")
	}
	logger.Info().Msg("worker: stopped")
}
