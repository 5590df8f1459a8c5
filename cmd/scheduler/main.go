package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"leadops_backend/internal/adapters/fingerprint"
	"leadops_backend/internal/directory"
	"leadops_backend/internal/events"
	"leadops_backend/internal/leads"
	"leadops_backend/internal/scheduler"
	"leadops_backend/platform/config"
	"leadops_backend/platform/db"
	"leadops_backend/platform/logger"
	"leadops_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	eventBus := events.NewInMemoryBus(log)
	val := validator.New()

	// Worker-side wiring: the sweep needs the broker directory but no HTTP
	// handlers, document storage, or real fingerprint factory.
	directoryModule := directory.NewModule(pool, eventBus, val)
	leadsModule := leads.NewModule(pool, leads.Deps{
		Directory: directoryModule.Service(),
		Factory:   fingerprint.NewNoopFactory(),
	}, eventBus, val, log)

	sweepClient, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize scheduler client", "error", err)
		panic("failed to initialize scheduler client: " + err.Error())
	}
	defer func() { _ = sweepClient.Close() }()

	sweepInterval := getDurationEnv("AVAILABILITY_SWEEP_INTERVAL", time.Hour)
	dispatcher := scheduler.NewSweepDispatcher(sweepClient, log, sweepInterval)
	dispatcher.RegisterHandlers(eventBus)
	go dispatcher.Run(ctx)

	worker, err := scheduler.NewWorker(cfg, leadsModule.Availability(), log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	worker.Run(ctx)
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}

	return parsed
}
