package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"leadops_backend/internal/adapters"
	"leadops_backend/internal/adapters/fingerprint"
	"leadops_backend/internal/adapters/storage"
	"leadops_backend/internal/directory"
	"leadops_backend/internal/events"
	apphttp "leadops_backend/internal/http"
	"leadops_backend/internal/leads"
	"leadops_backend/internal/leads/ports"
	"leadops_backend/internal/orders"
	"leadops_backend/internal/scheduler"
	"leadops_backend/migrations"
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
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, migrations.FS)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

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
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// Shared validator instance for dependency injection
	val := validator.New()

	// Document storage for FTD identity documents (MinIO)
	var documents ports.DocumentStore
	if cfg.IsMinIOEnabled() {
		storageSvc, err := storage.NewMinIOService(cfg)
		if err != nil {
			log.Error("failed to initialize storage service", "error", err)
			panic("failed to initialize storage service: " + err.Error())
		}
		bucket := cfg.GetMinioBucketLeadDocuments()
		if err := withRetry(ctx, log, "ensure lead-documents bucket", 5, 2*time.Second, func() error {
			return storageSvc.EnsureBucketExists(ctx, bucket)
		}); err != nil {
			log.Error("failed to ensure storage bucket exists", "error", err, "bucket", bucket)
			panic("failed to ensure storage bucket exists: " + err.Error())
		}
		documents = adapters.NewLeadDocumentStore(storageSvc, bucket)
		log.Info("storage service initialized", "leadDocumentsBucket", bucket)
	} else {
		log.Warn("MinIO not configured; document uploads disabled")
	}

	// Fingerprint factory for browser profile provisioning
	var factory ports.FingerprintFactory
	if cfg.GetFingerprintAPIURL() != "" {
		factory = fingerprint.NewClient(cfg)
		log.Info("fingerprint factory initialized", "url", cfg.GetFingerprintAPIURL())
	} else {
		factory = fingerprint.NewNoopFactory()
		log.Warn("fingerprint API not configured; using local profile ids")
	}

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	directoryModule := directory.NewModule(pool, eventBus, val)

	leadsModule := leads.NewModule(pool, leads.Deps{
		Directory: directoryModule.Service(),
		Factory:   factory,
		Documents: documents,
	}, eventBus, val, log)

	ordersModule := orders.NewModule(pool, leadsModule.Fulfillment(), val)

	// Broker inventory changes schedule a wake sweep on the worker
	if cfg.GetRedisURL() != "" {
		sweepClient, err := scheduler.NewClient(cfg)
		if err != nil {
			log.Error("failed to initialize scheduler client", "error", err)
			panic("failed to initialize scheduler client: " + err.Error())
		}
		defer func() { _ = sweepClient.Close() }()

		dispatcher := scheduler.NewSweepDispatcher(sweepClient, log, 0)
		dispatcher.RegisterHandlers(eventBus)
	} else {
		log.Warn("REDIS_URL not configured; scheduled wake sweeps disabled")
	}

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			leadsModule,
			directoryModule,
			ordersModule,
		},
	}

	engine := apphttp.NewRouter(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
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
