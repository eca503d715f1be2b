// Package cli provides common initialization utilities for the pocketpal
// commands: logging, configuration, the ledger stack and shutdown handling.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"pocketpal/internal/amqp"
	"pocketpal/internal/cache"
	"pocketpal/internal/config"
	"pocketpal/internal/log"
	"pocketpal/internal/ports"
	"pocketpal/internal/services"
	"pocketpal/internal/storage"
)

// SetupLogger builds the process logger from the configured level and
// format and installs it as the slog default.
func SetupLogger(cfg *config.Config, out io.Writer) *log.Logger {
	if out == nil {
		out = os.Stderr
	}
	logger := log.New(log.Config{
		Level:     log.ParseLevel(cfg.LogLevel),
		Format:    cfg.LogFormat,
		Component: log.ComponentCLI,
		Output:    out,
	})
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration from the environment and
// validates it. A non-empty dbPath overrides POCKETPAL_DB_PATH.
func LoadAndValidateConfig(dbPath string) (*config.Config, error) {
	cfg := config.Load()
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Ledger bundles the opened store with the services built on it.
type Ledger struct {
	Store    *storage.Store
	Registry *services.CategoryRegistry
	Service  *services.LedgerService
	Reports  *services.ReportService
	Location *time.Location

	// Cache is nil when REPORT_CACHE_SIZE is 0.
	Cache *cache.RangeCache

	cacheManager     *cache.Manager
	unsubscribeCache func()
}

// OpenLedger opens the store at cfg.DBPath, migrates it to the latest
// schema and seeds the default categories on first use.
func OpenLedger(ctx context.Context, cfg *config.Config, logger *log.Logger) (*Ledger, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	store, err := storage.Open(ctx, cfg.DBPath, storage.LatestSchemaVersion)
	if err != nil {
		return nil, fmt.Errorf("open ledger at %s: %w", cfg.DBPath, err)
	}

	registry := services.NewCategoryRegistry(store)
	seeded, err := registry.EnsureSeeded(ctx)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("seed categories: %w", err)
	}

	ledger := services.NewLedgerService(store, registry, services.SystemClock(loc))
	logger.InfoContext(ctx, "Ledger opened",
		"path", cfg.DBPath,
		"schema_version", store.SchemaVersion(),
		"seeded_categories", seeded,
		"timezone", loc.String())

	l := &Ledger{
		Store:    store,
		Registry: registry,
		Service:  ledger,
		Location: loc,
	}

	var reader ports.TransactionReader = ledger
	if cfg.ReportCacheSize > 0 {
		l.Cache = cache.NewRangeCache(ledger, cfg.ReportCacheSize, cfg.ReportCacheTTL)
		l.unsubscribeCache = ledger.Subscribe(l.Cache.Invalidate)
		l.cacheManager = cache.NewManager()
		l.cacheManager.Register(l.Cache)
		l.cacheManager.StartCleanup(cfg.ReportCacheTTL)
		reader = l.Cache
	}
	l.Reports = services.NewReportService(reader, cfg.RecentLimit)

	return l, nil
}

// Close stops the report cache and closes the store.
func (l *Ledger) Close() error {
	if l.cacheManager != nil {
		l.cacheManager.Stop()
	}
	if l.unsubscribeCache != nil {
		l.unsubscribeCache()
	}
	return l.Service.Close()
}

// StartRelay connects to AMQP and forwards the ledger's change signals.
// It returns a stop function that drains the queue and closes the
// connection. When the relay is disabled stop is a no-op.
func StartRelay(ctx context.Context, cfg *config.Config, ledger *Ledger, logger *log.Logger) (stop func(), err error) {
	if !cfg.RelayEnabled() {
		return func() {}, nil
	}

	client, err := amqp.NewClientWithRetry(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, 5)
	if err != nil {
		return nil, fmt.Errorf("start relay: %w", err)
	}

	relay := amqp.NewRelay(client, cfg.RelayBuffer)
	go relay.Run(context.WithoutCancel(ctx))
	unsubscribe := ledger.Service.Subscribe(relay.Handle)

	logger.InfoContext(ctx, "AMQP relay started",
		"exchange", cfg.AMQPExchange,
		"queue", cfg.AMQPQueue,
		"buffer", cfg.RelayBuffer)

	return func() {
		unsubscribe()
		relay.Close()
		if err := client.Close(); err != nil {
			logger.Warn("AMQP close error", log.FieldError, err)
		}
		logger.Info("AMQP relay stopped",
			"sent", relay.Sent(),
			"dropped", relay.Dropped())
	}, nil
}

// GracefulShutdown sets up signal handling for graceful shutdown.
// Returns a context that will be cancelled on shutdown signals,
// and a channel that signals when shutdown is complete.
func GracefulShutdown(logger *log.Logger, timeout time.Duration, cleanup func(context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		cancel()
		if cleanup != nil {
			cleanup(shutdownCtx)
		}

		if shutdownCtx.Err() != nil {
			logger.Warn("Shutdown timeout reached")
		} else {
			logger.Info("Shutdown complete")
		}
		close(done)
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
