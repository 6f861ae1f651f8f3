package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/helioshq/helios-webhooks/internal/adapter"
	"github.com/helioshq/helios-webhooks/internal/config"
	"github.com/helioshq/helios-webhooks/internal/logger"
	"github.com/helioshq/helios-webhooks/internal/messaging"
	"github.com/helioshq/helios-webhooks/internal/store"
	"github.com/helioshq/helios-webhooks/internal/sweeper"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadSweeperConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service": "sweeper",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting Sweeper")

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to database", zap.Error(err), zap.String("dsn", cfg.Database.DSN()))
	}

	// Configure connection pool
	if err := store.ConfigureConnectionPool(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime, cfg.Database.ConnMaxIdleTime); err != nil {
		logger.FatalCtx(ctx, "Failed to configure connection pool", zap.Error(err))
	}
	logger.InfoCtx(ctx, "Connected to database",
		zap.Int("max_open_conns", cfg.Database.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.Database.MaxIdleConns),
	)

	// Initialize store
	dataStore := store.NewPGStore(db)

	// Initialize adapters
	clock := adapter.NewClock()
	jsonAdapter := adapter.NewJSON()

	// Connect to NATS for dispatch job publishing
	publisher, err := messaging.NewPublisher(ctx, messaging.Config{
		URL:            cfg.NATS.URL,
		StreamName:     cfg.NATS.StreamName,
		Subject:        cfg.NATS.Subject,
		MaxReconnects:  cfg.NATS.MaxReconnects,
		ReconnectWait:  cfg.NATS.ReconnectWait,
		ConnectionName: cfg.NATS.ConnectionName,
	}, adapter.NewNatsJetStream(), jsonAdapter)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to create dispatch job publisher", zap.Error(err))
	}
	defer publisher.Close()
	logger.InfoCtx(ctx, "Connected to NATS", zap.String("url", cfg.NATS.URL))

	// Initialize retry sweeper
	retrySweeper := sweeper.NewRetrySweeper(&sweeper.RetrySweeperConfig{
		BatchSize:      cfg.RetrySweeper.BatchSize,
		WorkerPoolSize: cfg.RetrySweeper.Worker.PoolSize,
		SweepInterval:  cfg.RetrySweeper.SweepInterval,
	}, dataStore, publisher, clock)

	// Initialize stale processing sweeper
	staleSweeper := sweeper.NewStaleSweeper(&sweeper.StaleSweeperConfig{
		BatchSize:      cfg.StaleSweeper.BatchSize,
		WorkerPoolSize: cfg.StaleSweeper.Worker.PoolSize,
		SweepInterval:  cfg.StaleSweeper.SweepInterval,
		StaleAfter:     cfg.StaleSweeper.ProcessingTimeout,
	}, dataStore, clock)

	logger.InfoCtx(ctx, "Initialized sweepers (continuous mode)",
		zap.Duration("retry_sweep_interval", cfg.RetrySweeper.SweepInterval),
		zap.Duration("stale_sweep_interval", cfg.StaleSweeper.SweepInterval),
		zap.Duration("processing_timeout", cfg.StaleSweeper.ProcessingTimeout),
	)

	// Start the sweepers in goroutines
	errChan := make(chan error, 2)
	for _, s := range []sweeper.Sweeper{retrySweeper, staleSweeper} {
		go func(s sweeper.Sweeper) {
			if err := s.Start(ctx); err != nil {
				errChan <- fmt.Errorf("%s: %w", s.Name(), err)
			}
		}(s)
	}

	// Wait for interrupt signal or error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
	case err := <-errChan:
		logger.ErrorCtx(ctx, err)
	}

	// Cancel context to stop the sweepers
	cancel()

	// Give the sweepers time to shut down gracefully
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer shutdownCancel()

	if err := retrySweeper.Stop(shutdownCtx); err != nil {
		logger.ErrorCtx(shutdownCtx, err)
	}
	if err := staleSweeper.Stop(shutdownCtx); err != nil {
		logger.ErrorCtx(shutdownCtx, err)
	}

	logger.InfoCtx(shutdownCtx, "Sweeper stopped")
}
