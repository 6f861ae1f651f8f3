package sweeper

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"

	"github.com/helioshq/helios-webhooks/internal/adapter"
	"github.com/helioshq/helios-webhooks/internal/logger"
	"github.com/helioshq/helios-webhooks/internal/messaging"
	"github.com/helioshq/helios-webhooks/internal/store"
)

// RetrySweeperConfig holds configuration for the retry sweeper
type RetrySweeperConfig struct {
	BatchSize      int           // Events to enqueue per cycle
	WorkerPoolSize int           // Concurrent publishers
	SweepInterval  time.Duration // Time to sleep between sweep cycles
}

// retrySweeper implements the Sweeper interface for backoff retry scheduling.
// It scans for FAILED events whose next_retry_at deadline has passed and
// enqueues a dispatch job for each one.
type retrySweeper struct {
	config    *RetrySweeperConfig
	store     store.Store
	publisher messaging.Publisher
	pool      pond.Pool
	clock     adapter.Clock
	running   atomic.Bool
	stopChan  chan struct{}
	stoppedCh chan struct{}
}

// NewRetrySweeper creates a new retry sweeper
func NewRetrySweeper(
	config *RetrySweeperConfig,
	st store.Store,
	publisher messaging.Publisher,
	clock adapter.Clock,
) Sweeper {
	return &retrySweeper{
		config:    config,
		store:     st,
		publisher: publisher,
		clock:     clock,
		stopChan:  make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

// Name returns the sweeper's name
func (s *retrySweeper) Name() string {
	return "retry-sweeper"
}

// Start begins the sweeper's main loop
func (s *retrySweeper) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return fmt.Errorf("sweeper already running")
	}
	defer func() {
		s.running.Store(false)
		close(s.stoppedCh) // Signal that we've stopped
	}()

	logger.InfoCtx(ctx, "Starting retry sweeper",
		zap.Int("batch_size", s.config.BatchSize),
		zap.Int("worker_pool_size", s.config.WorkerPoolSize),
		zap.Duration("sweep_interval", s.config.SweepInterval),
	)

	// Create worker pool
	s.pool = pond.NewPool(
		s.config.WorkerPoolSize,
		pond.WithQueueSize(s.config.BatchSize),
		pond.WithContext(ctx),
	)

	// Continuous loop - stops when context is canceled or stop is requested
	for {
		select {
		case <-ctx.Done():
			logger.InfoCtx(ctx, "Retry sweeper stopping due to context cancellation", zap.Error(ctx.Err()))
			s.cleanup()
			return nil
		case <-s.stopChan:
			logger.InfoCtx(ctx, "Retry sweeper stop requested")
			s.cleanup()
			return nil
		default:
			if err := s.runSweepCycle(ctx); err != nil {
				if !errors.Is(err, context.Canceled) {
					logger.ErrorCtx(ctx, err)
				}
			}
		}
	}
}

// cleanup stops the worker pool and waits for tasks to complete
func (s *retrySweeper) cleanup() {
	if s.pool != nil {
		s.pool.StopAndWait()
	}
}

// Stop gracefully stops the sweeper with timeout support
func (s *retrySweeper) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil // Already stopped
	}

	logger.InfoCtx(ctx, "Stopping retry sweeper")

	// Signal stop to the main loop
	close(s.stopChan)

	// Wait for main loop to exit, but respect context cancellation
	select {
	case <-s.stoppedCh:
		logger.InfoCtx(ctx, "Retry sweeper stopped gracefully")
		return nil
	case <-ctx.Done():
		logger.WarnCtx(ctx, "Retry sweeper stop interrupted by context timeout")
		return ctx.Err()
	}
}

// runSweepCycle runs a single sweep cycle
func (s *retrySweeper) runSweepCycle(ctx context.Context) error {
	startTime := s.clock.Now()
	logger.DebugCtx(ctx, "Starting retry sweep cycle")

	// Select without claiming. The worker's claim is the atomicity point, and
	// a duplicate enqueue from an overlapping cycle collapses on the broker's
	// deterministic message id.
	events, err := s.store.ListDueRetryEvents(ctx, s.clock.Now().UTC(), s.config.BatchSize)
	if err != nil {
		return fmt.Errorf("failed to list due retry events: %w", err)
	}

	if len(events) == 0 {
		logger.DebugCtx(ctx, "No webhook events due for retry")
		// Use context-aware sleep so we can be interrupted
		if !s.sleep(ctx, s.config.SweepInterval) {
			return ctx.Err() // Context canceled during sleep
		}
		return nil
	}

	logger.InfoCtx(ctx, "Found webhook events due for retry", zap.Int("count", len(events)))

	// Track metrics
	var enqueuedCount, failedCount atomic.Int32

	// Submit all enqueues to worker pool
	for _, event := range events {
		s.pool.Submit(func() {
			job := messaging.NewDispatchJob(s.clock, event.WebhookID, messaging.TriggerBackoff, event.RetryCount)
			if err := s.publisher.PublishDispatchJob(ctx, job); err != nil {
				failedCount.Add(1)
				logger.ErrorCtx(ctx, err,
					zap.String("webhook_id", event.WebhookID),
					zap.String("job_id", job.JobID),
				)
				return
			}
			enqueuedCount.Add(1)
			logger.InfoCtx(ctx, "Enqueued retry dispatch job",
				zap.String("webhook_id", event.WebhookID),
				zap.String("job_id", job.JobID),
				zap.Int("attempt", job.Attempt),
			)
		})
	}

	// Wait for all enqueues to complete
	s.pool.StopAndWait()

	// Recreate pool for next cycle
	s.pool = pond.NewPool(
		s.config.WorkerPoolSize,
		pond.WithQueueSize(s.config.BatchSize),
		pond.WithContext(ctx),
	)

	duration := s.clock.Since(startTime)
	logger.InfoCtx(ctx, "Retry sweep cycle completed",
		zap.Duration("duration", duration),
		zap.Int("due", len(events)),
		zap.Int32("enqueued", enqueuedCount.Load()),
		zap.Int32("publish_failures", failedCount.Load()),
	)

	// Sleep for a while to avoid tight loop
	// Use context-aware sleep so we can be interrupted
	if !s.sleep(ctx, s.config.SweepInterval) {
		return ctx.Err() // Context canceled during sleep
	}

	return nil
}

// sleep sleeps for the given duration but can be interrupted by context cancellation
// Returns true if sleep completed normally, false if interrupted by context
func (s *retrySweeper) sleep(ctx context.Context, duration time.Duration) bool {
	select {
	case <-s.clock.After(duration):
		return true // Sleep completed
	case <-ctx.Done():
		return false // Interrupted by context cancellation
	case <-s.stopChan:
		return false // Interrupted by stop signal
	}
}
