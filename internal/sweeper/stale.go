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
	"github.com/helioshq/helios-webhooks/internal/domain"
	"github.com/helioshq/helios-webhooks/internal/logger"
	"github.com/helioshq/helios-webhooks/internal/store"
)

// staleFailureMessage is recorded on events whose worker died mid-attempt
const staleFailureMessage = "processing interrupted"

// StaleSweeperConfig holds configuration for the stale processing sweeper
type StaleSweeperConfig struct {
	BatchSize      int           // Events to reap per cycle
	WorkerPoolSize int           // Concurrent reapers
	SweepInterval  time.Duration // Time to sleep between sweep cycles
	StaleAfter     time.Duration // Reap PROCESSING events untouched for this long
}

// staleSweeper implements the Sweeper interface for crash recovery. An event
// stuck in PROCESSING past the cutoff had its worker die mid-attempt; the
// sweeper records a failure for it, which puts the event back on the normal
// backoff schedule or exhausts its retry budget.
type staleSweeper struct {
	config    *StaleSweeperConfig
	store     store.Store
	pool      pond.Pool
	clock     adapter.Clock
	running   atomic.Bool
	stopChan  chan struct{}
	stoppedCh chan struct{}
}

// NewStaleSweeper creates a new stale processing sweeper
func NewStaleSweeper(
	config *StaleSweeperConfig,
	st store.Store,
	clock adapter.Clock,
) Sweeper {
	return &staleSweeper{
		config:    config,
		store:     st,
		clock:     clock,
		stopChan:  make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

// Name returns the sweeper's name
func (s *staleSweeper) Name() string {
	return "stale-sweeper"
}

// Start begins the sweeper's main loop
func (s *staleSweeper) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return fmt.Errorf("sweeper already running")
	}
	defer func() {
		s.running.Store(false)
		close(s.stoppedCh) // Signal that we've stopped
	}()

	logger.InfoCtx(ctx, "Starting stale processing sweeper",
		zap.Int("batch_size", s.config.BatchSize),
		zap.Int("worker_pool_size", s.config.WorkerPoolSize),
		zap.Duration("sweep_interval", s.config.SweepInterval),
		zap.Duration("stale_after", s.config.StaleAfter),
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
			logger.InfoCtx(ctx, "Stale sweeper stopping due to context cancellation", zap.Error(ctx.Err()))
			s.cleanup()
			return nil
		case <-s.stopChan:
			logger.InfoCtx(ctx, "Stale sweeper stop requested")
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
func (s *staleSweeper) cleanup() {
	if s.pool != nil {
		s.pool.StopAndWait()
	}
}

// Stop gracefully stops the sweeper with timeout support
func (s *staleSweeper) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil // Already stopped
	}

	logger.InfoCtx(ctx, "Stopping stale sweeper")

	// Signal stop to the main loop
	close(s.stopChan)

	// Wait for main loop to exit, but respect context cancellation
	select {
	case <-s.stoppedCh:
		logger.InfoCtx(ctx, "Stale sweeper stopped gracefully")
		return nil
	case <-ctx.Done():
		logger.WarnCtx(ctx, "Stale sweeper stop interrupted by context timeout")
		return ctx.Err()
	}
}

// runSweepCycle runs a single sweep cycle
func (s *staleSweeper) runSweepCycle(ctx context.Context) error {
	startTime := s.clock.Now()
	logger.DebugCtx(ctx, "Starting stale sweep cycle")

	cutoff := s.clock.Now().UTC().Add(-s.config.StaleAfter)
	events, err := s.store.ListStaleProcessingEvents(ctx, cutoff, s.config.BatchSize)
	if err != nil {
		return fmt.Errorf("failed to list stale processing events: %w", err)
	}

	if len(events) == 0 {
		logger.DebugCtx(ctx, "No stale processing events")
		// Use context-aware sleep so we can be interrupted
		if !s.sleep(ctx, s.config.SweepInterval) {
			return ctx.Err() // Context canceled during sleep
		}
		return nil
	}

	logger.InfoCtx(ctx, "Found stale processing events",
		zap.Int("count", len(events)),
		zap.Time("cutoff", cutoff),
	)

	// Track metrics
	var rescheduledCount, exhaustedCount, failedCount atomic.Int32

	// Submit all reaps to worker pool
	for _, event := range events {
		s.pool.Submit(func() {
			s.reapEvent(ctx, event.WebhookID, &rescheduledCount, &exhaustedCount, &failedCount)
		})
	}

	// Wait for all reaps to complete
	s.pool.StopAndWait()

	// Recreate pool for next cycle
	s.pool = pond.NewPool(
		s.config.WorkerPoolSize,
		pond.WithQueueSize(s.config.BatchSize),
		pond.WithContext(ctx),
	)

	duration := s.clock.Since(startTime)
	logger.InfoCtx(ctx, "Stale sweep cycle completed",
		zap.Duration("duration", duration),
		zap.Int("stale", len(events)),
		zap.Int32("rescheduled", rescheduledCount.Load()),
		zap.Int32("exhausted", exhaustedCount.Load()),
		zap.Int32("write_failures", failedCount.Load()),
	)

	// Sleep for a while to avoid tight loop
	// Use context-aware sleep so we can be interrupted
	if !s.sleep(ctx, s.config.SweepInterval) {
		return ctx.Err() // Context canceled during sleep
	}

	return nil
}

// reapEvent records a failure for one interrupted event
func (s *staleSweeper) reapEvent(ctx context.Context, webhookID string, rescheduledCount, exhaustedCount, failedCount *atomic.Int32) {
	updated, err := s.store.RecordEventFailure(ctx, webhookID, staleFailureMessage, nil)
	if err != nil {
		// The event may have moved on between the list and the write, e.g.
		// the worker finished after all. Nothing left to reap then.
		var transitionErr *domain.TransitionError
		if errors.As(err, &transitionErr) {
			logger.InfoCtx(ctx, "Stale event settled on its own",
				zap.String("webhook_id", webhookID),
				zap.String("status", string(transitionErr.From)),
			)
			return
		}
		failedCount.Add(1)
		logger.ErrorCtx(ctx, err, zap.String("webhook_id", webhookID))
		return
	}

	if updated.NextRetryAt == nil {
		exhaustedCount.Add(1)
		logger.WarnCtx(ctx, "Interrupted event exhausted its retry budget",
			zap.String("webhook_id", webhookID),
			zap.Int("retry_count", updated.RetryCount),
		)
		return
	}

	rescheduledCount.Add(1)
	logger.InfoCtx(ctx, "Rescheduled interrupted event",
		zap.String("webhook_id", webhookID),
		zap.Int("retry_count", updated.RetryCount),
		zap.Timep("next_retry_at", updated.NextRetryAt),
	)
}

// sleep sleeps for the given duration but can be interrupted by context cancellation
// Returns true if sleep completed normally, false if interrupted by context
func (s *staleSweeper) sleep(ctx context.Context, duration time.Duration) bool {
	select {
	case <-s.clock.After(duration):
		return true // Sleep completed
	case <-ctx.Done():
		return false // Interrupted by context cancellation
	case <-s.stopChan:
		return false // Interrupted by stop signal
	}
}
