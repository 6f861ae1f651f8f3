package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-redis/redis_rate/v10"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/helioshq/helios-webhooks/internal/adapter"
	"github.com/helioshq/helios-webhooks/internal/config"
	"github.com/helioshq/helios-webhooks/internal/logger"
)

// redisKeyPrefix namespaces limiter buckets in Redis
const redisKeyPrefix = "helios:webhooks:limiter:"

// healthCheckInterval is how often Redis availability is re-probed
const healthCheckInterval = 10 * time.Second

// Decision is the outcome of a rate limit check
type Decision struct {
	Allowed bool
	// RetryAfter is how long the caller should wait before retrying.
	// Zero when the request is allowed.
	RetryAfter time.Duration
}

// Guard enforces a request rate on the public webhook endpoint. It prefers a
// Redis-backed limit shared across API replicas and falls back to a
// process-local limiter when Redis is unreachable, so delivery intake keeps
// working through a Redis outage.
//
//go:generate mockgen -source=guard.go -destination=../mocks/ratelimit_guard.go -package=mocks -mock_names=Guard=MockRateLimitGuard
type Guard interface {
	// Allow reports whether the request identified by key may proceed
	Allow(ctx context.Context, key string) Decision

	// Close gracefully shuts down the guard
	Close() error
}

// guard is the concrete implementation of the rate limit guard
type guard struct {
	config             config.RateLimitConfig
	redis              adapter.RedisClient
	distributedLimiter adapter.RedisRateLimiter
	localLimiter       *rate.Limiter
	redisAvailable     atomic.Bool
	closed             atomic.Bool
	closeOnce          sync.Once
	stopChan           chan struct{}
}

// NewGuard creates a new rate limit guard
func NewGuard(cfg config.RateLimitConfig, rc adapter.RedisClient) (Guard, error) {
	if cfg.RequestsPerSecond <= 0 {
		return nil, fmt.Errorf("requests_per_second must be positive")
	}
	if cfg.Burst <= 0 {
		cfg.Burst = cfg.RequestsPerSecond
	}

	// Test Redis connectivity; the guard still starts when Redis is down
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	redisAvailable := true
	if err := rc.Ping(ctx).Err(); err != nil {
		redisAvailable = false
		logger.Warn("Redis unavailable, rate limiting falls back to local limiter", zap.Error(err))
	}

	g := &guard{
		config:             cfg,
		redis:              rc,
		distributedLimiter: rc.NewRateLimiter(),
		localLimiter:       rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		stopChan:           make(chan struct{}),
	}
	g.redisAvailable.Store(redisAvailable)

	// Start Redis health check goroutine
	go g.monitorRedisHealth()

	logger.Info("Rate limit guard initialized",
		zap.Int("requests_per_second", cfg.RequestsPerSecond),
		zap.Int("burst", cfg.Burst),
		zap.Bool("redis_available", redisAvailable),
	)

	return g, nil
}

// Allow reports whether the request identified by key may proceed.
// Errors talking to Redis never reject a delivery; the guard degrades to the
// process-local limiter instead.
func (g *guard) Allow(ctx context.Context, key string) Decision {
	if g.closed.Load() {
		return Decision{Allowed: false, RetryAfter: time.Second}
	}

	if g.redisAvailable.Load() {
		decision, err := g.tryDistributedLimit(ctx, key)
		if err == nil {
			return decision
		}

		// Redis error - mark as unavailable and fall back to local
		g.redisAvailable.Store(false)
		logger.Warn("Redis rate limiter error, falling back to local",
			zap.String("key", key),
			zap.Error(err),
		)
	}

	return g.tryLocalLimit()
}

// tryDistributedLimit checks the shared Redis bucket for the given key
func (g *guard) tryDistributedLimit(ctx context.Context, key string) (Decision, error) {
	limit := redis_rate.Limit{
		Rate:   g.config.RequestsPerSecond,
		Burst:  g.config.Burst,
		Period: time.Second,
	}

	res, err := g.distributedLimiter.Allow(ctx, redisKeyPrefix+key, limit)
	if err != nil {
		return Decision{}, err
	}

	if res.Allowed == 0 {
		logger.Debug("Rate limit exceeded",
			zap.String("key", key),
			zap.Duration("retry_after", res.RetryAfter),
			zap.Int("remaining", res.Remaining),
		)
		return Decision{Allowed: false, RetryAfter: res.RetryAfter}, nil
	}

	return Decision{Allowed: true}, nil
}

// tryLocalLimit checks the process-local token bucket.
// The local limiter is shared across keys, which over-throttles a single
// replica but keeps the endpoint bounded while Redis is down.
func (g *guard) tryLocalLimit() Decision {
	reservation := g.localLimiter.Reserve()
	if !reservation.OK() {
		return Decision{Allowed: false, RetryAfter: time.Second}
	}

	if delay := reservation.Delay(); delay > 0 {
		reservation.Cancel()
		return Decision{Allowed: false, RetryAfter: delay}
	}

	return Decision{Allowed: true}
}

// monitorRedisHealth periodically checks Redis health and updates availability status
func (g *guard) monitorRedisHealth() {
	for {
		select {
		case <-g.stopChan:
			return
		case <-time.After(healthCheckInterval):
		}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err := g.redis.Ping(ctx).Err()
		cancel()

		redisAvailable := err == nil
		wasAvailable := g.redisAvailable.Load()
		g.redisAvailable.Store(redisAvailable)

		if !wasAvailable && redisAvailable {
			logger.Info("Redis connection restored")
		}
	}
}

// Close gracefully shuts down the guard
func (g *guard) Close() error {
	var err error
	g.closeOnce.Do(func() {
		g.closed.Store(true)
		close(g.stopChan)

		if closeErr := g.redis.Close(); closeErr != nil {
			logger.Warn("Error closing Redis connection", zap.Error(closeErr))
			err = closeErr
		}
	})
	return err
}
