package ratelimit_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/go-redis/redis_rate/v10"
	"github.com/golang/mock/gomock"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helioshq/helios-webhooks/internal/config"
	"github.com/helioshq/helios-webhooks/internal/logger"
	"github.com/helioshq/helios-webhooks/internal/mocks"
	"github.com/helioshq/helios-webhooks/internal/ratelimit"
)

func TestMain(m *testing.M) {
	// Initialize logger for tests
	err := logger.Initialize(logger.Config{
		Debug: false,
	})
	if err != nil {
		panic(err)
	}

	code := m.Run()
	os.Exit(code)
}

// testGuardMocks contains all the mocks needed for testing the guard
type testGuardMocks struct {
	ctrl             *gomock.Controller
	redisClient      *mocks.MockRedisClient
	redisRateLimiter *mocks.MockRedisRateLimiter
}

// setupTestGuard creates all the mocks for testing
func setupTestGuard(t *testing.T) *testGuardMocks {
	ctrl := gomock.NewController(t)

	return &testGuardMocks{
		ctrl:             ctrl,
		redisClient:      mocks.NewMockRedisClient(ctrl),
		redisRateLimiter: mocks.NewMockRedisRateLimiter(ctrl),
	}
}

// tearDownTestGuard cleans up the test mocks
func tearDownTestGuard(tm *testGuardMocks) {
	tm.ctrl.Finish()
}

// setupGuardWithMocks creates a guard with common mock expectations
func setupGuardWithMocks(t *testing.T, tm *testGuardMocks, cfg config.RateLimitConfig, redisAvailable bool) ratelimit.Guard {
	// Mock Redis ping
	statusCmd := redis.NewStatusCmd(context.Background())
	if redisAvailable {
		statusCmd.SetVal("PONG")
	} else {
		statusCmd.SetErr(errors.New("connection refused"))
	}
	tm.redisClient.EXPECT().
		Ping(gomock.Any()).
		Return(statusCmd)

	// Mock rate limiter creation
	tm.redisClient.EXPECT().
		NewRateLimiter().
		Return(tm.redisRateLimiter)

	// Close is exercised by the deferred shutdown in each test
	tm.redisClient.EXPECT().
		Close().
		Return(nil).
		AnyTimes()

	guard, err := ratelimit.NewGuard(cfg, tm.redisClient)
	require.NoError(t, err)

	return guard
}

func TestNewGuard_InvalidConfig(t *testing.T) {
	tm := setupTestGuard(t)
	defer tearDownTestGuard(tm)

	guard, err := ratelimit.NewGuard(config.RateLimitConfig{RequestsPerSecond: 0}, tm.redisClient)
	assert.Error(t, err)
	assert.Nil(t, guard)
}

func TestNewGuard_RedisDownStillStarts(t *testing.T) {
	tm := setupTestGuard(t)
	defer tearDownTestGuard(tm)

	cfg := config.RateLimitConfig{RequestsPerSecond: 50, Burst: 100}
	guard := setupGuardWithMocks(t, tm, cfg, false)
	defer func() { _ = guard.Close() }()

	// Redis is down from the start, so the local limiter decides
	decision := guard.Allow(context.Background(), "203.0.113.7")
	assert.True(t, decision.Allowed)
}

func TestAllow_DistributedAllowed(t *testing.T) {
	tm := setupTestGuard(t)
	defer tearDownTestGuard(tm)

	cfg := config.RateLimitConfig{RequestsPerSecond: 50, Burst: 100}
	guard := setupGuardWithMocks(t, tm, cfg, true)
	defer func() { _ = guard.Close() }()

	tm.redisRateLimiter.EXPECT().
		Allow(gomock.Any(), gomock.Eq("helios:webhooks:limiter:203.0.113.7"), gomock.Any()).
		Return(&redis_rate.Result{Allowed: 1, Remaining: 49}, nil)

	decision := guard.Allow(context.Background(), "203.0.113.7")
	assert.True(t, decision.Allowed)
	assert.Zero(t, decision.RetryAfter)
}

func TestAllow_DistributedDenied(t *testing.T) {
	tm := setupTestGuard(t)
	defer tearDownTestGuard(tm)

	cfg := config.RateLimitConfig{RequestsPerSecond: 50, Burst: 100}
	guard := setupGuardWithMocks(t, tm, cfg, true)
	defer func() { _ = guard.Close() }()

	tm.redisRateLimiter.EXPECT().
		Allow(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&redis_rate.Result{Allowed: 0, Remaining: 0, RetryAfter: 2 * time.Second}, nil)

	decision := guard.Allow(context.Background(), "203.0.113.7")
	assert.False(t, decision.Allowed)
	assert.Equal(t, 2*time.Second, decision.RetryAfter)
}

func TestAllow_RedisErrorFallsBackToLocal(t *testing.T) {
	tm := setupTestGuard(t)
	defer tearDownTestGuard(tm)

	cfg := config.RateLimitConfig{RequestsPerSecond: 50, Burst: 100}
	guard := setupGuardWithMocks(t, tm, cfg, true)
	defer func() { _ = guard.Close() }()

	// A single distributed check fails, after which the guard marks Redis
	// unavailable and stops consulting it
	tm.redisRateLimiter.EXPECT().
		Allow(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, errors.New("connection reset")).
		Times(1)

	first := guard.Allow(context.Background(), "203.0.113.7")
	assert.True(t, first.Allowed)

	second := guard.Allow(context.Background(), "203.0.113.7")
	assert.True(t, second.Allowed)
}

func TestAllow_LocalLimitExhausted(t *testing.T) {
	tm := setupTestGuard(t)
	defer tearDownTestGuard(tm)

	cfg := config.RateLimitConfig{RequestsPerSecond: 1, Burst: 1}
	guard := setupGuardWithMocks(t, tm, cfg, false)
	defer func() { _ = guard.Close() }()

	first := guard.Allow(context.Background(), "203.0.113.7")
	assert.True(t, first.Allowed)

	second := guard.Allow(context.Background(), "203.0.113.7")
	assert.False(t, second.Allowed)
	assert.Greater(t, second.RetryAfter, time.Duration(0))
}

func TestGuard_Close(t *testing.T) {
	tm := setupTestGuard(t)
	defer tearDownTestGuard(tm)

	cfg := config.RateLimitConfig{RequestsPerSecond: 50, Burst: 100}
	guard := setupGuardWithMocks(t, tm, cfg, true)

	assert.NoError(t, guard.Close())
	// Close is idempotent
	assert.NoError(t, guard.Close())

	// A closed guard rejects requests
	decision := guard.Allow(context.Background(), "203.0.113.7")
	assert.False(t, decision.Allowed)
}
