package sweeper_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helioshq/helios-webhooks/internal/domain"
	"github.com/helioshq/helios-webhooks/internal/logger"
	"github.com/helioshq/helios-webhooks/internal/messaging"
	"github.com/helioshq/helios-webhooks/internal/mocks"
	"github.com/helioshq/helios-webhooks/internal/store/schema"
	"github.com/helioshq/helios-webhooks/internal/sweeper"
)

const testWebhookID = "msg_2PKrWtQGHmAa4gDyLvPKXMaoSZz"

// testRetrySweeperMocks contains all the mocks needed for testing the retry sweeper
type testRetrySweeperMocks struct {
	ctrl      *gomock.Controller
	store     *mocks.MockStore
	publisher *mocks.MockPublisher
	clock     *mocks.MockClock
	sweeper   sweeper.Sweeper
}

// setupTestRetrySweeper creates all the mocks and sweeper for testing
func setupTestRetrySweeper(t *testing.T) *testRetrySweeperMocks {
	// Initialize logger for tests
	err := logger.Initialize(logger.Config{
		Debug: true,
	})
	if err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}

	ctrl := gomock.NewController(t)

	tm := &testRetrySweeperMocks{
		ctrl:      ctrl,
		store:     mocks.NewMockStore(ctrl),
		publisher: mocks.NewMockPublisher(ctrl),
		clock:     mocks.NewMockClock(ctrl),
	}

	config := &sweeper.RetrySweeperConfig{
		BatchSize:      10,
		WorkerPoolSize: 2,
		SweepInterval:  30 * time.Second,
	}

	tm.sweeper = sweeper.NewRetrySweeper(config, tm.store, tm.publisher, tm.clock)

	return tm
}

// tearDownTestRetrySweeper cleans up the test mocks
func tearDownTestRetrySweeper(mocks *testRetrySweeperMocks) {
	mocks.ctrl.Finish()
}

// dueEvent builds a FAILED event whose backoff deadline has passed
func dueEvent(webhookID string, retryCount int) *schema.WebhookEvent {
	next := time.Now().UTC().Add(-time.Minute)
	return &schema.WebhookEvent{
		ID:           1,
		WebhookID:    webhookID,
		EventType:    domain.EventTypeUserCreated,
		Status:       domain.WebhookStatusFailed,
		RetryCount:   retryCount,
		MaxRetries:   domain.DEFAULT_MAX_RETRIES,
		NextRetryAt:  &next,
		ErrorMessage: "core API unavailable",
	}
}

func TestRetrySweeper_Name(t *testing.T) {
	mocks := setupTestRetrySweeper(t)
	defer tearDownTestRetrySweeper(mocks)

	assert.Equal(t, "retry-sweeper", mocks.sweeper.Name())
}

func TestRetrySweeper_EnqueuesDueEvent(t *testing.T) {
	mocks := setupTestRetrySweeper(t)
	defer tearDownTestRetrySweeper(mocks)

	ctx := context.Background()
	event := dueEvent(testWebhookID, 1)

	// Mock clock expectations
	now := time.Now().UTC()
	mocks.clock.EXPECT().Now().Return(now).AnyTimes()
	mocks.clock.EXPECT().Since(now).Return(time.Second).AnyTimes()
	// Make After return a channel that closes after a brief delay to allow Stop to execute
	mocks.clock.EXPECT().After(gomock.Any()).DoAndReturn(func(d time.Duration) <-chan time.Time {
		ch := make(chan time.Time, 1)
		go func() {
			time.Sleep(50 * time.Millisecond)
			ch <- time.Now()
		}()
		return ch
	}).AnyTimes()

	// First cycle returns the due event, later cycles return empty
	gomock.InOrder(
		mocks.store.EXPECT().
			ListDueRetryEvents(gomock.Any(), now, 10).
			Return([]*schema.WebhookEvent{event}, nil).
			Times(1),
		mocks.store.EXPECT().
			ListDueRetryEvents(gomock.Any(), now, 10).
			Return([]*schema.WebhookEvent{}, nil).
			MinTimes(1),
	)

	// The published job carries the backoff trigger and the event's current
	// retry count, which keeps the broker message id deterministic
	mocks.publisher.EXPECT().
		PublishDispatchJob(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, job *messaging.DispatchJob) error {
			assert.Equal(t, testWebhookID, job.WebhookID)
			assert.Equal(t, messaging.TriggerBackoff, job.Trigger)
			assert.Equal(t, 1, job.Attempt)
			assert.Equal(t, testWebhookID+":1", job.MsgID())
			assert.NotEmpty(t, job.JobID)
			return nil
		}).
		Times(1)

	// Start sweeper in goroutine and stop it after processing
	go func() {
		time.Sleep(200 * time.Millisecond)
		_ = mocks.sweeper.Stop(ctx)
	}()

	err := mocks.sweeper.Start(ctx)
	require.NoError(t, err)
}

func TestRetrySweeper_EnqueuesAllDueEvents(t *testing.T) {
	mocks := setupTestRetrySweeper(t)
	defer tearDownTestRetrySweeper(mocks)

	ctx := context.Background()
	eventA := dueEvent("msg_due_a", 0)
	eventB := dueEvent("msg_due_b", 2)

	// Mock clock expectations
	now := time.Now().UTC()
	mocks.clock.EXPECT().Now().Return(now).AnyTimes()
	mocks.clock.EXPECT().Since(now).Return(time.Second).AnyTimes()
	mocks.clock.EXPECT().After(gomock.Any()).DoAndReturn(func(d time.Duration) <-chan time.Time {
		ch := make(chan time.Time, 1)
		go func() {
			time.Sleep(50 * time.Millisecond)
			ch <- time.Now()
		}()
		return ch
	}).AnyTimes()

	gomock.InOrder(
		mocks.store.EXPECT().
			ListDueRetryEvents(gomock.Any(), now, 10).
			Return([]*schema.WebhookEvent{eventA, eventB}, nil).
			Times(1),
		mocks.store.EXPECT().
			ListDueRetryEvents(gomock.Any(), now, 10).
			Return([]*schema.WebhookEvent{}, nil).
			MinTimes(1),
	)

	// Collect published jobs; pool workers run concurrently
	var mu sync.Mutex
	var published []string
	mocks.publisher.EXPECT().
		PublishDispatchJob(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, job *messaging.DispatchJob) error {
			mu.Lock()
			defer mu.Unlock()
			published = append(published, job.MsgID())
			return nil
		}).
		Times(2)

	go func() {
		time.Sleep(200 * time.Millisecond)
		_ = mocks.sweeper.Stop(ctx)
	}()

	err := mocks.sweeper.Start(ctx)
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.ElementsMatch(t, []string{"msg_due_a:0", "msg_due_b:2"}, published)
}

func TestRetrySweeper_PublishErrorDoesNotAbortCycle(t *testing.T) {
	mocks := setupTestRetrySweeper(t)
	defer tearDownTestRetrySweeper(mocks)

	ctx := context.Background()
	eventA := dueEvent("msg_due_a", 0)
	eventB := dueEvent("msg_due_b", 1)

	// Mock clock expectations
	now := time.Now().UTC()
	mocks.clock.EXPECT().Now().Return(now).AnyTimes()
	mocks.clock.EXPECT().Since(now).Return(time.Second).AnyTimes()
	mocks.clock.EXPECT().After(gomock.Any()).DoAndReturn(func(d time.Duration) <-chan time.Time {
		ch := make(chan time.Time, 1)
		go func() {
			time.Sleep(50 * time.Millisecond)
			ch <- time.Now()
		}()
		return ch
	}).AnyTimes()

	gomock.InOrder(
		mocks.store.EXPECT().
			ListDueRetryEvents(gomock.Any(), now, 10).
			Return([]*schema.WebhookEvent{eventA, eventB}, nil).
			Times(1),
		mocks.store.EXPECT().
			ListDueRetryEvents(gomock.Any(), now, 10).
			Return([]*schema.WebhookEvent{}, nil).
			MinTimes(1),
	)

	// One publish fails; the other event is still enqueued and the sweeper keeps running
	mocks.publisher.EXPECT().
		PublishDispatchJob(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, job *messaging.DispatchJob) error {
			if job.WebhookID == "msg_due_a" {
				return assert.AnError
			}
			return nil
		}).
		Times(2)

	go func() {
		time.Sleep(200 * time.Millisecond)
		_ = mocks.sweeper.Stop(ctx)
	}()

	err := mocks.sweeper.Start(ctx)
	require.NoError(t, err)
}

func TestRetrySweeper_NoDueEvents(t *testing.T) {
	mocks := setupTestRetrySweeper(t)
	defer tearDownTestRetrySweeper(mocks)

	ctx := context.Background()

	// Mock No events due for retry
	mocks.store.EXPECT().
		ListDueRetryEvents(gomock.Any(), gomock.Any(), 10).
		Return([]*schema.WebhookEvent{}, nil).
		AnyTimes()

	// The sweeper sleeps for the configured interval between empty cycles
	mocks.clock.EXPECT().
		After(30 * time.Second).
		DoAndReturn(func(d time.Duration) <-chan time.Time {
			ch := make(chan time.Time, 1)
			go func() {
				time.Sleep(50 * time.Millisecond)
				ch <- time.Now()
			}()
			return ch
		}).
		MinTimes(1)

	// Mock clock
	now := time.Now().UTC()
	mocks.clock.EXPECT().Now().Return(now).AnyTimes()

	go func() {
		time.Sleep(150 * time.Millisecond)
		_ = mocks.sweeper.Stop(ctx)
	}()

	err := mocks.sweeper.Start(ctx)
	require.NoError(t, err)
}

func TestRetrySweeper_StoreErrorContinues(t *testing.T) {
	mocks := setupTestRetrySweeper(t)
	defer tearDownTestRetrySweeper(mocks)

	ctx := context.Background()

	// Mock Store error when listing due events
	mocks.store.EXPECT().
		ListDueRetryEvents(gomock.Any(), gomock.Any(), 10).
		Return(nil, assert.AnError).
		AnyTimes()

	// Mock clock
	now := time.Now().UTC()
	mocks.clock.EXPECT().Now().Return(now).AnyTimes()
	mocks.clock.EXPECT().Since(now).Return(time.Second).AnyTimes()

	go func() {
		time.Sleep(150 * time.Millisecond)
		_ = mocks.sweeper.Stop(ctx)
	}()

	err := mocks.sweeper.Start(ctx)
	require.NoError(t, err) // Sweeper continues despite errors
}

func TestRetrySweeper_StopBeforeStart(t *testing.T) {
	mocks := setupTestRetrySweeper(t)
	defer tearDownTestRetrySweeper(mocks)

	ctx := context.Background()

	// Stop before starting should not error
	err := mocks.sweeper.Stop(ctx)
	require.NoError(t, err)
}

func TestRetrySweeper_DoubleStart(t *testing.T) {
	mocks := setupTestRetrySweeper(t)
	defer tearDownTestRetrySweeper(mocks)

	ctx := context.Background()

	// Mock for first start
	mocks.store.EXPECT().
		ListDueRetryEvents(gomock.Any(), gomock.Any(), 10).
		Return([]*schema.WebhookEvent{}, nil).
		AnyTimes()

	mocks.clock.EXPECT().Now().Return(time.Now().UTC()).AnyTimes()
	// Make After return a channel that closes after a brief delay to allow Stop to execute
	mocks.clock.EXPECT().After(gomock.Any()).DoAndReturn(func(d time.Duration) <-chan time.Time {
		ch := make(chan time.Time, 1)
		go func() {
			time.Sleep(50 * time.Millisecond)
			ch <- time.Now()
		}()
		return ch
	}).AnyTimes()

	// Start in goroutine
	errChan := make(chan error, 1)
	go func() {
		errChan <- mocks.sweeper.Start(ctx)
	}()

	// Give first start time to begin
	time.Sleep(50 * time.Millisecond)

	// Try to start again - should fail
	err := mocks.sweeper.Start(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already running")

	// Stop first instance
	_ = mocks.sweeper.Stop(ctx)
	<-errChan
}
