package bridge_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"

	"github.com/helioshq/helios-webhooks/internal/adapter"
	"github.com/helioshq/helios-webhooks/internal/bridge"
	"github.com/helioshq/helios-webhooks/internal/dispatch"
	"github.com/helioshq/helios-webhooks/internal/domain"
	"github.com/helioshq/helios-webhooks/internal/logger"
	"github.com/helioshq/helios-webhooks/internal/messaging"
	mockspkg "github.com/helioshq/helios-webhooks/internal/mocks"
	"github.com/helioshq/helios-webhooks/internal/store/schema"
)

const testWebhookID = "msg_2PKrWtQGHmAa4gDyLvPKXMaoSZz"

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

// testBridgeMocks contains all the mocks needed for testing the bridge
type testBridgeMocks struct {
	ctrl      *gomock.Controller
	natsJS    *mockspkg.MockNatsJetStream
	natsConn  *mockspkg.MockNatsConn
	jetStream *mockspkg.MockJetStream
	store     *mockspkg.MockStore
	processor *mockspkg.MockRetryProcessor
	json      *mockspkg.MockJSON
}

// setupTestBridge creates all the mocks and bridge for testing
func setupTestBridge(t *testing.T) *testBridgeMocks {
	ctrl := gomock.NewController(t)

	tm := &testBridgeMocks{
		ctrl:      ctrl,
		natsJS:    mockspkg.NewMockNatsJetStream(ctrl),
		natsConn:  mockspkg.NewMockNatsConn(ctrl),
		jetStream: mockspkg.NewMockJetStream(ctrl),
		store:     mockspkg.NewMockStore(ctrl),
		processor: mockspkg.NewMockRetryProcessor(ctrl),
		json:      mockspkg.NewMockJSON(ctrl),
	}

	return tm
}

// tearDownTestBridge cleans up the test mocks
func tearDownTestBridge(mocks *testBridgeMocks) {
	mocks.ctrl.Finish()
}

func testBridgeConfig() bridge.Config {
	return bridge.Config{
		URL:            "nats://localhost:4222",
		StreamName:     "WEBHOOK_JOBS",
		Subject:        "webhooks.jobs.dispatch",
		ConsumerName:   "webhook-worker",
		MaxReconnects:  10,
		ReconnectWait:  1 * time.Second,
		ConnectionName: "test-bridge",
		AckWaitTimeout: 30 * time.Second,
		MaxDeliver:     5,
	}
}

func claimedEvent() *schema.WebhookEvent {
	return &schema.WebhookEvent{
		ID:         1,
		WebhookID:  testWebhookID,
		EventType:  "user.created",
		Status:     domain.WebhookStatusProcessing,
		RetryCount: 1,
		MaxRetries: domain.DEFAULT_MAX_RETRIES,
		RawData:    datatypes.JSON(`{"data":{"id":"user_1"},"object":"event","type":"user.created"}`),
	}
}

func TestBridge_NewBridge_Success(t *testing.T) {
	mocks := setupTestBridge(t)
	defer tearDownTestBridge(mocks)

	config := testBridgeConfig()

	// Mock NATS connection
	mocks.natsJS.
		EXPECT().
		Connect(config.URL, gomock.Any()).
		Return(mocks.natsConn, mocks.jetStream, nil)

	b, err := bridge.NewBridge(
		config,
		mocks.natsJS,
		mocks.store,
		mocks.processor,
		mocks.json,
	)

	assert.NoError(t, err)
	assert.NotNil(t, b)
}

func TestBridge_NewBridge_ConnectError(t *testing.T) {
	mocks := setupTestBridge(t)
	defer tearDownTestBridge(mocks)

	// Mock NATS connection to return error
	mocks.natsJS.
		EXPECT().
		Connect(gomock.Any(), gomock.Any()).
		Return(nil, nil, assert.AnError)

	b, err := bridge.NewBridge(
		testBridgeConfig(),
		mocks.natsJS,
		mocks.store,
		mocks.processor,
		mocks.json,
	)

	assert.Error(t, err)
	assert.Nil(t, b)
	assert.Contains(t, err.Error(), "failed to connect to NATS")
}

func TestBridge_Run_CreateConsumerError(t *testing.T) {
	mocks := setupTestBridge(t)
	defer tearDownTestBridge(mocks)

	ctx := context.Background()
	config := testBridgeConfig()

	// Mock NATS connection
	mocks.natsJS.
		EXPECT().
		Connect(gomock.Any(), gomock.Any()).
		Return(mocks.natsConn, mocks.jetStream, nil)

	b, err := bridge.NewBridge(config, mocks.natsJS, mocks.store, mocks.processor, mocks.json)
	assert.NoError(t, err)
	assert.NotNil(t, b)

	// Mock CreateOrUpdateConsumer to return error
	mocks.jetStream.
		EXPECT().
		CreateOrUpdateConsumer(gomock.Any(),
			"WEBHOOK_JOBS",
			jetstream.ConsumerConfig{
				Durable:       config.ConsumerName,
				AckPolicy:     jetstream.AckExplicitPolicy,
				AckWait:       config.AckWaitTimeout,
				MaxDeliver:    config.MaxDeliver,
				FilterSubject: "webhooks.jobs.dispatch",
			}).
		Return(nil, assert.AnError)

	err = b.Run(ctx)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create/update consumer")
}

func TestBridge_Run_ConsumerInfoError(t *testing.T) {
	mocks := setupTestBridge(t)
	defer tearDownTestBridge(mocks)

	ctx := context.Background()

	// Mock NATS connection
	mocks.natsJS.
		EXPECT().
		Connect(gomock.Any(), gomock.Any()).
		Return(mocks.natsConn, mocks.jetStream, nil)

	b, err := bridge.NewBridge(testBridgeConfig(), mocks.natsJS, mocks.store, mocks.processor, mocks.json)
	assert.NoError(t, err)
	assert.NotNil(t, b)

	// Mock CreateOrUpdateConsumer to return a consumer with Info error
	consumer := mockspkg.NewMockNatsConsumer(mocks.ctrl)
	consumer.EXPECT().
		Info(gomock.Any()).
		Return(nil, assert.AnError)

	mocks.jetStream.
		EXPECT().
		CreateOrUpdateConsumer(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(consumer, nil)

	err = b.Run(ctx)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get consumer info")
}

func TestBridge_Run_ConsumeError(t *testing.T) {
	mocks := setupTestBridge(t)
	defer tearDownTestBridge(mocks)

	ctx := context.Background()

	// Mock NATS connection
	mocks.natsJS.
		EXPECT().
		Connect(gomock.Any(), gomock.Any()).
		Return(mocks.natsConn, mocks.jetStream, nil)

	b, err := bridge.NewBridge(testBridgeConfig(), mocks.natsJS, mocks.store, mocks.processor, mocks.json)
	assert.NoError(t, err)
	assert.NotNil(t, b)

	// Mock CreateOrUpdateConsumer to return a consumer with Consume error
	consumer := mockspkg.NewMockNatsConsumer(mocks.ctrl)
	consumer.EXPECT().
		Info(gomock.Any()).
		Return(&jetstream.ConsumerInfo{Name: "webhook-worker"}, nil)
	consumer.EXPECT().
		Consume(gomock.Any(), gomock.Any()).
		Return(nil, assert.AnError)

	mocks.jetStream.
		EXPECT().
		CreateOrUpdateConsumer(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(consumer, nil)

	err = b.Run(ctx)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create subscription")
}

func TestBridge_Run_ContextCancellation(t *testing.T) {
	mocks := setupTestBridge(t)
	defer tearDownTestBridge(mocks)

	ctx, cancel := context.WithCancel(context.Background())

	// Mock NATS connection
	mocks.natsJS.
		EXPECT().
		Connect(gomock.Any(), gomock.Any()).
		Return(mocks.natsConn, mocks.jetStream, nil)

	b, err := bridge.NewBridge(testBridgeConfig(), mocks.natsJS, mocks.store, mocks.processor, mocks.json)
	assert.NoError(t, err)
	assert.NotNil(t, b)

	// Mock CreateOrUpdateConsumer to return a consumer
	consumer := mockspkg.NewMockNatsConsumer(mocks.ctrl)
	consumeContext := mockspkg.NewMockConsumeContext(mocks.ctrl)
	consumeContext.EXPECT().
		Stop().
		AnyTimes()

	consumer.EXPECT().
		Info(gomock.Any()).
		Return(&jetstream.ConsumerInfo{Name: "webhook-worker"}, nil)
	consumer.EXPECT().
		Consume(gomock.Any(), gomock.Any()).
		DoAndReturn(func(handler adapter.MessageHandler, opts ...jetstream.PullConsumeOpt) (adapter.ConsumeContext, error) {
			// Cancel context to stop the bridge
			go func() {
				cancel()
			}()
			return consumeContext, nil
		})

	mocks.jetStream.
		EXPECT().
		CreateOrUpdateConsumer(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(consumer, nil)

	// Use a channel to capture the error
	errChan := make(chan error, 1)
	go func() {
		errChan <- b.Run(ctx)
	}()

	// Wait for context cancellation
	select {
	case err := <-errChan:
		assert.Error(t, err)
		assert.Equal(t, context.Canceled, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Test timed out")
	}
}

func TestBridge_Close(t *testing.T) {
	mocks := setupTestBridge(t)
	defer tearDownTestBridge(mocks)

	// Mock NATS connection
	mocks.natsJS.
		EXPECT().
		Connect(gomock.Any(), gomock.Any()).
		Return(mocks.natsConn, mocks.jetStream, nil)

	// Mock Close
	mocks.natsConn.
		EXPECT().
		Close()

	b, err := bridge.NewBridge(testBridgeConfig(), mocks.natsJS, mocks.store, mocks.processor, mocks.json)
	assert.NoError(t, err)
	assert.NotNil(t, b)

	b.Close()
}

// runBridgeWithHandler starts the bridge and returns the captured message
// handler so tests can inject messages directly
func runBridgeWithHandler(t *testing.T, mocks *testBridgeMocks, ctx context.Context) adapter.MessageHandler {
	config := testBridgeConfig()

	mocks.natsJS.
		EXPECT().
		Connect(config.URL, gomock.Any()).
		Return(mocks.natsConn, mocks.jetStream, nil)

	b, err := bridge.NewBridge(config, mocks.natsJS, mocks.store, mocks.processor, mocks.json)
	assert.NoError(t, err)
	assert.NotNil(t, b)

	handlerChan := make(chan adapter.MessageHandler, 1)
	consumer := mockspkg.NewMockNatsConsumer(mocks.ctrl)
	consumeContext := mockspkg.NewMockConsumeContext(mocks.ctrl)

	consumer.EXPECT().
		Info(gomock.Any()).
		Return(&jetstream.ConsumerInfo{Name: config.ConsumerName}, nil)
	consumer.EXPECT().
		Consume(gomock.Any(), gomock.Any()).
		DoAndReturn(func(handler adapter.MessageHandler, opts ...jetstream.PullConsumeOpt) (adapter.ConsumeContext, error) {
			handlerChan <- handler
			return consumeContext, nil
		})
	consumeContext.EXPECT().Stop().AnyTimes()

	mocks.jetStream.EXPECT().
		CreateOrUpdateConsumer(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(consumer, nil)

	go func() {
		_ = b.Run(ctx)
	}()

	select {
	case handler := <-handlerChan:
		return handler
	case <-time.After(5 * time.Second):
		t.Fatal("Timed out waiting for consumer setup")
		return nil
	}
}

// dispatchJobMessage builds a mock message carrying the given job and wires
// the JSON mock to decode it
func dispatchJobMessage(mocks *testBridgeMocks, job messaging.DispatchJob) *mockspkg.MockJetStreamMessage {
	jobJSON := []byte(`{"job_id":"` + job.JobID + `","webhook_id":"` + job.WebhookID + `","trigger":"` + job.Trigger + `","attempt":1}`)

	msg := mockspkg.NewMockJetStreamMessage(mocks.ctrl)
	msg.
		EXPECT().
		Data().
		Return(jobJSON).
		MinTimes(1)
	msg.
		EXPECT().
		Metadata().
		Return(&jetstream.MsgMetadata{NumDelivered: 1}, nil).
		MinTimes(1)

	mocks.json.
		EXPECT().
		Unmarshal(jobJSON, gomock.Any()).
		DoAndReturn(func(data []byte, v interface{}) error {
			*v.(*messaging.DispatchJob) = job
			return nil
		})

	return msg
}

func TestBridge_ProcessMessage_RetrySucceeds(t *testing.T) {
	mocks := setupTestBridge(t)
	defer tearDownTestBridge(mocks)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	job := messaging.DispatchJob{
		JobID:     "01J5A7V9W3EXAMPLE0000000001",
		WebhookID: testWebhookID,
		Trigger:   messaging.TriggerBackoff,
		Attempt:   1,
	}
	event := claimedEvent()

	messageHandler := runBridgeWithHandler(t, mocks, ctx)
	msg := dispatchJobMessage(mocks, job)

	mocks.store.
		EXPECT().
		ClaimEventForRetry(gomock.Any(), testWebhookID).
		Return(event, nil)

	mocks.processor.
		EXPECT().
		ProcessRetry(gomock.Any(), event).
		Return(&dispatch.Outcome{Status: dispatch.OutcomeSuccess, WebhookID: testWebhookID}, nil)

	// Expect message to be acknowledged
	msg.EXPECT().Ack().Return(nil)

	messageHandler(msg)
	time.Sleep(200 * time.Millisecond)

	cancel()
}

func TestBridge_ProcessMessage_FailedOutcomeStillAcks(t *testing.T) {
	mocks := setupTestBridge(t)
	defer tearDownTestBridge(mocks)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	job := messaging.DispatchJob{
		JobID:     "01J5A7V9W3EXAMPLE0000000002",
		WebhookID: testWebhookID,
		Trigger:   messaging.TriggerBackoff,
		Attempt:   1,
	}
	event := claimedEvent()

	messageHandler := runBridgeWithHandler(t, mocks, ctx)
	msg := dispatchJobMessage(mocks, job)

	mocks.store.
		EXPECT().
		ClaimEventForRetry(gomock.Any(), testWebhookID).
		Return(event, nil)

	// A recorded failure settles the job; the next attempt arrives from the
	// retry sweeper as a fresh job
	mocks.processor.
		EXPECT().
		ProcessRetry(gomock.Any(), event).
		Return(&dispatch.Outcome{Status: dispatch.OutcomeFailed, WebhookID: testWebhookID, Error: "core API unavailable"}, nil)

	msg.EXPECT().Ack().Return(nil)

	messageHandler(msg)
	time.Sleep(200 * time.Millisecond)

	cancel()
}

func TestBridge_ProcessMessage_InvalidJSON(t *testing.T) {
	mocks := setupTestBridge(t)
	defer tearDownTestBridge(mocks)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	messageHandler := runBridgeWithHandler(t, mocks, ctx)

	msg := mockspkg.NewMockJetStreamMessage(mocks.ctrl)
	invalidJSON := []byte(`{invalid json}`)

	msg.
		EXPECT().
		Data().
		Return(invalidJSON).
		MinTimes(1)
	msg.
		EXPECT().
		Metadata().
		Return(&jetstream.MsgMetadata{NumDelivered: 1}, nil).
		MinTimes(1)

	// Mock JSON unmarshal to return error
	mocks.json.
		EXPECT().
		Unmarshal(invalidJSON, gomock.Any()).
		Return(assert.AnError)

	// Expect message to be terminated
	msg.
		EXPECT().
		Term().
		Return(nil)

	messageHandler(msg)
	time.Sleep(200 * time.Millisecond)

	cancel()
}

func TestBridge_ProcessMessage_NotClaimable(t *testing.T) {
	mocks := setupTestBridge(t)
	defer tearDownTestBridge(mocks)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	job := messaging.DispatchJob{
		JobID:     "01J5A7V9W3EXAMPLE0000000003",
		WebhookID: testWebhookID,
		Trigger:   messaging.TriggerManual,
		Attempt:   2,
	}

	messageHandler := runBridgeWithHandler(t, mocks, ctx)
	msg := dispatchJobMessage(mocks, job)

	// The event already succeeded, exhausted its retries, or is held by
	// another worker; the job is dropped
	mocks.store.
		EXPECT().
		ClaimEventForRetry(gomock.Any(), testWebhookID).
		Return(nil, nil)

	// Expect message to be acknowledged (dropped)
	msg.EXPECT().Ack().Return(nil)

	messageHandler(msg)
	time.Sleep(200 * time.Millisecond)

	cancel()
}

func TestBridge_ProcessMessage_ClaimError(t *testing.T) {
	mocks := setupTestBridge(t)
	defer tearDownTestBridge(mocks)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	job := messaging.DispatchJob{
		JobID:     "01J5A7V9W3EXAMPLE0000000004",
		WebhookID: testWebhookID,
		Trigger:   messaging.TriggerBackoff,
		Attempt:   1,
	}

	messageHandler := runBridgeWithHandler(t, mocks, ctx)
	msg := dispatchJobMessage(mocks, job)

	mocks.store.
		EXPECT().
		ClaimEventForRetry(gomock.Any(), testWebhookID).
		Return(nil, assert.AnError)

	// Expect message to be NAKed due to store error
	msg.EXPECT().Nak().Return(nil)

	messageHandler(msg)
	time.Sleep(200 * time.Millisecond)

	cancel()
}

func TestBridge_ProcessMessage_ProcessError(t *testing.T) {
	mocks := setupTestBridge(t)
	defer tearDownTestBridge(mocks)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	job := messaging.DispatchJob{
		JobID:     "01J5A7V9W3EXAMPLE0000000005",
		WebhookID: testWebhookID,
		Trigger:   messaging.TriggerBackoff,
		Attempt:   1,
	}
	event := claimedEvent()

	messageHandler := runBridgeWithHandler(t, mocks, ctx)
	msg := dispatchJobMessage(mocks, job)

	mocks.store.
		EXPECT().
		ClaimEventForRetry(gomock.Any(), testWebhookID).
		Return(event, nil)

	// An unrecordable outcome leaves the claim behind; NAK so the job is
	// redelivered after the store recovers
	mocks.processor.
		EXPECT().
		ProcessRetry(gomock.Any(), event).
		Return(nil, assert.AnError)

	msg.EXPECT().Nak().Return(nil)

	messageHandler(msg)
	time.Sleep(200 * time.Millisecond)

	cancel()
}
