package bridge

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"github.com/helioshq/helios-webhooks/internal/adapter"
	"github.com/helioshq/helios-webhooks/internal/dispatch"
	"github.com/helioshq/helios-webhooks/internal/logger"
	"github.com/helioshq/helios-webhooks/internal/messaging"
	"github.com/helioshq/helios-webhooks/internal/store"
	"github.com/helioshq/helios-webhooks/internal/store/schema"
)

// Config holds the configuration for the retry bridge
type Config struct {
	URL            string
	StreamName     string
	Subject        string
	ConsumerName   string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectionName string
	AckWaitTimeout time.Duration
	MaxDeliver     int
}

//go:generate mockgen -source=bridge.go -destination=../mocks/bridge.go -package=mocks -mock_names=Bridge=MockBridge,RetryProcessor=MockRetryProcessor

// Bridge defines the interface for the retry bridge
type Bridge interface {
	// Run starts consuming dispatch jobs until the context is canceled
	Run(ctx context.Context) error
	// Close closes the bridge and cleans up resources
	Close()
}

// RetryProcessor re-runs a claimed event through the dispatch pipeline
type RetryProcessor interface {
	ProcessRetry(ctx context.Context, event *schema.WebhookEvent) (*dispatch.Outcome, error)
}

type bridge struct {
	nc        adapter.NatsConn
	js        adapter.JetStream
	store     store.Store
	processor RetryProcessor
	json      adapter.JSON
	config    Config
}

// NewBridge creates a new retry bridge
func NewBridge(
	cfg Config,
	natsJS adapter.NatsJetStream,
	st store.Store,
	processor RetryProcessor,
	jsonAdapter adapter.JSON,
) (Bridge, error) {
	opts := []nats.Option{
		nats.Name(cfg.ConnectionName),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				logger.Error(err, zap.String("message", "Disconnected from NATS"))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("Reconnected to NATS", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.Info("NATS connection closed")
		}),
	}

	nc, js, err := natsJS.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS and create JetStream: %w", err)
	}

	b := &bridge{
		nc:        nc,
		js:        js,
		store:     st,
		processor: processor,
		json:      jsonAdapter,
		config:    cfg,
	}

	return b, nil
}

// Run starts the retry bridge
func (b *bridge) Run(ctx context.Context) error {
	logger.Info("Starting retry bridge", zap.String("stream", b.config.StreamName), zap.String("consumer", b.config.ConsumerName))

	// Create or get consumer
	consumerConfig := jetstream.ConsumerConfig{
		Durable:       b.config.ConsumerName,
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       b.config.AckWaitTimeout,
		MaxDeliver:    b.config.MaxDeliver,
		FilterSubject: b.config.Subject,
	}

	consumer, err := b.js.CreateOrUpdateConsumer(ctx, b.config.StreamName, consumerConfig)
	if err != nil {
		return fmt.Errorf("failed to create/update consumer: %w", err)
	}

	consumerInfo, err := consumer.Info(ctx)
	if err != nil {
		return fmt.Errorf("failed to get consumer info: %w", err)
	}
	logger.Info("Consumer created/retrieved", zap.String("consumer", consumerInfo.Name))

	// Create subscription
	msgChan := make(chan adapter.Message, 100)
	sub, err := consumer.Consume(func(msg adapter.Message) {
		msgChan <- msg
	})
	if err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}
	defer sub.Stop()

	logger.Info("Started consuming dispatch jobs")

	// Process messages
	for {
		select {
		case <-ctx.Done():
			logger.Info("Shutting down retry bridge")
			return ctx.Err()
		case msg := <-msgChan:
			// Spawn goroutine to handle message asynchronously
			go b.handleMessage(ctx, msg)
		}
	}
}

// handleMessage processes a single dispatch job
func (b *bridge) handleMessage(ctx context.Context, msg adapter.Message) {
	// Get metadata for logging
	metadata, _ := msg.Metadata()

	// Parse job
	var job messaging.DispatchJob
	if err := b.json.Unmarshal(msg.Data(), &job); err != nil {
		logger.Error(err, zap.String("message", "Failed to unmarshal dispatch job"))
		// Terminate message for unparseable data
		if err := msg.Term(); err != nil {
			logger.Error(err, zap.String("message", "Failed to terminate message"))
		}
		return
	}

	logger.Info("Received dispatch job",
		zap.String("jobID", job.JobID),
		zap.String("webhookID", job.WebhookID),
		zap.String("trigger", job.Trigger),
		zap.Int("attempt", job.Attempt),
		zap.Uint64("deliveryCount", metadata.NumDelivered),
	)

	// Claim the event before running it. The claim fails benignly when the
	// event was already picked up, finished, or ran out of retries.
	event, err := b.store.ClaimEventForRetry(ctx, job.WebhookID)
	if err != nil {
		logger.Error(err, zap.String("message", "Failed to claim event for retry"))
		// NAK to retry
		if err := msg.Nak(); err != nil {
			logger.Error(err, zap.String("message", "Failed to NAK message"))
		}
		return
	}

	if event == nil {
		logger.Info("Dispatch job is no longer claimable; dropping",
			zap.String("webhookID", job.WebhookID),
			zap.String("trigger", job.Trigger),
		)
		// ACK to remove from queue
		if err := msg.Ack(); err != nil {
			logger.Error(err, zap.String("message", "Failed to ACK message"))
		}
		return
	}

	outcome, err := b.processor.ProcessRetry(ctx, event)
	if err != nil {
		logger.Error(err, zap.String("message", "Failed to process retry"))
		// NAK to retry; a stale claim left behind is reaped by the sweeper
		if err := msg.Nak(); err != nil {
			logger.Error(err, zap.String("message", "Failed to NAK message"))
		}
		return
	}

	// Both success and a recorded failure settle this job. Further attempts
	// arrive as fresh jobs from the retry sweeper.
	logger.Info("Dispatch job processed",
		zap.String("webhookID", outcome.WebhookID),
		zap.String("status", outcome.Status),
		zap.Int("retryCount", event.RetryCount),
	)

	// ACK message after successful processing
	if err := msg.Ack(); err != nil {
		logger.Error(err, zap.String("message", "Failed to ACK message"))
	}
}

// Close closes the bridge and cleans up resources
func (b *bridge) Close() {
	if b.nc == nil {
		return
	}

	b.nc.Close()
}
