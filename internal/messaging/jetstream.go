package messaging

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"github.com/helioshq/helios-webhooks/internal/adapter"
	"github.com/helioshq/helios-webhooks/internal/logger"
)

// duplicateWindow is how long the stream remembers message ids. It must
// comfortably cover several sweeper cycles so re-enqueues of the same attempt
// collapse into one delivery.
const duplicateWindow = 2 * time.Hour

// Config holds the configuration for the NATS JetStream job queue
type Config struct {
	URL            string
	StreamName     string
	Subject        string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectionName string
}

type jetStreamPublisher struct {
	nc      adapter.NatsConn
	js      adapter.JetStream
	subject string
	json    adapter.JSON
}

// NewPublisher connects to NATS, ensures the job stream exists and returns a
// publisher bound to the dispatch subject
func NewPublisher(ctx context.Context, cfg Config, natsJS adapter.NatsJetStream, jsonAdapter adapter.JSON) (Publisher, error) {
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

	err = js.EnsureStream(ctx, jetstream.StreamConfig{
		Name:       cfg.StreamName,
		Subjects:   []string{cfg.Subject},
		Retention:  jetstream.WorkQueuePolicy,
		Storage:    jetstream.FileStorage,
		Duplicates: duplicateWindow,
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to ensure job stream: %w", err)
	}

	return &jetStreamPublisher{
		nc:      nc,
		js:      js,
		subject: cfg.Subject,
		json:    jsonAdapter,
	}, nil
}

// PublishDispatchJob enqueues a dispatch job for a webhook event
func (p *jetStreamPublisher) PublishDispatchJob(ctx context.Context, job *DispatchJob) error {
	logger.DebugCtx(ctx, "Publishing dispatch job",
		zap.String("webhook_id", job.WebhookID),
		zap.String("trigger", job.Trigger),
		zap.Int("attempt", job.Attempt))

	data, err := p.json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal dispatch job: %w", err)
	}

	_, err = p.js.Publish(ctx, p.subject, data, jetstream.WithMsgID(job.MsgID()))
	if err != nil {
		return fmt.Errorf("failed to publish dispatch job: %w", err)
	}

	return nil
}

// Close closes the NATS connection
func (p *jetStreamPublisher) Close() {
	if p.nc == nil {
		return
	}

	p.nc.Close()
}
