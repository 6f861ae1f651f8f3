package store

import (
	"context"
	"time"

	"gorm.io/datatypes"

	"github.com/helioshq/helios-webhooks/internal/domain"
	"github.com/helioshq/helios-webhooks/internal/store/schema"
)

//go:generate mockgen -source=store.go -destination=../mocks/store.go -package=mocks -mock_names=Store=MockStore

// CreateWebhookEventInput carries everything needed to persist a freshly
// received delivery
type CreateWebhookEventInput struct {
	// WebhookID is the provider's idempotency token (svix-id header)
	WebhookID string
	// EventType is the type string parsed out of the event body
	EventType string
	// RawData is the verbatim decoded payload
	RawData datatypes.JSON
	// MaxRetries is the retry budget; 0 falls back to the table default
	MaxRetries int
	// SourceIP is the client address the delivery arrived from
	SourceIP string
	// UserAgent is the client's User-Agent header
	UserAgent string
}

// EventStats aggregates outcome counts over a time window
type EventStats struct {
	Total      int64 `json:"total"`
	Pending    int64 `json:"pending"`
	Processing int64 `json:"processing"`
	Success    int64 `json:"success"`
	Failed     int64 `json:"failed"`
	Ignored    int64 `json:"ignored"`
	Invalid    int64 `json:"invalid"`
	// SuccessRate is success / (success + failed); 0 when neither occurred
	SuccessRate float64 `json:"success_rate"`
}

// Store defines the interface for webhook event persistence
type Store interface {
	// GetOrCreateEvent inserts a new event row or returns the existing one for
	// the same webhook_id. The bool reports whether the row already existed.
	GetOrCreateEvent(ctx context.Context, input CreateWebhookEventInput) (*schema.WebhookEvent, bool, error)
	// GetEventByWebhookID retrieves an event by its provider webhook ID, (nil, nil) when absent
	GetEventByWebhookID(ctx context.Context, webhookID string) (*schema.WebhookEvent, error)
	// TransitionEvent moves an event to a new status under a row lock, validating
	// against the lifecycle state machine
	TransitionEvent(ctx context.Context, webhookID string, to domain.WebhookStatus) (*schema.WebhookEvent, error)
	// ClaimEventForRetry atomically flips a retryable FAILED event to PROCESSING,
	// (nil, nil) when the event is no longer claimable
	ClaimEventForRetry(ctx context.Context, webhookID string) (*schema.WebhookEvent, error)
	// RecordEventSuccess marks an event SUCCESS with the handler's result payload
	RecordEventSuccess(ctx context.Context, webhookID string, processedData datatypes.JSON) (*schema.WebhookEvent, error)
	// RecordEventIgnored marks an event IGNORED with the reason it was skipped
	RecordEventIgnored(ctx context.Context, webhookID string, reason string) (*schema.WebhookEvent, error)
	// RecordEventInvalid marks an event INVALID with the rejection message
	RecordEventInvalid(ctx context.Context, webhookID string, message string) (*schema.WebhookEvent, error)
	// RecordEventFailure marks an event FAILED, increments its retry count and
	// schedules the next attempt (next_retry_at stays NULL once the budget is spent)
	RecordEventFailure(ctx context.Context, webhookID string, errMsg string, details datatypes.JSON) (*schema.WebhookEvent, error)
	// ListDueRetryEvents returns FAILED events whose backoff deadline has passed
	ListDueRetryEvents(ctx context.Context, now time.Time, limit int) ([]*schema.WebhookEvent, error)
	// ListStaleProcessingEvents returns PROCESSING events untouched since the cutoff
	ListStaleProcessingEvents(ctx context.Context, cutoff time.Time, limit int) ([]*schema.WebhookEvent, error)
	// ListFailedEvents returns the most recent FAILED events, newest first
	ListFailedEvents(ctx context.Context, limit int) ([]*schema.WebhookEvent, error)
	// GetEventStats aggregates outcome counts for events created since the given time
	GetEventStats(ctx context.Context, since time.Time) (*EventStats, error)
}
