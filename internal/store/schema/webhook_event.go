package schema

import (
	"time"

	"gorm.io/datatypes"

	"github.com/helioshq/helios-webhooks/internal/domain"
)

// WebhookEvent represents the webhook_events table - the durable record of every
// provider delivery accepted past header validation
type WebhookEvent struct {
	// ID is an auto-incrementing sequence number
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// WebhookID is the provider's idempotency token for the delivery (svix-id header)
	WebhookID string `gorm:"column:webhook_id;not null;uniqueIndex;type:varchar(255)"`
	// EventType is the free-form type string from the event body (e.g., "user.created")
	EventType string `gorm:"column:event_type;not null;index;type:varchar(100)"`
	// Status is the current lifecycle state: pending, processing, success, failed, ignored, invalid
	Status domain.WebhookStatus `gorm:"column:status;not null;default:pending;index;type:varchar(20)"`
	// RetryCount is the number of failed processing attempts so far
	RetryCount int `gorm:"column:retry_count;not null;default:0"`
	// MaxRetries is the retry budget for this event
	MaxRetries int `gorm:"column:max_retries;not null;default:3"`
	// NextRetryAt is the backoff deadline for the next attempt (nil when not scheduled or exhausted)
	NextRetryAt *time.Time `gorm:"column:next_retry_at;type:timestamptz"`
	// ErrorMessage is the human-readable reason for the most recent failure or rejection
	ErrorMessage string `gorm:"column:error_message;type:text"`
	// ErrorDetails carries structured failure context as JSON
	ErrorDetails datatypes.JSON `gorm:"column:error_details;type:jsonb"`
	// RawData is the verbatim decoded provider payload
	RawData datatypes.JSON `gorm:"column:raw_data;not null;type:jsonb"`
	// ProcessedData is the handler's result payload, populated on success only
	ProcessedData datatypes.JSON `gorm:"column:processed_data;type:jsonb"`
	// SourceIP is the client address the delivery arrived from
	SourceIP string `gorm:"column:source_ip;type:varchar(45)"`
	// UserAgent is the client's User-Agent header
	UserAgent string `gorm:"column:user_agent;type:text"`
	// CreatedAt is the timestamp when this record was created
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	// UpdatedAt is the timestamp when this record was last updated
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
	// ProcessedAt is the timestamp when the event reached a terminal outcome
	ProcessedAt *time.Time `gorm:"column:processed_at;type:timestamptz"`
}

// TableName specifies the table name for the WebhookEvent model
func (WebhookEvent) TableName() string {
	return "webhook_events"
}
