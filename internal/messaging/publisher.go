package messaging

import (
	"context"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/helioshq/helios-webhooks/internal/adapter"
)

// Trigger identifies what put a dispatch job on the queue
const (
	// TriggerBackoff marks jobs enqueued by the retry sweeper when a backoff deadline passed
	TriggerBackoff = "backoff"
	// TriggerManual marks jobs enqueued by an operator through the API
	TriggerManual = "manual"
)

// DispatchJob instructs a worker to re-run processing for one webhook event
type DispatchJob struct {
	// JobID is a ULID identifying this enqueue, time-sortable for tracing
	JobID string `json:"job_id"`
	// WebhookID names the event row to claim and process
	WebhookID string `json:"webhook_id"`
	// Trigger records what scheduled the job: backoff or manual
	Trigger string `json:"trigger"`
	// Attempt is the retry_count at enqueue time, part of the dedupe identity
	Attempt int `json:"attempt"`
	// EnqueuedAt is when the job was created
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// NewDispatchJob builds a dispatch job for the given event and trigger
func NewDispatchJob(clock adapter.Clock, webhookID, trigger string, attempt int) *DispatchJob {
	now := clock.Now()
	return &DispatchJob{
		JobID:      ulid.MustNewDefault(now).String(),
		WebhookID:  webhookID,
		Trigger:    trigger,
		Attempt:    attempt,
		EnqueuedAt: now.UTC(),
	}
}

// MsgID is the deterministic broker message id. Two enqueues of the same
// attempt for the same event collapse into one delivery inside the stream's
// duplicate window.
func (j *DispatchJob) MsgID() string {
	return fmt.Sprintf("%s:%d", j.WebhookID, j.Attempt)
}

// Publisher defines the interface for enqueueing dispatch jobs
//
//go:generate mockgen -source=publisher.go -destination=../mocks/publisher.go -package=mocks -mock_names=Publisher=MockPublisher
type Publisher interface {
	// PublishDispatchJob enqueues a dispatch job for a webhook event
	PublishDispatchJob(ctx context.Context, job *DispatchJob) error
	// Close closes the connection
	Close()
}
