package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/helioshq/helios-webhooks/internal/domain"
	"github.com/helioshq/helios-webhooks/internal/logger"
	"github.com/helioshq/helios-webhooks/internal/signature"
	"github.com/helioshq/helios-webhooks/internal/store"
	"github.com/helioshq/helios-webhooks/internal/store/schema"
)

// invalidSignatureMessage is the exact error_message stored on INVALID rows
const invalidSignatureMessage = "Invalid webhook signature"

// ErrMalformedPayload reports a body that could not be parsed as a provider
// event. No row is created for these deliveries.
var ErrMalformedPayload = errors.New("malformed webhook payload")

// Outcome statuses reported back to the provider and to operators
const (
	OutcomeSuccess          = "success"
	OutcomeFailed           = "failed"
	OutcomeIgnored          = "ignored"
	OutcomeInvalid          = "invalid"
	OutcomeAlreadyProcessed = "already_processed"
	OutcomeProcessing       = "processing"
	OutcomePending          = "pending"
)

// Outcome is the dispatcher's answer for one delivery or retry attempt
type Outcome struct {
	Status      string     `json:"status"`
	WebhookID   string     `json:"webhook_id,omitempty"`
	Message     string     `json:"message,omitempty"`
	Error       string     `json:"error,omitempty"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
}

// HandlerResult is the structured answer a handler gives for one event
type HandlerResult struct {
	// Action names what the handler did (e.g., "user_synced")
	Action string `json:"action"`
	// EntityID is the affected entity, when the payload names one
	EntityID string `json:"entity_id,omitempty"`
	// Message is a human-readable summary for operators
	Message string `json:"message,omitempty"`
	// Data carries handler-specific result fields into processed_data
	Data map[string]interface{} `json:"data,omitempty"`
}

//go:generate mockgen -source=dispatch.go -destination=../mocks/dispatch.go -package=mocks -mock_names=Handler=MockHandler

// Handler processes one provider event
type Handler interface {
	// Handle executes the side effects for the event and reports what was done
	Handle(ctx context.Context, event *domain.ProviderEvent) (*HandlerResult, error)
}

// Delivery carries the transport facts of one inbound request
type Delivery struct {
	Headers   signature.Headers
	SourceIP  string
	UserAgent string
}

// Dispatcher owns the inbound pipeline: durable recording, signature
// verification, handler lookup by exact event type string, and outcome
// bookkeeping. Retries re-enter it at the dispatch step.
type Dispatcher struct {
	verifier   signature.Verifier
	store      store.Store
	handlers   map[string]Handler
	maxRetries int
}

// NewDispatcher creates a dispatcher with an empty handler registry
func NewDispatcher(verifier signature.Verifier, st store.Store, maxRetries int) *Dispatcher {
	return &Dispatcher{
		verifier:   verifier,
		store:      st,
		handlers:   make(map[string]Handler),
		maxRetries: maxRetries,
	}
}

// Register binds a handler to an exact event type string. Registering the
// same type again replaces the previous handler.
func (d *Dispatcher) Register(eventType string, handler Handler) {
	d.handlers[eventType] = handler
}

// ProcessInbound runs the full pipeline for a first-touch delivery: record,
// short-circuit replays, verify, dispatch. The returned error is reserved for
// infrastructure faults (store unavailable, unrecordable outcomes); every
// recordable condition comes back as an Outcome.
func (d *Dispatcher) ProcessInbound(ctx context.Context, rawBody []byte, delivery Delivery) (*Outcome, error) {
	event, err := domain.ParseProviderEvent(rawBody)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	row, existed, err := d.store.GetOrCreateEvent(ctx, store.CreateWebhookEventInput{
		WebhookID:  delivery.Headers.ID,
		EventType:  event.Type,
		RawData:    datatypes.JSON(rawBody),
		MaxRetries: d.maxRetries,
		SourceIP:   delivery.SourceIP,
		UserAgent:  delivery.UserAgent,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record webhook event: %w", err)
	}

	if existed {
		logger.InfoCtx(ctx, "Webhook delivery replayed",
			zap.String("webhook_id", row.WebhookID),
			zap.String("event_type", row.EventType),
			zap.String("status", string(row.Status)))

		// Only pending and failed rows are driven forward; everything else
		// reports its settled (or in-flight) state without re-running anything
		if row.Status != domain.WebhookStatusPending && row.Status != domain.WebhookStatusFailed {
			return outcomeFromRow(row), nil
		}

		// A failed row with no retry budget left is settled too
		if row.Status == domain.WebhookStatusFailed && row.RetryCount >= row.MaxRetries {
			return outcomeFromRow(row), nil
		}
	}

	if err := d.verifier.Verify(rawBody, delivery.Headers); err != nil {
		return d.recordInvalid(ctx, row, err)
	}

	// Unknown event types never enter processing on first touch
	if _, ok := d.handlers[event.Type]; !ok && row.Status == domain.WebhookStatusPending {
		return d.recordIgnored(ctx, row.WebhookID, event.Type)
	}

	claimed, err := d.store.TransitionEvent(ctx, row.WebhookID, domain.WebhookStatusProcessing)
	if err != nil {
		var transitionErr *domain.TransitionError
		if errors.As(err, &transitionErr) {
			// Lost the race to a concurrent delivery or a worker claim
			logger.WarnCtx(ctx, "Webhook delivery lost its processing race",
				zap.String("webhook_id", row.WebhookID),
				zap.Error(err))
			return d.refreshOutcome(ctx, row.WebhookID)
		}
		return nil, fmt.Errorf("failed to start webhook processing: %w", err)
	}

	return d.dispatch(ctx, claimed, event)
}

// ProcessRetry re-enters the pipeline at the dispatch step for an event
// already claimed into PROCESSING. The stored payload was verified on first
// receipt, so signature work is skipped.
func (d *Dispatcher) ProcessRetry(ctx context.Context, row *schema.WebhookEvent) (*Outcome, error) {
	event, err := domain.ParseProviderEvent(row.RawData)
	if err != nil {
		// Stored payloads should always parse; record the fault instead of
		// crashing the worker
		return d.recordFailure(ctx, row, fmt.Sprintf("stored payload failed to parse: %v", err), nil)
	}

	return d.dispatch(ctx, row, event)
}

// dispatch runs the handler for an event already in PROCESSING and records
// the terminal-for-this-attempt outcome
func (d *Dispatcher) dispatch(ctx context.Context, row *schema.WebhookEvent, event *domain.ProviderEvent) (*Outcome, error) {
	result, handlerErr := d.runHandler(ctx, event)
	if handlerErr != nil {
		logger.WarnCtx(ctx, "Webhook handler failed",
			zap.String("webhook_id", row.WebhookID),
			zap.String("event_type", event.Type),
			zap.Error(handlerErr))

		details, _ := json.Marshal(map[string]interface{}{
			"event_type": event.Type,
			"attempt":    row.RetryCount + 1,
		})
		return d.recordFailure(ctx, row, handlerErr.Error(), details)
	}

	processedData, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal handler result: %w", err)
	}

	updated, err := d.store.RecordEventSuccess(ctx, row.WebhookID, processedData)
	if err != nil {
		return nil, fmt.Errorf("failed to record webhook event success: %w", err)
	}

	logger.InfoCtx(ctx, "Webhook event processed",
		zap.String("webhook_id", row.WebhookID),
		zap.String("event_type", event.Type),
		zap.String("action", result.Action))

	return &Outcome{
		Status:      OutcomeSuccess,
		WebhookID:   row.WebhookID,
		Message:     result.Message,
		ProcessedAt: updated.ProcessedAt,
	}, nil
}

// runHandler looks up and runs the handler with panics absorbed into errors,
// so a handler fault can never leave the row stuck in PROCESSING
func (d *Dispatcher) runHandler(ctx context.Context, event *domain.ProviderEvent) (result *HandlerResult, err error) {
	handler, ok := d.handlers[event.Type]
	if !ok {
		return nil, fmt.Errorf("no handler registered for event type %s", event.Type)
	}

	defer func() {
		if r := recover(); r != nil {
			logger.WarnCtx(ctx, "Webhook handler panicked",
				zap.String("event_type", event.Type),
				zap.Any("panic", r))
			result = nil
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()

	return handler.Handle(ctx, event)
}

func (d *Dispatcher) recordInvalid(ctx context.Context, row *schema.WebhookEvent, verifyErr error) (*Outcome, error) {
	logger.WarnCtx(ctx, "Webhook signature verification failed",
		zap.String("webhook_id", row.WebhookID),
		zap.Error(verifyErr))

	// A failed row was verified on its original receipt; a bad redelivery of
	// it is rejected without touching the record
	if row.Status != domain.WebhookStatusPending {
		return &Outcome{Status: OutcomeInvalid, WebhookID: row.WebhookID, Error: invalidSignatureMessage}, nil
	}

	updated, err := d.store.RecordEventInvalid(ctx, row.WebhookID, invalidSignatureMessage)
	if err != nil {
		var transitionErr *domain.TransitionError
		if errors.As(err, &transitionErr) {
			return d.refreshOutcome(ctx, row.WebhookID)
		}
		return nil, fmt.Errorf("failed to record invalid webhook event: %w", err)
	}

	return &Outcome{
		Status:      OutcomeInvalid,
		WebhookID:   row.WebhookID,
		Error:       invalidSignatureMessage,
		ProcessedAt: updated.ProcessedAt,
	}, nil
}

func (d *Dispatcher) recordIgnored(ctx context.Context, webhookID, eventType string) (*Outcome, error) {
	reason := fmt.Sprintf("no handler registered for event type %s", eventType)

	updated, err := d.store.RecordEventIgnored(ctx, webhookID, reason)
	if err != nil {
		var transitionErr *domain.TransitionError
		if errors.As(err, &transitionErr) {
			return d.refreshOutcome(ctx, webhookID)
		}
		return nil, fmt.Errorf("failed to record ignored webhook event: %w", err)
	}

	logger.InfoCtx(ctx, "Webhook event ignored",
		zap.String("webhook_id", webhookID),
		zap.String("event_type", eventType))

	return &Outcome{
		Status:      OutcomeIgnored,
		WebhookID:   webhookID,
		Message:     reason,
		ProcessedAt: updated.ProcessedAt,
	}, nil
}

func (d *Dispatcher) recordFailure(ctx context.Context, row *schema.WebhookEvent, errMsg string, details datatypes.JSON) (*Outcome, error) {
	updated, err := d.store.RecordEventFailure(ctx, row.WebhookID, errMsg, details)
	if err != nil {
		return nil, fmt.Errorf("failed to record webhook event failure: %w", err)
	}

	return &Outcome{
		Status:    OutcomeFailed,
		WebhookID: row.WebhookID,
		Error:     updated.ErrorMessage,
	}, nil
}

// refreshOutcome reloads the row after losing a recording race and reports
// its settled state
func (d *Dispatcher) refreshOutcome(ctx context.Context, webhookID string) (*Outcome, error) {
	row, err := d.store.GetEventByWebhookID(ctx, webhookID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload webhook event: %w", err)
	}
	if row == nil {
		return nil, domain.ErrEventNotFound
	}
	return outcomeFromRow(row), nil
}

// outcomeFromRow reports the settled (or in-flight) state of an existing row
// without running any part of the pipeline
func outcomeFromRow(row *schema.WebhookEvent) *Outcome {
	outcome := &Outcome{WebhookID: row.WebhookID, ProcessedAt: row.ProcessedAt}

	switch row.Status {
	case domain.WebhookStatusSuccess:
		outcome.Status = OutcomeAlreadyProcessed
		outcome.Message = "webhook event was already processed"
	case domain.WebhookStatusProcessing:
		outcome.Status = OutcomeProcessing
		outcome.Message = "webhook event is currently being processed"
	case domain.WebhookStatusPending:
		outcome.Status = OutcomePending
		outcome.Message = "webhook event is awaiting processing"
	case domain.WebhookStatusIgnored:
		outcome.Status = OutcomeIgnored
		outcome.Message = row.ErrorMessage
	case domain.WebhookStatusInvalid:
		outcome.Status = OutcomeInvalid
		outcome.Error = row.ErrorMessage
	case domain.WebhookStatusFailed:
		outcome.Status = OutcomeFailed
		outcome.Error = row.ErrorMessage
	}

	return outcome
}
