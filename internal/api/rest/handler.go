package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/helioshq/helios-webhooks/internal/adapter"
	"github.com/helioshq/helios-webhooks/internal/api/rest/dto"
	"github.com/helioshq/helios-webhooks/internal/dispatch"
	"github.com/helioshq/helios-webhooks/internal/domain"
	"github.com/helioshq/helios-webhooks/internal/logger"
	"github.com/helioshq/helios-webhooks/internal/messaging"
	"github.com/helioshq/helios-webhooks/internal/signature"
	"github.com/helioshq/helios-webhooks/internal/store"
)

const (
	// missingHeadersMessage is returned when a delivery lacks any svix header.
	// The response stays 2xx so the provider does not mount a retry storm for
	// a delivery we could never verify.
	missingHeadersMessage = "Missing required webhook headers (svix-id, svix-timestamp, svix-signature)"

	// malformedPayloadMessage is returned for bodies that do not parse as JSON
	malformedPayloadMessage = "Malformed webhook payload"

	defaultFailedLimit = 50
	maxFailedLimit     = 200

	// statsWindow is the trailing window for the stats endpoint
	statsWindow = 24 * time.Hour
)

// InboundProcessor is the dispatcher surface the API needs
type InboundProcessor interface {
	// ProcessInbound runs the ingestion pipeline for one raw delivery
	ProcessInbound(ctx context.Context, rawBody []byte, delivery dispatch.Delivery) (*dispatch.Outcome, error)
}

// Handler defines the interface for REST API handlers
// This interface allows for easy mocking and testing
//
//go:generate mockgen -source=handler.go -destination=../../mocks/api_handler.go -package=mocks -mock_names=Handler=MockAPIHandler,InboundProcessor=MockInboundProcessor
type Handler interface {
	// IngestClerkWebhook accepts a provider delivery, verifies and processes it
	// POST /webhooks/clerk
	IngestClerkWebhook(c *gin.Context)

	// GetWebhookEvent retrieves a single webhook event by its webhook_id
	// GET /api/v1/webhooks/events/:webhook_id
	GetWebhookEvent(c *gin.Context)

	// ListFailedWebhookEvents retrieves the most recent FAILED events
	// GET /api/v1/webhooks/failures?limit=<limit>
	ListFailedWebhookEvents(c *gin.Context)

	// GetWebhookStats aggregates outcome counts over the trailing 24 hours
	// GET /api/v1/webhooks/stats
	GetWebhookStats(c *gin.Context)

	// RetryWebhookEvent enqueues a manual retry for a FAILED event
	// POST /api/v1/webhooks/events/:webhook_id/retry
	RetryWebhookEvent(c *gin.Context)

	// HealthCheck returns the health status of the API
	// GET /health
	HealthCheck(c *gin.Context)
}

// handler implements the Handler interface
type handler struct {
	processor InboundProcessor
	store     store.Store
	publisher messaging.Publisher
	clock     adapter.Clock
}

// NewHandler creates a new REST API handler
func NewHandler(processor InboundProcessor, st store.Store, publisher messaging.Publisher, clock adapter.Clock) Handler {
	return &handler{
		processor: processor,
		store:     st,
		publisher: publisher,
		clock:     clock,
	}
}

// IngestClerkWebhook accepts a provider delivery, verifies and processes it
func (h *handler) IngestClerkWebhook(c *gin.Context) {
	ctx := c.Request.Context()

	hdr := signature.Headers{
		ID:        c.GetHeader(domain.HEADER_WEBHOOK_ID),
		Timestamp: c.GetHeader(domain.HEADER_WEBHOOK_TIMESTAMP),
		Signature: c.GetHeader(domain.HEADER_WEBHOOK_SIGNATURE),
	}
	if hdr.ID == "" || hdr.Timestamp == "" || hdr.Signature == "" {
		logger.WarnCtx(ctx, "Webhook delivery missing required headers",
			zap.String("client_ip", c.ClientIP()),
		)
		c.JSON(http.StatusOK, dispatch.Outcome{
			Status: dispatch.OutcomeFailed,
			Error:  missingHeadersMessage,
		})
		return
	}

	rawBody, err := c.GetRawData()
	if err != nil {
		respondInternalError(c, err, "Failed to read webhook delivery body")
		return
	}

	outcome, err := h.processor.ProcessInbound(ctx, rawBody, dispatch.Delivery{
		Headers:   hdr,
		SourceIP:  c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		if errors.Is(err, dispatch.ErrMalformedPayload) {
			logger.WarnCtx(ctx, "Webhook delivery body failed to parse",
				zap.String("webhook_id", hdr.ID),
				zap.String("client_ip", c.ClientIP()),
			)
			c.JSON(http.StatusOK, dispatch.Outcome{
				Status: dispatch.OutcomeFailed,
				Error:  malformedPayloadMessage,
			})
			return
		}

		// Nothing durable was recorded; a non-2xx tells the provider to redeliver
		respondInternalError(c, err, "Failed to process webhook delivery",
			zap.String("webhook_id", hdr.ID),
		)
		return
	}

	c.JSON(http.StatusOK, outcome)
}

// GetWebhookEvent retrieves a single webhook event by its webhook_id
func (h *handler) GetWebhookEvent(c *gin.Context) {
	webhookID := c.Param("webhook_id")
	if webhookID == "" {
		respondBadRequest(c, "webhook_id is required")
		return
	}

	event, err := h.store.GetEventByWebhookID(c.Request.Context(), webhookID)
	if err != nil {
		respondInternalError(c, err, "Failed to get webhook event",
			zap.String("webhook_id", webhookID),
		)
		return
	}

	if event == nil {
		respondNotFound(c, "Webhook event not found")
		return
	}

	c.JSON(http.StatusOK, dto.MapWebhookEventToDTO(event))
}

// ListFailedWebhookEvents retrieves the most recent FAILED events
func (h *handler) ListFailedWebhookEvents(c *gin.Context) {
	limit := defaultFailedLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			respondValidationError(c, "limit must be a positive integer")
			return
		}
		limit = parsed
	}
	if limit > maxFailedLimit {
		limit = maxFailedLimit
	}

	events, err := h.store.ListFailedEvents(c.Request.Context(), limit)
	if err != nil {
		respondInternalError(c, err, "Failed to list failed webhook events")
		return
	}

	items := dto.MapWebhookEventsToDTO(events)
	c.JSON(http.StatusOK, dto.FailedEventsResponse{
		Events: items,
		Count:  len(items),
	})
}

// GetWebhookStats aggregates outcome counts over the trailing 24 hours
func (h *handler) GetWebhookStats(c *gin.Context) {
	since := h.clock.Now().UTC().Add(-statsWindow)

	stats, err := h.store.GetEventStats(c.Request.Context(), since)
	if err != nil {
		respondInternalError(c, err, "Failed to get webhook stats")
		return
	}

	c.JSON(http.StatusOK, dto.WebhookStatsResponse{
		EventStats: *stats,
		Since:      since,
	})
}

// RetryWebhookEvent enqueues a manual retry for a FAILED event
func (h *handler) RetryWebhookEvent(c *gin.Context) {
	ctx := c.Request.Context()

	webhookID := c.Param("webhook_id")
	if webhookID == "" {
		respondBadRequest(c, "webhook_id is required")
		return
	}

	event, err := h.store.GetEventByWebhookID(ctx, webhookID)
	if err != nil {
		respondInternalError(c, err, "Failed to get webhook event",
			zap.String("webhook_id", webhookID),
		)
		return
	}

	if event == nil {
		respondNotFound(c, "Webhook event not found")
		return
	}

	if event.Status != domain.WebhookStatusFailed {
		respondBadRequest(c, "Only failed webhook events can be retried",
			fmt.Sprintf("current status is %s", event.Status))
		return
	}

	if event.RetryCount >= event.MaxRetries {
		respondBadRequest(c, "Webhook event has exhausted its retry budget",
			fmt.Sprintf("%d of %d attempts used", event.RetryCount, event.MaxRetries))
		return
	}

	job := messaging.NewDispatchJob(h.clock, event.WebhookID, messaging.TriggerManual, event.RetryCount)
	if err := h.publisher.PublishDispatchJob(ctx, job); err != nil {
		respondInternalError(c, err, "Failed to enqueue manual retry",
			zap.String("webhook_id", webhookID),
		)
		return
	}

	logger.InfoCtx(ctx, "Manual retry enqueued",
		zap.String("webhook_id", webhookID),
		zap.String("job_id", job.JobID),
		zap.Int("attempt", job.Attempt),
	)

	c.JSON(http.StatusAccepted, dto.RetryQueuedResponse{
		Status:    "queued",
		WebhookID: webhookID,
	})
}

// HealthCheck returns the health status of the API
func (h *handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "helios-webhooks-api",
	})
}
