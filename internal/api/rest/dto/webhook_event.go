package dto

import (
	"encoding/json"
	"time"

	"github.com/helioshq/helios-webhooks/internal/store"
	"github.com/helioshq/helios-webhooks/internal/store/schema"
)

// WebhookEventResponse is the operator view of one stored webhook event
type WebhookEventResponse struct {
	WebhookID     string          `json:"webhook_id"`
	EventType     string          `json:"event_type"`
	Status        string          `json:"status"`
	RetryCount    int             `json:"retry_count"`
	MaxRetries    int             `json:"max_retries"`
	NextRetryAt   *time.Time      `json:"next_retry_at,omitempty"`
	ErrorMessage  string          `json:"error_message,omitempty"`
	ErrorDetails  json.RawMessage `json:"error_details,omitempty"`
	RawData       json.RawMessage `json:"raw_data,omitempty"`
	ProcessedData json.RawMessage `json:"processed_data,omitempty"`
	SourceIP      string          `json:"source_ip,omitempty"`
	UserAgent     string          `json:"user_agent,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	ProcessedAt   *time.Time      `json:"processed_at,omitempty"`
}

// FailedEventsResponse is a bounded list of FAILED events, newest first
type FailedEventsResponse struct {
	Events []*WebhookEventResponse `json:"items"`
	Count  int                     `json:"count"`
}

// WebhookStatsResponse aggregates outcome counts over a trailing window
type WebhookStatsResponse struct {
	store.EventStats
	Since time.Time `json:"since"`
}

// RetryQueuedResponse acknowledges a manual retry enqueue
type RetryQueuedResponse struct {
	Status    string `json:"status"`
	WebhookID string `json:"webhook_id"`
}

// MapWebhookEventToDTO maps a schema.WebhookEvent to WebhookEventResponse
func MapWebhookEventToDTO(event *schema.WebhookEvent) *WebhookEventResponse {
	return &WebhookEventResponse{
		WebhookID:     event.WebhookID,
		EventType:     event.EventType,
		Status:        string(event.Status),
		RetryCount:    event.RetryCount,
		MaxRetries:    event.MaxRetries,
		NextRetryAt:   event.NextRetryAt,
		ErrorMessage:  event.ErrorMessage,
		ErrorDetails:  json.RawMessage(event.ErrorDetails),
		RawData:       json.RawMessage(event.RawData),
		ProcessedData: json.RawMessage(event.ProcessedData),
		SourceIP:      event.SourceIP,
		UserAgent:     event.UserAgent,
		CreatedAt:     event.CreatedAt,
		UpdatedAt:     event.UpdatedAt,
		ProcessedAt:   event.ProcessedAt,
	}
}

// MapWebhookEventsToDTO maps a slice of schema.WebhookEvent to DTOs
func MapWebhookEventsToDTO(events []*schema.WebhookEvent) []*WebhookEventResponse {
	dtos := make([]*WebhookEventResponse, 0, len(events))
	for _, event := range events {
		dtos = append(dtos, MapWebhookEventToDTO(event))
	}
	return dtos
}
