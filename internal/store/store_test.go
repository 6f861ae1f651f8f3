package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/helioshq/helios-webhooks/internal/domain"
	"github.com/helioshq/helios-webhooks/internal/store/schema"
)

// =============================================================================
// Test Data Builders
// =============================================================================

// buildTestEventInput creates a delivery input with a realistic provider payload
func buildTestEventInput(webhookID, eventType string) CreateWebhookEventInput {
	payload := map[string]interface{}{
		"data":   map[string]interface{}{"id": "user_2NNEqL2nrIRdJ194ndJqAFwEfxC", "object": "user"},
		"object": "event",
		"type":   eventType,
	}
	raw, _ := json.Marshal(payload)

	return CreateWebhookEventInput{
		WebhookID: webhookID,
		EventType: eventType,
		RawData:   raw,
		SourceIP:  "203.0.113.7",
		UserAgent: "Svix-Webhooks/1.21",
	}
}

// seedPendingEvent inserts a fresh pending event
func seedPendingEvent(t *testing.T, store Store, webhookID, eventType string) *schema.WebhookEvent {
	event, existed, err := store.GetOrCreateEvent(context.Background(), buildTestEventInput(webhookID, eventType))
	require.NoError(t, err)
	require.False(t, existed)
	return event
}

// seedProcessingEvent inserts an event and advances it to processing
func seedProcessingEvent(t *testing.T, store Store, webhookID, eventType string) *schema.WebhookEvent {
	seedPendingEvent(t, store, webhookID, eventType)
	event, err := store.TransitionEvent(context.Background(), webhookID, domain.WebhookStatusProcessing)
	require.NoError(t, err)
	return event
}

// seedFailedEvent inserts an event and fails it the given number of times,
// claiming it back into processing between failures
func seedFailedEvent(t *testing.T, store Store, webhookID, eventType string, failures int) *schema.WebhookEvent {
	ctx := context.Background()
	event := seedProcessingEvent(t, store, webhookID, eventType)

	for i := 0; i < failures; i++ {
		if i > 0 {
			claimed, err := store.ClaimEventForRetry(ctx, webhookID)
			require.NoError(t, err)
			require.NotNil(t, claimed)
		}
		var err error
		event, err = store.RecordEventFailure(ctx, webhookID, fmt.Sprintf("attempt %d timed out", i+1), nil)
		require.NoError(t, err)
	}
	return event
}

// =============================================================================
// Test: GetOrCreateEvent
// =============================================================================

func testGetOrCreateEvent(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("new delivery creates a pending row", func(t *testing.T) {
		input := buildTestEventInput("msg_2l5gVdbQnTrrTVZn9RiJVHNyuYI", "user.created")

		event, existed, err := store.GetOrCreateEvent(ctx, input)
		require.NoError(t, err)
		require.NotNil(t, event)
		assert.False(t, existed)
		assert.NotZero(t, event.ID)
		assert.Equal(t, input.WebhookID, event.WebhookID)
		assert.Equal(t, input.EventType, event.EventType)
		assert.Equal(t, domain.WebhookStatusPending, event.Status)
		assert.Equal(t, 0, event.RetryCount)
		assert.Equal(t, domain.DEFAULT_MAX_RETRIES, event.MaxRetries)
		assert.Nil(t, event.NextRetryAt)
		assert.Nil(t, event.ProcessedAt)
		assert.JSONEq(t, string(input.RawData), string(event.RawData))
	})

	t.Run("redelivery of the same webhook_id returns the existing row", func(t *testing.T) {
		input := buildTestEventInput("msg_redelivered", "user.updated")

		first, existed, err := store.GetOrCreateEvent(ctx, input)
		require.NoError(t, err)
		require.False(t, existed)

		// A redelivery carries the same id but may arrive from a different address
		input.SourceIP = "198.51.100.4"
		second, existed, err := store.GetOrCreateEvent(ctx, input)
		require.NoError(t, err)
		assert.True(t, existed)
		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, first.SourceIP, second.SourceIP)
	})

	t.Run("redelivery preserves the existing status and bookkeeping", func(t *testing.T) {
		input := buildTestEventInput("msg_redelivered_after_failure", "user.deleted")
		seedFailedEvent(t, store, input.WebhookID, input.EventType, 1)

		event, existed, err := store.GetOrCreateEvent(ctx, input)
		require.NoError(t, err)
		assert.True(t, existed)
		assert.Equal(t, domain.WebhookStatusFailed, event.Status)
		assert.Equal(t, 1, event.RetryCount)
	})

	t.Run("explicit retry budget overrides the default", func(t *testing.T) {
		input := buildTestEventInput("msg_custom_budget", "organization.created")
		input.MaxRetries = 7

		event, _, err := store.GetOrCreateEvent(ctx, input)
		require.NoError(t, err)
		assert.Equal(t, 7, event.MaxRetries)
	})
}

// =============================================================================
// Test: GetEventByWebhookID
// =============================================================================

func testGetEventByWebhookID(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("returns the event when present", func(t *testing.T) {
		seeded := seedPendingEvent(t, store, "msg_lookup", "session.created")

		event, err := store.GetEventByWebhookID(ctx, "msg_lookup")
		require.NoError(t, err)
		require.NotNil(t, event)
		assert.Equal(t, seeded.ID, event.ID)
		assert.Equal(t, "session.created", event.EventType)
	})

	t.Run("returns nil without error when absent", func(t *testing.T) {
		event, err := store.GetEventByWebhookID(ctx, "msg_never_delivered")
		require.NoError(t, err)
		assert.Nil(t, event)
	})
}

// =============================================================================
// Test: TransitionEvent
// =============================================================================

func testTransitionEvent(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("pending to processing", func(t *testing.T) {
		seedPendingEvent(t, store, "msg_to_processing", "user.created")

		event, err := store.TransitionEvent(ctx, "msg_to_processing", domain.WebhookStatusProcessing)
		require.NoError(t, err)
		assert.Equal(t, domain.WebhookStatusProcessing, event.Status)
		assert.Nil(t, event.ProcessedAt)
	})

	t.Run("transition into a terminal status stamps processed_at", func(t *testing.T) {
		seedPendingEvent(t, store, "msg_to_ignored", "crypto.wallet.created")

		event, err := store.TransitionEvent(ctx, "msg_to_ignored", domain.WebhookStatusIgnored)
		require.NoError(t, err)
		assert.Equal(t, domain.WebhookStatusIgnored, event.Status)
		require.NotNil(t, event.ProcessedAt)
		assert.WithinDuration(t, time.Now().UTC(), *event.ProcessedAt, 10*time.Second)
	})

	t.Run("illegal transition is rejected naming both states", func(t *testing.T) {
		seedPendingEvent(t, store, "msg_illegal_jump", "user.created")

		_, err := store.TransitionEvent(ctx, "msg_illegal_jump", domain.WebhookStatusSuccess)
		require.Error(t, err)

		var transitionErr *domain.TransitionError
		require.ErrorAs(t, err, &transitionErr)
		assert.Equal(t, domain.WebhookStatusPending, transitionErr.From)
		assert.Equal(t, domain.WebhookStatusSuccess, transitionErr.To)
		assert.Contains(t, err.Error(), "pending")
		assert.Contains(t, err.Error(), "success")
	})

	t.Run("terminal rows refuse further transitions", func(t *testing.T) {
		seedPendingEvent(t, store, "msg_terminal_locked", "user.created")
		_, err := store.RecordEventInvalid(ctx, "msg_terminal_locked", "Invalid webhook signature")
		require.NoError(t, err)

		_, err = store.TransitionEvent(ctx, "msg_terminal_locked", domain.WebhookStatusProcessing)
		var transitionErr *domain.TransitionError
		require.ErrorAs(t, err, &transitionErr)
		assert.Equal(t, domain.WebhookStatusInvalid, transitionErr.From)
	})

	t.Run("unknown webhook_id", func(t *testing.T) {
		_, err := store.TransitionEvent(ctx, "msg_ghost", domain.WebhookStatusProcessing)
		require.ErrorIs(t, err, domain.ErrEventNotFound)
	})
}

// =============================================================================
// Test: ClaimEventForRetry
// =============================================================================

func testClaimEventForRetry(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("claims a retryable failed event", func(t *testing.T) {
		seedFailedEvent(t, store, "msg_claimable", "user.updated", 1)

		event, err := store.ClaimEventForRetry(ctx, "msg_claimable")
		require.NoError(t, err)
		require.NotNil(t, event)
		assert.Equal(t, domain.WebhookStatusProcessing, event.Status)
		assert.Nil(t, event.NextRetryAt)
		assert.Equal(t, 1, event.RetryCount)
	})

	t.Run("refuses an event that is not failed", func(t *testing.T) {
		seedProcessingEvent(t, store, "msg_midflight", "user.created")

		event, err := store.ClaimEventForRetry(ctx, "msg_midflight")
		require.NoError(t, err)
		assert.Nil(t, event)
	})

	t.Run("refuses a terminal event", func(t *testing.T) {
		seedProcessingEvent(t, store, "msg_done", "user.created")
		_, err := store.RecordEventSuccess(ctx, "msg_done", nil)
		require.NoError(t, err)

		event, err := store.ClaimEventForRetry(ctx, "msg_done")
		require.NoError(t, err)
		assert.Nil(t, event)
	})

	t.Run("refuses an event with no retry budget left", func(t *testing.T) {
		input := buildTestEventInput("msg_spent", "user.deleted")
		input.MaxRetries = 1
		_, _, err := store.GetOrCreateEvent(ctx, input)
		require.NoError(t, err)
		_, err = store.TransitionEvent(ctx, "msg_spent", domain.WebhookStatusProcessing)
		require.NoError(t, err)
		_, err = store.RecordEventFailure(ctx, "msg_spent", "collaborator unreachable", nil)
		require.NoError(t, err)

		event, err := store.ClaimEventForRetry(ctx, "msg_spent")
		require.NoError(t, err)
		assert.Nil(t, event)
	})

	t.Run("unknown webhook_id is not an error", func(t *testing.T) {
		event, err := store.ClaimEventForRetry(ctx, "msg_ghost")
		require.NoError(t, err)
		assert.Nil(t, event)
	})
}

// =============================================================================
// Test: RecordEventSuccess
// =============================================================================

func testRecordEventSuccess(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("marks a processing event success with the handler result", func(t *testing.T) {
		seedProcessingEvent(t, store, "msg_success", "user.created")
		processed := datatypes.JSON(`{"action":"user_created","user_id":"usr_42"}`)

		event, err := store.RecordEventSuccess(ctx, "msg_success", processed)
		require.NoError(t, err)
		assert.Equal(t, domain.WebhookStatusSuccess, event.Status)
		assert.JSONEq(t, string(processed), string(event.ProcessedData))
		require.NotNil(t, event.ProcessedAt)
		assert.Nil(t, event.NextRetryAt)
	})

	t.Run("clears failure bookkeeping from earlier attempts", func(t *testing.T) {
		seedFailedEvent(t, store, "msg_recovered", "user.updated", 1)
		claimed, err := store.ClaimEventForRetry(ctx, "msg_recovered")
		require.NoError(t, err)
		require.NotNil(t, claimed)

		event, err := store.RecordEventSuccess(ctx, "msg_recovered", nil)
		require.NoError(t, err)
		assert.Equal(t, domain.WebhookStatusSuccess, event.Status)
		assert.Empty(t, event.ErrorMessage)
		assert.Nil(t, event.NextRetryAt)
		// The retry count stays as a record of how many attempts it took
		assert.Equal(t, 1, event.RetryCount)
	})

	t.Run("rejects success from pending", func(t *testing.T) {
		seedPendingEvent(t, store, "msg_too_eager", "user.created")

		_, err := store.RecordEventSuccess(ctx, "msg_too_eager", nil)
		var transitionErr *domain.TransitionError
		require.ErrorAs(t, err, &transitionErr)
	})

	t.Run("unknown webhook_id", func(t *testing.T) {
		_, err := store.RecordEventSuccess(ctx, "msg_ghost", nil)
		require.ErrorIs(t, err, domain.ErrEventNotFound)
	})
}

// =============================================================================
// Test: RecordEventIgnored / RecordEventInvalid
// =============================================================================

func testRecordEventIgnored(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("marks a pending event ignored with the reason", func(t *testing.T) {
		seedPendingEvent(t, store, "msg_unhandled", "subscription.past_due")

		event, err := store.RecordEventIgnored(ctx, "msg_unhandled", "no handler registered for event type subscription.past_due")
		require.NoError(t, err)
		assert.Equal(t, domain.WebhookStatusIgnored, event.Status)
		assert.Contains(t, event.ErrorMessage, "subscription.past_due")
		require.NotNil(t, event.ProcessedAt)
	})

	t.Run("rejects ignoring an event already in flight", func(t *testing.T) {
		seedProcessingEvent(t, store, "msg_inflight_ignore", "user.created")

		_, err := store.RecordEventIgnored(ctx, "msg_inflight_ignore", "late ignore")
		var transitionErr *domain.TransitionError
		require.ErrorAs(t, err, &transitionErr)
	})
}

func testRecordEventInvalid(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("marks a pending event invalid with the rejection message", func(t *testing.T) {
		seedPendingEvent(t, store, "msg_forged", "user.created")

		event, err := store.RecordEventInvalid(ctx, "msg_forged", "Invalid webhook signature")
		require.NoError(t, err)
		assert.Equal(t, domain.WebhookStatusInvalid, event.Status)
		assert.Equal(t, "Invalid webhook signature", event.ErrorMessage)
		require.NotNil(t, event.ProcessedAt)
	})

	t.Run("invalid is terminal", func(t *testing.T) {
		seedPendingEvent(t, store, "msg_forged_twice", "user.created")
		_, err := store.RecordEventInvalid(ctx, "msg_forged_twice", "Invalid webhook signature")
		require.NoError(t, err)

		_, err = store.RecordEventInvalid(ctx, "msg_forged_twice", "Invalid webhook signature")
		var transitionErr *domain.TransitionError
		require.ErrorAs(t, err, &transitionErr)
	})
}

// =============================================================================
// Test: RecordEventFailure
// =============================================================================

func testRecordEventFailure(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("first failure schedules a retry two minutes out", func(t *testing.T) {
		seedProcessingEvent(t, store, "msg_first_failure", "user.created")
		details := datatypes.JSON(`{"collaborator":"usersync","status_code":503}`)

		event, err := store.RecordEventFailure(ctx, "msg_first_failure", "usersync returned 503", details)
		require.NoError(t, err)
		assert.Equal(t, domain.WebhookStatusFailed, event.Status)
		assert.Equal(t, 1, event.RetryCount)
		assert.Equal(t, "usersync returned 503", event.ErrorMessage)
		assert.JSONEq(t, string(details), string(event.ErrorDetails))
		require.NotNil(t, event.NextRetryAt)
		assert.WithinDuration(t, time.Now().UTC().Add(2*time.Minute), *event.NextRetryAt, 10*time.Second)
		assert.Nil(t, event.ProcessedAt)
	})

	t.Run("backoff doubles on each consecutive failure", func(t *testing.T) {
		seedFailedEvent(t, store, "msg_backing_off", "user.updated", 1)
		_, err := store.ClaimEventForRetry(ctx, "msg_backing_off")
		require.NoError(t, err)

		event, err := store.RecordEventFailure(ctx, "msg_backing_off", "still failing", nil)
		require.NoError(t, err)
		assert.Equal(t, 2, event.RetryCount)
		require.NotNil(t, event.NextRetryAt)
		assert.WithinDuration(t, time.Now().UTC().Add(4*time.Minute), *event.NextRetryAt, 10*time.Second)
	})

	t.Run("exhausting the budget parks the event with no schedule", func(t *testing.T) {
		input := buildTestEventInput("msg_exhausted", "user.deleted")
		input.MaxRetries = 2
		_, _, err := store.GetOrCreateEvent(ctx, input)
		require.NoError(t, err)
		_, err = store.TransitionEvent(ctx, "msg_exhausted", domain.WebhookStatusProcessing)
		require.NoError(t, err)

		event, err := store.RecordEventFailure(ctx, "msg_exhausted", "first", nil)
		require.NoError(t, err)
		require.NotNil(t, event.NextRetryAt)

		_, err = store.ClaimEventForRetry(ctx, "msg_exhausted")
		require.NoError(t, err)
		event, err = store.RecordEventFailure(ctx, "msg_exhausted", "second", nil)
		require.NoError(t, err)
		assert.Equal(t, domain.WebhookStatusFailed, event.Status)
		assert.Equal(t, 2, event.RetryCount)
		assert.Nil(t, event.NextRetryAt)
	})

	t.Run("oversized error messages are truncated", func(t *testing.T) {
		seedProcessingEvent(t, store, "msg_noisy_failure", "user.created")

		event, err := store.RecordEventFailure(ctx, "msg_noisy_failure", strings.Repeat("x", 5000), nil)
		require.NoError(t, err)
		assert.Len(t, event.ErrorMessage, 1024)
	})

	t.Run("rejects failure from pending", func(t *testing.T) {
		seedPendingEvent(t, store, "msg_never_started", "user.created")

		_, err := store.RecordEventFailure(ctx, "msg_never_started", "boom", nil)
		var transitionErr *domain.TransitionError
		require.ErrorAs(t, err, &transitionErr)
	})
}

// =============================================================================
// Test: ListDueRetryEvents
// =============================================================================

func testListDueRetryEvents(t *testing.T, store Store) {
	ctx := context.Background()

	// due ~2m out
	seedFailedEvent(t, store, "msg_due_soon", "user.created", 1)
	// due ~4m out
	seedFailedEvent(t, store, "msg_due_later", "user.updated", 2)
	// exhausted, never scheduled again
	input := buildTestEventInput("msg_parked", "user.deleted")
	input.MaxRetries = 1
	_, _, err := store.GetOrCreateEvent(ctx, input)
	require.NoError(t, err)
	_, err = store.TransitionEvent(ctx, "msg_parked", domain.WebhookStatusProcessing)
	require.NoError(t, err)
	_, err = store.RecordEventFailure(ctx, "msg_parked", "gone for good", nil)
	require.NoError(t, err)
	// healthy event, never failed
	seedProcessingEvent(t, store, "msg_healthy", "session.created")
	_, err = store.RecordEventSuccess(ctx, "msg_healthy", nil)
	require.NoError(t, err)

	t.Run("nothing is due before the first deadline", func(t *testing.T) {
		events, err := store.ListDueRetryEvents(ctx, time.Now().UTC(), 10)
		require.NoError(t, err)
		assert.Empty(t, events)
	})

	t.Run("deadlines are honored in order as the clock advances", func(t *testing.T) {
		events, err := store.ListDueRetryEvents(ctx, time.Now().UTC().Add(3*time.Minute), 10)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, "msg_due_soon", events[0].WebhookID)

		events, err = store.ListDueRetryEvents(ctx, time.Now().UTC().Add(5*time.Minute), 10)
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, "msg_due_soon", events[0].WebhookID)
		assert.Equal(t, "msg_due_later", events[1].WebhookID)
	})

	t.Run("exhausted events are never scheduled", func(t *testing.T) {
		events, err := store.ListDueRetryEvents(ctx, time.Now().UTC().Add(24*time.Hour), 10)
		require.NoError(t, err)
		for _, event := range events {
			assert.NotEqual(t, "msg_parked", event.WebhookID)
		}
	})

	t.Run("limit bounds the batch", func(t *testing.T) {
		events, err := store.ListDueRetryEvents(ctx, time.Now().UTC().Add(24*time.Hour), 1)
		require.NoError(t, err)
		assert.Len(t, events, 1)
	})
}

// =============================================================================
// Test: ListStaleProcessingEvents
// =============================================================================

func testListStaleProcessingEvents(t *testing.T, store Store) {
	ctx := context.Background()

	seedProcessingEvent(t, store, "msg_stuck", "user.created")
	seedPendingEvent(t, store, "msg_waiting", "user.updated")
	seedProcessingEvent(t, store, "msg_finished", "user.deleted")
	_, err := store.RecordEventSuccess(ctx, "msg_finished", nil)
	require.NoError(t, err)

	t.Run("finds processing rows older than the cutoff", func(t *testing.T) {
		events, err := store.ListStaleProcessingEvents(ctx, time.Now().UTC().Add(time.Minute), 10)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, "msg_stuck", events[0].WebhookID)
	})

	t.Run("fresh processing rows are left alone", func(t *testing.T) {
		events, err := store.ListStaleProcessingEvents(ctx, time.Now().UTC().Add(-10*time.Minute), 10)
		require.NoError(t, err)
		assert.Empty(t, events)
	})
}

// =============================================================================
// Test: ListFailedEvents
// =============================================================================

func testListFailedEvents(t *testing.T, store Store) {
	ctx := context.Background()

	seedFailedEvent(t, store, "msg_failed_oldest", "user.created", 1)
	seedFailedEvent(t, store, "msg_failed_middle", "user.updated", 1)
	seedFailedEvent(t, store, "msg_failed_newest", "user.deleted", 1)
	seedProcessingEvent(t, store, "msg_fine", "session.created")
	_, err := store.RecordEventSuccess(ctx, "msg_fine", nil)
	require.NoError(t, err)

	t.Run("returns only failed events, newest first", func(t *testing.T) {
		events, err := store.ListFailedEvents(ctx, 10)
		require.NoError(t, err)
		require.Len(t, events, 3)
		assert.Equal(t, "msg_failed_newest", events[0].WebhookID)
		assert.Equal(t, "msg_failed_middle", events[1].WebhookID)
		assert.Equal(t, "msg_failed_oldest", events[2].WebhookID)
	})

	t.Run("limit bounds the page", func(t *testing.T) {
		events, err := store.ListFailedEvents(ctx, 2)
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, "msg_failed_newest", events[0].WebhookID)
	})
}

// =============================================================================
// Test: GetEventStats
// =============================================================================

func testGetEventStats(t *testing.T, store Store) {
	ctx := context.Background()

	// 2 success, 1 failed, 1 pending, 1 ignored, 1 invalid
	seedProcessingEvent(t, store, "msg_stat_ok_1", "user.created")
	_, err := store.RecordEventSuccess(ctx, "msg_stat_ok_1", nil)
	require.NoError(t, err)
	seedProcessingEvent(t, store, "msg_stat_ok_2", "user.updated")
	_, err = store.RecordEventSuccess(ctx, "msg_stat_ok_2", nil)
	require.NoError(t, err)
	seedFailedEvent(t, store, "msg_stat_bad", "user.deleted", 1)
	seedPendingEvent(t, store, "msg_stat_pending", "session.created")
	seedPendingEvent(t, store, "msg_stat_ignored", "subscription.updated")
	_, err = store.RecordEventIgnored(ctx, "msg_stat_ignored", "no handler registered for event type subscription.updated")
	require.NoError(t, err)
	seedPendingEvent(t, store, "msg_stat_invalid", "user.created")
	_, err = store.RecordEventInvalid(ctx, "msg_stat_invalid", "Invalid webhook signature")
	require.NoError(t, err)

	t.Run("counts by status over the window", func(t *testing.T) {
		stats, err := store.GetEventStats(ctx, time.Now().UTC().Add(-time.Hour))
		require.NoError(t, err)
		assert.Equal(t, int64(6), stats.Total)
		assert.Equal(t, int64(2), stats.Success)
		assert.Equal(t, int64(1), stats.Failed)
		assert.Equal(t, int64(1), stats.Pending)
		assert.Equal(t, int64(1), stats.Ignored)
		assert.Equal(t, int64(1), stats.Invalid)
		assert.Equal(t, int64(0), stats.Processing)
		assert.InDelta(t, 2.0/3.0, stats.SuccessRate, 0.0001)
	})

	t.Run("empty window reports zero rate", func(t *testing.T) {
		stats, err := store.GetEventStats(ctx, time.Now().UTC().Add(time.Hour))
		require.NoError(t, err)
		assert.Equal(t, int64(0), stats.Total)
		assert.Zero(t, stats.SuccessRate)
	})
}

// =============================================================================
// Test Suite Runner
// =============================================================================

// RunStoreTests runs the full store behavior suite against an implementation
func RunStoreTests(t *testing.T, initDB func(t *testing.T) Store, cleanupDB func(t *testing.T)) {
	tests := []struct {
		name string
		fn   func(*testing.T, Store)
	}{
		{"GetOrCreateEvent", testGetOrCreateEvent},
		{"GetEventByWebhookID", testGetEventByWebhookID},
		{"TransitionEvent", testTransitionEvent},
		{"ClaimEventForRetry", testClaimEventForRetry},
		{"RecordEventSuccess", testRecordEventSuccess},
		{"RecordEventIgnored", testRecordEventIgnored},
		{"RecordEventInvalid", testRecordEventInvalid},
		{"RecordEventFailure", testRecordEventFailure},
		{"ListDueRetryEvents", testListDueRetryEvents},
		{"ListStaleProcessingEvents", testListStaleProcessingEvents},
		{"ListFailedEvents", testListFailedEvents},
		{"GetEventStats", testGetEventStats},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := initDB(t)
			defer cleanupDB(t)
			tt.fn(t, store)
		})
	}
}
