package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/helioshq/helios-webhooks/internal/domain"
	"github.com/helioshq/helios-webhooks/internal/store/schema"
)

// maxErrorMessageLength bounds the stored error text so a pathological
// collaborator response cannot bloat the row
const maxErrorMessageLength = 1024

type pgStore struct {
	db *gorm.DB
}

// NewPGStore creates a new PostgreSQL store instance
func NewPGStore(db *gorm.DB) Store {
	return &pgStore{db: db}
}

// ConfigureConnectionPool configures the connection pool settings for a GORM database connection.
// It accesses the underlying *sql.DB and sets the pool configuration.
// If any of the pool settings are 0 or empty, reasonable defaults are used:
//   - MaxOpenConns: 20 (if 0)
//   - MaxIdleConns: 5 (if 0)
//   - ConnMaxLifetime: 5 minutes (if 0)
//   - ConnMaxIdleTime: 10 minutes (if 0)
func ConfigureConnectionPool(db *gorm.DB, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime =
		NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime)

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return nil
}

// NormalizeConnectionPoolSettings applies defaults and clamps pool settings into safe values.
//
// Defaults (when zero):
//   - MaxOpenConns: 20
//   - MaxIdleConns: 5
//   - ConnMaxLifetime: 5 minutes
//   - ConnMaxIdleTime: 10 minutes
//
// Notes:
//   - database/sql treats MaxOpenConns=0 as "unlimited"
//   - database/sql treats MaxIdleConns=0 as "no idle connections"
func NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) (int, int, time.Duration, time.Duration) {
	// Set defaults if not provided
	if maxOpenConns == 0 {
		maxOpenConns = 20
	}
	if maxIdleConns == 0 {
		maxIdleConns = 5
	}
	if connMaxLifetime == 0 {
		connMaxLifetime = 5 * time.Minute
	}
	if connMaxIdleTime == 0 {
		connMaxIdleTime = 10 * time.Minute
	}

	// Ensure MaxIdleConns doesn't exceed MaxOpenConns
	if maxIdleConns > maxOpenConns {
		maxIdleConns = maxOpenConns
	}

	return maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime
}

// GetOrCreateEvent inserts a new event row for the delivery, or returns the
// existing row when the provider already delivered this webhook_id
func (s *pgStore) GetOrCreateEvent(ctx context.Context, input CreateWebhookEventInput) (*schema.WebhookEvent, bool, error) {
	now := time.Now().UTC()
	event := schema.WebhookEvent{
		WebhookID:  input.WebhookID,
		EventType:  input.EventType,
		Status:     domain.WebhookStatusPending,
		MaxRetries: input.MaxRetries,
		RawData:    input.RawData,
		SourceIP:   input.SourceIP,
		UserAgent:  input.UserAgent,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if event.MaxRetries <= 0 {
		event.MaxRetries = domain.DEFAULT_MAX_RETRIES
	}

	// Use ON CONFLICT DO NOTHING for webhook_id (unique constraint) so provider
	// redeliveries and concurrent duplicates never produce a second row
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "webhook_id"}},
		DoNothing: true,
	}).Clauses(clause.Returning{Columns: []clause.Column{}}).
		Create(&event).Error
	if err != nil {
		return nil, false, fmt.Errorf("failed to create webhook event: %w", err)
	}

	// If event.ID is 0 the insert was skipped, so fetch the winner's row
	if event.ID == 0 {
		var existing schema.WebhookEvent
		if err := s.db.WithContext(ctx).Where("webhook_id = ?", input.WebhookID).First(&existing).Error; err != nil {
			return nil, false, fmt.Errorf("failed to get existing webhook event: %w", err)
		}
		return &existing, true, nil
	}

	return &event, false, nil
}

// GetEventByWebhookID retrieves an event by its provider webhook ID
func (s *pgStore) GetEventByWebhookID(ctx context.Context, webhookID string) (*schema.WebhookEvent, error) {
	var event schema.WebhookEvent
	err := s.db.WithContext(ctx).Where("webhook_id = ?", webhookID).First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get webhook event: %w", err)
	}
	return &event, nil
}

// lockEventForUpdate loads the event row for webhookID inside tx with a
// SELECT ... FOR UPDATE lock
func lockEventForUpdate(tx *gorm.DB, webhookID string) (*schema.WebhookEvent, error) {
	var event schema.WebhookEvent
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("webhook_id = ?", webhookID).
		First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to lock webhook event: %w", err)
	}
	return &event, nil
}

// TransitionEvent moves an event to a new status under a row lock. Illegal
// transitions return a *domain.TransitionError naming both states.
func (s *pgStore) TransitionEvent(ctx context.Context, webhookID string, to domain.WebhookStatus) (*schema.WebhookEvent, error) {
	var event *schema.WebhookEvent
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		event, err = lockEventForUpdate(tx, webhookID)
		if err != nil {
			return err
		}

		if !domain.CanTransition(event.Status, to) {
			return domain.NewTransitionError(event.Status, to)
		}

		now := time.Now().UTC()
		updates := map[string]interface{}{
			"status":     to,
			"updated_at": now,
		}
		// Terminal outcomes stamp processed_at no matter which path set them
		if domain.IsTerminal(to) {
			updates["processed_at"] = now
			event.ProcessedAt = &now
		}

		if err := tx.Model(&schema.WebhookEvent{}).
			Where("id = ?", event.ID).
			Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update webhook event status: %w", err)
		}

		event.Status = to
		event.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}
	return event, nil
}

// ClaimEventForRetry atomically flips a retryable FAILED event to PROCESSING.
// It returns (nil, nil) when the event is gone, already claimed by a racing
// consumer, terminal, or out of retry budget. This check-and-flip under a row
// lock is the single mechanism preventing double-processing of one event.
func (s *pgStore) ClaimEventForRetry(ctx context.Context, webhookID string) (*schema.WebhookEvent, error) {
	var event *schema.WebhookEvent
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var locked schema.WebhookEvent
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("webhook_id = ?", webhookID).
			First(&locked).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return fmt.Errorf("failed to lock webhook event: %w", err)
		}

		if locked.Status != domain.WebhookStatusFailed || locked.RetryCount >= locked.MaxRetries {
			return nil
		}

		now := time.Now().UTC()
		updates := map[string]interface{}{
			"status":        domain.WebhookStatusProcessing,
			"next_retry_at": nil,
			"updated_at":    now,
		}
		if err := tx.Model(&schema.WebhookEvent{}).
			Where("id = ?", locked.ID).
			Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to claim webhook event: %w", err)
		}

		locked.Status = domain.WebhookStatusProcessing
		locked.NextRetryAt = nil
		locked.UpdatedAt = now
		event = &locked
		return nil
	})
	if err != nil {
		return nil, err
	}
	return event, nil
}

// RecordEventSuccess marks an event SUCCESS and stores the handler's result.
// Stale failure bookkeeping from earlier attempts is cleared.
func (s *pgStore) RecordEventSuccess(ctx context.Context, webhookID string, processedData datatypes.JSON) (*schema.WebhookEvent, error) {
	var event *schema.WebhookEvent
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		event, err = lockEventForUpdate(tx, webhookID)
		if err != nil {
			return err
		}

		if !domain.CanTransition(event.Status, domain.WebhookStatusSuccess) {
			return domain.NewTransitionError(event.Status, domain.WebhookStatusSuccess)
		}

		now := time.Now().UTC()
		updates := map[string]interface{}{
			"status":        domain.WebhookStatusSuccess,
			"error_message": "",
			"error_details": nil,
			"next_retry_at": nil,
			"processed_at":  now,
			"updated_at":    now,
		}
		if len(processedData) > 0 {
			updates["processed_data"] = processedData
			event.ProcessedData = processedData
		}

		if err := tx.Model(&schema.WebhookEvent{}).
			Where("id = ?", event.ID).
			Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to record webhook event success: %w", err)
		}

		event.Status = domain.WebhookStatusSuccess
		event.ErrorMessage = ""
		event.ErrorDetails = nil
		event.NextRetryAt = nil
		event.ProcessedAt = &now
		event.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}
	return event, nil
}

// RecordEventIgnored marks an event IGNORED, keeping the reason it was skipped
func (s *pgStore) RecordEventIgnored(ctx context.Context, webhookID string, reason string) (*schema.WebhookEvent, error) {
	return s.recordTerminalOutcome(ctx, webhookID, domain.WebhookStatusIgnored, reason)
}

// RecordEventInvalid marks an event INVALID with the rejection message
func (s *pgStore) RecordEventInvalid(ctx context.Context, webhookID string, message string) (*schema.WebhookEvent, error) {
	return s.recordTerminalOutcome(ctx, webhookID, domain.WebhookStatusInvalid, message)
}

// recordTerminalOutcome is the shared IGNORED/INVALID path: a locked, validated
// transition that stamps processed_at and files the outcome message
func (s *pgStore) recordTerminalOutcome(ctx context.Context, webhookID string, to domain.WebhookStatus, message string) (*schema.WebhookEvent, error) {
	if len(message) > maxErrorMessageLength {
		message = message[:maxErrorMessageLength]
	}

	var event *schema.WebhookEvent
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		event, err = lockEventForUpdate(tx, webhookID)
		if err != nil {
			return err
		}

		if !domain.CanTransition(event.Status, to) {
			return domain.NewTransitionError(event.Status, to)
		}

		now := time.Now().UTC()
		updates := map[string]interface{}{
			"status":        to,
			"error_message": message,
			"processed_at":  now,
			"updated_at":    now,
		}
		if err := tx.Model(&schema.WebhookEvent{}).
			Where("id = ?", event.ID).
			Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to record webhook event outcome: %w", err)
		}

		event.Status = to
		event.ErrorMessage = message
		event.ProcessedAt = &now
		event.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}
	return event, nil
}

// RecordEventFailure marks an event FAILED, increments its retry count and
// schedules the next attempt. Once retry_count reaches max_retries the event
// stays FAILED with next_retry_at NULL and is left for operator intervention.
func (s *pgStore) RecordEventFailure(ctx context.Context, webhookID string, errMsg string, details datatypes.JSON) (*schema.WebhookEvent, error) {
	if len(errMsg) > maxErrorMessageLength {
		errMsg = errMsg[:maxErrorMessageLength]
	}

	var event *schema.WebhookEvent
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		event, err = lockEventForUpdate(tx, webhookID)
		if err != nil {
			return err
		}

		if !domain.CanTransition(event.Status, domain.WebhookStatusFailed) {
			return domain.NewTransitionError(event.Status, domain.WebhookStatusFailed)
		}

		now := time.Now().UTC()
		retryCount := event.RetryCount + 1

		updates := map[string]interface{}{
			"status":        domain.WebhookStatusFailed,
			"retry_count":   retryCount,
			"error_message": errMsg,
			"updated_at":    now,
		}
		if len(details) > 0 {
			updates["error_details"] = details
			event.ErrorDetails = details
		}

		if retryCount >= event.MaxRetries {
			updates["next_retry_at"] = nil
			event.NextRetryAt = nil
		} else {
			nextRetryAt := now.Add(domain.ComputeBackoff(retryCount))
			updates["next_retry_at"] = nextRetryAt
			event.NextRetryAt = &nextRetryAt
		}

		if err := tx.Model(&schema.WebhookEvent{}).
			Where("id = ?", event.ID).
			Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to record webhook event failure: %w", err)
		}

		event.Status = domain.WebhookStatusFailed
		event.RetryCount = retryCount
		event.ErrorMessage = errMsg
		event.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}
	return event, nil
}

// ListDueRetryEvents returns FAILED events with retry budget left whose backoff
// deadline has passed, oldest deadline first
func (s *pgStore) ListDueRetryEvents(ctx context.Context, now time.Time, limit int) ([]*schema.WebhookEvent, error) {
	var events []*schema.WebhookEvent
	err := s.db.WithContext(ctx).
		Where("status = ?", domain.WebhookStatusFailed).
		Where("retry_count < max_retries").
		Where("next_retry_at IS NOT NULL AND next_retry_at <= ?", now).
		Order("next_retry_at ASC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list due retry events: %w", err)
	}
	return events, nil
}

// ListStaleProcessingEvents returns PROCESSING events untouched since the
// cutoff, presumed orphaned by a crashed worker
func (s *pgStore) ListStaleProcessingEvents(ctx context.Context, cutoff time.Time, limit int) ([]*schema.WebhookEvent, error) {
	var events []*schema.WebhookEvent
	err := s.db.WithContext(ctx).
		Where("status = ?", domain.WebhookStatusProcessing).
		Where("updated_at < ?", cutoff).
		Order("updated_at ASC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list stale processing events: %w", err)
	}
	return events, nil
}

// ListFailedEvents returns the most recently received FAILED events
func (s *pgStore) ListFailedEvents(ctx context.Context, limit int) ([]*schema.WebhookEvent, error) {
	var events []*schema.WebhookEvent
	err := s.db.WithContext(ctx).
		Where("status = ?", domain.WebhookStatusFailed).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list failed events: %w", err)
	}
	return events, nil
}

// GetEventStats aggregates outcome counts for events created since the given time
func (s *pgStore) GetEventStats(ctx context.Context, since time.Time) (*EventStats, error) {
	var rows []struct {
		Status domain.WebhookStatus
		Count  int64
	}

	err := s.db.WithContext(ctx).
		Model(&schema.WebhookEvent{}).
		Select("status, COUNT(*) AS count").
		Where("created_at >= ?", since).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate webhook event stats: %w", err)
	}

	stats := &EventStats{}
	for _, row := range rows {
		stats.Total += row.Count
		switch row.Status {
		case domain.WebhookStatusPending:
			stats.Pending = row.Count
		case domain.WebhookStatusProcessing:
			stats.Processing = row.Count
		case domain.WebhookStatusSuccess:
			stats.Success = row.Count
		case domain.WebhookStatusFailed:
			stats.Failed = row.Count
		case domain.WebhookStatusIgnored:
			stats.Ignored = row.Count
		case domain.WebhookStatusInvalid:
			stats.Invalid = row.Count
		}
	}

	if denom := stats.Success + stats.Failed; denom > 0 {
		stats.SuccessRate = float64(stats.Success) / float64(denom)
	}

	return stats, nil
}
