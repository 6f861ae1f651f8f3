package dispatch

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/helioshq/helios-webhooks/internal/domain"
	"github.com/helioshq/helios-webhooks/internal/logger"
	"github.com/helioshq/helios-webhooks/internal/usersync"
)

// RegisterDefaultHandlers binds the built-in handler families to the event
// types they own
func RegisterDefaultHandlers(d *Dispatcher, users usersync.UserSync, roles usersync.RoleAssignment) {
	identity := NewIdentityHandler(users, roles)
	for _, eventType := range []string{
		domain.EventTypeUserCreated,
		domain.EventTypeUserUpdated,
		domain.EventTypeUserDeleted,
	} {
		d.Register(eventType, identity)
	}

	organization := NewOrganizationHandler()
	for _, eventType := range []string{
		domain.EventTypeOrganizationCreated,
		domain.EventTypeOrganizationUpdated,
		domain.EventTypeOrganizationDeleted,
		domain.EventTypeOrganizationMembershipCreated,
		domain.EventTypeOrganizationMembershipUpdated,
		domain.EventTypeOrganizationMembershipDeleted,
	} {
		d.Register(eventType, organization)
	}

	session := NewSessionHandler()
	for _, eventType := range []string{
		domain.EventTypeSessionCreated,
		domain.EventTypeSessionEnded,
	} {
		d.Register(eventType, session)
	}

	notification := NewNotificationHandler()
	for _, eventType := range []string{
		domain.EventTypeEmailCreated,
		domain.EventTypeSMSCreated,
	} {
		d.Register(eventType, notification)
	}
}

// IdentityHandler mirrors user lifecycle events into the core API
type IdentityHandler struct {
	users usersync.UserSync
	roles usersync.RoleAssignment
}

func NewIdentityHandler(users usersync.UserSync, roles usersync.RoleAssignment) *IdentityHandler {
	return &IdentityHandler{users: users, roles: roles}
}

func (h *IdentityHandler) Handle(ctx context.Context, event *domain.ProviderEvent) (*HandlerResult, error) {
	switch event.Type {
	case domain.EventTypeUserCreated:
		return h.syncUser(ctx, event, true)
	case domain.EventTypeUserUpdated:
		return h.syncUser(ctx, event, false)
	case domain.EventTypeUserDeleted:
		return h.deleteUser(ctx, event)
	default:
		return nil, fmt.Errorf("identity handler cannot process event type %s", event.Type)
	}
}

func (h *IdentityHandler) syncUser(ctx context.Context, event *domain.ProviderEvent, assignRole bool) (*HandlerResult, error) {
	syncResult, err := h.users.SyncFromProvider(ctx, event.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to sync user from provider: %w", err)
	}

	result := &HandlerResult{
		Action:   "user_synced",
		EntityID: syncResult.UserID,
		Message:  fmt.Sprintf("user %s synced (%s)", syncResult.UserID, syncResult.Status),
		Data: map[string]interface{}{
			"user_id":     syncResult.UserID,
			"sync_status": syncResult.Status,
		},
	}

	if !assignRole {
		return result, nil
	}

	// The role grant is enrichment on first sync. A failure here lands in the
	// result for operators but never fails the event itself.
	roleResult, err := h.roles.AssignInitialRole(ctx, syncResult.UserID, event.Data)
	if err != nil {
		logger.WarnCtx(ctx, "Initial role assignment failed",
			zap.String("user_id", syncResult.UserID),
			zap.Error(err))
		result.Data["role_assigned"] = false
		result.Data["role_error"] = err.Error()
		return result, nil
	}

	result.Data["role_assigned"] = roleResult.Success
	if roleResult.RoleAssigned != "" {
		result.Data["role"] = roleResult.RoleAssigned
	}
	return result, nil
}

func (h *IdentityHandler) deleteUser(ctx context.Context, event *domain.ProviderEvent) (*HandlerResult, error) {
	providerUserID := event.ResourceID()
	if providerUserID == "" {
		return nil, fmt.Errorf("user.deleted event is missing the user id")
	}

	existed, err := h.users.DeleteByProviderID(ctx, providerUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to delete user %s: %w", providerUserID, err)
	}

	message := fmt.Sprintf("user %s deleted", providerUserID)
	if !existed {
		message = fmt.Sprintf("user %s was already absent", providerUserID)
	}

	return &HandlerResult{
		Action:   "user_deleted",
		EntityID: providerUserID,
		Message:  message,
		Data: map[string]interface{}{
			"provider_user_id": providerUserID,
			"existed":          existed,
		},
	}, nil
}

// OrganizationHandler acknowledges organization and membership events with
// the affected entity so changes stay auditable until a full org mirror exists
type OrganizationHandler struct{}

func NewOrganizationHandler() *OrganizationHandler {
	return &OrganizationHandler{}
}

func (h *OrganizationHandler) Handle(ctx context.Context, event *domain.ProviderEvent) (*HandlerResult, error) {
	entityID := event.ResourceID()
	if entityID == "" {
		return nil, fmt.Errorf("%s event is missing the entity id", event.Type)
	}

	result := &HandlerResult{
		Action:   "organization_acknowledged",
		EntityID: entityID,
		Message:  fmt.Sprintf("acknowledged %s for %s", event.Type, entityID),
		Data: map[string]interface{}{
			"event_type": event.Type,
		},
	}

	switch event.Type {
	case domain.EventTypeOrganizationMembershipCreated,
		domain.EventTypeOrganizationMembershipUpdated,
		domain.EventTypeOrganizationMembershipDeleted:
		result.Action = "membership_acknowledged"
		result.Data["membership_id"] = entityID

		// Membership payloads nest the organization and the member
		var payload struct {
			Organization struct {
				ID string `json:"id"`
			} `json:"organization"`
			PublicUserData struct {
				UserID string `json:"user_id"`
			} `json:"public_user_data"`
		}
		if err := json.Unmarshal(event.Data, &payload); err == nil {
			if payload.Organization.ID != "" {
				result.Data["organization_id"] = payload.Organization.ID
			}
			if payload.PublicUserData.UserID != "" {
				result.Data["user_id"] = payload.PublicUserData.UserID
			}
		}
	default:
		result.Data["organization_id"] = entityID
	}

	logger.DebugCtx(ctx, "Organization event acknowledged",
		zap.String("event_type", event.Type),
		zap.String("entity_id", entityID))

	return result, nil
}

// SessionHandler acknowledges session lifecycle events with the session and
// its user
type SessionHandler struct{}

func NewSessionHandler() *SessionHandler {
	return &SessionHandler{}
}

func (h *SessionHandler) Handle(ctx context.Context, event *domain.ProviderEvent) (*HandlerResult, error) {
	var payload struct {
		ID     string `json:"id"`
		UserID string `json:"user_id"`
	}
	if err := json.Unmarshal(event.Data, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse session payload: %w", err)
	}
	if payload.ID == "" {
		return nil, fmt.Errorf("%s event is missing the session id", event.Type)
	}

	result := &HandlerResult{
		Action:   "session_acknowledged",
		EntityID: payload.ID,
		Message:  fmt.Sprintf("acknowledged %s for session %s", event.Type, payload.ID),
		Data: map[string]interface{}{
			"event_type": event.Type,
			"session_id": payload.ID,
		},
	}
	if payload.UserID != "" {
		result.Data["user_id"] = payload.UserID
	}

	logger.DebugCtx(ctx, "Session event acknowledged",
		zap.String("event_type", event.Type),
		zap.String("session_id", payload.ID))

	return result, nil
}

// NotificationHandler acknowledges provider-sent email and SMS notifications
// with their delivery metadata
type NotificationHandler struct{}

func NewNotificationHandler() *NotificationHandler {
	return &NotificationHandler{}
}

func (h *NotificationHandler) Handle(ctx context.Context, event *domain.ProviderEvent) (*HandlerResult, error) {
	var payload struct {
		ID             string `json:"id"`
		ToEmailAddress string `json:"to_email_address"`
		ToPhoneNumber  string `json:"to_phone_number"`
	}
	if err := json.Unmarshal(event.Data, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse notification payload: %w", err)
	}
	if payload.ID == "" {
		return nil, fmt.Errorf("%s event is missing the notification id", event.Type)
	}

	channel := "email"
	recipient := payload.ToEmailAddress
	if event.Type == domain.EventTypeSMSCreated {
		channel = "sms"
		recipient = payload.ToPhoneNumber
	}

	result := &HandlerResult{
		Action:   "notification_acknowledged",
		EntityID: payload.ID,
		Message:  fmt.Sprintf("acknowledged %s notification %s", channel, payload.ID),
		Data: map[string]interface{}{
			"event_type":       event.Type,
			"notification_id":  payload.ID,
			"delivery_channel": channel,
		},
	}
	if recipient != "" {
		result.Data["recipient"] = recipient
	}

	return result, nil
}
