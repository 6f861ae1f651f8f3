package domain

import (
	"encoding/json"
	"fmt"
)

// Provider event types this service dispatches. Deliveries carrying any other
// type are stored and marked ignored.
const (
	EventTypeUserCreated = "user.created"
	EventTypeUserUpdated = "user.updated"
	EventTypeUserDeleted = "user.deleted"

	EventTypeOrganizationCreated = "organization.created"
	EventTypeOrganizationUpdated = "organization.updated"
	EventTypeOrganizationDeleted = "organization.deleted"

	EventTypeOrganizationMembershipCreated = "organizationMembership.created"
	EventTypeOrganizationMembershipUpdated = "organizationMembership.updated"
	EventTypeOrganizationMembershipDeleted = "organizationMembership.deleted"

	EventTypeSessionCreated = "session.created"
	EventTypeSessionEnded   = "session.ended"

	EventTypeEmailCreated = "email.created"
	EventTypeSMSCreated   = "sms.created"
)

// ProviderEvent is the envelope the identity provider wraps around every
// webhook payload. Data carries the affected resource verbatim so handlers
// can decode only the fields they need.
type ProviderEvent struct {
	Data   json.RawMessage `json:"data"`
	Object string          `json:"object"`
	Type   string          `json:"type"`
}

// ParseProviderEvent decodes a raw webhook body into the provider envelope
func ParseProviderEvent(raw []byte) (*ProviderEvent, error) {
	var event ProviderEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		return nil, fmt.Errorf("failed to parse provider event: %w", err)
	}
	if event.Type == "" {
		return nil, fmt.Errorf("provider event is missing a type")
	}
	return &event, nil
}

// ProviderResource is the subset of payload fields shared by every provider
// object this service needs to identify
type ProviderResource struct {
	ID     string `json:"id"`
	Object string `json:"object"`
}

// ResourceID extracts the provider resource ID from the event payload.
// Returns an empty string when the payload has no id field.
func (e *ProviderEvent) ResourceID() string {
	var resource ProviderResource
	if err := json.Unmarshal(e.Data, &resource); err != nil {
		return ""
	}
	return resource.ID
}
