package domain

import "fmt"

// WebhookStatus represents the lifecycle state of a stored webhook event
type WebhookStatus string

const (
	// WebhookStatusPending means the event row exists but dispatch has not started
	WebhookStatusPending WebhookStatus = "pending"

	// WebhookStatusProcessing means a handler attempt is in flight
	WebhookStatusProcessing WebhookStatus = "processing"

	// WebhookStatusSuccess means a handler attempt completed and the outcome was recorded
	WebhookStatusSuccess WebhookStatus = "success"

	// WebhookStatusFailed means the last handler attempt failed; the event may still be retried
	WebhookStatusFailed WebhookStatus = "failed"

	// WebhookStatusIgnored means no handler is registered for the event type
	WebhookStatusIgnored WebhookStatus = "ignored"

	// WebhookStatusInvalid means the delivery failed signature verification
	WebhookStatusInvalid WebhookStatus = "invalid"
)

// validTransitions is the single source of truth for the webhook event state machine.
// Terminal states map to an empty slice.
var validTransitions = map[WebhookStatus][]WebhookStatus{
	WebhookStatusPending:    {WebhookStatusProcessing, WebhookStatusInvalid, WebhookStatusIgnored},
	WebhookStatusProcessing: {WebhookStatusSuccess, WebhookStatusFailed},
	WebhookStatusFailed:     {WebhookStatusProcessing, WebhookStatusFailed},
	WebhookStatusSuccess:    {},
	WebhookStatusIgnored:    {},
	WebhookStatusInvalid:    {},
}

// IsValidStatus checks if a status is one of the known lifecycle states
func IsValidStatus(status WebhookStatus) bool {
	_, ok := validTransitions[status]
	return ok
}

// CanTransition reports whether moving from one status to another is legal
func CanTransition(from, to WebhookStatus) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidNextStates returns the statuses reachable from the given status.
// Terminal and unknown statuses return an empty slice.
func ValidNextStates(status WebhookStatus) []WebhookStatus {
	next := validTransitions[status]
	out := make([]WebhookStatus, len(next))
	copy(out, next)
	return out
}

// IsTerminal reports whether a status permits no further transitions
func IsTerminal(status WebhookStatus) bool {
	return IsValidStatus(status) && len(validTransitions[status]) == 0
}

// TransitionError describes a rejected status transition, naming both states
type TransitionError struct {
	From WebhookStatus
	To   WebhookStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid webhook status transition from %q to %q", e.From, e.To)
}

// NewTransitionError creates a TransitionError for the given pair of states
func NewTransitionError(from, to WebhookStatus) *TransitionError {
	return &TransitionError{From: from, To: to}
}
