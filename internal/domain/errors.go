package domain

import "errors"

var (
	// ErrEventNotFound is returned when no webhook event exists for a provider delivery ID
	ErrEventNotFound = errors.New("webhook event not found")

	// ErrEventNotRetryable is returned when a retry is requested for an event that is not failed
	ErrEventNotRetryable = errors.New("webhook event is not in a retryable state")

	// ErrRetriesExhausted is returned when a retry is requested for an event that has used up its retry budget
	ErrRetriesExhausted = errors.New("webhook event has exhausted its retries")
)
