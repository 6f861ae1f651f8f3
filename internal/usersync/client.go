package usersync

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/google/uuid"

	"github.com/helioshq/helios-webhooks/internal/adapter"
)

// Sync outcome statuses reported by the core application
const (
	// SyncStatusCreated means the provider user had no local counterpart and one was created
	SyncStatusCreated = "created"
	// SyncStatusUpdated means an existing local user was refreshed from the provider payload
	SyncStatusUpdated = "updated"
)

// SyncResult is the core application's answer to a user sync call
type SyncResult struct {
	Status string `json:"status"`
	UserID string `json:"user_id"`
}

// RoleResult is the core application's answer to an initial role grant
type RoleResult struct {
	Success      bool   `json:"success"`
	RoleAssigned string `json:"role_assigned"`
}

// UserSync mirrors provider identity changes into the core application
//
//go:generate mockgen -source=client.go -destination=../mocks/usersync_client.go -package=mocks -mock_names=UserSync=MockUserSync,RoleAssignment=MockRoleAssignment
type UserSync interface {
	// SyncFromProvider creates or updates the local user for a provider user payload
	SyncFromProvider(ctx context.Context, payload json.RawMessage) (*SyncResult, error)
	// DeleteByProviderID removes the local user linked to the provider user id.
	// The bool reports whether a user actually existed to delete.
	DeleteByProviderID(ctx context.Context, providerUserID string) (bool, error)
}

// RoleAssignment grants newly synced users their starting role
type RoleAssignment interface {
	// AssignInitialRole grants the default role to a freshly created user
	AssignInitialRole(ctx context.Context, userID string, payload json.RawMessage) (*RoleResult, error)
}

// CoreAPIClient talks to the core application's internal user API. It
// implements both UserSync and RoleAssignment.
type CoreAPIClient struct {
	httpClient adapter.HTTPClient
	baseURL    string
	apiKey     string
}

// NewClient creates a client for the core application's internal API
func NewClient(httpClient adapter.HTTPClient, baseURL, apiKey string) *CoreAPIClient {
	return &CoreAPIClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     apiKey,
	}
}

// SyncFromProvider creates or updates the local user for a provider user payload
func (c *CoreAPIClient) SyncFromProvider(ctx context.Context, payload json.RawMessage) (*SyncResult, error) {
	endpoint := fmt.Sprintf("%s/internal/v1/users/sync", c.baseURL)

	respBody, err := c.httpClient.Post(ctx, endpoint, "application/json", c.authHeaders(), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to call user sync API: %w", err)
	}

	var result SyncResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to decode user sync response: %w", err)
	}
	if result.UserID == "" {
		return nil, fmt.Errorf("user sync response is missing a user id")
	}

	return &result, nil
}

// DeleteByProviderID removes the local user linked to the provider user id
func (c *CoreAPIClient) DeleteByProviderID(ctx context.Context, providerUserID string) (bool, error) {
	if providerUserID == "" {
		return false, fmt.Errorf("provider user id is empty")
	}

	endpoint := fmt.Sprintf("%s/internal/v1/users/by-provider/%s", c.baseURL, url.PathEscape(providerUserID))

	_, err := c.httpClient.Delete(ctx, endpoint, c.authHeaders())
	if err != nil {
		// A user the core application never knew about is already gone;
		// provider deletions must stay idempotent across retries
		var statusErr *adapter.StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
			return false, nil
		}
		return false, fmt.Errorf("failed to call user delete API: %w", err)
	}

	return true, nil
}

// AssignInitialRole grants the default role to a freshly created user
func (c *CoreAPIClient) AssignInitialRole(ctx context.Context, userID string, payload json.RawMessage) (*RoleResult, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is empty")
	}

	endpoint := fmt.Sprintf("%s/internal/v1/users/%s/roles/initial", c.baseURL, url.PathEscape(userID))

	respBody, err := c.httpClient.Post(ctx, endpoint, "application/json", c.authHeaders(), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to call role assignment API: %w", err)
	}

	var result RoleResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to decode role assignment response: %w", err)
	}

	return &result, nil
}

// authHeaders carries the service credential plus a fresh request id so core
// API logs can be correlated with a single webhook delivery
func (c *CoreAPIClient) authHeaders() map[string]string {
	return map[string]string{
		"Authorization": "Bearer " + c.apiKey,
		"X-Request-ID":  uuid.NewString(),
	}
}
