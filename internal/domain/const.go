package domain

const (
	// Signature headers attached by the identity provider to every delivery
	HEADER_WEBHOOK_ID        = "svix-id"
	HEADER_WEBHOOK_TIMESTAMP = "svix-timestamp"
	HEADER_WEBHOOK_SIGNATURE = "svix-signature"

	// DEFAULT_MAX_RETRIES is how many handler attempts an event gets before it
	// is parked for manual inspection
	DEFAULT_MAX_RETRIES = 3
)
