package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/helioshq/helios-webhooks/internal/adapter"
)

// DefaultTolerance bounds how far a delivery timestamp may drift from server
// time before the delivery is rejected as a replay
const DefaultTolerance = 5 * time.Minute

// secretPrefix marks a base64-encoded signing secret as issued by the provider
const secretPrefix = "whsec_"

var (
	// ErrMissingHeaders is returned when any of the three signature headers is absent
	ErrMissingHeaders = errors.New("missing required webhook headers")

	// ErrMalformedTimestamp is returned when the timestamp header is not unix seconds
	ErrMalformedTimestamp = errors.New("malformed webhook timestamp")

	// ErrTimestampTooOld is returned when the delivery timestamp is older than the tolerance window
	ErrTimestampTooOld = errors.New("webhook timestamp too old")

	// ErrTimestampTooNew is returned when the delivery timestamp is ahead of the tolerance window
	ErrTimestampTooNew = errors.New("webhook timestamp too new")

	// ErrSignatureMismatch is returned when no signature entry matches the computed one
	ErrSignatureMismatch = errors.New("webhook signature mismatch")
)

// Headers carries the provider signature headers of a delivery
type Headers struct {
	// ID is the provider-assigned delivery ID (svix-id)
	ID string
	// Timestamp is the delivery time in unix seconds (svix-timestamp)
	Timestamp string
	// Signature holds one or more space separated "v1,<base64>" entries (svix-signature)
	Signature string
}

// Verifier checks provider webhook signatures
//
//go:generate mockgen -source=signature.go -destination=../mocks/signature.go -package=mocks -mock_names=Verifier=MockVerifier
type Verifier interface {
	// Verify checks the delivery signature over the raw request body.
	// A nil return means the delivery is authentic and within the replay window.
	Verify(rawBody []byte, hdr Headers) error
}

// verifier is the HMAC-SHA256 implementation of Verifier
type verifier struct {
	secret    []byte
	tolerance time.Duration
	clock     adapter.Clock
}

// NewVerifier creates a Verifier for the given signing secret. Secrets in the
// provider's "whsec_" form are base64 decoded; anything else is used as-is.
func NewVerifier(secret string, tolerance time.Duration, clock adapter.Clock) (Verifier, error) {
	key, err := decodeSecret(secret)
	if err != nil {
		return nil, err
	}
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}

	return &verifier{
		secret:    key,
		tolerance: tolerance,
		clock:     clock,
	}, nil
}

// Verify checks the delivery signature over the raw request body
func (v *verifier) Verify(rawBody []byte, hdr Headers) error {
	if hdr.ID == "" || hdr.Timestamp == "" || hdr.Signature == "" {
		return ErrMissingHeaders
	}

	// Enforce the replay window before doing any crypto
	timestamp, err := strconv.ParseInt(hdr.Timestamp, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrMalformedTimestamp, hdr.Timestamp)
	}

	now := v.clock.Now()
	deliveredAt := time.Unix(timestamp, 0)
	if deliveredAt.Before(now.Add(-v.tolerance)) {
		return ErrTimestampTooOld
	}
	if deliveredAt.After(now.Add(v.tolerance)) {
		return ErrTimestampTooNew
	}

	expected := computeSignature(v.secret, hdr.ID, hdr.Timestamp, rawBody)

	// The header may carry several space separated entries (e.g. after a key
	// rotation); any matching "v1" entry authenticates the delivery
	for _, entry := range strings.Fields(hdr.Signature) {
		version, encoded, found := strings.Cut(entry, ",")
		if !found || version != "v1" {
			continue
		}

		candidate, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			continue
		}

		if hmac.Equal(candidate, expected) {
			return nil
		}
	}

	return ErrSignatureMismatch
}

// Sign computes the "v1,<base64>" signature entry for a delivery. It is the
// counterpart of Verify, used by tests and synthetic load generation.
func Sign(secret string, id string, timestamp time.Time, body []byte) (string, error) {
	key, err := decodeSecret(secret)
	if err != nil {
		return "", err
	}

	mac := computeSignature(key, id, strconv.FormatInt(timestamp.Unix(), 10), body)
	return "v1," + base64.StdEncoding.EncodeToString(mac), nil
}

// computeSignature returns the HMAC-SHA256 over "{id}.{timestamp}.{body}"
func computeSignature(key []byte, id string, timestamp string, body []byte) []byte {
	h := hmac.New(sha256.New, key)
	h.Write([]byte(id))
	h.Write([]byte("."))
	h.Write([]byte(timestamp))
	h.Write([]byte("."))
	h.Write(body)
	return h.Sum(nil)
}

// decodeSecret turns a signing secret into raw key bytes
func decodeSecret(secret string) ([]byte, error) {
	if secret == "" {
		return nil, fmt.Errorf("signing secret is empty")
	}

	if encoded, found := strings.CutPrefix(secret, secretPrefix); found {
		key, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("failed to decode signing secret: %w", err)
		}
		return key, nil
	}

	return []byte(secret), nil
}
