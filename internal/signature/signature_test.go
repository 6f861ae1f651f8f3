package signature_test

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helioshq/helios-webhooks/internal/mocks"
	"github.com/helioshq/helios-webhooks/internal/signature"
)

const (
	testRawSecret = "test-signing-secret"
	testWebhookID = "msg_2l5gVdbQnTrrTVZn9RiJVHNyuYI"
)

// testEncodedSecret is testRawSecret in the provider's whsec_ form
var testEncodedSecret = "whsec_" + base64.StdEncoding.EncodeToString([]byte(testRawSecret))

var testNow = time.Unix(1700000000, 0)

func newTestClock(t *testing.T, now time.Time) *mocks.MockClock {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	clock := mocks.NewMockClock(ctrl)
	clock.EXPECT().Now().Return(now).AnyTimes()
	return clock
}

// signRaw computes the expected "v1" entry independently of the package under
// test, pinning the "{id}.{timestamp}.{body}" layout
func signRaw(secret, id string, timestamp int64, body []byte) string {
	h := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(h, "%s.%d.", id, timestamp)
	h.Write(body)
	return "v1," + base64.StdEncoding.EncodeToString(h.Sum(nil))
}

func TestVerify_ValidSignature(t *testing.T) {
	body := []byte(`{"data":{"id":"user_2abc"},"object":"event","type":"user.created"}`)

	tests := []struct {
		name   string
		secret string
	}{
		{
			name:   "encoded secret",
			secret: testEncodedSecret,
		},
		{
			name:   "raw secret",
			secret: testRawSecret,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verifier, err := signature.NewVerifier(tt.secret, 5*time.Minute, newTestClock(t, testNow))
			require.NoError(t, err)

			hdr := signature.Headers{
				ID:        testWebhookID,
				Timestamp: strconv.FormatInt(testNow.Unix(), 10),
				Signature: signRaw(testRawSecret, testWebhookID, testNow.Unix(), body),
			}

			assert.NoError(t, verifier.Verify(body, hdr))
		})
	}
}

func TestVerify_MultipleSignatureEntries(t *testing.T) {
	body := []byte(`{"data":{"id":"user_2abc"},"object":"event","type":"user.created"}`)

	verifier, err := signature.NewVerifier(testEncodedSecret, 5*time.Minute, newTestClock(t, testNow))
	require.NoError(t, err)

	valid := signRaw(testRawSecret, testWebhookID, testNow.Unix(), body)
	bogus := "v1," + base64.StdEncoding.EncodeToString([]byte("not-the-signature-at-all"))

	// Any matching v1 entry authenticates; other versions and stale keys are skipped
	hdr := signature.Headers{
		ID:        testWebhookID,
		Timestamp: strconv.FormatInt(testNow.Unix(), 10),
		Signature: "v2,aGVsbG8= " + bogus + " " + valid,
	}

	assert.NoError(t, verifier.Verify(body, hdr))
}

func TestVerify_MissingHeaders(t *testing.T) {
	body := []byte(`{}`)
	verifier, err := signature.NewVerifier(testEncodedSecret, 5*time.Minute, newTestClock(t, testNow))
	require.NoError(t, err)

	timestamp := strconv.FormatInt(testNow.Unix(), 10)
	sig := signRaw(testRawSecret, testWebhookID, testNow.Unix(), body)

	tests := []struct {
		name string
		hdr  signature.Headers
	}{
		{
			name: "missing id",
			hdr:  signature.Headers{Timestamp: timestamp, Signature: sig},
		},
		{
			name: "missing timestamp",
			hdr:  signature.Headers{ID: testWebhookID, Signature: sig},
		},
		{
			name: "missing signature",
			hdr:  signature.Headers{ID: testWebhookID, Timestamp: timestamp},
		},
		{
			name: "all missing",
			hdr:  signature.Headers{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := verifier.Verify(body, tt.hdr)
			assert.ErrorIs(t, err, signature.ErrMissingHeaders)
		})
	}
}

func TestVerify_TimestampChecks(t *testing.T) {
	body := []byte(`{}`)
	verifier, err := signature.NewVerifier(testEncodedSecret, 5*time.Minute, newTestClock(t, testNow))
	require.NoError(t, err)

	sign := func(ts int64) signature.Headers {
		return signature.Headers{
			ID:        testWebhookID,
			Timestamp: strconv.FormatInt(ts, 10),
			Signature: signRaw(testRawSecret, testWebhookID, ts, body),
		}
	}

	tests := []struct {
		name     string
		hdr      signature.Headers
		expected error
	}{
		{
			name:     "malformed timestamp",
			hdr:      signature.Headers{ID: testWebhookID, Timestamp: "yesterday", Signature: "v1,AAAA"},
			expected: signature.ErrMalformedTimestamp,
		},
		{
			name:     "too old",
			hdr:      sign(testNow.Add(-6 * time.Minute).Unix()),
			expected: signature.ErrTimestampTooOld,
		},
		{
			name:     "too new",
			hdr:      sign(testNow.Add(6 * time.Minute).Unix()),
			expected: signature.ErrTimestampTooNew,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := verifier.Verify(body, tt.hdr)
			assert.ErrorIs(t, err, tt.expected)
		})
	}

	t.Run("boundary of the window is accepted", func(t *testing.T) {
		assert.NoError(t, verifier.Verify(body, sign(testNow.Add(-5*time.Minute).Unix())))
		assert.NoError(t, verifier.Verify(body, sign(testNow.Add(5*time.Minute).Unix())))
	})
}

func TestVerify_SignatureMismatch(t *testing.T) {
	body := []byte(`{"data":{"id":"user_2abc"},"object":"event","type":"user.created"}`)
	timestamp := strconv.FormatInt(testNow.Unix(), 10)

	verifier, err := signature.NewVerifier(testEncodedSecret, 5*time.Minute, newTestClock(t, testNow))
	require.NoError(t, err)

	tests := []struct {
		name string
		hdr  signature.Headers
		body []byte
	}{
		{
			name: "tampered body",
			hdr: signature.Headers{
				ID:        testWebhookID,
				Timestamp: timestamp,
				Signature: signRaw(testRawSecret, testWebhookID, testNow.Unix(), body),
			},
			body: []byte(`{"data":{"id":"user_EVIL"},"object":"event","type":"user.created"}`),
		},
		{
			name: "wrong secret",
			hdr: signature.Headers{
				ID:        testWebhookID,
				Timestamp: timestamp,
				Signature: signRaw("some-other-secret", testWebhookID, testNow.Unix(), body),
			},
			body: body,
		},
		{
			name: "signature over different id",
			hdr: signature.Headers{
				ID:        testWebhookID,
				Timestamp: timestamp,
				Signature: signRaw(testRawSecret, "msg_other", testNow.Unix(), body),
			},
			body: body,
		},
		{
			name: "garbage entries only",
			hdr: signature.Headers{
				ID:        testWebhookID,
				Timestamp: timestamp,
				Signature: "v1,!!!not-base64!!! v3,AAAA nonsense",
			},
			body: body,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := verifier.Verify(tt.body, tt.hdr)
			assert.ErrorIs(t, err, signature.ErrSignatureMismatch)
		})
	}
}

func TestNewVerifier_BadSecret(t *testing.T) {
	clock := newTestClock(t, testNow)

	_, err := signature.NewVerifier("", time.Minute, clock)
	assert.Error(t, err)

	_, err = signature.NewVerifier("whsec_!!!not-base64!!!", time.Minute, clock)
	assert.Error(t, err)
}

func TestSign_RoundTrip(t *testing.T) {
	body := []byte(`{"data":{"id":"sess_123"},"object":"event","type":"session.created"}`)

	entry, err := signature.Sign(testEncodedSecret, testWebhookID, testNow, body)
	require.NoError(t, err)
	assert.Equal(t, signRaw(testRawSecret, testWebhookID, testNow.Unix(), body), entry)

	verifier, err := signature.NewVerifier(testEncodedSecret, 5*time.Minute, newTestClock(t, testNow))
	require.NoError(t, err)

	hdr := signature.Headers{
		ID:        testWebhookID,
		Timestamp: strconv.FormatInt(testNow.Unix(), 10),
		Signature: entry,
	}
	assert.NoError(t, verifier.Verify(body, hdr))
}
