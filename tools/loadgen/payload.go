package main

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/helioshq/helios-webhooks/internal/domain"
	"github.com/helioshq/helios-webhooks/internal/signature"
)

// Delivery is one synthetic webhook delivery ready to post
type Delivery struct {
	WebhookID string
	EventType string
	Body      []byte
	Headers   map[string]string
}

// eventWeight pairs an event type with its relative frequency in the mix
type eventWeight struct {
	eventType string
	weight    int
}

// parseEventMix parses a mix expression like "user.created=4,session.created=1"
// into a weighted list. A bare event type counts as weight 1. Unknown event
// types are allowed; the service stores and ignores them, which is itself a
// path worth generating load against.
func parseEventMix(mix string) ([]eventWeight, error) {
	var weights []eventWeight
	for _, entry := range strings.Split(mix, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		eventType := entry
		weight := 1
		if name, value, found := strings.Cut(entry, "="); found {
			parsed, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil || parsed < 1 {
				return nil, fmt.Errorf("invalid weight %q for event type %q", value, strings.TrimSpace(name))
			}
			eventType = strings.TrimSpace(name)
			weight = parsed
		}
		if eventType == "" {
			return nil, fmt.Errorf("empty event type in mix entry %q", entry)
		}

		weights = append(weights, eventWeight{eventType: eventType, weight: weight})
	}

	if len(weights) == 0 {
		return nil, fmt.Errorf("event mix is empty")
	}
	return weights, nil
}

// pickEventType draws one event type from the weighted mix
func pickEventType(rng *rand.Rand, weights []eventWeight) string {
	total := 0
	for _, w := range weights {
		total += w.weight
	}

	draw := rng.Intn(total)
	for _, w := range weights {
		draw -= w.weight
		if draw < 0 {
			return w.eventType
		}
	}
	return weights[len(weights)-1].eventType
}

// newWebhookID returns a provider-style message ID
func newWebhookID(now time.Time) string {
	return "msg_" + ulid.MustNewDefault(now).String()
}

// buildDelivery assembles a signed synthetic delivery for the event type
func buildDelivery(secret, eventType string, now time.Time) (*Delivery, error) {
	webhookID := newWebhookID(now)

	body, err := buildPayload(eventType, webhookID)
	if err != nil {
		return nil, err
	}

	sig, err := signature.Sign(secret, webhookID, now, body)
	if err != nil {
		return nil, err
	}

	return &Delivery{
		WebhookID: webhookID,
		EventType: eventType,
		Body:      body,
		Headers: map[string]string{
			domain.HEADER_WEBHOOK_ID:        webhookID,
			domain.HEADER_WEBHOOK_TIMESTAMP: strconv.FormatInt(now.Unix(), 10),
			domain.HEADER_WEBHOOK_SIGNATURE: sig,
		},
	}, nil
}

// corruptSignature replaces the delivery's signature with one that cannot
// verify, so the invalid path gets exercised under load
func corruptSignature(d *Delivery) {
	d.Headers[domain.HEADER_WEBHOOK_SIGNATURE] = "v1,bG9hZGdlbi1jb3JydXB0ZWQtc2lnbmF0dXJl"
}

// buildPayload produces a provider-shaped event envelope for the event type.
// The resource inside data carries the fields the dispatch handlers read.
func buildPayload(eventType, webhookID string) ([]byte, error) {
	suffix := strings.ToLower(webhookID[len(webhookID)-8:])

	var data map[string]interface{}
	switch family(eventType) {
	case "user":
		data = map[string]interface{}{
			"id":         "user_" + suffix,
			"object":     "user",
			"first_name": "Load",
			"last_name":  "Test",
			"email_addresses": []map[string]interface{}{
				{
					"id":            "idn_" + suffix,
					"object":        "email_address",
					"email_address": fmt.Sprintf("load.test.%s@example.com", suffix),
				},
			},
			"public_metadata": map[string]interface{}{},
		}
	case "organization":
		data = map[string]interface{}{
			"id":     "org_" + suffix,
			"object": "organization",
			"name":   "Load Test Org " + suffix,
			"slug":   "load-test-org-" + suffix,
		}
	case "organizationMembership":
		data = map[string]interface{}{
			"id":     "orgmem_" + suffix,
			"object": "organization_membership",
			"role":   "org:member",
			"organization": map[string]interface{}{
				"id":     "org_" + suffix,
				"object": "organization",
			},
			"public_user_data": map[string]interface{}{
				"user_id": "user_" + suffix,
			},
		}
	case "session":
		data = map[string]interface{}{
			"id":      "sess_" + suffix,
			"object":  "session",
			"user_id": "user_" + suffix,
			"status":  "active",
		}
	case "email":
		data = map[string]interface{}{
			"id":               "ema_" + suffix,
			"object":           "email",
			"to_email_address": fmt.Sprintf("load.test.%s@example.com", suffix),
			"status":           "delivered",
		}
	case "sms":
		data = map[string]interface{}{
			"id":              "sms_" + suffix,
			"object":          "sms_message",
			"to_phone_number": "+15555550100",
			"status":          "delivered",
		}
	default:
		data = map[string]interface{}{
			"id":     "evt_" + suffix,
			"object": "unknown",
		}
	}

	return json.Marshal(map[string]interface{}{
		"data":   data,
		"object": "event",
		"type":   eventType,
	})
}

// family returns the resource family of a provider event type, the part
// before the first dot
func family(eventType string) string {
	name, _, _ := strings.Cut(eventType, ".")
	return name
}
