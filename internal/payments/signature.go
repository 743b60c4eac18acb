package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// webhookTolerance bounds how stale a signed payload may be before it is
// rejected as a possible replay.
const webhookTolerance = 5 * time.Minute

type webhookEnvelope struct {
	Type string `json:"type"`
	Data struct {
		Object stripeIntent `json:"object"`
	} `json:"data"`
}

// VerifyWebhook checks the processor's signature header
// ("t=<unix>,v1=<hex hmac>") against the shared secret and parses the event.
// The signed message is "<t>.<payload>".
func VerifyWebhook(payload []byte, sigHeader, secret string) (*WebhookEvent, error) {
	var timestamp int64
	var signatures []string

	for _, part := range strings.Split(sigHeader, ",") {
		k, v, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch k {
		case "t":
			ts, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("failed to parse signature timestamp: %w", err)
			}
			timestamp = ts
		case "v1":
			signatures = append(signatures, v)
		}
	}

	if timestamp == 0 || len(signatures) == 0 {
		return nil, fmt.Errorf("malformed signature header")
	}
	if time.Since(time.Unix(timestamp, 0)) > webhookTolerance {
		return nil, fmt.Errorf("signature timestamp outside tolerance")
	}

	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", timestamp, payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	verified := false
	for _, sig := range signatures {
		if hmac.Equal([]byte(expected), []byte(sig)) {
			verified = true
			break
		}
	}
	if !verified {
		return nil, fmt.Errorf("no matching signature")
	}

	return ParseWebhook(payload)
}

// ParseWebhook decodes an event payload without signature verification. Used
// when no webhook secret is configured, which the caller must log as unsafe.
func ParseWebhook(payload []byte) (*WebhookEvent, error) {
	var env webhookEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, fmt.Errorf("failed to decode webhook payload: %w", err)
	}
	return &WebhookEvent{
		Type:   env.Type,
		Intent: *env.Data.Object.toIntent(),
	}, nil
}

// SignPayload produces a valid signature header for a payload. Test helper for
// exercising the verification path.
func SignPayload(payload []byte, secret string, at time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", at.Unix(), payload)
	return fmt.Sprintf("t=%d,v1=%s", at.Unix(), hex.EncodeToString(mac.Sum(nil)))
}
