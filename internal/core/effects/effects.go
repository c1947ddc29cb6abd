// Package effects delivers prepared automation effects. The webhook kind
// is sent directly over HTTP with a signed payload; email, SMS and CRM
// kinds are owned by external transports, so this package hands them off
// as queued work rather than speaking those protocols itself.
package effects

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/fieldworks/formlogic/internal/automation"
	"github.com/fieldworks/formlogic/internal/core/signing"
)

// Sender routes effect requests by kind: webhooks go out over HTTP,
// everything else is accepted for the external transport to pick up from
// the delivery log. Implements automation.Sender.
type Sender struct {
	webhooks *WebhookSender
	logger   *slog.Logger
}

// NewSender creates a kind-routing sender. secret may be nil; webhook
// deliveries are then unsigned.
func NewSender(client *http.Client, secret []byte, logger *slog.Logger) *Sender {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sender{
		webhooks: NewWebhookSender(client, secret),
		logger:   logger,
	}
}

// Send delivers one effect request. Failures are returned to the caller
// for the delivery log; the fired-set was committed before hand-off, so
// nothing here retries.
func (s *Sender) Send(ctx context.Context, req automation.EffectRequest) error {
	switch req.Action {
	case automation.EffectWebhook:
		err := s.webhooks.Send(ctx, req)
		if err != nil {
			s.logger.Warn("webhook delivery failed",
				"automation_id", req.AutomationID,
				"destination", req.Destination,
				"error", err)
		}
		return err
	case automation.EffectSendEmail, automation.EffectSendSMS,
		automation.EffectTagContact, automation.EffectUpdateCRM:
		// External transport's job; the delivery log row is the hand-off.
		s.logger.Debug("effect queued for external transport",
			"automation_id", req.AutomationID,
			"action", req.Action)
		return nil
	default:
		return fmt.Errorf("unknown effect action: %s", req.Action)
	}
}

// WebhookSender posts effect payloads to their destination URL with an
// HMAC signature the receiver can verify.
type WebhookSender struct {
	client *http.Client
	secret []byte
}

// NewWebhookSender creates a webhook sender. A nil client gets a default
// with a 10-second timeout; timeout and cancellation for slow receivers
// live here, not in the dispatcher.
func NewWebhookSender(client *http.Client, secret []byte) *WebhookSender {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &WebhookSender{client: client, secret: secret}
}

// webhookPayload is the delivered JSON body.
type webhookPayload struct {
	AutomationID string            `json:"automation_id"`
	Action       string            `json:"action"`
	Config       map[string]string `json:"config,omitempty"`
	SentAt       time.Time         `json:"sent_at"`
}

// Send posts one effect to its destination. Non-2xx responses are errors.
func (w *WebhookSender) Send(ctx context.Context, req automation.EffectRequest) error {
	if req.Destination == "" {
		return fmt.Errorf("webhook automation %s has no destination URL", req.AutomationID)
	}

	now := time.Now().UTC()
	body, err := json.Marshal(webhookPayload{
		AutomationID: string(req.AutomationID),
		Action:       string(req.Action),
		Config:       req.Config,
		SentAt:       now,
	})
	if err != nil {
		return fmt.Errorf("failed to encode webhook payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.Destination, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if len(w.secret) > 0 {
		ts := now.Unix()
		httpReq.Header.Set(signing.TimestampHeader, fmt.Sprintf("%d", ts))
		httpReq.Header.Set(signing.SignatureHeader, signing.Sign(w.secret, ts, body))
	}

	resp, err := w.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook destination returned status %d", resp.StatusCode)
	}
	return nil
}
