package effects

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/fieldworks/formlogic/internal/automation"
	"github.com/fieldworks/formlogic/internal/core/signing"
)

func TestWebhookSender_SignedDelivery(t *testing.T) {
	secret := []byte("0123456789abcdef0123456789abcdef")

	var gotBody []byte
	var gotSig, gotTS string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		gotSig = r.Header.Get(signing.SignatureHeader)
		gotTS = r.Header.Get(signing.TimestampHeader)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sender := NewWebhookSender(srv.Client(), secret)
	req := automation.EffectRequest{
		AutomationID: "a1",
		Action:       automation.EffectWebhook,
		Destination:  srv.URL,
		Config:       map[string]string{"event": "form.submitted"},
	}

	if err := sender.Send(context.Background(), req); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	var payload webhookPayload
	if err := json.Unmarshal(gotBody, &payload); err != nil {
		t.Fatalf("payload not JSON: %v", err)
	}
	if payload.AutomationID != "a1" || payload.Config["event"] != "form.submitted" {
		t.Errorf("payload = %+v", payload)
	}

	ts, err := strconv.ParseInt(gotTS, 10, 64)
	if err != nil {
		t.Fatalf("timestamp header = %q", gotTS)
	}
	if err := signing.Verify(secret, ts, gotBody, gotSig); err != nil {
		t.Errorf("signature does not verify: %v", err)
	}
}

func TestWebhookSender_Non2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	sender := NewWebhookSender(srv.Client(), nil)
	err := sender.Send(context.Background(), automation.EffectRequest{
		AutomationID: "a1",
		Action:       automation.EffectWebhook,
		Destination:  srv.URL,
	})
	if err == nil {
		t.Errorf("Send() error = nil, want non-2xx error")
	}
}

func TestWebhookSender_MissingDestination(t *testing.T) {
	sender := NewWebhookSender(nil, nil)
	err := sender.Send(context.Background(), automation.EffectRequest{AutomationID: "a1"})
	if err == nil {
		t.Errorf("Send() error = nil, want missing destination error")
	}
}

func TestSender_QueuesExternalTransports(t *testing.T) {
	s := NewSender(nil, nil, nil)

	for _, kind := range []automation.EffectKind{
		automation.EffectSendEmail,
		automation.EffectSendSMS,
		automation.EffectTagContact,
		automation.EffectUpdateCRM,
	} {
		req := automation.EffectRequest{AutomationID: "a1", Action: kind, Destination: "someone"}
		if err := s.Send(context.Background(), req); err != nil {
			t.Errorf("Send(%s) error = %v, want accepted for external transport", kind, err)
		}
	}

	if err := s.Send(context.Background(), automation.EffectRequest{Action: "teleport"}); err == nil {
		t.Errorf("Send(unknown kind) error = nil, want error")
	}
}
