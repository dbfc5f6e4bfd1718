package handler

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"reelstudio/internal/service"
)

const testSigningSecret = "whsec_test_secret"

type fakeReconciler struct {
	events []service.CheckoutEvent
	err    error
}

func (f *fakeReconciler) ProcessEvent(_ context.Context, evt service.CheckoutEvent) error {
	f.events = append(f.events, evt)
	return f.err
}

// signPayload produces a valid Stripe-Signature header for the payload using
// the v1 scheme (HMAC-SHA256 over "<timestamp>.<payload>").
func signPayload(t *testing.T, payload []byte, secret string) string {
	t.Helper()
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func checkoutPayload(sessionID, email, name string, amount int64) []byte {
	session := fmt.Sprintf(`{"id":%q,"object":"checkout.session","amount_total":%d,"currency":"usd"`, sessionID, amount)
	if email != "" {
		session += fmt.Sprintf(`,"customer_email":%q,"customer_details":{"email":%q,"name":%q}`, email, email, name)
	}
	session += "}"
	return []byte(fmt.Sprintf(`{"id":"evt_test","object":"event","type":"checkout.session.completed","data":{"object":%s}}`, session))
}

func postWebhook(t *testing.T, h http.HandlerFunc, payload []byte, signature string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/stripe/webhook", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", signature)
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestWebhookValidCheckoutSession(t *testing.T) {
	rc := &fakeReconciler{}
	h := StripeWebhookHandler(rc, testSigningSecret)

	payload := checkoutPayload("cs_test_1", "buyer@example.com", "Jane Buyer", 59000)
	rec := postWebhook(t, h, payload, signPayload(t, payload, testSigningSecret))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}
	if len(rc.events) != 1 {
		t.Fatalf("reconciler invoked %d times, want 1", len(rc.events))
	}
	evt := rc.events[0]
	if evt.SessionID != "cs_test_1" || evt.Email != "buyer@example.com" ||
		evt.FullName != "Jane Buyer" || evt.Amount != 59000 || evt.Currency != "usd" {
		t.Errorf("unexpected event: %+v", evt)
	}
}

func TestWebhookInvalidSignature(t *testing.T) {
	rc := &fakeReconciler{}
	h := StripeWebhookHandler(rc, testSigningSecret)

	payload := checkoutPayload("cs_test_2", "buyer@example.com", "", 7900)
	rec := postWebhook(t, h, payload, "t=1,v1=deadbeef")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if len(rc.events) != 0 {
		t.Fatal("reconciler invoked on forged signature")
	}
}

func TestWebhookTamperedBody(t *testing.T) {
	rc := &fakeReconciler{}
	h := StripeWebhookHandler(rc, testSigningSecret)

	signed := checkoutPayload("cs_test_3", "buyer@example.com", "", 7900)
	tampered := checkoutPayload("cs_test_3", "buyer@example.com", "", 59000)
	rec := postWebhook(t, h, tampered, signPayload(t, signed, testSigningSecret))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if len(rc.events) != 0 {
		t.Fatal("reconciler invoked on tampered body")
	}
}

func TestWebhookIgnoresOtherEventTypes(t *testing.T) {
	rc := &fakeReconciler{}
	h := StripeWebhookHandler(rc, testSigningSecret)

	payload := []byte(`{"id":"evt_test","object":"event","type":"invoice.paid","data":{"object":{"id":"in_1"}}}`)
	rec := postWebhook(t, h, payload, signPayload(t, payload, testSigningSecret))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 ack", rec.Code)
	}
	if len(rc.events) != 0 {
		t.Fatal("reconciler invoked for unhandled event type")
	}
}

func TestWebhookMissingCustomerEmail(t *testing.T) {
	rc := &fakeReconciler{}
	h := StripeWebhookHandler(rc, testSigningSecret)

	payload := checkoutPayload("cs_test_4", "", "", 7900)
	rec := postWebhook(t, h, payload, signPayload(t, payload, testSigningSecret))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if len(rc.events) != 0 {
		t.Fatal("reconciler invoked without an identity key")
	}
}

func TestWebhookReconcilerFailureTriggersRetry(t *testing.T) {
	rc := &fakeReconciler{err: errors.New("store unavailable")}
	h := StripeWebhookHandler(rc, testSigningSecret)

	payload := checkoutPayload("cs_test_5", "buyer@example.com", "", 7900)
	rec := postWebhook(t, h, payload, signPayload(t, payload, testSigningSecret))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500 so the processor retries", rec.Code)
	}
}

func TestWebhookFailsClosedWithoutSecret(t *testing.T) {
	rc := &fakeReconciler{}
	h := StripeWebhookHandler(rc, "")

	payload := checkoutPayload("cs_test_6", "buyer@example.com", "", 7900)
	rec := postWebhook(t, h, payload, signPayload(t, payload, testSigningSecret))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if len(rc.events) != 0 {
		t.Fatal("reconciler invoked without signature verification")
	}
}
