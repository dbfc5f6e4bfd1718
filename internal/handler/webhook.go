package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"

	"reelstudio/internal/service"
)

const maxWebhookBody = 65536

type checkoutReconciler interface {
	ProcessEvent(ctx context.Context, evt service.CheckoutEvent) error
}

// StripeWebhookHandler is the payment-event reconciler endpoint. The raw body
// is verified against the Stripe-Signature header before any of it is
// trusted; only checkout.session.completed events mutate state. Response
// codes follow the processor's retry contract: 400 means the event can never
// succeed, 500 means retry.
func StripeWebhookHandler(reconciler checkoutReconciler, signingSecret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		if signingSecret == "" {
			// Fail closed: never process unverifiable events.
			slog.Error("stripe webhook secret not configured")
			http.Error(w, "webhook not configured", http.StatusInternalServerError)
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
		if err != nil {
			http.Error(w, "failed to read body", http.StatusBadRequest)
			return
		}

		event, err := webhook.ConstructEventWithOptions(body, r.Header.Get("Stripe-Signature"), signingSecret,
			webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
		if err != nil {
			slog.Warn("webhook signature verification failed", "error", err)
			http.Error(w, "invalid signature", http.StatusBadRequest)
			return
		}

		if event.Type != stripe.EventTypeCheckoutSessionCompleted {
			// Unhandled event kinds are acked so the processor does not
			// treat them as delivery failures.
			ack(w)
			return
		}

		if event.Data == nil {
			http.Error(w, "malformed event payload", http.StatusBadRequest)
			return
		}

		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			http.Error(w, "malformed event payload", http.StatusBadRequest)
			return
		}

		email := session.CustomerEmail
		if email == "" && session.CustomerDetails != nil {
			email = session.CustomerDetails.Email
		}
		if email == "" {
			slog.Error("checkout session missing customer email", "session", session.ID)
			http.Error(w, "no customer email", http.StatusBadRequest)
			return
		}

		var fullName string
		if session.CustomerDetails != nil {
			fullName = session.CustomerDetails.Name
		}

		evt := service.CheckoutEvent{
			SessionID: session.ID,
			Email:     email,
			FullName:  fullName,
			Amount:    session.AmountTotal,
			Currency:  string(session.Currency),
		}
		if err := reconciler.ProcessEvent(r.Context(), evt); err != nil {
			slog.Error("checkout reconciliation failed", "session", session.ID, "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		ack(w)
	}
}

func ack(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]bool{"received": true}); err != nil {
		slog.Error("webhook ack encode failed", "error", err)
	}
}
