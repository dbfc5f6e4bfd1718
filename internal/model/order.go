package model

import "time"

// Order is the immutable record of one completed checkout. StripeSessionID is
// unique: it is the idempotency key under at-least-once webhook delivery.
type Order struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	StripeSessionID string    `json:"stripe_session_id"`
	OrderType       string    `json:"order_type"`
	Amount          int64     `json:"amount"` // minor currency units
	Currency        string    `json:"currency"`
	Status          string    `json:"status"`
	CreditsGranted  int       `json:"credits_granted"`
	CreatedAt       time.Time `json:"created_at"`
}
