package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"reelstudio/internal/mailer"
	"reelstudio/internal/pricing"
)

// CheckoutEvent is one verified checkout-completion notification, already
// stripped down to the fields the reconciler acts on.
type CheckoutEvent struct {
	SessionID string
	Email     string
	FullName  string
	Amount    int64
	Currency  string
}

type paymentApplier interface {
	Apply(ctx context.Context, p PaymentParams) (*PaymentResult, error)
}

type recoveryLinker interface {
	GenerateRecoveryLink(ctx context.Context, userID string) (string, error)
}

type ReconcileService struct {
	payments paymentApplier
	recovery recoveryLinker
	mail     mailer.Mailer
}

func NewReconcileService(payments paymentApplier, recovery recoveryLinker, mail mailer.Mailer) *ReconcileService {
	return &ReconcileService{payments: payments, recovery: recovery, mail: mail}
}

// ProcessEvent converts one checkout completion into durable account state.
// A session that was already recorded is acknowledged without re-granting,
// so the caller can ack duplicates to the processor. Only dependency
// failures return an error; those are the cases where a processor retry is
// the correct recovery.
func (s *ReconcileService) ProcessEvent(ctx context.Context, evt CheckoutEvent) error {
	credits := pricing.CreditsForAmount(evt.Amount)
	slog.Info("processing checkout session",
		"session", evt.SessionID, "amount", evt.Amount, "credits", credits)

	res, err := s.payments.Apply(ctx, PaymentParams{
		Email:     evt.Email,
		FullName:  evt.FullName,
		SessionID: evt.SessionID,
		Amount:    evt.Amount,
		Currency:  evt.Currency,
		Credits:   credits,
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateSession) {
			slog.Info("duplicate checkout session ignored", "session", evt.SessionID)
			return nil
		}
		return fmt.Errorf("apply payment: %w", err)
	}

	if res.CreatedUser {
		// The account and its credits are already committed; a failed
		// invitation must not fail the webhook.
		link, err := s.recovery.GenerateRecoveryLink(ctx, res.UserID)
		if err != nil {
			slog.Error("recovery link generation failed", "email", evt.Email, "error", err)
			return nil
		}
		if err := s.mail.SendRecoveryLink(ctx, evt.Email, link); err != nil {
			slog.Error("recovery email send failed", "email", evt.Email, "error", err)
		}
	}

	return nil
}
