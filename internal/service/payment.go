package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrDuplicateSession reports a checkout session whose order already exists;
// its credits were granted by an earlier delivery.
var ErrDuplicateSession = errors.New("checkout session already processed")

type PaymentService struct {
	db *sql.DB
}

func NewPaymentService(db *sql.DB) *PaymentService {
	return &PaymentService{db: db}
}

type PaymentParams struct {
	Email     string
	FullName  string
	SessionID string
	Amount    int64
	Currency  string
	Credits   int
}

type PaymentResult struct {
	UserID      string
	CreatedUser bool
}

// Apply makes one completed checkout durable: resolve or provision the paying
// account, record the order, grant its credits. Everything runs in one
// transaction with the unique stripe_session_id insert as the dedup gate, so
// a retried or concurrent duplicate delivery either commits the full effect
// once or observes the conflict and changes nothing.
func (s *PaymentService) Apply(ctx context.Context, p PaymentParams) (*PaymentResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var fullName sql.NullString
	if p.FullName != "" {
		fullName = sql.NullString{String: p.FullName, Valid: true}
	}

	res := &PaymentResult{}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO users (email, full_name, email_verified)
		VALUES ($1, $2, TRUE)
		ON CONFLICT (email) DO NOTHING
		RETURNING id
	`, p.Email, fullName).Scan(&res.UserID)
	switch {
	case err == nil:
		res.CreatedUser = true
	case errors.Is(err, sql.ErrNoRows):
		if err := tx.QueryRowContext(ctx, `SELECT id FROM users WHERE email = $1`, p.Email).Scan(&res.UserID); err != nil {
			return nil, fmt.Errorf("find user: %w", err)
		}
	default:
		return nil, fmt.Errorf("provision user: %w", err)
	}

	var orderID string
	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (user_id, stripe_session_id, order_type, amount, currency, status, credits_granted)
		VALUES ($1, $2, 'video_package', $3, $4, 'completed', $5)
		ON CONFLICT (stripe_session_id) DO NOTHING
		RETURNING id
	`, res.UserID, p.SessionID, p.Amount, p.Currency, p.Credits).Scan(&orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDuplicateSession
	}
	if err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}

	if p.Credits > 0 {
		_, err = tx.ExecContext(ctx,
			`UPDATE users SET video_credits = video_credits + $1 WHERE id = $2`,
			p.Credits, res.UserID,
		)
		if err != nil {
			return nil, fmt.Errorf("grant credits: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return res, nil
}
