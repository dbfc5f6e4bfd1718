package service

import (
	"context"
	"database/sql"
	"fmt"

	"reelstudio/internal/model"
)

type OrderService struct {
	db *sql.DB
}

func NewOrderService(db *sql.DB) *OrderService {
	return &OrderService{db: db}
}

func (s *OrderService) ListByUser(ctx context.Context, userID string) ([]model.Order, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, stripe_session_id, order_type, amount, currency, status, credits_granted, created_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		var o model.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.StripeSessionID, &o.OrderType,
			&o.Amount, &o.Currency, &o.Status, &o.CreditsGranted, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return orders, nil
}
