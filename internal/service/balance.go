package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var ErrUserNotFound = errors.New("user not found")

type BalanceService struct {
	db *sql.DB
}

func NewBalanceService(db *sql.DB) *BalanceService {
	return &BalanceService{db: db}
}

type Balance struct {
	VideoCredits int `json:"video_credits"`
}

func (s *BalanceService) Get(ctx context.Context, userID string) (*Balance, error) {
	var b Balance
	err := s.db.QueryRowContext(ctx,
		`SELECT video_credits FROM users WHERE id = $1`,
		userID,
	).Scan(&b.VideoCredits)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get balance: %w", err)
	}
	return &b, nil
}
