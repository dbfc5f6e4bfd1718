package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"reelstudio/internal/model"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrResetTokenInvalid  = errors.New("invalid or expired reset token")
)

type AuthService struct {
	db      *sql.DB
	baseURL string
}

func NewAuthService(db *sql.DB, baseURL string) *AuthService {
	return &AuthService{db: db, baseURL: baseURL}
}

func (s *AuthService) Register(ctx context.Context, email, fullName, password string) (*model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	var name sql.NullString
	if fullName != "" {
		name = sql.NullString{String: fullName, Valid: true}
	}

	var user model.User
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO users (email, full_name, password_hash)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO NOTHING
		RETURNING id, email, role, video_credits, created_at
	`, email, name, hash).Scan(&user.ID, &user.Email, &user.Role, &user.VideoCredits, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	user.FullName = fullName
	user.PasswordHash = hash

	return &user, nil
}

func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	var user model.User
	var name sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, full_name, password_hash, role, email_verified, video_credits, created_at
		FROM users WHERE email = $1
	`, email).Scan(&user.ID, &user.Email, &name, &user.PasswordHash,
		&user.Role, &user.EmailVerified, &user.VideoCredits, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	user.FullName = name.String

	// Webhook-provisioned accounts have no password until the recovery flow
	// sets one.
	if len(user.PasswordHash) == 0 {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return &user, nil
}

// GenerateRecoveryLink issues a 24h single-use credential-setup token for the
// account and returns the portal URL that consumes it.
func (s *AuthService) GenerateRecoveryLink(ctx context.Context, userID string) (string, error) {
	token := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO password_resets (user_id, token, expires_at)
		VALUES ($1, $2, NOW() + INTERVAL '24 hours')
	`, userID, token)
	if err != nil {
		return "", fmt.Errorf("insert reset token: %w", err)
	}

	return fmt.Sprintf("%s/auth/reset?token=%s", s.baseURL, token), nil
}

func (s *AuthService) ResetPassword(ctx context.Context, token, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var userID string
	err = tx.QueryRowContext(ctx, `
		SELECT user_id FROM password_resets
		WHERE token = $1 AND expires_at > NOW()
		FOR UPDATE
	`, token).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrResetTokenInvalid
	}
	if err != nil {
		return fmt.Errorf("find reset token: %w", err)
	}

	if _, err = tx.ExecContext(ctx, `UPDATE users SET password_hash = $1 WHERE id = $2`, hash, userID); err != nil {
		return fmt.Errorf("set password: %w", err)
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM password_resets WHERE token = $1`, token); err != nil {
		return fmt.Errorf("consume reset token: %w", err)
	}

	return tx.Commit()
}
