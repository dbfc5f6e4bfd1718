package model

import "time"

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

type User struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	FullName      string    `json:"full_name,omitempty"`
	PasswordHash  []byte    `json:"-"`
	Role          string    `json:"role"`
	EmailVerified bool      `json:"email_verified"`
	VideoCredits  int       `json:"video_credits"`
	CreatedAt     time.Time `json:"created_at"`
}
