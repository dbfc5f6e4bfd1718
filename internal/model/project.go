package model

import "time"

type Project struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Brief     string    `json:"brief"`
	Template  string    `json:"template,omitempty"`
	Status    string    `json:"status"` // submitted, in_production, delivered
	CreatedAt time.Time `json:"created_at"`
}
