package models

import "time"

// EmailVerification is a single-use token mailed to a new account.
type EmailVerification struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}

// EmailJob is the message handed to the mail worker.
type EmailJob struct {
	Email     string    `json:"email"`
	FirstName string    `json:"first_name,omitempty"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
