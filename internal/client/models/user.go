// Package models defines the client-side view of customer accounts and sessions.
package models

import (
	"strings"
	"time"
)

// User mirrors a row of the remote users table.
type User struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"password_hash,omitempty"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	EmailVerified bool      `json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
}

// Public returns a copy of u without the password hash. Only public copies are
// cached locally or handed to observers.
func (u *User) Public() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.PasswordHash = ""
	return &c
}

// DisplayName is "First Last", falling back to the email when both are empty.
func (u *User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}

// NewUser is the insert payload for the users table.
type NewUser struct {
	Email         string `json:"email"`
	PasswordHash  string `json:"password_hash"`
	FirstName     string `json:"first_name,omitempty"`
	LastName      string `json:"last_name,omitempty"`
	EmailVerified bool   `json:"email_verified"`
}

// Session mirrors a row of the remote user_sessions table.
type Session struct {
	Token        string    `json:"token"`
	UserID       string    `json:"user_id"`
	ExpiresAt    time.Time `json:"expires_at"`
	LastActivity time.Time `json:"last_activity"`
}

// ValidAt reports whether the session has not yet expired at now.
// A session expiring exactly at now is already invalid.
func (s *Session) ValidAt(now time.Time) bool {
	return s.ExpiresAt.After(now)
}
