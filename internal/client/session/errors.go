package session

import "errors"

// Policy errors. Their messages are shown to the customer as-is.
var (
	ErrEmailExists              = errors.New("Email already exists")
	ErrInvalidCredentials       = errors.New("Invalid email or password")
	ErrEmailNotVerified         = errors.New("Please verify your email before signing in")
	ErrInvalidVerificationToken = errors.New("Invalid or expired verification token")
)
