package client

import (
	"context"
	"time"

	"github.com/dmitrijs2005/accountkeeper/internal/client/models"
)

// Backend is everything the session controller needs from the remote side.
type Backend interface {
	// InsertUser creates a user and returns the stored row.
	// A taken email yields an error matching ErrDuplicateKey.
	InsertUser(ctx context.Context, u models.NewUser) (*models.User, error)
	// GetUserByEmail matches the email exactly. ErrNotFound when absent.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	CreateSession(ctx context.Context, s models.Session) error
	// GetSession returns ErrNotFound for an unknown token.
	GetSession(ctx context.Context, token string) (*models.Session, error)
	ExtendSession(ctx context.Context, token string, expiresAt, lastActivity time.Time) error
	DeleteSession(ctx context.Context, token string) error

	VerifyUserEmail(ctx context.Context, token string) (bool, error)
	SendVerificationEmail(ctx context.Context, email, firstName string) error

	Ping(ctx context.Context) error
	Close() error
}
