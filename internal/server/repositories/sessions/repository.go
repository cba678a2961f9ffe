// Package sessions declares the repository contract for the user_sessions
// table.
package sessions

import (
	"context"
	"time"

	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
)

// Repository defines operations for issuing, reading, extending and revoking
// sessions.
type Repository interface {
	// Create stores a new session row.
	Create(ctx context.Context, s *models.Session) error

	// Find looks up a session by its opaque token. Implementations should
	// return common.ErrorNotFound when the token is absent.
	Find(ctx context.Context, token string) (*models.Session, error)

	// Extend moves expires_at and last_activity. It returns
	// common.ErrorNotFound when no row matches.
	Extend(ctx context.Context, token string, expiresAt, lastActivity time.Time) error

	// Delete removes a session by its token. Deleting a non-existent
	// session should not be considered an error.
	Delete(ctx context.Context, token string) error
}
