// Package verifications stores the single-use tokens mailed to new accounts.
package verifications

import (
	"context"
	"time"

	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
)

type Repository interface {
	// Create stores a new verification token.
	Create(ctx context.Context, v *models.EmailVerification) error

	// Consume marks token used when it is unused and not expired at now,
	// and returns its user ID. Any other token yields common.ErrorNotFound.
	Consume(ctx context.Context, token string, now time.Time) (string, error)

	// Revoke marks every unused token of userID as used.
	Revoke(ctx context.Context, userID string, now time.Time) error
}
