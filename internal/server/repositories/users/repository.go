package users

import (
	"context"

	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
)

type Repository interface {
	// Create inserts user and fills CreatedAt. A taken email yields
	// common.ErrDuplicateKey.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	// MarkEmailVerified sets email_verified for id. It returns
	// common.ErrorNotFound when no row matches.
	MarkEmailVerified(ctx context.Context, id string) error
}
