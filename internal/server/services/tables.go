// Package services contains server-side business logic. This file implements
// TableService, which backs the users and user_sessions table routes.
package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
	"github.com/dmitrijs2005/accountkeeper/internal/server/repositories/repomanager"
)

// NewUser is the insert payload of the users table.
type NewUser struct {
	Email         string
	PasswordHash  string
	FirstName     string
	LastName      string
	EmailVerified bool
}

// TableService exposes row operations on users and user_sessions. Errors keep
// the repository sentinels (common.ErrorNotFound, common.ErrDuplicateKey).
type TableService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	newID       func() string
	now         func() time.Time
}

// NewTableService constructs a TableService. User IDs are random UUIDs.
func NewTableService(db *sql.DB, m repomanager.RepositoryManager) *TableService {
	return &TableService{
		db:          db,
		repomanager: m,
		newID:       uuid.NewString,
		now:         time.Now,
	}
}

func (s *TableService) InsertUser(ctx context.Context, in NewUser) (*models.User, error) {
	user := &models.User{
		ID:            s.newID(),
		Email:         in.Email,
		PasswordHash:  in.PasswordHash,
		FirstName:     in.FirstName,
		LastName:      in.LastName,
		EmailVerified: in.EmailVerified,
	}
	u, err := s.repomanager.Users(s.db).Create(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return u, nil
}

func (s *TableService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.repomanager.Users(s.db).GetByEmail(ctx, email)
}

func (s *TableService) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.repomanager.Users(s.db).GetByID(ctx, id)
}

// CreateSession stores sess. A zero LastActivity is set to now.
func (s *TableService) CreateSession(ctx context.Context, sess *models.Session) error {
	if sess.LastActivity.IsZero() {
		sess.LastActivity = s.now().UTC()
	}
	if err := s.repomanager.Sessions(s.db).Create(ctx, sess); err != nil {
		return fmt.Errorf("error creating session: %w", err)
	}
	return nil
}

func (s *TableService) GetSession(ctx context.Context, token string) (*models.Session, error) {
	return s.repomanager.Sessions(s.db).Find(ctx, token)
}

func (s *TableService) ExtendSession(ctx context.Context, token string, expiresAt, lastActivity time.Time) error {
	return s.repomanager.Sessions(s.db).Extend(ctx, token, expiresAt, lastActivity)
}

func (s *TableService) DeleteSession(ctx context.Context, token string) error {
	return s.repomanager.Sessions(s.db).Delete(ctx, token)
}
