package services

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/dbx"
	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
	sessionsrepo "github.com/dmitrijs2005/accountkeeper/internal/server/repositories/sessions"
	usersrepo "github.com/dmitrijs2005/accountkeeper/internal/server/repositories/users"
	verificationsrepo "github.com/dmitrijs2005/accountkeeper/internal/server/repositories/verifications"
)

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

type fakeUsersRepo struct {
	byID      map[string]*models.User
	createErr error
	getErr    error
	markErr   error

	LastCreated *models.User
	LastMarked  string
}

func newFakeUsersRepo(users ...*models.User) *fakeUsersRepo {
	f := &fakeUsersRepo{byID: map[string]*models.User{}}
	for _, u := range users {
		f.byID[u.ID] = u
	}
	return f
}

func (f *fakeUsersRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	f.LastCreated = u
	if f.createErr != nil {
		return nil, f.createErr
	}
	u.CreatedAt = time.Unix(1, 0).UTC()
	f.byID[u.ID] = u
	return u, nil
}

func (f *fakeUsersRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) MarkEmailVerified(_ context.Context, id string) error {
	f.LastMarked = id
	if f.markErr != nil {
		return f.markErr
	}
	u, ok := f.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.EmailVerified = true
	return nil
}

type fakeSessionsRepo struct {
	createErr error

	LastCreated  *models.Session
	LastExtended []any
	LastDeleted  string
}

func (f *fakeSessionsRepo) Create(_ context.Context, s *models.Session) error {
	f.LastCreated = s
	return f.createErr
}

func (f *fakeSessionsRepo) Find(_ context.Context, token string) (*models.Session, error) {
	if f.LastCreated != nil && f.LastCreated.Token == token {
		return f.LastCreated, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeSessionsRepo) Extend(_ context.Context, token string, expiresAt, lastActivity time.Time) error {
	f.LastExtended = []any{token, expiresAt, lastActivity}
	return nil
}

func (f *fakeSessionsRepo) Delete(_ context.Context, token string) error {
	f.LastDeleted = token
	return nil
}

type fakeVerificationsRepo struct {
	mu sync.Mutex

	tokens     map[string]*models.EmailVerification
	consumeErr error
	createErr  error
	revokeErr  error

	LastCreated *models.EmailVerification
	LastRevoked string
}

func newFakeVerificationsRepo() *fakeVerificationsRepo {
	return &fakeVerificationsRepo{tokens: map[string]*models.EmailVerification{}}
}

func (f *fakeVerificationsRepo) Create(_ context.Context, v *models.EmailVerification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LastCreated = v
	if f.createErr != nil {
		return f.createErr
	}
	f.tokens[v.Token] = v
	return nil
}

func (f *fakeVerificationsRepo) Consume(_ context.Context, token string, now time.Time) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.consumeErr != nil {
		return "", f.consumeErr
	}
	v, ok := f.tokens[token]
	if !ok || v.UsedAt != nil || !v.ExpiresAt.After(now) {
		return "", common.ErrorNotFound
	}
	v.UsedAt = &now
	return v.UserID, nil
}

func (f *fakeVerificationsRepo) Revoke(_ context.Context, userID string, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LastRevoked = userID
	if f.revokeErr != nil {
		return f.revokeErr
	}
	for _, v := range f.tokens {
		if v.UserID == userID && v.UsedAt == nil {
			v.UsedAt = &now
		}
	}
	return nil
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	s *fakeSessionsRepo
	v *fakeVerificationsRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error        { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) usersrepo.Repository                 { return m.u }
func (m *fakeRepoManager) Sessions(dbx.DBTX) sessionsrepo.Repository           { return m.s }
func (m *fakeRepoManager) Verifications(dbx.DBTX) verificationsrepo.Repository { return m.v }

type fakePublisher struct {
	err  error
	Jobs []models.EmailJob
}

func (p *fakePublisher) Publish(_ context.Context, job models.EmailJob) error {
	p.Jobs = append(p.Jobs, job)
	return p.err
}

func (p *fakePublisher) Close() error { return nil }
