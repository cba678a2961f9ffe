package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/accountkeeper/internal/client/client"
	"github.com/dmitrijs2005/accountkeeper/internal/client/models"
)

// fakeBackend is an in-memory client.Backend that records what it was asked.
type fakeBackend struct {
	mu sync.Mutex

	users        map[string]*models.User // by id
	sessions     map[string]*models.Session
	verification map[string]string // token -> user id

	// injected failures
	InsertErr     error
	GetUserErr    error
	GetSessionErr error
	ExtendErr     error
	DeleteErr     error
	SendErr       error
	VerifyErr     error

	// beforeGetUserByID runs inside GetUserByID before it answers.
	beforeGetUserByID func()

	// captures
	CreatedTokens     []string
	DeletedTokens     []string
	ExtendCalls       int
	LastExtendToken   string
	LastExtendExpiry  time.Time
	SentEmails        []string
	LastSentFirstName string
	LastVerifiedToken string
	GetSessionCalls   int
	GetUserByIDCalls  int

	nextID int
}

var _ client.Backend = (*fakeBackend)(nil)

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		users:        map[string]*models.User{},
		sessions:     map[string]*models.Session{},
		verification: map[string]string{},
	}
}

func (f *fakeBackend) InsertUser(_ context.Context, nu models.NewUser) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.InsertErr != nil {
		return nil, f.InsertErr
	}
	for _, u := range f.users {
		if u.Email == nu.Email {
			return nil, &client.APIError{Status: 409, Code: client.DuplicateKeyCode, Message: "duplicate key value violates unique constraint \"users_email_key\""}
		}
	}
	f.nextID++
	u := &models.User{
		ID:            fmt.Sprintf("u-%d", f.nextID),
		Email:         nu.Email,
		PasswordHash:  nu.PasswordHash,
		FirstName:     nu.FirstName,
		LastName:      nu.LastName,
		EmailVerified: nu.EmailVerified,
		CreatedAt:     time.Now().UTC(),
	}
	f.users[u.ID] = u
	c := *u
	return &c, nil
}

func (f *fakeBackend) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.GetUserErr != nil {
		return nil, f.GetUserErr
	}
	for _, u := range f.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, client.ErrNotFound
}

func (f *fakeBackend) GetUserByID(_ context.Context, id string) (*models.User, error) {
	if f.beforeGetUserByID != nil {
		f.beforeGetUserByID()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.GetUserByIDCalls++
	if f.GetUserErr != nil {
		return nil, f.GetUserErr
	}
	u, ok := f.users[id]
	if !ok {
		return nil, client.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (f *fakeBackend) CreateSession(_ context.Context, s models.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CreatedTokens = append(f.CreatedTokens, s.Token)
	f.sessions[s.Token] = &s
	return nil
}

func (f *fakeBackend) GetSession(_ context.Context, token string) (*models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.GetSessionCalls++
	if f.GetSessionErr != nil {
		return nil, f.GetSessionErr
	}
	s, ok := f.sessions[token]
	if !ok {
		return nil, client.ErrNotFound
	}
	c := *s
	return &c, nil
}

func (f *fakeBackend) ExtendSession(_ context.Context, token string, expiresAt, lastActivity time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ExtendCalls++
	f.LastExtendToken = token
	f.LastExtendExpiry = expiresAt
	if f.ExtendErr != nil {
		return f.ExtendErr
	}
	if s, ok := f.sessions[token]; ok {
		s.ExpiresAt = expiresAt
		s.LastActivity = lastActivity
	}
	return nil
}

func (f *fakeBackend) DeleteSession(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.DeletedTokens = append(f.DeletedTokens, token)
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	delete(f.sessions, token)
	return nil
}

func (f *fakeBackend) VerifyUserEmail(_ context.Context, token string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LastVerifiedToken = token
	if f.VerifyErr != nil {
		return false, f.VerifyErr
	}
	id, ok := f.verification[token]
	if !ok {
		return false, nil
	}
	delete(f.verification, token)
	f.users[id].EmailVerified = true
	return true, nil
}

func (f *fakeBackend) SendVerificationEmail(_ context.Context, email, firstName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.SentEmails = append(f.SentEmails, email)
	f.LastSentFirstName = firstName
	if f.SendErr != nil {
		return f.SendErr
	}
	for id, u := range f.users {
		if u.Email == email {
			f.verification["verify-"+email] = id
		}
	}
	return nil
}

func (f *fakeBackend) Ping(context.Context) error { return nil }
func (f *fakeBackend) Close() error               { return nil }

// verificationToken returns the pending token for email, as the email would.
func (f *fakeBackend) verificationToken(email string) string {
	return "verify-" + email
}

func (f *fakeBackend) extendCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ExtendCalls
}

func (f *fakeBackend) setSessionExpiry(token string, at time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[token].ExpiresAt = at
}

func (f *fakeBackend) sessionCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sessions)
}
