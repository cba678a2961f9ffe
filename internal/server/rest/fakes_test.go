package rest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/logging"
	"github.com/dmitrijs2005/accountkeeper/internal/server/auth"
	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
	"github.com/dmitrijs2005/accountkeeper/internal/server/services"
)

const testSecret = "test-secret"

type fakeTables struct {
	User    *models.User
	Session *models.Session
	Err     error

	LastNewUser    services.NewUser
	LastEmail      string
	LastID         string
	LastSession    *models.Session
	LastToken      string
	LastExpiresAt  time.Time
	LastActivity   time.Time
	ExtendCalls    int
	DeleteCalls    int
	GetByIDCalls   int
	GetEmailCalls  int
	GetSessCalls   int
	InsertUserCall int
}

func (f *fakeTables) InsertUser(_ context.Context, in services.NewUser) (*models.User, error) {
	f.InsertUserCall++
	f.LastNewUser = in
	if f.Err != nil {
		return nil, f.Err
	}
	return &models.User{
		ID:            "u-1",
		Email:         in.Email,
		PasswordHash:  in.PasswordHash,
		FirstName:     in.FirstName,
		LastName:      in.LastName,
		EmailVerified: in.EmailVerified,
	}, nil
}

func (f *fakeTables) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	f.GetEmailCalls++
	f.LastEmail = email
	return f.User, f.Err
}

func (f *fakeTables) GetUserByID(_ context.Context, id string) (*models.User, error) {
	f.GetByIDCalls++
	f.LastID = id
	return f.User, f.Err
}

func (f *fakeTables) CreateSession(_ context.Context, s *models.Session) error {
	f.LastSession = s
	return f.Err
}

func (f *fakeTables) GetSession(_ context.Context, token string) (*models.Session, error) {
	f.GetSessCalls++
	f.LastToken = token
	return f.Session, f.Err
}

func (f *fakeTables) ExtendSession(_ context.Context, token string, expiresAt, lastActivity time.Time) error {
	f.ExtendCalls++
	f.LastToken = token
	f.LastExpiresAt = expiresAt
	f.LastActivity = lastActivity
	return f.Err
}

func (f *fakeTables) DeleteSession(_ context.Context, token string) error {
	f.DeleteCalls++
	f.LastToken = token
	return f.Err
}

type fakeVerifier struct {
	Verified bool
	Err      error

	LastToken     string
	LastEmail     string
	LastFirstName string
	SendCalls     int
}

func (f *fakeVerifier) VerifyUserEmail(_ context.Context, token string) (bool, error) {
	f.LastToken = token
	return f.Verified, f.Err
}

func (f *fakeVerifier) SendVerificationEmail(_ context.Context, email, firstName string) error {
	f.SendCalls++
	f.LastEmail = email
	f.LastFirstName = firstName
	return f.Err
}

func newTestServer(t *testing.T, ts *fakeTables, vs *fakeVerifier) *Server {
	t.Helper()
	s, err := NewServer("127.0.0.1:0", logging.Nop(), ts, vs, testSecret, prometheus.NewRegistry())
	require.NoError(t, err)
	return s
}

func anonKey(t *testing.T) string {
	t.Helper()
	key, err := auth.GenerateAPIKey(auth.RoleAnon, []byte(testSecret), 0)
	require.NoError(t, err)
	return key
}

// do sends an authenticated request and returns the recorded response.
func do(t *testing.T, s *Server, method, target, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(common.APIKeyHeaderName, anonKey(t))
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}
