package verifications

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
)

const (
	createQuery  = `(?s)^INSERT\s+INTO\s+email_verifications\s*\(token,\s*user_id,\s*expires_at\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3\)\s*$`
	consumeQuery = `(?s)^UPDATE\s+email_verifications\s+SET\s+used_at\s*=\s*\$2\s+WHERE\s+token\s*=\s*\$1\s+AND\s+used_at\s+IS\s+NULL\s+AND\s+expires_at\s*>\s*\$2\s+RETURNING\s+user_id\s*$`
	revokeQuery  = `(?s)^UPDATE\s+email_verifications\s+SET\s+used_at\s*=\s*\$2\s+WHERE\s+user_id\s*=\s*\$1\s+AND\s+used_at\s+IS\s+NULL\s*$`
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

func TestCreate(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	exp := time.Now().Add(24 * time.Hour)

	mock.ExpectExec(createQuery).WithArgs("tok", "u1", exp).WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Create(context.Background(), &models.EmailVerification{Token: "tok", UserID: "u1", ExpiresAt: exp}))

	mock.ExpectExec(createQuery).WillReturnError(errors.New("db down"))
	err := repo.Create(context.Background(), &models.EmailVerification{Token: "tok", UserID: "u1", ExpiresAt: exp})
	require.Error(t, err)
	require.Regexp(t, regexp.MustCompile(`db error: .*db down`), err.Error())

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestConsume_Success(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(consumeQuery).
		WithArgs("tok", now).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow("u1"))

	userID, err := repo.Consume(context.Background(), "tok", now)
	require.NoError(t, err)
	require.Equal(t, "u1", userID)
}

func TestConsume_UnknownUsedOrExpired(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(consumeQuery).WithArgs("stale", now).WillReturnError(sql.ErrNoRows)

	_, err := repo.Consume(context.Background(), "stale", now)
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestConsume_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(consumeQuery).WithArgs("tok", now).WillReturnError(errors.New("db err"))

	_, err := repo.Consume(context.Background(), "tok", now)
	require.Error(t, err)
	require.NotErrorIs(t, err, common.ErrorNotFound)
}

func TestRevoke(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectExec(revokeQuery).WithArgs("u1", now).WillReturnResult(sqlmock.NewResult(0, 2))
	require.NoError(t, repo.Revoke(context.Background(), "u1", now))

	mock.ExpectExec(revokeQuery).WithArgs("u1", now).WillReturnError(errors.New("db err"))
	require.Error(t, repo.Revoke(context.Background(), "u1", now))
}
