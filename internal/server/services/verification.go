package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/dbx"
	"github.com/dmitrijs2005/accountkeeper/internal/logging"
	"github.com/dmitrijs2005/accountkeeper/internal/server/config"
	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
	"github.com/dmitrijs2005/accountkeeper/internal/server/notify"
	"github.com/dmitrijs2005/accountkeeper/internal/server/repositories/repomanager"
)

// verificationTokenBytes is the entropy of a verification token; the hex
// form is twice as long.
const verificationTokenBytes = 32

// VerificationService issues and consumes email verification tokens.
type VerificationService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	publisher   notify.Publisher
	log         logging.Logger
	ttl         time.Duration
	now         func() time.Time
}

func NewVerificationService(db *sql.DB, m repomanager.RepositoryManager, p notify.Publisher, l logging.Logger, cfg *config.Config) *VerificationService {
	return &VerificationService{
		db:          db,
		repomanager: m,
		publisher:   p,
		log:         l.With("module", "verification"),
		ttl:         cfg.VerificationTTL,
		now:         time.Now,
	}
}

// VerifyUserEmail consumes token and marks its user verified, in one
// transaction. Unknown, used and expired tokens report false without error.
func (s *VerificationService) VerifyUserEmail(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}

	verified := false
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		userID, err := s.repomanager.Verifications(tx).Consume(ctx, token, s.now().UTC())
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("error consuming token: %w", err)
		}
		if err := s.repomanager.Users(tx).MarkEmailVerified(ctx, userID); err != nil {
			return fmt.Errorf("error marking user verified: %w", err)
		}
		verified = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return verified, nil
}

// SendVerificationEmail issues a fresh token for email, revoking earlier
// ones, and publishes the email job. An empty firstName falls back to the
// stored one. Already verified accounts get no email.
func (s *VerificationService) SendVerificationEmail(ctx context.Context, email, firstName string) error {
	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user.EmailVerified {
		s.log.Info(ctx, "verification skipped, already verified", "user_id", user.ID)
		return nil
	}

	token, err := common.MakeRandHexString(verificationTokenBytes)
	if err != nil {
		return common.ErrorInternal
	}
	now := s.now().UTC()
	v := &models.EmailVerification{Token: token, UserID: user.ID, ExpiresAt: now.Add(s.ttl)}

	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Verifications(tx)
		if err := repo.Revoke(ctx, user.ID, now); err != nil {
			return err
		}
		return repo.Create(ctx, v)
	}); err != nil {
		return fmt.Errorf("error issuing verification token: %w", err)
	}

	if firstName == "" {
		firstName = user.FirstName
	}
	job := models.EmailJob{Email: user.Email, FirstName: firstName, Token: token, ExpiresAt: v.ExpiresAt}
	if err := s.publisher.Publish(ctx, job); err != nil {
		return fmt.Errorf("error publishing verification email: %w", err)
	}

	s.log.Info(ctx, "verification email queued", "user_id", user.ID)
	return nil
}
