// Package notify hands verification email jobs to the mail worker, either
// over RabbitMQ or, without a broker, to the log.
package notify

import (
	"context"

	"github.com/dmitrijs2005/accountkeeper/internal/logging"
	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
)

// Publisher delivers email jobs.
type Publisher interface {
	Publish(ctx context.Context, job models.EmailJob) error
	Close() error
}

// LogPublisher writes jobs to the log. It is used when no broker is configured.
type LogPublisher struct {
	log logging.Logger
}

func NewLogPublisher(l logging.Logger) *LogPublisher {
	return &LogPublisher{log: l.With("module", "notify")}
}

func (p *LogPublisher) Publish(ctx context.Context, job models.EmailJob) error {
	p.log.Info(ctx, "verification email", "email", job.Email, "token", job.Token, "expires_at", job.ExpiresAt)
	return nil
}

func (p *LogPublisher) Close() error { return nil }
