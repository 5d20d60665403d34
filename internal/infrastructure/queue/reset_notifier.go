// Package queue hands password reset notices to the mail worker over
// RabbitMQ.
package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/aquatech-dashboard/internal/domain/entity"
	"github.com/oksasatya/aquatech-dashboard/internal/domain/repository"
)

const (
	DefaultResetQueue = "password_resets"
	publishTimeout    = 3 * time.Second
)

// Publisher is satisfied by helpers.RabbitPublisher.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

type ResetNotifier struct {
	pub    Publisher
	logger *logrus.Logger
}

func NewResetNotifier(pub Publisher, logger *logrus.Logger) *ResetNotifier {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &ResetNotifier{pub: pub, logger: logger}
}

func (n *ResetNotifier) NotifyReset(ctx context.Context, notice entity.ResetNotice) error {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := n.pub.PublishJSON(ctx, notice); err != nil {
		return fmt.Errorf("publish reset notice: %w", err)
	}
	n.logger.WithField("email", notice.Email).Debug("reset notice queued")
	return nil
}

// LogNotifier is used when no broker is configured. The link itself is not
// logged.
type LogNotifier struct {
	Logger *logrus.Logger
}

func (n LogNotifier) NotifyReset(_ context.Context, notice entity.ResetNotice) error {
	n.Logger.WithFields(logrus.Fields{
		"email":      notice.Email,
		"expires_at": notice.ExpiresAt.Format(time.RFC3339),
	}).Info("password reset requested; no queue configured")
	return nil
}

var (
	_ repository.ResetNotifier = (*ResetNotifier)(nil)
	_ repository.ResetNotifier = LogNotifier{}
)
