// Package notification delivers user-facing messages. Calls are fire and
// forget from the callers' perspective: a delivery failure is logged and
// never rolls back the state change that triggered it.
package notification

import (
	"context"

	"go.uber.org/zap"
)

// EmailService sends transactional email.
type EmailService interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// LogEmailService writes outgoing mail to the log instead of an SMTP
// gateway. Used in development and as the default until a real provider is
// configured.
type LogEmailService struct {
	Logger *zap.Logger
}

func NewLogEmailService(logger *zap.Logger) *LogEmailService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogEmailService{Logger: logger}
}

func (s *LogEmailService) SendEmail(ctx context.Context, to, subject, body string) error {
	s.Logger.Info("email dispatched",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.Int("bodyBytes", len(body)),
	)
	return nil
}

var _ EmailService = (*LogEmailService)(nil)
