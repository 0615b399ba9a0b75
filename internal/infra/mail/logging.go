package mail

import (
	"context"

	"go.uber.org/zap"

	"github.com/Rista10/event-planner-application/internal/core/port"
	"github.com/Rista10/event-planner-application/internal/infra/config"
	"github.com/Rista10/event-planner-application/internal/infra/logger"
)

// LoggingMailer stands in for SMTP when no credentials are configured. Nothing is delivered.
type LoggingMailer struct {
	logger *zap.Logger
}

// NewLoggingMailer constructs the no-op mailer.
func NewLoggingMailer(log *zap.Logger) *LoggingMailer {
	if log == nil {
		log = zap.NewNop()
	}
	return &LoggingMailer{logger: log}
}

func (m *LoggingMailer) SendVerificationEmail(_ context.Context, to, _, _ string) error {
	m.skip(to, subjectVerification)
	return nil
}

func (m *LoggingMailer) SendPasswordResetEmail(_ context.Context, to, _, _ string) error {
	m.skip(to, subjectPasswordReset)
	return nil
}

func (m *LoggingMailer) SendTwoFactorCode(_ context.Context, to, _, _ string) error {
	m.skip(to, subjectTwoFactorCode)
	return nil
}

func (m *LoggingMailer) skip(to, subject string) {
	m.logger.Warn("SMTP not configured - skipping email",
		zap.String("to", logger.MaskEmail(to)),
		zap.String("subject", subject),
	)
}

// New picks the SMTP mailer when credentials are present and the logging fallback otherwise.
func New(cfg config.SMTPSettings, frontendURL string, expiries Expiries, log *zap.Logger) port.Mailer {
	if !cfg.Enabled() {
		return NewLoggingMailer(log)
	}
	return NewSMTPMailer(cfg, frontendURL, expiries, log)
}

var _ port.Mailer = (*LoggingMailer)(nil)
