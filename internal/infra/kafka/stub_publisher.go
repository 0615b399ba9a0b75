package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Rista10/event-planner-application/internal/core/domain"
	"github.com/Rista10/event-planner-application/internal/core/port"
	"github.com/Rista10/event-planner-application/internal/infra/logger"
)

// StubPublisher logs events instead of sending them to Kafka. Used when no brokers are configured.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

func (p *StubPublisher) logEvent(eventType, userID string, at time.Time, payload map[string]any) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Info("Stub event published",
		zap.String("event_type", eventType),
		zap.String("user_id", userID),
		zap.Time("timestamp", at.UTC()),
		zap.Any("payload", payload),
	)
}

func (p *StubPublisher) PublishUserRegistered(_ context.Context, event domain.UserRegisteredEvent) error {
	p.logEvent(EventUserRegistered, event.UserID, event.RegisteredAt, map[string]any{
		"name":  event.Name,
		"email": logger.MaskEmail(event.Email),
	})
	return nil
}

func (p *StubPublisher) PublishEmailVerified(_ context.Context, event domain.EmailVerifiedEvent) error {
	p.logEvent(EventEmailVerified, event.UserID, event.VerifiedAt, nil)
	return nil
}

func (p *StubPublisher) PublishPasswordResetRequested(_ context.Context, event domain.PasswordResetRequestedEvent) error {
	p.logEvent(EventPasswordResetRequested, event.UserID, event.RequestedAt, map[string]any{
		"masked_destination": event.MaskedDestination,
		"expires_at":         event.ExpiresAt,
	})
	return nil
}

func (p *StubPublisher) PublishPasswordChanged(_ context.Context, event domain.PasswordChangedEvent) error {
	p.logEvent(EventPasswordChanged, event.UserID, event.ChangedAt, nil)
	return nil
}

func (p *StubPublisher) PublishTwoFactorToggled(_ context.Context, event domain.TwoFactorToggledEvent) error {
	p.logEvent(EventTwoFactorToggled, event.UserID, event.ToggledAt, map[string]any{
		"enabled": event.Enabled,
	})
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)
