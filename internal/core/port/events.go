package port

import (
	"context"

	"github.com/Rista10/event-planner-application/internal/core/domain"
)

// EventPublisher publishes account lifecycle events to downstream consumers.
type EventPublisher interface {
	PublishUserRegistered(ctx context.Context, event domain.UserRegisteredEvent) error
	PublishEmailVerified(ctx context.Context, event domain.EmailVerifiedEvent) error
	PublishPasswordResetRequested(ctx context.Context, event domain.PasswordResetRequestedEvent) error
	PublishPasswordChanged(ctx context.Context, event domain.PasswordChangedEvent) error
	PublishTwoFactorToggled(ctx context.Context, event domain.TwoFactorToggledEvent) error
}
