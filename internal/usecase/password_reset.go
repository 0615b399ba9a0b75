package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Rista10/event-planner-application/internal/core/domain"
	"github.com/Rista10/event-planner-application/internal/core/port"
	"github.com/Rista10/event-planner-application/internal/infra/logger"
	"github.com/Rista10/event-planner-application/internal/repository"
)

// ForgotPassword emails a reset link to known accounts. The returned message does not depend on whether the email exists.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (message string, err error) {
	defer func() { s.observe("forgot_password", err) }()

	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return MessagePasswordResetSent, nil
		}
		return "", fmt.Errorf("lookup user: %w", err)
	}

	issued, err := s.tokens.CreateToken(ctx, user.ID, domain.TokenTypePasswordReset, s.ttls.PasswordReset)
	if err != nil {
		return "", fmt.Errorf("create reset token: %w", err)
	}
	if err := s.mailer.SendPasswordResetEmail(ctx, user.Email, user.Name, issued.Plaintext); err != nil {
		s.mailFailed(ctx, "password_reset", user, err)
	}

	s.publish(ctx, "user.password_reset_requested", user.ID, func(p port.EventPublisher) error {
		return p.PublishPasswordResetRequested(ctx, domain.PasswordResetRequestedEvent{
			UserID:            user.ID,
			MaskedDestination: logger.MaskEmail(user.Email),
			RequestedAt:       issued.Token.CreatedAt,
			ExpiresAt:         issued.Token.ExpiresAt,
		})
	})

	return MessagePasswordResetSent, nil
}

// ResetPassword redeems a reset token and replaces the password hash in the same transaction.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) (message string, err error) {
	defer func() { s.observe("reset_password", err) }()

	record, err := s.tokens.VerifyToken(ctx, token, domain.TokenTypePasswordReset)
	if err != nil {
		return "", err
	}

	user, err := s.users.GetByID(ctx, record.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrInvalidOrExpiredToken
		}
		return "", fmt.Errorf("lookup user: %w", err)
	}

	if err := s.checkPassword(newPassword, domain.PasswordContext{Name: user.Name, Email: user.Email}); err != nil {
		return "", err
	}
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	err = s.withinTx(ctx, func(ctx context.Context, users port.UserRepository, tokens *TokenService) error {
		if err := tokens.ConsumeToken(ctx, record.ID); err != nil {
			return err
		}
		return users.UpdatePassword(ctx, user.ID, hash)
	})
	if err != nil {
		if errors.Is(err, ErrInvalidOrExpiredToken) || errors.Is(err, repository.ErrNotFound) {
			return "", ErrInvalidOrExpiredToken
		}
		return "", fmt.Errorf("reset password: %w", err)
	}

	s.publish(ctx, "user.password_changed", user.ID, func(p port.EventPublisher) error {
		return p.PublishPasswordChanged(ctx, domain.PasswordChangedEvent{
			UserID:    user.ID,
			ChangedAt: s.now().UTC(),
		})
	})

	s.logger.Info("password reset", zap.String("user_id", user.ID))
	return MessagePasswordReset, nil
}
