package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/Rista10/event-planner-application/internal/core/domain"
	"github.com/Rista10/event-planner-application/internal/core/port"
	"github.com/Rista10/event-planner-application/internal/repository"
)

// VerifyEmail redeems an email verification token and marks the account verified.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) (message string, err error) {
	defer func() { s.observe("verify_email", err) }()

	record, err := s.tokens.VerifyToken(ctx, token, domain.TokenTypeEmailVerification)
	if err != nil {
		return "", err
	}

	user, err := s.loadUser(ctx, record.UserID)
	if err != nil {
		return "", err
	}
	if user.IsEmailVerified {
		return "", ErrEmailAlreadyVerified
	}

	err = s.withinTx(ctx, func(ctx context.Context, users port.UserRepository, tokens *TokenService) error {
		if err := tokens.ConsumeToken(ctx, record.ID); err != nil {
			return err
		}
		return users.SetEmailVerified(ctx, user.ID, true)
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrUserNotFound
		}
		if errors.Is(err, ErrInvalidOrExpiredToken) {
			return "", err
		}
		return "", fmt.Errorf("verify email: %w", err)
	}

	s.publish(ctx, "user.email_verified", user.ID, func(p port.EventPublisher) error {
		return p.PublishEmailVerified(ctx, domain.EmailVerifiedEvent{
			UserID:     user.ID,
			VerifiedAt: s.now().UTC(),
		})
	})

	return MessageEmailVerified, nil
}

// ResendVerificationEmail issues a fresh verification token. The previous one stops working.
// Unknown emails receive the same message as known ones.
func (s *AuthService) ResendVerificationEmail(ctx context.Context, email string) (message string, err error) {
	defer func() { s.observe("resend_verification", err) }()

	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return MessageVerificationSent, nil
		}
		return "", fmt.Errorf("lookup user: %w", err)
	}
	if user.IsEmailVerified {
		return "", ErrEmailAlreadyVerified
	}

	issued, err := s.tokens.CreateToken(ctx, user.ID, domain.TokenTypeEmailVerification, s.ttls.EmailVerification)
	if err != nil {
		return "", fmt.Errorf("create verification token: %w", err)
	}
	if err := s.mailer.SendVerificationEmail(ctx, user.Email, user.Name, issued.Plaintext); err != nil {
		s.mailFailed(ctx, "verification", user, err)
	}

	return MessageVerificationSent, nil
}
