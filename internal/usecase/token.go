package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"

	"github.com/Rista10/event-planner-application/internal/core/domain"
	"github.com/Rista10/event-planner-application/internal/core/port"
	"github.com/Rista10/event-planner-application/internal/infra/security"
	"github.com/Rista10/event-planner-application/internal/repository"
)

// IssuedToken pairs the stored token record with the plaintext delivered to the user.
// The plaintext is never persisted.
type IssuedToken struct {
	Token     *domain.AuthToken
	Plaintext string
}

// TokenService issues, verifies and consumes single-use auth tokens.
type TokenService struct {
	tokens    port.TokenRepository
	otpHasher port.PasswordHasher
	now       func() time.Time
}

// NewTokenService constructs a TokenService. otpHasher hashes two-factor codes.
func NewTokenService(tokens port.TokenRepository, otpHasher port.PasswordHasher) *TokenService {
	return &TokenService{
		tokens:    tokens,
		otpHasher: otpHasher,
		now:       time.Now,
	}
}

// WithClock overrides the time source used for expiry and consumption.
func (s *TokenService) WithClock(clock func() time.Time) *TokenService {
	if clock != nil {
		s.now = clock
	}
	return s
}

// WithTx returns a copy of the service that uses tokens, typically a transaction-bound repository.
func (s *TokenService) WithTx(tokens port.TokenRepository) *TokenService {
	clone := *s
	clone.tokens = tokens
	return &clone
}

// CreateToken invalidates every unused token of tokenType for the user and stores a new one.
func (s *TokenService) CreateToken(ctx context.Context, userID string, tokenType domain.TokenType, ttl time.Duration) (*IssuedToken, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, NewValidationError("user id is required")
	}
	if !tokenType.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedTokenType, tokenType)
	}
	if ttl <= 0 {
		return nil, NewValidationError("token ttl must be positive")
	}

	plaintext, hash, err := s.generate(tokenType)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if _, err := s.tokens.InvalidateByUserAndType(ctx, userID, tokenType, now); err != nil {
		return nil, fmt.Errorf("invalidate previous tokens: %w", err)
	}

	stored, err := s.tokens.Create(ctx, domain.AuthToken{
		ID:        uuid.NewString(),
		UserID:    userID,
		TokenHash: hash,
		Type:      tokenType,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	})
	if err != nil {
		return nil, fmt.Errorf("store token: %w", err)
	}

	return &IssuedToken{Token: stored, Plaintext: plaintext}, nil
}

func (s *TokenService) generate(tokenType domain.TokenType) (string, string, error) {
	if tokenType.IsOTP() {
		if s.otpHasher == nil {
			return "", "", fmt.Errorf("otp hasher not configured")
		}
		code, err := security.GenerateNumericCode(security.OTPLength)
		if err != nil {
			return "", "", err
		}
		hash, err := s.otpHasher.Hash(code)
		if err != nil {
			return "", "", fmt.Errorf("hash otp: %w", err)
		}
		return code, hash, nil
	}

	raw, err := security.GenerateHexToken(security.OpaqueTokenBytes)
	if err != nil {
		return "", "", err
	}
	return raw, security.HashToken(raw), nil
}

// VerifyToken looks up an active long token of tokenType by its digest.
func (s *TokenService) VerifyToken(ctx context.Context, plaintext string, tokenType domain.TokenType) (*domain.AuthToken, error) {
	if tokenType.IsOTP() || !tokenType.Valid() {
		return nil, fmt.Errorf("%w: %q cannot be verified by value", ErrUnsupportedTokenType, tokenType)
	}
	if plaintext == "" {
		return nil, ErrInvalidOrExpiredToken
	}

	token, err := s.tokens.FindActiveByHash(ctx, security.HashToken(plaintext), tokenType, s.now().UTC())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidOrExpiredToken
		}
		return nil, fmt.Errorf("lookup token: %w", err)
	}
	return token, nil
}

// VerifyOtpForUser compares otp against the user's most recent active two-factor code.
func (s *TokenService) VerifyOtpForUser(ctx context.Context, userID, otp string) (*domain.AuthToken, error) {
	if otp == "" {
		return nil, ErrInvalidOTP
	}
	if s.otpHasher == nil {
		return nil, fmt.Errorf("otp hasher not configured")
	}

	token, err := s.tokens.FindLatestActiveByUser(ctx, userID, domain.TokenTypeTwoFactor, s.now().UTC())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidOTP
		}
		return nil, fmt.Errorf("lookup otp: %w", err)
	}

	ok, err := s.otpHasher.Verify(otp, token.TokenHash)
	if err != nil {
		return nil, fmt.Errorf("verify otp: %w", err)
	}
	if !ok {
		return nil, ErrInvalidOTP
	}
	return token, nil
}

// ConsumeToken marks the token as used. Only the first consumer succeeds.
func (s *TokenService) ConsumeToken(ctx context.Context, tokenID string) error {
	if err := s.tokens.MarkUsed(ctx, tokenID, s.now().UTC()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidOrExpiredToken
		}
		return fmt.Errorf("consume token: %w", err)
	}
	return nil
}

// InvalidateUserTokens marks every unused token of tokenType for the user as used.
func (s *TokenService) InvalidateUserTokens(ctx context.Context, userID string, tokenType domain.TokenType) error {
	if _, err := s.tokens.InvalidateByUserAndType(ctx, userID, tokenType, s.now().UTC()); err != nil {
		return fmt.Errorf("invalidate tokens: %w", err)
	}
	return nil
}
