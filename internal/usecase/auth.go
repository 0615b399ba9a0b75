package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Rista10/event-planner-application/internal/core/domain"
	"github.com/Rista10/event-planner-application/internal/core/port"
	"github.com/Rista10/event-planner-application/internal/infra/logger"
	"github.com/Rista10/event-planner-application/internal/repository"
)

const (
	defaultVerificationTTL = 24 * time.Hour
	defaultResetTTL        = time.Hour
	defaultTwoFactorTTL    = 10 * time.Minute

	// dummyPassword is hashed once so unknown-email logins spend the same time in Verify.
	dummyPassword = "event-planner-timing-guard"
)

// User facing messages returned by the message-only operations.
const (
	MessageEmailVerified     = "Email verified successfully"
	MessageVerificationSent  = "If the email exists, a verification link has been sent"
	MessagePasswordResetSent = "If the email exists, a password reset link has been sent"
	MessagePasswordReset     = "Password reset successfully"
	MessageTwoFactorEnabled  = "Two-factor authentication enabled"
	MessageTwoFactorDisabled = "Two-factor authentication disabled"
	MessageLoggedOut         = "Logged out successfully"
)

// TokenTTLs controls how long each single-use token stays redeemable.
type TokenTTLs struct {
	EmailVerification time.Duration
	PasswordReset     time.Duration
	TwoFactor         time.Duration
}

func (t TokenTTLs) withDefaults() TokenTTLs {
	if t.EmailVerification <= 0 {
		t.EmailVerification = defaultVerificationTTL
	}
	if t.PasswordReset <= 0 {
		t.PasswordReset = defaultResetTTL
	}
	if t.TwoFactor <= 0 {
		t.TwoFactor = defaultTwoFactorTTL
	}
	return t
}

// SignupInput carries the fields of a new account.
type SignupInput struct {
	Name     string
	Email    string
	Password string
}

// LoginInput carries email and password credentials.
type LoginInput struct {
	Email    string
	Password string
}

// AuthResult is returned whenever a session pair is issued.
type AuthResult struct {
	User         domain.PublicProfile
	AccessToken  string
	RefreshToken string
}

// LoginResult is either a session or a two-factor challenge marker.
type LoginResult struct {
	RequiresTwoFactor bool
	UserID            string
	Auth              *AuthResult
}

// AuthService coordinates signup, login, session refresh and account recovery.
type AuthService struct {
	users    port.UserRepository
	tokens   *TokenService
	hasher   port.PasswordHasher
	policy   port.PasswordPolicy
	mailer   port.Mailer
	sessions port.SessionTokenIssuer
	events   port.EventPublisher
	tx       port.Transactor
	metrics  port.AuthMetrics
	ttls     TokenTTLs
	logger   *zap.Logger
	now      func() time.Time

	// twoFactor gates the login challenge. When off, accounts with 2FA enabled log in with the password alone.
	twoFactor bool
	dummyHash string
}

// NewAuthService constructs an AuthService.
func NewAuthService(
	users port.UserRepository,
	tokens *TokenService,
	hasher port.PasswordHasher,
	policy port.PasswordPolicy,
	mailer port.Mailer,
	sessions port.SessionTokenIssuer,
	events port.EventPublisher,
	tx port.Transactor,
	ttls TokenTTLs,
) *AuthService {
	s := &AuthService{
		users:    users,
		tokens:   tokens,
		hasher:   hasher,
		policy:   policy,
		mailer:   mailer,
		sessions: sessions,
		events:   events,
		tx:       tx,
		metrics:  port.NopAuthMetrics{},
		ttls:     ttls.withDefaults(),
		logger:   zap.NewNop(),
		now:      time.Now,

		twoFactor: true,
	}
	if hasher != nil {
		s.dummyHash, _ = hasher.Hash(dummyPassword)
	}
	return s
}

// WithLogger attaches a structured logger.
func (s *AuthService) WithLogger(l *zap.Logger) *AuthService {
	if l != nil {
		s.logger = l
	}
	return s
}

// WithClock overrides the time source used for event timestamps.
func (s *AuthService) WithClock(clock func() time.Time) *AuthService {
	if clock != nil {
		s.now = clock
	}
	return s
}

// WithTwoFactor switches the login challenge on or off.
func (s *AuthService) WithTwoFactor(enabled bool) *AuthService {
	s.twoFactor = enabled
	return s
}

// WithMetrics records operation outcomes on m.
func (s *AuthService) WithMetrics(m port.AuthMetrics) *AuthService {
	if m != nil {
		s.metrics = m
	}
	return s
}

// Signup creates an unverified account, sends the verification email and opens a session.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (result *AuthResult, err error) {
	defer func() { s.observe("signup", err) }()

	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)
	if name == "" || email == "" || in.Password == "" {
		return nil, NewValidationError("name, email and password are required")
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailAlreadyExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if err := s.checkPassword(in.Password, domain.PasswordContext{Name: name, Email: email}); err != nil {
		return nil, err
	}
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, domain.User{Name: name, Email: email, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	issued, err := s.tokens.CreateToken(ctx, user.ID, domain.TokenTypeEmailVerification, s.ttls.EmailVerification)
	if err != nil {
		return nil, fmt.Errorf("create verification token: %w", err)
	}
	if err := s.mailer.SendVerificationEmail(ctx, user.Email, user.Name, issued.Plaintext); err != nil {
		s.mailFailed(ctx, "verification", user, err)
	}

	s.publish(ctx, "user.registered", user.ID, func(p port.EventPublisher) error {
		return p.PublishUserRegistered(ctx, domain.UserRegisteredEvent{
			UserID:       user.ID,
			Name:         user.Name,
			Email:        user.Email,
			RegisteredAt: s.now().UTC(),
		})
	})

	s.logger.Info("user registered", zap.String("user_id", user.ID), zap.String("email", logger.MaskEmail(user.Email)))
	return s.issueSession(*user)
}

// Login checks credentials. Accounts with two-factor enabled receive a code by email and a challenge marker instead of tokens.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (result *LoginResult, err error) {
	defer func() {
		switch {
		case err == nil && result.RequiresTwoFactor:
			s.metrics.ObserveAuthOperation("login", "two_factor_required")
		default:
			s.observe("login", err)
		}
	}()

	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			if s.dummyHash != "" {
				_, _ = s.hasher.Verify(in.Password, s.dummyHash)
			}
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	ok, err := s.hasher.Verify(in.Password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	if s.twoFactor && user.TwoFactorEnabled {
		issued, err := s.tokens.CreateToken(ctx, user.ID, domain.TokenTypeTwoFactor, s.ttls.TwoFactor)
		if err != nil {
			return nil, fmt.Errorf("create two-factor code: %w", err)
		}
		if err := s.mailer.SendTwoFactorCode(ctx, user.Email, user.Name, issued.Plaintext); err != nil {
			s.mailFailed(ctx, "two_factor", user, err)
		}
		return &LoginResult{RequiresTwoFactor: true, UserID: user.ID}, nil
	}

	auth, err := s.issueSession(*user)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Auth: auth}, nil
}

// VerifyTwoFactor redeems the latest two-factor code for the user and opens a session.
func (s *AuthService) VerifyTwoFactor(ctx context.Context, userID, otp string) (result *AuthResult, err error) {
	defer func() { s.observe("verify_2fa", err) }()

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.VerifyOtpForUser(ctx, user.ID, otp)
	if err != nil {
		return nil, err
	}
	if err := s.tokens.ConsumeToken(ctx, token.ID); err != nil {
		if errors.Is(err, ErrInvalidOrExpiredToken) {
			return nil, ErrInvalidOTP
		}
		return nil, err
	}

	return s.issueSession(*user)
}

// RefreshAccessToken mints a new pair from a valid refresh token using the current profile.
// The presented refresh token is not revoked.
func (s *AuthService) RefreshAccessToken(ctx context.Context, refreshToken string) (result *AuthResult, err error) {
	defer func() { s.observe("refresh", err) }()

	subject, err := s.sessions.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	user, err := s.users.GetByID(ctx, subject.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	return s.issueSession(*user)
}

// Logout has no server side state to clear; callers drop the refresh cookie.
func (s *AuthService) Logout(context.Context) error {
	s.metrics.ObserveAuthOperation("logout", "success")
	return nil
}

// EnableTwoFactor turns two-factor login on or off for the user.
func (s *AuthService) EnableTwoFactor(ctx context.Context, userID string, enable bool) (message string, err error) {
	defer func() { s.observe("toggle_2fa", err) }()

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return "", err
	}

	if err := s.users.SetTwoFactorEnabled(ctx, user.ID, enable); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("update two-factor flag: %w", err)
	}

	s.publish(ctx, "user.two_factor_toggled", user.ID, func(p port.EventPublisher) error {
		return p.PublishTwoFactorToggled(ctx, domain.TwoFactorToggledEvent{
			UserID:    user.ID,
			Enabled:   enable,
			ToggledAt: s.now().UTC(),
		})
	})

	if enable {
		return MessageTwoFactorEnabled, nil
	}
	return MessageTwoFactorDisabled, nil
}

func (s *AuthService) issueSession(user domain.User) (*AuthResult, error) {
	pair, err := s.sessions.IssuePair(port.SessionSubject{UserID: user.ID, Email: user.Email, Name: user.Name})
	if err != nil {
		return nil, fmt.Errorf("issue session: %w", err)
	}
	return &AuthResult{
		User:         user.Profile(),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}

func (s *AuthService) loadUser(ctx context.Context, id string) (*domain.User, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrUserNotFound
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	return user, nil
}

func (s *AuthService) checkPassword(password string, pc domain.PasswordContext) error {
	if s.policy == nil {
		return nil
	}
	if err := s.policy.Validate(password, pc); err != nil {
		return NewValidationError(err.Error())
	}
	return nil
}

// withinTx runs fn in a transaction when a Transactor is configured.
func (s *AuthService) withinTx(ctx context.Context, fn func(ctx context.Context, users port.UserRepository, tokens *TokenService) error) error {
	if s.tx == nil {
		return fn(ctx, s.users, s.tokens)
	}
	return s.tx.WithinTx(ctx, func(ctx context.Context, repos port.TxRepositories) error {
		return fn(ctx, repos.Users, s.tokens.WithTx(repos.Tokens))
	})
}

func (s *AuthService) publish(ctx context.Context, eventType, userID string, send func(port.EventPublisher) error) {
	if s.events == nil {
		return
	}
	if err := send(s.events); err != nil {
		s.metrics.ObserveDeliveryFailure("event", eventType)
		logger.WithContext(ctx, s.logger).Warn("publish event failed",
			zap.String("event_type", eventType),
			zap.String("user_id", userID),
			zap.Error(err),
		)
	}
}

// mailFailed records a best-effort email that could not be sent. The calling operation still succeeds.
func (s *AuthService) mailFailed(ctx context.Context, kind string, user *domain.User, err error) {
	s.metrics.ObserveDeliveryFailure("email", kind)
	logger.WithContext(ctx, s.logger).Warn("send email failed",
		zap.String("kind", kind),
		zap.String("user_id", user.ID),
		zap.String("email", logger.MaskEmail(user.Email)),
		zap.Error(err),
	)
}

func (s *AuthService) observe(operation string, err error) {
	s.metrics.ObserveAuthOperation(operation, outcomeOf(err))
}

func outcomeOf(err error) string {
	var vErr *ValidationError
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &vErr):
		return "invalid_input"
	case errors.Is(err, ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, ErrEmailAlreadyExists):
		return "conflict"
	case errors.Is(err, ErrInvalidOrExpiredToken), errors.Is(err, ErrInvalidOTP), errors.Is(err, ErrInvalidRefreshToken):
		return "invalid_token"
	case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrEmailAlreadyVerified):
		return "rejected"
	default:
		return "error"
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
