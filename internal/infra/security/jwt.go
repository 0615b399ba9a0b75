package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	uuid "github.com/google/uuid"

	"github.com/Rista10/event-planner-application/internal/core/domain"
	"github.com/Rista10/event-planner-application/internal/core/port"
)

const (
	tokenUseAccess  = "access"
	tokenUseRefresh = "refresh"
)

var (
	// ErrSessionTokenExpired indicates the token was well-formed but past its exp claim.
	ErrSessionTokenExpired = errors.New("jwt: token expired")
	// ErrSessionTokenInvalid covers every other parse or validation failure.
	ErrSessionTokenInvalid = errors.New("jwt: token invalid")
)

// SessionClaims is the payload of access and refresh tokens.
type SessionClaims struct {
	UserID   string `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	TokenUse string `json:"typ"`
	jwt.RegisteredClaims
}

// SessionTokenConfig configures SessionTokenManager.
type SessionTokenConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
}

// SessionTokenManager signs and verifies HS256 session tokens.
// Access and refresh tokens use distinct secrets.
type SessionTokenManager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	issuer        string
	now           func() time.Time
}

// NewSessionTokenManager validates cfg and returns a manager.
func NewSessionTokenManager(cfg SessionTokenConfig) (*SessionTokenManager, error) {
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return nil, fmt.Errorf("jwt: access and refresh secrets are required")
	}
	if cfg.AccessSecret == cfg.RefreshSecret {
		return nil, fmt.Errorf("jwt: access and refresh secrets must differ")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, fmt.Errorf("jwt: token ttls must be positive")
	}

	return &SessionTokenManager{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
		issuer:        cfg.Issuer,
		now:           time.Now,
	}, nil
}

// WithClock overrides the time source used for iat/exp and validation.
func (m *SessionTokenManager) WithClock(now func() time.Time) *SessionTokenManager {
	if now != nil {
		m.now = now
	}
	return m
}

// IssuePair signs a fresh access/refresh pair for subject.
func (m *SessionTokenManager) IssuePair(subject port.SessionSubject) (*domain.TokenPair, error) {
	if subject.UserID == "" {
		return nil, fmt.Errorf("jwt: subject user id is required")
	}

	now := m.now().UTC()
	access, accessExp, err := m.sign(subject, tokenUseAccess, m.accessSecret, m.accessTTL, now)
	if err != nil {
		return nil, err
	}
	refresh, refreshExp, err := m.sign(subject, tokenUseRefresh, m.refreshSecret, m.refreshTTL, now)
	if err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

func (m *SessionTokenManager) sign(subject port.SessionSubject, use string, secret []byte, ttl time.Duration, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(ttl)
	claims := SessionClaims{
		UserID:   subject.UserID,
		Email:    subject.Email,
		Name:     subject.Name,
		TokenUse: use,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject.UserID,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("jwt: sign %s token: %w", use, err)
	}
	return signed, expiresAt, nil
}

// ParseAccessToken verifies an access token and returns its subject.
func (m *SessionTokenManager) ParseAccessToken(token string) (*port.SessionSubject, error) {
	return m.parse(token, tokenUseAccess, m.accessSecret)
}

// ParseRefreshToken verifies a refresh token and returns its subject.
func (m *SessionTokenManager) ParseRefreshToken(token string) (*port.SessionSubject, error) {
	return m.parse(token, tokenUseRefresh, m.refreshSecret)
}

func (m *SessionTokenManager) parse(token, use string, secret []byte) (*port.SessionSubject, error) {
	if token == "" {
		return nil, ErrSessionTokenInvalid
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}

	var claims SessionClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrSessionTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrSessionTokenInvalid, err)
	}
	if !parsed.Valid || claims.TokenUse != use || claims.UserID == "" {
		return nil, ErrSessionTokenInvalid
	}

	return &port.SessionSubject{
		UserID: claims.UserID,
		Email:  claims.Email,
		Name:   claims.Name,
	}, nil
}

var _ port.SessionTokenIssuer = (*SessionTokenManager)(nil)
