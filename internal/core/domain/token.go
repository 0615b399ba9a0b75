package domain

import "time"

// TokenType enumerates the purposes a single-use auth token can serve.
type TokenType string

const (
	TokenTypeEmailVerification TokenType = "EMAIL_VERIFICATION"
	TokenTypePasswordReset     TokenType = "PASSWORD_RESET"
	TokenTypeTwoFactor         TokenType = "TWO_FACTOR"
)

// Valid reports whether t is one of the known token types.
func (t TokenType) Valid() bool {
	switch t {
	case TokenTypeEmailVerification, TokenTypePasswordReset, TokenTypeTwoFactor:
		return true
	default:
		return false
	}
}

// IsOTP reports whether tokens of this type are short numeric codes.
func (t TokenType) IsOTP() bool {
	return t == TokenTypeTwoFactor
}

// AuthToken is a hashed, single-use, time-bound credential.
type AuthToken struct {
	ID        string
	UserID    string
	TokenHash string
	Type      TokenType
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}

// IsExpired reports whether the token has elapsed its validity window.
func (t AuthToken) IsExpired(at time.Time) bool {
	return !t.ExpiresAt.After(at)
}

// IsUsed reports whether the token was already consumed or invalidated.
func (t AuthToken) IsUsed() bool {
	return t.UsedAt != nil
}

// IsActive returns true when the token can still be redeemed.
func (t AuthToken) IsActive(at time.Time) bool {
	return !t.IsUsed() && !t.IsExpired(at)
}

// Consume marks the token as used.
// Returns true when the token transitions from unused to used.
func (t *AuthToken) Consume(at time.Time) bool {
	if t.UsedAt != nil {
		return false
	}
	timeCopy := at
	t.UsedAt = &timeCopy
	return true
}

// TokenPair holds a freshly signed access/refresh pair.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}
