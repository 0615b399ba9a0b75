package usecase

import (
	"errors"
	"strings"
)

var (
	// ErrInvalidCredentials indicates the email is unknown or the password does not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailAlreadyExists indicates the email is already registered.
	ErrEmailAlreadyExists = errors.New("email already exists")
	// ErrInvalidOrExpiredToken indicates the token never existed, was used, has the wrong type or has expired.
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")
	// ErrInvalidOTP indicates the two-factor code did not match the latest active code.
	ErrInvalidOTP = errors.New("invalid or expired otp")
	// ErrUserNotFound indicates the referenced user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailAlreadyVerified indicates the account has already confirmed its email.
	ErrEmailAlreadyVerified = errors.New("email already verified")
	// ErrInvalidRefreshToken covers every refresh failure: bad signature, expiry, wrong token use or unknown user.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	// ErrUnsupportedTokenType indicates a token type was used with the wrong verification path.
	ErrUnsupportedTokenType = errors.New("unsupported token type")
)

// ValidationError carries every violated input rule.
type ValidationError struct {
	Violations []string
}

// NewValidationError builds a ValidationError from the supplied messages.
func NewValidationError(violations ...string) *ValidationError {
	return &ValidationError{Violations: violations}
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Violations, ", ")
}
