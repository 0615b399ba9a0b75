package domain

import "time"

// UserRegisteredEvent represents the payload for user.registered messages.
type UserRegisteredEvent struct {
	EventID      string
	UserID       string
	Name         string
	Email        string
	RegisteredAt time.Time
}

// EmailVerifiedEvent represents the payload for user.email_verified messages.
type EmailVerifiedEvent struct {
	EventID    string
	UserID     string
	VerifiedAt time.Time
}

// PasswordResetRequestedEvent represents the payload for user.password_reset_requested messages.
type PasswordResetRequestedEvent struct {
	EventID           string
	UserID            string
	MaskedDestination string
	RequestedAt       time.Time
	ExpiresAt         time.Time
}

// PasswordChangedEvent represents the payload for user.password_changed messages.
type PasswordChangedEvent struct {
	EventID   string
	UserID    string
	ChangedAt time.Time
}

// TwoFactorToggledEvent represents the payload for user.two_factor_toggled messages.
type TwoFactorToggledEvent struct {
	EventID   string
	UserID    string
	Enabled   bool
	ToggledAt time.Time
}
