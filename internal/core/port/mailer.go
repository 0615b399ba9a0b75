package port

import "context"

// Mailer delivers auth-related emails.
type Mailer interface {
	SendVerificationEmail(ctx context.Context, to, name, token string) error
	SendPasswordResetEmail(ctx context.Context, to, name, token string) error
	SendTwoFactorCode(ctx context.Context, to, name, code string) error
}
