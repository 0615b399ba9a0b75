package port

import "github.com/Rista10/event-planner-application/internal/core/domain"

// PasswordPolicy enforces password strength requirements.
type PasswordPolicy interface {
	Validate(password string, ctx domain.PasswordContext) error
}

// PasswordHasher hashes and verifies secrets using the configured algorithm.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password string, encoded string) (bool, error)
}
