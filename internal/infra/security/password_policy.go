package security

import (
	"github.com/Rista10/event-planner-application/internal/core/domain"
	"github.com/Rista10/event-planner-application/internal/core/port"
)

const (
	MinPasswordLength = 8
	MaxPasswordLength = 128
)

// DefaultPasswordValidator returns the structural password rules without a strength check.
func DefaultPasswordValidator() *PasswordValidator {
	return NewPasswordValidator(
		LengthRule(MinPasswordLength, MaxPasswordLength),
		MixedCaseAndDigitRule(),
	)
}

// PasswordPolicy applies the structural rules plus an optional zxcvbn score that
// takes the user's name and email into account.
type PasswordPolicy struct {
	minScore int
}

// NewPasswordPolicy builds a policy. minScore <= 0 disables the strength check.
func NewPasswordPolicy(minScore int) *PasswordPolicy {
	return &PasswordPolicy{minScore: minScore}
}

// Validate returns the first violated rule as a *PasswordValidationError.
func (p *PasswordPolicy) Validate(password string, ctx domain.PasswordContext) error {
	inputs := make([]string, 0, 2)
	if ctx.Name != "" {
		inputs = append(inputs, ctx.Name)
	}
	if ctx.Email != "" {
		inputs = append(inputs, ctx.Email)
	}

	minScore := 0
	if p != nil {
		minScore = p.minScore
	}

	return NewPasswordValidator(
		LengthRule(MinPasswordLength, MaxPasswordLength),
		MixedCaseAndDigitRule(),
		StrengthRule(minScore, inputs...),
	).Validate(password)
}

var _ port.PasswordPolicy = (*PasswordPolicy)(nil)
