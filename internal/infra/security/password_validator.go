package security

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	zxcvbn "github.com/nbutton23/zxcvbn-go"
)

// PasswordValidationError is one violated password rule. Message is user facing.
type PasswordValidationError struct {
	Code    string
	Message string
}

func (e *PasswordValidationError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// PasswordRule reports a violation, or nil when the password satisfies it.
type PasswordRule func(password string) *PasswordValidationError

// PasswordValidator runs rules in order.
type PasswordValidator struct {
	rules []PasswordRule
}

func NewPasswordValidator(rules ...PasswordRule) *PasswordValidator {
	return &PasswordValidator{rules: append([]PasswordRule(nil), rules...)}
}

// Validate stops at the first violation.
func (v *PasswordValidator) Validate(password string) error {
	if v == nil {
		return fmt.Errorf("password validator not configured")
	}
	for _, rule := range v.rules {
		if violation := rule(password); violation != nil {
			return violation
		}
	}
	return nil
}

// Violations returns every violation message, in rule order.
func (v *PasswordValidator) Violations(password string) []string {
	if v == nil {
		return nil
	}
	var messages []string
	for _, rule := range v.rules {
		if violation := rule(password); violation != nil {
			messages = append(messages, violation.Message)
		}
	}
	return messages
}

// LengthRule bounds the password length in characters, not bytes.
func LengthRule(min, max int) PasswordRule {
	return func(password string) *PasswordValidationError {
		switch n := utf8.RuneCountInString(password); {
		case n < min:
			return &PasswordValidationError{
				Code:    "min_length",
				Message: fmt.Sprintf("Password must be at least %d characters long", min),
			}
		case max > 0 && n > max:
			return &PasswordValidationError{
				Code:    "max_length",
				Message: fmt.Sprintf("Password is too long (max %d characters)", max),
			}
		}
		return nil
	}
}

// MixedCaseAndDigitRule requires a lowercase letter, an uppercase letter and a digit.
func MixedCaseAndDigitRule() PasswordRule {
	return func(password string) *PasswordValidationError {
		var upper, lower, digit bool
		for _, r := range password {
			upper = upper || unicode.IsUpper(r)
			lower = lower || unicode.IsLower(r)
			digit = digit || unicode.IsDigit(r)
		}
		if upper && lower && digit {
			return nil
		}
		return &PasswordValidationError{
			Code:    "character_classes",
			Message: "Password must contain at least one uppercase letter, one lowercase letter, and one number",
		}
	}
}

// StrengthRule rejects passwords whose zxcvbn score is below minScore. userInputs
// penalise passwords built from the account's own name or email.
func StrengthRule(minScore int, userInputs ...string) PasswordRule {
	if minScore > 4 {
		minScore = 4
	}
	return func(password string) *PasswordValidationError {
		if minScore <= 0 {
			return nil
		}
		if zxcvbn.PasswordStrength(password, userInputs).Score >= minScore {
			return nil
		}
		return &PasswordValidationError{
			Code:    "weak_password",
			Message: "Password is too weak; choose a less predictable value",
		}
	}
}
