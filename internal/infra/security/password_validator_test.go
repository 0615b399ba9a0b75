package security

import (
	"errors"
	"strings"
	"testing"

	"github.com/Rista10/event-planner-application/internal/core/domain"
)

func TestDefaultPasswordValidatorSuccess(t *testing.T) {
	if err := DefaultPasswordValidator().Validate("Secret123"); err != nil {
		t.Fatalf("expected password to pass validation, got %v", err)
	}
}

func TestDefaultPasswordValidatorViolations(t *testing.T) {
	validator := DefaultPasswordValidator()

	assertViolation := func(password, expectedCode string) {
		t.Helper()
		err := validator.Validate(password)
		if err == nil {
			t.Fatalf("expected validation error for %s", expectedCode)
		}
		var vErr *PasswordValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected PasswordValidationError, got %T", err)
		}
		if vErr.Code != expectedCode {
			t.Fatalf("expected %s code, got %s", expectedCode, vErr.Code)
		}
	}

	assertViolation("Sh0rt", "min_length")
	assertViolation("A1"+strings.Repeat("a", 127), "max_length")
	assertViolation("alllowercase1", "character_classes")
	assertViolation("ALLUPPERCASE1", "character_classes")
	assertViolation("NoDigitsHere", "character_classes")
}

func TestPasswordValidatorViolationsCollectsAll(t *testing.T) {
	violations := DefaultPasswordValidator().Violations("abc")
	if len(violations) != 2 {
		t.Fatalf("expected length and composition violations, got %v", violations)
	}
	if violations[0] != "Password must be at least 8 characters long" {
		t.Fatalf("unexpected first violation %q", violations[0])
	}
}

func TestPasswordPolicyStrengthScore(t *testing.T) {
	lenient := NewPasswordPolicy(0)
	if err := lenient.Validate("Password1", domain.PasswordContext{}); err != nil {
		t.Fatalf("expected strength check disabled, got %v", err)
	}

	strict := NewPasswordPolicy(3)
	err := strict.Validate("Annsmith1", domain.PasswordContext{Name: "annsmith", Email: "annsmith@x.com"})
	var vErr *PasswordValidationError
	if !errors.As(err, &vErr) || vErr.Code != "weak_password" {
		t.Fatalf("expected weak_password violation, got %v", err)
	}

	if err := strict.Validate("C0mplex-Harbor-Lantern-2025", domain.PasswordContext{Name: "Ann"}); err != nil {
		t.Fatalf("expected complex password to pass, got %v", err)
	}
}
