package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/Rista10/event-planner-application/internal/infra/security"
)

// errInvalidJSON marks a body that is not parseable JSON.
var errInvalidJSON = errors.New("invalid json payload")

// fieldMessages maps "<Field>.<tag>" to the message returned for that failure.
// Keys prefixed with the request type win over the bare field keys.
var fieldMessages = map[string]string{
	"Name.required":                       "Please enter your name",
	"Name.max":                            "Name is too long (max 255 characters)",
	"Email.required":                      "Please enter your email address",
	"Email.email":                         "Please enter a valid email address",
	"Email.max":                           "Email is too long (max 255 characters)",
	"Password.required":                   "Please enter your password",
	"UserID.required":                     "Invalid session. Please try logging in again.",
	"UserID.uuid":                         "Invalid session. Please try logging in again.",
	"OTP.required":                        "Please enter the 6-digit verification code",
	"OTP.len":                             "Please enter the 6-digit verification code",
	"OTP.number":                          "Verification code must contain only numbers",
	"VerifyEmailRequest.Token.required":   "Verification token is missing",
	"ResetPasswordRequest.Token.required": "Reset token is missing",
	"Enable.required":                     "Please specify whether to enable or disable 2FA",
}

// normalizer is implemented by requests that trim or case-fold fields before validation.
type normalizer interface {
	normalize()
}

var registerValidators = sync.OnceValue(func() error {
	engine, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	return engine.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return len(passwordViolations(fl.Field().String())) == 0
	})
})

// bindRequest decodes the JSON body into req, normalises it and runs the binding rules.
// An empty body is treated as an empty object so that field rules report what is missing.
func bindRequest(c *gin.Context, req any) error {
	if err := registerValidators(); err != nil {
		return fmt.Errorf("register validators: %w", err)
	}

	raw, err := c.GetRawData()
	if err != nil {
		return errInvalidJSON
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		raw = []byte("{}")
	}

	if err := json.NewDecoder(bytes.NewReader(raw)).Decode(req); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return &fieldTypeError{field: typeErr.Field}
		}
		return errInvalidJSON
	}

	if n, ok := req.(normalizer); ok {
		n.normalize()
	}

	if err := binding.Validator.ValidateStruct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return err
		}
		return &requestValidationError{violations: violationMessages(fieldErrs)}
	}
	return nil
}

func violationMessages(fieldErrs validator.ValidationErrors) []string {
	out := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		if fe.Tag() == "password" {
			value, _ := fe.Value().(string)
			out = append(out, passwordViolations(value)...)
			continue
		}
		out = append(out, fieldMessage(fe))
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	if msg, ok := fieldMessages[fe.StructNamespace()+"."+fe.Tag()]; ok {
		return msg
	}
	if msg, ok := fieldMessages[fe.StructField()+"."+fe.Tag()]; ok {
		return msg
	}
	return fmt.Sprintf("Invalid value for %s", fe.Field())
}

type requestValidationError struct {
	violations []string
}

func (e *requestValidationError) Error() string {
	return strings.Join(e.violations, ", ")
}

type fieldTypeError struct {
	field string
}

func (e *fieldTypeError) Error() string {
	if e.field == "enable" {
		return fieldMessages["Enable.required"]
	}
	return fmt.Sprintf("Invalid value for %s", e.field)
}

func (r *SignupRequest) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = normalizeEmail(r.Email)
}

func (r *LoginRequest) normalize() {
	r.Email = normalizeEmail(r.Email)
}

func (r *EmailRequest) normalize() {
	r.Email = normalizeEmail(r.Email)
}

func passwordViolations(password string) []string {
	return security.DefaultPasswordValidator().Violations(password)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
