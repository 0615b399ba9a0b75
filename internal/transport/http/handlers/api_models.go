package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Rista10/event-planner-application/internal/core/domain"
	"github.com/Rista10/event-planner-application/internal/usecase"
)

// Envelope wraps every JSON response body.
type Envelope struct {
	Success bool      `json:"success"`
	Data    any       `json:"data"`
	Error   *APIError `json:"error"`
}

// APIError is the error part of the envelope.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// respondOK writes a successful envelope.
func respondOK(c *gin.Context, status int, data any) {
	c.JSON(status, Envelope{Success: true, Data: data})
}

// respondError writes an error envelope and aborts the chain.
func respondError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, Envelope{
		Success: false,
		Data:    nil,
		Error:   &APIError{Code: code, Message: message},
	})
}

// SignupRequest defines the account registration payload.
type SignupRequest struct {
	Name     string `json:"name" binding:"required,max=255"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"password"`
}

// LoginRequest defines the payload for the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// VerifyTwoFactorRequest completes a two-factor login.
type VerifyTwoFactorRequest struct {
	UserID string `json:"userId" binding:"required,uuid"`
	OTP    string `json:"otp" binding:"required,len=6,number"`
}

// VerifyEmailRequest carries the token from the verification link.
type VerifyEmailRequest struct {
	Token string `json:"token" binding:"required"`
}

// EmailRequest is shared by resend-verification and forgot-password.
type EmailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest carries the token from the reset link and the new password.
type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"newPassword" binding:"password"`
}

// ToggleTwoFactorRequest switches two-factor login on or off.
type ToggleTwoFactorRequest struct {
	Enable *bool `json:"enable" binding:"required"`
}

// AuthResponse is returned whenever a session is opened. The refresh token travels in a cookie.
type AuthResponse struct {
	User        domain.PublicProfile `json:"user"`
	AccessToken string               `json:"accessToken"`
}

// TwoFactorRequiredResponse is returned by login when a code was emailed instead of opening a session.
type TwoFactorRequiredResponse struct {
	RequiresTwoFactor bool   `json:"requiresTwoFactor"`
	UserID            string `json:"userId"`
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthResponse describes the service health payload.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// ReadyResponse describes readiness probe results with dependency checks.
type ReadyResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

func newAuthResponse(res *usecase.AuthResult) AuthResponse {
	return AuthResponse{User: res.User, AccessToken: res.AccessToken}
}
