package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Rista10/event-planner-application/internal/infra/logger"
	"github.com/Rista10/event-planner-application/internal/infra/security"
	"github.com/Rista10/event-planner-application/internal/usecase"
)

// ErrorCase maps a sentinel error to an HTTP status, error code and response message.
type ErrorCase struct {
	Err     error
	Status  int
	Code    string
	Message string
}

// AuthErrorCases covers every sentinel returned by the auth use cases.
var AuthErrorCases = []ErrorCase{
	{Err: usecase.ErrInvalidCredentials, Status: http.StatusUnauthorized, Code: "INVALID_CREDENTIALS", Message: "Invalid email or password"},
	{Err: usecase.ErrEmailAlreadyExists, Status: http.StatusConflict, Code: "EMAIL_ALREADY_EXISTS", Message: "Email already in use"},
	{Err: usecase.ErrInvalidOrExpiredToken, Status: http.StatusBadRequest, Code: "INVALID_TOKEN", Message: "Invalid or expired token"},
	{Err: usecase.ErrInvalidOTP, Status: http.StatusBadRequest, Code: "INVALID_OTP", Message: "Invalid or expired OTP"},
	{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Code: "USER_NOT_FOUND", Message: "User not found"},
	{Err: usecase.ErrEmailAlreadyVerified, Status: http.StatusBadRequest, Code: "EMAIL_ALREADY_VERIFIED", Message: "Email is already verified"},
	{Err: usecase.ErrInvalidRefreshToken, Status: http.StatusUnauthorized, Code: "INVALID_REFRESH_TOKEN", Message: "Invalid or expired refresh token"},
}

const internalErrorMessage = "An unexpected error occurred"

// ErrorResponder writes error envelopes and logs them with the request correlation fields.
type ErrorResponder struct {
	logger         *zap.Logger
	cases          []ErrorCase
	exposeInternal bool
}

// NewErrorResponder builds a responder. exposeInternal echoes unexpected error text to clients and must be off in production.
func NewErrorResponder(log *zap.Logger, exposeInternal bool, cases ...ErrorCase) *ErrorResponder {
	if log == nil {
		log = zap.NewNop()
	}
	if len(cases) == 0 {
		cases = AuthErrorCases
	}
	return &ErrorResponder{logger: log, cases: cases, exposeInternal: exposeInternal}
}

// RespondWithMappedError resolves err against the known cases or falls back to a 500 response.
func (r *ErrorResponder) RespondWithMappedError(c *gin.Context, err error) {
	status, code, message := r.resolve(err)

	log := logger.WithContext(c.Request.Context(), r.logger)
	fields := []zap.Field{
		zap.String("path", c.Request.URL.Path),
		zap.String("code", code),
		zap.Int("status", status),
		zap.Error(err),
	}
	if status >= http.StatusInternalServerError {
		log.Error("request error", fields...)
	} else {
		log.Warn("request rejected", fields...)
	}

	respondError(c, status, code, message)
}

func (r *ErrorResponder) resolve(err error) (int, string, string) {
	if errors.Is(err, errInvalidJSON) {
		return http.StatusBadRequest, "INVALID_JSON", "Invalid JSON payload received"
	}

	var (
		reqErr  *requestValidationError
		typeErr *fieldTypeError
		useErr  *usecase.ValidationError
		pwErr   *security.PasswordValidationError
	)
	switch {
	case errors.As(err, &reqErr):
		return http.StatusBadRequest, "VALIDATION_ERROR", reqErr.Error()
	case errors.As(err, &typeErr):
		return http.StatusBadRequest, "VALIDATION_ERROR", typeErr.Error()
	case errors.As(err, &useErr):
		return http.StatusBadRequest, "VALIDATION_ERROR", useErr.Error()
	case errors.As(err, &pwErr):
		return http.StatusBadRequest, "VALIDATION_ERROR", pwErr.Error()
	}

	for _, cs := range r.cases {
		if cs.Err != nil && errors.Is(err, cs.Err) {
			return cs.Status, cs.Code, cs.Message
		}
	}

	message := internalErrorMessage
	if r.exposeInternal && err != nil {
		message = err.Error()
	}
	return http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", message
}
