package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Rista10/event-planner-application/internal/core/port"
)

const (
	// RequestIDKey is the gin context key for the request identifier.
	RequestIDKey = "request_id"
	// TraceIDKey is the gin context key for the active trace identifier.
	TraceIDKey = "trace_id"
	// UserIDKey is the gin context key for the authenticated user ID.
	UserIDKey = "user_id"
	// SubjectKey is the gin context key for the authenticated session subject.
	SubjectKey = "subject"
)

// ErrorBody is the error part of the response envelope.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// errorEnvelope mirrors handlers.Envelope for responses written by middleware.
type errorEnvelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data"`
	Error   *ErrorBody `json:"error"`
}

// AbortWithError writes an error envelope and stops the handler chain.
func AbortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, errorEnvelope{
		Success: false,
		Data:    nil,
		Error:   &ErrorBody{Code: code, Message: message},
	})
}

// GetRequestID retrieves the request identifier set by RequestID.
func GetRequestID(c *gin.Context) string {
	if id, ok := c.Get(RequestIDKey); ok {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return ""
}

// GetTraceID retrieves the trace identifier set by Tracing.
func GetTraceID(c *gin.Context) string {
	if id, ok := c.Get(TraceIDKey); ok {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return ""
}

// GetAuthenticatedUserID retrieves the user ID stored by RequireAuth.
func GetAuthenticatedUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return "", false
	}

	if id, ok := userID.(string); ok && id != "" {
		return id, true
	}

	return "", false
}

// GetSubject retrieves the session subject stored by RequireAuth.
func GetSubject(c *gin.Context) (*port.SessionSubject, bool) {
	v, ok := c.Get(SubjectKey)
	if !ok {
		return nil, false
	}
	subject, ok := v.(*port.SessionSubject)
	return subject, ok
}

// NoRoute answers unknown paths with the error envelope.
func NoRoute() gin.HandlerFunc {
	return func(c *gin.Context) {
		AbortWithError(c, http.StatusNotFound, "NOT_FOUND", "Route "+c.Request.Method+" "+c.Request.URL.Path+" not found")
	}
}
