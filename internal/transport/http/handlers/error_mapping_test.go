package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Rista10/event-planner-application/internal/usecase"
)

func respondWith(t *testing.T, responder *ErrorResponder, err error) (int, APIError) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	rr := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rr)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/auth/test", nil)
	responder.RespondWithMappedError(c, err)

	var env Envelope
	if decodeErr := json.Unmarshal(rr.Body.Bytes(), &env); decodeErr != nil {
		t.Fatalf("invalid envelope %s: %v", rr.Body.String(), decodeErr)
	}
	if env.Success || env.Error == nil {
		t.Fatalf("expected failure envelope, got %s", rr.Body.String())
	}
	return rr.Code, *env.Error
}

func TestErrorResponder_MapsKnownErrors(t *testing.T) {
	responder := NewErrorResponder(zap.NewNop(), false)

	for _, tc := range AuthErrorCases {
		wrapped := fmt.Errorf("context: %w", tc.Err)
		status, apiErr := respondWith(t, responder, wrapped)
		if status != tc.Status || apiErr.Code != tc.Code || apiErr.Message != tc.Message {
			t.Fatalf("%v: got %d %+v", tc.Err, status, apiErr)
		}
	}
}

func TestErrorResponder_ValidationErrors(t *testing.T) {
	responder := NewErrorResponder(zap.NewNop(), false)

	status, apiErr := respondWith(t, responder, usecase.NewValidationError("Password is too weak", "Password is too common"))
	if status != http.StatusBadRequest || apiErr.Code != "VALIDATION_ERROR" || apiErr.Message != "Password is too weak, Password is too common" {
		t.Fatalf("unexpected response %d %+v", status, apiErr)
	}
}

func TestErrorResponder_InternalErrors(t *testing.T) {
	boom := errors.New("pool exhausted")

	status, hidden := respondWith(t, NewErrorResponder(zap.NewNop(), false), boom)
	if status != http.StatusInternalServerError || hidden.Code != "INTERNAL_SERVER_ERROR" {
		t.Fatalf("unexpected response %d %+v", status, hidden)
	}
	if hidden.Message != internalErrorMessage {
		t.Fatalf("internal error text leaked: %q", hidden.Message)
	}

	_, exposed := respondWith(t, NewErrorResponder(zap.NewNop(), true), boom)
	if exposed.Message != "pool exhausted" {
		t.Fatalf("expected exposed error text, got %q", exposed.Message)
	}

	_, canceled := respondWith(t, NewErrorResponder(zap.NewNop(), false), context.Canceled)
	if canceled.Code != "INTERNAL_SERVER_ERROR" {
		t.Fatalf("unexpected code %q", canceled.Code)
	}
}
