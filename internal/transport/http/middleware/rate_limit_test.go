package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap/zaptest"

	"github.com/Rista10/event-planner-application/internal/core/port"
	redisrepo "github.com/Rista10/event-planner-application/internal/repository/redis"
)

type fakeRateLimitStore struct {
	state port.WindowState
	err   error

	keys []string
}

func (f *fakeRateLimitStore) Hit(_ context.Context, key string, _ time.Duration, _ time.Time) (port.WindowState, error) {
	f.keys = append(f.keys, key)
	return f.state, f.err
}

func newLimitedRouter(t *testing.T, store port.RateLimitStore, now time.Time) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	limiter := NewRateLimiter(store, zaptest.NewLogger(t)).WithClock(func() time.Time { return now })

	router := gin.New()
	router.Use(limiter.RateLimit(RateLimitRule{
		Name:   "auth",
		Limit:  5,
		Window: time.Minute,
		Identifier: func(c *gin.Context) (string, bool) {
			return "192.0.2.1", true
		},
	}))
	router.POST("/", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func TestRateLimiterAllowsWhenWithinLimit(t *testing.T) {
	now := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	store := &fakeRateLimitStore{state: port.WindowState{Count: 3, Oldest: now.Add(-30 * time.Second)}}

	rr := httptest.NewRecorder()
	newLimitedRouter(t, store, now).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if got := rr.Header().Get("X-RateLimit-Limit"); got != "5" {
		t.Fatalf("expected limit header 5, got %q", got)
	}
	if got := rr.Header().Get("X-RateLimit-Remaining"); got != "2" {
		t.Fatalf("expected remaining header 2, got %q", got)
	}
	if got := rr.Header().Get("Retry-After"); got != "" {
		t.Fatalf("did not expect Retry-After on allowed request, got %q", got)
	}
	if len(store.keys) != 1 || store.keys[0] != "auth:192.0.2.1" {
		t.Fatalf("unexpected store keys %v", store.keys)
	}
}

func TestRateLimiterBlocksWhenLimitExceeded(t *testing.T) {
	now := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	store := &fakeRateLimitStore{state: port.WindowState{Count: 6, Oldest: now.Add(-20 * time.Second)}}

	rr := httptest.NewRecorder()
	newLimitedRouter(t, store, now).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", nil))

	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected status 429, got %d", rr.Code)
	}
	if got := rr.Header().Get("Retry-After"); got != "40" {
		t.Fatalf("expected Retry-After 40, got %q", got)
	}
	if got := rr.Header().Get("X-RateLimit-Remaining"); got != "0" {
		t.Fatalf("expected remaining 0, got %q", got)
	}

	var body struct {
		Success bool      `json:"success"`
		Data    any       `json:"data"`
		Error   ErrorBody `json:"error"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Success || body.Data != nil {
		t.Fatalf("unexpected envelope %+v", body)
	}
	if body.Error.Code != "RATE_LIMIT_EXCEEDED" || body.Error.Message != rateLimitMessage {
		t.Fatalf("unexpected error body %+v", body.Error)
	}
}

func TestRateLimiterFailsOpenOnStoreError(t *testing.T) {
	now := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	store := &fakeRateLimitStore{err: errors.New("redis unavailable")}

	rr := httptest.NewRecorder()
	newLimitedRouter(t, store, now).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected request to pass when the store fails, got %d", rr.Code)
	}
	if got := rr.Header().Get("X-RateLimit-Limit"); got != "" {
		t.Fatalf("did not expect rate limit headers, got %q", got)
	}
}

func TestRateLimiterWithRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := redisrepo.NewRateLimitRepository(client, redisrepo.SlidingWindowConfig{KeyPrefix: "test:ratelimit"})

	start := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	now := start
	gin.SetMode(gin.TestMode)
	limiter := NewRateLimiter(store, zaptest.NewLogger(t)).WithClock(func() time.Time { return now })

	router := gin.New()
	router.Use(limiter.RateLimit(RateLimitRule{Name: "auth", Limit: 3, Window: time.Minute, Identifier: ClientIPIdentifier()}))
	router.POST("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 4)
	for i := 0; i < 4; i++ {
		now = start.Add(time.Duration(i) * time.Second)
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = "198.51.100.7:1234"
		router.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}

	want := []int{200, 200, 200, 429}
	for i := range want {
		if codes[i] != want[i] {
			t.Fatalf("request %d: expected %d, got %d (all: %v)", i, want[i], codes[i], codes)
		}
	}

	now = start.Add(2 * time.Minute)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.RemoteAddr = "198.51.100.7:1234"
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected window to slide and allow the request, got %d", rr.Code)
	}
}

func TestRateLimiterDisabledWithoutStore(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(NewRateLimiter(nil, nil).RateLimit(RateLimitRule{Name: "auth", Limit: 1, Window: time.Minute, Identifier: ClientIPIdentifier()}))
	router.POST("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", nil))
		if rr.Code != http.StatusOK {
			t.Fatalf("expected pass-through, got %d", rr.Code)
		}
	}
}
