package middleware

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Rista10/event-planner-application/internal/core/port"
	"github.com/Rista10/event-planner-application/internal/infra/logger"
)

const rateLimitMessage = "Too many requests, please try again later"

// IdentifierFunc extracts the identifier used to scope rate limits (e.g., client IP).
type IdentifierFunc func(*gin.Context) (string, bool)

// RateLimitRule configures a sliding-window limit for a particular identifier.
type RateLimitRule struct {
	Name       string
	Limit      int
	Window     time.Duration
	Identifier IdentifierFunc
}

// RateLimiter enforces sliding-window limits backed by a port.RateLimitStore.
// Store failures let the request through.
type RateLimiter struct {
	store  port.RateLimitStore
	logger *zap.Logger
	now    func() time.Time
}

type ruleResult struct {
	allowed    bool
	limit      int
	remaining  int
	reset      time.Time
	retryAfter time.Duration
}

// NewRateLimiter builds a reusable rate limiter middleware helper.
func NewRateLimiter(store port.RateLimitStore, logger *zap.Logger) *RateLimiter {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &RateLimiter{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// WithClock allows injection of a custom clock (primarily for testing).
func (rl *RateLimiter) WithClock(now func() time.Time) *RateLimiter {
	if now != nil {
		rl.now = now
	}
	return rl
}

// ClientIPIdentifier builds an IdentifierFunc using the request's client IP.
func ClientIPIdentifier() IdentifierFunc {
	return func(c *gin.Context) (string, bool) {
		ip := c.ClientIP()
		if ip == "" {
			return "", false
		}
		return ip, true
	}
}

// RateLimit returns a Gin middleware enforcing rule.
func (rl *RateLimiter) RateLimit(rule RateLimitRule) gin.HandlerFunc {
	if rule.Name == "" {
		rule.Name = "default"
	}
	if rl == nil || rl.store == nil || rule.Identifier == nil || rule.Limit <= 0 || rule.Window <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		identifier, ok := rule.Identifier(c)
		if !ok || identifier == "" {
			c.Next()
			return
		}

		now := rl.now()
		state, err := rl.store.Hit(c.Request.Context(), rule.Name+":"+identifier, rule.Window, now)
		if err != nil {
			rl.logger.Warn("rate limit check failed",
				zap.String("rule", rule.Name),
				zap.String("identifier", logger.MaskIP(identifier)),
				zap.Error(err),
			)
			c.Next()
			return
		}

		res := evaluate(rule, state, now)
		applyHeaders(c, res)

		if !res.allowed {
			rl.logger.Warn("rate limit exceeded",
				zap.String("rule", rule.Name),
				zap.String("identifier", logger.MaskIP(identifier)),
				zap.String("path", c.Request.URL.Path),
			)
			AbortWithError(c, http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", rateLimitMessage)
			return
		}

		c.Next()
	}
}

// evaluate converts the window state, which already includes the current attempt, into a decision.
func evaluate(rule RateLimitRule, state port.WindowState, now time.Time) ruleResult {
	oldest := state.Oldest
	if oldest.IsZero() || oldest.After(now) {
		oldest = now
	}

	res := ruleResult{
		allowed:   state.Count <= rule.Limit,
		limit:     rule.Limit,
		remaining: rule.Limit - state.Count,
		reset:     oldest.Add(rule.Window),
	}
	if res.remaining < 0 {
		res.remaining = 0
	}
	res.retryAfter = res.reset.Sub(now)
	if res.retryAfter < 0 {
		res.retryAfter = 0
	}
	return res
}

func applyHeaders(c *gin.Context, res ruleResult) {
	headers := c.Writer.Header()
	headers.Set("X-RateLimit-Limit", strconv.Itoa(res.limit))
	headers.Set("X-RateLimit-Remaining", strconv.Itoa(res.remaining))
	headers.Set("X-RateLimit-Reset", strconv.FormatInt(res.reset.Unix(), 10))

	if !res.allowed {
		headers.Set("Retry-After", strconv.Itoa(int(math.Ceil(res.retryAfter.Seconds()))))
	}
}
