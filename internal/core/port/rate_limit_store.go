package port

import (
	"context"
	"time"
)

// WindowState describes a sliding window after an attempt was recorded.
type WindowState struct {
	Count  int
	Oldest time.Time
}

// RateLimitStore records attempts in a sliding window and reports the resulting window state.
type RateLimitStore interface {
	Hit(ctx context.Context, key string, window time.Duration, at time.Time) (WindowState, error)
}
