package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Rista10/event-planner-application/internal/core/port"
)

// SlidingWindowConfig defines configuration for the sliding window limiter.
type SlidingWindowConfig struct {
	KeyPrefix string
}

// RateLimitRepository persists rate-limit attempts in Redis sorted sets scored by unix nanoseconds.
type RateLimitRepository struct {
	client redis.UniversalClient
	cfg    SlidingWindowConfig
}

// NewRateLimitRepository constructs a repository using the provided Redis client and config.
func NewRateLimitRepository(client redis.UniversalClient, cfg SlidingWindowConfig) *RateLimitRepository {
	return &RateLimitRepository{client: client, cfg: cfg}
}

// Hit trims entries older than the window, records the attempt at the given instant and
// reports the window size including this attempt. All commands run in one MULTI/EXEC.
func (r *RateLimitRepository) Hit(ctx context.Context, identifier string, window time.Duration, at time.Time) (port.WindowState, error) {
	if window <= 0 {
		return port.WindowState{}, errors.New("window must be positive")
	}

	key := r.key(identifier)
	score := float64(at.UnixNano())
	threshold := strconv.FormatInt(at.Add(-window).UnixNano(), 10)
	member := fmt.Sprintf("%d-%s", at.UnixNano(), uuid.NewString())

	var (
		card   *redis.IntCmd
		oldest *redis.ZSliceCmd
	)

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRemRangeByScore(ctx, key, "-inf", "("+threshold)
		pipe.ZAdd(ctx, key, redis.Z{Score: score, Member: member})
		card = pipe.ZCard(ctx, key)
		oldest = pipe.ZRangeWithScores(ctx, key, 0, 0)
		pipe.PExpire(ctx, key, window)
		return nil
	})
	if err != nil {
		return port.WindowState{}, fmt.Errorf("redis sliding window: %w", err)
	}

	state := port.WindowState{Count: int(card.Val()), Oldest: at}
	if entries := oldest.Val(); len(entries) > 0 {
		state.Oldest = time.Unix(0, int64(entries[0].Score))
	}

	return state, nil
}

func (r *RateLimitRepository) key(identifier string) string {
	if r.cfg.KeyPrefix == "" {
		return identifier
	}
	return fmt.Sprintf("%s:%s", r.cfg.KeyPrefix, identifier)
}

var _ port.RateLimitStore = (*RateLimitRepository)(nil)
