package port

import (
	"context"
	"time"

	"github.com/Rista10/event-planner-application/internal/core/domain"
)

// TokenRepository manages single-use auth token records.
// Every lookup treats a token as active when used_at is NULL and expires_at is after the supplied instant.
type TokenRepository interface {
	Create(ctx context.Context, token domain.AuthToken) (*domain.AuthToken, error)
	FindActiveByHash(ctx context.Context, hash string, tokenType domain.TokenType, at time.Time) (*domain.AuthToken, error)
	FindLatestActiveByUser(ctx context.Context, userID string, tokenType domain.TokenType, at time.Time) (*domain.AuthToken, error)
	MarkUsed(ctx context.Context, id string, at time.Time) error
	InvalidateByUserAndType(ctx context.Context, userID string, tokenType domain.TokenType, at time.Time) (int64, error)
}
