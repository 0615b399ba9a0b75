package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Rista10/event-planner-application/internal/core/domain"
	"github.com/Rista10/event-planner-application/internal/core/port"
	"github.com/Rista10/event-planner-application/internal/repository"
)

const authTokensTable = "auth_tokens"

var authTokenColumns = []string{
	"id",
	"user_id",
	"token_hash",
	"type",
	"expires_at",
	"used_at",
	"created_at",
}

// TokenRepository implements port.TokenRepository using the auth_tokens table.
type TokenRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewTokenRepository constructs a new token repository.
func NewTokenRepository(exec pgExecutor) *TokenRepository {
	return &TokenRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// WithTx returns a repository instance executing within the provided transaction.
func (r *TokenRepository) WithTx(tx pgx.Tx) *TokenRepository {
	if tx == nil {
		return r
	}
	return &TokenRepository{
		exec:    tx,
		builder: r.builder,
	}
}

// Create inserts a new auth token row.
func (r *TokenRepository) Create(ctx context.Context, token domain.AuthToken) (*domain.AuthToken, error) {
	if token.ID == "" {
		token.ID = uuid.NewString()
	}

	sql, args, err := r.builder.Insert(authTokensTable).
		Columns(authTokenColumns...).
		Values(
			token.ID,
			token.UserID,
			token.TokenHash,
			string(token.Type),
			token.ExpiresAt,
			token.UsedAt,
			token.CreatedAt,
		).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert auth token sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, sql, args...); err != nil {
		return nil, fmt.Errorf("insert auth token: %w", err)
	}

	return &token, nil
}

// FindActiveByHash returns the unused, unexpired token matching hash and type.
func (r *TokenRepository) FindActiveByHash(ctx context.Context, hash string, tokenType domain.TokenType, at time.Time) (*domain.AuthToken, error) {
	query := r.builder.Select(authTokenColumns...).
		From(authTokensTable).
		Where(squirrel.Eq{"token_hash": hash, "type": string(tokenType)}).
		Where("used_at IS NULL").
		Where(squirrel.Gt{"expires_at": at}).
		Limit(1)

	return r.getOne(ctx, query)
}

// FindLatestActiveByUser returns the newest unused, unexpired token of a type for the user.
func (r *TokenRepository) FindLatestActiveByUser(ctx context.Context, userID string, tokenType domain.TokenType, at time.Time) (*domain.AuthToken, error) {
	query := r.builder.Select(authTokenColumns...).
		From(authTokensTable).
		Where(squirrel.Eq{"user_id": userID, "type": string(tokenType)}).
		Where("used_at IS NULL").
		Where(squirrel.Gt{"expires_at": at}).
		OrderBy("created_at DESC").
		Limit(1)

	return r.getOne(ctx, query)
}

func (r *TokenRepository) getOne(ctx context.Context, query squirrel.SelectBuilder) (*domain.AuthToken, error) {
	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select auth token sql: %w", err)
	}

	var (
		token     domain.AuthToken
		tokenType string
		usedAt    sql.NullTime
	)

	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(
		&token.ID,
		&token.UserID,
		&token.TokenHash,
		&tokenType,
		&token.ExpiresAt,
		&usedAt,
		&token.CreatedAt,
	); err != nil {
		if isNoRows(err) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan auth token: %w", err)
	}

	token.Type = domain.TokenType(tokenType)
	token.UsedAt = nullableTimePtr(usedAt)

	return &token, nil
}

// MarkUsed consumes a token if it has not been consumed yet.
// Returns repository.ErrNotFound when the token is missing or already used.
func (r *TokenRepository) MarkUsed(ctx context.Context, id string, at time.Time) error {
	sql, args, err := r.builder.Update(authTokensTable).
		Set("used_at", at.UTC()).
		Where(squirrel.Eq{"id": id}).
		Where("used_at IS NULL").
		ToSql()
	if err != nil {
		return fmt.Errorf("build mark auth token used sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("mark auth token used: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// InvalidateByUserAndType marks every unused token of a type for the user as used.
func (r *TokenRepository) InvalidateByUserAndType(ctx context.Context, userID string, tokenType domain.TokenType, at time.Time) (int64, error) {
	sql, args, err := r.builder.Update(authTokensTable).
		Set("used_at", at.UTC()).
		Where(squirrel.Eq{"user_id": userID, "type": string(tokenType)}).
		Where("used_at IS NULL").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build invalidate auth tokens sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("invalidate auth tokens: %w", err)
	}

	return ct.RowsAffected(), nil
}

var _ port.TokenRepository = (*TokenRepository)(nil)
