package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Rista10/event-planner-application/internal/core/port"
)

// Transactor runs repository work inside a single pgx transaction.
type Transactor struct {
	db     pgBeginner
	users  *UserRepository
	tokens *TokenRepository
}

// NewTransactor builds a transactor over the pool used by the repositories.
func NewTransactor(db pgBeginner, users *UserRepository, tokens *TokenRepository) *Transactor {
	return &Transactor{db: db, users: users, tokens: tokens}
}

// WithinTx begins a transaction, exposes tx-bound repositories to fn and commits when fn succeeds.
// A panic in fn rolls the transaction back before it propagates.
func (t *Transactor) WithinTx(ctx context.Context, fn func(ctx context.Context, repos port.TxRepositories) error) (err error) {
	tx, err := t.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
		if err == nil {
			return
		}
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			err = errors.Join(err, fmt.Errorf("rollback tx: %w", rbErr))
		}
	}()

	if err = fn(ctx, port.TxRepositories{
		Users:  t.users.WithTx(tx),
		Tokens: t.tokens.WithTx(tx),
	}); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

var _ port.Transactor = (*Transactor)(nil)
