package port

import "context"

// TxRepositories exposes repositories bound to a single database transaction.
type TxRepositories struct {
	Users  UserRepository
	Tokens TokenRepository
}

// Transactor runs fn inside a transaction, committing on nil and rolling back otherwise.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, repos TxRepositories) error) error
}
