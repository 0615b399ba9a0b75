package postgres

// Repositories groups concrete PostgreSQL repository implementations.
type Repositories struct {
	Users      *UserRepository
	Tokens     *TokenRepository
	Transactor *Transactor
}

// NewRepositories wires all repositories backed by the provided pool.
func NewRepositories(db pgBeginner) *Repositories {
	users := NewUserRepository(db)
	tokens := NewTokenRepository(db)
	return &Repositories{
		Users:      users,
		Tokens:     tokens,
		Transactor: NewTransactor(db, users, tokens),
	}
}
