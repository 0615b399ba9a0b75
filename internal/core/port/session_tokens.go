package port

import "github.com/Rista10/event-planner-application/internal/core/domain"

// SessionSubject is the identity embedded in access and refresh tokens.
type SessionSubject struct {
	UserID string
	Email  string
	Name   string
}

// SessionTokenIssuer signs and verifies stateless session tokens.
type SessionTokenIssuer interface {
	IssuePair(subject SessionSubject) (*domain.TokenPair, error)
	ParseAccessToken(token string) (*SessionSubject, error)
	ParseRefreshToken(token string) (*SessionSubject, error)
}
