package ports

import (
	"context"
	"time"

	"github.com/apifuncional/catalog-api/internal/core/domain"
)

// RegisterInput is the DTO passed from the transport layer to AuthService.Register.
type RegisterInput struct {
	Email           string
	Password        string
	ConfirmPassword string
}

// AuthResult is returned by a successful registration or login.
type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
}

// TokenIssuer signs bearer tokens for an authenticated identity.
type TokenIssuer interface {
	Issue(name string, roles []string) (token string, expiresAt time.Time, err error)
}

// TokenValidator turns a raw bearer token into a Principal.
type TokenValidator interface {
	Validate(raw string) (*domain.Principal, error)
}
