package ports

import (
	"context"
	"time"

	"github.com/apifuncional/catalog-api/internal/core/domain"
)

// UserRepository is the credential store's persistence port.
type UserRepository interface {
	// Create persists a new identity. Returns domain.ErrUserExists when the
	// normalized email is already registered.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// FindByEmail looks the identity up by normalized email.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	RolesFor(ctx context.Context, userID string) ([]string, error)
	AddToRole(ctx context.Context, userID, role string) error
	RecordSignIn(ctx context.Context, userID string, at time.Time) error
}

// LockoutTracker counts failed sign-ins per account and reports lockouts.
type LockoutTracker interface {
	IsLockedOut(ctx context.Context, email string) (bool, error)
	// RecordFailure registers a failed attempt and reports whether the
	// account is now locked.
	RecordFailure(ctx context.Context, email string) (bool, error)
	Reset(ctx context.Context, email string) error
}
