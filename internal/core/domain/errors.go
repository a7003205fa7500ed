package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrLockedOut          = fmt.Errorf("%w: account locked out", ErrInvalidCredentials)
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")

	ErrInvalidToken    = errors.New("invalid token")
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("access forbidden")

	ErrProductNotFound     = errors.New("product not found")
	ErrCatalogEmpty        = errors.New("no products found")
	ErrIDMismatch          = errors.New("path id does not match body id")
	ErrConcurrencyConflict = errors.New("concurrent modification detected")
)

// ValidationError carries per-field messages for a rejected request body.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// RegistrationError lists every reason the credential store refused to
// create an identity.
type RegistrationError struct {
	Reasons []string
}

func (e *RegistrationError) Error() string {
	return "registration rejected: " + strings.Join(e.Reasons, "; ")
}
