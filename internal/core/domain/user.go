package domain

import (
	"strings"
	"time"
)

// RoleAdmin is the only role the catalog checks for explicitly.
const RoleAdmin = "Admin"

// User models a registered identity in the credential store.
type User struct {
	ID             string     `json:"id"`
	Email          string     `json:"email"`
	PasswordHash   string     `json:"-"`
	EmailConfirmed bool       `json:"email_confirmed"`
	Roles          []string   `json:"roles"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	LastSignInAt   *time.Time `json:"last_sign_in_at,omitempty"`
}

// UserName is the name carried in issued tokens. Users are registered
// with their email as user name.
func (u *User) UserName() string {
	return u.Email
}

// NormalizeEmail returns the lookup key for an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
