package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/apifuncional/catalog-api/internal/core/domain"
	"github.com/apifuncional/catalog-api/internal/core/ports"
)

// AuthService implements registration and login against the credential store.
type AuthService struct {
	users   ports.UserRepository
	lockout ports.LockoutTracker
	tokens  ports.TokenIssuer
	policy  domain.PasswordPolicy
	logger  zerolog.Logger
	now     func() time.Time
}

// NewAuthService wires the credential store. lockout may be nil, which
// disables failed-attempt tracking.
func NewAuthService(users ports.UserRepository, lockout ports.LockoutTracker, tokens ports.TokenIssuer, policy domain.PasswordPolicy, logger zerolog.Logger) *AuthService {
	return &AuthService{
		users:   users,
		lockout: lockout,
		tokens:  tokens,
		policy:  policy,
		logger:  logger,
		now:     time.Now,
	}
}

// Register creates a confirmed identity, records the sign-in and issues a
// token carrying no roles.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" {
		return nil, &domain.ValidationError{Fields: map[string]string{"email": "is required"}}
	}
	if in.Password != in.ConfirmPassword {
		return nil, &domain.ValidationError{Fields: map[string]string{"confirmPassword": "must match password"}}
	}

	if reasons := checkPassword(s.policy, in.Password); len(reasons) > 0 {
		return nil, &domain.RegistrationError{Reasons: reasons}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, &domain.RegistrationError{Reasons: []string{"Passwords must be at most 72 bytes."}}
	}
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	user := &domain.User{
		Email:          email,
		PasswordHash:   string(hash),
		EmailConfirmed: true,
		Roles:          []string{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	created, err := s.users.Create(ctx, user)
	if errors.Is(err, domain.ErrUserExists) {
		return nil, &domain.RegistrationError{Reasons: []string{fmt.Sprintf("Username '%s' is already taken.", email)}}
	}
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.recordSignIn(ctx, created)

	token, expiresAt, err := s.tokens.Issue(created.UserName(), nil)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", created.ID).Msg("user registered")
	return &ports.AuthResult{Token: token, ExpiresAt: expiresAt, User: created}, nil
}

// Login verifies the password with lockout tracking and issues a token
// carrying the account's roles. Every credential failure surfaces as
// domain.ErrInvalidCredentials so callers cannot tell the cases apart.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}
	key := domain.NormalizeEmail(email)

	if s.lockout != nil {
		locked, err := s.lockout.IsLockedOut(ctx, key)
		if err != nil {
			s.logger.Warn().Err(err).Msg("lockout check failed, continuing without it")
		}
		if locked {
			return nil, domain.ErrLockedOut
		}
	}

	user, err := s.users.FindByEmail(ctx, key)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, s.recordFailure(ctx, key)
	}

	if s.lockout != nil {
		if err := s.lockout.Reset(ctx, key); err != nil {
			s.logger.Warn().Err(err).Msg("lockout reset failed")
		}
	}

	roles, err := s.users.RolesFor(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("resolve roles: %w", err)
	}
	user.Roles = roles

	s.recordSignIn(ctx, user)

	token, expiresAt, err := s.tokens.Issue(user.UserName(), roles)
	if err != nil {
		return nil, err
	}
	return &ports.AuthResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

func (s *AuthService) recordFailure(ctx context.Context, key string) error {
	if s.lockout == nil {
		return domain.ErrInvalidCredentials
	}
	locked, err := s.lockout.RecordFailure(ctx, key)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to record sign-in failure")
		return domain.ErrInvalidCredentials
	}
	if locked {
		s.logger.Warn().Str("email", key).Msg("account locked out")
		return domain.ErrLockedOut
	}
	return domain.ErrInvalidCredentials
}

func (s *AuthService) recordSignIn(ctx context.Context, user *domain.User) {
	at := s.now().UTC()
	if err := s.users.RecordSignIn(ctx, user.ID, at); err != nil {
		s.logger.Warn().Err(err).Str("user_id", user.ID).Msg("failed to record sign-in")
		return
	}
	user.LastSignInAt = &at
}
