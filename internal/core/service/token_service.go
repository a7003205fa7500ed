package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/apifuncional/catalog-api/internal/core/domain"
)

// Claims is the payload of every bearer token the API issues. Subject and
// Name both carry the user name; Roles is omitted when the user has none.
type Claims struct {
	Name  string           `json:"name"`
	Roles jwt.ClaimStrings `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// TokenService issues and validates HS256 bearer tokens. It holds no mutable
// state and is safe for concurrent use.
type TokenService struct {
	key      []byte
	issuer   string
	audience string
	ttl      time.Duration
	parser   *jwt.Parser
	now      func() time.Time
}

func NewTokenService(settings domain.JWTSettings) (*TokenService, error) {
	if strings.TrimSpace(settings.Secret) == "" {
		return nil, errors.New("token service: signing secret is required")
	}
	if strings.TrimSpace(settings.Issuer) == "" {
		return nil, errors.New("token service: issuer is required")
	}
	if strings.TrimSpace(settings.Audience) == "" {
		return nil, errors.New("token service: audience is required")
	}
	if settings.ExpiryHours <= 0 {
		return nil, fmt.Errorf("token service: expiry must be positive, got %d hours", settings.ExpiryHours)
	}

	s := &TokenService{
		key:      []byte(settings.Secret),
		issuer:   settings.Issuer,
		audience: settings.Audience,
		ttl:      time.Duration(settings.ExpiryHours) * time.Hour,
		now:      time.Now,
	}
	s.parser = s.newParser()
	return s, nil
}

// newParser pins the algorithm and requires exp, iss and aud on every token.
func (s *TokenService) newParser() *jwt.Parser {
	return jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithTimeFunc(func() time.Time { return s.now() }),
	)
}

// Issue signs a token for name carrying one role claim per entry in roles.
func (s *TokenService) Issue(name string, roles []string) (string, time.Time, error) {
	if name == "" {
		return "", time.Time{}, errors.New("token service: name is required")
	}

	now := s.now().UTC()
	expiresAt := now.Add(s.ttl)

	claims := Claims{
		Name:  name,
		Roles: jwt.ClaimStrings(dedupeRoles(roles)),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   name,
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Validate checks signature, issuer, audience and lifetime, and returns the
// principal the token describes.
func (s *TokenService) Validate(raw string) (*domain.Principal, error) {
	claims := &Claims{}
	_, err := s.parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return s.key, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidToken, err)
	}

	name := claims.Name
	if name == "" {
		name = claims.Subject
	}
	if name == "" {
		return nil, fmt.Errorf("%w: missing name claim", domain.ErrInvalidToken)
	}
	return &domain.Principal{Name: name, Roles: []string(claims.Roles)}, nil
}

func dedupeRoles(roles []string) []string {
	if len(roles) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(roles))
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		if r == "" {
			continue
		}
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
