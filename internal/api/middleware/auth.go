package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/apifuncional/catalog-api/internal/core/domain"
	"github.com/apifuncional/catalog-api/internal/core/ports"
)

const (
	principalKey = "principal"
	authErrorKey = "auth_error"
)

// Authenticate validates the bearer token when one is present and stores the
// resulting principal in the request context. It never rejects a request:
// anonymous and invalid-token requests continue without a principal, and the
// authorization middleware decides what they may reach.
func Authenticate(validator ports.TokenValidator, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return next(c)
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
				c.Set(authErrorKey, domain.ErrInvalidToken)
				return next(c)
			}

			principal, err := validator.Validate(strings.TrimSpace(parts[1]))
			if err != nil {
				log.Debug().Err(err).Str("path", c.Path()).Msg("bearer token rejected")
				c.Set(authErrorKey, err)
				return next(c)
			}

			c.Set(principalKey, principal)
			return next(c)
		}
	}
}

// PrincipalFrom returns the principal established by Authenticate, or nil
// for an anonymous request.
func PrincipalFrom(c echo.Context) *domain.Principal {
	p, _ := c.Get(principalKey).(*domain.Principal)
	return p
}

// challenge sets the bearer challenge header sent with every 401.
func challenge(c echo.Context) {
	value := "Bearer"
	if _, failed := c.Get(authErrorKey).(error); failed {
		value = `Bearer error="invalid_token"`
	}
	c.Response().Header().Set(echo.HeaderWWWAuthenticate, value)
}
