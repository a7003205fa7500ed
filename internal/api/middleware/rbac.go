package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/apifuncional/catalog-api/internal/core/domain"
)

// RequireAuthenticated rejects requests that carry no valid principal.
func RequireAuthenticated() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !domain.Authenticated(PrincipalFrom(c)) {
				challenge(c)
				return domain.ErrUnauthenticated
			}
			return next(c)
		}
	}
}

// RequireRole enforces role-based access control. A missing principal is a
// 401; a principal lacking every listed role is a 403.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p := PrincipalFrom(c)
			if !domain.Authenticated(p) {
				challenge(c)
				return domain.ErrUnauthenticated
			}
			if !p.HasAnyRole(roles...) {
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}
