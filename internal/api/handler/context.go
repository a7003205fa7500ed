package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/apifuncional/catalog-api/internal/api/middleware"
	"github.com/apifuncional/catalog-api/internal/core/domain"
)

// caller returns the principal injected by the Authenticate middleware, or
// nil for an anonymous request.
func caller(c echo.Context) *domain.Principal {
	return middleware.PrincipalFrom(c)
}

// productID parses the :id path parameter.
func productID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	return id, nil
}

// bindAndValidate decodes the JSON body into req and runs struct validation.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	return c.Validate(req)
}
