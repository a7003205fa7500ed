package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/apifuncional/catalog-api/internal/api/metrics"
	"github.com/apifuncional/catalog-api/internal/core/domain"
	"github.com/apifuncional/catalog-api/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register creates a new account and signs it in.
//
// @Summary      Register a new user
// @Tags         conta
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  map[string]any
// @Failure      500   {object}  map[string]any
// @Router       /api/conta/registrar [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindAndValidate(c, &req); err != nil {
		metrics.AuthRegistrationsTotal.WithLabelValues("invalid").Inc()
		return err
	}

	res, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		metrics.AuthRegistrationsTotal.WithLabelValues(registrationResult(err)).Inc()
		return err
	}

	metrics.AuthRegistrationsTotal.WithLabelValues("success").Inc()
	metrics.TokensIssuedTotal.WithLabelValues("register").Inc()
	return c.JSON(http.StatusOK, authResponse{Token: res.Token, ExpiresAt: res.ExpiresAt, User: res.User})
}

// Login authenticates a user and returns a bearer token.
//
// @Summary      Login
// @Tags         conta
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  map[string]any
// @Failure      401   {object}  map[string]any
// @Router       /api/conta/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	start := time.Now()
	defer func() { metrics.LoginDuration.Observe(time.Since(start).Seconds()) }()

	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		metrics.AuthLoginsTotal.WithLabelValues(loginResult(err)).Inc()
		return err
	}

	metrics.AuthLoginsTotal.WithLabelValues("success").Inc()
	metrics.TokensIssuedTotal.WithLabelValues("login").Inc()
	return c.JSON(http.StatusOK, authResponse{Token: res.Token, ExpiresAt: res.ExpiresAt, User: res.User})
}

func registrationResult(err error) string {
	var rerr *domain.RegistrationError
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &rerr):
		return "rejected"
	case errors.As(err, &verr):
		return "invalid"
	default:
		return "error"
	}
}

func loginResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrLockedOut):
		return "locked_out"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	default:
		return "error"
	}
}
