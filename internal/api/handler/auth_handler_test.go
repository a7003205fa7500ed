package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/apifuncional/catalog-api/internal/core/domain"
	"github.com/apifuncional/catalog-api/internal/core/ports"
)

type stubAuthService struct {
	registerFn func(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error)
	loginFn    func(ctx context.Context, email, password string) (*ports.AuthResult, error)
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	return s.loginFn(ctx, email, password)
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func postJSON(e *echo.Echo, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAuthHandler_Register_Success(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
			if in.Email != "a@b.com" || in.Password != "Teste@123" || in.ConfirmPassword != "Teste@123" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &ports.AuthResult{
				Token:     "signed",
				ExpiresAt: time.Now().Add(time.Hour),
				User:      &domain.User{ID: "u1", Email: in.Email, PasswordHash: "hash", EmailConfirmed: true},
			}, nil
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := postJSON(e, "/api/conta/registrar", `{"email":"a@b.com","password":"Teste@123","confirmPassword":"Teste@123"}`)
	if err := handler.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["token"] != "signed" {
		t.Fatalf("unexpected token: %v", resp["token"])
	}
	user, ok := resp["user"].(map[string]any)
	if !ok {
		t.Fatalf("expected user in response")
	}
	if _, leaked := user["PasswordHash"]; leaked {
		t.Fatalf("password hash must not be serialized")
	}
	if user["email"] != "a@b.com" {
		t.Fatalf("unexpected user payload: %+v", user)
	}
}

func TestAuthHandler_Register_PasswordMismatch(t *testing.T) {
	e := newTestEcho()
	handler := NewAuthHandler(&stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
			t.Fatalf("service must not be called")
			return nil, nil
		},
	})

	c, _ := postJSON(e, "/api/conta/registrar", `{"email":"a@b.com","password":"Teste@123","confirmPassword":"other"}`)
	err := handler.Register(c)

	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Fields["confirmPassword"] == "" {
		t.Fatalf("expected confirmPassword field error, got %+v", verr.Fields)
	}
}

func TestAuthHandler_Register_InvalidEmail(t *testing.T) {
	e := newTestEcho()
	handler := NewAuthHandler(&stubAuthService{})

	c, _ := postJSON(e, "/api/conta/registrar", `{"email":"nope","password":"x","confirmPassword":"x"}`)
	var verr *domain.ValidationError
	if err := handler.Register(c); !errors.As(err, &verr) || verr.Fields["email"] == "" {
		t.Fatalf("expected email validation error, got %v", err)
	}
}

func TestAuthHandler_Register_Rejected(t *testing.T) {
	e := newTestEcho()
	rejection := &domain.RegistrationError{Reasons: []string{"Username 'a@b.com' is already taken."}}
	handler := NewAuthHandler(&stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
			return nil, rejection
		},
	})

	c, _ := postJSON(e, "/api/conta/registrar", `{"email":"a@b.com","password":"Teste@123","confirmPassword":"Teste@123"}`)
	if err := handler.Register(c); !errors.Is(err, rejection) {
		t.Fatalf("expected registration error to propagate, got %v", err)
	}
}

func TestAuthHandler_Login(t *testing.T) {
	e := newTestEcho()
	handler := NewAuthHandler(&stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (*ports.AuthResult, error) {
			if password != "Teste@123" {
				return nil, domain.ErrInvalidCredentials
			}
			return &ports.AuthResult{Token: "signed", User: &domain.User{Email: email}}, nil
		},
	})

	c, rec := postJSON(e, "/api/conta/login", `{"email":"a@b.com","password":"Teste@123"}`)
	if err := handler.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	c, _ = postJSON(e, "/api/conta/login", `{"email":"a@b.com","password":"wrong"}`)
	if err := handler.Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthHandler_Login_BadPayload(t *testing.T) {
	e := newTestEcho()
	handler := NewAuthHandler(&stubAuthService{})

	c, _ := postJSON(e, "/api/conta/login", `{"email":`)
	err := handler.Login(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestLoginResult(t *testing.T) {
	if got := loginResult(domain.ErrLockedOut); got != "locked_out" {
		t.Fatalf("expected locked_out, got %s", got)
	}
	if got := loginResult(domain.ErrInvalidCredentials); got != "invalid_credentials" {
		t.Fatalf("expected invalid_credentials, got %s", got)
	}
	if got := loginResult(errors.New("boom")); got != "error" {
		t.Fatalf("expected error, got %s", got)
	}
}
