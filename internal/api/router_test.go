package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/apifuncional/catalog-api/internal/core/domain"
	"github.com/apifuncional/catalog-api/internal/core/service"
)

// ---------------------------------------------------------------------------
// In-memory repositories
// ---------------------------------------------------------------------------

type memUsers struct {
	mu    sync.Mutex
	users map[string]*domain.User
	roles map[string][]string
}

func newMemUsers() *memUsers {
	return &memUsers{users: map[string]*domain.User{}, roles: map[string][]string{}}
}

func (m *memUsers) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := domain.NormalizeEmail(u.Email)
	if _, ok := m.users[key]; ok {
		return nil, domain.ErrUserExists
	}
	clone := *u
	clone.ID = "id-" + key
	m.users[key] = &clone
	out := clone
	return &out, nil
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[domain.NormalizeEmail(email)]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (m *memUsers) RolesFor(_ context.Context, id string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.roles[id]), nil
}

func (m *memUsers) AddToRole(_ context.Context, id, role string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !slices.Contains(m.roles[id], role) {
		m.roles[id] = append(m.roles[id], role)
	}
	return nil
}

func (m *memUsers) RecordSignIn(context.Context, string, time.Time) error { return nil }

type memProducts struct {
	mu     sync.Mutex
	byID   map[int64]*domain.Product
	nextID int64
}

func newMemProducts() *memProducts {
	return &memProducts{byID: map[int64]*domain.Product{}}
}

func (m *memProducts) List(context.Context) ([]*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.Product, 0, len(m.byID))
	for _, p := range m.byID {
		clone := *p
		out = append(out, &clone)
	}
	return out, nil
}

func (m *memProducts) FindByID(_ context.Context, id int64) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	clone := *p
	return &clone, nil
}

func (m *memProducts) Create(_ context.Context, p *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	p.ID, p.Version = m.nextID, 1
	clone := *p
	m.byID[p.ID] = &clone
	return nil
}

func (m *memProducts) Update(_ context.Context, p *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.byID[p.ID]
	if !ok || (p.Version != 0 && p.Version != stored.Version) {
		return domain.ErrConcurrencyConflict
	}
	p.Version = stored.Version + 1
	clone := *p
	m.byID[p.ID] = &clone
	return nil
}

func (m *memProducts) Exists(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.byID[id]
	return ok, nil
}

func (m *memProducts) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return domain.ErrProductNotFound
	}
	delete(m.byID, id)
	return nil
}

// ---------------------------------------------------------------------------
// Harness
// ---------------------------------------------------------------------------

const testSecret = "router-test-secret"

type testAPI struct {
	e     *echo.Echo
	users *memUsers
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	tokens, err := service.NewTokenService(domain.JWTSettings{
		Secret: testSecret, Issuer: "catalog-api", Audience: "https://localhost", ExpiryHours: 2,
	})
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}

	users := newMemUsers()
	log := zerolog.Nop()
	e := NewRouter(Deps{
		Logger:         log,
		AuthService:    service.NewAuthService(users, nil, tokens, domain.DefaultPasswordPolicy(), log),
		ProductService: service.NewProductService(newMemProducts(), log),
		TokenValidator: tokens,
		Registry:       prometheus.NewRegistry(),
	})
	return &testAPI{e: e, users: users}
}

func (a *testAPI) do(t *testing.T, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func tokenFrom(t *testing.T, rec *httptest.ResponseRecorder) (string, jwt.MapClaims) {
	t.Helper()
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil || resp.Token == "" {
		t.Fatalf("expected token in %s (err=%v)", rec.Body.String(), err)
	}
	claims := jwt.MapClaims{}
	if _, err := jwt.ParseWithClaims(resp.Token, claims, func(*jwt.Token) (any, error) {
		return []byte(testSecret), nil
	}); err != nil {
		t.Fatalf("parse token: %v", err)
	}
	return resp.Token, claims
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestRouter_AccountAndAuthorizationScenario(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/conta/registrar", `{"email":"a@b.com","password":"Teste@123","confirmPassword":"Teste@123"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("register: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	_, regClaims := tokenFrom(t, rec)
	if regClaims["name"] != "a@b.com" || regClaims["sub"] != "a@b.com" {
		t.Fatalf("unexpected registration claims: %v", regClaims)
	}
	if _, ok := regClaims["role"]; ok {
		t.Fatalf("registration token must carry no role: %v", regClaims)
	}

	rec = api.do(t, http.MethodPost, "/api/conta/login", `{"email":"a@b.com","password":"Teste@123"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	token, loginClaims := tokenFrom(t, rec)
	if loginClaims["name"] != "a@b.com" {
		t.Fatalf("unexpected login claims: %v", loginClaims)
	}
	if _, ok := loginClaims["role"]; ok {
		t.Fatalf("user without roles must get no role claim: %v", loginClaims)
	}

	if rec := api.do(t, http.MethodDelete, "/api/produtos/1", "", token); rec.Code != http.StatusForbidden {
		t.Fatalf("non-admin delete: expected 403, got %d", rec.Code)
	}

	rec = api.do(t, http.MethodGet, "/api/produtos/1", "", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("anonymous get: expected 404, got %d", rec.Code)
	}
}

func TestRouter_AnonymousAccess(t *testing.T) {
	api := newTestAPI(t)

	for _, path := range []string{"/api/produtos", "/api/produtos/", "/api/produtos/1"} {
		if rec := api.do(t, http.MethodGet, path, "", ""); rec.Code == http.StatusUnauthorized {
			t.Fatalf("anonymous GET %s must not be 401", path)
		}
	}
	if rec := api.do(t, http.MethodGet, "/api/produtos", "", "garbage"); rec.Code == http.StatusUnauthorized {
		t.Fatalf("invalid token on anonymous GET must not be 401")
	}

	body := `{"id":1,"name":"Notebook","price":10,"stock":1}`
	tests := []struct {
		method string
		path   string
		body   string
	}{
		{http.MethodPost, "/api/produtos", body},
		{http.MethodPut, "/api/produtos/1", body},
		{http.MethodDelete, "/api/produtos/1", ""},
	}
	for _, tt := range tests {
		rec := api.do(t, tt.method, tt.path, tt.body, "")
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("anonymous %s %s: expected 401, got %d", tt.method, tt.path, rec.Code)
		}
		if rec.Header().Get(echo.HeaderWWWAuthenticate) == "" {
			t.Fatalf("anonymous %s %s: expected bearer challenge", tt.method, tt.path)
		}
	}
}

func TestRouter_ProductLifecycle(t *testing.T) {
	api := newTestAPI(t)

	if rec := api.do(t, http.MethodGet, "/api/produtos", "", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("empty catalog: expected 404, got %d", rec.Code)
	}

	api.do(t, http.MethodPost, "/api/conta/registrar", `{"email":"root@b.com","password":"Teste@123","confirmPassword":"Teste@123"}`, "")
	root, err := api.users.FindByEmail(context.Background(), "root@b.com")
	if err != nil {
		t.Fatalf("find user: %v", err)
	}
	_ = api.users.AddToRole(context.Background(), root.ID, domain.RoleAdmin)

	rec := api.do(t, http.MethodPost, "/api/conta/login", `{"email":"root@b.com","password":"Teste@123"}`, "")
	token, claims := tokenFrom(t, rec)
	if claims["role"] == nil {
		t.Fatalf("admin token must carry a role claim: %v", claims)
	}

	rec = api.do(t, http.MethodPost, "/api/produtos", `{"name":"Notebook","price":3500,"stock":4}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if loc := rec.Header().Get(echo.HeaderLocation); loc != "/api/produtos/1" {
		t.Fatalf("unexpected Location %q", loc)
	}

	if rec := api.do(t, http.MethodGet, "/api/produtos", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", rec.Code)
	}

	if rec := api.do(t, http.MethodPut, "/api/produtos/1", `{"id":2,"name":"x","price":1,"stock":1}`, token); rec.Code != http.StatusBadRequest {
		t.Fatalf("id mismatch: expected 400, got %d", rec.Code)
	}
	if rec := api.do(t, http.MethodPut, "/api/produtos/9", `{"id":9,"name":"x","price":1,"stock":1}`, token); rec.Code != http.StatusNotFound {
		t.Fatalf("update unknown: expected 404, got %d", rec.Code)
	}
	if rec := api.do(t, http.MethodPut, "/api/produtos/1", `{"id":1,"name":"Notebook Pro","price":4200,"stock":2,"version":1}`, token); rec.Code != http.StatusNoContent {
		t.Fatalf("update: expected 204, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec := api.do(t, http.MethodPut, "/api/produtos/1", `{"id":1,"name":"stale","price":1,"stock":1,"version":1}`, token); rec.Code != http.StatusInternalServerError {
		t.Fatalf("stale update: expected 500, got %d", rec.Code)
	}

	if rec := api.do(t, http.MethodDelete, "/api/produtos/1", "", token); rec.Code != http.StatusNoContent {
		t.Fatalf("admin delete: expected 204, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec := api.do(t, http.MethodDelete, "/api/produtos/1", "", token); rec.Code != http.StatusNotFound {
		t.Fatalf("second delete: expected 404, got %d", rec.Code)
	}
}

func TestRouter_AccountFailures(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/conta/registrar", `{"email":"a@b.com","password":"weak","confirmPassword":"weak"}`, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("weak password: expected 400, got %d", rec.Code)
	}
	var body struct {
		Error   string   `json:"error"`
		Details []string `json:"details"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || len(body.Details) == 0 {
		t.Fatalf("expected rejection reasons, got %s", rec.Body.String())
	}

	rec = api.do(t, http.MethodPost, "/api/conta/registrar", `{"email":"a@b.com","password":"Teste@123","confirmPassword":"Teste@124"}`, "")
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "confirmPassword") {
		t.Fatalf("mismatch: expected 400 naming confirmPassword, got %d: %s", rec.Code, rec.Body.String())
	}

	api.do(t, http.MethodPost, "/api/conta/registrar", `{"email":"a@b.com","password":"Teste@123","confirmPassword":"Teste@123"}`, "")
	wrong := api.do(t, http.MethodPost, "/api/conta/login", `{"email":"a@b.com","password":"nope"}`, "")
	unknown := api.do(t, http.MethodPost, "/api/conta/login", `{"email":"ghost@b.com","password":"Teste@123"}`, "")
	if wrong.Code != http.StatusUnauthorized || unknown.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for both failures, got %d and %d", wrong.Code, unknown.Code)
	}
	if wrong.Body.String() != unknown.Body.String() {
		t.Fatalf("login failures must be indistinguishable: %q vs %q", wrong.Body.String(), unknown.Body.String())
	}
}

func TestRouter_OperationalEndpoints(t *testing.T) {
	api := newTestAPI(t)

	if rec := api.do(t, http.MethodGet, "/health", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("health: expected 200, got %d", rec.Code)
	}
	if rec := api.do(t, http.MethodGet, "/health/ready", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("ready: expected 200, got %d", rec.Code)
	}
	api.do(t, http.MethodPost, "/api/conta/registrar", `{"email":"m@b.com","password":"Teste@123","confirmPassword":"Teste@123"}`, "")
	rec := api.do(t, http.MethodGet, "/metrics", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics: expected 200, got %d", rec.Code)
	}
	for _, name := range []string{"catalog_auth_registrations_total", "catalog_tokens_issued_total"} {
		if !strings.Contains(rec.Body.String(), name) {
			t.Fatalf("expected %s on /metrics", name)
		}
	}
	if rec := api.do(t, http.MethodGet, "/swagger/index.html", "", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("swagger must be disabled outside development, got %d", rec.Code)
	}
}
