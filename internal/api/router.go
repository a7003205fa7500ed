package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/apifuncional/catalog-api/docs"
	"github.com/apifuncional/catalog-api/internal/api/handler"
	"github.com/apifuncional/catalog-api/internal/api/metrics"
	"github.com/apifuncional/catalog-api/internal/api/middleware"
	"github.com/apifuncional/catalog-api/internal/core/domain"
	"github.com/apifuncional/catalog-api/internal/core/ports"
)

// Deps carries everything the HTTP layer needs. Services are injected so the
// router can be exercised without real backing stores.
type Deps struct {
	Logger         zerolog.Logger
	AuthService    ports.AuthService
	ProductService ports.ProductService
	TokenValidator ports.TokenValidator
	HealthChecks   map[string]handler.HealthCheck

	// Development enables Swagger UI and the permissive CORS policy.
	Development        bool
	CORSAllowedOrigins []string

	// Registry receives the HTTP and domain metrics and backs /metrics.
	// Nil means the default registry.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)

	// --- Global middleware ---
	e.Pre(echomiddleware.RemoveTrailingSlash())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.CORSWithConfig(corsConfig(d)))
	e.Use(middleware.Authenticate(d.TokenValidator, d.Logger))
	e.Use(middleware.RequestLogger(d.Logger))
	e.Use(prometheusMiddleware(d.Registry))
	if d.Registry != nil {
		d.Registry.MustRegister(metrics.Collectors()...)
	}

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler(d.HealthChecks)
	e.GET("/health", healthHandler.Liveness)        // liveness  – is the process alive?
	e.GET("/health/ready", healthHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", metricsHandler(d.Registry))

	if d.Development {
		e.GET("/swagger/*", echoSwagger.WrapHandler)
	}

	// --- Account routes ---
	authHandler := handler.NewAuthHandler(d.AuthService)
	conta := e.Group("/api/conta")
	conta.POST("/registrar", authHandler.Register)
	conta.POST("/login", authHandler.Login)

	// --- Product routes ---
	productHandler := handler.NewProductHandler(d.ProductService)
	produtos := e.Group("/api/produtos")
	produtos.GET("", productHandler.List)
	produtos.GET("/:id", productHandler.Get)
	produtos.POST("", productHandler.Create, middleware.RequireAuthenticated())
	produtos.PUT("/:id", productHandler.Update, middleware.RequireAuthenticated())
	produtos.DELETE("/:id", productHandler.Delete, middleware.RequireRole(domain.RoleAdmin))

	return e
}

// corsConfig allows everything in development. Elsewhere only the configured
// origins may POST.
func corsConfig(d Deps) echomiddleware.CORSConfig {
	if d.Development {
		return echomiddleware.CORSConfig{
			AllowOrigins: []string{"*"},
			AllowMethods: []string{
				http.MethodGet, http.MethodHead, http.MethodPost,
				http.MethodPut, http.MethodPatch, http.MethodDelete,
			},
		}
	}
	cfg := echomiddleware.CORSConfig{
		AllowOrigins: d.CORSAllowedOrigins,
		AllowMethods: []string{http.MethodPost},
		AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderOrigin},
	}
	if len(cfg.AllowOrigins) == 0 {
		// Echo treats an empty list as "*".
		cfg.AllowOriginFunc = func(string) (bool, error) { return false, nil }
	}
	return cfg
}

func prometheusMiddleware(reg *prometheus.Registry) echo.MiddlewareFunc {
	cfg := echoprometheus.MiddlewareConfig{
		Subsystem: "catalog",
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}
	if reg != nil {
		cfg.Registerer = reg
	}
	return echoprometheus.NewMiddlewareWithConfig(cfg)
}

func metricsHandler(reg *prometheus.Registry) echo.HandlerFunc {
	if reg == nil {
		return echoprometheus.NewHandler()
	}
	return echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: reg})
}
