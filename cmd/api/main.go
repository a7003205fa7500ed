// @title                      Catalog API
// @version                    1.0
// @description                Product catalog with JWT authentication and role-based access control.
// @host                       localhost:8080
// @BasePath                   /
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
// @description                Type "Bearer" followed by a space and the JWT.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/apifuncional/catalog-api/internal/api"
	"github.com/apifuncional/catalog-api/internal/api/handler"
	"github.com/apifuncional/catalog-api/internal/api/metrics"
	"github.com/apifuncional/catalog-api/internal/core/service"
	"github.com/apifuncional/catalog-api/internal/infrastructure/store"
	"github.com/apifuncional/catalog-api/internal/pkg/config"
	"github.com/apifuncional/catalog-api/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "catalog-api: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load() // load .env if present

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "catalog-api",
	})

	st, err := store.Open(ctx, cfg, logger.For("store"))
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	if st.Pool != nil {
		metrics.RegisterPostgresPool(st.Pool)
	}

	tokens, err := service.NewTokenService(cfg.JWTSettings())
	if err != nil {
		return err
	}
	authService := service.NewAuthService(st.Users, st.Lockout, tokens, cfg.PasswordPolicy(), logger.For("auth"))
	productService := service.NewProductService(st.Products, logger.For("products"))

	checks := make(map[string]handler.HealthCheck, len(st.Checks))
	for name, fn := range st.Checks {
		checks[name] = fn
	}

	e := api.NewRouter(api.Deps{
		Logger:             logger.For("http"),
		AuthService:        authService,
		ProductService:     productService,
		TokenValidator:     tokens,
		HealthChecks:       checks,
		Development:        cfg.IsDevelopment(),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("store", cfg.StoreDriver).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	log.Info().Msg("server exited properly")
	return nil
}
