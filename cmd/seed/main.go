// Command seed creates an account, or reuses an existing one, and grants it
// a role. It is the only way to obtain an Admin.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/apifuncional/catalog-api/internal/core/domain"
	"github.com/apifuncional/catalog-api/internal/core/ports"
	"github.com/apifuncional/catalog-api/internal/core/service"
	"github.com/apifuncional/catalog-api/internal/infrastructure/store"
	"github.com/apifuncional/catalog-api/internal/pkg/config"
	"github.com/apifuncional/catalog-api/pkg/logger"
)

func main() {
	email := flag.String("email", "", "account email")
	password := flag.String("password", "", "account password, used only when the account is created")
	role := flag.String("role", domain.RoleAdmin, "role to grant")
	flag.Parse()

	if *email == "" || *role == "" {
		flag.Usage()
		os.Exit(2)
	}
	if err := run(*email, *password, *role); err != nil {
		fmt.Fprintf(os.Stderr, "seed: %v\n", err)
		os.Exit(1)
	}
}

func run(email, password, role string) error {
	_ = godotenv.Load()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: true, Service: "catalog-seed"})

	st, err := store.Open(ctx, cfg, logger.For("store"))
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	user, err := st.Users.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		if password == "" {
			return errors.New("-password is required to create a new account")
		}
		tokens, err := service.NewTokenService(cfg.JWTSettings())
		if err != nil {
			return err
		}
		auth := service.NewAuthService(st.Users, nil, tokens, cfg.PasswordPolicy(), logger.For("auth"))
		res, err := auth.Register(ctx, ports.RegisterInput{Email: email, Password: password, ConfirmPassword: password})
		if err != nil {
			return fmt.Errorf("register %s: %w", email, err)
		}
		user = res.User
		log.Info().Str("email", email).Msg("account created")
	case err != nil:
		return fmt.Errorf("find %s: %w", email, err)
	default:
		log.Info().Str("email", email).Msg("account exists")
	}

	if err := st.Users.AddToRole(ctx, user.ID, role); err != nil {
		return fmt.Errorf("grant %s: %w", role, err)
	}
	log.Info().Str("email", email).Str("role", role).Msg("role granted")
	return nil
}
