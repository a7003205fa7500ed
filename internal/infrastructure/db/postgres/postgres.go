// Package postgres provides the PostgreSQL implementation of the credential
// store and the product catalog.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const defaultTimeout = 10 * time.Second

// Config contains PostgreSQL connection configuration.
type Config struct {
	URL             string
	MaxConns        int32
	ConnectAttempts int
}

// Connect establishes a connection pool and pings it, retrying with
// exponential backoff.
func Connect(ctx context.Context, cfg Config, log zerolog.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}

	attempts := cfg.ConnectAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err == nil {
			pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
			err = pool.Ping(pingCtx)
			cancel()
			if err == nil {
				log.Info().Int("attempts", attempt).Msg("connected to postgres")
				return pool, nil
			}
			pool.Close()
		}
		lastErr = err

		if attempt < attempts {
			backoff := calcBackoff(attempt)
			log.Warn().Err(err).Int("attempt", attempt).Dur("backoff", backoff).Msg("postgres not ready, retrying")
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, fmt.Errorf("connection cancelled: %w", ctx.Err())
			}
		}
	}

	return nil, fmt.Errorf("connect to postgres after %d attempts: %w", attempts, lastErr)
}

// calcBackoff returns exponential backoff capped at 16 seconds.
func calcBackoff(attempt int) time.Duration {
	backoff := time.Duration(1<<(attempt-1)) * time.Second
	if backoff > 16*time.Second {
		backoff = 16 * time.Second
	}
	return backoff
}
