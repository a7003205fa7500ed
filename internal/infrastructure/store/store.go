// Package store opens the backing services selected by configuration and
// hands out the repositories built on them.
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/apifuncional/catalog-api/internal/core/ports"
	"github.com/apifuncional/catalog-api/internal/infrastructure/db/mongo"
	"github.com/apifuncional/catalog-api/internal/infrastructure/db/postgres"
	"github.com/apifuncional/catalog-api/internal/infrastructure/db/redis"
	"github.com/apifuncional/catalog-api/internal/pkg/config"
)

// Store bundles the repositories and the readiness probes of the services
// behind them.
type Store struct {
	Users    ports.UserRepository
	Products ports.ProductRepository
	// Lockout is nil when lockout tracking is disabled.
	Lockout ports.LockoutTracker
	// Pool is set only for the postgres driver.
	Pool   *pgxpool.Pool
	Checks map[string]func(ctx context.Context) error

	closers []func()
}

// Open connects to the configured driver, prepares its schema, and to Redis
// when lockout is enabled. On error everything already opened is closed.
func Open(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Store, error) {
	s := &Store{Checks: make(map[string]func(ctx context.Context) error)}
	opened := false
	defer func() {
		if !opened {
			s.Close()
		}
	}()

	switch cfg.StoreDriver {
	case config.DriverPostgres:
		if err := s.openPostgres(ctx, cfg, log); err != nil {
			return nil, err
		}
	case config.DriverMongo:
		if err := s.openMongo(ctx, cfg, log); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("store: unknown driver %q", cfg.StoreDriver)
	}

	if cfg.Lockout.Enabled {
		rdb, err := redis.Connect(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, fmt.Errorf("store: %w", err)
		}
		s.closers = append(s.closers, func() { _ = rdb.Close() })
		s.Lockout = redis.NewLockoutTracker(rdb, cfg.Lockout.MaxFailedAttempts, cfg.Lockout.Duration)
		s.Checks["redis"] = func(ctx context.Context) error { return pingRedis(ctx, rdb) }
		log.Info().Str("addr", cfg.Redis.Addr).Msg("redis connected, lockout enabled")
	}

	opened = true
	return s, nil
}

func (s *Store) openPostgres(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	// Connect first so migrations only run once the server accepts connections.
	pool, err := postgres.Connect(ctx, postgres.Config{
		URL:             cfg.Postgres.URL,
		MaxConns:        cfg.Postgres.MaxConns,
		ConnectAttempts: 5,
	}, log)
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}
	s.closers = append(s.closers, pool.Close)

	if err := postgres.Migrate(cfg.Postgres.URL, log); err != nil {
		return fmt.Errorf("store: %w", err)
	}

	s.Pool = pool
	s.Users = postgres.NewUserRepository(pool)
	s.Products = postgres.NewProductRepository(pool)
	s.Checks["postgres"] = pool.Ping
	return nil
}

func (s *Store) openMongo(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	client, db, err := mongo.Connect(ctx, mongo.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  "catalog-api",
	})
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}
	s.closers = append(s.closers, func() { _ = client.Disconnect(context.Background()) })

	if err := mongo.EnsureIndexes(ctx, db); err != nil {
		return fmt.Errorf("store: %w", err)
	}

	s.Users = mongo.NewUserRepository(db)
	s.Products = mongo.NewProductRepository(db)
	s.Checks["mongodb"] = func(ctx context.Context) error { return mongo.Ping(ctx, db) }
	log.Info().Str("database", cfg.Mongo.Database).Msg("mongodb connected")
	return nil
}

// Close releases every connection in reverse opening order.
func (s *Store) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}

func pingRedis(ctx context.Context, rdb *goredis.Client) error {
	return rdb.Ping(ctx).Err()
}
