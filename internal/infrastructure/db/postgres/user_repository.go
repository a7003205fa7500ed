package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/apifuncional/catalog-api/internal/core/domain"
)

const uniqueViolation = "23505"

// UserRepository implements ports.UserRepository with users, roles and
// user_roles tables.
type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	created := *user
	created.ID = uuid.NewString()
	created.Roles = []string{}

	query := `
		INSERT INTO users (id, email, normalized_email, password_hash, email_confirmed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		created.ID,
		created.Email,
		domain.NormalizeEmail(created.Email),
		created.PasswordHash,
		created.EmailConfirmed,
		created.CreatedAt,
		created.UpdatedAt,
	).Scan(&created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return &created, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := `
		SELECT id, email, password_hash, email_confirmed, created_at, updated_at, last_sign_in_at
		FROM users
		WHERE normalized_email = $1
	`
	var u domain.User
	err := r.db.QueryRow(ctx, query, domain.NormalizeEmail(email)).Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.EmailConfirmed,
		&u.CreatedAt,
		&u.UpdatedAt,
		&u.LastSignInAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}

	roles, err := r.rolesFor(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	u.Roles = roles
	return &u, nil
}

func (r *UserRepository) RolesFor(ctx context.Context, userID string) ([]string, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, domain.ErrUserNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	return r.rolesFor(ctx, userID)
}

func (r *UserRepository) rolesFor(ctx context.Context, userID string) ([]string, error) {
	query := `
		SELECT r.name
		FROM user_roles ur
		JOIN roles r ON r.id = ur.role_id
		WHERE ur.user_id = $1
		ORDER BY r.name
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query roles: %w", err)
	}

	roles, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan roles: %w", err)
	}
	if roles == nil {
		roles = []string{}
	}
	return roles, nil
}

// AddToRole creates the role on first use and links it to the user. Adding a
// role the user already holds is a no-op.
func (r *UserRepository) AddToRole(ctx context.Context, userID, role string) error {
	if _, err := uuid.Parse(userID); err != nil {
		return domain.ErrUserNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var roleID int
	err = tx.QueryRow(ctx, `
		INSERT INTO roles (name) VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`, role).Scan(&roleID)
	if err != nil {
		return fmt.Errorf("upsert role: %w", err)
	}

	tag, err := tx.Exec(ctx, `
		INSERT INTO user_roles (user_id, role_id)
		SELECT id, $2 FROM users WHERE id = $1
		ON CONFLICT DO NOTHING
	`, userID, roleID)
	if err != nil {
		return fmt.Errorf("link role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&exists); err != nil {
			return fmt.Errorf("check user: %w", err)
		}
		if !exists {
			return domain.ErrUserNotFound
		}
	}

	if _, err := tx.Exec(ctx, `UPDATE users SET updated_at = NOW() WHERE id = $1`, userID); err != nil {
		return fmt.Errorf("touch user: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (r *UserRepository) RecordSignIn(ctx context.Context, userID string, at time.Time) error {
	if _, err := uuid.Parse(userID); err != nil {
		return domain.ErrUserNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	tag, err := r.db.Exec(ctx, `UPDATE users SET last_sign_in_at = $2 WHERE id = $1`, userID, at)
	if err != nil {
		return fmt.Errorf("record sign-in: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
