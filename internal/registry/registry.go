package registry

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/somos-tech/profile-service/internal/domain"
)

// ErrDuplicateEmail is returned by Create when a record already exists
// for the email. Auto-provisioning relies on this instead of overwriting.
var ErrDuplicateEmail = errors.New("admin user already exists for email")

// Registry defines persistence access for the admin user registry.
type Registry interface {
	FindByEmail(ctx context.Context, email string) (*domain.AdminUser, error)
	Create(ctx context.Context, user *domain.AdminUser) error
	Upsert(ctx context.Context, user *domain.AdminUser) error
	TouchLastLogin(ctx context.Context, email string, at time.Time) error
}

type pgRegistry struct {
	pool *pgxpool.Pool
}

// NewRegistry returns a Postgres-backed implementation.
func NewRegistry(pool *pgxpool.Pool) Registry {
	return &pgRegistry{pool: pool}
}

func (r *pgRegistry) FindByEmail(ctx context.Context, email string) (*domain.AdminUser, error) {
	const query = `
        SELECT id, email, roles, status, identity_provider, created_at, last_login
        FROM admin_users WHERE email=$1`

	var user domain.AdminUser
	if err := r.pool.QueryRow(ctx, query, email).Scan(
		&user.ID,
		&user.Email,
		&user.Roles,
		&user.Status,
		&user.IdentityProvider,
		&user.CreatedAt,
		&user.LastLogin,
	); err != nil {
		return nil, err
	}
	return &user, nil
}

// Create inserts a record only when none exists for the email. Concurrent
// first logins from the same email resolve to a single record.
func (r *pgRegistry) Create(ctx context.Context, user *domain.AdminUser) error {
	const query = `
        INSERT INTO admin_users (id, email, roles, status, identity_provider, created_at, last_login)
        VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
        ON CONFLICT (email) DO NOTHING`

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	cmd, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Email,
		user.Roles,
		user.Status,
		user.IdentityProvider,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrDuplicateEmail
	}
	return nil
}

func (r *pgRegistry) Upsert(ctx context.Context, user *domain.AdminUser) error {
	const query = `
        INSERT INTO admin_users (id, email, roles, status, identity_provider, created_at, last_login)
        VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
        ON CONFLICT (email) DO UPDATE
        SET roles=EXCLUDED.roles, status=EXCLUDED.status, identity_provider=EXCLUDED.identity_provider`

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Email,
		user.Roles,
		user.Status,
		user.IdentityProvider,
	)
	return err
}

func (r *pgRegistry) TouchLastLogin(ctx context.Context, email string, at time.Time) error {
	const query = `UPDATE admin_users SET last_login=$1 WHERE email=$2`

	cmd, err := r.pool.Exec(ctx, query, at, email)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
