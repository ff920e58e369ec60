package user

import (
	"context"
	"errors"
	"strings"

	"storefront/internal/db"
	"storefront/internal/domain"
	"storefront/internal/logging"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger logrus.FieldLogger
}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(pool *pgxpool.Pool, logger logrus.FieldLogger) Repository {
	return &postgresRepo{pool: pool, logger: logging.OrDiscard(logger)}
}

func (r *postgresRepo) Create(ctx context.Context, u domain.User) (*domain.User, error) {
	role := u.Role
	if role == "" {
		role = domain.RoleUser
	}
	const q = `
INSERT INTO users (email, password_hash, first_name, last_name, role, is_active)
VALUES ($1, $2, $3, $4, $5, TRUE)
RETURNING id, email, password_hash, first_name, last_name, role, is_active, created_at
`
	out, err := r.scanUser(r.pool.QueryRow(ctx, q,
		strings.ToLower(u.Email),
		u.PasswordHash,
		u.FirstName,
		u.LastName,
		string(role),
	))
	if err != nil {
		if _, ok := db.IsUniqueViolation(err); ok {
			return nil, domain.ErrAlreadyExists
		}
		return nil, err
	}
	return out, nil
}

func (r *postgresRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const q = `
SELECT id, email, password_hash, first_name, last_name, role, is_active, created_at
FROM users
WHERE lower(email) = lower($1)
LIMIT 1
`
	return r.scanUser(r.pool.QueryRow(ctx, q, email))
}

func (r *postgresRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	const q = `
SELECT id, email, password_hash, first_name, last_name, role, is_active, created_at
FROM users
WHERE id = $1
`
	return r.scanUser(r.pool.QueryRow(ctx, q, id))
}

func (r *postgresRepo) scanUser(row pgx.Row) (*domain.User, error) {
	var (
		u    domain.User
		role string
	)
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &role, &u.IsActive, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		if _, ok := db.IsUniqueViolation(err); !ok {
			r.logger.WithError(err).Error("user repo: scan")
		}
		return nil, err
	}
	u.Role = domain.Role(role)
	return &u, nil
}
