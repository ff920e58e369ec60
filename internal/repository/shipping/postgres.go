package shipping

import (
	"context"
	"errors"

	"storefront/internal/db"
	"storefront/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) GetByID(ctx context.Context, id int64) (*domain.ShippingOption, error) {
	const q = `
SELECT id, name, description, price_cents, estimated_days, is_active, created_at
FROM shipping_options
WHERE id = $1
`
	return scanOption(r.pool.QueryRow(ctx, q, id))
}

func (r *postgresRepo) List(ctx context.Context, activeOnly bool) ([]domain.ShippingOption, error) {
	const q = `
SELECT id, name, description, price_cents, estimated_days, is_active, created_at
FROM shipping_options
WHERE is_active OR NOT $1
ORDER BY price_cents ASC, id ASC
`
	rows, err := r.pool.Query(ctx, q, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ShippingOption
	for rows.Next() {
		o, err := scanOption(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

func (r *postgresRepo) Upsert(ctx context.Context, o domain.ShippingOption) (*domain.ShippingOption, error) {
	const q = `
INSERT INTO shipping_options (name, description, price_cents, estimated_days, is_active)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (name) DO UPDATE
SET description = EXCLUDED.description,
    price_cents = EXCLUDED.price_cents,
    estimated_days = EXCLUDED.estimated_days,
    is_active = EXCLUDED.is_active
RETURNING id, name, description, price_cents, estimated_days, is_active, created_at
`
	return scanOption(r.pool.QueryRow(ctx, q, o.Name, o.Description, int64(o.Price), o.EstimatedDays, o.IsActive))
}

func (r *postgresRepo) Create(ctx context.Context, o domain.ShippingOption) (*domain.ShippingOption, error) {
	const q = `
INSERT INTO shipping_options (name, description, price_cents, estimated_days, is_active)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, name, description, price_cents, estimated_days, is_active, created_at
`
	out, err := scanOption(r.pool.QueryRow(ctx, q, o.Name, o.Description, int64(o.Price), o.EstimatedDays, o.IsActive))
	if _, ok := db.IsUniqueViolation(err); ok {
		return nil, domain.ErrAlreadyExists
	}
	return out, err
}

func (r *postgresRepo) Update(ctx context.Context, o domain.ShippingOption) (*domain.ShippingOption, error) {
	const q = `
UPDATE shipping_options
SET name = $1, description = $2, price_cents = $3, estimated_days = $4, is_active = $5
WHERE id = $6
RETURNING id, name, description, price_cents, estimated_days, is_active, created_at
`
	out, err := scanOption(r.pool.QueryRow(ctx, q, o.Name, o.Description, int64(o.Price), o.EstimatedDays, o.IsActive, o.ID))
	if _, ok := db.IsUniqueViolation(err); ok {
		return nil, domain.ErrAlreadyExists
	}
	return out, err
}

func (r *postgresRepo) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM shipping_options WHERE id = $1`, id)
	if err != nil {
		if _, ok := db.IsForeignKeyViolation(err); ok {
			return domain.ErrInvalidState
		}
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanOption(row pgx.Row) (*domain.ShippingOption, error) {
	var (
		o     domain.ShippingOption
		price int64
	)
	if err := row.Scan(&o.ID, &o.Name, &o.Description, &price, &o.EstimatedDays, &o.IsActive, &o.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	o.Price = domain.Money(price)
	return &o, nil
}
