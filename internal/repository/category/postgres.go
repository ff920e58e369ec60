package category

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

func (r *postgresRepo) List(ctx context.Context, activeOnly bool) ([]domain.Category, error) {
	const q = `
SELECT id, name, slug, description, parent_id, is_active, created_at
FROM categories
WHERE is_active OR NOT $1
ORDER BY name ASC
`
	rows, err := r.pool.Query(ctx, q, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *postgresRepo) GetBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	const q = `
SELECT id, name, slug, description, parent_id, is_active, created_at
FROM categories
WHERE slug = $1
`
	return scanCategory(r.pool.QueryRow(ctx, q, slug))
}

func (r *postgresRepo) Upsert(ctx context.Context, c domain.Category) (*domain.Category, error) {
	const q = `
INSERT INTO categories (name, slug, description, parent_id, is_active)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (slug) DO UPDATE
SET name = EXCLUDED.name,
    description = COALESCE(NULLIF(EXCLUDED.description, ''), categories.description),
    parent_id = COALESCE(EXCLUDED.parent_id, categories.parent_id),
    is_active = EXCLUDED.is_active
RETURNING id, name, slug, description, parent_id, is_active, created_at
`
	return scanCategory(r.pool.QueryRow(ctx, q, c.Name, c.Slug, c.Description, c.ParentID, c.IsActive))
}

func (r *postgresRepo) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	const q = `
SELECT id, name, slug, description, parent_id, is_active, created_at
FROM categories
WHERE id = $1
`
	return scanCategory(r.pool.QueryRow(ctx, q, id))
}

func (r *postgresRepo) Create(ctx context.Context, c domain.Category) (*domain.Category, error) {
	const q = `
INSERT INTO categories (name, slug, description, parent_id, is_active)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, name, slug, description, parent_id, is_active, created_at
`
	out, err := scanCategory(r.pool.QueryRow(ctx, q, c.Name, c.Slug, c.Description, c.ParentID, c.IsActive))
	return out, mapWriteErr(err)
}

func (r *postgresRepo) Update(ctx context.Context, c domain.Category) (*domain.Category, error) {
	const q = `
UPDATE categories
SET name = $1, slug = $2, description = $3, parent_id = $4, is_active = $5
WHERE id = $6
RETURNING id, name, slug, description, parent_id, is_active, created_at
`
	out, err := scanCategory(r.pool.QueryRow(ctx, q, c.Name, c.Slug, c.Description, c.ParentID, c.IsActive, c.ID))
	return out, mapWriteErr(err)
}

func (r *postgresRepo) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// mapWriteErr maps a duplicate slug to ErrAlreadyExists and a missing parent to ErrNotFound.
func mapWriteErr(err error) error {
	if _, ok := db.IsUniqueViolation(err); ok {
		return domain.ErrAlreadyExists
	}
	if _, ok := db.IsForeignKeyViolation(err); ok {
		return domain.ErrNotFound
	}
	return err
}

func scanCategory(row pgx.Row) (*domain.Category, error) {
	var c domain.Category
	if err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.ParentID, &c.IsActive, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}
