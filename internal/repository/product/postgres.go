package product

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"storefront/internal/db"
	"storefront/internal/domain"
	"storefront/internal/logging"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

const selectColumns = `
SELECT p.id, p.name, p.slug, p.description, p.price_cents, p.stock, p.category_id, p.status,
       p.is_customizable, p.is_featured, p.images, p.attributes, p.rating::float8, p.reviews_count,
       p.created_at, p.updated_at
FROM products p
`

const returningColumns = `id, name, slug, description, price_cents, stock, category_id, status,
          is_customizable, is_featured, images, attributes, rating::float8, reviews_count,
          created_at, updated_at`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger logrus.FieldLogger
}

func NewPostgres(pool *pgxpool.Pool, logger logrus.FieldLogger) Repository {
	return &postgresRepo{pool: pool, logger: logging.OrDiscard(logger)}
}

func (r *postgresRepo) List(ctx context.Context, f domain.ProductFilter) ([]domain.Product, error) {
	var (
		where []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	q := selectColumns
	if f.CategorySlug != "" {
		q += "JOIN categories c ON c.id = p.category_id\n"
		where = append(where, "c.slug = "+arg(f.CategorySlug))
	}
	if !f.IncludeHidden {
		where = append(where, "p.status = 'published'")
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		ph := arg("%" + s + "%")
		where = append(where, "(p.name ILIKE "+ph+" OR p.description ILIKE "+ph+")")
	}
	if f.FeaturedOnly {
		where = append(where, "p.is_featured")
	}
	if f.Customizable != nil {
		where = append(where, "p.is_customizable = "+arg(*f.Customizable))
	}
	if len(where) > 0 {
		q += "WHERE " + strings.Join(where, " AND ") + "\n"
	}
	q += "ORDER BY p.created_at DESC, p.id DESC\n"

	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	q += "LIMIT " + arg(limit) + " OFFSET " + arg(max(f.Offset, 0))

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		r.logger.WithError(err).Error("product repo: list")
		return nil, err
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		r.logger.WithError(err).Error("product repo: list rows")
		return nil, err
	}
	r.logger.WithField("count", len(result)).Debug("product repo: list")
	return result, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, selectColumns+"WHERE p.id = $1", id))
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		r.logger.WithError(err).WithField("product_id", id).Error("product repo: get")
	}
	return p, err
}

func (r *postgresRepo) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, selectColumns+"WHERE p.slug = $1", slug))
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		r.logger.WithError(err).WithField("slug", slug).Error("product repo: get by slug")
	}
	return p, err
}

func (r *postgresRepo) Create(ctx context.Context, p domain.Product) (*domain.Product, error) {
	const q = `
INSERT INTO products (name, slug, description, price_cents, stock, category_id, status,
                      is_customizable, is_featured, images, attributes)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING ` + returningColumns
	out, err := scanProduct(r.pool.QueryRow(ctx, q, productArgs(p)...))
	return out, r.mapWriteErr(err, p.Slug)
}

func (r *postgresRepo) Update(ctx context.Context, p domain.Product) (*domain.Product, error) {
	const q = `
UPDATE products
SET name = $1, slug = $2, description = $3, price_cents = $4, stock = $5, category_id = $6,
    status = $7, is_customizable = $8, is_featured = $9, images = $10, attributes = $11,
    updated_at = now()
WHERE id = $12
RETURNING ` + returningColumns
	out, err := scanProduct(r.pool.QueryRow(ctx, q, append(productArgs(p), p.ID)...))
	return out, r.mapWriteErr(err, p.Slug)
}

func (r *postgresRepo) Upsert(ctx context.Context, p domain.Product) (*domain.Product, error) {
	const q = `
INSERT INTO products (name, slug, description, price_cents, stock, category_id, status,
                      is_customizable, is_featured, images, attributes)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (slug) DO UPDATE SET
    name = EXCLUDED.name,
    description = EXCLUDED.description,
    price_cents = EXCLUDED.price_cents,
    stock = EXCLUDED.stock,
    category_id = COALESCE(EXCLUDED.category_id, products.category_id),
    status = EXCLUDED.status,
    is_customizable = EXCLUDED.is_customizable,
    is_featured = EXCLUDED.is_featured,
    images = EXCLUDED.images,
    attributes = EXCLUDED.attributes,
    updated_at = now()
RETURNING ` + returningColumns
	out, err := scanProduct(r.pool.QueryRow(ctx, q, productArgs(p)...))
	if err != nil {
		r.logger.WithError(err).WithField("slug", p.Slug).Error("product repo: upsert")
		return nil, err
	}
	r.logger.WithFields(logrus.Fields{"slug": out.Slug, "product_id": out.ID}).Debug("product repo: upserted")
	return out, nil
}

// Related lists published products other than productID. Products in categoryID come
// first; the remaining slots go to featured, then newer products.
func (r *postgresRepo) Related(ctx context.Context, productID int64, categoryID *int64, limit int) ([]domain.Product, error) {
	const q = selectColumns + `
WHERE p.id <> $1 AND p.status = 'published'
ORDER BY COALESCE(p.category_id = $2::bigint, false) DESC, p.is_featured DESC,
         p.created_at DESC, p.id DESC
LIMIT $3`
	rows, err := r.pool.Query(ctx, q, productID, categoryID, limit)
	if err != nil {
		r.logger.WithError(err).WithField("product_id", productID).Error("product repo: related")
		return nil, err
	}
	defer rows.Close()

	result := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	return result, rows.Err()
}

func (r *postgresRepo) SetStatus(ctx context.Context, id int64, status domain.ProductStatus) (*domain.Product, error) {
	const q = `
UPDATE products SET status = $1, updated_at = now()
WHERE id = $2
RETURNING ` + returningColumns
	out, err := scanProduct(r.pool.QueryRow(ctx, q, string(status), id))
	if err != nil {
		return nil, r.mapWriteErr(err, "")
	}
	r.logger.WithFields(logrus.Fields{"product_id": id, "status": status}).Info("product repo: status changed")
	return out, nil
}

// Delete removes a product. A product referenced by an order reports ErrInvalidState.
func (r *postgresRepo) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		if _, ok := db.IsForeignKeyViolation(err); ok {
			return domain.ErrInvalidState
		}
		r.logger.WithError(err).WithField("product_id", id).Error("product repo: delete")
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) mapWriteErr(err error, slug string) error {
	if err == nil {
		return nil
	}
	if _, ok := db.IsUniqueViolation(err); ok {
		return domain.ErrAlreadyExists
	}
	if _, ok := db.IsForeignKeyViolation(err); ok {
		return domain.ErrNotFound
	}
	if !errors.Is(err, domain.ErrNotFound) {
		r.logger.WithError(err).WithField("slug", slug).Error("product repo: write")
	}
	return err
}

func productArgs(p domain.Product) []interface{} {
	images := p.Images
	if images == nil {
		images = []string{}
	}
	attrs := p.Attributes
	if attrs == nil {
		attrs = map[string]interface{}{}
	}
	status := p.Status
	if status == "" {
		status = domain.ProductPublished
	}
	return []interface{}{
		p.Name, p.Slug, p.Description, int64(p.Price), p.Stock, p.CategoryID, string(status),
		p.IsCustomizable, p.IsFeatured, images, attrs,
	}
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var (
		p      domain.Product
		price  int64
		status string
	)
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Slug,
		&p.Description,
		&price,
		&p.Stock,
		&p.CategoryID,
		&status,
		&p.IsCustomizable,
		&p.IsFeatured,
		&p.Images,
		&p.Attributes,
		&p.Rating,
		&p.ReviewsCount,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	p.Price = domain.Money(price)
	p.Status = domain.ProductStatus(status)
	return &p, nil
}
