package review

import (
	"context"
	"errors"

	"storefront/internal/db"
	"storefront/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const columns = `id, user_id, product_id, rating, comment, reviewer_name, created_at`

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) Create(ctx context.Context, rv domain.Review) (*domain.Review, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	q := `
INSERT INTO reviews (user_id, product_id, rating, comment, reviewer_name)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + columns
	out, err := scanReview(tx.QueryRow(ctx, q, rv.UserID, rv.ProductID, rv.Rating, rv.Comment, rv.ReviewerName))
	if err != nil {
		if _, ok := db.IsUniqueViolation(err); ok {
			return nil, domain.ErrAlreadyExists
		}
		if _, ok := db.IsForeignKeyViolation(err); ok {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	const refresh = `
UPDATE products
SET rating = COALESCE((SELECT ROUND(AVG(rating), 1) FROM reviews WHERE product_id = $1), 0),
    reviews_count = (SELECT COUNT(*) FROM reviews WHERE product_id = $1)
WHERE id = $1
`
	if _, err := tx.Exec(ctx, refresh, rv.ProductID); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return out, nil
}

// ListByProduct returns the product's reviews, newest first.
func (r *postgresRepo) ListByProduct(ctx context.Context, productID int64, limit, offset int) ([]domain.Review, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+columns+` FROM reviews WHERE product_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`,
		productID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Review{}
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rv)
	}
	return out, rows.Err()
}

func scanReview(row pgx.Row) (*domain.Review, error) {
	var rv domain.Review
	err := row.Scan(&rv.ID, &rv.UserID, &rv.ProductID, &rv.Rating, &rv.Comment, &rv.ReviewerName, &rv.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &rv, nil
}
