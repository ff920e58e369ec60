package customization

import (
	"context"
	"errors"

	"storefront/internal/db"
	"storefront/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const columns = `id, user_id, product_id, rendered_image_url, selected_attributes, canvas_state, created_at, updated_at`

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) Create(ctx context.Context, c domain.Customization) (*domain.Customization, error) {
	attrs := c.SelectedAttributes
	if attrs == nil {
		attrs = map[string]interface{}{}
	}
	q := `
INSERT INTO customizations (user_id, product_id, rendered_image_url, selected_attributes, canvas_state)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + columns
	out, err := scan(r.pool.QueryRow(ctx, q, c.UserID, c.ProductID, c.RenderedImageURL, attrs, c.CanvasState))
	if err != nil {
		if _, ok := db.IsForeignKeyViolation(err); ok {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return out, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id int64) (*domain.Customization, error) {
	return scan(r.pool.QueryRow(ctx, `SELECT `+columns+` FROM customizations WHERE id = $1`, id))
}

func (r *postgresRepo) ListByUser(ctx context.Context, userID int64) ([]domain.Customization, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+columns+` FROM customizations WHERE user_id = $1 ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Customization
	for rows.Next() {
		c, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func scan(row pgx.Row) (*domain.Customization, error) {
	var c domain.Customization
	err := row.Scan(
		&c.ID,
		&c.UserID,
		&c.ProductID,
		&c.RenderedImageURL,
		&c.SelectedAttributes,
		&c.CanvasState,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}
