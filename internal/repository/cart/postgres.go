package cart

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/db"
	"storefront/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const lineColumns = `id, cart_id, product_id, customization_id, quantity, created_at, updated_at`

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) GetOrCreate(ctx context.Context, userID int64) (*domain.Cart, error) {
	if _, err := r.pool.Exec(ctx, `INSERT INTO carts (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`, userID); err != nil {
		if _, ok := db.IsForeignKeyViolation(err); ok {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return r.fetchCart(ctx, userID)
}

// AddItem inserts the line or, when one with the same (product, customization) identity
// exists, increments its quantity in the same statement.
func (r *postgresRepo) AddItem(ctx context.Context, cartID, productID int64, quantity int, customizationID *int64) (*domain.CartLine, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	q := `
INSERT INTO cart_items (cart_id, product_id, customization_id, quantity)
VALUES ($1, $2, $3, $4)
ON CONFLICT (cart_id, product_id, (COALESCE(customization_id, 0)))
DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = now()
RETURNING ` + lineColumns
	line, err := scanLine(tx.QueryRow(ctx, q, cartID, productID, customizationID, quantity))
	if err != nil {
		return nil, mapWriteErr(err)
	}
	if err := touchCart(ctx, tx, cartID); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return line, nil
}

func (r *postgresRepo) UpdateQuantity(ctx context.Context, cartID, itemID int64, quantity int) (*domain.CartLine, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	q := `
UPDATE cart_items
SET quantity = $1, updated_at = now()
WHERE id = $2 AND cart_id = $3
RETURNING ` + lineColumns
	line, err := scanLine(tx.QueryRow(ctx, q, quantity, itemID, cartID))
	if err != nil {
		return nil, mapWriteErr(err)
	}
	if err := touchCart(ctx, tx, cartID); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return line, nil
}

// RemoveItem reports false when the line was already gone.
func (r *postgresRepo) RemoveItem(ctx context.Context, cartID, itemID int64) (bool, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	cmd, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE id = $1 AND cart_id = $2`, itemID, cartID)
	if err != nil {
		return false, err
	}
	if cmd.RowsAffected() == 0 {
		return false, nil
	}
	if err := touchCart(ctx, tx, cartID); err != nil {
		return false, err
	}
	return true, tx.Commit(ctx)
}

func (r *postgresRepo) Clear(ctx context.Context, cartID int64) (int64, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	cmd, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID)
	if err != nil {
		return 0, err
	}
	if cmd.RowsAffected() > 0 {
		if err := touchCart(ctx, tx, cartID); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *postgresRepo) fetchCart(ctx context.Context, userID int64) (*domain.Cart, error) {
	var cart domain.Cart
	err := r.pool.QueryRow(ctx, `SELECT id, user_id, created_at, updated_at FROM carts WHERE user_id = $1`, userID).
		Scan(&cart.ID, &cart.UserID, &cart.CreatedAt, &cart.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	const linesQuery = `
SELECT ci.id, ci.cart_id, ci.product_id, ci.customization_id, ci.quantity, ci.created_at, ci.updated_at,
       p.name, p.slug, p.price_cents, COALESCE(p.images->>0, ''), COALESCE(c.rendered_image_url, '')
FROM cart_items ci
JOIN products p ON p.id = ci.product_id
LEFT JOIN customizations c ON c.id = ci.customization_id
WHERE ci.cart_id = $1
ORDER BY ci.created_at ASC, ci.id ASC
`
	rows, err := r.pool.Query(ctx, linesQuery, cart.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cart.Lines = []domain.CartLine{}
	for rows.Next() {
		var (
			line  domain.CartLine
			price int64
		)
		if err := rows.Scan(
			&line.ID,
			&line.CartID,
			&line.ProductID,
			&line.CustomizationID,
			&line.Quantity,
			&line.CreatedAt,
			&line.UpdatedAt,
			&line.ProductName,
			&line.ProductSlug,
			&price,
			&line.ImageURL,
			&line.CustomizationURL,
		); err != nil {
			return nil, err
		}
		line.UnitPrice = domain.Money(price)
		cart.Lines = append(cart.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &cart, nil
}

func touchCart(ctx context.Context, tx pgx.Tx, cartID int64) error {
	_, err := tx.Exec(ctx, `UPDATE carts SET updated_at = now() WHERE id = $1`, cartID)
	return err
}

func scanLine(row pgx.Row) (*domain.CartLine, error) {
	var l domain.CartLine
	if err := row.Scan(&l.ID, &l.CartID, &l.ProductID, &l.CustomizationID, &l.Quantity, &l.CreatedAt, &l.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &l, nil
}

func mapWriteErr(err error) error {
	if name, ok := db.IsForeignKeyViolation(err); ok {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, name)
	}
	if name, ok := db.IsUniqueViolation(err); ok {
		return fmt.Errorf("%w: %s", domain.ErrAlreadyExists, name)
	}
	if _, ok := db.IsCheckViolation(err); ok {
		return domain.Invalid("quantity", "must be positive")
	}
	return err
}
