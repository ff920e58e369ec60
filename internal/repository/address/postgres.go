package address

import (
	"context"
	"errors"

	"storefront/internal/db"
	"storefront/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const columns = `id, user_id, full_name, line1, line2, city, state, postal_code, country, phone, is_default, created_at, updated_at`

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

// Create inserts the address. A default address replaces the user's previous default.
func (r *postgresRepo) Create(ctx context.Context, a domain.Address) (*domain.Address, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if a.IsDefault {
		if err := clearDefault(ctx, tx, a.UserID); err != nil {
			return nil, err
		}
	}
	q := `
INSERT INTO addresses (user_id, full_name, line1, line2, city, state, postal_code, country, phone, is_default)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING ` + columns
	out, err := scanAddress(tx.QueryRow(ctx, q,
		a.UserID, a.FullName, a.Line1, a.Line2, a.City, a.State, a.PostalCode, a.Country, a.Phone, a.IsDefault,
	))
	if err != nil {
		if _, ok := db.IsForeignKeyViolation(err); ok {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id int64) (*domain.Address, error) {
	return scanAddress(r.pool.QueryRow(ctx, `SELECT `+columns+` FROM addresses WHERE id = $1`, id))
}

func (r *postgresRepo) ListByUser(ctx context.Context, userID int64) ([]domain.Address, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+columns+` FROM addresses WHERE user_id = $1 ORDER BY is_default DESC, id ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Address
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// Update rewrites the mutable fields of an address owned by a.UserID.
func (r *postgresRepo) Update(ctx context.Context, a domain.Address) (*domain.Address, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if a.IsDefault {
		if err := clearDefault(ctx, tx, a.UserID); err != nil {
			return nil, err
		}
	}
	q := `
UPDATE addresses
SET full_name = $1, line1 = $2, line2 = $3, city = $4, state = $5, postal_code = $6,
    country = $7, phone = $8, is_default = $9, updated_at = now()
WHERE id = $10 AND user_id = $11
RETURNING ` + columns
	out, err := scanAddress(tx.QueryRow(ctx, q,
		a.FullName, a.Line1, a.Line2, a.City, a.State, a.PostalCode, a.Country, a.Phone, a.IsDefault, a.ID, a.UserID,
	))
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *postgresRepo) Delete(ctx context.Context, userID, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM addresses WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		if _, ok := db.IsForeignKeyViolation(err); ok {
			// Referenced by an order.
			return domain.ErrInvalidState
		}
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) SetDefault(ctx context.Context, userID, id int64) (*domain.Address, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := clearDefault(ctx, tx, userID); err != nil {
		return nil, err
	}
	q := `
UPDATE addresses SET is_default = TRUE, updated_at = now()
WHERE id = $1 AND user_id = $2
RETURNING ` + columns
	out, err := scanAddress(tx.QueryRow(ctx, q, id, userID))
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return out, nil
}

func clearDefault(ctx context.Context, tx pgx.Tx, userID int64) error {
	_, err := tx.Exec(ctx, `UPDATE addresses SET is_default = FALSE, updated_at = now() WHERE user_id = $1 AND is_default`, userID)
	return err
}

func scanAddress(row pgx.Row) (*domain.Address, error) {
	var a domain.Address
	err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.FullName,
		&a.Line1,
		&a.Line2,
		&a.City,
		&a.State,
		&a.PostalCode,
		&a.Country,
		&a.Phone,
		&a.IsDefault,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}
