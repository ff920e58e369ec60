package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/db"
	"storefront/internal/domain"
	"storefront/internal/logging"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

const headerColumns = `id, user_id, status, payment_status, shipping_address_id, billing_address_id, shipping_option_id,
       subtotal_cents, shipping_cost_cents, tax_cents, total_cents, created_at, updated_at`

const itemColumns = `id, order_id, product_id, customization_id, quantity, unit_price_cents, options, created_at`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger logrus.FieldLogger
}

func NewPostgres(pool *pgxpool.Pool, logger logrus.FieldLogger) Repository {
	return &postgresRepo{pool: pool, logger: logging.OrDiscard(logger)}
}

// CreateWithItems writes the header and every item in one transaction. Each item takes
// the product's current price and decrements its stock. Any failure rolls everything back.
func (r *postgresRepo) CreateWithItems(ctx context.Context, in CreateInput) (*domain.Order, error) {
	if len(in.Items) == 0 {
		return nil, domain.Invalid("items", "at least one item required")
	}
	// Once started, the checkout commits or rolls back on its own terms.
	ctx = context.WithoutCancel(ctx)

	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	q := `
INSERT INTO orders (user_id, status, payment_status, shipping_address_id, billing_address_id, shipping_option_id,
                    subtotal_cents, shipping_cost_cents, tax_cents, total_cents, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
RETURNING ` + headerColumns
	order, err := scanHeader(tx.QueryRow(ctx, q,
		in.UserID,
		string(domain.OrderPending),
		string(domain.PaymentPending),
		in.ShippingAddressID,
		in.BillingAddressID,
		in.ShippingOptionID,
		int64(in.Subtotal),
		int64(in.ShippingCost),
		int64(in.Tax),
		int64(in.Total),
		now,
	))
	if err != nil {
		if name, ok := db.IsForeignKeyViolation(err); ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, name)
		}
		return nil, err
	}

	order.Items = make([]domain.OrderItem, 0, len(in.Items))
	for _, it := range in.Items {
		price, err := reserveStock(ctx, tx, it.ProductID, it.Quantity)
		if err != nil {
			return nil, err
		}
		item, err := insertItem(ctx, tx, order.ID, it, price, now)
		if err != nil {
			return nil, err
		}
		order.Items = append(order.Items, *item)
	}

	if got := order.ItemsSubtotal(); got != in.Subtotal {
		return nil, fmt.Errorf("%w: subtotal %s, items total %s", domain.ErrPriceMismatch, in.Subtotal, got)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	r.logger.WithFields(logrus.Fields{
		"order_id": order.ID,
		"user_id":  order.UserID,
		"items":    len(order.Items),
		"total":    order.Total.String(),
	}).Info("order repo: created")
	return order, nil
}

// reserveStock decrements stock and returns the product's current price.
func reserveStock(ctx context.Context, tx pgx.Tx, productID int64, qty int) (domain.Money, error) {
	const q = `
UPDATE products
SET stock = stock - $2, updated_at = now()
WHERE id = $1 AND status = 'published' AND stock >= $2
RETURNING price_cents
`
	var price int64
	err := tx.QueryRow(ctx, q, productID, qty).Scan(&price)
	if err == nil {
		return domain.Money(price), nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, err
	}

	var (
		stock  int
		status string
	)
	err = tx.QueryRow(ctx, `SELECT stock, status FROM products WHERE id = $1`, productID).Scan(&stock, &status)
	if errors.Is(err, pgx.ErrNoRows) || (err == nil && status != string(domain.ProductPublished)) {
		return 0, fmt.Errorf("%w: product %d", domain.ErrNotFound, productID)
	}
	if err != nil {
		return 0, err
	}
	return 0, fmt.Errorf("%w: product %d has %d, requested %d", domain.ErrInsufficientStock, productID, stock, qty)
}

func insertItem(ctx context.Context, tx pgx.Tx, orderID int64, it ItemInput, price domain.Money, now time.Time) (*domain.OrderItem, error) {
	opts := it.Options
	if opts == nil {
		opts = map[string]interface{}{}
	}
	q := `
INSERT INTO order_items (order_id, product_id, customization_id, quantity, unit_price_cents, options, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + itemColumns
	item, err := scanItem(tx.QueryRow(ctx, q, orderID, it.ProductID, it.CustomizationID, it.Quantity, int64(price), opts, now))
	if err != nil {
		if name, ok := db.IsForeignKeyViolation(err); ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, name)
		}
		if name, ok := db.IsUniqueViolation(err); ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrAlreadyExists, name)
		}
		if _, ok := db.IsCheckViolation(err); ok {
			return nil, domain.Invalid("quantity", "must be positive")
		}
		return nil, err
	}
	return item, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	order, err := scanHeader(r.pool.QueryRow(ctx, `SELECT `+headerColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	items, err := r.loadItems(ctx, []int64{order.ID})
	if err != nil {
		return nil, err
	}
	order.Items = items[order.ID]
	return order, nil
}

func (r *postgresRepo) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]domain.Order, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	q := `SELECT ` + headerColumns + `
FROM orders
WHERE user_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, q, userID, limit, max(offset, 0))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []domain.Order{}
	var ids []int64
	for rows.Next() {
		o, err := scanHeader(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return orders, nil
	}

	items, err := r.loadItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
	}
	return orders, nil
}

// Transition moving an order into cancelled also returns its quantities to stock.
func (r *postgresRepo) Transition(ctx context.Context, id int64, t Transition) (*domain.Order, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	q := `
UPDATE orders
SET status = $2, payment_status = $3, updated_at = now()
WHERE id = $1 AND status = $4 AND payment_status = $5
RETURNING ` + headerColumns
	order, err := scanHeader(tx.QueryRow(ctx, q, id,
		string(t.ToStatus), string(t.ToPayment), string(t.FromStatus), string(t.FromPayment),
	))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: order %d changed concurrently", domain.ErrInvalidState, id)
		}
		return nil, err
	}

	if t.ToStatus == domain.OrderCancelled && t.FromStatus != domain.OrderCancelled {
		const restock = `
UPDATE products p
SET stock = p.stock + oi.qty, updated_at = now()
FROM (
    SELECT product_id, SUM(quantity) AS qty
    FROM order_items
    WHERE order_id = $1
    GROUP BY product_id
) oi
WHERE p.id = oi.product_id
`
		if _, err := tx.Exec(ctx, restock, id); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	r.logger.WithFields(logrus.Fields{
		"order_id":       id,
		"status":         order.Status,
		"payment_status": order.PaymentStatus,
	}).Info("order repo: transitioned")

	items, err := r.loadItems(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	order.Items = items[id]
	return order, nil
}

func (r *postgresRepo) loadItems(ctx context.Context, orderIDs []int64) (map[int64][]domain.OrderItem, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+itemColumns+` FROM order_items WHERE order_id = ANY($1) ORDER BY id ASC`, orderIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64][]domain.OrderItem, len(orderIDs))
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out[it.OrderID] = append(out[it.OrderID], *it)
	}
	return out, rows.Err()
}

func scanHeader(row pgx.Row) (*domain.Order, error) {
	var (
		o                              domain.Order
		status, payment                string
		subtotal, shipping, tax, total int64
	)
	err := row.Scan(
		&o.ID,
		&o.UserID,
		&status,
		&payment,
		&o.ShippingAddressID,
		&o.BillingAddressID,
		&o.ShippingOptionID,
		&subtotal,
		&shipping,
		&tax,
		&total,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	o.Status = domain.OrderStatus(status)
	o.PaymentStatus = domain.PaymentStatus(payment)
	o.Subtotal = domain.Money(subtotal)
	o.ShippingCost = domain.Money(shipping)
	o.Tax = domain.Money(tax)
	o.Total = domain.Money(total)
	o.Items = []domain.OrderItem{}
	return &o, nil
}

func scanItem(row pgx.Row) (*domain.OrderItem, error) {
	var (
		it    domain.OrderItem
		price int64
	)
	if err := row.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.CustomizationID, &it.Quantity, &price, &it.Options, &it.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	it.UnitPrice = domain.Money(price)
	return &it, nil
}
