// Package dbtest provides a migrated Postgres pool for repository tests.
//
// TEST_DB_DSN selects an existing database. Without it a throwaway container is started
// through testcontainers; tests are skipped when neither is available or under -short.
package dbtest

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"storefront/internal/migrate"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const tables = `reviews, order_items, orders, cart_items, carts, customizations, shipping_options, addresses, products, categories, tokens, users`

var (
	containerOnce sync.Once
	containerDSN  string
	containerErr  error
)

// Pool returns a pool on a freshly truncated schema. The pool is closed on test cleanup.
func Pool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping database test in -short mode")
	}
	ctx := context.Background()

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		containerOnce.Do(func() { containerDSN, containerErr = startContainer(ctx) })
		if containerErr != nil {
			t.Skipf("postgres unavailable: %v", containerErr)
		}
		dsn = containerDSN
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Skipf("connect db: %v", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		t.Skipf("ping db: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	if _, err := pool.Exec(ctx, `TRUNCATE `+tables+` RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
	return pool
}

// The container lives for the rest of the test binary; testcontainers' reaper removes it.
func startContainer(ctx context.Context) (dsn string, err error) {
	defer func() {
		// testcontainers panics when no Docker host can be found.
		if r := recover(); r != nil {
			err = errNoDocker{r}
		}
	}()

	c, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("commerce_test"),
		postgres.WithUsername("commerce"),
		postgres.WithPassword("commerce"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return "", err
	}
	return c.ConnectionString(ctx, "sslmode=disable")
}

type errNoDocker struct{ v interface{} }

func (e errNoDocker) Error() string { return "docker not available" }

// MustExec runs a setup statement and fails the test on error.
func MustExec(t *testing.T, pool *pgxpool.Pool, q string, args ...interface{}) {
	t.Helper()
	if _, err := pool.Exec(context.Background(), q, args...); err != nil {
		t.Fatalf("exec %q: %v", q, err)
	}
}

// InsertID runs an INSERT ... RETURNING id and returns the id.
func InsertID(t *testing.T, pool *pgxpool.Pool, q string, args ...interface{}) int64 {
	t.Helper()
	var id int64
	if err := pool.QueryRow(context.Background(), q, args...).Scan(&id); err != nil {
		t.Fatalf("insert %q: %v", q, err)
	}
	return id
}

// Fixtures holds the ids created by Seed.
type Fixtures struct {
	UserID     int64
	OtherUser  int64
	AddressID  int64
	ShippingID int64
}

// Seed creates two users, an address for the first and one active shipping option.
func Seed(t *testing.T, pool *pgxpool.Pool) Fixtures {
	t.Helper()
	var f Fixtures
	f.UserID = InsertID(t, pool, `INSERT INTO users (email, password_hash) VALUES ('u@example.com', 'x') RETURNING id`)
	f.OtherUser = InsertID(t, pool, `INSERT INTO users (email, password_hash) VALUES ('o@example.com', 'x') RETURNING id`)
	f.AddressID = InsertID(t, pool, `
INSERT INTO addresses (user_id, full_name, line1, city, postal_code, country)
VALUES ($1, 'U Ser', '1 Main St', 'Springfield', '12345', 'US') RETURNING id`, f.UserID)
	f.ShippingID = InsertID(t, pool, `
INSERT INTO shipping_options (name, price_cents, estimated_days) VALUES ('Standard', 500, '3-5 days') RETURNING id`)
	return f
}

// Product inserts a published product and returns its id.
func Product(t *testing.T, pool *pgxpool.Pool, slug string, priceCents int64, stock int, customizable bool) int64 {
	t.Helper()
	return InsertID(t, pool, `
INSERT INTO products (name, slug, price_cents, stock, is_customizable)
VALUES ($1, $1, $2, $3, $4) RETURNING id`, slug, priceCents, stock, customizable)
}

// Customization inserts a saved design and returns its id.
func Customization(t *testing.T, pool *pgxpool.Pool, userID, productID int64) int64 {
	t.Helper()
	return InsertID(t, pool, `
INSERT INTO customizations (user_id, product_id, rendered_image_url)
VALUES ($1, $2, 'http://files/x.png') RETURNING id`, userID, productID)
}
