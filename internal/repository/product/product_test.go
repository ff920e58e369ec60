package product

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/db/dbtest"
	"storefront/internal/domain"
)

func TestPostgres_ListAndGet(t *testing.T) {
	ctx := context.Background()
	pool := dbtest.Pool(t)

	catID := dbtest.InsertID(t, pool, `INSERT INTO categories (name, slug) VALUES ('Shirts', 'shirts') RETURNING id`)
	pid := dbtest.InsertID(t, pool, `
INSERT INTO products (name, slug, description, price_cents, stock, category_id, is_featured, images)
VALUES ('Tee', 'tee', 'cotton tee', 1999, 10, $1, TRUE, '["https://example.com/tee.jpg"]'::jsonb)
RETURNING id`, catID)
	dbtest.MustExec(t, pool, `INSERT INTO products (name, slug, price_cents, status) VALUES ('Hidden', 'hidden', 100, 'draft')`)

	repo := NewPostgres(pool, nil)

	list, err := repo.List(ctx, domain.ProductFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 || list[0].ID != pid {
		t.Fatalf("expected only published product, got %+v", list)
	}

	list, err = repo.List(ctx, domain.ProductFilter{CategorySlug: "shirts", Search: "COTTON", FeaturedOnly: true})
	if err != nil {
		t.Fatalf("List filtered: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 filtered product, got %d", len(list))
	}

	got, err := repo.GetByID(ctx, pid)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Price != 1999 || got.Stock != 10 || len(got.Images) != 1 || got.CategoryID == nil || *got.CategoryID != catID {
		t.Fatalf("unexpected product %+v", got)
	}

	bySlug, err := repo.GetBySlug(ctx, "tee")
	if err != nil {
		t.Fatalf("GetBySlug: %v", err)
	}
	if bySlug.ID != pid {
		t.Fatalf("slug lookup returned %d", bySlug.ID)
	}

	if _, err := repo.GetByID(ctx, 9999); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPostgres_CreateDuplicateSlug(t *testing.T) {
	ctx := context.Background()
	pool := dbtest.Pool(t)
	repo := NewPostgres(pool, nil)

	if _, err := repo.Create(ctx, domain.Product{Name: "Mug", Slug: "mug", Price: 1299}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	_, err := repo.Create(ctx, domain.Product{Name: "Mug 2", Slug: "mug", Price: 1299})
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestPostgres_Upsert(t *testing.T) {
	ctx := context.Background()
	pool := dbtest.Pool(t)
	repo := NewPostgres(pool, nil)

	p, err := repo.Upsert(ctx, domain.Product{Name: "Prod 1", Slug: "p1", Price: 100, Stock: 1})
	if err != nil {
		t.Fatalf("Upsert insert: %v", err)
	}
	if p.ID == 0 || p.Status != domain.ProductPublished {
		t.Fatalf("unexpected inserted product %+v", p)
	}

	updated, err := repo.Upsert(ctx, domain.Product{
		Name:        "Prod 1 updated",
		Slug:        "p1",
		Description: "new desc",
		Price:       200,
		Stock:       5,
		Images:      []string{"https://example.com/1.jpg"},
	})
	if err != nil {
		t.Fatalf("Upsert update: %v", err)
	}
	if updated.ID != p.ID {
		t.Fatalf("expected same ID after update")
	}
	if updated.Description != "new desc" || updated.Price != 200 || updated.Stock != 5 || len(updated.Images) != 1 {
		t.Fatalf("unexpected updated product %+v", updated)
	}
}

func TestPostgres_Related(t *testing.T) {
	ctx := context.Background()
	pool := dbtest.Pool(t)
	repo := NewPostgres(pool, nil)

	shirts := dbtest.InsertID(t, pool, `INSERT INTO categories (name, slug) VALUES ('Shirts', 'shirts') RETURNING id`)
	mugs := dbtest.InsertID(t, pool, `INSERT INTO categories (name, slug) VALUES ('Mugs', 'mugs') RETURNING id`)
	insert := func(slug string, categoryID int64, featured bool, status string) int64 {
		return dbtest.InsertID(t, pool, `
INSERT INTO products (name, slug, price_cents, category_id, is_featured, status)
VALUES ($1, $1, 100, $2, $3, $4) RETURNING id`, slug, categoryID, featured, status)
	}
	base := insert("tee", shirts, false, "published")
	sibling := insert("polo", shirts, false, "published")
	insert("draft-shirt", shirts, false, "draft")
	featured := insert("mug", mugs, true, "published")
	insert("cup", mugs, false, "published")

	got, err := repo.Related(ctx, base, &shirts, 2)
	if err != nil {
		t.Fatalf("Related: %v", err)
	}
	if len(got) != 2 || got[0].ID != sibling || got[1].ID != featured {
		t.Fatalf("expected sibling then featured, got %+v", got)
	}

	got, err = repo.Related(ctx, base, nil, 10)
	if err != nil {
		t.Fatalf("Related without category: %v", err)
	}
	if len(got) != 3 || got[0].ID != featured {
		t.Fatalf("expected featured first among 3 published, got %+v", got)
	}
	for _, p := range got {
		if p.ID == base || p.Status != domain.ProductPublished {
			t.Fatalf("unexpected related product %+v", p)
		}
	}
}

func TestPostgres_SetStatusAndDelete(t *testing.T) {
	ctx := context.Background()
	pool := dbtest.Pool(t)
	repo := NewPostgres(pool, nil)

	p, err := repo.Create(ctx, domain.Product{Name: "Cap", Slug: "cap", Price: 900, Status: domain.ProductDraft})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.Rating != 0 || p.ReviewsCount != 0 {
		t.Fatalf("expected empty rating, got %+v", p)
	}

	published, err := repo.SetStatus(ctx, p.ID, domain.ProductPublished)
	if err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if published.Status != domain.ProductPublished {
		t.Fatalf("expected published, got %s", published.Status)
	}
	if _, err := repo.SetStatus(ctx, 9999, domain.ProductArchived); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := repo.Delete(ctx, p.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.GetByID(ctx, p.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected deleted product to be gone, got %v", err)
	}
	if err := repo.Delete(ctx, p.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestPostgres_DeleteOrderedProduct(t *testing.T) {
	ctx := context.Background()
	pool := dbtest.Pool(t)
	repo := NewPostgres(pool, nil)

	f := dbtest.Seed(t, pool)
	pid := dbtest.Product(t, pool, "ordered", 1000, 5, false)
	orderID := dbtest.InsertID(t, pool, `
INSERT INTO orders (user_id, shipping_address_id, billing_address_id, shipping_option_id,
                    subtotal_cents, shipping_cost_cents, tax_cents, total_cents, created_at, updated_at)
VALUES ($1, $2, $2, $3, 1000, 500, 0, 1500, now(), now()) RETURNING id`, f.UserID, f.AddressID, f.ShippingID)
	dbtest.MustExec(t, pool, `
INSERT INTO order_items (order_id, product_id, quantity, unit_price_cents) VALUES ($1, $2, 1, 1000)`, orderID, pid)

	if err := repo.Delete(ctx, pid); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}
