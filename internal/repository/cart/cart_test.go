package cart

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/db/dbtest"
	"storefront/internal/domain"
)

func TestPostgres_GetOrCreateIsLazyAndStable(t *testing.T) {
	ctx := context.Background()
	pool := dbtest.Pool(t)
	f := dbtest.Seed(t, pool)
	repo := NewPostgres(pool)

	first, err := repo.GetOrCreate(ctx, f.UserID)
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if len(first.Lines) != 0 {
		t.Fatalf("expected empty cart, got %+v", first.Lines)
	}
	second, err := repo.GetOrCreate(ctx, f.UserID)
	if err != nil {
		t.Fatalf("GetOrCreate again: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected one cart per user, got %d and %d", first.ID, second.ID)
	}
}

func TestPostgres_AddItemMergesSameIdentity(t *testing.T) {
	ctx := context.Background()
	pool := dbtest.Pool(t)
	f := dbtest.Seed(t, pool)
	pid := dbtest.Product(t, pool, "p5", 1000, 10, false)
	repo := NewPostgres(pool)

	cart, err := repo.GetOrCreate(ctx, f.UserID)
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if _, err := repo.AddItem(ctx, cart.ID, pid, 2, nil); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	line, err := repo.AddItem(ctx, cart.ID, pid, 3, nil)
	if err != nil {
		t.Fatalf("AddItem again: %v", err)
	}
	if line.Quantity != 5 {
		t.Fatalf("expected merged quantity 5, got %d", line.Quantity)
	}

	reloaded, err := repo.GetOrCreate(ctx, f.UserID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(reloaded.Lines) != 1 || reloaded.Lines[0].Quantity != 5 || reloaded.Lines[0].UnitPrice != 1000 {
		t.Fatalf("expected a single line of 5, got %+v", reloaded.Lines)
	}
}

func TestPostgres_AddItemKeepsCustomizationsDistinct(t *testing.T) {
	ctx := context.Background()
	pool := dbtest.Pool(t)
	f := dbtest.Seed(t, pool)
	pid := dbtest.Product(t, pool, "p5", 1000, 10, true)
	custA := dbtest.Customization(t, pool, f.UserID, pid)
	custB := dbtest.Customization(t, pool, f.UserID, pid)
	repo := NewPostgres(pool)

	cart, err := repo.GetOrCreate(ctx, f.UserID)
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	for _, c := range []int64{custA, custB} {
		c := c
		if _, err := repo.AddItem(ctx, cart.ID, pid, 1, &c); err != nil {
			t.Fatalf("AddItem customization %d: %v", c, err)
		}
	}
	if _, err := repo.AddItem(ctx, cart.ID, pid, 1, nil); err != nil {
		t.Fatalf("AddItem plain: %v", err)
	}

	reloaded, err := repo.GetOrCreate(ctx, f.UserID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(reloaded.Lines) != 3 {
		t.Fatalf("expected 3 distinct lines, got %d", len(reloaded.Lines))
	}
	if reloaded.Lines[0].CustomizationURL == "" {
		t.Fatalf("expected customization image on line, got %+v", reloaded.Lines[0])
	}
}

func TestPostgres_AddItemMissingProduct(t *testing.T) {
	ctx := context.Background()
	pool := dbtest.Pool(t)
	f := dbtest.Seed(t, pool)
	repo := NewPostgres(pool)

	cart, err := repo.GetOrCreate(ctx, f.UserID)
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if _, err := repo.AddItem(ctx, cart.ID, 4242, 1, nil); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound from foreign key, got %v", err)
	}
}

func TestPostgres_UpdateRemoveClear(t *testing.T) {
	ctx := context.Background()
	pool := dbtest.Pool(t)
	f := dbtest.Seed(t, pool)
	p1 := dbtest.Product(t, pool, "p1", 999, 10, false)
	p2 := dbtest.Product(t, pool, "p2", 2500, 10, false)
	repo := NewPostgres(pool)

	cart, err := repo.GetOrCreate(ctx, f.UserID)
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	l1, err := repo.AddItem(ctx, cart.ID, p1, 1, nil)
	if err != nil {
		t.Fatalf("AddItem p1: %v", err)
	}
	l2, err := repo.AddItem(ctx, cart.ID, p2, 1, nil)
	if err != nil {
		t.Fatalf("AddItem p2: %v", err)
	}

	updated, err := repo.UpdateQuantity(ctx, cart.ID, l1.ID, 7)
	if err != nil || updated.Quantity != 7 {
		t.Fatalf("UpdateQuantity = %+v, %v", updated, err)
	}
	if _, err := repo.UpdateQuantity(ctx, cart.ID, 9999, 1); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing line, got %v", err)
	}

	removed, err := repo.RemoveItem(ctx, cart.ID, l2.ID)
	if err != nil || !removed {
		t.Fatalf("RemoveItem = %v, %v", removed, err)
	}
	removed, err = repo.RemoveItem(ctx, cart.ID, l2.ID)
	if err != nil || removed {
		t.Fatalf("second RemoveItem = %v, %v", removed, err)
	}

	n, err := repo.Clear(ctx, cart.ID)
	if err != nil || n != 1 {
		t.Fatalf("Clear = %d, %v", n, err)
	}
	for i := 0; i < 2; i++ {
		n, err = repo.Clear(ctx, cart.ID)
		if err != nil || n != 0 {
			t.Fatalf("Clear on empty cart = %d, %v", n, err)
		}
	}
}
