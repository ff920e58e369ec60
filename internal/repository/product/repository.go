package product

import (
	"context"

	"storefront/internal/domain"
)

type Repository interface {
	List(ctx context.Context, f domain.ProductFilter) ([]domain.Product, error)
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Product, error)
	Create(ctx context.Context, p domain.Product) (*domain.Product, error)
	Update(ctx context.Context, p domain.Product) (*domain.Product, error)
	Upsert(ctx context.Context, p domain.Product) (*domain.Product, error)
	Related(ctx context.Context, productID int64, categoryID *int64, limit int) ([]domain.Product, error)
	SetStatus(ctx context.Context, id int64, status domain.ProductStatus) (*domain.Product, error)
	Delete(ctx context.Context, id int64) error
}
