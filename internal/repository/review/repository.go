package review

import (
	"context"

	"storefront/internal/domain"
)

type Repository interface {
	// Create stores the review and refreshes the product's rating and review count.
	Create(ctx context.Context, rv domain.Review) (*domain.Review, error)
	ListByProduct(ctx context.Context, productID int64, limit, offset int) ([]domain.Review, error)
}
