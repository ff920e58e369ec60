package shipping

import (
	"context"

	"storefront/internal/domain"
)

type Repository interface {
	GetByID(ctx context.Context, id int64) (*domain.ShippingOption, error)
	List(ctx context.Context, activeOnly bool) ([]domain.ShippingOption, error)
	Upsert(ctx context.Context, o domain.ShippingOption) (*domain.ShippingOption, error)
	Create(ctx context.Context, o domain.ShippingOption) (*domain.ShippingOption, error)
	Update(ctx context.Context, o domain.ShippingOption) (*domain.ShippingOption, error)
	// Delete removes an option. One already used by an order reports ErrInvalidState.
	Delete(ctx context.Context, id int64) error
}
