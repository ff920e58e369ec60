package address

import (
	"context"

	"storefront/internal/domain"
)

type Repository interface {
	Create(ctx context.Context, a domain.Address) (*domain.Address, error)
	GetByID(ctx context.Context, id int64) (*domain.Address, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Address, error)
	Update(ctx context.Context, a domain.Address) (*domain.Address, error)
	Delete(ctx context.Context, userID, id int64) error
	SetDefault(ctx context.Context, userID, id int64) (*domain.Address, error)
}
