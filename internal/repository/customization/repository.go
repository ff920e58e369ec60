package customization

import (
	"context"

	"storefront/internal/domain"
)

type Repository interface {
	Create(ctx context.Context, c domain.Customization) (*domain.Customization, error)
	GetByID(ctx context.Context, id int64) (*domain.Customization, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Customization, error)
}
