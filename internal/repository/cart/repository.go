package cart

import (
	"context"

	"storefront/internal/domain"
)

// Repository owns carts and their lines. Callers check product and customization
// preconditions; the repository only enforces line identity.
type Repository interface {
	GetOrCreate(ctx context.Context, userID int64) (*domain.Cart, error)
	AddItem(ctx context.Context, cartID, productID int64, quantity int, customizationID *int64) (*domain.CartLine, error)
	UpdateQuantity(ctx context.Context, cartID, itemID int64, quantity int) (*domain.CartLine, error)
	RemoveItem(ctx context.Context, cartID, itemID int64) (bool, error)
	Clear(ctx context.Context, cartID int64) (int64, error)
}
