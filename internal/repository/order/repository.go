package order

import (
	"context"
	"time"

	"storefront/internal/domain"
)

// CreateInput is a validated checkout ready to be written.
type CreateInput struct {
	UserID            int64
	ShippingAddressID int64
	BillingAddressID  int64
	ShippingOptionID  int64
	Subtotal          domain.Money
	ShippingCost      domain.Money
	Tax               domain.Money
	Total             domain.Money
	Items             []ItemInput
	// Now stamps created_at and updated_at. Zero means time.Now().
	Now time.Time
}

type ItemInput struct {
	ProductID       int64
	Quantity        int
	CustomizationID *int64
	Options         map[string]interface{}
}

// Transition is a compare-and-set on both status fields. It fails with
// domain.ErrInvalidState when the stored statuses no longer equal the From values.
type Transition struct {
	FromStatus  domain.OrderStatus
	ToStatus    domain.OrderStatus
	FromPayment domain.PaymentStatus
	ToPayment   domain.PaymentStatus
}

type Repository interface {
	CreateWithItems(ctx context.Context, in CreateInput) (*domain.Order, error)
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]domain.Order, error)
	Transition(ctx context.Context, id int64, t Transition) (*domain.Order, error)
}
