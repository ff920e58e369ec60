package domain

import "time"

// OrderStatus is the fulfillment state of an order.
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:    {OrderProcessing, OrderCancelled},
	OrderProcessing: {OrderShipped, OrderCancelled},
	OrderShipped:    {OrderDelivered},
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether the fulfillment state machine allows s -> next.
// Nothing transitions into pending.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s OrderStatus) Cancellable() bool {
	return s.CanTransitionTo(OrderCancelled)
}

// PaymentStatus advances independently of OrderStatus.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentFailed:
		return true
	}
	return false
}

func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	return s == PaymentPending && (next == PaymentPaid || next == PaymentFailed)
}

type Order struct {
	ID                int64         `json:"id"`
	UserID            int64         `json:"user_id"`
	Status            OrderStatus   `json:"status"`
	PaymentStatus     PaymentStatus `json:"payment_status"`
	ShippingAddressID int64         `json:"shipping_address_id"`
	BillingAddressID  int64         `json:"billing_address_id"`
	ShippingOptionID  int64         `json:"shipping_id"`
	Subtotal          Money         `json:"subtotal"`
	ShippingCost      Money         `json:"shipping_cost"`
	Tax               Money         `json:"tax"`
	Total             Money         `json:"total_amount"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
	Items             []OrderItem   `json:"items"`
}

// OrderItem is immutable once written. UnitPrice is the product price at purchase time.
type OrderItem struct {
	ID              int64                  `json:"id"`
	OrderID         int64                  `json:"order_id"`
	ProductID       int64                  `json:"product_id"`
	CustomizationID *int64                 `json:"customization_id,omitempty"`
	Quantity        int                    `json:"quantity"`
	UnitPrice       Money                  `json:"unit_price"`
	Options         map[string]interface{} `json:"customizations,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
}

func (i OrderItem) LineTotal() Money {
	return i.UnitPrice.Times(i.Quantity)
}

// ItemsSubtotal sums the frozen line totals.
func (o Order) ItemsSubtotal() Money {
	var total Money
	for _, it := range o.Items {
		total += it.LineTotal()
	}
	return total
}
