package order

import (
	"context"
	"fmt"

	"storefront/internal/domain"
	"storefront/internal/logging"
	orderrepo "storefront/internal/repository/order"

	"github.com/sirupsen/logrus"
)

// Service runs checkout and the order lifecycle.
type Service struct {
	orders            orderRepo
	carts             cartStore
	addresses         addressReader
	shipping          shippingReader
	customizations    customizationReader
	defaultShippingID int64
	logger            logrus.FieldLogger
}

type orderRepo interface {
	CreateWithItems(ctx context.Context, in orderrepo.CreateInput) (*domain.Order, error)
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]domain.Order, error)
	Transition(ctx context.Context, id int64, t orderrepo.Transition) (*domain.Order, error)
}

type cartStore interface {
	GetOrCreate(ctx context.Context, userID int64) (*domain.Cart, error)
	Clear(ctx context.Context, cartID int64) (int64, error)
}

type addressReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Address, error)
}

type shippingReader interface {
	GetByID(ctx context.Context, id int64) (*domain.ShippingOption, error)
}

type customizationReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Customization, error)
}

// New wires the checkout. defaultShippingID is used when a request names no shipping option.
func New(
	orders orderRepo,
	carts cartStore,
	addresses addressReader,
	shipping shippingReader,
	customizations customizationReader,
	defaultShippingID int64,
	logger logrus.FieldLogger,
) *Service {
	return &Service{
		orders:            orders,
		carts:             carts,
		addresses:         addresses,
		shipping:          shipping,
		customizations:    customizations,
		defaultShippingID: defaultShippingID,
		logger:            logging.OrDiscard(logger),
	}
}

type CheckoutItem struct {
	ProductID       int64                  `json:"product_id"`
	Quantity        int                    `json:"quantity"`
	CustomizationID *int64                 `json:"customization_id,omitempty"`
	Customizations  map[string]interface{} `json:"customizations,omitempty"`
}

type CheckoutInput struct {
	ShippingAddressID int64          `json:"shipping_address_id"`
	BillingAddressID  int64          `json:"billing_address_id"`
	ShippingOptionID  int64          `json:"shipping_id"`
	Items             []CheckoutItem `json:"items"`
	Subtotal          domain.Money   `json:"subtotal"`
	ShippingCost      domain.Money   `json:"shipping_cost"`
	Tax               domain.Money   `json:"tax"`
	Total             domain.Money   `json:"total_amount"`
}

func (in CheckoutInput) validate() error {
	switch {
	case in.ShippingAddressID <= 0:
		return domain.Invalid("shipping_address_id", "required")
	case in.BillingAddressID <= 0:
		return domain.Invalid("billing_address_id", "required")
	case in.Total <= 0:
		return domain.Invalid("total_amount", "must be greater than zero")
	case in.Subtotal < 0:
		return domain.Invalid("subtotal", "must not be negative")
	case in.ShippingCost < 0:
		return domain.Invalid("shipping_cost", "must not be negative")
	case in.Tax < 0:
		return domain.Invalid("tax", "must not be negative")
	case in.Subtotal+in.ShippingCost+in.Tax != in.Total:
		return domain.Invalid("total_amount", fmt.Sprintf("must equal subtotal + shipping_cost + tax (%s)", in.Subtotal+in.ShippingCost+in.Tax))
	}
	for i, it := range in.Items {
		if it.ProductID <= 0 {
			return domain.Invalid(fmt.Sprintf("items[%d].product_id", i), "required")
		}
		if it.Quantity <= 0 {
			return domain.Invalid(fmt.Sprintf("items[%d].quantity", i), "must be positive")
		}
		if it.Quantity > domain.MaxLineQuantity {
			return domain.Invalid(fmt.Sprintf("items[%d].quantity", i), fmt.Sprintf("must be at most %d", domain.MaxLineQuantity))
		}
	}
	return nil
}

// Create validates the checkout and writes the order with its items in one transaction.
// With no explicit items the user's cart is checked out and cleared afterwards.
func (s *Service) Create(ctx context.Context, userID int64, in CheckoutInput) (*domain.Order, error) {
	log := s.logger.WithFields(logrus.Fields{"user_id": userID, "op": "order.create"})

	if err := in.validate(); err != nil {
		return nil, err
	}
	if in.ShippingOptionID == 0 {
		in.ShippingOptionID = s.defaultShippingID
	}

	if err := s.checkAddress(ctx, userID, in.ShippingAddressID, "shipping"); err != nil {
		return nil, err
	}
	if err := s.checkAddress(ctx, userID, in.BillingAddressID, "billing"); err != nil {
		return nil, err
	}
	opt, err := s.shipping.GetByID(ctx, in.ShippingOptionID)
	if err != nil {
		return nil, fmt.Errorf("shipping option %d: %w", in.ShippingOptionID, err)
	}
	if !opt.IsActive {
		return nil, fmt.Errorf("shipping option %d: %w", opt.ID, domain.ErrNotFound)
	}

	items, cart, err := s.resolveItems(ctx, userID, in.Items)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		if it.CustomizationID == nil {
			continue
		}
		if err := s.checkCustomization(ctx, userID, it.ProductID, *it.CustomizationID); err != nil {
			return nil, err
		}
	}

	order, err := s.orders.CreateWithItems(ctx, orderrepo.CreateInput{
		UserID:            userID,
		ShippingAddressID: in.ShippingAddressID,
		BillingAddressID:  in.BillingAddressID,
		ShippingOptionID:  in.ShippingOptionID,
		Subtotal:          in.Subtotal,
		ShippingCost:      in.ShippingCost,
		Tax:               in.Tax,
		Total:             in.Total,
		Items:             items,
	})
	if err != nil {
		if !domain.IsClientError(err) {
			log.WithError(err).Error("order: create failed")
		}
		return nil, err
	}

	if cart != nil {
		// The order is committed; a client disconnect must not leave the cart behind.
		if _, err := s.carts.Clear(context.WithoutCancel(ctx), cart.ID); err != nil {
			log.WithError(err).WithField("cart_id", cart.ID).Warn("order: cart clear after checkout failed")
		}
	}
	log.WithField("order_id", order.ID).Info("order: created")
	return order, nil
}

// resolveItems returns the explicit items, or the cart lines and the cart they came from.
func (s *Service) resolveItems(ctx context.Context, userID int64, explicit []CheckoutItem) ([]orderrepo.ItemInput, *domain.Cart, error) {
	if len(explicit) > 0 {
		items := make([]orderrepo.ItemInput, 0, len(explicit))
		for _, it := range explicit {
			items = append(items, orderrepo.ItemInput{
				ProductID:       it.ProductID,
				Quantity:        it.Quantity,
				CustomizationID: it.CustomizationID,
				Options:         it.Customizations,
			})
		}
		return items, nil, nil
	}

	cart, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if len(cart.Lines) == 0 {
		return nil, nil, domain.Invalid("items", "cart is empty")
	}
	items := make([]orderrepo.ItemInput, 0, len(cart.Lines))
	for _, l := range cart.Lines {
		items = append(items, orderrepo.ItemInput{
			ProductID:       l.ProductID,
			Quantity:        l.Quantity,
			CustomizationID: l.CustomizationID,
		})
	}
	return items, cart, nil
}

// checkAddress reports a foreign address as not found.
func (s *Service) checkAddress(ctx context.Context, userID, id int64, kind string) error {
	a, err := s.addresses.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("%s address %d: %w", kind, id, err)
	}
	if a.UserID != userID {
		return fmt.Errorf("%s address %d: %w", kind, id, domain.ErrNotFound)
	}
	return nil
}

func (s *Service) checkCustomization(ctx context.Context, userID, productID, id int64) error {
	c, err := s.customizations.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("customization %d: %w", id, err)
	}
	if err := c.CheckOwnership(userID, productID); err != nil {
		return fmt.Errorf("customization %d: %w", id, err)
	}
	return nil
}

func (s *Service) Get(ctx context.Context, userID, orderID int64) (*domain.Order, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return o, nil
}

func (s *Service) List(ctx context.Context, userID int64, limit, offset int) ([]domain.Order, error) {
	return s.orders.ListByUser(ctx, userID, limit, offset)
}

// Cancel is allowed for the owner while the order is pending or processing.
func (s *Service) Cancel(ctx context.Context, userID, orderID int64) (*domain.Order, error) {
	o, err := s.Get(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if !o.Status.Cancellable() {
		return nil, fmt.Errorf("cannot cancel order in status %s: %w", o.Status, domain.ErrInvalidState)
	}
	cancelled, err := s.orders.Transition(ctx, o.ID, orderrepo.Transition{
		FromStatus:  o.Status,
		ToStatus:    domain.OrderCancelled,
		FromPayment: o.PaymentStatus,
		ToPayment:   o.PaymentStatus,
	})
	if err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{"user_id": userID, "order_id": o.ID, "from": o.Status}).Info("order: cancelled")
	return cancelled, nil
}

type UpdateStatusInput struct {
	Status        *domain.OrderStatus   `json:"status,omitempty"`
	PaymentStatus *domain.PaymentStatus `json:"payment_status,omitempty"`
}

// UpdateStatus applies an admin change. Each status follows its own state machine.
func (s *Service) UpdateStatus(ctx context.Context, orderID int64, in UpdateStatusInput) (*domain.Order, error) {
	if in.Status == nil && in.PaymentStatus == nil {
		return nil, domain.Invalid("status", "status or payment_status required")
	}
	if in.Status != nil && !in.Status.Valid() {
		return nil, domain.Invalid("status", fmt.Sprintf("unknown status %q", *in.Status))
	}
	if in.PaymentStatus != nil && !in.PaymentStatus.Valid() {
		return nil, domain.Invalid("payment_status", fmt.Sprintf("unknown payment status %q", *in.PaymentStatus))
	}

	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	t := orderrepo.Transition{
		FromStatus:  o.Status,
		ToStatus:    o.Status,
		FromPayment: o.PaymentStatus,
		ToPayment:   o.PaymentStatus,
	}
	if in.Status != nil && *in.Status != o.Status {
		if !o.Status.CanTransitionTo(*in.Status) {
			return nil, fmt.Errorf("status %s -> %s: %w", o.Status, *in.Status, domain.ErrInvalidState)
		}
		t.ToStatus = *in.Status
	}
	if in.PaymentStatus != nil && *in.PaymentStatus != o.PaymentStatus {
		if !o.PaymentStatus.CanTransitionTo(*in.PaymentStatus) {
			return nil, fmt.Errorf("payment status %s -> %s: %w", o.PaymentStatus, *in.PaymentStatus, domain.ErrInvalidState)
		}
		t.ToPayment = *in.PaymentStatus
	}
	if t.ToStatus == t.FromStatus && t.ToPayment == t.FromPayment {
		return o, nil
	}

	updated, err := s.orders.Transition(ctx, o.ID, t)
	if err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{
		"order_id":       o.ID,
		"status":         updated.Status,
		"payment_status": updated.PaymentStatus,
	}).Info("order: status updated")
	return updated, nil
}
