package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront/internal/domain"
	orderrepo "storefront/internal/repository/order"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memOrders prices items from a product table and writes nothing on failure.
type memOrders struct {
	prices     map[int64]domain.Money
	orders     map[int64]*domain.Order
	nextID     int64
	lastCreate orderrepo.CreateInput
	lastTrans  orderrepo.Transition
	creates    int
}

func newMemOrders() *memOrders {
	return &memOrders{
		prices: map[int64]domain.Money{1: 999, 2: 2500},
		orders: map[int64]*domain.Order{},
	}
}

func (m *memOrders) CreateWithItems(_ context.Context, in orderrepo.CreateInput) (*domain.Order, error) {
	m.creates++
	m.lastCreate = in
	o := &domain.Order{
		UserID:            in.UserID,
		Status:            domain.OrderPending,
		PaymentStatus:     domain.PaymentPending,
		ShippingAddressID: in.ShippingAddressID,
		BillingAddressID:  in.BillingAddressID,
		ShippingOptionID:  in.ShippingOptionID,
		Subtotal:          in.Subtotal,
		ShippingCost:      in.ShippingCost,
		Tax:               in.Tax,
		Total:             in.Total,
		CreatedAt:         time.Now(),
	}
	for _, it := range in.Items {
		price, ok := m.prices[it.ProductID]
		if !ok {
			return nil, domain.ErrNotFound
		}
		o.Items = append(o.Items, domain.OrderItem{
			ProductID:       it.ProductID,
			CustomizationID: it.CustomizationID,
			Quantity:        it.Quantity,
			UnitPrice:       price,
		})
	}
	if o.ItemsSubtotal() != in.Subtotal {
		return nil, domain.ErrPriceMismatch
	}
	m.nextID++
	o.ID = m.nextID
	m.orders[o.ID] = o
	return o, nil
}

func (m *memOrders) GetByID(_ context.Context, id int64) (*domain.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *memOrders) ListByUser(_ context.Context, userID int64, _, _ int) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range m.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (m *memOrders) Transition(_ context.Context, id int64, t orderrepo.Transition) (*domain.Order, error) {
	m.lastTrans = t
	o, ok := m.orders[id]
	if !ok || o.Status != t.FromStatus || o.PaymentStatus != t.FromPayment {
		return nil, domain.ErrInvalidState
	}
	o.Status = t.ToStatus
	o.PaymentStatus = t.ToPayment
	cp := *o
	return &cp, nil
}

type stubCarts struct {
	cart        *domain.Cart
	clearErr    error
	clearedID   int64
	clears      int
	clearCtxErr error
}

func (s *stubCarts) GetOrCreate(_ context.Context, userID int64) (*domain.Cart, error) {
	if s.cart == nil {
		s.cart = &domain.Cart{ID: 1, UserID: userID}
	}
	return s.cart, nil
}

func (s *stubCarts) Clear(ctx context.Context, cartID int64) (int64, error) {
	s.clears++
	s.clearedID = cartID
	s.clearCtxErr = ctx.Err()
	if s.clearErr != nil {
		return 0, s.clearErr
	}
	n := int64(len(s.cart.Lines))
	s.cart.Lines = nil
	return n, nil
}

type stubAddresses map[int64]domain.Address

func (s stubAddresses) GetByID(_ context.Context, id int64) (*domain.Address, error) {
	a, ok := s[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &a, nil
}

type stubShipping struct {
	options map[int64]domain.ShippingOption
	lastID  int64
}

func (s *stubShipping) GetByID(_ context.Context, id int64) (*domain.ShippingOption, error) {
	s.lastID = id
	o, ok := s.options[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &o, nil
}

type stubCustomizations map[int64]domain.Customization

func (s stubCustomizations) GetByID(_ context.Context, id int64) (*domain.Customization, error) {
	c, ok := s[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

const (
	userID    = int64(10)
	otherUser = int64(11)
	custC     = int64(77)
)

type fixture struct {
	svc      *Service
	orders   *memOrders
	carts    *stubCarts
	shipping *stubShipping
	hook     *logtest.Hook
}

func newFixture() fixture {
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	f := fixture{
		orders: newMemOrders(),
		carts:  &stubCarts{},
		shipping: &stubShipping{options: map[int64]domain.ShippingOption{
			1: {ID: 1, Name: "Standard", Price: 500, IsActive: true},
			2: {ID: 2, Name: "Retired", IsActive: false},
		}},
		hook: hook,
	}
	addresses := stubAddresses{
		100: {ID: 100, UserID: userID},
		200: {ID: 200, UserID: otherUser},
	}
	customizations := stubCustomizations{
		custC: {ID: custC, UserID: userID, ProductID: 2},
		78:    {ID: 78, UserID: otherUser, ProductID: 2},
	}
	f.svc = New(f.orders, f.carts, addresses, f.shipping, customizations, 1, logger)
	return f
}

func scenarioInput() CheckoutInput {
	return CheckoutInput{
		ShippingAddressID: 100,
		BillingAddressID:  100,
		Subtotal:          4498,
		ShippingCost:      500,
		Tax:               350,
		Total:             5348,
	}
}

func TestCreateFromCartScenario(t *testing.T) {
	f := newFixture()
	c := custC
	f.carts.cart = &domain.Cart{ID: 3, UserID: userID, Lines: []domain.CartLine{
		{ID: 1, ProductID: 1, Quantity: 2},
		{ID: 2, ProductID: 2, Quantity: 1, CustomizationID: &c},
	}}

	o, err := f.svc.Create(context.Background(), userID, scenarioInput())
	require.NoError(t, err)

	assert.Equal(t, "53.48", o.Total.String())
	require.Len(t, o.Items, 2)
	assert.Equal(t, "9.99", o.Items[0].UnitPrice.String())
	assert.Equal(t, "25.00", o.Items[1].UnitPrice.String())
	require.NotNil(t, o.Items[1].CustomizationID)
	assert.Equal(t, custC, *o.Items[1].CustomizationID)

	assert.Equal(t, int64(1), f.shipping.lastID, "default shipping option applied")
	assert.Equal(t, 1, f.carts.clears)
	assert.Equal(t, int64(3), f.carts.clearedID)
	assert.Empty(t, f.carts.cart.Lines)
}

func TestCreateWithExplicitItemsLeavesCart(t *testing.T) {
	f := newFixture()
	f.carts.cart = &domain.Cart{ID: 3, UserID: userID, Lines: []domain.CartLine{{ID: 1, ProductID: 1, Quantity: 9}}}

	in := scenarioInput()
	in.ShippingOptionID = 1
	in.Items = []CheckoutItem{
		{ProductID: 1, Quantity: 2},
		{ProductID: 2, Quantity: 1, Customizations: map[string]interface{}{"size": "L"}},
	}
	o, err := f.svc.Create(context.Background(), userID, in)
	require.NoError(t, err)
	assert.Len(t, o.Items, 2)
	assert.Equal(t, "L", f.orders.lastCreate.Items[1].Options["size"])
	assert.Zero(t, f.carts.clears)
}

func TestCreateCartClearFailureIsOnlyLogged(t *testing.T) {
	f := newFixture()
	f.carts.cart = &domain.Cart{ID: 3, UserID: userID, Lines: []domain.CartLine{{ID: 1, ProductID: 1, Quantity: 1}}}
	f.carts.clearErr = errors.New("connection reset")

	in := scenarioInput()
	in.Subtotal, in.ShippingCost, in.Tax, in.Total = 999, 0, 0, 999
	o, err := f.svc.Create(context.Background(), userID, in)
	require.NoError(t, err)
	require.NotNil(t, o)

	var warned bool
	for _, e := range f.hook.AllEntries() {
		if e.Level == logrus.WarnLevel && e.Data["cart_id"] == int64(3) {
			warned = true
		}
	}
	assert.True(t, warned, "expected a warning about the failed clear")
}

func TestCreateClearsCartEvenIfRequestIsCancelled(t *testing.T) {
	f := newFixture()
	f.carts.cart = &domain.Cart{ID: 3, UserID: userID, Lines: []domain.CartLine{{ID: 1, ProductID: 1, Quantity: 1}}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	in := scenarioInput()
	in.Subtotal, in.ShippingCost, in.Tax, in.Total = 999, 0, 0, 999
	_, err := f.svc.Create(ctx, userID, in)
	require.NoError(t, err)

	assert.Equal(t, 1, f.carts.clears)
	assert.NoError(t, f.carts.clearCtxErr, "clear must not inherit the request cancellation")
	assert.Empty(t, f.carts.cart.Lines)
}

func TestCreateValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*CheckoutInput)
		field  string
	}{
		{"missing shipping address", func(in *CheckoutInput) { in.ShippingAddressID = 0 }, "shipping_address_id"},
		{"missing billing address", func(in *CheckoutInput) { in.BillingAddressID = 0 }, "billing_address_id"},
		{"zero total", func(in *CheckoutInput) { in.Total = 0 }, "total_amount"},
		{"negative tax", func(in *CheckoutInput) { in.Tax = -1; in.Total = 5347 }, "tax"},
		{"inconsistent total", func(in *CheckoutInput) { in.Total = 5000 }, "total_amount"},
		{"bad quantity", func(in *CheckoutInput) { in.Items = []CheckoutItem{{ProductID: 1, Quantity: 0}} }, "items[0].quantity"},
		{"quantity above cap", func(in *CheckoutInput) {
			in.Items = []CheckoutItem{{ProductID: 1, Quantity: 1}, {ProductID: 2, Quantity: domain.MaxLineQuantity + 1}}
		}, "items[1].quantity"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			in := scenarioInput()
			tc.mutate(&in)
			_, err := f.svc.Create(context.Background(), userID, in)
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
			assert.Zero(t, f.orders.creates)
		})
	}

	f := newFixture()
	_, err := f.svc.Create(context.Background(), userID, scenarioInput())
	assert.True(t, domain.IsValidation(err), "empty cart must be rejected")
	assert.Zero(t, f.orders.creates)
}

func TestCreateRejectsUnusableReferences(t *testing.T) {
	other := int64(78)
	cases := []struct {
		name   string
		mutate func(*CheckoutInput)
		want   error
	}{
		{"unknown address", func(in *CheckoutInput) { in.ShippingAddressID = 999 }, domain.ErrNotFound},
		{"foreign address", func(in *CheckoutInput) { in.BillingAddressID = 200 }, domain.ErrNotFound},
		{"unknown shipping option", func(in *CheckoutInput) { in.ShippingOptionID = 9 }, domain.ErrNotFound},
		{"inactive shipping option", func(in *CheckoutInput) { in.ShippingOptionID = 2 }, domain.ErrNotFound},
		{"foreign customization", func(in *CheckoutInput) {
			in.Items = []CheckoutItem{{ProductID: 1, Quantity: 2}, {ProductID: 2, Quantity: 1, CustomizationID: &other}}
		}, domain.ErrForbidden},
		{"customization for other product", func(in *CheckoutInput) {
			c := custC
			in.Items = []CheckoutItem{{ProductID: 1, Quantity: 2, CustomizationID: &c}, {ProductID: 2, Quantity: 1}}
			in.Subtotal, in.Total = 4498, 5348
		}, domain.ErrCustomizationMismatch},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			in := scenarioInput()
			in.Items = []CheckoutItem{{ProductID: 1, Quantity: 2}, {ProductID: 2, Quantity: 1}}
			tc.mutate(&in)
			_, err := f.svc.Create(context.Background(), userID, in)
			assert.ErrorIs(t, err, tc.want)
			assert.Zero(t, f.orders.creates)
		})
	}
}

func TestCreatePropagatesRepositoryFailures(t *testing.T) {
	f := newFixture()
	f.carts.cart = &domain.Cart{ID: 3, UserID: userID, Lines: []domain.CartLine{
		{ID: 1, ProductID: 1, Quantity: 2},
		{ID: 2, ProductID: 404, Quantity: 1},
	}}
	_, err := f.svc.Create(context.Background(), userID, scenarioInput())
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Zero(t, f.carts.clears, "failed checkout keeps the cart")
	assert.Empty(t, f.orders.orders)
}

func TestCancel(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	in := scenarioInput()
	in.Items = []CheckoutItem{{ProductID: 1, Quantity: 2}, {ProductID: 2, Quantity: 1}}

	pending, err := f.svc.Create(ctx, userID, in)
	require.NoError(t, err)
	shipped, err := f.svc.Create(ctx, userID, in)
	require.NoError(t, err)
	f.orders.orders[shipped.ID].Status = domain.OrderShipped

	_, err = f.svc.Cancel(ctx, userID, shipped.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	_, err = f.svc.Cancel(ctx, otherUser, pending.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	cancelled, err := f.svc.Cancel(ctx, userID, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderCancelled, cancelled.Status)
	assert.Equal(t, domain.PaymentPending, cancelled.PaymentStatus)

	_, err = f.svc.Cancel(ctx, userID, pending.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestGetHidesForeignOrders(t *testing.T) {
	f := newFixture()
	in := scenarioInput()
	in.Items = []CheckoutItem{{ProductID: 1, Quantity: 2}, {ProductID: 2, Quantity: 1}}
	o, err := f.svc.Create(context.Background(), userID, in)
	require.NoError(t, err)

	got, err := f.svc.Get(context.Background(), userID, o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)

	_, err = f.svc.Get(context.Background(), otherUser, o.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateStatus(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	in := scenarioInput()
	in.Items = []CheckoutItem{{ProductID: 1, Quantity: 2}, {ProductID: 2, Quantity: 1}}
	o, err := f.svc.Create(ctx, userID, in)
	require.NoError(t, err)

	processing := domain.OrderProcessing
	paid := domain.PaymentPaid
	updated, err := f.svc.UpdateStatus(ctx, o.ID, UpdateStatusInput{Status: &processing, PaymentStatus: &paid})
	require.NoError(t, err)
	assert.Equal(t, domain.OrderProcessing, updated.Status)
	assert.Equal(t, domain.PaymentPaid, updated.PaymentStatus)

	pending := domain.OrderPending
	_, err = f.svc.UpdateStatus(ctx, o.ID, UpdateStatusInput{Status: &pending})
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	failed := domain.PaymentFailed
	_, err = f.svc.UpdateStatus(ctx, o.ID, UpdateStatusInput{PaymentStatus: &failed})
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	bogus := domain.OrderStatus("lost")
	_, err = f.svc.UpdateStatus(ctx, o.ID, UpdateStatusInput{Status: &bogus})
	assert.True(t, domain.IsValidation(err))

	_, err = f.svc.UpdateStatus(ctx, o.ID, UpdateStatusInput{})
	assert.True(t, domain.IsValidation(err))

	same, err := f.svc.UpdateStatus(ctx, o.ID, UpdateStatusInput{Status: &processing})
	require.NoError(t, err)
	assert.Equal(t, domain.OrderProcessing, same.Status)
}
