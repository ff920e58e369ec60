package domain

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to OrderStatus
		ok       bool
	}{
		{OrderPending, OrderProcessing, true},
		{OrderPending, OrderCancelled, true},
		{OrderProcessing, OrderShipped, true},
		{OrderProcessing, OrderCancelled, true},
		{OrderShipped, OrderDelivered, true},
		{OrderShipped, OrderCancelled, false},
		{OrderDelivered, OrderCancelled, false},
		{OrderCancelled, OrderCancelled, false},
		{OrderCancelled, OrderPending, false},
		{OrderProcessing, OrderPending, false},
		{OrderPending, OrderDelivered, false},
	}
	for _, tc := range cases {
		assert.Equalf(t, tc.ok, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
	assert.True(t, OrderPending.Cancellable())
	assert.False(t, OrderShipped.Cancellable())
}

func TestPaymentStatusTransitions(t *testing.T) {
	assert.True(t, PaymentPending.CanTransitionTo(PaymentPaid))
	assert.True(t, PaymentPending.CanTransitionTo(PaymentFailed))
	assert.False(t, PaymentPaid.CanTransitionTo(PaymentFailed))
	assert.False(t, PaymentFailed.CanTransitionTo(PaymentPending))
}

func TestMoneyJSON(t *testing.T) {
	var body struct {
		Total Money `json:"total"`
		Tax   Money `json:"tax"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"total":53.48,"tax":"3.5"}`), &body))
	assert.Equal(t, Money(5348), body.Total)
	assert.Equal(t, Money(350), body.Tax)

	out, err := json.Marshal(body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"total":53.48,"tax":3.50}`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"total":1.005}`), &body))
}

func TestMoneyJSONOutOfRange(t *testing.T) {
	for _, raw := range []string{
		"184467440737095516.16",
		"92233720368547758.08",
		"-92233720368547758.09",
		`"1e30"`,
	} {
		var m Money
		assert.Errorf(t, json.Unmarshal([]byte(raw), &m), "amount %s", raw)
		assert.Equalf(t, Money(0), m, "amount %s", raw)
	}

	var m Money
	require.NoError(t, json.Unmarshal([]byte("92233720368547758.07"), &m))
	assert.Equal(t, Money(math.MaxInt64), m)
	require.NoError(t, json.Unmarshal([]byte("-92233720368547758.08"), &m))
	assert.Equal(t, Money(math.MinInt64), m)
}

func TestOrderItemsSubtotal(t *testing.T) {
	o := Order{Items: []OrderItem{
		{Quantity: 2, UnitPrice: 999},
		{Quantity: 1, UnitPrice: 2500},
	}}
	assert.Equal(t, Money(4498), o.ItemsSubtotal())
	assert.Equal(t, "44.98", o.ItemsSubtotal().String())
}

func TestCartLineIdentity(t *testing.T) {
	a, b := int64(1), int64(2)
	plain := CartLine{ProductID: 5}
	custom := CartLine{ProductID: 5, CustomizationID: &a}

	assert.True(t, plain.SameIdentity(5, nil))
	assert.False(t, plain.SameIdentity(5, &a))
	assert.True(t, custom.SameIdentity(5, &a))
	assert.False(t, custom.SameIdentity(5, &b))
	assert.False(t, custom.SameIdentity(6, &a))
}

func TestCartLineLookup(t *testing.T) {
	a := int64(1)
	c := Cart{Lines: []CartLine{
		{ID: 10, ProductID: 5, Quantity: 2},
		{ID: 11, ProductID: 5, CustomizationID: &a, Quantity: 1},
	}}

	l, ok := c.Line(5, &a)
	assert.True(t, ok)
	assert.Equal(t, int64(11), l.ID)
	l, ok = c.Line(5, nil)
	assert.True(t, ok)
	assert.Equal(t, int64(10), l.ID)
	_, ok = c.Line(6, nil)
	assert.False(t, ok)
}

func TestCustomizationCheckOwnership(t *testing.T) {
	c := Customization{UserID: 7, ProductID: 2}
	assert.NoError(t, c.CheckOwnership(7, 2))
	assert.ErrorIs(t, c.CheckOwnership(8, 2), ErrForbidden)
	assert.ErrorIs(t, c.CheckOwnership(7, 3), ErrCustomizationMismatch)
}
