package httpserver

import (
	"storefront/internal/domain"
)

type orderItemResponse struct {
	domain.OrderItem
	LineTotal domain.Money `json:"line_total"`
}

type orderResponse struct {
	domain.Order
	Items []orderItemResponse `json:"items"`
}

func toOrderResponse(o domain.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, orderItemResponse{OrderItem: it, LineTotal: it.LineTotal()})
	}
	return orderResponse{Order: o, Items: items}
}

func toOrderResponses(orders []domain.Order) []orderResponse {
	out := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResponse(o))
	}
	return out
}

type cartLineResponse struct {
	domain.CartLine
	LineTotal domain.Money `json:"line_total"`
}

type cartResponse struct {
	domain.Cart
	Items     []cartLineResponse `json:"items"`
	Subtotal  domain.Money       `json:"subtotal"`
	ItemCount int                `json:"item_count"`
}

func toCartResponse(c domain.Cart) cartResponse {
	lines := make([]cartLineResponse, 0, len(c.Lines))
	for _, l := range c.Lines {
		lines = append(lines, cartLineResponse{CartLine: l, LineTotal: l.UnitPrice.Times(l.Quantity)})
	}
	return cartResponse{Cart: c, Items: lines, Subtotal: c.Subtotal(), ItemCount: c.ItemCount()}
}

// emptyIfNil keeps list endpoints returning [] instead of null.
func emptyIfNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
