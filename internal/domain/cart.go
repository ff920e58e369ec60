package domain

import "time"

// MaxLineQuantity caps the quantity of a single cart or order line.
const MaxLineQuantity = 1000

type Cart struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"user_id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	Lines     []CartLine `json:"items"`
}

// CartLine is identified inside its cart by (ProductID, CustomizationID).
type CartLine struct {
	ID              int64     `json:"id"`
	CartID          int64     `json:"cart_id"`
	ProductID       int64     `json:"product_id"`
	CustomizationID *int64    `json:"customization_id,omitempty"`
	Quantity        int       `json:"quantity"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	// Read-side product details joined at fetch time.
	ProductName      string `json:"product_name,omitempty"`
	ProductSlug      string `json:"product_slug,omitempty"`
	UnitPrice        Money  `json:"unit_price"`
	ImageURL         string `json:"image_url,omitempty"`
	CustomizationURL string `json:"customization_image_url,omitempty"`
}

// SameIdentity reports whether the line matches a product and optional customization.
func (l CartLine) SameIdentity(productID int64, customizationID *int64) bool {
	if l.ProductID != productID {
		return false
	}
	if l.CustomizationID == nil || customizationID == nil {
		return l.CustomizationID == nil && customizationID == nil
	}
	return *l.CustomizationID == *customizationID
}

// Line returns the line with the given identity, if the cart has one.
func (c Cart) Line(productID int64, customizationID *int64) (CartLine, bool) {
	for _, l := range c.Lines {
		if l.SameIdentity(productID, customizationID) {
			return l, true
		}
	}
	return CartLine{}, false
}

// Subtotal sums the lines at their joined unit prices.
func (c Cart) Subtotal() Money {
	var total Money
	for _, l := range c.Lines {
		total += l.UnitPrice.Times(l.Quantity)
	}
	return total
}

func (c Cart) ItemCount() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}
