package domain

import "time"

// Customization is a saved design for a customizable product.
type Customization struct {
	ID                 int64                  `json:"id"`
	UserID             int64                  `json:"user_id"`
	ProductID          int64                  `json:"product_id"`
	RenderedImageURL   string                 `json:"rendered_image_url"`
	SelectedAttributes map[string]interface{} `json:"selected_attributes,omitempty"`
	CanvasState        map[string]interface{} `json:"canvas_state,omitempty"`
	CreatedAt          time.Time              `json:"created_at"`
	UpdatedAt          time.Time              `json:"updated_at"`
}

// CheckOwnership returns ErrForbidden when the customization belongs to another user
// and ErrCustomizationMismatch when it was made for a different product.
func (c Customization) CheckOwnership(userID, productID int64) error {
	if c.UserID != userID {
		return ErrForbidden
	}
	if c.ProductID != productID {
		return ErrCustomizationMismatch
	}
	return nil
}
