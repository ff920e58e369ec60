package domain

import "time"

type ShippingOption struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	Price         Money     `json:"price"`
	EstimatedDays string    `json:"estimated_days"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
}

// ShippingRate is a computed quote for one service level.
type ShippingRate struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	Cost          Money  `json:"cost"`
	EstimatedDays string `json:"estimated_days"`
}
