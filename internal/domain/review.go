package domain

import "time"

// Review is one user's rating of a product. A user reviews a product at most once.
type Review struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	ProductID    int64     `json:"product_id"`
	Rating       int       `json:"rating"`
	Comment      string    `json:"comment,omitempty"`
	ReviewerName string    `json:"reviewer_name,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
