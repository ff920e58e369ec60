package domain

import "time"

type ProductStatus string

const (
	ProductDraft     ProductStatus = "draft"
	ProductPublished ProductStatus = "published"
	ProductArchived  ProductStatus = "archived"
)

func (s ProductStatus) Valid() bool {
	switch s {
	case ProductDraft, ProductPublished, ProductArchived:
		return true
	}
	return false
}

type Product struct {
	ID             int64                  `json:"id"`
	Name           string                 `json:"name"`
	Slug           string                 `json:"slug"`
	Description    string                 `json:"description,omitempty"`
	Price          Money                  `json:"price"`
	Stock          int                    `json:"stock"`
	CategoryID     *int64                 `json:"category_id,omitempty"`
	Status         ProductStatus          `json:"status"`
	IsCustomizable bool                   `json:"is_customizable"`
	IsFeatured     bool                   `json:"is_featured"`
	Images         []string               `json:"images"`
	Attributes     map[string]interface{} `json:"attributes,omitempty"`
	Rating         float64                `json:"rating"`
	ReviewsCount   int                    `json:"reviews_count"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
}

// ProductFilter narrows product listings. Zero values do not filter.
type ProductFilter struct {
	CategorySlug  string
	Search        string
	FeaturedOnly  bool
	Customizable  *bool
	IncludeHidden bool
	Limit         int
	Offset        int
}
