package seed

import (
	"context"
	"fmt"

	"storefront/internal/domain"
	"storefront/internal/logging"

	"github.com/sirupsen/logrus"
)

type CategoryWriter interface {
	Upsert(ctx context.Context, c domain.Category) (*domain.Category, error)
}

type ProductWriter interface {
	Upsert(ctx context.Context, p domain.Product) (*domain.Product, error)
}

type ShippingWriter interface {
	Upsert(ctx context.Context, o domain.ShippingOption) (*domain.ShippingOption, error)
}

type Writers struct {
	Categories CategoryWriter
	Products   ProductWriter
	Shipping   ShippingWriter
}

type productSeed struct {
	Category     string
	Name         string
	Slug         string
	Description  string
	Price        domain.Money
	Stock        int
	Customizable bool
	Featured     bool
}

var categories = []domain.Category{
	{Name: "Apparel", Slug: "apparel", Description: "Shirts and hoodies", IsActive: true},
	{Name: "Drinkware", Slug: "drinkware", Description: "Mugs and bottles", IsActive: true},
}

var products = []productSeed{
	{
		Category:     "apparel",
		Name:         "Classic T-Shirt",
		Slug:         "classic-t-shirt",
		Description:  "Soft cotton tee, ready for your design",
		Price:        999,
		Stock:        100,
		Customizable: true,
		Featured:     true,
	},
	{
		Category:     "apparel",
		Name:         "Pullover Hoodie",
		Slug:         "pullover-hoodie",
		Description:  "Heavyweight fleece hoodie",
		Price:        2500,
		Stock:        40,
		Customizable: true,
	},
	{
		Category:    "drinkware",
		Name:        "Ceramic Mug",
		Slug:        "ceramic-mug",
		Description: "11oz ceramic mug",
		Price:       1299,
		Stock:       60,
		Featured:    true,
	},
}

var shippingOptions = []domain.ShippingOption{
	{Name: "Standard", Description: "Ground delivery", Price: 500, EstimatedDays: "3-5 days", IsActive: true},
	{Name: "Express", Description: "Two day delivery", Price: 1500, EstimatedDays: "1-2 days", IsActive: true},
	{Name: "Overnight", Description: "Next business day", Price: 2500, EstimatedDays: "1 day", IsActive: true},
}

// Apply inserts demo catalog data. Every write is an upsert, so reruns are safe.
func Apply(ctx context.Context, w Writers, logger logrus.FieldLogger) error {
	logger = logging.OrDiscard(logger)

	categoryIDs := make(map[string]int64, len(categories))
	for _, c := range categories {
		saved, err := w.Categories.Upsert(ctx, c)
		if err != nil {
			return fmt.Errorf("upsert category %s: %w", c.Slug, err)
		}
		categoryIDs[saved.Slug] = saved.ID
	}

	for _, p := range products {
		id, ok := categoryIDs[p.Category]
		if !ok {
			return fmt.Errorf("product %s: unknown category %s", p.Slug, p.Category)
		}
		_, err := w.Products.Upsert(ctx, domain.Product{
			Name:           p.Name,
			Slug:           p.Slug,
			Description:    p.Description,
			Price:          p.Price,
			Stock:          p.Stock,
			CategoryID:     &id,
			Status:         domain.ProductPublished,
			IsCustomizable: p.Customizable,
			IsFeatured:     p.Featured,
			Images:         []string{},
			Attributes:     map[string]interface{}{},
		})
		if err != nil {
			return fmt.Errorf("upsert product %s: %w", p.Slug, err)
		}
	}

	for _, o := range shippingOptions {
		if _, err := w.Shipping.Upsert(ctx, o); err != nil {
			return fmt.Errorf("upsert shipping option %s: %w", o.Name, err)
		}
	}

	logger.WithFields(logrus.Fields{
		"categories":       len(categories),
		"products":         len(products),
		"shipping_options": len(shippingOptions),
	}).Info("seed: applied")
	return nil
}
