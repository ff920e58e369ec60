package cart

import (
	"context"
	"fmt"

	"storefront/internal/domain"
	"storefront/internal/logging"

	"github.com/sirupsen/logrus"
)

type Service struct {
	repo           cartRepo
	products       productReader
	customizations customizationReader
	logger         logrus.FieldLogger
}

type cartRepo interface {
	GetOrCreate(ctx context.Context, userID int64) (*domain.Cart, error)
	AddItem(ctx context.Context, cartID, productID int64, quantity int, customizationID *int64) (*domain.CartLine, error)
	UpdateQuantity(ctx context.Context, cartID, itemID int64, quantity int) (*domain.CartLine, error)
	RemoveItem(ctx context.Context, cartID, itemID int64) (bool, error)
	Clear(ctx context.Context, cartID int64) (int64, error)
}

type productReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
}

type customizationReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Customization, error)
}

func New(repo cartRepo, products productReader, customizations customizationReader, logger logrus.FieldLogger) *Service {
	return &Service{
		repo:           repo,
		products:       products,
		customizations: customizations,
		logger:         logging.OrDiscard(logger),
	}
}

type AddItemInput struct {
	ProductID       int64  `json:"product_id" binding:"required"`
	Quantity        int    `json:"quantity"`
	CustomizationID *int64 `json:"customization_id,omitempty"`
}

func (s *Service) Get(ctx context.Context, userID int64) (*domain.Cart, error) {
	return s.repo.GetOrCreate(ctx, userID)
}

// AddItem merges into an existing line with the same product and customization.
func (s *Service) AddItem(ctx context.Context, userID int64, in AddItemInput) (*domain.Cart, error) {
	if in.Quantity == 0 {
		in.Quantity = 1
	}
	if in.Quantity < 0 {
		return nil, domain.Invalid("quantity", "must be positive")
	}
	if in.Quantity > domain.MaxLineQuantity {
		return nil, domain.Invalid("quantity", fmt.Sprintf("must be at most %d", domain.MaxLineQuantity))
	}
	if in.ProductID <= 0 {
		return nil, domain.Invalid("product_id", "required")
	}

	product, err := s.products.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, fmt.Errorf("product %d: %w", in.ProductID, err)
	}
	if product.Status != domain.ProductPublished {
		return nil, fmt.Errorf("product %d: %w", in.ProductID, domain.ErrNotFound)
	}

	if in.CustomizationID != nil {
		if !product.IsCustomizable {
			return nil, fmt.Errorf("product %d is not customizable: %w", product.ID, domain.ErrCustomizationMismatch)
		}
		if err := s.checkCustomization(ctx, userID, product.ID, *in.CustomizationID); err != nil {
			return nil, err
		}
	}

	cart, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if existing, ok := cart.Line(product.ID, in.CustomizationID); ok && existing.Quantity+in.Quantity > domain.MaxLineQuantity {
		return nil, domain.Invalid("quantity", fmt.Sprintf("line would exceed %d items", domain.MaxLineQuantity))
	}
	line, err := s.repo.AddItem(ctx, cart.ID, product.ID, in.Quantity, in.CustomizationID)
	if err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{
		"user_id":    userID,
		"cart_id":    cart.ID,
		"product_id": product.ID,
		"quantity":   line.Quantity,
	}).Debug("cart: item added")
	return s.repo.GetOrCreate(ctx, userID)
}

func (s *Service) checkCustomization(ctx context.Context, userID, productID, customizationID int64) error {
	c, err := s.customizations.GetByID(ctx, customizationID)
	if err != nil {
		return fmt.Errorf("customization %d: %w", customizationID, err)
	}
	if err := c.CheckOwnership(userID, productID); err != nil {
		return fmt.Errorf("customization %d: %w", customizationID, err)
	}
	return nil
}

func (s *Service) UpdateItem(ctx context.Context, userID, itemID int64, quantity int) (*domain.Cart, error) {
	if quantity <= 0 {
		return nil, domain.Invalid("quantity", "must be positive")
	}
	if quantity > domain.MaxLineQuantity {
		return nil, domain.Invalid("quantity", fmt.Sprintf("must be at most %d", domain.MaxLineQuantity))
	}
	cart, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.UpdateQuantity(ctx, cart.ID, itemID, quantity); err != nil {
		return nil, err
	}
	return s.repo.GetOrCreate(ctx, userID)
}

// RemoveItem reports false when the line was already gone.
func (s *Service) RemoveItem(ctx context.Context, userID, itemID int64) (bool, error) {
	cart, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return false, err
	}
	return s.repo.RemoveItem(ctx, cart.ID, itemID)
}

func (s *Service) Clear(ctx context.Context, userID int64) (int64, error) {
	cart, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return 0, err
	}
	n, err := s.repo.Clear(ctx, cart.ID)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.WithFields(logrus.Fields{"user_id": userID, "cart_id": cart.ID, "removed": n}).Info("cart: cleared")
	}
	return n, nil
}
