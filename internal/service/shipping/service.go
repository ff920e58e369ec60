package shipping

import (
	"context"
	"strings"

	"storefront/internal/domain"
	shippingrepo "storefront/internal/repository/shipping"
)

type Service struct {
	repo shippingrepo.Repository
}

func New(repo shippingrepo.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Options(ctx context.Context) ([]domain.ShippingOption, error) {
	return s.repo.List(ctx, true)
}

func (s *Service) Option(ctx context.Context, id int64) (*domain.ShippingOption, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !o.IsActive {
		return nil, domain.ErrNotFound
	}
	return o, nil
}

// AllOptions includes inactive options.
func (s *Service) AllOptions(ctx context.Context) ([]domain.ShippingOption, error) {
	return s.repo.List(ctx, false)
}

type OptionInput struct {
	Name          *string       `json:"name"`
	Description   *string       `json:"description"`
	Price         *domain.Money `json:"price"`
	EstimatedDays *string       `json:"estimated_days"`
	IsActive      *bool         `json:"is_active"`
}

func (s *Service) CreateOption(ctx context.Context, in OptionInput) (*domain.ShippingOption, error) {
	o := domain.ShippingOption{IsActive: true}
	apply(&o, in)
	if err := validateOption(o); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, o)
}

// UpdateOption patches the fields that are set.
func (s *Service) UpdateOption(ctx context.Context, id int64, in OptionInput) (*domain.ShippingOption, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	apply(o, in)
	if err := validateOption(*o); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, *o)
}

func (s *Service) DeleteOption(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func apply(o *domain.ShippingOption, in OptionInput) {
	if in.Name != nil {
		o.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		o.Description = *in.Description
	}
	if in.Price != nil {
		o.Price = *in.Price
	}
	if in.EstimatedDays != nil {
		o.EstimatedDays = strings.TrimSpace(*in.EstimatedDays)
	}
	if in.IsActive != nil {
		o.IsActive = *in.IsActive
	}
}

func validateOption(o domain.ShippingOption) error {
	if o.Name == "" {
		return domain.Invalid("name", "required")
	}
	if o.Price < 0 {
		return domain.Invalid("price", "must not be negative")
	}
	return nil
}

// Rates quotes every service level for a destination.
func (s *Service) Rates(country, postalCode string) ([]domain.ShippingRate, error) {
	return Quote(country, postalCode)
}
