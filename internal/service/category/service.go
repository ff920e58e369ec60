package category

import (
	"context"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/repository/category"
	"storefront/internal/service/product"
)

type Service struct {
	repo category.Repository
}

func New(repo category.Repository) *Service {
	return &Service{repo: repo}
}

// List returns active categories only.
func (s *Service) List(ctx context.Context) ([]domain.Category, error) {
	return s.repo.List(ctx, true)
}

func (s *Service) Upsert(ctx context.Context, c domain.Category) (*domain.Category, error) {
	if err := validate(c); err != nil {
		return nil, err
	}
	return s.repo.Upsert(ctx, c)
}

// ListAll includes inactive categories.
func (s *Service) ListAll(ctx context.Context) ([]domain.Category, error) {
	return s.repo.List(ctx, false)
}

type Input struct {
	Name        *string `json:"name"`
	Slug        *string `json:"slug"`
	Description *string `json:"description"`
	ParentID    *int64  `json:"parent_id"`
	IsActive    *bool   `json:"is_active"`
}

// Create derives the slug from the name when none is given. Categories are active
// unless IsActive says otherwise.
func (s *Service) Create(ctx context.Context, in Input) (*domain.Category, error) {
	c := domain.Category{IsActive: true}
	apply(&c, in)
	if c.Slug == "" {
		c.Slug = product.Slugify(c.Name)
	}
	if err := validate(c); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, c)
}

// Update patches the fields that are set.
func (s *Service) Update(ctx context.Context, id int64, in Input) (*domain.Category, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	apply(c, in)
	if err := validate(*c); err != nil {
		return nil, err
	}
	if c.ParentID != nil && *c.ParentID == c.ID {
		return nil, domain.Invalid("parent_id", "must not be the category itself")
	}
	return s.repo.Update(ctx, *c)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func apply(c *domain.Category, in Input) {
	if in.Name != nil {
		c.Name = strings.TrimSpace(*in.Name)
	}
	if in.Slug != nil {
		c.Slug = strings.TrimSpace(*in.Slug)
	}
	if in.Description != nil {
		c.Description = *in.Description
	}
	if in.ParentID != nil {
		c.ParentID = in.ParentID
	}
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}
}

func validate(c domain.Category) error {
	if c.Name == "" {
		return domain.Invalid("name", "required")
	}
	if c.Slug == "" {
		return domain.Invalid("slug", "required")
	}
	return nil
}
