package product

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"unicode"

	"storefront/internal/domain"
	productrepo "storefront/internal/repository/product"
)

type Service struct {
	repo productrepo.Repository
}

func New(repo productrepo.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, f domain.ProductFilter) ([]domain.Product, error) {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	f.Search = strings.TrimSpace(f.Search)
	return s.repo.List(ctx, f)
}

func (s *Service) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// Get resolves ref as an id first and as a slug otherwise. Unpublished products are
// only visible with includeHidden.
func (s *Service) Get(ctx context.Context, ref string, includeHidden bool) (*domain.Product, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, domain.ErrNotFound
	}

	var (
		p   *domain.Product
		err error
	)
	if id, perr := strconv.ParseInt(ref, 10, 64); perr == nil {
		p, err = s.repo.GetByID(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			p, err = s.repo.GetBySlug(ctx, ref)
		}
	} else {
		p, err = s.repo.GetBySlug(ctx, ref)
	}
	if err != nil {
		return nil, err
	}
	if !includeHidden && p.Status != domain.ProductPublished {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

type CreateInput struct {
	Name           string                 `json:"name"`
	Slug           string                 `json:"slug"`
	Description    string                 `json:"description"`
	Price          domain.Money           `json:"price"`
	Stock          int                    `json:"stock"`
	CategoryID     *int64                 `json:"category_id"`
	Status         domain.ProductStatus   `json:"status"`
	IsCustomizable bool                   `json:"is_customizable"`
	IsFeatured     bool                   `json:"is_featured"`
	Images         []string               `json:"images"`
	Attributes     map[string]interface{} `json:"attributes"`
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Product, error) {
	p := domain.Product{
		Name:           strings.TrimSpace(in.Name),
		Slug:           strings.TrimSpace(in.Slug),
		Description:    in.Description,
		Price:          in.Price,
		Stock:          in.Stock,
		CategoryID:     in.CategoryID,
		Status:         in.Status,
		IsCustomizable: in.IsCustomizable,
		IsFeatured:     in.IsFeatured,
		Images:         in.Images,
		Attributes:     in.Attributes,
	}
	if p.Slug == "" {
		p.Slug = Slugify(p.Name)
	}
	if p.Status == "" {
		p.Status = domain.ProductPublished
	}
	if err := validateProduct(p); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, p)
}

// UpdateInput patches the fields that are set.
type UpdateInput struct {
	Name           *string                `json:"name"`
	Slug           *string                `json:"slug"`
	Description    *string                `json:"description"`
	Price          *domain.Money          `json:"price"`
	Stock          *int                   `json:"stock"`
	CategoryID     *int64                 `json:"category_id"`
	Status         *domain.ProductStatus  `json:"status"`
	IsCustomizable *bool                  `json:"is_customizable"`
	IsFeatured     *bool                  `json:"is_featured"`
	Images         []string               `json:"images"`
	Attributes     map[string]interface{} `json:"attributes"`
}

func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (*domain.Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Slug != nil {
		p.Slug = strings.TrimSpace(*in.Slug)
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Stock != nil {
		p.Stock = *in.Stock
	}
	if in.CategoryID != nil {
		p.CategoryID = in.CategoryID
	}
	if in.Status != nil {
		p.Status = *in.Status
	}
	if in.IsCustomizable != nil {
		p.IsCustomizable = *in.IsCustomizable
	}
	if in.IsFeatured != nil {
		p.IsFeatured = *in.IsFeatured
	}
	if in.Images != nil {
		p.Images = in.Images
	}
	if in.Attributes != nil {
		p.Attributes = in.Attributes
	}
	if err := validateProduct(*p); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, *p)
}

func validateProduct(p domain.Product) error {
	switch {
	case p.Name == "":
		return domain.Invalid("name", "required")
	case p.Slug == "":
		return domain.Invalid("slug", "required")
	case p.Price < 0:
		return domain.Invalid("price", "must not be negative")
	case p.Stock < 0:
		return domain.Invalid("stock", "must not be negative")
	case !p.Status.Valid():
		return domain.Invalid("status", "must be draft, published or archived")
	}
	return nil
}

// Slugify lowercases s and joins its alphanumeric runs with dashes.
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// Related lists up to limit published products for the product ref resolves to.
func (s *Service) Related(ctx context.Context, ref string, limit int) ([]domain.Product, error) {
	p, err := s.Get(ctx, ref, false)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 4
	}
	if limit > 20 {
		limit = 20
	}
	return s.repo.Related(ctx, p.ID, p.CategoryID, limit)
}

func (s *Service) Publish(ctx context.Context, id int64) (*domain.Product, error) {
	return s.repo.SetStatus(ctx, id, domain.ProductPublished)
}

func (s *Service) Archive(ctx context.Context, id int64) (*domain.Product, error) {
	return s.repo.SetStatus(ctx, id, domain.ProductArchived)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
