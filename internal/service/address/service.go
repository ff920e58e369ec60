package address

import (
	"context"
	"strings"

	"storefront/internal/domain"
	addressrepo "storefront/internal/repository/address"
)

type Service struct {
	repo addressrepo.Repository
}

func New(repo addressrepo.Repository) *Service {
	return &Service{repo: repo}
}

type Input struct {
	FullName   string `json:"full_name"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	Phone      string `json:"phone"`
	IsDefault  bool   `json:"is_default"`
}

func (in Input) toAddress(userID int64) (domain.Address, error) {
	a := domain.Address{
		UserID:     userID,
		FullName:   strings.TrimSpace(in.FullName),
		Line1:      strings.TrimSpace(in.Line1),
		Line2:      strings.TrimSpace(in.Line2),
		City:       strings.TrimSpace(in.City),
		State:      strings.TrimSpace(in.State),
		PostalCode: strings.TrimSpace(in.PostalCode),
		Country:    strings.ToUpper(strings.TrimSpace(in.Country)),
		Phone:      strings.TrimSpace(in.Phone),
		IsDefault:  in.IsDefault,
	}
	switch {
	case a.FullName == "":
		return a, domain.Invalid("full_name", "required")
	case a.Line1 == "":
		return a, domain.Invalid("line1", "required")
	case a.City == "":
		return a, domain.Invalid("city", "required")
	case a.PostalCode == "":
		return a, domain.Invalid("postal_code", "required")
	case len(a.Country) != 2:
		return a, domain.Invalid("country", "two letter country code required")
	}
	return a, nil
}

func (s *Service) Create(ctx context.Context, userID int64, in Input) (*domain.Address, error) {
	a, err := in.toAddress(userID)
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, a)
}

func (s *Service) List(ctx context.Context, userID int64) ([]domain.Address, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Get reports addresses of other users as not found.
func (s *Service) Get(ctx context.Context, userID, id int64) (*domain.Address, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return a, nil
}

func (s *Service) Update(ctx context.Context, userID, id int64, in Input) (*domain.Address, error) {
	a, err := in.toAddress(userID)
	if err != nil {
		return nil, err
	}
	a.ID = id
	return s.repo.Update(ctx, a)
}

func (s *Service) Delete(ctx context.Context, userID, id int64) error {
	return s.repo.Delete(ctx, userID, id)
}

func (s *Service) SetDefault(ctx context.Context, userID, id int64) (*domain.Address, error) {
	return s.repo.SetDefault(ctx, userID, id)
}
