package review

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"storefront/internal/domain"
	reviewrepo "storefront/internal/repository/review"
)

const maxCommentLength = 2000

type productResolver interface {
	Get(ctx context.Context, ref string, includeHidden bool) (*domain.Product, error)
}

type userReader interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

type Service struct {
	repo     reviewrepo.Repository
	products productResolver
	users    userReader
}

func New(repo reviewrepo.Repository, products productResolver, users userReader) *Service {
	return &Service{repo: repo, products: products, users: users}
}

type CreateInput struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// List returns reviews of a published product, newest first.
func (s *Service) List(ctx context.Context, ref string, limit, offset int) ([]domain.Review, error) {
	p, err := s.products.Get(ctx, ref, false)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListByProduct(ctx, p.ID, limit, offset)
}

// Create records userID's review of a published product. A second review by the same
// user reports domain.ErrAlreadyExists.
func (s *Service) Create(ctx context.Context, userID int64, ref string, in CreateInput) (*domain.Review, error) {
	comment := strings.TrimSpace(in.Comment)
	switch {
	case in.Rating < 1 || in.Rating > 5:
		return nil, domain.Invalid("rating", "must be between 1 and 5")
	case utf8.RuneCountInString(comment) > maxCommentLength:
		return nil, domain.Invalid("comment", fmt.Sprintf("must be at most %d characters", maxCommentLength))
	}

	p, err := s.products.Get(ctx, ref, false)
	if err != nil {
		return nil, err
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, domain.Review{
		UserID:       userID,
		ProductID:    p.ID,
		Rating:       in.Rating,
		Comment:      comment,
		ReviewerName: reviewerName(*u),
	})
}

func reviewerName(u domain.User) string {
	if name := strings.TrimSpace(u.FirstName + " " + u.LastName); name != "" {
		return name
	}
	local, _, _ := strings.Cut(u.Email, "@")
	return local
}
