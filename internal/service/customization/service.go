package customization

import (
	"context"
	"fmt"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/logging"
	"storefront/internal/storage"

	"github.com/sirupsen/logrus"
)

type Service struct {
	repo      customizationRepo
	products  productReader
	store     imageStore
	generator imageGenerator
	logger    logrus.FieldLogger
}

type customizationRepo interface {
	Create(ctx context.Context, c domain.Customization) (*domain.Customization, error)
	GetByID(ctx context.Context, id int64) (*domain.Customization, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Customization, error)
}

type productReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
}

type imageStore interface {
	SaveCustomization(ctx context.Context, userID, productID int64, kind string, img storage.Image) (string, error)
}

type imageGenerator interface {
	Generate(ctx context.Context, prompt string) ([]byte, error)
}

func New(repo customizationRepo, products productReader, store imageStore, generator imageGenerator, logger logrus.FieldLogger) *Service {
	return &Service{
		repo:      repo,
		products:  products,
		store:     store,
		generator: generator,
		logger:    logging.OrDiscard(logger),
	}
}

type SaveInput struct {
	ProductID          int64                  `json:"product_id"`
	FinalImageDataURL  string                 `json:"final_image_data_url"`
	CanvasState        map[string]interface{} `json:"canvas_state"`
	SelectedAttributes map[string]interface{} `json:"selected_attributes"`
}

// Save stores the rendered image and records the design for the user.
func (s *Service) Save(ctx context.Context, userID int64, in SaveInput) (*domain.Customization, error) {
	if in.ProductID <= 0 {
		return nil, domain.Invalid("product_id", "required")
	}
	product, err := s.products.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, fmt.Errorf("product %d: %w", in.ProductID, err)
	}
	if !product.IsCustomizable {
		return nil, domain.Invalid("product_id", "product is not customizable")
	}
	img, err := storage.DecodeDataURL(in.FinalImageDataURL)
	if err != nil {
		return nil, err
	}

	url, err := s.store.SaveCustomization(ctx, userID, product.ID, "rendered", img)
	if err != nil {
		return nil, err
	}
	c, err := s.repo.Create(ctx, domain.Customization{
		UserID:             userID,
		ProductID:          product.ID,
		RenderedImageURL:   url,
		SelectedAttributes: in.SelectedAttributes,
		CanvasState:        in.CanvasState,
	})
	if err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{
		"user_id":          userID,
		"product_id":       product.ID,
		"customization_id": c.ID,
	}).Info("customization: saved")
	return c, nil
}

// Get reports designs of other users as not found.
func (s *Service) Get(ctx context.Context, userID, id int64) (*domain.Customization, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

func (s *Service) List(ctx context.Context, userID int64) ([]domain.Customization, error) {
	return s.repo.ListByUser(ctx, userID)
}

type GenerateInput struct {
	Prompt    string `json:"prompt"`
	Model     string `json:"model"`
	ProductID int64  `json:"product_id"`
}

// GenerateImage asks the provider for an image and stores it. It returns the image URL.
func (s *Service) GenerateImage(ctx context.Context, userID int64, in GenerateInput) (string, error) {
	prompt := strings.TrimSpace(in.Prompt)
	if prompt == "" {
		return "", domain.Invalid("prompt", "required")
	}
	model := strings.ToLower(strings.TrimSpace(in.Model))
	if model == "" {
		model = "openai"
	}
	if model != "openai" {
		return "", domain.Invalid("model", fmt.Sprintf("unsupported AI model: %s", in.Model))
	}

	data, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Warn("customization: image generation failed")
		return "", err
	}
	url, err := s.store.SaveCustomization(ctx, userID, in.ProductID, "ai_"+model, storage.Image{Data: data, Ext: "png"})
	if err != nil {
		return "", err
	}
	s.logger.WithFields(logrus.Fields{"user_id": userID, "model": model}).Info("customization: image generated")
	return url, nil
}
