package customization

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"storefront/internal/domain"
	"storefront/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRepo struct {
	items      map[int64]domain.Customization
	lastCreate domain.Customization
}

func (s *stubRepo) Create(_ context.Context, c domain.Customization) (*domain.Customization, error) {
	s.lastCreate = c
	c.ID = 42
	return &c, nil
}

func (s *stubRepo) GetByID(_ context.Context, id int64) (*domain.Customization, error) {
	c, ok := s.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

func (s *stubRepo) ListByUser(_ context.Context, _ int64) ([]domain.Customization, error) {
	return nil, nil
}

type stubProducts map[int64]domain.Product

func (s stubProducts) GetByID(_ context.Context, id int64) (*domain.Product, error) {
	p, ok := s[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

type stubStore struct {
	lastKind    string
	lastProduct int64
	lastImage   storage.Image
	saves       int
}

func (s *stubStore) SaveCustomization(_ context.Context, _, productID int64, kind string, img storage.Image) (string, error) {
	s.saves++
	s.lastKind = kind
	s.lastProduct = productID
	s.lastImage = img
	return "http://files.test/" + kind + "." + img.Ext, nil
}

type stubGenerator struct {
	data []byte
	err  error
}

func (s stubGenerator) Generate(_ context.Context, _ string) ([]byte, error) {
	return s.data, s.err
}

func newService(gen stubGenerator) (*Service, *stubRepo, *stubStore) {
	repo := &stubRepo{items: map[int64]domain.Customization{5: {ID: 5, UserID: 1, ProductID: 2}}}
	products := stubProducts{
		2: {ID: 2, IsCustomizable: true},
		3: {ID: 3},
	}
	store := &stubStore{}
	return New(repo, products, store, gen, nil), repo, store
}

func dataURL(b string) string {
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString([]byte(b))
}

func TestSave(t *testing.T) {
	svc, repo, store := newService(stubGenerator{})
	c, err := svc.Save(context.Background(), 1, SaveInput{
		ProductID:          2,
		FinalImageDataURL:  dataURL("img"),
		SelectedAttributes: map[string]interface{}{"size": "M"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), c.ID)
	assert.Equal(t, "http://files.test/rendered.jpg", repo.lastCreate.RenderedImageURL)
	assert.Equal(t, "M", repo.lastCreate.SelectedAttributes["size"])
	assert.Equal(t, []byte("img"), store.lastImage.Data)
}

func TestSaveRejects(t *testing.T) {
	svc, _, store := newService(stubGenerator{})
	ctx := context.Background()

	_, err := svc.Save(ctx, 1, SaveInput{ProductID: 9, FinalImageDataURL: dataURL("x")})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Save(ctx, 1, SaveInput{ProductID: 3, FinalImageDataURL: dataURL("x")})
	assert.True(t, domain.IsValidation(err))

	_, err = svc.Save(ctx, 1, SaveInput{ProductID: 2, FinalImageDataURL: "not a data url"})
	assert.True(t, domain.IsValidation(err))

	assert.Zero(t, store.saves)
}

func TestGetHidesForeign(t *testing.T) {
	svc, _, _ := newService(stubGenerator{})
	_, err := svc.Get(context.Background(), 1, 5)
	require.NoError(t, err)
	_, err = svc.Get(context.Background(), 2, 5)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGenerateImage(t *testing.T) {
	svc, _, store := newService(stubGenerator{data: []byte("png")})
	url, err := svc.GenerateImage(context.Background(), 1, GenerateInput{Prompt: "fox", Model: "OpenAI"})
	require.NoError(t, err)
	assert.Equal(t, "http://files.test/ai_openai.png", url)
	assert.Zero(t, store.lastProduct)

	_, err = svc.GenerateImage(context.Background(), 1, GenerateInput{Prompt: "fox", Model: "deepai"})
	assert.True(t, domain.IsValidation(err))
	_, err = svc.GenerateImage(context.Background(), 1, GenerateInput{Prompt: " "})
	assert.True(t, domain.IsValidation(err))
}

func TestGenerateImagePropagatesProviderError(t *testing.T) {
	boom := errors.New("provider down")
	svc, _, store := newService(stubGenerator{err: boom})
	_, err := svc.GenerateImage(context.Background(), 1, GenerateInput{Prompt: "fox"})
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, store.saves)
}
