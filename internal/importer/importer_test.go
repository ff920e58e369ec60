package importer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"storefront/internal/domain"
)

type stubProductRepo struct {
	items []domain.Product
	err   error
}

type stubCategoryRepo struct {
	items []domain.Category
}

func (s *stubProductRepo) Upsert(_ context.Context, p domain.Product) (*domain.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	p.ID = int64(len(s.items) + 1)
	s.items = append(s.items, p)
	return &p, nil
}

func (s *stubCategoryRepo) Upsert(_ context.Context, c domain.Category) (*domain.Category, error) {
	c.ID = int64(len(s.items) + 10)
	s.items = append(s.items, c)
	return &c, nil
}

func TestCSVImporter_Run(t *testing.T) {
	csvData := `name,slug,description,price,stock,category,status,customizable,featured,image
Classic Tee,,Soft cotton,19.99,40,Apparel,,true,yes,https://example.com/tee-front.jpg
,,,,,,,,,https://example.com/tee-back.jpg
Logo Mug,logo-mug,Ceramic,12.5,0,Home Goods,draft,,,
Hoodie,,,45,5,Apparel,,,,`

	repo := &stubProductRepo{}
	catRepo := &stubCategoryRepo{}
	imp := NewCSVImporter(strings.NewReader(csvData), repo, catRepo, nil)

	count, err := imp.Run(context.Background())
	if err != nil {
		t.Fatalf("import run: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 products imported, got %d", count)
	}

	tee := repo.items[0]
	if tee.Slug != "classic-tee" || tee.Price != 1999 || tee.Stock != 40 || tee.Status != domain.ProductPublished {
		t.Fatalf("unexpected product data: %+v", tee)
	}
	if !tee.IsCustomizable || !tee.IsFeatured {
		t.Fatalf("expected customizable featured tee, got %+v", tee)
	}
	if len(tee.Images) != 2 {
		t.Fatalf("expected 2 images on first product, got %v", tee.Images)
	}

	mug := repo.items[1]
	if mug.Slug != "logo-mug" || mug.Price != 1250 || mug.Status != domain.ProductDraft {
		t.Fatalf("unexpected mug: %+v", mug)
	}
	if mug.Images == nil {
		t.Fatalf("expected non-nil images")
	}

	if len(catRepo.items) != 2 {
		t.Fatalf("expected 2 category upserts, got %d", len(catRepo.items))
	}
	if catRepo.items[1].Slug != "home-goods" {
		t.Fatalf("expected slugged category, got %q", catRepo.items[1].Slug)
	}
	if *repo.items[0].CategoryID != *repo.items[2].CategoryID {
		t.Fatalf("expected products in the same category to share an id")
	}
}

func TestCSVImporter_InvalidRows(t *testing.T) {
	cases := map[string]string{
		"bad price":  "name,price\nTee,abc",
		"fractional": "name,price\nTee,1.005",
		"bad stock":  "name,price,stock\nTee,1,-2",
		"bad status": "name,price,status\nTee,1,deleted",
	}
	for name, data := range cases {
		repo := &stubProductRepo{}
		imp := NewCSVImporter(strings.NewReader(data), repo, &stubCategoryRepo{}, nil)
		if _, err := imp.Run(context.Background()); err == nil || !strings.Contains(err.Error(), "line 2") {
			t.Fatalf("%s: expected line-tagged error, got %v", name, err)
		}
		if len(repo.items) != 0 {
			t.Fatalf("%s: expected nothing saved", name)
		}
	}
}

func TestCSVImporter_MissingNameColumn(t *testing.T) {
	imp := NewCSVImporter(strings.NewReader("slug,price\ntee,1"), &stubProductRepo{}, &stubCategoryRepo{}, nil)
	if _, err := imp.Run(context.Background()); err == nil {
		t.Fatalf("expected header error")
	}
}

func TestCSVImporter_RepoError(t *testing.T) {
	boom := errors.New("boom")
	repo := &stubProductRepo{err: boom}
	imp := NewCSVImporter(strings.NewReader("name,price\nTee,1\nMug,2"), repo, &stubCategoryRepo{}, nil)
	count, err := imp.Run(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped repo error, got %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 imported, got %d", count)
	}
}
