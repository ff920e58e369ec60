package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/logging"
	"storefront/internal/service/product"

	"github.com/sirupsen/logrus"
)

type ProductWriter interface {
	Upsert(ctx context.Context, p domain.Product) (*domain.Product, error)
}

type CategoryWriter interface {
	Upsert(ctx context.Context, c domain.Category) (*domain.Category, error)
}

// CSVImporter reads catalog CSV exports and upserts products by slug.
//
// Expected headers: name, slug, description, price, stock, category, status,
// customizable, featured, image. A row with only an image continues the product above it.
type CSVImporter struct {
	reader     *csv.Reader
	products   ProductWriter
	categories CategoryWriter
	logger     logrus.FieldLogger

	categoryIDs map[string]int64
}

func NewCSVImporter(r io.Reader, products ProductWriter, categories CategoryWriter, logger logrus.FieldLogger) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{
		reader:      csvr,
		products:    products,
		categories:  categories,
		logger:      logging.OrDiscard(logger),
		categoryIDs: map[string]int64{},
	}
}

type csvRow struct {
	line         int
	Name         string
	Slug         string
	Desc         string
	Price        string
	Stock        string
	Category     string
	Status       string
	Customizable string
	Featured     string
	Images       []string
}

// Run parses CSV rows and upserts one product per named row.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	if _, ok := index["name"]; !ok {
		return 0, errors.New("read headers: missing name column")
	}

	var (
		current  *csvRow
		imported int
		line     = 1
	)

	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}
		line++

		row := parseRow(record, index)
		if row == nil {
			continue
		}
		row.line = line

		if row.Name != "" {
			if current != nil {
				if err := i.save(ctx, current); err != nil {
					return imported, err
				}
				imported++
			}
			current = row
			continue
		}

		// Continuation rows (images) belong to the current product.
		if current != nil {
			current.Images = append(current.Images, row.Images...)
		}
	}

	if current != nil {
		if err := i.save(ctx, current); err != nil {
			return imported, err
		}
		imported++
	}

	i.logger.WithFields(logrus.Fields{"products": imported, "categories": len(i.categoryIDs)}).Info("importer: done")
	return imported, nil
}

func (i *CSVImporter) save(ctx context.Context, row *csvRow) error {
	p, err := row.toProduct()
	if err != nil {
		return fmt.Errorf("line %d: %w", row.line, err)
	}
	if row.Category != "" {
		id, err := i.categoryID(ctx, row.Category)
		if err != nil {
			return fmt.Errorf("line %d: upsert category %q: %w", row.line, row.Category, err)
		}
		p.CategoryID = &id
	}

	saved, err := i.products.Upsert(ctx, p)
	if err != nil {
		return fmt.Errorf("line %d: upsert product %q: %w", row.line, p.Slug, err)
	}
	i.logger.WithFields(logrus.Fields{"slug": saved.Slug, "product_id": saved.ID}).Debug("importer: product upserted")
	return nil
}

func (i *CSVImporter) categoryID(ctx context.Context, name string) (int64, error) {
	slug := product.Slugify(name)
	if id, ok := i.categoryIDs[slug]; ok {
		return id, nil
	}
	c, err := i.categories.Upsert(ctx, domain.Category{Name: name, Slug: slug, IsActive: true})
	if err != nil {
		return 0, err
	}
	i.categoryIDs[slug] = c.ID
	return c.ID, nil
}

func (r *csvRow) toProduct() (domain.Product, error) {
	price, err := domain.ParseMoney(r.Price)
	if err != nil || price < 0 {
		return domain.Product{}, fmt.Errorf("invalid price %q for %q", r.Price, r.Name)
	}
	stock := 0
	if r.Stock != "" {
		stock, err = strconv.Atoi(r.Stock)
		if err != nil || stock < 0 {
			return domain.Product{}, fmt.Errorf("invalid stock %q for %q", r.Stock, r.Name)
		}
	}
	status := domain.ProductPublished
	if r.Status != "" {
		status = domain.ProductStatus(strings.ToLower(r.Status))
		if !status.Valid() {
			return domain.Product{}, fmt.Errorf("invalid status %q for %q", r.Status, r.Name)
		}
	}
	slug := r.Slug
	if slug == "" {
		slug = product.Slugify(r.Name)
	}
	if slug == "" {
		return domain.Product{}, fmt.Errorf("cannot derive slug for %q", r.Name)
	}
	images := r.Images
	if images == nil {
		images = []string{}
	}
	return domain.Product{
		Name:           r.Name,
		Slug:           slug,
		Description:    r.Desc,
		Price:          price,
		Stock:          stock,
		Status:         status,
		IsCustomizable: parseBool(r.Customizable),
		IsFeatured:     parseBool(r.Featured),
		Images:         images,
		Attributes:     map[string]interface{}{},
	}, nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

func parseRow(record []string, index map[string]int) *csvRow {
	row := &csvRow{
		Name:         pick(record, index, "name"),
		Slug:         pick(record, index, "slug"),
		Desc:         pick(record, index, "description"),
		Price:        pick(record, index, "price"),
		Stock:        pick(record, index, "stock"),
		Category:     pick(record, index, "category"),
		Status:       pick(record, index, "status"),
		Customizable: pick(record, index, "customizable"),
		Featured:     pick(record, index, "featured"),
	}
	for _, u := range strings.Split(pick(record, index, "image"), ";") {
		if u = strings.TrimSpace(u); u != "" {
			row.Images = append(row.Images, u)
		}
	}
	if row.Name == "" && len(row.Images) == 0 {
		return nil
	}
	return row
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}

func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "1", "true", "yes", "y":
		return true
	}
	return false
}
