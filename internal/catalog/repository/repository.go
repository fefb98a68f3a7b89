package repository

import (
	"context"
	"time"

	"github.com/JohnConnorCode/kivett-bednar-sub000/internal/catalog/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

type productRow struct {
	ID               string `gorm:"column:id"`
	Slug             string `gorm:"column:slug"`
	Title            string `gorm:"column:title"`
	Price            int64  `gorm:"column:price"`
	Currency         string `gorm:"column:currency"`
	GelatoProductUID string `gorm:"column:gelato_product_uid"`
	ImageURL         string `gorm:"column:image_url"`
}

type printAreaRow struct {
	ProductID string `gorm:"column:product_id"`
	Name      string `gorm:"column:name"`
	ImageURL  string `gorm:"column:image_url"`
}

func (r *repo) FindBySlug(ctx context.Context, db *gorm.DB, slug string) (*domain.Product, error) {
	var rows []productRow
	if err := db.WithContext(ctx).Raw(
		`SELECT id, slug, title, price, currency, gelato_product_uid, image_url
		 FROM catalog_products
		 WHERE slug = ?
		 LIMIT 1`,
		slug,
	).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	product := toProduct(rows[0])
	areas, err := r.printAreas(ctx, db, []string{product.ID})
	if err != nil {
		return nil, err
	}
	product.PrintAreas = areas[product.ID]
	return &product, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]domain.Product, error) {
	var rows []productRow
	if err := db.WithContext(ctx).Raw(
		`SELECT id, slug, title, price, currency, gelato_product_uid, image_url
		 FROM catalog_products
		 ORDER BY slug ASC`,
	).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []domain.Product{}, nil
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	areas, err := r.printAreas(ctx, db, ids)
	if err != nil {
		return nil, err
	}

	products := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		product := toProduct(row)
		product.PrintAreas = areas[product.ID]
		products = append(products, product)
	}
	return products, nil
}

// Upsert replaces the product row and its print areas.
func (r *repo) Upsert(ctx context.Context, db *gorm.DB, product domain.Product) error {
	now := time.Now().UTC()
	if err := db.WithContext(ctx).Exec(
		`INSERT INTO catalog_products (id, slug, title, price, currency, gelato_product_uid, image_url, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		   slug = excluded.slug,
		   title = excluded.title,
		   price = excluded.price,
		   currency = excluded.currency,
		   gelato_product_uid = excluded.gelato_product_uid,
		   image_url = excluded.image_url,
		   updated_at = excluded.updated_at`,
		product.ID,
		product.Slug,
		product.Title,
		product.Price,
		product.Currency,
		product.GelatoProductUID,
		product.ImageURL,
		now,
		now,
	).Error; err != nil {
		return err
	}

	if err := db.WithContext(ctx).Exec(
		`DELETE FROM catalog_print_areas WHERE product_id = ?`,
		product.ID,
	).Error; err != nil {
		return err
	}

	for i, area := range product.PrintAreas {
		if err := db.WithContext(ctx).Exec(
			`INSERT INTO catalog_print_areas (product_id, position, name, image_url)
			 VALUES (?, ?, ?, ?)`,
			product.ID,
			i,
			area.Name,
			area.ImageURL,
		).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *repo) printAreas(ctx context.Context, db *gorm.DB, productIDs []string) (map[string][]domain.PrintArea, error) {
	var rows []printAreaRow
	if err := db.WithContext(ctx).Raw(
		`SELECT product_id, name, image_url
		 FROM catalog_print_areas
		 WHERE product_id IN ?
		 ORDER BY product_id ASC, position ASC`,
		productIDs,
	).Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make(map[string][]domain.PrintArea, len(productIDs))
	for _, row := range rows {
		out[row.ProductID] = append(out[row.ProductID], domain.PrintArea{
			Name:     row.Name,
			ImageURL: row.ImageURL,
		})
	}
	return out, nil
}

func toProduct(row productRow) domain.Product {
	return domain.Product{
		ID:               row.ID,
		Slug:             row.Slug,
		Title:            row.Title,
		Price:            row.Price,
		Currency:         row.Currency,
		GelatoProductUID: row.GelatoProductUID,
		ImageURL:         row.ImageURL,
	}
}
