package service

import (
	"errors"
	"fmt"
	"io"

	"github.com/JohnConnorCode/kivett-bednar-sub000/internal/catalog/domain"
	"gopkg.in/yaml.v3"
)

type importFile struct {
	Products []importProduct `yaml:"products"`
}

type importProduct struct {
	ID               string            `yaml:"id"`
	Slug             string            `yaml:"slug"`
	Title            string            `yaml:"title"`
	Price            int64             `yaml:"price"`
	Currency         string            `yaml:"currency"`
	GelatoProductUID string            `yaml:"gelato_product_uid"`
	ImageURL         string            `yaml:"image_url"`
	PrintAreas       []importPrintArea `yaml:"print_areas"`
}

type importPrintArea struct {
	Name     string `yaml:"name"`
	ImageURL string `yaml:"image_url"`
}

// DecodeImport reads a catalog YAML document with a top-level products list.
func DecodeImport(r io.Reader) ([]domain.Product, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var file importFile
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return []domain.Product{}, nil
		}
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	products := make([]domain.Product, 0, len(file.Products))
	for _, p := range file.Products {
		product := domain.Product{
			ID:               p.ID,
			Slug:             p.Slug,
			Title:            p.Title,
			Price:            p.Price,
			Currency:         p.Currency,
			GelatoProductUID: p.GelatoProductUID,
			ImageURL:         p.ImageURL,
		}
		for _, area := range p.PrintAreas {
			product.PrintAreas = append(product.PrintAreas, domain.PrintArea{Name: area.Name, ImageURL: area.ImageURL})
		}
		products = append(products, product)
	}
	return products, nil
}
