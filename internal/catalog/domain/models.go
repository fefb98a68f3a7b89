package domain

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// Product is the authoritative catalog entry a checkout line item resolves to.
type Product struct {
	ID               string
	Slug             string
	Title            string
	Price            int64
	Currency         string
	GelatoProductUID string
	ImageURL         string
	PrintAreas       []PrintArea
}

// PrintArea is a named artwork slot; ImageURL is empty when no artwork is attached.
type PrintArea struct {
	Name     string
	ImageURL string
}

type Repository interface {
	FindBySlug(ctx context.Context, db *gorm.DB, slug string) (*Product, error)
	Upsert(ctx context.Context, db *gorm.DB, product Product) error
	List(ctx context.Context, db *gorm.DB) ([]Product, error)
}

type Service interface {
	GetBySlug(ctx context.Context, slug string) (*Product, error)
	Import(ctx context.Context, products []Product) (int, error)
	List(ctx context.Context) ([]Product, error)
}

var (
	ErrProductNotFound = errors.New("product_not_found")
	ErrInvalidSlug     = errors.New("invalid_slug")
	ErrInvalidTitle    = errors.New("invalid_title")
	ErrDuplicateSlug   = errors.New("duplicate_slug")
)
