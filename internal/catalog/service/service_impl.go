package service

import (
	"context"
	"strings"
	"time"

	"github.com/JohnConnorCode/kivett-bednar-sub000/internal/cache"
	"github.com/JohnConnorCode/kivett-bednar-sub000/internal/catalog/domain"
	"github.com/JohnConnorCode/kivett-bednar-sub000/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	Repo   domain.Repository
	Config config.Config
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo domain.Repository

	cache    cache.Cache[string, domain.Product]
	cacheTTL time.Duration
}

func NewService(p ServiceParam) domain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("catalog.service"),
		repo: p.Repo,

		cache:    cache.New[string, domain.Product](p.Config.Catalog.CacheTTL),
		cacheTTL: p.Config.Catalog.CacheTTL,
	}
}

func (s *Service) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	slug = normalizeSlug(slug)
	if slug == "" {
		return nil, domain.ErrInvalidSlug
	}

	if cached, ok := s.cache.Get(slug); ok {
		product := cached
		return &product, nil
	}

	product, err := s.repo.FindBySlug(ctx, s.db, slug)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}
	s.cache.Set(slug, *product, s.cacheTTL)
	return product, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Product, error) {
	return s.repo.List(ctx, s.db)
}

// Import upserts every product in one transaction and returns how many were written.
func (s *Service) Import(ctx context.Context, products []domain.Product) (int, error) {
	normalized := make([]domain.Product, 0, len(products))
	seen := make(map[string]struct{}, len(products))
	for _, product := range products {
		product, err := normalizeProduct(product)
		if err != nil {
			return 0, err
		}
		if _, dup := seen[product.Slug]; dup {
			return 0, domain.ErrDuplicateSlug
		}
		seen[product.Slug] = struct{}{}
		normalized = append(normalized, product)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, product := range normalized {
			if err := s.repo.Upsert(ctx, tx, product); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.cache.Purge()
	s.log.Info("catalog imported", zap.Int("products", len(normalized)))
	return len(normalized), nil
}

func normalizeProduct(p domain.Product) (domain.Product, error) {
	p.Slug = normalizeSlug(p.Slug)
	if p.Slug == "" {
		return p, domain.ErrInvalidSlug
	}
	p.Title = strings.TrimSpace(p.Title)
	if p.Title == "" {
		return p, domain.ErrInvalidTitle
	}
	p.ID = strings.TrimSpace(p.ID)
	if p.ID == "" {
		p.ID = p.Slug
	}
	p.Currency = strings.ToUpper(strings.TrimSpace(p.Currency))
	if p.Currency == "" {
		p.Currency = "USD"
	}
	p.GelatoProductUID = strings.TrimSpace(p.GelatoProductUID)
	p.ImageURL = strings.TrimSpace(p.ImageURL)

	areas := make([]domain.PrintArea, 0, len(p.PrintAreas))
	for _, area := range p.PrintAreas {
		name := strings.TrimSpace(area.Name)
		if name == "" {
			continue
		}
		areas = append(areas, domain.PrintArea{Name: name, ImageURL: strings.TrimSpace(area.ImageURL)})
	}
	p.PrintAreas = areas
	return p, nil
}

func normalizeSlug(slug string) string {
	return strings.ToLower(strings.TrimSpace(slug))
}
