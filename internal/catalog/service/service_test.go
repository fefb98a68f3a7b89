package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/JohnConnorCode/kivett-bednar-sub000/internal/catalog/domain"
	"github.com/JohnConnorCode/kivett-bednar-sub000/internal/catalog/repository"
	"github.com/JohnConnorCode/kivett-bednar-sub000/internal/config"
	"github.com/JohnConnorCode/kivett-bednar-sub000/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db := testutil.OpenSQLite(t)
	var cfg config.Config
	cfg.Catalog.CacheTTL = time.Minute
	svc := NewService(ServiceParam{
		DB:     db,
		Log:    zap.NewNop(),
		Repo:   repository.Provide(),
		Config: cfg,
	})
	return svc.(*Service), db
}

const catalogYAML = `
products:
  - id: prod_tee
    slug: Tour-Tee
    title: Tour Tee
    price: 2500
    currency: usd
    gelato_product_uid: apparel_tee_black
    print_areas:
      - name: front
        image_url: https://cdn.example.com/tee-front.png
      - name: back
  - slug: poster
    title: Poster
    price: 1500
`

func TestImportAndGetBySlug(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	products, err := DecodeImport(strings.NewReader(catalogYAML))
	require.NoError(t, err)
	require.Len(t, products, 2)

	n, err := svc.Import(ctx, products)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	tee, err := svc.GetBySlug(ctx, "tour-tee")
	require.NoError(t, err)
	assert.Equal(t, "prod_tee", tee.ID)
	assert.Equal(t, "USD", tee.Currency)
	assert.Equal(t, "apparel_tee_black", tee.GelatoProductUID)
	assert.Equal(t, []domain.PrintArea{
		{Name: "front", ImageURL: "https://cdn.example.com/tee-front.png"},
		{Name: "back", ImageURL: ""},
	}, tee.PrintAreas)

	poster, err := svc.GetBySlug(ctx, "poster")
	require.NoError(t, err)
	assert.Equal(t, "poster", poster.ID)
	assert.Empty(t, poster.GelatoProductUID)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestGetBySlugNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.GetBySlug(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	_, err = svc.GetBySlug(context.Background(), "  ")
	assert.ErrorIs(t, err, domain.ErrInvalidSlug)
}

func TestGetBySlugServesFromCache(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	_, err := svc.Import(ctx, []domain.Product{{Slug: "mug", Title: "Mug", GelatoProductUID: "mug_11oz"}})
	require.NoError(t, err)

	first, err := svc.GetBySlug(ctx, "mug")
	require.NoError(t, err)

	require.NoError(t, db.Exec(`UPDATE catalog_products SET gelato_product_uid = 'mug_15oz' WHERE slug = 'mug'`).Error)

	cached, err := svc.GetBySlug(ctx, "mug")
	require.NoError(t, err)
	assert.Equal(t, first.GelatoProductUID, cached.GelatoProductUID)

	// Import purges the cache.
	_, err = svc.Import(ctx, []domain.Product{{Slug: "mug", Title: "Mug", GelatoProductUID: "mug_20oz"}})
	require.NoError(t, err)
	fresh, err := svc.GetBySlug(ctx, "mug")
	require.NoError(t, err)
	assert.Equal(t, "mug_20oz", fresh.GelatoProductUID)
}

func TestImportValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Import(ctx, []domain.Product{{Slug: "", Title: "x"}})
	assert.ErrorIs(t, err, domain.ErrInvalidSlug)

	_, err = svc.Import(ctx, []domain.Product{{Slug: "x", Title: " "}})
	assert.ErrorIs(t, err, domain.ErrInvalidTitle)

	_, err = svc.Import(ctx, []domain.Product{{Slug: "x", Title: "X"}, {Slug: "X", Title: "Y"}})
	assert.ErrorIs(t, err, domain.ErrDuplicateSlug)
}

func TestDecodeImportRejectsUnknownFields(t *testing.T) {
	_, err := DecodeImport(strings.NewReader("products:\n  - slug: a\n    colour: red\n"))
	assert.Error(t, err)

	products, err := DecodeImport(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, products)
}
