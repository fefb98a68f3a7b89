package migration

import (
	"context"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestEmbeddedMigrationsPresent(t *testing.T) {
	names, err := fs.Glob(embeddedMigrations, "migrations/*.up.sql")
	require.NoError(t, err)
	require.NotEmpty(t, names)
}

func TestApplyEmbeddedIsRepeatable(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:migration_test?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, ApplyEmbedded(context.Background(), db))
	require.NoError(t, ApplyEmbedded(context.Background(), db))

	for _, table := range []string{"catalog_products", "catalog_print_areas", "orders", "order_events", "audit_logs"} {
		require.True(t, db.Migrator().HasTable(table), table)
	}
}
