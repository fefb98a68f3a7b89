package migration

import (
	"context"
	"io/fs"
	"path"
	"sort"

	"gorm.io/gorm"
)

// ApplyEmbedded executes every embedded up migration in order through db.
// It is used for SQLite deployments and tests, where golang-migrate's
// PostgreSQL driver does not apply.
func ApplyEmbedded(ctx context.Context, db *gorm.DB) error {
	names, err := fs.Glob(embeddedMigrations, path.Join(migrationsDir, "*.up.sql"))
	if err != nil {
		return err
	}
	sort.Strings(names)
	for _, name := range names {
		body, err := embeddedMigrations.ReadFile(name)
		if err != nil {
			return err
		}
		if err := db.WithContext(ctx).Exec(string(body)).Error; err != nil {
			return err
		}
	}
	return nil
}

// Run applies migrations with the strategy matching the database driver.
func Run(ctx context.Context, db *gorm.DB, driver string) error {
	if driver == "sqlite" {
		return ApplyEmbedded(ctx, db)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return RunMigrations(sqlDB)
}
