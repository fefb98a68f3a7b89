package migration

import "embed"

const migrationsDir = "migrations"

// Migrations are written in the SQL subset shared by PostgreSQL and SQLite.
//
//go:embed migrations/*.up.sql
var embeddedMigrations embed.FS
