package main

import (
	"fmt"
	"os"

	"github.com/JohnConnorCode/kivett-bednar-sub000/internal/config"
	"github.com/JohnConnorCode/kivett-bednar-sub000/internal/migration"
	"github.com/JohnConnorCode/kivett-bednar-sub000/pkg/db"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply content store migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(os.Getenv(config.EnvConfigPath))
			if err != nil {
				return err
			}
			conn, err := db.Open(cfg.Database)
			if err != nil {
				return err
			}
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			defer sqlDB.Close()

			if err := migration.Run(cmd.Context(), conn, cfg.Database.Driver); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}
