package main

import (
	"github.com/JohnConnorCode/kivett-bednar-sub000/internal/config"
	"github.com/JohnConnorCode/kivett-bednar-sub000/internal/events"
	"github.com/JohnConnorCode/kivett-bednar-sub000/internal/observability/tracing"
	"github.com/JohnConnorCode/kivett-bednar-sub000/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service (webhooks, admin API, health, metrics) and the order event relay",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fx.New(
				coreModules(),
				tracing.Module,
				fx.Invoke(func(cfg config.Config) error {
					return cfg.Validate()
				}),
				migrateOnStart(),
				server.Module,
				events.RelayModule,
				fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
					return &fxevent.ZapLogger{Logger: log.Named("fx")}
				}),
			)
			if err := app.Err(); err != nil {
				return err
			}
			app.Run()
			return nil
		},
	}
}
