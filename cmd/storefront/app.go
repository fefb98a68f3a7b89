package main

import (
	"context"
	"time"

	"github.com/JohnConnorCode/kivett-bednar-sub000/internal/audit"
	"github.com/JohnConnorCode/kivett-bednar-sub000/internal/catalog"
	"github.com/JohnConnorCode/kivett-bednar-sub000/internal/checkout"
	"github.com/JohnConnorCode/kivett-bednar-sub000/internal/clock"
	"github.com/JohnConnorCode/kivett-bednar-sub000/internal/config"
	"github.com/JohnConnorCode/kivett-bednar-sub000/internal/events"
	"github.com/JohnConnorCode/kivett-bednar-sub000/internal/fulfillment"
	"github.com/JohnConnorCode/kivett-bednar-sub000/internal/locks"
	"github.com/JohnConnorCode/kivett-bednar-sub000/internal/migration"
	"github.com/JohnConnorCode/kivett-bednar-sub000/internal/observability/logger"
	"github.com/JohnConnorCode/kivett-bednar-sub000/internal/observability/metrics"
	"github.com/JohnConnorCode/kivett-bednar-sub000/internal/order"
	"github.com/JohnConnorCode/kivett-bednar-sub000/internal/payment"
	"github.com/JohnConnorCode/kivett-bednar-sub000/pkg/db"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}

// coreModules wires everything except the HTTP server.
func coreModules() fx.Option {
	return fx.Options(
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		metrics.Module,
		events.Module,
		locks.Module,
		audit.Module,
		catalog.Module,
		order.Module,
		payment.Module,
		fulfillment.Module,
		checkout.Module,
	)
}

func migrateOnStart() fx.Option {
	return fx.Invoke(func(lc fx.Lifecycle, conn *gorm.DB, cfg config.Config, log *zap.Logger) {
		if !cfg.Database.AutoMigrate {
			return
		}
		lc.Append(fx.StartHook(func(ctx context.Context) error {
			log.Info("applying migrations", zap.String("driver", cfg.Database.Driver))
			return migration.Run(ctx, conn, cfg.Database.Driver)
		}))
	})
}

// runApp starts a short-lived fx app, fills targets and stops it when fn returns.
func runApp(ctx context.Context, fn func() error, targets ...any) error {
	app := fx.New(
		coreModules(),
		migrateOnStart(),
		fx.NopLogger,
		fx.Populate(targets...),
	)
	if err := app.Start(ctx); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = app.Stop(stopCtx)
	}()
	return fn()
}
