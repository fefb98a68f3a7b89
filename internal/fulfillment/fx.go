package fulfillment

import (
	"github.com/JohnConnorCode/kivett-bednar-sub000/internal/config"
	"github.com/JohnConnorCode/kivett-bednar-sub000/internal/fulfillment/domain"
	"github.com/JohnConnorCode/kivett-bednar-sub000/internal/fulfillment/gelato"
	"github.com/JohnConnorCode/kivett-bednar-sub000/internal/observability/logger"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("fulfillment.client",
	fx.Provide(func(cfg config.Config, log *zap.Logger) domain.Client {
		log.Named("fulfillment.client").Info("gelato client configured",
			zap.String("base_url", cfg.Gelato.BaseURL),
			zap.String("api_key", logger.MaskAPIKey(cfg.Gelato.APIKey)),
			zap.Float64("requests_per_second", cfg.Gelato.RequestsPerSecond),
		)
		return gelato.NewClient(gelato.Config{
			BaseURL:           cfg.Gelato.BaseURL,
			APIKey:            cfg.Gelato.APIKey,
			RequestsPerSecond: cfg.Gelato.RequestsPerSecond,
			Timeout:           cfg.Gelato.Timeout,
		})
	}),
)
