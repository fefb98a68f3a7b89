package metrics

import (
	"github.com/JohnConnorCode/kivett-bednar-sub000/internal/config"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

var Module = fx.Module("metrics",
	fx.Provide(NewMeterProvider),
	fx.Provide(func(cfg config.Config) (*ReconcileMetrics, error) {
		return NewReconcileMetrics(prometheus.DefaultRegisterer, cfg)
	}),
	fx.Provide(NewHTTPMetrics),
)
