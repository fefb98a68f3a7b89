package order

import (
	"github.com/JohnConnorCode/kivett-bednar-sub000/internal/config"
	"github.com/JohnConnorCode/kivett-bednar-sub000/internal/order/receipt"
	"github.com/JohnConnorCode/kivett-bednar-sub000/internal/order/repository"
	"github.com/JohnConnorCode/kivett-bednar-sub000/internal/order/service"
	"go.uber.org/fx"
)

var Module = fx.Module("order.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
	fx.Provide(func(cfg config.Config) receipt.Renderer {
		return receipt.NewRenderer(receipt.Branding{
			StoreName: cfg.Receipt.StoreName,
			LogoURL:   cfg.Receipt.LogoURL,
			Footer:    cfg.Receipt.Footer,
		})
	}),
)
