package payment

import (
	"github.com/JohnConnorCode/kivett-bednar-sub000/internal/config"
	"github.com/JohnConnorCode/kivett-bednar-sub000/internal/payment/adapters/stripe"
	"github.com/JohnConnorCode/kivett-bednar-sub000/internal/payment/domain"
	"go.uber.org/fx"
)

var Module = fx.Module("payment.service",
	fx.Provide(func(cfg config.Config) domain.WebhookVerifier {
		return stripe.NewVerifier(cfg.Stripe.WebhookSecret)
	}),
	fx.Provide(func(cfg config.Config) domain.Gateway {
		return stripe.NewGateway(cfg.Stripe.SecretKey)
	}),
)
