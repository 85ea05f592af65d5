package payments

import (
	"go.uber.org/fx"

	"github.com/polkiloo/storefront/internal/config"
	"github.com/polkiloo/storefront/internal/domain/gateway"
)

// Module provides the Stripe-backed payment and customer gateways.
var Module = fx.Provide(
	newFromConfig,
	func(s *Stripe) gateway.PaymentGateway { return s },
	func(s *Stripe) gateway.CustomerGateway { return s },
)

func newFromConfig(cfg *config.Config) *Stripe {
	return NewStripe(cfg.StripeSecretKey)
}
