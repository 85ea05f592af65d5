package di

import (
	"go.uber.org/fx"

	"github.com/polkiloo/storefront/internal/adapter/email"
	"github.com/polkiloo/storefront/internal/adapter/payments"
	"github.com/polkiloo/storefront/internal/app"
	"github.com/polkiloo/storefront/internal/config"
	"github.com/polkiloo/storefront/internal/logger"
	"github.com/polkiloo/storefront/internal/metrics"
	"github.com/polkiloo/storefront/internal/pkg/auth"
	"github.com/polkiloo/storefront/internal/pkg/invoicepdf"
	"github.com/polkiloo/storefront/internal/pkg/ratelimit"
	"github.com/polkiloo/storefront/internal/server/http/handlers"
	"github.com/polkiloo/storefront/internal/server/http/router"
	"github.com/polkiloo/storefront/internal/storage/postgres"
	"github.com/polkiloo/storefront/internal/usecase"
)

// Core wires everything the store facade needs: configuration, storage,
// external gateways and use cases. It starts no servers or workers.
func Core(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		metrics.Module,
		auth.Module,
		postgres.Module,
		payments.Module,
		email.Module,
		fx.Provide(
			func() *invoicepdf.Renderer { return invoicepdf.New(invoicepdf.DefaultSeller) },
			func(m *metrics.Metrics) usecase.ReconcileObserver { return m },
			func(s *postgres.Storage) app.HealthChecker { return s },
		),
		usecase.Module,
		app.FacadeModule,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}

// Module composes the full storefront: Core plus rate limiting, the HTTP
// router and server, and the session sweeper.
func Module(opts ...fx.Option) fx.Option {
	return Core(append([]fx.Option{
		ratelimit.Module,
		fx.Provide(func(f *app.StoreFacade) handlers.StoreFacade { return f }),
		router.Module,
		app.RuntimeModule,
	}, opts...)...)
}
