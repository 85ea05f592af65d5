package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/storefront/internal/config"
	"github.com/polkiloo/storefront/internal/domain/gateway"
	"github.com/polkiloo/storefront/internal/usecase"
	"github.com/polkiloo/storefront/internal/worker"
)

// FacadeModule provides the store facade without any runtime components.
var FacadeModule = fx.Provide(newStoreFacade)

// RuntimeModule provides the HTTP server and the session sweeper and ties
// them to the fx lifecycle.
var RuntimeModule = fx.Options(
	fx.Provide(
		newHTTPServer,
		newSessionSweeper,
	),
	fx.Invoke(registerLifecycle),
)

type facadeParams struct {
	fx.In

	Auth          *usecase.AuthUseCase
	Catalog       *usecase.CatalogUseCase
	Checkout      *usecase.CheckoutUseCase
	Promos        *usecase.PromoUseCase
	Customers     *usecase.CustomerUseCase
	Reconcile     *usecase.ReconcileUseCase
	Orders        *usecase.OrderUseCase
	Invoices      *usecase.InvoiceUseCase
	Cancellations *usecase.CancellationUseCase
	Returns       *usecase.ReturnUseCase
	Reviews       *usecase.ReviewUseCase
	Marketing     *usecase.MarketingUseCase
	Payments      gateway.PaymentGateway
	Health        HealthChecker `optional:"true"`
}

func newStoreFacade(p facadeParams) *StoreFacade {
	return NewStoreFacade(UseCases{
		Auth:          p.Auth,
		Catalog:       p.Catalog,
		Checkout:      p.Checkout,
		Promos:        p.Promos,
		Customers:     p.Customers,
		Reconcile:     p.Reconcile,
		Orders:        p.Orders,
		Invoices:      p.Invoices,
		Cancellations: p.Cancellations,
		Returns:       p.Returns,
		Reviews:       p.Reviews,
		Marketing:     p.Marketing,
	}, p.Payments, p.Health)
}

type serverParams struct {
	fx.In

	Config *config.Config
	Router *gin.Engine
}

func newHTTPServer(p serverParams) *http.Server {
	return &http.Server{
		Addr:    p.Config.RunAddress,
		Handler: p.Router,
	}
}

type workerParams struct {
	fx.In

	Facade *StoreFacade
	Config *config.Config
	Logger *slog.Logger
}

func newSessionSweeper(p workerParams) *worker.SessionSweeper {
	return worker.NewSessionSweeper(
		p.Facade,
		p.Config.SweepInterval,
		p.Config.SweepLookback,
		p.Config.SweepBatchSize,
		p.Config.WorkerPoolSize,
		p.Logger,
	)
}

type lifecycleParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Logger     *slog.Logger
	Server     *http.Server
	Sweeper    *worker.SessionSweeper
	Config     *config.Config
}

func registerLifecycle(p lifecycleParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			p.Logger.Info("starting storefront", slog.String("addr", p.Server.Addr))
			p.Sweeper.Start(ctx)
			go func() {
				if err := p.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					p.Logger.Error("http server terminated", slog.String("error", err.Error()))
					_ = p.Shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			p.Sweeper.Stop()

			shutdownCtx := ctx
			cancel := func() {}
			if _, ok := ctx.Deadline(); !ok {
				shutdownCtx, cancel = context.WithTimeout(ctx, p.Config.ShutdownTimeout)
			}
			defer cancel()

			if err := p.Server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			p.Logger.Info("storefront stopped")
			return nil
		},
	})
}
