// Package apptest assembles a StoreFacade over in-memory stores for HTTP tests.
package apptest

import (
	"context"
	"io"
	"log/slog"

	"github.com/polkiloo/storefront/internal/app"
	"github.com/polkiloo/storefront/internal/config"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/pkg/invoicepdf"
	testhelpers "github.com/polkiloo/storefront/internal/test"
	"github.com/polkiloo/storefront/internal/usecase"
)

// Store keeps every stub behind the facade reachable from tests.
type Store struct {
	Users         *testhelpers.UserRepositoryStub
	Products      *testhelpers.ProductRepositoryStub
	Orders        *testhelpers.OrderRepositoryStub
	Invoices      *testhelpers.InvoiceRepositoryStub
	Promos        *testhelpers.PromoCodeRepositoryStub
	Reviews       *testhelpers.ReviewRepositoryStub
	Cancellations *testhelpers.CancellationRepositoryStub
	Returns       *testhelpers.ReturnRepositoryStub
	Visits        *testhelpers.VisitRepositoryStub
	Newsletter    *testhelpers.NewsletterRepositoryStub
	Payments      *testhelpers.PaymentGatewayStub
	Customers     *testhelpers.CustomerGatewayStub
	Mailer        *testhelpers.MailerStub
	Observer      *testhelpers.ObserverStub

	Facade *app.StoreFacade
}

// HealthFunc adapts a function to app.HealthChecker.
type HealthFunc func() error

// HealthCheck calls f.
func (f HealthFunc) HealthCheck(_ context.Context) error { return f() }

// NewStore wires the facade with the stub token strategy and the given products.
func NewStore(products ...model.Product) *Store {
	s := &Store{
		Users:         testhelpers.NewUserRepositoryStub(),
		Products:      testhelpers.NewProductRepositoryStub(products...),
		Invoices:      &testhelpers.InvoiceRepositoryStub{},
		Promos:        testhelpers.NewPromoCodeRepositoryStub(),
		Reviews:       testhelpers.NewReviewRepositoryStub(),
		Cancellations: testhelpers.NewCancellationRepositoryStub(),
		Returns:       testhelpers.NewReturnRepositoryStub(),
		Visits:        &testhelpers.VisitRepositoryStub{},
		Newsletter:    testhelpers.NewNewsletterRepositoryStub(),
		Payments:      testhelpers.NewPaymentGatewayStub(),
		Customers:     testhelpers.NewCustomerGatewayStub(),
		Mailer:        &testhelpers.MailerStub{},
		Observer:      testhelpers.NewObserverStub(),
	}
	s.Orders = testhelpers.NewOrderRepositoryStub(s.Products)

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	cfg := &config.Config{SiteURL: "https://benice.test"}

	invoices := usecase.NewInvoiceUseCase(s.Invoices, s.Orders, s.Users, invoicepdf.New(invoicepdf.DefaultSeller))
	customers := usecase.NewCustomerUseCase(s.Users, s.Customers, logger)
	promos := usecase.NewPromoUseCase(s.Promos)

	s.Facade = app.NewStoreFacade(app.UseCases{
		Auth:      usecase.NewAuthUseCase(s.Users, testhelpers.HasherStub{}, testhelpers.StrategyStub{}, s.Mailer, logger),
		Catalog:   usecase.NewCatalogUseCase(s.Products),
		Checkout:  usecase.NewCheckoutUseCase(s.Products, s.Users, promos, customers, s.Payments, cfg, logger),
		Promos:    promos,
		Customers: customers,
		Reconcile: usecase.NewReconcileUseCase(s.Orders, s.Users, s.Products, s.Promos, s.Payments, s.Mailer,
			invoices, customers, s.Observer, logger),
		Orders:        usecase.NewOrderUseCase(s.Orders, s.Users, s.Mailer, logger),
		Invoices:      invoices,
		Cancellations: usecase.NewCancellationUseCase(s.Cancellations, s.Orders, s.Users, s.Payments, s.Mailer, s.Observer, logger),
		Returns:       usecase.NewReturnUseCase(s.Returns, s.Orders, invoices),
		Reviews:       usecase.NewReviewUseCase(s.Reviews, s.Products, s.Orders, s.Users),
		Marketing:     usecase.NewMarketingUseCase(s.Newsletter, s.Promos, s.Visits, s.Mailer, logger),
	}, s.Payments, HealthFunc(func() error { return nil }))
	return s
}
