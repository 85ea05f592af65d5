package di

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/storefront/internal/app"
	"github.com/polkiloo/storefront/internal/config"
	"github.com/polkiloo/storefront/internal/domain/gateway"
	"github.com/polkiloo/storefront/internal/domain/repository"
	"github.com/polkiloo/storefront/internal/storage/postgres"
	"github.com/polkiloo/storefront/internal/test"
	"github.com/polkiloo/storefront/internal/worker"
)

type stubs struct {
	payments *test.PaymentGatewayStub
}

// replacements swaps every external dependency for in-memory stubs.
func replacements() (stubs, fx.Option) {
	cfg := &config.Config{
		RunAddress:      ":0",
		DatabaseURI:     "postgres://stub",
		SiteURL:         "https://benice.test",
		JWTSecret:       "secret",
		SweepInterval:   time.Minute,
		SweepLookback:   time.Hour,
		SweepBatchSize:  10,
		WorkerPoolSize:  1,
		ShutdownTimeout: time.Millisecond,
	}
	products := test.NewProductRepositoryStub()
	s := stubs{payments: test.NewPaymentGatewayStub()}

	return s, fx.Options(
		fx.Replace(cfg),
		fx.Replace(slog.New(slog.NewJSONHandler(io.Discard, nil))),
		fx.Replace(&postgres.Storage{}),
		fx.Replace(repository.UserRepository(test.NewUserRepositoryStub())),
		fx.Replace(repository.ProductRepository(products)),
		fx.Replace(repository.OrderRepository(test.NewOrderRepositoryStub(products))),
		fx.Replace(repository.InvoiceRepository(&test.InvoiceRepositoryStub{})),
		fx.Replace(repository.PromoCodeRepository(test.NewPromoCodeRepositoryStub())),
		fx.Replace(repository.ReviewRepository(test.NewReviewRepositoryStub())),
		fx.Replace(repository.CancellationRepository(test.NewCancellationRepositoryStub())),
		fx.Replace(repository.ReturnRepository(test.NewReturnRepositoryStub())),
		fx.Replace(repository.VisitRepository(&test.VisitRepositoryStub{})),
		fx.Replace(repository.NewsletterRepository(test.NewNewsletterRepositoryStub())),
		fx.Replace(gateway.PaymentGateway(s.payments)),
		fx.Replace(gateway.CustomerGateway(test.NewCustomerGatewayStub())),
		fx.Replace(gateway.Mailer(&test.MailerStub{})),
	)
}

func supplyContext() fx.Option {
	return fx.Provide(func() context.Context { return context.Background() })
}

func TestModuleComposesGraphWithReplacements(t *testing.T) {
	_, replace := replacements()

	var (
		facade  *app.StoreFacade
		engine  *gin.Engine
		sweeper *worker.SessionSweeper
	)
	fxApp := fx.New(
		fx.NopLogger,
		supplyContext(),
		Module(replace),
		fx.Populate(&facade, &engine, &sweeper),
	)

	if err := fxApp.Err(); err != nil {
		t.Fatalf("fx app returned error: %v", err)
	}
	if facade == nil || engine == nil || sweeper == nil {
		t.Fatal("expected facade, router and sweeper instances")
	}
	if len(engine.Routes()) == 0 {
		t.Fatal("expected routes to be registered")
	}
}

func TestCoreReconcilesWithoutRuntime(t *testing.T) {
	s, replace := replacements()
	s.payments.Completed = []string{"cs_core"}

	var facade *app.StoreFacade
	fxApp := fx.New(
		fx.NopLogger,
		supplyContext(),
		Core(replace),
		fx.Populate(&facade),
	)
	if err := fxApp.Err(); err != nil {
		t.Fatalf("fx app returned error: %v", err)
	}

	ids, err := facade.CompletedSessions(context.Background(), time.Now().Add(-time.Hour), 10)
	if err != nil {
		t.Fatalf("completed sessions: %v", err)
	}
	if len(ids) != 1 || ids[0] != "cs_core" {
		t.Fatalf("expected gateway sessions, got %v", ids)
	}
	if _, err := facade.EnsureOrder(context.Background(), ""); err == nil {
		t.Fatal("expected empty session id to be rejected")
	}
}
