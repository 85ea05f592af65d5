package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/polkiloo/storefront/internal/domain/model"
	testhelpers "github.com/polkiloo/storefront/internal/test"
	"github.com/polkiloo/storefront/internal/usecase"
)

type healthStub struct{ err error }

func (h healthStub) HealthCheck(context.Context) error { return h.err }

type facadeFixture struct {
	users    *testhelpers.UserRepositoryStub
	products *testhelpers.ProductRepositoryStub
	orders   *testhelpers.OrderRepositoryStub
	payments *testhelpers.PaymentGatewayStub
	facade   *StoreFacade
}

func newFacade(health HealthChecker) *facadeFixture {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	f := &facadeFixture{
		users: testhelpers.NewUserRepositoryStub(),
		products: testhelpers.NewProductRepositoryStub(model.Product{
			ID: uuid.MustParse("11111111-1111-1111-1111-111111111111"), Name: "Pienso Salmón", Slug: "pienso-salmon", Price: 10, Stock: 5,
		}),
		payments: testhelpers.NewPaymentGatewayStub(),
	}
	f.orders = testhelpers.NewOrderRepositoryStub(f.products)
	mailer := &testhelpers.MailerStub{}
	observer := testhelpers.NewObserverStub()
	promos := testhelpers.NewPromoCodeRepositoryStub()
	invoices := usecase.NewInvoiceUseCase(&testhelpers.InvoiceRepositoryStub{}, f.orders, f.users, nil)
	customers := usecase.NewCustomerUseCase(f.users, testhelpers.NewCustomerGatewayStub(), logger)

	f.facade = NewStoreFacade(UseCases{
		Auth:      usecase.NewAuthUseCase(f.users, testhelpers.HasherStub{}, testhelpers.StrategyStub{}, mailer, logger),
		Catalog:   usecase.NewCatalogUseCase(f.products),
		Customers: customers,
		Invoices:  invoices,
		Orders:    usecase.NewOrderUseCase(f.orders, f.users, mailer, logger),
		Reconcile: usecase.NewReconcileUseCase(f.orders, f.users, f.products, promos, f.payments, mailer,
			invoices, customers, observer, logger),
	}, f.payments, health)
	return f
}

func TestStoreFacadeAuth(t *testing.T) {
	f := newFacade(nil)
	user, token, err := f.facade.Register(context.Background(), "ana@example.com", "supersecret", "Ana")
	if err != nil {
		t.Fatalf("register returned error: %v", err)
	}
	if token != "token" || user.Email != "ana@example.com" {
		t.Fatalf("unexpected registration result: user=%+v token=%q", user, token)
	}

	_, token, err = f.facade.Authenticate(context.Background(), "ana@example.com", "supersecret")
	if err != nil || token != "token" {
		t.Fatalf("authenticate: token=%q err=%v", token, err)
	}

	claims, err := f.facade.ParseToken("admin-token")
	if err != nil {
		t.Fatalf("parse token returned error: %v", err)
	}
	if !claims.Admin {
		t.Fatalf("expected admin claims, got %+v", claims)
	}
}

func TestStoreFacadeReconcilesCompletedSessions(t *testing.T) {
	f := newFacade(nil)
	f.payments.AddSession(model.CheckoutSession{
		ID:              "cs_live_1",
		PaymentStatus:   model.PaymentStatusPaid,
		PaymentIntentID: "pi_1",
		AmountTotal:     2000,
		Customer:        model.CustomerDetails{Email: "ana@example.com"},
	}, model.LineItem{Description: "Pienso Salmón", Quantity: 2, AmountTotal: 2000})
	f.payments.Completed = []string{"cs_live_1", "cs_live_2"}

	sessions, err := f.facade.CompletedSessions(context.Background(), time.Now().Add(-time.Hour), 1)
	if err != nil {
		t.Fatalf("completed sessions: %v", err)
	}
	if len(sessions) != 1 || sessions[0] != "cs_live_1" {
		t.Fatalf("unexpected sessions %v", sessions)
	}

	id, err := f.facade.EnsureOrder(context.Background(), sessions[0])
	if err != nil {
		t.Fatalf("ensure order: %v", err)
	}
	again, err := f.facade.EnsureOrder(context.Background(), sessions[0])
	if err != nil || again != id {
		t.Fatalf("expected idempotent reconciliation, got %v (%v)", again, err)
	}

	owner, err := f.users.GetByEmail(context.Background(), "ana@example.com")
	if err != nil {
		t.Fatalf("guest not created: %v", err)
	}
	orders, err := f.facade.Orders(context.Background(), owner.ID)
	if err != nil || len(orders) != 1 {
		t.Fatalf("expected one order for guest, got %d (%v)", len(orders), err)
	}
}

func TestStoreFacadeDatabaseHealthy(t *testing.T) {
	if err := newFacade(nil).facade.DatabaseHealthy(context.Background()); err != nil {
		t.Fatalf("expected nil checker to be healthy, got %v", err)
	}
	down := errors.New("connection refused")
	if err := newFacade(healthStub{err: down}).facade.DatabaseHealthy(context.Background()); !errors.Is(err, down) {
		t.Fatalf("expected health error, got %v", err)
	}
}
