package usecase

import (
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/polkiloo/storefront/internal/domain/model"
	testhelpers "github.com/polkiloo/storefront/internal/test"
)

var fixedNow = time.Date(2026, time.March, 14, 10, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// storeFixture wires every use case against in-memory stores.
type storeFixture struct {
	users     *testhelpers.UserRepositoryStub
	products  *testhelpers.ProductRepositoryStub
	orders    *testhelpers.OrderRepositoryStub
	invoices  *testhelpers.InvoiceRepositoryStub
	promos    *testhelpers.PromoCodeRepositoryStub
	payments  *testhelpers.PaymentGatewayStub
	customers *testhelpers.CustomerGatewayStub
	mailer    *testhelpers.MailerStub
	observer  *testhelpers.ObserverStub

	invoiceUC  *InvoiceUseCase
	customerUC *CustomerUseCase
	reconcile  *ReconcileUseCase
}

var (
	kibbleID = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	toyID    = uuid.MustParse("22222222-2222-2222-2222-222222222222")
)

func newStoreFixture() *storeFixture {
	f := &storeFixture{
		users: testhelpers.NewUserRepositoryStub(),
		products: testhelpers.NewProductRepositoryStub(
			model.Product{ID: kibbleID, Name: "Pienso Salmón", Slug: "pienso-salmon", Price: 10, Stock: 20},
			model.Product{ID: toyID, Name: "Pelota Mordedor", Slug: "pelota-mordedor", Price: 20, Stock: 20},
		),
		invoices:  &testhelpers.InvoiceRepositoryStub{},
		promos:    testhelpers.NewPromoCodeRepositoryStub(),
		payments:  testhelpers.NewPaymentGatewayStub(),
		customers: testhelpers.NewCustomerGatewayStub(),
		mailer:    &testhelpers.MailerStub{},
		observer:  testhelpers.NewObserverStub(),
	}
	f.orders = testhelpers.NewOrderRepositoryStub(f.products)
	f.invoiceUC = NewInvoiceUseCase(f.invoices, f.orders, f.users, nil)
	f.invoiceUC.now = func() time.Time { return fixedNow }
	f.customerUC = NewCustomerUseCase(f.users, f.customers, discardLogger())
	f.reconcile = NewReconcileUseCase(f.orders, f.users, f.products, f.promos, f.payments, f.mailer,
		f.invoiceUC, f.customerUC, f.observer, discardLogger())
	return f
}

// paidSession returns the canonical two-product session: kibble x2 and a toy
// x1 bought with a 10% code, 36.00 charged, shipping not included.
func paidSession(id string) (model.CheckoutSession, []model.LineItem) {
	session := model.CheckoutSession{
		ID:              id,
		PaymentStatus:   model.PaymentStatusPaid,
		PaymentIntentID: "pi_" + id,
		AmountTotal:     3600,
		Metadata:        model.SessionMetadata{PromoCode: "PROMO10", DiscountPercent: 10},
		Customer:        model.CustomerDetails{Email: "Ana@Example.com", Name: "Ana Ruiz"},
		Shipping: &model.ShippingDetails{Name: "Ana Ruiz", Address: model.Address{
			Line1: "Calle Mayor 1", City: "Madrid", PostalCode: "28013", Country: "ES",
		}},
	}
	items := []model.LineItem{
		{Description: "Pienso Salmón", Quantity: 2, AmountTotal: 1800, ProductID: kibbleID.String()},
		{Description: "Pelota Mordedor", Quantity: 1, AmountTotal: 1800},
	}
	return session, items
}
