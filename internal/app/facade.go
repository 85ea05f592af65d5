package app

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/polkiloo/storefront/internal/domain/gateway"
	"github.com/polkiloo/storefront/internal/domain/model"
	pkgAuth "github.com/polkiloo/storefront/internal/pkg/auth"
	"github.com/polkiloo/storefront/internal/usecase"
)

// HealthChecker reports whether the primary database is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// StoreFacade exposes storefront use cases to the HTTP layer, the sweeper and the CLI.
type StoreFacade struct {
	auth          *usecase.AuthUseCase
	catalog       *usecase.CatalogUseCase
	checkout      *usecase.CheckoutUseCase
	promos        *usecase.PromoUseCase
	customers     *usecase.CustomerUseCase
	reconcile     *usecase.ReconcileUseCase
	orders        *usecase.OrderUseCase
	invoices      *usecase.InvoiceUseCase
	cancellations *usecase.CancellationUseCase
	returns       *usecase.ReturnUseCase
	reviews       *usecase.ReviewUseCase
	marketing     *usecase.MarketingUseCase
	payments      gateway.PaymentGateway
	health        HealthChecker
}

// UseCases groups the dependencies of StoreFacade.
type UseCases struct {
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
}

func NewStoreFacade(uc UseCases, payments gateway.PaymentGateway, health HealthChecker) *StoreFacade {
	return &StoreFacade{
		auth:          uc.Auth,
		catalog:       uc.Catalog,
		checkout:      uc.Checkout,
		promos:        uc.Promos,
		customers:     uc.Customers,
		reconcile:     uc.Reconcile,
		orders:        uc.Orders,
		invoices:      uc.Invoices,
		cancellations: uc.Cancellations,
		returns:       uc.Returns,
		reviews:       uc.Reviews,
		marketing:     uc.Marketing,
		payments:      payments,
		health:        health,
	}
}

func (f *StoreFacade) Register(ctx context.Context, email, password, fullName string) (*model.User, string, error) {
	return f.auth.Register(ctx, email, password, fullName)
}

func (f *StoreFacade) Authenticate(ctx context.Context, email, password string) (*model.User, string, error) {
	return f.auth.Authenticate(ctx, email, password)
}

func (f *StoreFacade) ParseToken(token string) (pkgAuth.Claims, error) {
	return f.auth.ParseToken(token)
}

func (f *StoreFacade) User(ctx context.Context, id int64) (*model.User, error) {
	return f.auth.GetByID(ctx, id)
}

func (f *StoreFacade) Products(ctx context.Context, filter model.ProductFilter) ([]model.Product, error) {
	return f.catalog.List(ctx, filter)
}

func (f *StoreFacade) InStockProducts(ctx context.Context) ([]model.Product, error) {
	return f.catalog.InStock(ctx)
}

func (f *StoreFacade) ProductBySlug(ctx context.Context, slug string) (*model.Product, error) {
	return f.catalog.GetBySlug(ctx, slug)
}

func (f *StoreFacade) SearchProducts(ctx context.Context, query string) ([]model.Product, error) {
	return f.catalog.Search(ctx, query)
}

func (f *StoreFacade) CreateProduct(ctx context.Context, in usecase.ProductInput) (*model.Product, error) {
	return f.catalog.Create(ctx, in)
}

func (f *StoreFacade) UpdateProduct(ctx context.Context, id uuid.UUID, in usecase.ProductInput) (*model.Product, error) {
	return f.catalog.Update(ctx, id, in)
}

func (f *StoreFacade) SetProductSale(ctx context.Context, id uuid.UUID, onSale bool, salePrice *float64) error {
	return f.catalog.SetSale(ctx, id, onSale, salePrice)
}

func (f *StoreFacade) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return f.catalog.Delete(ctx, id)
}

func (f *StoreFacade) CreateCheckoutSession(ctx context.Context, userID int64, items []usecase.CartItem, promoCode string) (*model.CreatedSession, error) {
	return f.checkout.CreateSession(ctx, userID, items, promoCode)
}

// EnsureOrder reconciles a paid checkout session into an order.
func (f *StoreFacade) EnsureOrder(ctx context.Context, sessionID string) (uuid.UUID, error) {
	return f.reconcile.EnsureOrder(ctx, sessionID)
}

// CompletedSessions lists processor sessions completed since the given time.
func (f *StoreFacade) CompletedSessions(ctx context.Context, since time.Time, limit int) ([]string, error) {
	return f.payments.ListCompletedSessions(ctx, since, limit)
}

func (f *StoreFacade) ValidatePromo(ctx context.Context, code string) (*model.PromoCode, error) {
	return f.promos.Validate(ctx, code)
}

func (f *StoreFacade) PromoCodes(ctx context.Context) ([]model.PromoCode, error) {
	return f.promos.List(ctx)
}

func (f *StoreFacade) CreatePromoCode(ctx context.Context, in usecase.NewPromoCode) (*model.PromoCode, error) {
	return f.promos.Create(ctx, in)
}

func (f *StoreFacade) DeletePromoCode(ctx context.Context, id uuid.UUID) error {
	return f.promos.Delete(ctx, id)
}

func (f *StoreFacade) CustomerData(ctx context.Context, userID int64) (*model.CustomerProfile, error) {
	return f.customers.CustomerData(ctx, userID)
}

func (f *StoreFacade) UpdateProfile(ctx context.Context, userID int64, fullName, phone string, address model.Address) error {
	return f.customers.UpdateProfile(ctx, userID, fullName, phone, address)
}

func (f *StoreFacade) Orders(ctx context.Context, userID int64) ([]model.Order, error) {
	return f.orders.ListForUser(ctx, userID)
}

func (f *StoreFacade) Order(ctx context.Context, requester usecase.Requester, id uuid.UUID) (*model.Order, error) {
	return f.orders.Get(ctx, requester, id)
}

func (f *StoreFacade) AdminOrders(ctx context.Context, status model.OrderStatus, limit int) ([]model.Order, error) {
	return f.orders.ListAll(ctx, status, limit)
}

func (f *StoreFacade) UpdateOrderStatus(ctx context.Context, id uuid.UUID, change usecase.StatusChange) (*model.Order, error) {
	return f.orders.UpdateStatus(ctx, id, change)
}

func (f *StoreFacade) InvoicePDF(ctx context.Context, requester usecase.Requester, orderID uuid.UUID) ([]byte, string, error) {
	return f.invoices.InvoicePDF(ctx, requester, orderID)
}

func (f *StoreFacade) RequestCancellation(ctx context.Context, userID int64, orderID uuid.UUID, reason string) (*model.CancellationRequest, error) {
	return f.cancellations.Request(ctx, userID, orderID, reason)
}

func (f *StoreFacade) Cancellations(ctx context.Context, status model.CancellationStatus) ([]model.CancellationRequest, error) {
	return f.cancellations.List(ctx, status)
}

func (f *StoreFacade) ApproveCancellation(ctx context.Context, id uuid.UUID, notes string) (*model.CancellationRequest, error) {
	return f.cancellations.Approve(ctx, id, notes)
}

func (f *StoreFacade) RejectCancellation(ctx context.Context, id uuid.UUID, notes string) (*model.CancellationRequest, error) {
	return f.cancellations.Reject(ctx, id, notes)
}

func (f *StoreFacade) RequestReturn(ctx context.Context, userID int64, orderID uuid.UUID, reason string) (*model.ReturnRequest, error) {
	return f.returns.Request(ctx, userID, orderID, reason)
}

func (f *StoreFacade) Returns(ctx context.Context, status model.ReturnStatus) ([]model.ReturnRequest, error) {
	return f.returns.List(ctx, status)
}

func (f *StoreFacade) UpdateReturn(ctx context.Context, id uuid.UUID, upd usecase.ReturnUpdate) (*model.ReturnRequest, error) {
	return f.returns.Update(ctx, id, upd)
}

func (f *StoreFacade) Reviews(ctx context.Context, productID uuid.UUID, sort model.ReviewSort, rating int) ([]model.Review, model.ReviewStats, error) {
	return f.reviews.List(ctx, productID, sort, rating)
}

func (f *StoreFacade) UpsertReview(ctx context.Context, userID int64, productID uuid.UUID, rating int, comment string) (*model.Review, bool, error) {
	return f.reviews.Upsert(ctx, userID, productID, rating, comment)
}

func (f *StoreFacade) DeleteReview(ctx context.Context, requester usecase.Requester, id uuid.UUID) error {
	return f.reviews.Delete(ctx, requester, id)
}

func (f *StoreFacade) Subscribe(ctx context.Context, email string) (string, error) {
	return f.marketing.Subscribe(ctx, email)
}

func (f *StoreFacade) Contact(ctx context.Context, msg model.ContactMessage) error {
	return f.marketing.Contact(ctx, msg)
}

func (f *StoreFacade) RecordVisit(ctx context.Context, visit model.Visit) {
	f.marketing.RecordVisit(ctx, visit)
}

// DatabaseHealthy pings the database.
func (f *StoreFacade) DatabaseHealthy(ctx context.Context) error {
	if f.health == nil {
		return nil
	}
	return f.health.HealthCheck(ctx)
}
