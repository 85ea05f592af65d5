package handlers

import (
	"context"

	"github.com/google/uuid"

	"github.com/polkiloo/storefront/internal/domain/model"
	pkgAuth "github.com/polkiloo/storefront/internal/pkg/auth"
	"github.com/polkiloo/storefront/internal/usecase"
)

// AuthFacade describes authentication capabilities required by handlers.
type AuthFacade interface {
	Register(ctx context.Context, email, password, fullName string) (*model.User, string, error)
	Authenticate(ctx context.Context, email, password string) (*model.User, string, error)
	ParseToken(token string) (pkgAuth.Claims, error)
}

// CatalogFacade serves the product catalog.
type CatalogFacade interface {
	Products(ctx context.Context, filter model.ProductFilter) ([]model.Product, error)
	InStockProducts(ctx context.Context) ([]model.Product, error)
	ProductBySlug(ctx context.Context, slug string) (*model.Product, error)
	SearchProducts(ctx context.Context, query string) ([]model.Product, error)
}

// CheckoutFacade starts checkouts and turns paid sessions into orders.
type CheckoutFacade interface {
	CreateCheckoutSession(ctx context.Context, userID int64, items []usecase.CartItem, promoCode string) (*model.CreatedSession, error)
	EnsureOrder(ctx context.Context, sessionID string) (uuid.UUID, error)
	ValidatePromo(ctx context.Context, code string) (*model.PromoCode, error)
}

// OrderFacade encapsulates customer order operations exposed via HTTP.
type OrderFacade interface {
	Orders(ctx context.Context, userID int64) ([]model.Order, error)
	Order(ctx context.Context, requester usecase.Requester, id uuid.UUID) (*model.Order, error)
	InvoicePDF(ctx context.Context, requester usecase.Requester, orderID uuid.UUID) ([]byte, string, error)
	RequestCancellation(ctx context.Context, userID int64, orderID uuid.UUID, reason string) (*model.CancellationRequest, error)
	RequestReturn(ctx context.Context, userID int64, orderID uuid.UUID, reason string) (*model.ReturnRequest, error)
}

// ReviewFacade manages product reviews.
type ReviewFacade interface {
	Reviews(ctx context.Context, productID uuid.UUID, sort model.ReviewSort, rating int) ([]model.Review, model.ReviewStats, error)
	UpsertReview(ctx context.Context, userID int64, productID uuid.UUID, rating int, comment string) (*model.Review, bool, error)
	DeleteReview(ctx context.Context, requester usecase.Requester, id uuid.UUID) error
}

// ProfileFacade reads and updates the caller's contact data.
type ProfileFacade interface {
	User(ctx context.Context, id int64) (*model.User, error)
	CustomerData(ctx context.Context, userID int64) (*model.CustomerProfile, error)
	UpdateProfile(ctx context.Context, userID int64, fullName, phone string, address model.Address) error
}

// MarketingFacade handles newsletter, contact form and visit tracking.
type MarketingFacade interface {
	Subscribe(ctx context.Context, email string) (string, error)
	Contact(ctx context.Context, msg model.ContactMessage) error
	RecordVisit(ctx context.Context, visit model.Visit)
}

// AdminFacade is the back-office surface.
type AdminFacade interface {
	CreateProduct(ctx context.Context, in usecase.ProductInput) (*model.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, in usecase.ProductInput) (*model.Product, error)
	SetProductSale(ctx context.Context, id uuid.UUID, onSale bool, salePrice *float64) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error

	AdminOrders(ctx context.Context, status model.OrderStatus, limit int) ([]model.Order, error)
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, change usecase.StatusChange) (*model.Order, error)

	Cancellations(ctx context.Context, status model.CancellationStatus) ([]model.CancellationRequest, error)
	ApproveCancellation(ctx context.Context, id uuid.UUID, notes string) (*model.CancellationRequest, error)
	RejectCancellation(ctx context.Context, id uuid.UUID, notes string) (*model.CancellationRequest, error)

	Returns(ctx context.Context, status model.ReturnStatus) ([]model.ReturnRequest, error)
	UpdateReturn(ctx context.Context, id uuid.UUID, upd usecase.ReturnUpdate) (*model.ReturnRequest, error)

	PromoCodes(ctx context.Context) ([]model.PromoCode, error)
	CreatePromoCode(ctx context.Context, in usecase.NewPromoCode) (*model.PromoCode, error)
	DeletePromoCode(ctx context.Context, id uuid.UUID) error
}

// HealthFacade reports dependency health.
type HealthFacade interface {
	DatabaseHealthy(ctx context.Context) error
}

// StoreFacade aggregates the full set of operations used across handlers.
type StoreFacade interface {
	AuthFacade
	CatalogFacade
	CheckoutFacade
	OrderFacade
	ReviewFacade
	ProfileFacade
	MarketingFacade
	AdminFacade
	HealthFacade
}
