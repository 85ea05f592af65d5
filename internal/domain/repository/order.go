package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// OrderRepository describes persistence operations with orders.
type OrderRepository interface {
	FindBySessionID(ctx context.Context, sessionID string) (*model.Order, error)
	// CreateWithItems inserts the order, its items and the stock decrements in
	// one transaction. When an order for the same checkout session already
	// exists it returns that order's id together with ErrAlreadyExists.
	CreateWithItems(ctx context.Context, order model.NewOrder) (uuid.UUID, error)
	AttachPaymentLinkage(ctx context.Context, orderID uuid.UUID, sessionID, paymentIntentID string) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]model.Order, error)
	List(ctx context.Context, status model.OrderStatus, limit int) ([]model.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus, trackingNumber string) error
	// CancelAndRestoreStock cancels a non-cancelled order and returns its items to stock.
	CancelAndRestoreStock(ctx context.Context, id uuid.UUID) error
	HasPurchased(ctx context.Context, userID int64, productID uuid.UUID) (bool, error)
	// RecordCompensation stores a refunded session; recording it twice is not an error.
	RecordCompensation(ctx context.Context, c model.Compensation) error
	FindCompensation(ctx context.Context, sessionID string) (*model.Compensation, error)
}
