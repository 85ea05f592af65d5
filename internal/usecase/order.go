package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/gateway"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
)

// DefaultCarrier is named in shipping emails when staff leave it blank.
const DefaultCarrier = "Correos Express"

const defaultAdminOrderLimit = 100

// Requester identifies who is asking for a resource.
type Requester struct {
	UserID int64
	Admin  bool
}

// CanAccess reports whether the requester may see a resource owned by owner.
func (r Requester) CanAccess(owner int64) bool {
	return r.Admin || (r.UserID != 0 && r.UserID == owner)
}

// StatusChange is an admin request to move an order along its lifecycle.
type StatusChange struct {
	Status         model.OrderStatus
	TrackingNumber string
	Carrier        string
}

// OrderUseCase serves order history and the admin fulfilment workflow.
type OrderUseCase struct {
	orders repository.OrderRepository
	users  repository.UserRepository
	mailer gateway.Mailer
	logger *slog.Logger
}

// NewOrderUseCase constructs OrderUseCase.
func NewOrderUseCase(orders repository.OrderRepository, users repository.UserRepository, mailer gateway.Mailer, logger *slog.Logger) *OrderUseCase {
	return &OrderUseCase{orders: orders, users: users, mailer: mailer, logger: logger}
}

// ListForUser returns orders placed by the user, newest first.
func (u *OrderUseCase) ListForUser(ctx context.Context, userID int64) ([]model.Order, error) {
	return u.orders.ListByUser(ctx, userID)
}

// Get returns an order the requester may see. Foreign orders look missing.
func (u *OrderUseCase) Get(ctx context.Context, requester Requester, id uuid.UUID) (*model.Order, error) {
	order, err := u.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !requester.CanAccess(order.UserID) {
		return nil, domainErrors.ErrNotFound
	}
	return order, nil
}

// ListAll returns orders for the back office, optionally by status.
func (u *OrderUseCase) ListAll(ctx context.Context, status model.OrderStatus, limit int) ([]model.Order, error) {
	if status != "" && !status.Valid() {
		return nil, domainErrors.ErrInvalidInput
	}
	if limit <= 0 || limit > defaultAdminOrderLimit {
		limit = defaultAdminOrderLimit
	}
	return u.orders.List(ctx, status, limit)
}

// UpdateStatus applies an admin status change and notifies the customer.
func (u *OrderUseCase) UpdateStatus(ctx context.Context, id uuid.UUID, change StatusChange) (*model.Order, error) {
	if !change.Status.Valid() {
		return nil, domainErrors.ErrInvalidInput
	}
	change.TrackingNumber = strings.TrimSpace(change.TrackingNumber)
	if change.Status == model.OrderStatusShipped && change.TrackingNumber == "" {
		return nil, domainErrors.ErrInvalidInput
	}

	order, err := u.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanTransitionTo(change.Status) {
		return nil, domainErrors.ErrInvalidTransition
	}
	if change.Status == model.OrderStatusCancelled {
		err = u.orders.CancelAndRestoreStock(ctx, id)
	} else {
		err = u.orders.UpdateStatus(ctx, id, change.Status, change.TrackingNumber)
	}
	if err != nil {
		return nil, err
	}

	order.Status = change.Status
	if change.TrackingNumber != "" {
		order.TrackingNumber = change.TrackingNumber
	}
	u.notify(ctx, order, change)
	return order, nil
}

func (u *OrderUseCase) notify(ctx context.Context, order *model.Order, change StatusChange) {
	if change.Status != model.OrderStatusShipped && change.Status != model.OrderStatusDelivered {
		return
	}
	logger := u.logger.With(slog.String("order_id", order.ID.String()), slog.String("status", string(change.Status)))
	user, err := u.users.GetByID(ctx, order.UserID)
	if err != nil {
		logger.Warn("status email skipped: owner not loaded", slog.Any("error", err))
		return
	}

	switch change.Status {
	case model.OrderStatusShipped:
		carrier := strings.TrimSpace(change.Carrier)
		if carrier == "" {
			carrier = DefaultCarrier
		}
		err = u.mailer.SendShippingNotification(ctx, model.ShippingNotice{
			To:             user.Email,
			CustomerName:   user.DisplayName(),
			OrderID:        order.ID,
			TrackingNumber: order.TrackingNumber,
			Carrier:        carrier,
		})
	case model.OrderStatusDelivered:
		err = u.mailer.SendDeliveryConfirmation(ctx, model.OrderNotice{
			To:           user.Email,
			CustomerName: user.DisplayName(),
			OrderID:      order.ID,
			Total:        order.Total,
		})
	}
	if err != nil {
		logger.Error("status email failed", slog.Any("error", err))
	}
}

// ownedOrder loads an order and checks it belongs to userID.
func ownedOrder(ctx context.Context, orders repository.OrderRepository, userID int64, id uuid.UUID) (*model.Order, error) {
	order, err := orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, domainErrors.ErrNotFound
	}
	return order, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, domainErrors.ErrNotFound)
}
