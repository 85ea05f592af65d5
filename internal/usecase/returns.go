package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
)

// ReturnUpdate is an admin decision on a return.
type ReturnUpdate struct {
	Status       model.ReturnStatus
	RefundAmount *float64
	AdminNotes   string
}

// ReturnUseCase handles product returns of delivered orders.
type ReturnUseCase struct {
	returns  repository.ReturnRepository
	orders   repository.OrderRepository
	invoices *InvoiceUseCase
}

// NewReturnUseCase constructs ReturnUseCase.
func NewReturnUseCase(returns repository.ReturnRepository, orders repository.OrderRepository, invoices *InvoiceUseCase) *ReturnUseCase {
	return &ReturnUseCase{returns: returns, orders: orders, invoices: invoices}
}

// Request opens a return for a delivered order owned by userID.
func (u *ReturnUseCase) Request(ctx context.Context, userID int64, orderID uuid.UUID, reason string) (*model.ReturnRequest, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" || len(reason) > maxReasonLength {
		return nil, domainErrors.ErrInvalidInput
	}
	order, err := ownedOrder(ctx, u.orders, userID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != model.OrderStatusDelivered {
		return nil, domainErrors.ErrInvalidTransition
	}
	return u.returns.Create(ctx, model.ReturnRequest{OrderID: orderID, UserID: userID, Reason: reason})
}

// List returns returns with status, or all when status is empty.
func (u *ReturnUseCase) List(ctx context.Context, status model.ReturnStatus) ([]model.ReturnRequest, error) {
	if status != "" && !status.Valid() {
		return nil, domainErrors.ErrInvalidInput
	}
	return u.returns.List(ctx, status)
}

// Update moves a return along its lifecycle. Completing it issues a credit note.
func (u *ReturnUseCase) Update(ctx context.Context, id uuid.UUID, upd ReturnUpdate) (*model.ReturnRequest, error) {
	if !upd.Status.Valid() {
		return nil, domainErrors.ErrInvalidInput
	}
	ret, err := u.returns.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ret.Status.CanTransitionTo(upd.Status) {
		return nil, domainErrors.ErrInvalidTransition
	}
	completing := upd.Status == model.ReturnCompleted && ret.Status != model.ReturnCompleted
	if completing && (upd.RefundAmount == nil || *upd.RefundAmount <= 0) {
		return nil, domainErrors.ErrInvalidInput
	}
	if upd.RefundAmount == nil {
		upd.RefundAmount = ret.RefundAmount
	}

	if err := u.returns.Update(ctx, id, upd.Status, upd.RefundAmount, strings.TrimSpace(upd.AdminNotes)); err != nil {
		return nil, err
	}
	ret.Status, ret.RefundAmount, ret.AdminNotes = upd.Status, upd.RefundAmount, strings.TrimSpace(upd.AdminNotes)

	if completing {
		order, err := u.orders.GetByID(ctx, ret.OrderID)
		if err != nil {
			return nil, fmt.Errorf("load order for credit note: %w", err)
		}
		if _, err := u.invoices.IssueCreditNote(ctx, order, *upd.RefundAmount); err != nil {
			return nil, fmt.Errorf("issue credit note: %w", err)
		}
	}
	return ret, nil
}
