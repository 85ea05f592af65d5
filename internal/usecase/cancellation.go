package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/gateway"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
)

const maxReasonLength = 1000

// CancellationUseCase handles customer cancellation requests and their review by staff.
type CancellationUseCase struct {
	requests repository.CancellationRepository
	orders   repository.OrderRepository
	users    repository.UserRepository
	payments gateway.PaymentGateway
	mailer   gateway.Mailer
	observer ReconcileObserver
	logger   *slog.Logger
}

// NewCancellationUseCase constructs CancellationUseCase.
func NewCancellationUseCase(
	requests repository.CancellationRepository,
	orders repository.OrderRepository,
	users repository.UserRepository,
	payments gateway.PaymentGateway,
	mailer gateway.Mailer,
	observer ReconcileObserver,
	logger *slog.Logger,
) *CancellationUseCase {
	return &CancellationUseCase{
		requests: requests,
		orders:   orders,
		users:    users,
		payments: payments,
		mailer:   mailer,
		observer: observer,
		logger:   logger,
	}
}

// Request files a cancellation for a paid order owned by userID.
func (u *CancellationUseCase) Request(ctx context.Context, userID int64, orderID uuid.UUID, reason string) (*model.CancellationRequest, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" || len(reason) > maxReasonLength {
		return nil, domainErrors.ErrInvalidInput
	}
	order, err := ownedOrder(ctx, u.orders, userID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != model.OrderStatusPaid {
		return nil, domainErrors.ErrInvalidTransition
	}
	return u.requests.Create(ctx, model.CancellationRequest{OrderID: orderID, UserID: userID, Reason: reason})
}

// List returns requests with status, or all of them when status is empty.
func (u *CancellationUseCase) List(ctx context.Context, status model.CancellationStatus) ([]model.CancellationRequest, error) {
	return u.requests.List(ctx, status)
}

// Approve refunds the payment, cancels the order restoring stock and closes the request.
func (u *CancellationUseCase) Approve(ctx context.Context, id uuid.UUID, notes string) (*model.CancellationRequest, error) {
	req, err := u.pending(ctx, id)
	if err != nil {
		return nil, err
	}
	order, err := u.orders.GetByID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	if order.Status != model.OrderStatusPaid && order.Status != model.OrderStatusShipped {
		return nil, domainErrors.ErrInvalidTransition
	}
	logger := u.logger.With(slog.String("order_id", order.ID.String()), slog.String("request_id", id.String()))

	paymentIntent, err := u.paymentIntent(ctx, order)
	if err != nil {
		return nil, err
	}
	refundID, err := u.payments.Refund(ctx, paymentIntent)
	u.observer.Refund("cancellation", err == nil)
	if err != nil {
		return nil, fmt.Errorf("refund: %w", err)
	}
	logger.Info("cancellation refunded", slog.String("refund_id", refundID))

	if err := u.orders.CancelAndRestoreStock(ctx, order.ID); err != nil {
		logger.Error("order not cancelled after refund", slog.String("refund_id", refundID), slog.Any("error", err))
		return nil, fmt.Errorf("cancel order: %w", err)
	}
	if err := u.requests.Resolve(ctx, id, model.CancellationApproved, notes, refundID); err != nil {
		return nil, err
	}

	u.notify(ctx, logger, order, notes, u.mailer.SendCancellationApproved)
	req.Status, req.AdminNotes, req.StripeRefundID = model.CancellationApproved, notes, refundID
	return req, nil
}

// Reject closes the request without touching the order.
func (u *CancellationUseCase) Reject(ctx context.Context, id uuid.UUID, notes string) (*model.CancellationRequest, error) {
	req, err := u.pending(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := u.requests.Resolve(ctx, id, model.CancellationRejected, notes, ""); err != nil {
		return nil, err
	}
	order, err := u.orders.GetByID(ctx, req.OrderID)
	if err == nil {
		logger := u.logger.With(slog.String("order_id", order.ID.String()), slog.String("request_id", id.String()))
		u.notify(ctx, logger, order, notes, u.mailer.SendCancellationRejected)
	}
	req.Status, req.AdminNotes = model.CancellationRejected, notes
	return req, nil
}

func (u *CancellationUseCase) pending(ctx context.Context, id uuid.UUID) (*model.CancellationRequest, error) {
	req, err := u.requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Status != model.CancellationPending {
		return nil, domainErrors.ErrInvalidTransition
	}
	return req, nil
}

// paymentIntent resolves the order's payment intent, asking the processor
// for the session when the order predates linkage and persisting the answer.
func (u *CancellationUseCase) paymentIntent(ctx context.Context, order *model.Order) (string, error) {
	if order.PaymentIntentID != "" {
		return order.PaymentIntentID, nil
	}
	if order.StripeSessionID == "" {
		return "", domainErrors.ErrPaymentNotFound
	}
	session, err := u.payments.RetrieveSession(ctx, order.StripeSessionID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return "", domainErrors.ErrPaymentNotFound
		}
		return "", fmt.Errorf("retrieve session: %w", err)
	}
	if session.PaymentIntentID == "" {
		return "", domainErrors.ErrPaymentNotFound
	}
	if err := u.orders.AttachPaymentLinkage(ctx, order.ID, order.StripeSessionID, session.PaymentIntentID); err != nil {
		u.logger.Warn("payment intent not persisted", slog.String("order_id", order.ID.String()), slog.Any("error", err))
	}
	return session.PaymentIntentID, nil
}

func (u *CancellationUseCase) notify(ctx context.Context, logger *slog.Logger, order *model.Order, notes string, send func(context.Context, model.OrderNotice) error) {
	user, err := u.users.GetByID(ctx, order.UserID)
	if err != nil {
		logger.Warn("cancellation email skipped", slog.Any("error", err))
		return
	}
	err = send(ctx, model.OrderNotice{
		To:           user.Email,
		CustomerName: user.DisplayName(),
		OrderID:      order.ID,
		Total:        order.Total,
		Notes:        notes,
	})
	if err != nil {
		logger.Error("cancellation email failed", slog.Any("error", err))
	}
}
