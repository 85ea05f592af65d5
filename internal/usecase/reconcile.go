package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/gateway"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
	"github.com/polkiloo/storefront/internal/metrics"
	"github.com/polkiloo/storefront/internal/pkg/money"
)

// Best-effort step names, used as the metrics label.
const (
	stepLinkage      = "linkage"
	stepInvoice      = "invoice"
	stepPromoUsage   = "promo_usage"
	stepConfirmation = "confirmation_email"
	stepCustomerSync = "customer_sync"
	stepCompensation = "compensation_record"
)

// reconcileTimeout bounds one reconciliation once it is detached from the caller.
const reconcileTimeout = 2 * time.Minute

// ReconcileObserver receives reconciliation telemetry.
type ReconcileObserver interface {
	ReconcileOutcome(outcome string)
	Refund(reason string, ok bool)
	StepFailed(step string)
}

// ReconcileUseCase turns a paid checkout session into exactly one order.
type ReconcileUseCase struct {
	orders    repository.OrderRepository
	users     repository.UserRepository
	products  repository.ProductRepository
	promos    repository.PromoCodeRepository
	payments  gateway.PaymentGateway
	mailer    gateway.Mailer
	invoices  *InvoiceUseCase
	customers *CustomerUseCase
	observer  ReconcileObserver
	logger    *slog.Logger
}

// NewReconcileUseCase constructs ReconcileUseCase.
func NewReconcileUseCase(
	orders repository.OrderRepository,
	users repository.UserRepository,
	products repository.ProductRepository,
	promos repository.PromoCodeRepository,
	payments gateway.PaymentGateway,
	mailer gateway.Mailer,
	invoices *InvoiceUseCase,
	customers *CustomerUseCase,
	observer ReconcileObserver,
	logger *slog.Logger,
) *ReconcileUseCase {
	return &ReconcileUseCase{
		orders:    orders,
		users:     users,
		products:  products,
		promos:    promos,
		payments:  payments,
		mailer:    mailer,
		invoices:  invoices,
		customers: customers,
		observer:  observer,
		logger:    logger,
	}
}

// resolvedItems is the outcome of matching processor line items to the catalog.
type resolvedItems struct {
	items      []model.OrderItem
	discounted decimal.Decimal
	unresolved []string
}

// EnsureOrder guarantees an order exists for sessionID and returns its id.
// It is safe to call repeatedly and concurrently for the same session.
func (u *ReconcileUseCase) EnsureOrder(ctx context.Context, sessionID string) (uuid.UUID, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return uuid.Nil, domainErrors.ErrInvalidInput
	}
	logger := u.logger.With(slog.String("session_id", sessionID))

	// A committed order must get its invoice and email even if the webhook
	// client hangs up or the sweeper stops mid-pass.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), reconcileTimeout)
	defer cancel()

	existing, err := u.orders.FindBySessionID(ctx, sessionID)
	if err == nil {
		u.observer.ReconcileOutcome(metrics.OutcomeExisting)
		return existing.ID, nil
	}
	if !errors.Is(err, domainErrors.ErrNotFound) {
		return uuid.Nil, u.fail(fmt.Errorf("lookup order: %w", err))
	}

	compensated, err := u.orders.FindCompensation(ctx, sessionID)
	if err == nil {
		logger.Info("session already refunded", slog.String("reason", compensated.Reason))
		u.observer.ReconcileOutcome(metrics.OutcomeRefunded)
		return uuid.Nil, refundedError(compensated.Reason)
	}
	if !errors.Is(err, domainErrors.ErrNotFound) {
		return uuid.Nil, u.fail(fmt.Errorf("lookup compensation: %w", err))
	}

	session, err := u.payments.RetrieveSession(ctx, sessionID)
	if err != nil {
		return uuid.Nil, u.fail(fmt.Errorf("retrieve session: %w", err))
	}
	if session.PaymentStatus != model.PaymentStatusPaid {
		logger.Warn("session not paid", slog.String("payment_status", string(session.PaymentStatus)))
		return uuid.Nil, u.fail(domainErrors.ErrSessionNotPaid)
	}
	if session.Refunded {
		logger.Warn("session charge already refunded at the processor")
		u.observer.ReconcileOutcome(metrics.OutcomeRefunded)
		return uuid.Nil, domainErrors.ErrSessionRefunded
	}

	owner, err := u.resolveOwner(ctx, session)
	if err != nil {
		logger.Error("owner not resolved", slog.Any("error", err))
		return uuid.Nil, u.fail(err)
	}

	lines, err := u.payments.ListLineItems(ctx, sessionID)
	if err != nil {
		return uuid.Nil, u.fail(fmt.Errorf("list line items: %w", err))
	}
	resolved, err := u.resolveItems(ctx, lines)
	if err != nil {
		return uuid.Nil, u.fail(err)
	}
	if len(resolved.unresolved) > 0 || len(resolved.items) == 0 {
		logger.Error("line items not resolved", slog.Any("unresolved", resolved.unresolved))
		u.refund(ctx, logger, session, model.CompensationUnresolvedItems)
		return uuid.Nil, u.fail(domainErrors.ErrUnresolvedLineItems)
	}

	pct := session.Metadata.DiscountPercent
	if pct >= 100 {
		logger.Warn("discount percent out of range, ignoring", slog.Int("discount_percent", pct))
	}
	subtotalBefore, discount := reconstructDiscount(resolved.discounted, pct)
	total := money.FromMinor(session.AmountTotal)

	orderID, err := u.orders.CreateWithItems(ctx, model.NewOrder{
		UserID:          owner.ID,
		Total:           money.Float(total),
		DiscountAmount:  money.Float(discount),
		PromoCode:       session.Metadata.PromoCode,
		ShippingAddress: session.Shipping,
		StripeSessionID: session.ID,
		Items:           resolved.items,
	})
	if errors.Is(err, domainErrors.ErrAlreadyExists) {
		logger.Info("order created concurrently", slog.String("order_id", orderID.String()))
		u.observer.ReconcileOutcome(metrics.OutcomeDuplicate)
		return orderID, nil
	}
	if err != nil {
		logger.Error("order creation failed", slog.Any("error", err))
		u.refund(ctx, logger, session, model.CompensationOrderCreation)
		return uuid.Nil, u.fail(fmt.Errorf("%w: %v", domainErrors.ErrOrderCreation, err))
	}
	logger = logger.With(slog.String("order_id", orderID.String()))

	u.bestEffort(ctx, logger, stepLinkage, func(ctx context.Context) error {
		return u.orders.AttachPaymentLinkage(ctx, orderID, session.ID, session.PaymentIntentID)
	})

	u.bestEffort(ctx, logger, stepInvoice, func(ctx context.Context) error {
		_, err := u.invoices.IssueForOrder(ctx, orderID, owner.ID, total)
		return err
	})

	if code := session.Metadata.PromoCode; code != "" {
		u.bestEffort(ctx, logger, stepPromoUsage, func(ctx context.Context) error {
			return u.promos.IncrementUses(ctx, code)
		})
	}

	if email := recipientEmail(session, owner); email != "" {
		u.bestEffort(ctx, logger, stepConfirmation, func(ctx context.Context) error {
			return u.mailer.SendOrderConfirmation(ctx, model.OrderConfirmation{
				To:              email,
				CustomerName:    customerName(session),
				OrderID:         orderID,
				Items:           confirmationItems(resolved.items),
				Subtotal:        money.Float(subtotalBefore),
				Discount:        money.Float(discount),
				PromoCode:       session.Metadata.PromoCode,
				Total:           money.Float(total),
				ShippingAddress: shippingLine(session.Shipping),
			})
		})
	}

	if session.CustomerID != "" {
		u.bestEffort(ctx, logger, stepCustomerSync, func(ctx context.Context) error {
			return u.customers.SyncCheckout(ctx, session, owner)
		})
	}

	logger.Info("order reconciled", slog.Int64("user_id", owner.ID), slog.Float64("total", money.Float(total)))
	u.observer.ReconcileOutcome(metrics.OutcomeCreated)
	return orderID, nil
}

func (u *ReconcileUseCase) fail(err error) error {
	u.observer.ReconcileOutcome(metrics.OutcomeFailed)
	return err
}

// bestEffort runs a post-creation step whose failure must not affect the order.
func (u *ReconcileUseCase) bestEffort(ctx context.Context, logger *slog.Logger, step string, fn func(context.Context) error) {
	if err := fn(ctx); err != nil {
		u.observer.StepFailed(step)
		logger.Error("best-effort step failed", slog.String("step", step), slog.Any("error", err))
	}
}

func (u *ReconcileUseCase) refund(ctx context.Context, logger *slog.Logger, session *model.CheckoutSession, reason string) {
	if session.PaymentIntentID == "" {
		u.observer.Refund(reason, false)
		logger.Error("refund impossible: session has no payment intent", slog.String("reason", reason))
		return
	}
	refundID, err := u.payments.Refund(ctx, session.PaymentIntentID)
	u.observer.Refund(reason, err == nil)
	if err != nil {
		logger.Error("refund failed", slog.String("reason", reason),
			slog.String("payment_intent", session.PaymentIntentID), slog.Any("error", err))
		return
	}
	logger.Warn("payment refunded", slog.String("reason", reason), slog.String("refund_id", refundID))

	u.bestEffort(ctx, logger, stepCompensation, func(ctx context.Context) error {
		return u.orders.RecordCompensation(ctx, model.Compensation{
			SessionID:       session.ID,
			PaymentIntentID: session.PaymentIntentID,
			RefundID:        refundID,
			Reason:          reason,
		})
	})
}

// refundedError reports a compensated session with the failure that caused the refund.
func refundedError(reason string) error {
	cause := domainErrors.ErrOrderCreation
	if reason == model.CompensationUnresolvedItems {
		cause = domainErrors.ErrUnresolvedLineItems
	}
	return fmt.Errorf("%w: %w", domainErrors.ErrSessionRefunded, cause)
}

// resolveOwner prefers the metadata user, then an account with the session email,
// then a new guest account.
func (u *ReconcileUseCase) resolveOwner(ctx context.Context, session *model.CheckoutSession) (*model.User, error) {
	if raw := session.Metadata.UserID; raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil && id > 0 {
			user, err := u.users.GetByID(ctx, id)
			if err == nil {
				return user, nil
			}
			if !errors.Is(err, domainErrors.ErrNotFound) {
				return nil, fmt.Errorf("load user %d: %w", id, err)
			}
		}
		u.logger.Warn("metadata user not found, falling back to email",
			slog.String("session_id", session.ID), slog.String("user_id", raw))
	}

	email := strings.ToLower(strings.TrimSpace(session.Customer.Email))
	if email == "" {
		return nil, domainErrors.ErrOwnerUnresolved
	}
	user, err := u.users.GetByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, domainErrors.ErrNotFound) {
		return nil, fmt.Errorf("lookup user by email: %w", err)
	}
	user, err = u.users.CreateGuest(ctx, email, customerName(session))
	if err != nil {
		return nil, fmt.Errorf("%w: create guest: %v", domainErrors.ErrOwnerUnresolved, err)
	}
	return user, nil
}

// resolveItems skips the shipping line and matches each remaining line to a
// product, by metadata id first and by name otherwise.
func (u *ReconcileUseCase) resolveItems(ctx context.Context, lines []model.LineItem) (resolvedItems, error) {
	out := resolvedItems{discounted: decimal.Zero}
	for _, line := range lines {
		if line.Description == model.ShippingLineDescription {
			continue
		}
		qty := line.Quantity
		if qty <= 0 {
			qty = 1
		}
		lineTotal := money.FromMinor(line.AmountTotal)
		out.discounted = out.discounted.Add(lineTotal)

		productID, ok, err := u.productFor(ctx, line)
		if err != nil {
			return out, err
		}
		if !ok {
			out.unresolved = append(out.unresolved, line.Description)
			continue
		}
		out.items = append(out.items, model.OrderItem{
			ProductID:   productID,
			ProductName: line.Description,
			Quantity:    int(qty),
			Price:       money.Float(lineTotal.Div(decimal.NewFromInt(qty))),
		})
	}
	return out, nil
}

func (u *ReconcileUseCase) productFor(ctx context.Context, line model.LineItem) (uuid.UUID, bool, error) {
	if line.ProductID != "" {
		if id, err := uuid.Parse(line.ProductID); err == nil {
			return id, true, nil
		}
	}
	if strings.TrimSpace(line.Description) == "" {
		return uuid.Nil, false, nil
	}
	product, err := u.products.GetByName(ctx, line.Description)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return uuid.Nil, false, nil
		}
		return uuid.Nil, false, fmt.Errorf("lookup product %q: %w", line.Description, err)
	}
	return product.ID, true, nil
}

// reconstructDiscount inverts the percentage applied to unit prices at checkout.
func reconstructDiscount(discounted decimal.Decimal, pct int) (before, discount decimal.Decimal) {
	if pct <= 0 || pct >= 100 {
		return discounted, decimal.Zero
	}
	before = discounted.Div(decimal.NewFromInt(1).Sub(money.Percent(pct)))
	return before, money.Round2(before.Sub(discounted))
}

func customerName(session *model.CheckoutSession) string {
	if name := strings.TrimSpace(session.Customer.Name); name != "" {
		return name
	}
	return model.GuestName
}

func recipientEmail(session *model.CheckoutSession, owner *model.User) string {
	if email := strings.TrimSpace(session.Customer.Email); email != "" {
		return email
	}
	return owner.Email
}

func confirmationItems(items []model.OrderItem) []model.ConfirmationItem {
	out := make([]model.ConfirmationItem, len(items))
	for i, item := range items {
		out[i] = model.ConfirmationItem{Name: item.ProductName, Quantity: item.Quantity, Price: item.Price}
	}
	return out
}

func shippingLine(s *model.ShippingDetails) string {
	if s == nil || s.Address.IsZero() {
		return ""
	}
	if s.Name == "" {
		return s.Address.String()
	}
	return s.Name + ", " + s.Address.String()
}
