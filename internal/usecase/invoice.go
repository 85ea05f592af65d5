package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
	"github.com/polkiloo/storefront/internal/pkg/invoicepdf"
	"github.com/polkiloo/storefront/internal/pkg/money"
)

const invoiceNumberAttempts = 5

var errNumberTaken = errors.New("invoice number taken")

// InvoiceUseCase allocates invoice numbers and issues fiscal documents.
type InvoiceUseCase struct {
	invoices repository.InvoiceRepository
	orders   repository.OrderRepository
	users    repository.UserRepository
	renderer *invoicepdf.Renderer
	now      func() time.Time
}

// NewInvoiceUseCase constructs InvoiceUseCase.
func NewInvoiceUseCase(
	invoices repository.InvoiceRepository,
	orders repository.OrderRepository,
	users repository.UserRepository,
	renderer *invoicepdf.Renderer,
) *InvoiceUseCase {
	return &InvoiceUseCase{invoices: invoices, orders: orders, users: users, renderer: renderer, now: time.Now}
}

// IssueForOrder creates the order's invoice. An order that already has one
// gets the existing invoice back.
func (u *InvoiceUseCase) IssueForOrder(ctx context.Context, orderID uuid.UUID, userID int64, total decimal.Decimal) (*model.Invoice, error) {
	existing, err := u.invoices.GetByOrder(ctx, orderID, model.InvoiceTypeInvoice)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domainErrors.ErrNotFound) {
		return nil, err
	}
	return u.issue(ctx, model.InvoiceTypeInvoice, orderID, userID, total)
}

// IssueCreditNote records a refund of amount against the order as negative totals.
func (u *InvoiceUseCase) IssueCreditNote(ctx context.Context, order *model.Order, amount float64) (*model.Invoice, error) {
	if amount <= 0 {
		return nil, domainErrors.ErrInvalidInput
	}
	return u.issue(ctx, model.InvoiceTypeCreditNote, order.ID, order.UserID, money.FromFloat(amount).Neg())
}

func (u *InvoiceUseCase) issue(ctx context.Context, kind model.InvoiceType, orderID uuid.UUID, userID int64, total decimal.Decimal) (*model.Invoice, error) {
	subtotal, tax := money.SplitVAT(total)
	draft := model.Invoice{
		OrderID:   orderID,
		UserID:    userID,
		Type:      kind,
		Subtotal:  money.Float(subtotal),
		TaxAmount: money.Float(tax),
		Total:     money.Float(total),
	}
	prefix := fmt.Sprintf("%s-%d-", kind.NumberPrefix(), u.now().Year())

	var (
		created *model.Invoice
		attempt int
	)
	err := retry.Do(
		func() error {
			defer func() { attempt++ }()
			last, err := u.invoices.LastNumber(ctx, prefix)
			if err != nil {
				return err
			}
			draft.Number = fmt.Sprintf("%s%06d", prefix, nextSequence(last, prefix)+attempt)
			taken, err := u.invoices.NumberExists(ctx, draft.Number)
			if err != nil {
				return err
			}
			if taken {
				return errNumberTaken
			}
			created, err = u.invoices.Create(ctx, draft)
			if errors.Is(err, domainErrors.ErrAlreadyExists) {
				return errNumberTaken
			}
			return err
		},
		retry.Attempts(invoiceNumberAttempts),
		retry.Delay(0),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool { return errors.Is(err, errNumberTaken) }),
	)
	if err == nil {
		return created, nil
	}
	if !errors.Is(err, errNumberTaken) {
		return nil, fmt.Errorf("issue %s: %w", kind, err)
	}

	draft.Number = fmt.Sprintf("%sT%d", prefix, u.now().UnixMilli())
	created, err = u.invoices.Create(ctx, draft)
	if err != nil {
		return nil, fmt.Errorf("issue %s with fallback number: %w", kind, err)
	}
	return created, nil
}

// nextSequence returns the sequence following last, or 1 when the series is empty.
func nextSequence(last, prefix string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(last, prefix))
	if err != nil || n < 0 {
		return 1
	}
	return n + 1
}

// InvoicePDF renders the invoice of an order the requester may see.
func (u *InvoiceUseCase) InvoicePDF(ctx context.Context, requester Requester, orderID uuid.UUID) ([]byte, string, error) {
	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, "", err
	}
	if !requester.CanAccess(order.UserID) {
		return nil, "", domainErrors.ErrNotFound
	}
	inv, err := u.invoices.GetByOrder(ctx, orderID, model.InvoiceTypeInvoice)
	if err != nil {
		return nil, "", err
	}
	user, err := u.users.GetByID(ctx, order.UserID)
	if err != nil {
		return nil, "", err
	}
	pdf, err := u.renderer.Render(invoicepdf.Document{
		Invoice:       *inv,
		Order:         *order,
		CustomerName:  user.DisplayName(),
		CustomerEmail: user.Email,
	})
	if err != nil {
		return nil, "", fmt.Errorf("render invoice: %w", err)
	}
	return pdf, invoicepdf.FileName(*inv), nil
}
