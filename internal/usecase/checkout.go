package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/polkiloo/storefront/internal/config"
	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/gateway"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
	"github.com/polkiloo/storefront/internal/pkg/money"
)

const (
	maxCartLines    = 50
	maxLineQuantity = 99
)

// CartItem is one line of the shopper's cart.
type CartItem struct {
	ProductID uuid.UUID
	Quantity  int
}

// CheckoutUseCase opens hosted checkout sessions from a cart.
type CheckoutUseCase struct {
	products  repository.ProductRepository
	users     repository.UserRepository
	promos    *PromoUseCase
	customers *CustomerUseCase
	payments  gateway.PaymentGateway
	siteURL   string
	logger    *slog.Logger
}

// NewCheckoutUseCase constructs CheckoutUseCase.
func NewCheckoutUseCase(
	products repository.ProductRepository,
	users repository.UserRepository,
	promos *PromoUseCase,
	customers *CustomerUseCase,
	payments gateway.PaymentGateway,
	cfg *config.Config,
	logger *slog.Logger,
) *CheckoutUseCase {
	return &CheckoutUseCase{
		products:  products,
		users:     users,
		promos:    promos,
		customers: customers,
		payments:  payments,
		siteURL:   strings.TrimRight(cfg.SiteURL, "/"),
		logger:    logger,
	}
}

// CreateSession prices the cart from the catalog and opens a checkout
// session. userID is zero for anonymous shoppers.
func (u *CheckoutUseCase) CreateSession(ctx context.Context, userID int64, items []CartItem, promoCode string) (*model.CreatedSession, error) {
	if len(items) == 0 {
		return nil, domainErrors.ErrEmptyCart
	}
	if len(items) > maxCartLines {
		return nil, domainErrors.ErrInvalidInput
	}
	items = mergeCart(items)

	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	products, err := u.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}

	pct := 0
	if code := strings.TrimSpace(promoCode); code != "" {
		promo, err := u.promos.Validate(ctx, code)
		if err != nil {
			return nil, err
		}
		pct = promo.DiscountPercentage
		promoCode = promo.Code
	}
	factor := decimal.NewFromInt(1).Sub(money.Percent(pct))

	lines := make([]model.CheckoutLine, 0, len(items)+1)
	subtotal := decimal.Zero
	for _, item := range items {
		product, ok := products[item.ProductID]
		if !ok {
			return nil, fmt.Errorf("%w: unknown product %s", domainErrors.ErrInvalidInput, item.ProductID)
		}
		qty := item.Quantity
		if product.Stock < qty {
			return nil, fmt.Errorf("%w: %s", domainErrors.ErrInsufficientStock, product.Name)
		}
		price := money.FromFloat(product.EffectivePrice())
		subtotal = subtotal.Add(price.Mul(decimal.NewFromInt(int64(qty))))
		lines = append(lines, model.CheckoutLine{
			ProductID:  product.ID,
			Name:       product.Name,
			ImageURL:   product.ImageURL,
			UnitAmount: money.ToMinor(money.Round2(price.Mul(factor))),
			Quantity:   int64(qty),
		})
	}
	if subtotal.LessThan(decimal.NewFromFloat(model.FreeShippingThreshold)) {
		lines = append(lines, model.CheckoutLine{
			Name:       model.ShippingLineDescription,
			UnitAmount: model.ShippingCostMinor,
			Quantity:   1,
		})
	}

	req := model.CheckoutRequest{
		Lines:      lines,
		Metadata:   model.SessionMetadata{PromoCode: promoCode, DiscountPercent: pct},
		SuccessURL: u.siteURL + "/checkout/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:  u.siteURL + "/carrito",
	}
	if userID > 0 {
		req.Metadata.UserID = strconv.FormatInt(userID, 10)
		u.attachCustomer(ctx, userID, &req)
	}

	return u.payments.CreateSession(ctx, req)
}

// attachCustomer links the session to the user's processor customer, or
// falls back to prefilling the email when that fails.
func (u *CheckoutUseCase) attachCustomer(ctx context.Context, userID int64, req *model.CheckoutRequest) {
	customerID, err := u.customers.GetOrCreateCustomer(ctx, userID)
	if err == nil {
		req.CustomerID = customerID
		return
	}
	u.logger.Warn("checkout without linked customer", slog.Int64("user_id", userID), slog.Any("error", err))
	if user, err := u.users.GetByID(ctx, userID); err == nil {
		req.CustomerEmail = user.Email
	}
}

// mergeCart clamps each line and folds repeated products into one line, in
// first-seen order, so stock is checked against the full quantity.
func mergeCart(items []CartItem) []CartItem {
	merged := make([]CartItem, 0, len(items))
	index := make(map[uuid.UUID]int, len(items))
	for _, item := range items {
		qty := clampQuantity(item.Quantity)
		if i, ok := index[item.ProductID]; ok {
			merged[i].Quantity = clampQuantity(merged[i].Quantity + qty)
			continue
		}
		index[item.ProductID] = len(merged)
		merged = append(merged, CartItem{ProductID: item.ProductID, Quantity: qty})
	}
	return merged
}

func clampQuantity(q int) int {
	switch {
	case q < 1:
		return 1
	case q > maxLineQuantity:
		return maxLineQuantity
	}
	return q
}
