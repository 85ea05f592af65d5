package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
)

const maxPromoCodeLength = 50

// NewPromoCode is the admin input for a code.
type NewPromoCode struct {
	Code               string
	DiscountPercentage int
	MaxUses            *int
	ExpiresAt          *time.Time
}

// PromoUseCase validates and manages promo codes.
type PromoUseCase struct {
	promos repository.PromoCodeRepository
	now    func() time.Time
}

// NewPromoUseCase constructs PromoUseCase.
func NewPromoUseCase(promos repository.PromoCodeRepository) *PromoUseCase {
	return &PromoUseCase{promos: promos, now: time.Now}
}

// Validate returns the code when it can be redeemed now.
func (u *PromoUseCase) Validate(ctx context.Context, code string) (*model.PromoCode, error) {
	code = normalizePromoCode(code)
	if code == "" {
		return nil, domainErrors.ErrPromoInvalid
	}
	promo, err := u.promos.GetByCode(ctx, code)
	if err != nil {
		if isNotFound(err) {
			return nil, domainErrors.ErrPromoInvalid
		}
		return nil, err
	}
	switch {
	case !promo.Active:
		return nil, domainErrors.ErrPromoInvalid
	case promo.Expired(u.now()):
		return nil, domainErrors.ErrPromoExpired
	case promo.Exhausted():
		return nil, domainErrors.ErrPromoExhausted
	}
	return promo, nil
}

// List returns every code.
func (u *PromoUseCase) List(ctx context.Context) ([]model.PromoCode, error) {
	return u.promos.List(ctx)
}

// Create stores an active code. Codes are case-insensitive and stored upper-case.
func (u *PromoUseCase) Create(ctx context.Context, in NewPromoCode) (*model.PromoCode, error) {
	code := normalizePromoCode(in.Code)
	if code == "" || len(code) > maxPromoCodeLength {
		return nil, domainErrors.ErrInvalidInput
	}
	if in.DiscountPercentage < 1 || in.DiscountPercentage > 100 {
		return nil, domainErrors.ErrInvalidInput
	}
	if in.MaxUses != nil && *in.MaxUses < 1 {
		return nil, domainErrors.ErrInvalidInput
	}
	return u.promos.Create(ctx, model.PromoCode{
		Code:               code,
		DiscountPercentage: in.DiscountPercentage,
		Active:             true,
		MaxUses:            in.MaxUses,
		ExpiresAt:          in.ExpiresAt,
	})
}

// Delete removes a code.
func (u *PromoUseCase) Delete(ctx context.Context, id uuid.UUID) error {
	return u.promos.Delete(ctx, id)
}

func normalizePromoCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
