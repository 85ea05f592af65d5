package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// PromoCodeRepository manages discount codes.
type PromoCodeRepository interface {
	GetByCode(ctx context.Context, code string) (*model.PromoCode, error)
	List(ctx context.Context) ([]model.PromoCode, error)
	Create(ctx context.Context, promo model.PromoCode) (*model.PromoCode, error)
	Delete(ctx context.Context, id uuid.UUID) error
	IncrementUses(ctx context.Context, code string) error
}
