package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// ReviewRepository stores product reviews, one per user and product.
type ReviewRepository interface {
	ListByProduct(ctx context.Context, productID uuid.UUID, sort model.ReviewSort, rating int) ([]model.Review, error)
	// Upsert reports whether a new review was created rather than updated.
	Upsert(ctx context.Context, review model.Review) (*model.Review, bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Review, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
