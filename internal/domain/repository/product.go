package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// ProductRepository provides catalog access.
type ProductRepository interface {
	List(ctx context.Context, filter model.ProductFilter) ([]model.Product, error)
	ListInStock(ctx context.Context) ([]model.Product, error)
	Search(ctx context.Context, term string, limit int) ([]model.Product, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.Product, error)
	GetBySlug(ctx context.Context, slug string) (*model.Product, error)
	GetByName(ctx context.Context, name string) (*model.Product, error)
	Create(ctx context.Context, product model.Product) (*model.Product, error)
	Update(ctx context.Context, product model.Product) error
	SetSale(ctx context.Context, id uuid.UUID, onSale bool, salePrice *float64) error
	Delete(ctx context.Context, id uuid.UUID) error
}
