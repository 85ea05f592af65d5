package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// InvoiceRepository stores fiscal documents.
type InvoiceRepository interface {
	// LastNumber returns the highest number starting with prefix, or "" when none.
	LastNumber(ctx context.Context, prefix string) (string, error)
	NumberExists(ctx context.Context, number string) (bool, error)
	Create(ctx context.Context, invoice model.Invoice) (*model.Invoice, error)
	GetByOrder(ctx context.Context, orderID uuid.UUID, kind model.InvoiceType) (*model.Invoice, error)
}
