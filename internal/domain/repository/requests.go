package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// CancellationRepository stores cancellation requests. Only one pending
// request may exist per order.
type CancellationRepository interface {
	Create(ctx context.Context, req model.CancellationRequest) (*model.CancellationRequest, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.CancellationRequest, error)
	List(ctx context.Context, status model.CancellationStatus) ([]model.CancellationRequest, error)
	Resolve(ctx context.Context, id uuid.UUID, status model.CancellationStatus, adminNotes, refundID string) error
}

// ReturnRepository stores return requests.
type ReturnRepository interface {
	Create(ctx context.Context, req model.ReturnRequest) (*model.ReturnRequest, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.ReturnRequest, error)
	List(ctx context.Context, status model.ReturnStatus) ([]model.ReturnRequest, error)
	Update(ctx context.Context, id uuid.UUID, status model.ReturnStatus, refundAmount *float64, adminNotes string) error
}
