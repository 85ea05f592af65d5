package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

type cancellationRepository struct {
	storage *Storage
}

type returnRepository struct {
	storage *Storage
}

const cancellationColumns = `id, order_id, user_id, reason, status, admin_notes, stripe_refund_id, created_at, updated_at`

func scanCancellation(row pgx.Row) (model.CancellationRequest, error) {
	var c model.CancellationRequest
	err := row.Scan(&c.ID, &c.OrderID, &c.UserID, &c.Reason, &c.Status, &c.AdminNotes, &c.StripeRefundID, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// Create fails with ErrAlreadyExists when the order already has a pending request.
func (r *cancellationRepository) Create(ctx context.Context, req model.CancellationRequest) (*model.CancellationRequest, error) {
	const query = `INSERT INTO cancellation_requests (order_id, user_id, reason, status)
                   VALUES ($1, $2, $3, $4) RETURNING id, created_at, updated_at`
	req.Status = model.CancellationPending
	err := r.storage.pool.QueryRow(ctx, query, req.OrderID, req.UserID, req.Reason, req.Status).
		Scan(&req.ID, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domainErrors.ErrAlreadyExists
		}
		return nil, err
	}
	return &req, nil
}

func (r *cancellationRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.CancellationRequest, error) {
	c, err := scanCancellation(r.storage.pool.QueryRow(ctx, `SELECT `+cancellationColumns+` FROM cancellation_requests WHERE id=$1`, id))
	if err != nil {
		return nil, mapRowErr(err)
	}
	return &c, nil
}

func (r *cancellationRepository) List(ctx context.Context, status model.CancellationStatus) ([]model.CancellationRequest, error) {
	const query = `SELECT ` + cancellationColumns + ` FROM cancellation_requests
                   WHERE ($1 = '' OR status = $1) ORDER BY created_at DESC`
	rows, err := r.storage.pool.Query(ctx, query, string(status))
	if err != nil {
		return nil, err
	}
	return collect(rows, func(rows pgx.Rows) (model.CancellationRequest, error) { return scanCancellation(rows) })
}

// Resolve only touches pending requests; a request resolved concurrently yields ErrInvalidTransition.
func (r *cancellationRepository) Resolve(ctx context.Context, id uuid.UUID, status model.CancellationStatus, adminNotes, refundID string) error {
	const query = `UPDATE cancellation_requests
                   SET status=$2, admin_notes=$3, stripe_refund_id=$4, updated_at=NOW()
                   WHERE id=$1 AND status=$5`
	tag, err := r.storage.pool.Exec(ctx, query, id, status, adminNotes, refundID, model.CancellationPending)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrInvalidTransition
	}
	return nil
}

const returnColumns = `id, order_id, user_id, reason, status, refund_amount, admin_notes, created_at, updated_at`

func scanReturn(row pgx.Row) (model.ReturnRequest, error) {
	var rr model.ReturnRequest
	err := row.Scan(&rr.ID, &rr.OrderID, &rr.UserID, &rr.Reason, &rr.Status, &rr.RefundAmount, &rr.AdminNotes, &rr.CreatedAt, &rr.UpdatedAt)
	return rr, err
}

func (r *returnRepository) Create(ctx context.Context, req model.ReturnRequest) (*model.ReturnRequest, error) {
	const query = `INSERT INTO returns (order_id, user_id, reason, status)
                   VALUES ($1, $2, $3, $4) RETURNING id, created_at, updated_at`
	req.Status = model.ReturnRequested
	err := r.storage.pool.QueryRow(ctx, query, req.OrderID, req.UserID, req.Reason, req.Status).
		Scan(&req.ID, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *returnRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ReturnRequest, error) {
	rr, err := scanReturn(r.storage.pool.QueryRow(ctx, `SELECT `+returnColumns+` FROM returns WHERE id=$1`, id))
	if err != nil {
		return nil, mapRowErr(err)
	}
	return &rr, nil
}

func (r *returnRepository) List(ctx context.Context, status model.ReturnStatus) ([]model.ReturnRequest, error) {
	const query = `SELECT ` + returnColumns + ` FROM returns WHERE ($1 = '' OR status = $1) ORDER BY created_at DESC`
	rows, err := r.storage.pool.Query(ctx, query, string(status))
	if err != nil {
		return nil, err
	}
	return collect(rows, func(rows pgx.Rows) (model.ReturnRequest, error) { return scanReturn(rows) })
}

func (r *returnRepository) Update(ctx context.Context, id uuid.UUID, status model.ReturnStatus, refundAmount *float64, adminNotes string) error {
	const query = `UPDATE returns SET status=$2, refund_amount=$3, admin_notes=$4, updated_at=NOW() WHERE id=$1`
	return expectAffected(r.storage.pool.Exec(ctx, query, id, status, refundAmount, adminNotes))
}
