package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

type invoiceRepository struct {
	storage *Storage
}

// LastNumber ignores timestamp fallback numbers ("<prefix>T<millis>"). Sequences
// outgrow six digits, so longer numbers sort first.
func (r *invoiceRepository) LastNumber(ctx context.Context, prefix string) (string, error) {
	const query = `SELECT invoice_number FROM invoices
                   WHERE invoice_number LIKE $1 || '%' AND invoice_number NOT LIKE $1 || 'T%'
                   ORDER BY length(invoice_number) DESC, invoice_number DESC LIMIT 1`
	var number string
	err := r.storage.pool.QueryRow(ctx, query, prefix).Scan(&number)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	return number, err
}

func (r *invoiceRepository) NumberExists(ctx context.Context, number string) (bool, error) {
	var exists bool
	err := r.storage.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM invoices WHERE invoice_number=$1)`, number).Scan(&exists)
	return exists, err
}

func (r *invoiceRepository) Create(ctx context.Context, inv model.Invoice) (*model.Invoice, error) {
	const query = `INSERT INTO invoices (order_id, user_id, invoice_number, invoice_type, subtotal, tax_amount, total)
                   VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id, created_at`
	err := r.storage.pool.QueryRow(ctx, query, inv.OrderID, inv.UserID, inv.Number, inv.Type, inv.Subtotal, inv.TaxAmount, inv.Total).
		Scan(&inv.ID, &inv.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domainErrors.ErrAlreadyExists
		}
		return nil, err
	}
	return &inv, nil
}

func (r *invoiceRepository) GetByOrder(ctx context.Context, orderID uuid.UUID, kind model.InvoiceType) (*model.Invoice, error) {
	const query = `SELECT id, order_id, user_id, invoice_number, invoice_type, subtotal, tax_amount, total, created_at
                   FROM invoices WHERE order_id=$1 AND invoice_type=$2 ORDER BY created_at DESC LIMIT 1`
	var inv model.Invoice
	err := r.storage.pool.QueryRow(ctx, query, orderID, kind).
		Scan(&inv.ID, &inv.OrderID, &inv.UserID, &inv.Number, &inv.Type, &inv.Subtotal, &inv.TaxAmount, &inv.Total, &inv.CreatedAt)
	if err != nil {
		return nil, mapRowErr(err)
	}
	return &inv, nil
}
