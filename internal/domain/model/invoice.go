package model

import (
	"time"

	"github.com/google/uuid"
)

// InvoiceType separates invoices from credit notes.
type InvoiceType string

const (
	InvoiceTypeInvoice    InvoiceType = "factura"
	InvoiceTypeCreditNote InvoiceType = "abono"
)

// NumberPrefix returns the series prefix used in invoice numbers.
func (t InvoiceType) NumberPrefix() string {
	if t == InvoiceTypeCreditNote {
		return "ABO"
	}
	return "FAC"
}

// Invoice is a fiscal document issued for an order. Credit notes carry negative amounts.
type Invoice struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	UserID    int64
	Number    string
	Type      InvoiceType
	Subtotal  float64
	TaxAmount float64
	Total     float64
	CreatedAt time.Time
}
