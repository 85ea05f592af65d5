package model

import (
	"strings"

	"github.com/google/uuid"
)

// ConfirmationItem is a purchased line as shown in the confirmation email.
type ConfirmationItem struct {
	Name     string
	Quantity int
	Price    float64
}

// OrderConfirmation is the payload of the order confirmation email.
type OrderConfirmation struct {
	To              string
	CustomerName    string
	OrderID         uuid.UUID
	Items           []ConfirmationItem
	Subtotal        float64
	Discount        float64
	PromoCode       string
	Total           float64
	ShippingAddress string
}

// ShippingNotice is sent when an order leaves the warehouse.
type ShippingNotice struct {
	To             string
	CustomerName   string
	OrderID        uuid.UUID
	TrackingNumber string
	Carrier        string
}

// OrderNotice covers the plain status emails (delivered, cancellation outcome).
type OrderNotice struct {
	To           string
	CustomerName string
	OrderID      uuid.UUID
	Total        float64
	Notes        string
}

// ShortOrderID is the reference printed in emails and invoices.
func ShortOrderID(id uuid.UUID) string {
	return strings.ToUpper(id.String()[:8])
}
