package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	// ShippingLineDescription names the synthetic line added for shipping costs.
	ShippingLineDescription = "Gastos de envío"
	// FreeShippingThreshold is the pre-discount subtotal from which shipping is free.
	FreeShippingThreshold = 49.0
	// ShippingCostMinor is the flat shipping fee in cents.
	ShippingCostMinor int64 = 499
	// Currency used for every checkout.
	Currency = "eur"
)

// PaymentStatus mirrors the processor's checkout payment status.
type PaymentStatus string

const (
	PaymentStatusPaid   PaymentStatus = "paid"
	PaymentStatusUnpaid PaymentStatus = "unpaid"
)

// SessionMetadata is the data the storefront attaches to a checkout session.
type SessionMetadata struct {
	UserID          string
	PromoCode       string
	DiscountPercent int
}

// CustomerDetails are the contact fields collected by the hosted checkout.
type CustomerDetails struct {
	Email string
	Name  string
	Phone string
}

// ShippingDetails is the recipient and address collected at checkout.
type ShippingDetails struct {
	Name    string  `json:"name"`
	Address Address `json:"address"`
}

// CheckoutSession is the processor-agnostic view of a hosted checkout.
// AmountTotal is in minor units.
type CheckoutSession struct {
	ID              string
	PaymentStatus   PaymentStatus
	PaymentIntentID string
	CustomerID      string
	AmountTotal     int64
	Metadata        SessionMetadata
	Customer        CustomerDetails
	Shipping        *ShippingDetails
	CreatedAt       time.Time
	// Refunded reports that the processor already returned the charge.
	Refunded bool
}

// Compensation reasons, also used as refund metric labels.
const (
	CompensationUnresolvedItems = "unresolved_items"
	CompensationOrderCreation   = "order_creation"
)

// Compensation records a checkout session whose charge was refunded because
// no order could be created for it.
type Compensation struct {
	SessionID       string
	PaymentIntentID string
	RefundID        string
	Reason          string
	CreatedAt       time.Time
}

// LineItem is one purchased line of a checkout session. AmountTotal is the
// line total in minor units after discounts; ProductID may be empty.
type LineItem struct {
	Description string
	Quantity    int64
	AmountTotal int64
	ProductID   string
}

// CheckoutLine is a priced line sent to the processor when opening a session.
type CheckoutLine struct {
	ProductID  uuid.UUID
	Name       string
	ImageURL   string
	UnitAmount int64
	Quantity   int64
}

// CheckoutRequest describes a hosted checkout to create.
type CheckoutRequest struct {
	Lines         []CheckoutLine
	CustomerID    string
	CustomerEmail string
	Metadata      SessionMetadata
	SuccessURL    string
	CancelURL     string
}

// CreatedSession is returned to the browser to redirect to the hosted checkout.
type CreatedSession struct {
	ID  string
	URL string
}
