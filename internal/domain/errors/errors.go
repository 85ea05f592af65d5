package errors

import "errors"

var (
	ErrAlreadyExists      = errors.New("already exists")
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrPromoInvalid       = errors.New("promo code is not valid")
	ErrPromoExpired       = errors.New("promo code expired")
	ErrPromoExhausted     = errors.New("promo code usage limit reached")
	ErrPaymentNotFound    = errors.New("payment not found")
)

// Reconciliation failures. A caller receiving one of these knows no order was
// created for the session; ErrUnresolvedLineItems and ErrOrderCreation also
// imply a refund was attempted.
var (
	ErrSessionNotPaid      = errors.New("checkout session is not paid")
	ErrOwnerUnresolved     = errors.New("order owner could not be resolved")
	ErrUnresolvedLineItems = errors.New("line items could not be matched to products")
	ErrOrderCreation       = errors.New("order creation failed")
	// ErrSessionRefunded marks a session whose payment was already returned;
	// it never gets an order.
	ErrSessionRefunded = errors.New("checkout session was refunded")
)
