// Package gateway declares the outbound ports of the storefront: the payment
// processor and transactional email.
package gateway

import (
	"context"
	"time"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// PaymentGateway is the subset of the payment processor used for checkout
// and reconciliation.
type PaymentGateway interface {
	RetrieveSession(ctx context.Context, sessionID string) (*model.CheckoutSession, error)
	ListLineItems(ctx context.Context, sessionID string) ([]model.LineItem, error)
	// Refund fully refunds a payment intent and returns the refund id.
	Refund(ctx context.Context, paymentIntentID string) (string, error)
	CreateSession(ctx context.Context, req model.CheckoutRequest) (*model.CreatedSession, error)
	// ListCompletedSessions returns ids of completed sessions created after since.
	ListCompletedSessions(ctx context.Context, since time.Time, limit int) ([]string, error)
}

// CustomerGateway manages customer records at the payment processor.
// GetCustomer returns errors.ErrNotFound for missing or deleted customers.
type CustomerGateway interface {
	GetCustomer(ctx context.Context, customerID string) (*model.CustomerProfile, error)
	CreateCustomer(ctx context.Context, profile model.CustomerProfile) (string, error)
	UpdateCustomer(ctx context.Context, customerID string, profile model.CustomerProfile) error
}

// Mailer sends the storefront's transactional emails.
type Mailer interface {
	SendOrderConfirmation(ctx context.Context, msg model.OrderConfirmation) error
	SendShippingNotification(ctx context.Context, msg model.ShippingNotice) error
	SendDeliveryConfirmation(ctx context.Context, msg model.OrderNotice) error
	SendCancellationApproved(ctx context.Context, msg model.OrderNotice) error
	SendCancellationRejected(ctx context.Context, msg model.OrderNotice) error
	SendWelcome(ctx context.Context, to, name string) error
	SendNewsletterWelcome(ctx context.Context, to, promoCode string) error
	SendContact(ctx context.Context, msg model.ContactMessage) error
}
