// Package payments adapts the Stripe API to the storefront's payment and
// customer gateways.
package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

// Stripe implements gateway.PaymentGateway and gateway.CustomerGateway.
type Stripe struct {
	api *client.API
}

// NewStripe creates a client bound to secretKey.
func NewStripe(secretKey string) *Stripe {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &Stripe{api: api}
}

// RetrieveSession fetches a checkout session with its payment intent and customer ids.
// The intent's latest charge is expanded so refunded sessions can be recognised.
func (s *Stripe) RetrieveSession(ctx context.Context, sessionID string) (*model.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	params.AddExpand("payment_intent.latest_charge")
	sess, err := s.api.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		if isResourceMissing(err) {
			return nil, fmt.Errorf("retrieve session %s: %w", sessionID, domainErrors.ErrPaymentNotFound)
		}
		return nil, fmt.Errorf("retrieve session %s: %w", sessionID, err)
	}
	return mapSession(sess), nil
}

// ListLineItems returns every line of the session with product metadata expanded.
func (s *Stripe) ListLineItems(ctx context.Context, sessionID string) ([]model.LineItem, error) {
	params := &stripe.CheckoutSessionListLineItemsParams{
		Session: stripe.String(sessionID),
	}
	params.Context = ctx
	params.Limit = stripe.Int64(100)
	params.AddExpand("data.price.product")

	var items []model.LineItem
	iter := s.api.CheckoutSessions.ListLineItems(params)
	for iter.Next() {
		items = append(items, mapLineItem(iter.LineItem()))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("list line items %s: %w", sessionID, err)
	}
	return items, nil
}

// Refund refunds the full amount of a payment intent.
func (s *Stripe) Refund(ctx context.Context, paymentIntentID string) (string, error) {
	if paymentIntentID == "" {
		return "", fmt.Errorf("refund: %w", domainErrors.ErrPaymentNotFound)
	}
	params := &stripe.RefundParams{PaymentIntent: stripe.String(paymentIntentID)}
	params.Context = ctx
	r, err := s.api.Refunds.New(params)
	if err != nil {
		return "", fmt.Errorf("refund %s: %w", paymentIntentID, err)
	}
	return r.ID, nil
}

// CreateSession opens a hosted checkout.
func (s *Stripe) CreateSession(ctx context.Context, req model.CheckoutRequest) (*model.CreatedSession, error) {
	params := sessionParams(req)
	params.Context = ctx
	sess, err := s.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	return &model.CreatedSession{ID: sess.ID, URL: sess.URL}, nil
}

// ListCompletedSessions returns ids of complete sessions created since the given time.
func (s *Stripe) ListCompletedSessions(ctx context.Context, since time.Time, limit int) ([]string, error) {
	params := &stripe.CheckoutSessionListParams{
		Status: stripe.String(string(stripe.CheckoutSessionStatusComplete)),
		CreatedRange: &stripe.RangeQueryParams{
			GreaterThanOrEqual: since.Unix(),
		},
	}
	params.Context = ctx
	params.Limit = stripe.Int64(100)

	ids := make([]string, 0, limit)
	iter := s.api.CheckoutSessions.List(params)
	for iter.Next() {
		sess := iter.CheckoutSession()
		if sess.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
			continue
		}
		ids = append(ids, sess.ID)
		if limit > 0 && len(ids) >= limit {
			break
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("list completed sessions: %w", err)
	}
	return ids, nil
}

// GetCustomer returns ErrNotFound when the customer is gone or deleted.
func (s *Stripe) GetCustomer(ctx context.Context, customerID string) (*model.CustomerProfile, error) {
	params := &stripe.CustomerParams{}
	params.Context = ctx
	c, err := s.api.Customers.Get(customerID, params)
	if err != nil {
		if isResourceMissing(err) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, fmt.Errorf("get customer %s: %w", customerID, err)
	}
	if c.Deleted {
		return nil, domainErrors.ErrNotFound
	}
	return mapCustomer(c), nil
}

// CreateCustomer creates a customer and returns its id.
func (s *Stripe) CreateCustomer(ctx context.Context, profile model.CustomerProfile) (string, error) {
	params := customerParams(profile)
	params.Context = ctx
	c, err := s.api.Customers.New(params)
	if err != nil {
		return "", fmt.Errorf("create customer: %w", err)
	}
	return c.ID, nil
}

// UpdateCustomer pushes contact data to an existing customer.
func (s *Stripe) UpdateCustomer(ctx context.Context, customerID string, profile model.CustomerProfile) error {
	params := customerParams(profile)
	params.Context = ctx
	if _, err := s.api.Customers.Update(customerID, params); err != nil {
		if isResourceMissing(err) {
			return domainErrors.ErrNotFound
		}
		return fmt.Errorf("update customer %s: %w", customerID, err)
	}
	return nil
}

func isResourceMissing(err error) bool {
	var stripeErr *stripe.Error
	if !errors.As(err, &stripeErr) {
		return false
	}
	return stripeErr.Code == stripe.ErrorCodeResourceMissing || stripeErr.HTTPStatusCode == 404
}
