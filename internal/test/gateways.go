package test

import (
	"context"
	"fmt"
	"sync"
	"time"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/gateway"
	"github.com/polkiloo/storefront/internal/domain/model"
)

// PaymentGatewayStub serves configured sessions and records refunds.
type PaymentGatewayStub struct {
	mu        sync.Mutex
	Sessions  map[string]*model.CheckoutSession
	LineItems map[string][]model.LineItem
	Completed []string

	RetrieveErr error
	LineErr     error
	RefundErr   error
	CreateErr   error

	Refunds   []string
	Retrieves int
	Created   []model.CheckoutRequest
}

// NewPaymentGatewayStub constructs an empty processor.
func NewPaymentGatewayStub() *PaymentGatewayStub {
	return &PaymentGatewayStub{
		Sessions:  make(map[string]*model.CheckoutSession),
		LineItems: make(map[string][]model.LineItem),
	}
}

// AddSession registers a session with its line items.
func (s *PaymentGatewayStub) AddSession(session model.CheckoutSession, items ...model.LineItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := session
	s.Sessions[session.ID] = &cp
	s.LineItems[session.ID] = items
}

// RetrieveSession returns the configured session.
func (s *PaymentGatewayStub) RetrieveSession(ctx context.Context, id string) (*model.CheckoutSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Retrieves++
	if s.RetrieveErr != nil {
		return nil, s.RetrieveErr
	}
	session, ok := s.Sessions[id]
	if !ok {
		return nil, domainErrors.ErrPaymentNotFound
	}
	cp := *session
	return &cp, nil
}

// ListLineItems returns the configured items.
func (s *PaymentGatewayStub) ListLineItems(ctx context.Context, id string) ([]model.LineItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.LineErr != nil {
		return nil, s.LineErr
	}
	return append([]model.LineItem(nil), s.LineItems[id]...), nil
}

// Refund records the refunded payment intent.
func (s *PaymentGatewayStub) Refund(ctx context.Context, paymentIntentID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if paymentIntentID == "" {
		return "", domainErrors.ErrPaymentNotFound
	}
	s.Refunds = append(s.Refunds, paymentIntentID)
	if s.RefundErr != nil {
		return "", s.RefundErr
	}
	return fmt.Sprintf("re_%d", len(s.Refunds)), nil
}

// CreateSession records the request and returns a fake hosted checkout.
func (s *PaymentGatewayStub) CreateSession(ctx context.Context, req model.CheckoutRequest) (*model.CreatedSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.CreateErr != nil {
		return nil, s.CreateErr
	}
	s.Created = append(s.Created, req)
	id := fmt.Sprintf("cs_test_%d", len(s.Created))
	return &model.CreatedSession{ID: id, URL: "https://checkout.stripe.test/" + id}, nil
}

// ListCompletedSessions returns the configured completed ids.
func (s *PaymentGatewayStub) ListCompletedSessions(ctx context.Context, since time.Time, limit int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]string(nil), s.Completed...)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// RefundCount returns the number of refund calls.
func (s *PaymentGatewayStub) RefundCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Refunds)
}

// CustomerGatewayStub keeps processor customers in memory.
type CustomerGatewayStub struct {
	mu        sync.Mutex
	Customers map[string]model.CustomerProfile
	Updates   []model.CustomerProfile
	Next      int
	Err       error
}

// NewCustomerGatewayStub constructs an empty customer store.
func NewCustomerGatewayStub() *CustomerGatewayStub {
	return &CustomerGatewayStub{Customers: make(map[string]model.CustomerProfile)}
}

// GetCustomer returns a stored customer or ErrNotFound.
func (s *CustomerGatewayStub) GetCustomer(ctx context.Context, id string) (*model.CustomerProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	c, ok := s.Customers[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return &c, nil
}

// CreateCustomer stores a new customer.
func (s *CustomerGatewayStub) CreateCustomer(ctx context.Context, p model.CustomerProfile) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return "", s.Err
	}
	s.Next++
	id := fmt.Sprintf("cus_%d", s.Next)
	s.Customers[id] = p
	return id, nil
}

// UpdateCustomer merges non-empty fields like the processor does.
func (s *CustomerGatewayStub) UpdateCustomer(ctx context.Context, id string, p model.CustomerProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	c, ok := s.Customers[id]
	if !ok {
		return domainErrors.ErrNotFound
	}
	s.Updates = append(s.Updates, p)
	if p.Name != "" {
		c.Name = p.Name
	}
	if p.Phone != "" {
		c.Phone = p.Phone
	}
	if p.Email != "" {
		c.Email = p.Email
	}
	if !p.Address.IsZero() {
		c.Address = p.Address
	}
	s.Customers[id] = c
	return nil
}

// MailerStub records every email it is asked to send.
type MailerStub struct {
	mu            sync.Mutex
	Err           error
	Confirmations []model.OrderConfirmation
	Shipping      []model.ShippingNotice
	Delivered     []model.OrderNotice
	Approved      []model.OrderNotice
	Rejected      []model.OrderNotice
	Welcome       []string
	Newsletter    []string
	Contact       []model.ContactMessage
}

func (m *MailerStub) record(ctx context.Context, fn func()) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	fn()
	return nil
}

// SendOrderConfirmation records the confirmation.
func (m *MailerStub) SendOrderConfirmation(ctx context.Context, msg model.OrderConfirmation) error {
	return m.record(ctx, func() { m.Confirmations = append(m.Confirmations, msg) })
}

// SendShippingNotification records the notice.
func (m *MailerStub) SendShippingNotification(ctx context.Context, msg model.ShippingNotice) error {
	return m.record(ctx, func() { m.Shipping = append(m.Shipping, msg) })
}

// SendDeliveryConfirmation records the notice.
func (m *MailerStub) SendDeliveryConfirmation(ctx context.Context, msg model.OrderNotice) error {
	return m.record(ctx, func() { m.Delivered = append(m.Delivered, msg) })
}

// SendCancellationApproved records the notice.
func (m *MailerStub) SendCancellationApproved(ctx context.Context, msg model.OrderNotice) error {
	return m.record(ctx, func() { m.Approved = append(m.Approved, msg) })
}

// SendCancellationRejected records the notice.
func (m *MailerStub) SendCancellationRejected(ctx context.Context, msg model.OrderNotice) error {
	return m.record(ctx, func() { m.Rejected = append(m.Rejected, msg) })
}

// SendWelcome records the recipient.
func (m *MailerStub) SendWelcome(ctx context.Context, to, name string) error {
	return m.record(ctx, func() { m.Welcome = append(m.Welcome, to) })
}

// SendNewsletterWelcome records the promo code sent.
func (m *MailerStub) SendNewsletterWelcome(ctx context.Context, to, code string) error {
	return m.record(ctx, func() { m.Newsletter = append(m.Newsletter, code) })
}

// SendContact records the message.
func (m *MailerStub) SendContact(ctx context.Context, msg model.ContactMessage) error {
	return m.record(ctx, func() { m.Contact = append(m.Contact, msg) })
}

// ConfirmationCount returns the number of confirmations sent.
func (m *MailerStub) ConfirmationCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Confirmations)
}

// ObserverStub counts reconciliation telemetry.
type ObserverStub struct {
	mu       sync.Mutex
	Outcomes map[string]int
	Refunds  map[string]int
	Steps    map[string]int
}

// NewObserverStub constructs a stub with initialised counters.
func NewObserverStub() *ObserverStub {
	return &ObserverStub{Outcomes: map[string]int{}, Refunds: map[string]int{}, Steps: map[string]int{}}
}

// ReconcileOutcome counts outcomes.
func (o *ObserverStub) ReconcileOutcome(outcome string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Outcomes[outcome]++
}

// Refund counts refunds by reason.
func (o *ObserverStub) Refund(reason string, ok bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Refunds[reason]++
}

// StepFailed counts best-effort failures.
func (o *ObserverStub) StepFailed(step string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Steps[step]++
}

// Outcome returns the count for outcome.
func (o *ObserverStub) Outcome(outcome string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.Outcomes[outcome]
}

var (
	_ gateway.PaymentGateway  = (*PaymentGatewayStub)(nil)
	_ gateway.CustomerGateway = (*CustomerGatewayStub)(nil)
	_ gateway.Mailer          = (*MailerStub)(nil)
)
