package model

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus describes fulfilment lifecycle.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pendiente"
	OrderStatusPaid      OrderStatus = "pagado"
	OrderStatusShipped   OrderStatus = "enviado"
	OrderStatusDelivered OrderStatus = "entregado"
	OrderStatusCancelled OrderStatus = "cancelado"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending: {OrderStatusPaid, OrderStatusCancelled},
	OrderStatusPaid:    {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped: {OrderStatusDelivered},
}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether the lifecycle allows moving from s to next.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Final reports whether no further transition is possible.
func (s OrderStatus) Final() bool {
	return len(orderTransitions[s]) == 0
}

// Order is a paid purchase reconciled from a checkout session.
type Order struct {
	ID              uuid.UUID
	UserID          int64
	Total           float64
	Status          OrderStatus
	PromoCode       string
	DiscountAmount  float64
	ShippingAddress *ShippingDetails
	StripeSessionID string
	PaymentIntentID string
	TrackingNumber  string
	Items           []OrderItem
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// OrderItem is one product line of an order. Price is the unit price actually charged.
type OrderItem struct {
	ProductID   uuid.UUID
	ProductName string
	Quantity    int
	Price       float64
}

// NewOrder carries everything persisted by the atomic create-and-reserve step.
type NewOrder struct {
	UserID          int64
	Total           float64
	DiscountAmount  float64
	PromoCode       string
	ShippingAddress *ShippingDetails
	StripeSessionID string
	Items           []OrderItem
}
