package model

import (
	"time"

	"github.com/google/uuid"
)

// CancellationStatus tracks a customer's cancellation request.
type CancellationStatus string

const (
	CancellationPending  CancellationStatus = "pendiente"
	CancellationApproved CancellationStatus = "aprobada"
	CancellationRejected CancellationStatus = "rechazada"
)

// CancellationRequest asks staff to cancel and refund a paid order.
type CancellationRequest struct {
	ID             uuid.UUID
	OrderID        uuid.UUID
	UserID         int64
	Reason         string
	Status         CancellationStatus
	AdminNotes     string
	StripeRefundID string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ReturnStatus tracks a product return.
type ReturnStatus string

const (
	ReturnRequested ReturnStatus = "solicitada"
	ReturnApproved  ReturnStatus = "aprobada"
	ReturnRejected  ReturnStatus = "rechazada"
	ReturnCompleted ReturnStatus = "completada"
)

var returnTransitions = map[ReturnStatus][]ReturnStatus{
	ReturnRequested: {ReturnApproved, ReturnRejected},
	ReturnApproved:  {ReturnCompleted, ReturnRejected},
}

// Valid reports whether s is a known status.
func (s ReturnStatus) Valid() bool {
	switch s {
	case ReturnRequested, ReturnApproved, ReturnRejected, ReturnCompleted:
		return true
	}
	return false
}

// CanTransitionTo allows staying in the same status so notes can be edited.
func (s ReturnStatus) CanTransitionTo(next ReturnStatus) bool {
	if s == next {
		return true
	}
	for _, allowed := range returnTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ReturnRequest is a customer's request to send back a delivered order.
type ReturnRequest struct {
	ID           uuid.UUID
	OrderID      uuid.UUID
	UserID       int64
	Reason       string
	Status       ReturnStatus
	RefundAmount *float64
	AdminNotes   string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
