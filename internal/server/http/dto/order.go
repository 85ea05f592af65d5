package dto

import "time"

// OrderItemResponse is one order line.
type OrderItemResponse struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name,omitempty"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
}

// ShippingResponse is the address snapshot taken at checkout.
type ShippingResponse struct {
	Name       string `json:"name"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// OrderResponse describes an order.
type OrderResponse struct {
	ID              string              `json:"id"`
	UserID          int64               `json:"user_id"`
	Status          string              `json:"status"`
	Total           float64             `json:"total"`
	PromoCode       string              `json:"promo_code,omitempty"`
	DiscountAmount  float64             `json:"discount_amount"`
	TrackingNumber  string              `json:"tracking_number,omitempty"`
	ShippingAddress *ShippingResponse   `json:"shipping_address,omitempty"`
	Items           []OrderItemResponse `json:"items,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// OrderStatusRequest moves an order through its lifecycle.
type OrderStatusRequest struct {
	Status         string `json:"status"`
	TrackingNumber string `json:"tracking_number"`
	Carrier        string `json:"carrier"`
}

// ReasonRequest carries a customer's cancellation or return reason.
type ReasonRequest struct {
	Reason string `json:"reason"`
}

// CancellationResponse describes a cancellation request.
type CancellationResponse struct {
	ID             string    `json:"id"`
	OrderID        string    `json:"order_id"`
	UserID         int64     `json:"user_id"`
	Reason         string    `json:"reason"`
	Status         string    `json:"status"`
	AdminNotes     string    `json:"admin_notes,omitempty"`
	StripeRefundID string    `json:"stripe_refund_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// ReturnResponse describes a return request.
type ReturnResponse struct {
	ID           string    `json:"id"`
	OrderID      string    `json:"order_id"`
	UserID       int64     `json:"user_id"`
	Reason       string    `json:"reason"`
	Status       string    `json:"status"`
	RefundAmount *float64  `json:"refund_amount,omitempty"`
	AdminNotes   string    `json:"admin_notes,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
