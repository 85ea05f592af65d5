package dto

import "time"

// CancellationDecisionRequest approves or rejects a cancellation.
type CancellationDecisionRequest struct {
	Action     string `json:"action"`
	AdminNotes string `json:"admin_notes"`
}

// ReturnUpdateRequest moves a return through its lifecycle.
type ReturnUpdateRequest struct {
	Status       string   `json:"status"`
	RefundAmount *float64 `json:"refund_amount"`
	AdminNotes   string   `json:"admin_notes"`
}

// PromoCodeRequest creates a promo code.
type PromoCodeRequest struct {
	Code               string     `json:"code"`
	DiscountPercentage int        `json:"discount_percentage"`
	MaxUses            *int       `json:"max_uses"`
	ExpiresAt          *time.Time `json:"expires_at"`
}

// PromoCodeResponse describes a promo code.
type PromoCodeResponse struct {
	ID                 string     `json:"id"`
	Code               string     `json:"code"`
	DiscountPercentage int        `json:"discount_percentage"`
	Active             bool       `json:"active"`
	MaxUses            *int       `json:"max_uses,omitempty"`
	CurrentUses        int        `json:"current_uses"`
	ExpiresAt          *time.Time `json:"expires_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}
