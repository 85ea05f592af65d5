package dto

// CheckoutItem is one cart line as sent by the browser.
type CheckoutItem struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
}

// CheckoutRequest starts a hosted checkout.
type CheckoutRequest struct {
	Items     []CheckoutItem `json:"items"`
	PromoCode string         `json:"promo_code"`
}

// CheckoutResponse points the browser at the hosted checkout page.
type CheckoutResponse struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

// CheckoutSuccessResponse is returned once the session has an order.
type CheckoutSuccessResponse struct {
	OrderID string `json:"order_id"`
}

// PromoValidateRequest checks a promo code before checkout.
type PromoValidateRequest struct {
	Code string `json:"code"`
}

// PromoValidateResponse reports whether a code can be applied.
type PromoValidateResponse struct {
	Valid              bool   `json:"valid"`
	DiscountPercentage int    `json:"discount_percentage,omitempty"`
	Error              string `json:"error,omitempty"`
}
